package searcher

import (
	"fmt"

	"lazymcts/game"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// LazyTreePolicy explores every child of a node once before descending past
// it. Node states are never stored, they are rebuilt from the root state.
type LazyTreePolicy[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] struct {
	Evaluator Evaluator[S, M, P, R, A]
}

func (tp LazyTreePolicy[S, M, P, R, A]) TreePolicy(tree *Tree[M, R, A], root S, ea EvalArgs, rng *rand.Rand) (NodeID, S) {
	master := root.Player()
	selected := tp.selects(tree, master, ea)
	return tp.expands(tree, selected, root, rng)
}

// selects walks down best children until it reaches a leaf or a node that
// still has unexpanded moves.
func (tp LazyTreePolicy[S, M, P, R, A]) selects(tree *Tree[M, R, A], turn P, ea EvalArgs) NodeID {
	current := tree.RootID()
	for tree.Get(current).HasChildren() {
		if tree.Get(current).CanAddChild() {
			return current
		}
		current = tp.BestChild(tree, turn, current, ea)
	}
	return current
}

func (tp LazyTreePolicy[S, M, P, R, A]) expands(tree *Tree[M, R, A], id NodeID, root S, rng *rand.Rand) (NodeID, S) {
	node := tree.Get(id)
	state := Reconstruct(root, node.History)
	if !node.CanAddChild() { // Terminal node
		return id, state
	}

	move := node.takeUnexpanded(rng.Intn(len(node.Unexpanded)))
	state.Play(move)

	history := make([]M, len(node.History), len(node.History)+1)
	copy(history, node.History)
	history = append(history, move)

	child := &Node[M, R, A]{
		Unexpanded: state.LegalMoves(),
		History:    history,
		Hash:       state.Hash(),
	}
	return tree.Append(id, child), state
}

func (tp LazyTreePolicy[S, M, P, R, A]) BestChild(tree *Tree[M, R, A], turn P, parent NodeID, ea EvalArgs) NodeID {
	node := tree.Get(parent)
	if !node.HasChildren() {
		panic(fmt.Errorf("best child of node %d: %w", parent, ErrNoChildren))
	}

	scores := make([]float64, len(node.children))
	for i, child := range node.children {
		scores[i] = tp.Evaluator.EvalChild(tree.Get(child), turn, node.Visits, ea)
	}
	// First maximum wins ties
	return node.children[floats.MaxIdx(scores)]
}
