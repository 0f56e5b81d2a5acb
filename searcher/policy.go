package searcher

import (
	"lazymcts/game"

	"golang.org/x/exp/rand"
)

// Hyperparameters and arguments threaded through the policies

// EvalArgs configures child scoring.
type EvalArgs struct {
	Exploration float64 // UCT exploration constant c
}

// PlayoutArgs carries the random source of the simulation. Sources are not
// shared between goroutines.
type PlayoutArgs struct {
	Rand *rand.Rand
}

// TreePolicy performs selection and expansion. It is the only policy, with
// BackPropPolicy, allowed to mutate the tree.
type TreePolicy[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] interface {
	// TreePolicy descends from the root, expands at most one child and returns
	// the id of the node to simulate from together with its rebuilt state.
	TreePolicy(tree *Tree[M, R, A], root S, ea EvalArgs, rng *rand.Rand) (NodeID, S)
	// BestChild returns the child of parent with the maximal evaluator score.
	BestChild(tree *Tree[M, R, A], turn P, parent NodeID, ea EvalArgs) NodeID
}

// Playout plays a state to a final state.
type Playout[S any] interface {
	Playout(state S, pa PlayoutArgs) S
}

// Evaluator scores children during selection and final states after playout.
type Evaluator[S any, M comparable, P comparable, R Reward, A any] interface {
	EvalChild(child *Node[M, R, A], turn P, parentVisits int, ea EvalArgs) float64
	// EvaluateLeaf scores a final state from the perspective of turn.
	EvaluateLeaf(final S, turn P) R
}

// BackPropPolicy pushes one reward from a node up to the root.
type BackPropPolicy[M comparable, R Reward, A any] interface {
	Backprop(tree *Tree[M, R, A], leaf NodeID, reward R)
}

// Policies bundles the four strategies parameterizing an MCTS.
type Policies[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] struct {
	Tree      TreePolicy[S, M, P, R, A]
	Playout   Playout[S]
	Evaluator Evaluator[S, M, P, R, A]
	Backprop  BackPropPolicy[M, R, A]
}

// DefaultPolicies returns UCT selection, lazy expansion, random playouts and
// plain backpropagation, scoring a win 1 and anything else 0.
func DefaultPolicies[S game.State[M, P, S], M comparable, P comparable, R Reward, A any]() Policies[S, M, P, R, A] {
	ev := UCTEvaluator[S, M, P, R, A]{}
	return Policies[S, M, P, R, A]{
		Tree:      LazyTreePolicy[S, M, P, R, A]{Evaluator: ev},
		Playout:   RandomPlayout[S, M, P]{},
		Evaluator: ev,
		Backprop:  DefaultBackprop[M, R, A]{},
	}
}

// Reconstruct replays history onto a clone of root. root is left untouched.
func Reconstruct[S interface {
	Play(M)
	Clone() S
}, M any](root S, history []M) S {
	state := root.Clone()
	for _, m := range history {
		state.Play(m)
	}
	return state
}
