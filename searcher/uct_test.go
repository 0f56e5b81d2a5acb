package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestUCTValue(t *testing.T) {
	t.Run("known value", func(t *testing.T) {
		require.InDelta(t, 1.339088, UCTValue(500, 0, 10, math.Sqrt2), 1e-6)
	})

	t.Run("unvisited child scores zero", func(t *testing.T) {
		require.Zero(t, UCTValue(10, 0, 0, DefaultExploration))
	})

	t.Run("no exploration is the mean", func(t *testing.T) {
		require.Equal(t, 0.25, UCTValue(40, 1, 4, 0))
	})
}

func TestEvaluators(t *testing.T) {
	won := newRace(2)
	won.Play(2) // player 1 wins

	t.Run("uct evaluator scores wins only", func(t *testing.T) {
		ev := UCTEvaluator[*race, int, int, float64, struct{}]{}
		require.Equal(t, WIN, ev.EvaluateLeaf(won, 1))
		require.Equal(t, LOSS, ev.EvaluateLeaf(won, 2))
	})

	t.Run("uct evaluator works with integer rewards", func(t *testing.T) {
		ev := UCTEvaluator[*race, int, int, int, struct{}]{}
		require.Equal(t, 1, ev.EvaluateLeaf(won, 1))
		require.Equal(t, 0, ev.EvaluateLeaf(won, 2))
	})

	t.Run("outcome evaluator shapes rewards", func(t *testing.T) {
		ev := OutcomeEvaluator[*race, int, int, int, struct{}]{NoWinner: 0, Win: 2, Draw: 1, Loss: -2}
		require.Equal(t, 2, ev.EvaluateLeaf(won, 1))
		require.Equal(t, -2, ev.EvaluateLeaf(won, 2))
	})

	t.Run("children are scored with uct", func(t *testing.T) {
		ev := UCTEvaluator[*race, int, int, float64, struct{}]{}
		child := &raceNode{Visits: 10, RewardSum: 0}
		require.InDelta(t, 1.339088, ev.EvalChild(child, 1, 500, EvalArgs{Exploration: math.Sqrt2}), 1e-6)
	})
}

func TestRandomPlayout(t *testing.T) {
	t.Run("plays to a final state", func(t *testing.T) {
		final := RandomPlayout[*race, int, int]{}.Playout(newRace(10), PlayoutArgs{Rand: rand.New(rand.NewSource(3))})
		require.True(t, final.IsFinal())
		require.Contains(t, []int{10, 11}, final.total)
	})

	t.Run("final state is returned unchanged", func(t *testing.T) {
		state := newRace(1)
		state.Play(1)
		final := RandomPlayout[*race, int, int]{}.Playout(state, PlayoutArgs{Rand: rand.New(rand.NewSource(3))})
		require.Equal(t, 1, final.total)
		require.Equal(t, 1, final.Winner())
	})
}

func TestLazyTreePolicy(t *testing.T) {
	policies := DefaultPolicies[*race, int, int, float64, struct{}]()
	rng := rand.New(rand.NewSource(1))
	ea := EvalArgs{Exploration: DefaultExploration}

	t.Run("expands every root move before descending", func(t *testing.T) {
		root := newRace(5)
		tree := NewTree(&raceNode{Unexpanded: root.LegalMoves(), Hash: root.Hash()}, 0)

		first, s1 := policies.Tree.TreePolicy(tree, root, ea, rng)
		policies.Backprop.Backprop(tree, first, 1)
		second, s2 := policies.Tree.TreePolicy(tree, root, ea, rng)
		policies.Backprop.Backprop(tree, second, 0)

		require.Equal(t, []NodeID{first, second}, tree.Root().Children())
		require.Empty(t, tree.Root().Unexpanded)
		require.ElementsMatch(t, []int{1, 2}, []int{s1.total, s2.total})
		require.Zero(t, root.total, "Root state should never be mutated")

		third, _ := policies.Tree.TreePolicy(tree, root, ea, rng)
		require.Equal(t, first, tree.Get(third).Parent(), "Selection should descend into the rewarded child")
	})

	t.Run("terminal node is returned as is", func(t *testing.T) {
		root := newRace(1)
		tree := NewTree(&raceNode{Unexpanded: root.LegalMoves()}, 0)
		for range 2 {
			id, _ := policies.Tree.TreePolicy(tree, root, ea, rng)
			policies.Backprop.Backprop(tree, id, 1)
		}

		size := tree.Len()
		id, state := policies.Tree.TreePolicy(tree, root, ea, rng)
		require.Equal(t, size, tree.Len(), "A terminal leaf should not grow the tree")
		require.True(t, state.IsFinal())
		require.Equal(t, tree.RootID(), tree.Get(id).Parent())
	})

	t.Run("best child of a leaf panics", func(t *testing.T) {
		tree := NewTree(&raceNode{}, 0)
		err := recoverError(func() { policies.Tree.BestChild(tree, 1, tree.RootID(), ea) })
		require.ErrorIs(t, err, ErrNoChildren)
	})

	t.Run("best child has the maximal score", func(t *testing.T) {
		tree := NewTree(&raceNode{Visits: 9}, 0)
		a := tree.Append(tree.RootID(), &raceNode{History: []int{1}, Visits: 3, RewardSum: 2})
		b := tree.Append(tree.RootID(), &raceNode{History: []int{2}, Visits: 3, RewardSum: 2})
		tree.Append(tree.RootID(), &raceNode{History: []int{3}, Visits: 3, RewardSum: 0})

		got := policies.Tree.BestChild(tree, 1, tree.RootID(), ea)
		require.Contains(t, []NodeID{a, b}, got, "Any of the tied best children may be chosen")
	})
}

func recoverError(fn func()) (err error) {
	defer func() {
		err, _ = recover().(error)
	}()
	fn()
	return nil
}
