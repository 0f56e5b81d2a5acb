package searcher

import (
	"lazymcts/game"

	"golang.org/x/exp/constraints"
)

// Reward accumulates simulation outcomes. Any integer or float type works:
// the zero value is the additive identity and float64(r) the approximation
// used for scoring.
type Reward interface {
	constraints.Integer | constraints.Float
}

// NodeID is a stable index into a Tree. Ids are never reused.
type NodeID int

// NoParent is the parent of the root.
const NoParent NodeID = -1

// Node is a lazy node: it stores the move history from the root instead of a
// game state. The state is rebuilt by replaying History onto the root state.
type Node[M comparable, R Reward, A any] struct {
	Visits     int
	RewardSum  R
	Unexpanded []M // legal moves without a child yet
	History    []M
	Hash       game.StateHash
	Info       A

	id       NodeID
	parent   NodeID
	children []NodeID
}

func (n *Node[M, R, A]) ID() NodeID {
	return n.id
}

func (n *Node[M, R, A]) Parent() NodeID {
	return n.parent
}

// Children returns the ids of the expanded children in creation order.
func (n *Node[M, R, A]) Children() []NodeID {
	return n.children
}

func (n *Node[M, R, A]) HasChildren() bool {
	return len(n.children) > 0
}

func (n *Node[M, R, A]) CanAddChild() bool {
	return len(n.Unexpanded) > 0
}

// Move returns the move leading to this node. ok is false for the root.
func (n *Node[M, R, A]) Move() (move M, ok bool) {
	if len(n.History) == 0 {
		return move, false
	}
	return n.History[len(n.History)-1], true
}

// MeanReward is RewardSum/Visits, 0 for an unvisited node.
func (n *Node[M, R, A]) MeanReward() float64 {
	if n.Visits == 0 {
		return 0
	}
	return float64(n.RewardSum) / float64(n.Visits)
}

// takeUnexpanded removes the i-th unexpanded move by swapping it with the last.
func (n *Node[M, R, A]) takeUnexpanded(i int) M {
	last := len(n.Unexpanded) - 1
	move := n.Unexpanded[i]
	n.Unexpanded[i] = n.Unexpanded[last]
	n.Unexpanded = n.Unexpanded[:last]
	return move
}
