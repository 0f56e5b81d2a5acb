package searcher

// DefaultBackprop adds the reward to every node from the leaf up to the root,
// root included, and counts one visit on each.
type DefaultBackprop[M comparable, R Reward, A any] struct{}

func (DefaultBackprop[M, R, A]) Backprop(tree *Tree[M, R, A], leaf NodeID, reward R) {
	for id := leaf; id != NoParent; {
		node := tree.Get(id)
		node.Visits++
		node.RewardSum += reward
		id = node.parent
	}
}
