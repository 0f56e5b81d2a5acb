package searcher

import "fmt"

// Tree is an arena of nodes. Parents own their children through index lists,
// children point back to their parent by index. Nodes are never removed.
type Tree[M comparable, R Reward, A any] struct {
	nodes []*Node[M, R, A]
}

// NewTree creates a tree holding only the root.
func NewTree[M comparable, R Reward, A any](root *Node[M, R, A], capacity int) *Tree[M, R, A] {
	t := &Tree[M, R, A]{nodes: make([]*Node[M, R, A], 0, max(1, capacity))}
	root.id = 0
	root.parent = NoParent
	root.children = nil
	t.nodes = append(t.nodes, root)
	return t
}

func (t *Tree[M, R, A]) RootID() NodeID {
	return 0
}

func (t *Tree[M, R, A]) Root() *Node[M, R, A] {
	return t.nodes[0]
}

// Get panics on an id that does not belong to the tree.
func (t *Tree[M, R, A]) Get(id NodeID) *Node[M, R, A] {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("node %d not in tree of size %d", id, len(t.nodes)))
	}
	return t.nodes[id]
}

// Len returns the number of nodes.
func (t *Tree[M, R, A]) Len() int {
	return len(t.nodes)
}

// Append adds node as the last child of parent and returns its id.
func (t *Tree[M, R, A]) Append(parent NodeID, node *Node[M, R, A]) NodeID {
	p := t.Get(parent)
	node.id = NodeID(len(t.nodes))
	node.parent = parent
	node.children = nil
	t.nodes = append(t.nodes, node)
	p.children = append(p.children, node.id)
	return node.id
}

// Walk visits nodes depth-first, parents before children. Returning false
// skips the node's subtree.
func (t *Tree[M, R, A]) Walk(fn func(node *Node[M, R, A], depth int) bool) {
	t.walk(t.RootID(), 0, fn)
}

func (t *Tree[M, R, A]) walk(id NodeID, depth int, fn func(*Node[M, R, A], int) bool) {
	node := t.Get(id)
	if !fn(node, depth) {
		return
	}
	for _, child := range node.children {
		t.walk(child, depth+1, fn)
	}
}
