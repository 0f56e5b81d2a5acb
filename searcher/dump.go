package searcher

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// WriteTree dumps the tree, one node per line as "visits;reward_sum" preceded
// by the move for non-root nodes. The most visited root child is highlighted
// when the profile supports colors.
func (m *MCTS[S, M, P, R, A]) WriteTree(w io.Writer, profile termenv.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bw := bufio.NewWriter(w)
	d := dumper[M, R, A]{tree: m.tree, w: bw, profile: profile, highlight: NoParent}

	root := m.tree.Root()
	mostVisits := -1
	for _, id := range root.children {
		if v := m.tree.Get(id).Visits; v > mostVisits {
			mostVisits = v
			d.highlight = id
		}
	}

	fmt.Fprintf(bw, "%d;%v\n", root.Visits, root.RewardSum)
	for i, id := range root.children {
		d.write(id, "", i == len(root.children)-1)
	}
	return bw.Flush()
}

// String dumps the tree without colors.
func (m *MCTS[S, M, P, R, A]) String() string {
	var sb strings.Builder
	_ = m.WriteTree(&sb, termenv.Ascii)
	return sb.String()
}

type dumper[M comparable, R Reward, A any] struct {
	tree      *Tree[M, R, A]
	w         io.Writer
	profile   termenv.Profile
	highlight NodeID
}

func (d dumper[M, R, A]) write(id NodeID, prefix string, last bool) {
	node := d.tree.Get(id)
	branch, indent := "├── ", "│   "
	if last {
		branch, indent = "└── ", "    "
	}

	move, _ := node.Move()
	line := fmt.Sprintf("%v %d;%v", move, node.Visits, node.RewardSum)
	if id == d.highlight {
		line = d.profile.String(line).Foreground(d.profile.Color("2")).Bold().String()
	}
	fmt.Fprintf(d.w, "%s%s%s\n", prefix, branch, line)

	for i, child := range node.children {
		d.write(child, prefix+indent, i == len(node.children)-1)
	}
}
