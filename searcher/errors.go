package searcher

import "errors"

var (
	// ErrNoChildren is raised when a best child is requested from a node that
	// was never expanded, e.g. BestMove before any Execute.
	ErrNoChildren = errors.New("node has no children")
	// ErrTerminalRoot is raised when a search is created on a final state.
	ErrTerminalRoot = errors.New("root state is final or has no legal moves")
)
