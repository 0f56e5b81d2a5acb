package game

// Any game that aims to be searchable by the MCTS engine implements State. The
// searcher package only consumes this interface, it never looks inside a state.

type StateHash uint64

// State is mutable: Play applies a move in place. The engine only ever calls
// Play on clones it owns, with a move taken from that same state's LegalMoves.
type State[M comparable, P comparable, S any] interface {
	// LegalMoves returns the moves available to the player to move. Order is
	// irrelevant. It may be empty only when IsFinal holds.
	LegalMoves() []M
	// Player returns the player to move.
	Player() P
	// IsFinal reports whether the game is over.
	IsFinal() bool
	// Play applies the move to the state.
	Play(move M)
	// Winner is only defined once IsFinal holds. Draws must be representable
	// in P (e.g. a sentinel value).
	Winner() P
	// Hash is informational only.
	Hash() StateHash
	// Clone returns a deep, independent copy.
	Clone() S
}
