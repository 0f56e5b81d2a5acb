package searcher

import "lazymcts/game"

// RandomPlayout plays uniformly random legal moves until the game is over.
// The game must guarantee that every line of play terminates.
type RandomPlayout[S game.State[M, P, S], M comparable, P comparable] struct{}

func (RandomPlayout[S, M, P]) Playout(state S, pa PlayoutArgs) S {
	for !state.IsFinal() {
		moves := state.LegalMoves()
		state.Play(moves[pa.Rand.Intn(len(moves))])
	}
	return state
}
