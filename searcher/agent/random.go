package agent

import (
	"context"
	"sync"

	"lazymcts/experiments/metrics"
	"lazymcts/game"

	"golang.org/x/exp/rand"
)

type randomAgent[S game.State[M, P, S], M comparable, P comparable] struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAgent returns an agent playing uniformly random legal moves.
func NewRandomAgent[S game.State[M, P, S], M comparable, P comparable](seed uint64) Agent[S, M] {
	return &randomAgent[S, M, P]{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent[S, M, P]) FindMove(_ context.Context, state S) (M, metrics.SearchMetric) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		panic("no legal moves")
	}
	a.mu.Lock()
	i := a.rng.Intn(len(moves))
	a.mu.Unlock()
	return moves[i], metrics.SearchMetric{}
}
