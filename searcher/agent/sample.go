package agent

import (
	"context"
	"math"
	"sync"

	"lazymcts/experiments/metrics"
	"lazymcts/game"
	"lazymcts/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type samplingAgent[S game.State[M, P, S], M comparable, P comparable] struct {
	mcts        mctsAgent[S, M, P]
	temperature float64
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewSamplingAgent searches like NewMCTSAgent but samples the played move from
// the root visit counts raised to 1/temperature. A temperature close to 0
// plays the most visited move, 1 samples proportionally to visits. Useful to
// diversify self-play games.
func NewSamplingAgent[S game.State[M, P, S], M comparable, P comparable](temperature float64, seed uint64, options ...searcher.Option) Agent[S, M] {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	return &samplingAgent[S, M, P]{
		mcts:        mctsAgent[S, M, P]{options: options},
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *samplingAgent[S, M, P]) FindMove(ctx context.Context, state S) (M, metrics.SearchMetric) {
	options := append([]searcher.Option{searcher.WithMetrics(metrics.NewCollector())}, a.mcts.options...)
	mcts := searcher.NewDefault[S, M, P](state, options...)
	metric, err := mcts.Search(ctx)
	if err != nil {
		log.Warn().Err(err).Int("episodes", metric.Episodes).Msg("search interrupted")
	}

	tree := mcts.Tree()
	children := tree.Root().Children()
	if len(children) == 0 {
		mcts.Execute(mcts.EvalArgs(), mcts.PlayoutArgs())
		children = tree.Root().Children()
	}

	weights := make([]float64, len(children))
	for i, id := range children {
		weights[i] = float64(tree.Get(id).Visits)
	}
	// Scaling by the largest count first keeps small temperatures from
	// overflowing.
	if most := floats.Max(weights); most > 0 {
		for i := range weights {
			weights[i] = math.Pow(weights[i]/most, 1/a.temperature)
		}
	}

	a.mu.Lock()
	i := sample(weights, a.rng)
	a.mu.Unlock()

	move, _ := tree.Get(children[i]).Move()
	return move, metric
}

// sample draws an index with probability proportional to its weight. All
// zero weights draw uniformly.
func sample(weights []float64, rng *rand.Rand) int {
	cumulative := make([]float64, len(weights))
	floats.CumSum(cumulative, weights)
	total := cumulative[len(cumulative)-1]
	if total == 0 {
		return rng.Intn(len(weights))
	}

	sampled := rng.Float64() * total
	for i, c := range cumulative {
		if sampled < c {
			return i
		}
	}
	return len(weights) - 1 // rounding
}
