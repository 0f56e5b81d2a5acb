package agent

import (
	"context"

	"lazymcts/experiments/metrics"
	"lazymcts/game"
	"lazymcts/searcher"

	"github.com/rs/zerolog/log"
)

type Agent[S any, M comparable] interface {
	// FindMove returns the move to play in state and the metrics of the search
	// behind it, zero when the agent does not search.
	FindMove(ctx context.Context, state S) (M, metrics.SearchMetric)
}

type mctsAgent[S game.State[M, P, S], M comparable, P comparable] struct {
	options []searcher.Option
}

// NewMCTSAgent returns an agent building a fresh search tree for every move,
// configured by options, and playing the best root move.
func NewMCTSAgent[S game.State[M, P, S], M comparable, P comparable](options ...searcher.Option) Agent[S, M] {
	return mctsAgent[S, M, P]{options: options}
}

func (a mctsAgent[S, M, P]) FindMove(ctx context.Context, state S) (M, metrics.SearchMetric) {
	// Metrics are per search, so every move gets its own collector unless the
	// options bring one. Shared collectors split per search in NewMCTS.
	options := append([]searcher.Option{searcher.WithMetrics(metrics.NewCollector())}, a.options...)
	mcts := searcher.NewDefault[S, M, P](state, options...)

	metric, err := mcts.Search(ctx)
	if err != nil {
		log.Warn().Err(err).Int("episodes", metric.Episodes).Msg("search interrupted")
	}
	if !mcts.Tree().Root().HasChildren() {
		mcts.Execute(mcts.EvalArgs(), mcts.PlayoutArgs())
	}
	return mcts.BestMove(mcts.EvalArgs()), metric
}
