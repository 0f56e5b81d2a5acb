package engine

import (
	"context"

	"lazymcts/experiments/metrics"
)

type Engine[P comparable] interface {
	// Run plays a game till it is over or a max number of turns is reached.
	// The winner is the zero P when the game is drawn or unfinished.
	Run(ctx context.Context) (winner P, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
