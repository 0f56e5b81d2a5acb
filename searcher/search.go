package searcher

import (
	"context"

	"lazymcts/experiments/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Search runs the configured number of episodes, or episodes until the
// configured duration elapsed, on the configured number of goroutines.
//
// Selection and expansion run one at a time under the tree lock, playouts run
// in parallel without it, backpropagation takes the lock again. Cancelling ctx
// stops workers from starting new episodes; running episodes complete.
//
// The returned metric is zero unless WithMetrics sets a collector.
func (m *MCTS[S, M, P, R, A]) Search(ctx context.Context) (metrics.SearchMetric, error) {
	goroutines := max(1, m.config.Goroutines)
	ctx, span := m.config.Tracer.Start(ctx, "mcts.Search",
		trace.WithAttributes(
			attribute.String("search", m.id),
			attribute.Int("goroutines", goroutines),
			attribute.Int("episodes", m.config.Episodes),
			attribute.Int64("duration_ms", m.config.Duration.Milliseconds()),
		),
	)
	defer span.End()

	m.config.Metrics.Start(goroutines)
	m.logger.Debug().
		Int("goroutines", goroutines).
		Int("episodes", m.config.Episodes).
		Dur("duration", m.config.Duration).
		Msg("search started")

	var err error
	if m.config.Episodes > 0 {
		err = m.iterate(ctx, goroutines)
	} else if m.config.Duration > 0 {
		err = m.countdown(ctx, goroutines)
	} else {
		panic("Must specify search episodes or duration")
	}

	size := m.Size()
	metric := m.config.Metrics.Complete(size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search interrupted")
	}
	span.SetAttributes(attribute.Int("tree_size", size))
	m.logger.Info().
		Int("root_visits", m.tree.Root().Visits).
		Int("tree_size", size).
		Dur("elapsed", metric.Duration).
		Err(err).
		Msg("search completed")
	return metric, err
}

func (m *MCTS[S, M, P, R, A]) iterate(ctx context.Context, goroutines int) error {
	task := make(chan struct{}, m.config.Episodes)
	for range m.config.Episodes {
		task <- struct{}{}
	}
	close(task)

	ea := m.EvalArgs()
	g, gctx := errgroup.WithContext(ctx)
	for range goroutines {
		pa := PlayoutArgs{Rand: m.workerRand()}
		g.Go(func() error {
			for range task {
				if err := gctx.Err(); err != nil {
					return err
				}
				m.episode(ea, pa)
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *MCTS[S, M, P, R, A]) countdown(ctx context.Context, goroutines int) error {
	deadline, cancel := context.WithTimeout(ctx, m.config.Duration)
	defer cancel()

	ea := m.EvalArgs()
	var g errgroup.Group
	for range goroutines {
		pa := PlayoutArgs{Rand: m.workerRand()}
		g.Go(func() error {
			for deadline.Err() == nil {
				m.episode(ea, pa)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Reaching the deadline is the normal way out, only the caller's
	// cancellation is an error.
	return ctx.Err()
}

// episode is Execute split around the tree lock.
func (m *MCTS[S, M, P, R, A]) episode(ea EvalArgs, pa PlayoutArgs) {
	m.mu.Lock()
	size := m.tree.Len()
	id, state := m.policies.Tree.TreePolicy(m.tree, m.root, ea, pa.Rand)
	expanded := m.tree.Len() > size
	m.mu.Unlock()

	final := m.policies.Playout.Playout(state, pa)
	reward := m.policies.Evaluator.EvaluateLeaf(final, m.player)

	m.mu.Lock()
	m.policies.Backprop.Backprop(m.tree, id, reward)
	m.mu.Unlock()

	if expanded {
		m.config.Metrics.AddExpansion()
	}
	m.config.Metrics.AddEpisode()
}

// workerRand derives an independent random source for one worker.
func (m *MCTS[S, M, P, R, A]) workerRand() *rand.Rand {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds++
	return rand.New(rand.NewSource(m.seeds))
}
