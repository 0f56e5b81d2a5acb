package searcher

import (
	"math"
	"time"

	"lazymcts/experiments/metrics"
	"lazymcts/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"lukechampine.com/frand"
)

// Config holds the search hyperparameters. Build it through Options.
type Config struct {
	Goroutines  int
	Episodes    int
	Duration    time.Duration
	Exploration float64
	Seed        uint64
	Logger      zerolog.Logger
	Metrics     metrics.Collector
	Tracer      trace.Tracer
}

type Option func(c *Config)

func defaultConfig() Config {
	return Config{
		Goroutines:  meta.GO_ROUTINES,
		Episodes:    meta.EPISODES,
		Exploration: DefaultExploration,
		Seed:        frand.Uint64n(math.MaxUint64),
		Logger:      log.Logger,
		Metrics:     metrics.NewDummyCollector(),
		Tracer:      otel.Tracer("lazymcts/searcher"),
	}
}

func WithGoroutines(goroutines int) Option {
	return func(c *Config) {
		if goroutines > 0 {
			c.Goroutines = goroutines
		}
	}
}

// WithEpisodes bounds Search by a number of episodes. It replaces a duration
// set before it.
func WithEpisodes(episodes int) Option {
	return func(c *Config) {
		if episodes > 0 {
			c.Episodes = episodes
			c.Duration = 0
		}
	}
}

// WithDuration bounds Search by wall time. It replaces an episode count set
// before it.
func WithDuration(duration time.Duration) Option {
	return func(c *Config) {
		if duration > 0 {
			c.Duration = duration
			c.Episodes = 0
		}
	}
}

func WithExploration(c float64) Option {
	return func(cfg *Config) {
		cfg.Exploration = max(0, c)
	}
}

// WithSeed fixes the random sources of the search.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(c *Config) {
		if collector != nil {
			c.Metrics = collector
		}
	}
}

// WithTracer traces every Search as one span. Defaults to the global tracer
// provider, a no-op unless the program installs one.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		if tracer != nil {
			c.Tracer = tracer
		}
	}
}
