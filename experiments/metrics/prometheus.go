package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector counts like NewCollector and also exports the totals
// to a Prometheus registry. Concurrent searches must each use ForSearch,
// which NewMCTS does on its own.
type PrometheusCollector struct {
	Collector
	episodes   prometheus.Counter
	expansions prometheus.Counter
	searches   prometheus.Histogram
	treeSize   prometheus.Gauge
}

func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)
	return &PrometheusCollector{
		Collector: NewCollector(),
		episodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcts_episodes_total",
			Help: "Completed select/expand/playout/backprop cycles",
		}),
		expansions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcts_expansions_total",
			Help: "Nodes added to search trees",
		}),
		searches: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcts_search_duration_seconds",
			Help:    "Wall time of complete searches",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		treeSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mcts_tree_size",
			Help: "Number of nodes of the last completed search tree",
		}),
	}
}

// ForSearch returns a collector with its own per search counts, exporting to
// the same Prometheus metrics as m.
func (m *PrometheusCollector) ForSearch() Collector {
	search := *m
	search.Collector = NewCollector()
	return &search
}

func (m *PrometheusCollector) AddEpisode() {
	m.Collector.AddEpisode()
	m.episodes.Inc()
}

func (m *PrometheusCollector) AddExpansion() {
	m.Collector.AddExpansion()
	m.expansions.Inc()
}

func (m *PrometheusCollector) Complete(treeSize int) SearchMetric {
	metric := m.Collector.Complete(treeSize)
	m.searches.Observe(metric.Duration.Seconds())
	m.treeSize.Set(float64(treeSize))
	return metric
}
