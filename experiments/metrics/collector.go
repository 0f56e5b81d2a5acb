package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines int
	Duration   time.Duration
	Episodes   int
	Expansions int // nodes added to the tree during the search
	TreeSize   int
}

type MoveMetric struct {
	Step   int
	Player string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer string
	Winner         string // "" for a draw or an unfinished game
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers the statistics of one search. AddEpisode and AddExpansion
// are called concurrently by the search workers.
type Collector interface {
	Start(goroutines int)
	AddEpisode()
	AddExpansion()
	Complete(treeSize int) SearchMetric
}

// SearchFactory is implemented by collectors shared between searches. Every
// search then counts into its own ForSearch collector.
type SearchFactory interface {
	ForSearch() Collector
}

// collector is safe for concurrent use. Sharing one between concurrent
// searches mixes their counts in the returned SearchMetric.
type collector struct {
	goroutines atomic.Int32
	startTime  atomic.Int64 // unix nanoseconds
	episodes   atomic.Int32
	expansions atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines int) {
	m.startTime.Store(time.Now().UnixNano())
	m.goroutines.Store(int32(goroutines))
	m.episodes.Store(0)
	m.expansions.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) Complete(treeSize int) SearchMetric {
	return SearchMetric{
		Goroutines: int(m.goroutines.Load()),
		Duration:   time.Since(time.Unix(0, m.startTime.Load())),
		Episodes:   int(m.episodes.Load()),
		Expansions: int(m.expansions.Load()),
		TreeSize:   treeSize,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)               {}
func (m *dummyCollector) AddEpisode()                        {}
func (m *dummyCollector) AddExpansion()                      {}
func (m *dummyCollector) Complete(treeSize int) SearchMetric { return SearchMetric{} }
