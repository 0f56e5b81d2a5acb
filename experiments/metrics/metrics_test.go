package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrent episodes", func(t *testing.T) {
		c := NewCollector()
		c.Start(4)

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 250 {
					c.AddEpisode()
				}
				c.AddExpansion()
			}()
		}
		wg.Wait()

		m := c.Complete(5)
		require.Equal(t, 1000, m.Episodes)
		require.Equal(t, 4, m.Expansions)
		require.Equal(t, 4, m.Goroutines)
		require.Equal(t, 5, m.TreeSize)
	})

	t.Run("start resets counts", func(t *testing.T) {
		c := NewCollector()
		c.Start(1)
		c.AddEpisode()
		c.Complete(1)

		c.Start(2)
		require.Zero(t, c.Complete(1).Episodes)
	})

	t.Run("dummy collector reports nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(3)
		c.AddEpisode()
		require.Equal(t, SearchMetric{}, c.Complete(7))
	})
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	for range 2 {
		c.Start(1)
		for range 3 {
			c.AddEpisode()
		}
		c.AddExpansion()
		m := c.Complete(2)
		require.Equal(t, 3, m.Episodes, "Per search counts should reset")
	}

	require.Equal(t, 6.0, testutil.ToFloat64(c.episodes), "Exported totals should accumulate")
	require.Equal(t, 2.0, testutil.ToFloat64(c.expansions))
	require.Equal(t, 2.0, testutil.ToFloat64(c.treeSize))
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	t.Run("concurrent searches count apart", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		shared := NewPrometheusCollector(reg)

		var wg sync.WaitGroup
		results := make([]SearchMetric, 4)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := shared.ForSearch()
				c.Start(1)
				for range 100 * (i + 1) {
					c.AddEpisode()
				}
				results[i] = c.Complete(i)
			}()
		}
		wg.Wait()

		for i, m := range results {
			require.Equal(t, 100*(i+1), m.Episodes, "Each search should only see its own episodes")
		}
		require.Equal(t, 1000.0, testutil.ToFloat64(shared.episodes), "Exported totals should cover every search")
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "tictactoe")
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{
		{ID: 0, Kind: "mcts", Goroutines: 4, Episodes: 1000, Exploration: 1.5},
		{ID: 1, Kind: "random"},
	}))
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID: 3, Agent1: 0, Agent2: 1,
		GameMetric: GameMetric{
			StartingPlayer: "X", Winner: "O",
			StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second,
			TotalMoves: 7,
		},
	}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{
		Game: 3,
		MoveMetric: MoveMetric{
			Step: 1, Player: "X",
			SearchMetric: SearchMetric{Goroutines: 4, Duration: time.Millisecond, Episodes: 1000, Expansions: 900, TreeSize: 901},
		},
	}}))

	read := func(name string) [][]string {
		f, err := os.Open(filepath.Join(w.Dir(), name))
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		return rows
	}

	configs := read("agent_configs.csv")
	require.Len(t, configs, 3)
	require.Equal(t, []string{"0", "mcts", "4", "1000", "0s", "1.5"}, configs[1])

	games := read("game_records.csv")
	require.Len(t, games, 2)
	require.Equal(t, []string{"3", "0", "1", "X", "O", "2024-05-01T12:00:00Z", "2024-05-01T12:00:01Z", "1s", "7"}, games[1])

	moves := read("move_records.csv")
	require.Equal(t, []string{"game", "step", "player", "goroutines", "duration", "episodes", "expansions", "tree_size"}, moves[0])
	require.Equal(t, []string{"3", "1", "X", "4", "1ms", "1000", "900", "901"}, moves[1])
}
