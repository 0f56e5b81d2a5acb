package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lazymcts/experiments/metrics"
	"lazymcts/game/tictactoe"
	"lazymcts/searcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type (
	board  = *tictactoe.Board
	move   = tictactoe.Move
	player = tictactoe.Player
)

// forcedWin has Circle to move: (0,2) wins, (1,2) lets Cross win on (0,2).
func forcedWin(t *testing.T) *tictactoe.Board {
	t.Helper()
	const x, o, e = tictactoe.Cross, tictactoe.Circle, tictactoe.None
	b, err := tictactoe.FromCells([][]tictactoe.Player{
		{o, o, e},
		{x, x, e},
		{x, o, x},
	}, tictactoe.Circle)
	require.NoError(t, err)
	return b
}

func mctsOptions() []searcher.Option {
	return []searcher.Option{
		searcher.WithEpisodes(200),
		searcher.WithGoroutines(2),
		searcher.WithSeed(7),
		searcher.WithLogger(zerolog.Nop()),
	}
}

func TestMCTSAgent(t *testing.T) {
	t.Run("plays the winning move", func(t *testing.T) {
		a := NewMCTSAgent[board, move, player](mctsOptions()...)
		got, metric := a.FindMove(context.Background(), forcedWin(t))
		require.Equal(t, move{Row: 0, Col: 2}, got)
		require.Equal(t, 200, metric.Episodes)
		require.Equal(t, 2, metric.Goroutines)
	})

	t.Run("leaves the state untouched", func(t *testing.T) {
		b := tictactoe.New(3)
		a := NewMCTSAgent[board, move, player](mctsOptions()...)
		got, _ := a.FindMove(context.Background(), b)
		require.Contains(t, b.LegalMoves(), got)
		require.True(t, b.Equal(tictactoe.New(3)))
	})

	t.Run("cancelled search still plays a legal move", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := NewMCTSAgent[board, move, player](mctsOptions()...)
		got, metric := a.FindMove(ctx, tictactoe.New(3))
		require.Contains(t, tictactoe.New(3).LegalMoves(), got)
		require.Zero(t, metric.Episodes)
	})
}

func TestMCTSAgentConcurrent(t *testing.T) {
	reg := prometheus.NewRegistry()
	options := append(mctsOptions(), searcher.WithEpisodes(500), searcher.WithMetrics(metrics.NewPrometheusCollector(reg)))
	a := NewMCTSAgent[board, move, player](options...)

	var wg sync.WaitGroup
	episodes := make([]int, 4)
	for i := range episodes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, metric := a.FindMove(context.Background(), tictactoe.New(3))
			episodes[i] = metric.Episodes
		}()
	}
	wg.Wait()

	require.Equal(t, []int{500, 500, 500, 500}, episodes, "Every move should report its own search")
	total, err := testutil.GatherAndCount(reg, "mcts_episodes_total")
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestRandomAgent(t *testing.T) {
	a := NewRandomAgent[board, move, player](1)
	b := tictactoe.New(3)
	seen := map[move]bool{}
	for range 200 {
		got, metric := a.FindMove(context.Background(), b)
		require.Contains(t, b.LegalMoves(), got)
		require.Zero(t, metric)
		seen[got] = true
	}
	require.Greater(t, len(seen), 1, "Random agent should not always play the same move")

	require.Panics(t, func() {
		final := forcedWin(t)
		final.Play(move{Row: 0, Col: 2})
		a.FindMove(context.Background(), final)
	})
}

func TestSamplingAgent(t *testing.T) {
	t.Run("low temperature plays the most visited move", func(t *testing.T) {
		a := NewSamplingAgent[board, move, player](0.01, 3, mctsOptions()...)
		got, _ := a.FindMove(context.Background(), forcedWin(t))
		require.Equal(t, move{Row: 0, Col: 2}, got)
	})

	t.Run("cancelled search still plays a legal move", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := NewSamplingAgent[board, move, player](1, 3, mctsOptions()...)
		got, metric := a.FindMove(ctx, tictactoe.New(3))
		require.Contains(t, tictactoe.New(3).LegalMoves(), got)
		require.Zero(t, metric.Episodes)
	})

	t.Run("non positive temperature panics", func(t *testing.T) {
		require.Panics(t, func() { NewSamplingAgent[board, move, player](0, 3) })
	})

	t.Run("sample follows weights", func(t *testing.T) {
		a := NewSamplingAgent[board, move, player](1, 3).(*samplingAgent[board, move, player])
		for range 50 {
			require.Equal(t, 1, sample([]float64{0, 2, 0}, a.rng))
		}
		i := sample([]float64{0, 0}, a.rng)
		require.Contains(t, []int{0, 1}, i, "All zero weights should draw uniformly")
	})
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"}))

	options := append(mctsOptions(), searcher.WithMetrics(metrics.NewPrometheusCollector(reg)))
	srv := NewServer[board, move, player](NewMCTSAgent[board, move, player](options...), tictactoe.Decode)
	srv.Logger = zerolog.Nop()
	srv.Gatherer = reg
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	post := func(body []byte) *http.Response {
		resp, err := http.Post(ts.URL+"/findmove", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	t.Run("finds a move", func(t *testing.T) {
		body, err := json.Marshal(forcedWin(t))
		require.NoError(t, err)
		resp := post(body)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got moveResponse[move]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, move{Row: 0, Col: 2}, got.Move)
		require.Equal(t, 200, got.Episodes)
		require.Positive(t, got.TreeSize)
	})

	t.Run("bad payload", func(t *testing.T) {
		resp := post([]byte(`{"cells": "nope"}`))
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("oversized payload", func(t *testing.T) {
		small := NewServer[board, move, player](srv.Agent, tictactoe.Decode)
		small.Logger = zerolog.Nop()
		small.MaxBodyBytes = 16
		body, err := json.Marshal(forcedWin(t))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		small.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/findmove", bytes.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("concurrent requests report their own search", func(t *testing.T) {
		body, err := json.Marshal(tictactoe.New(3))
		require.NoError(t, err)

		var wg sync.WaitGroup
		got := make([]moveResponse[move], 4)
		codes := make([]int, 4)
		for i := range got {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := http.Post(ts.URL+"/findmove", "application/json", bytes.NewReader(body))
				if err != nil {
					return
				}
				defer resp.Body.Close()
				codes[i] = resp.StatusCode
				_ = json.NewDecoder(resp.Body).Decode(&got[i])
			}()
		}
		wg.Wait()

		for i := range got {
			require.Equal(t, http.StatusOK, codes[i])
			require.Equal(t, 200, got[i].Episodes)
		}
	})

	t.Run("finished game", func(t *testing.T) {
		final := forcedWin(t)
		final.Play(move{Row: 0, Col: 2})
		body, err := json.Marshal(final)
		require.NoError(t, err)
		resp := post(body)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/findmove")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "test_total")
	})
}
