package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"lazymcts/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MaxBodyBytes is the default request body limit of a Server.
const MaxBodyBytes = 1 << 20

// Decoder reads a game state from a request body.
type Decoder[S any] func(r io.Reader) (S, error)

type moveResponse[M any] struct {
	Move       M     `json:"move"`
	Episodes   int   `json:"episodes"`
	TreeSize   int   `json:"tree_size"`
	DurationMs int64 `json:"duration_ms"`
}

// Server answers POST /findmove with the move its agent plays in the posted
// state. When Gatherer is set, GET /metrics exposes it.
type Server[S game.State[M, P, S], M comparable, P comparable] struct {
	Agent    Agent[S, M]
	Decode   Decoder[S]
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger

	MaxBodyBytes int64 // larger request bodies are rejected
}

func NewServer[S game.State[M, P, S], M comparable, P comparable](agent Agent[S, M], decode Decoder[S]) *Server[S, M, P] {
	return &Server[S, M, P]{
		Agent:        agent,
		Decode:       decode,
		Logger:       log.Logger,
		MaxBodyBytes: MaxBodyBytes,
	}
}

func (s *Server[S, M, P]) Handler() http.Handler {
	// Local mux rather than the global DefaultServeMux
	mux := http.NewServeMux()
	mux.HandleFunc("POST /findmove", s.handleFindMove)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server[S, M, P]) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Logger.Info().Str("addr", addr).Msg("agent server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

func (s *Server[S, M, P]) handleFindMove(w http.ResponseWriter, r *http.Request) {
	state, err := s.Decode(http.MaxBytesReader(w, r.Body, s.MaxBodyBytes))
	if err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if state.IsFinal() || len(state.LegalMoves()) == 0 {
		http.Error(w, "game is over", http.StatusUnprocessableEntity)
		return
	}

	move, metric := s.Agent.FindMove(r.Context(), state)
	s.Logger.Debug().
		Interface("move", move).
		Int("episodes", metric.Episodes).
		Dur("elapsed", metric.Duration).
		Msg("move found")

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(moveResponse[M]{
		Move:       move,
		Episodes:   metric.Episodes,
		TreeSize:   metric.TreeSize,
		DurationMs: metric.Duration.Milliseconds(),
	})
	if err != nil {
		s.Logger.Error().Err(err).Msg("failed to encode move")
	}
}
