package engine

import (
	"context"
	"fmt"
	"time"

	"lazymcts/experiments/metrics"
	"lazymcts/game"
	"lazymcts/meta"
	"lazymcts/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Local plays agents against each other in process. Each player to move is
// looked up in Agents.
type Local[S game.State[M, P, S], M comparable, P comparable] struct {
	State    S
	Agents   map[P]agent.Agent[S, M]
	MaxTurns int
	Logger   zerolog.Logger
}

// LocalEngine starts from a copy of state. It panics unless there are at least
// two agents and one for the player to move.
func LocalEngine[S game.State[M, P, S], M comparable, P comparable](state S, agents map[P]agent.Agent[S, M]) *Local[S, M, P] {
	if len(agents) < 2 {
		panic("need at least two agents")
	}
	if _, ok := agents[state.Player()]; !ok {
		panic(fmt.Sprintf("no agent for starting player %v", state.Player()))
	}
	return &Local[S, M, P]{
		State:    state.Clone(),
		Agents:   agents,
		MaxTurns: meta.MAX_TURNS,
		Logger:   log.Logger,
	}
}

// Run plays until the state is final, MaxTurns moves were played or ctx is
// cancelled. A move outside the legal moves is replaced by the first legal
// move.
func (e *Local[S, M, P]) Run(ctx context.Context) (P, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: fmt.Sprint(e.State.Player()),
		StartTime:      time.Now(),
	}
	e.Logger.Info().Msgf("player %v is starting", e.State.Player())

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.State.IsFinal() && step <= e.MaxTurns && ctx.Err() == nil; step++ {
		player := e.State.Player()
		a, ok := e.Agents[player]
		if !ok {
			panic(fmt.Sprintf("no agent for player %v", player))
		}

		move, searchMetric := a.FindMove(ctx, e.State)
		legal := e.State.LegalMoves()
		if slices.Index(legal, move) < 0 {
			e.Logger.Warn().Msgf("player %v returned illegal move %v, playing %v instead", player, move, legal[0])
			move = legal[0]
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       fmt.Sprint(player),
			SearchMetric: searchMetric,
		})

		e.Logger.Debug().Msgf("turn %d: player %v plays %v", step, player, move)
		e.State.Play(move)
	}

	var winner P
	if e.State.IsFinal() {
		winner = e.State.Winner()
	} else {
		e.Logger.Info().Msgf("stopped after %d turns (no winner yet)", len(moveMetrics))
	}

	var none P
	if winner != none {
		gameMetric.Winner = fmt.Sprint(winner)
	}
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	e.Logger.Info().Msgf("game over after %d moves, winner: %q", gameMetric.TotalMoves, gameMetric.Winner)
	return winner, gameMetric, moveMetrics
}
