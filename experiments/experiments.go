package experiments

import (
	"context"
	"fmt"
	"time"

	"lazymcts/engine"
	"lazymcts/experiments/metrics"
	"lazymcts/game/tictactoe"
	"lazymcts/searcher"
	"lazymcts/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	NumGames   = 20 // Per match up
	TimeBudget = 10 * time.Millisecond
)

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Kind: "mcts", Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Kind: "mcts", Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Kind: "mcts", Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Kind: "mcts", Goroutines: 8, Duration: TimeBudget},
	{ID: 5, Kind: "mcts", Goroutines: 16, Duration: TimeBudget},
}

// MatchUp pairs two agent configs. Agent1 starts the even games.
type MatchUp struct {
	Agent1 metrics.AgentConfig
	Agent2 metrics.AgentConfig
}

// Result summarizes the games of one matchup from Agent1's point of view.
// A game scores 1 for a win, 0.5 for a draw and 0 for a loss.
type Result struct {
	Agent1 int
	Agent2 int
	Wins   int
	Draws  int
	Losses int
	Score  float64 // mean game score
	StdDev float64
}

type Runner struct {
	Dir       string // experiments are stored under Dir/<name>/<timestamp>
	BoardSize int
	Games     int // per matchup
	Seed      uint64
	Logger    zerolog.Logger
}

func NewRunner(dir string, boardSize int) *Runner {
	return &Runner{
		Dir:       dir,
		BoardSize: boardSize,
		Games:     NumGames,
		Seed:      1,
		Logger:    log.Logger,
	}
}

// RunThroughput plays each parallel config against itself, for the same
// playing strength and similar game length, to compare episodes per move.
func (r *Runner) RunThroughput(ctx context.Context) ([]Result, error) {
	matchUps := []MatchUp{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, MatchUp{config, config})
	}
	return r.Run(ctx, "parallelization_to_throughput", parallelConfigs, matchUps)
}

// RunStrength pairs each parallel config against the sequential baseline.
func (r *Runner) RunStrength(ctx context.Context) ([]Result, error) {
	baseline := metrics.AgentConfig{ID: 0, Kind: "mcts", Goroutines: 1, Duration: TimeBudget}
	matchUps := []MatchUp{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, MatchUp{baseline, config})
	}
	return r.Run(ctx, "parallelization_to_strength", append(parallelConfigs, baseline), matchUps)
}

// RunBaseline pairs the default search against a random player.
func (r *Runner) RunBaseline(ctx context.Context, config metrics.AgentConfig) ([]Result, error) {
	random := metrics.AgentConfig{ID: 0, Kind: "random"}
	return r.Run(ctx, "mcts_vs_random", []metrics.AgentConfig{random, config}, []MatchUp{{config, random}})
}

// Run plays r.Games games per matchup, stores configs, games and moves as CSV
// files and returns one result per matchup.
func (r *Runner) Run(ctx context.Context, name string, configs []metrics.AgentConfig, matchUps []MatchUp) ([]Result, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	results := make([]Result, 0, len(matchUps))

	r.Logger.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		r.Logger.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), matchUp.Agent1, matchUp.Agent2)

		result := Result{Agent1: matchUp.Agent1.ID, Agent2: matchUp.Agent2.ID}
		scores := make([]float64, 0, r.Games)
		for i := range r.Games {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			count++

			// Alternate the starting agent
			first, second := matchUp.Agent1, matchUp.Agent2
			if i%2 == 1 {
				first, second = second, first
			}
			seed := r.Seed + uint64(count)*2
			winner, gameMetric, moveMetrics := r.runGame(ctx, first, second, seed)

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     first.ID,
				Agent2:     second.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			agent1Mark := tictactoe.Cross
			if i%2 == 1 {
				agent1Mark = tictactoe.Circle
			}
			switch winner {
			case tictactoe.None:
				result.Draws++
				scores = append(scores, 0.5)
			case agent1Mark:
				result.Wins++
				scores = append(scores, 1)
			default:
				result.Losses++
				scores = append(scores, 0)
			}

			r.Logger.Debug().Msgf("completed matchup %d of %d game %d with winner: %q", mi+1, len(matchUps), i+1, gameMetric.Winner)
		}

		if len(scores) > 0 {
			result.Score = stat.Mean(scores, nil)
		}
		if len(scores) > 1 {
			result.StdDev = stat.StdDev(scores, nil)
		}
		results = append(results, result)
		r.Logger.Info().Msgf("completed matchup %d of %d: %d wins, %d draws, %d losses, score %.3f", mi+1, len(matchUps), result.Wins, result.Draws, result.Losses, result.Score)
	}

	r.Logger.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(r.Dir, name)
	if err != nil {
		return results, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err = writer.WriteAgentConfigs(configs); err != nil {
		return results, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err = writer.WriteGameRecords(gameRecords); err != nil {
		return results, fmt.Errorf("failed to store game records: %w", err)
	}
	if err = writer.WriteMoveRecords(moveRecords); err != nil {
		return results, fmt.Errorf("failed to store move records: %w", err)
	}
	r.Logger.Info().Str("dir", writer.Dir()).Msg("stored experiment records")

	return results, nil
}

// runGame plays a single game, first playing Cross.
func (r *Runner) runGame(ctx context.Context, first, second metrics.AgentConfig, seed uint64) (tictactoe.Player, metrics.GameMetric, []metrics.MoveMetric) {
	agents := map[tictactoe.Player]agent.Agent[*tictactoe.Board, tictactoe.Move]{
		tictactoe.Cross:  r.createAgent(first, seed),
		tictactoe.Circle: r.createAgent(second, seed+1),
	}
	e := engine.LocalEngine(tictactoe.New(r.BoardSize), agents)
	e.Logger = r.Logger
	return e.Run(ctx)
}

func (r *Runner) createAgent(config metrics.AgentConfig, seed uint64) agent.Agent[*tictactoe.Board, tictactoe.Move] {
	if config.Kind == "random" {
		return agent.NewRandomAgent[*tictactoe.Board, tictactoe.Move, tictactoe.Player](seed)
	}

	options := []searcher.Option{
		searcher.WithSeed(seed),
		searcher.WithLogger(r.Logger),
	}
	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	return agent.NewMCTSAgent[*tictactoe.Board, tictactoe.Move, tictactoe.Player](options...)
}
