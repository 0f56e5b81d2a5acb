package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"lazymcts/engine"
	"lazymcts/experiments"
	"lazymcts/experiments/metrics"
	"lazymcts/game/tictactoe"
	"lazymcts/meta"
	"lazymcts/searcher"
	"lazymcts/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	board  = *tictactoe.Board
	move   = tictactoe.Move
	player = tictactoe.Player
)

func main() {
	mode := flag.String("mode", "best", "One of best, selfplay, experiment, serve")
	size := flag.Int("size", meta.BOARD_SIZE, "Tic-tac-toe board size")
	boardJSON := flag.String("board", "", `Starting position as JSON, e.g. {"cells":[[1,0,0],[0,2,0],[0,0,0]],"turn":1}`)
	goroutines := flag.Int("goroutines", meta.GO_ROUTINES, "Number of goroutines for parallel episodes")
	episodes := flag.Int("episodes", meta.EPISODES, "Number of episodes per move")
	duration := flag.Duration("duration", 0, "Duration of episodes per move, replaces -episodes")
	exploration := flag.Float64("exploration", searcher.DefaultExploration, "UCT exploration constant")
	seed := flag.Uint64("seed", 0, "Random seed, 0 picks one")
	opponent := flag.String("opponent", "mcts", "Self-play opponent: mcts or random")
	experiment := flag.String("experiment", "baseline", "Experiment: baseline, throughput or strength")
	games := flag.Int("games", experiments.NumGames, "Games per experiment matchup")
	out := flag.String("out", "experiments", "Experiment output directory")
	addr := flag.String("addr", ":8080", "Agent server address")
	dump := flag.Bool("dump", false, "Print the search tree after a best move search")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := []searcher.Option{
		searcher.WithGoroutines(*goroutines),
		searcher.WithEpisodes(*episodes),
		searcher.WithDuration(*duration),
		searcher.WithExploration(*exploration),
	}
	if *seed != 0 {
		options = append(options, searcher.WithSeed(*seed))
	}

	start := tictactoe.New(*size)
	if *boardJSON != "" {
		b, err := tictactoe.Decode(strings.NewReader(*boardJSON))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -board")
		}
		start = b
	}

	switch *mode {
	case "best":
		runBest(ctx, start, *dump, options)
	case "selfplay":
		runSelfPlay(ctx, start, *opponent, *seed, options)
	case "experiment":
		runExperiment(ctx, *out, *size, *games, *experiment, *goroutines, *episodes, *duration, *exploration)
	case "serve":
		runServer(ctx, *addr, options)
	default:
		log.Fatal().Msgf("unknown mode %q", *mode)
	}
}

func runBest(ctx context.Context, start board, dump bool, options []searcher.Option) {
	if start.IsFinal() {
		log.Fatal().Msg("game is over - no moves to search")
	}
	mcts := searcher.NewDefault[board, move, player](start, options...)
	if _, err := mcts.Search(ctx); err != nil {
		log.Warn().Err(err).Msg("search interrupted")
	}
	if dump {
		if err := mcts.WriteTree(os.Stdout, termenv.EnvColorProfile()); err != nil {
			log.Error().Err(err).Msg("failed to dump tree")
		}
	}
	if !mcts.Tree().Root().HasChildren() {
		return
	}

	policy := mcts.Policy()
	moves := maps.Keys(policy)
	slices.SortFunc(moves, func(a, b move) int {
		switch {
		case policy[a] > policy[b]:
			return -1
		case policy[a] < policy[b]:
			return 1
		}
		return 0
	})
	fmt.Println(start)
	for _, m := range moves {
		fmt.Printf("%v %.3f\n", m, policy[m])
	}
	fmt.Printf("best move: %v\n", mcts.BestMove(mcts.EvalArgs()))
}

func runSelfPlay(ctx context.Context, start board, opponent string, seed uint64, options []searcher.Option) {
	second := agent.NewMCTSAgent[board, move, player](options...)
	if opponent == "random" {
		second = agent.NewRandomAgent[board, move, player](seed + 1)
	}
	e := engine.LocalEngine(start, map[player]agent.Agent[board, move]{
		start.Player():            agent.NewMCTSAgent[board, move, player](options...),
		start.Player().Opponent(): second,
	})

	winner, game, moves := e.Run(ctx)
	episodes := 0
	for _, m := range moves {
		episodes += m.Episodes
	}
	fmt.Println(e.State)
	log.Info().
		Str("winner", winner.String()).
		Int("moves", game.TotalMoves).
		Int("episodes", episodes).
		Dur("duration", game.Duration).
		Msg("self-play finished")
}

func runExperiment(ctx context.Context, out string, size, games int, name string, goroutines, episodes int, duration time.Duration, exploration float64) {
	runner := experiments.NewRunner(out, size)
	runner.Games = games

	var results []experiments.Result
	var err error
	switch name {
	case "throughput":
		results, err = runner.RunThroughput(ctx)
	case "strength":
		results, err = runner.RunStrength(ctx)
	case "baseline":
		results, err = runner.RunBaseline(ctx, metrics.AgentConfig{
			ID: 1, Kind: "mcts", Goroutines: goroutines, Episodes: episodes, Duration: duration, Exploration: exploration,
		})
	default:
		log.Fatal().Msgf("unknown experiment %q", name)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s experiment failed", name)
	}
	for _, r := range results {
		fmt.Printf("agent %d vs agent %d: %d/%d/%d score %.3f ± %.3f\n", r.Agent1, r.Agent2, r.Wins, r.Draws, r.Losses, r.Score, r.StdDev)
	}
}

func runServer(ctx context.Context, addr string, options []searcher.Option) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector(reg)
	options = append(options, searcher.WithMetrics(collector))

	srv := agent.NewServer[board, move, player](agent.NewMCTSAgent[board, move, player](options...), tictactoe.Decode)
	srv.Gatherer = reg
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		log.Fatal().Err(err).Msg("agent server failed")
	}
}
