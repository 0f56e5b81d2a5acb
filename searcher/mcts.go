package searcher

import (
	"fmt"
	"sync"

	"lazymcts/experiments/metrics"
	"lazymcts/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// MCTS keeps a lazy search tree rooted at one game state. The root state is
// cloned at construction and never mutated afterwards.
//
// Execute is synchronous and must not run concurrently with Search. Search
// shares the tree between goroutines, serializing tree access with one mutex.
type MCTS[S game.State[M, P, S], M comparable, P comparable, R Reward, A any] struct {
	mu       sync.Mutex
	config   Config
	root     S
	player   P // the root player, fixed for the whole search
	tree     *Tree[M, R, A]
	policies Policies[S, M, P, R, A]
	rng      *rand.Rand
	seeds    uint64
	id       string
	logger   zerolog.Logger
}

// NewMCTS panics with ErrTerminalRoot if root is a final state.
func NewMCTS[S game.State[M, P, S], M comparable, P comparable, R Reward, A any](
	root S,
	policies Policies[S, M, P, R, A],
	options ...Option,
) *MCTS[S, M, P, R, A] {
	config := defaultConfig()
	for _, option := range options {
		option(&config)
	}
	if shared, ok := config.Metrics.(metrics.SearchFactory); ok {
		config.Metrics = shared.ForSearch()
	}

	moves := root.LegalMoves()
	if root.IsFinal() || len(moves) == 0 {
		panic(fmt.Errorf("new search: %w", ErrTerminalRoot))
	}

	m := &MCTS[S, M, P, R, A]{
		config:   config,
		root:     root.Clone(),
		player:   root.Player(),
		policies: policies,
		rng:      rand.New(rand.NewSource(config.Seed)),
		seeds:    config.Seed,
		id:       uuid.NewString(),
	}
	m.logger = config.Logger.With().Str("search", m.id).Logger()
	m.tree = NewTree(&Node[M, R, A]{
		Unexpanded: moves,
		Hash:       root.Hash(),
	}, len(moves)+1)
	return m
}

// NewDefault builds an MCTS with DefaultPolicies, float64 rewards and no
// auxiliary node payload.
func NewDefault[S game.State[M, P, S], M comparable, P comparable](root S, options ...Option) *MCTS[S, M, P, float64, struct{}] {
	return NewMCTS(root, DefaultPolicies[S, M, P, float64, struct{}](), options...)
}

// EvalArgs returns the evaluator arguments of the configuration.
func (m *MCTS[S, M, P, R, A]) EvalArgs() EvalArgs {
	return EvalArgs{Exploration: m.config.Exploration}
}

// PlayoutArgs returns playout arguments drawing from the engine's own random
// source. They are only meant for Execute.
func (m *MCTS[S, M, P, R, A]) PlayoutArgs() PlayoutArgs {
	return PlayoutArgs{Rand: m.rng}
}

// Execute runs one selection, expansion, simulation, backpropagation cycle.
// The tree grows by at most one node.
func (m *MCTS[S, M, P, R, A]) Execute(ea EvalArgs, pa PlayoutArgs) {
	size := m.tree.Len()
	id, state := m.policies.Tree.TreePolicy(m.tree, m.root, ea, pa.Rand)
	final := m.policies.Playout.Playout(state, pa)
	reward := m.policies.Evaluator.EvaluateLeaf(final, m.player)
	m.policies.Backprop.Backprop(m.tree, id, reward)

	if m.tree.Len() > size {
		m.config.Metrics.AddExpansion()
	}
	m.config.Metrics.AddEpisode()
}

// BestMove returns the move leading to the best child of the root, scored
// like selection does. Panics with ErrNoChildren before the first Execute.
func (m *MCTS[S, M, P, R, A]) BestMove(ea EvalArgs) M {
	m.mu.Lock()
	defer m.mu.Unlock()

	best := m.policies.Tree.BestChild(m.tree, m.player, m.tree.RootID(), ea)
	move, ok := m.tree.Get(best).Move()
	if !ok {
		panic("child of the root has an empty history")
	}
	return move
}

// Policy returns the share of root visits that went to each expanded move.
func (m *MCTS[S, M, P, R, A]) Policy() map[M]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	root := m.tree.Root()
	policy := make(map[M]float64, len(root.children))
	if root.Visits == 0 {
		return policy
	}
	for _, id := range root.children {
		child := m.tree.Get(id)
		move, _ := child.Move()
		policy[move] = float64(child.Visits) / float64(root.Visits)
	}
	return policy
}

// Tree gives read access to the search tree. It must not be read while a
// Search is running.
func (m *MCTS[S, M, P, R, A]) Tree() *Tree[M, R, A] {
	return m.tree
}

func (m *MCTS[S, M, P, R, A]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Len()
}

// RootState returns a copy of the root state.
func (m *MCTS[S, M, P, R, A]) RootState() S {
	return m.root.Clone()
}

// Player returns the player whose perspective every leaf is evaluated from.
func (m *MCTS[S, M, P, R, A]) Player() P {
	return m.player
}

func (m *MCTS[S, M, P, R, A]) Config() Config {
	return m.config
}
