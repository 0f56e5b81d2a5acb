// meta/meta.go
package meta

// GO_ROUTINES defines the default number of search goroutines.
const GO_ROUTINES = 4

// EPISODES defines the default number of MCTS episodes per search.
const EPISODES = 1000

// MAX_TURNS caps the length of a game run by the engine.
const MAX_TURNS = 300

// BOARD_SIZE is the default tic-tac-toe board size.
const BOARD_SIZE = 3
