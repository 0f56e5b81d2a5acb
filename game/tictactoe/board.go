package tictactoe

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"lazymcts/game"
)

type Player int8

const (
	None   Player = 0
	Cross  Player = 1
	Circle Player = 2
)

func (p Player) String() string {
	switch p {
	case Cross:
		return "X"
	case Circle:
		return "O"
	default:
		return "."
	}
}

// Opponent returns the other player, None stays None.
func (p Player) Opponent() Player {
	switch p {
	case Cross:
		return Circle
	case Circle:
		return Cross
	default:
		return None
	}
}

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// Board is an NxN tic-tac-toe position. A line (row, column or diagonal) fully
// owned by one player wins. Per-line counters make the win check O(1) per move.
type Board struct {
	n      int
	cells  [][]Player
	turn   Player
	rows   [][2]int // [line][player-1]
	cols   [][2]int
	diags  [2][2]int
	filled int
	winner Player
}

var _ game.State[Move, Player, *Board] = (*Board)(nil)

// New returns an empty n x n board with Cross to move.
func New(n int) *Board {
	if n < 1 {
		panic(fmt.Sprintf("invalid board size %d", n))
	}
	cells := make([][]Player, n)
	for i := range cells {
		cells[i] = make([]Player, n)
	}
	return &Board{
		n:     n,
		cells: cells,
		turn:  Cross,
		rows:  make([][2]int, n),
		cols:  make([][2]int, n),
	}
}

// FromCells rebuilds a board from its cells and the player to move.
func FromCells(cells [][]Player, turn Player) (*Board, error) {
	if turn != Cross && turn != Circle {
		return nil, fmt.Errorf("invalid player to move %d", turn)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("empty board")
	}
	b := New(len(cells))
	for r, row := range cells {
		if len(row) != b.n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), b.n)
		}
		for c, p := range row {
			switch p {
			case None:
			case Cross, Circle:
				b.mark(Move{Row: r, Col: c}, p)
			default:
				return nil, fmt.Errorf("invalid cell value %d at %v", p, Move{Row: r, Col: c})
			}
		}
	}
	b.turn = turn
	return b, nil
}

func (b *Board) Size() int {
	return b.n
}

// At returns the owner of a cell.
func (b *Board) At(row, col int) Player {
	return b.cells[row][col]
}

func (b *Board) LegalMoves() []Move {
	if b.IsFinal() {
		return nil
	}
	moves := make([]Move, 0, b.n*b.n-b.filled)
	for r := range b.n {
		for c := range b.n {
			if b.cells[r][c] == None {
				moves = append(moves, Move{Row: r, Col: c})
			}
		}
	}
	return moves
}

func (b *Board) Player() Player {
	return b.turn
}

func (b *Board) IsFinal() bool {
	return b.winner != None || b.filled == b.n*b.n
}

// Play fills the cell for the player to move and passes the turn. Playing an
// occupied or out-of-range cell, or playing after the game ended, panics.
func (b *Board) Play(move Move) {
	if move.Row < 0 || move.Row >= b.n || move.Col < 0 || move.Col >= b.n {
		panic(fmt.Sprintf("move %v out of range for %dx%d board", move, b.n, b.n))
	}
	if b.cells[move.Row][move.Col] != None {
		panic(fmt.Sprintf("cell %v already taken", move))
	}
	if b.IsFinal() {
		panic("game is over - no moves allowed")
	}
	b.mark(move, b.turn)
	b.turn = b.turn.Opponent()
}

func (b *Board) mark(move Move, p Player) {
	i := int(p) - 1
	b.cells[move.Row][move.Col] = p
	b.filled++

	b.rows[move.Row][i]++
	b.cols[move.Col][i]++
	won := b.rows[move.Row][i] == b.n || b.cols[move.Col][i] == b.n
	if move.Row == move.Col {
		b.diags[0][i]++
		won = won || b.diags[0][i] == b.n
	}
	if move.Row+move.Col == b.n-1 {
		b.diags[1][i]++
		won = won || b.diags[1][i] == b.n
	}
	if won && b.winner == None {
		b.winner = p
	}
}

// Winner returns None for a draw or an unfinished game.
func (b *Board) Winner() Player {
	return b.winner
}

func (b *Board) Hash() game.StateHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(b.turn))
	for _, row := range b.cells {
		for _, p := range row {
			hasher.Write([]byte{byte(p)})
		}
	}
	return game.StateHash(hasher.Sum64())
}

func (b *Board) Clone() *Board {
	cells := make([][]Player, b.n)
	for i := range b.cells {
		cells[i] = make([]Player, b.n)
		copy(cells[i], b.cells[i])
	}
	rows := make([][2]int, b.n)
	copy(rows, b.rows)
	cols := make([][2]int, b.n)
	copy(cols, b.cols)

	return &Board{
		n:      b.n,
		cells:  cells,
		turn:   b.turn,
		rows:   rows,
		cols:   cols,
		diags:  b.diags,
		filled: b.filled,
		winner: b.winner,
	}
}

// Equal compares the positions, not the identity of the boards.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.n != other.n || b.turn != other.turn || b.winner != other.winner {
		return false
	}
	for r := range b.n {
		for c := range b.n {
			if b.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

func (b *Board) String() string {
	var sb strings.Builder
	for r, row := range b.cells {
		for c, p := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(p.String())
		}
		if r < b.n-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
