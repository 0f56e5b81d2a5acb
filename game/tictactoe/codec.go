package tictactoe

import (
	"encoding/json"
	"fmt"
	"io"
)

type wireBoard struct {
	Cells [][]Player `json:"cells"`
	Turn  Player     `json:"turn"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireBoard{Cells: b.cells, Turn: b.turn})
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var wb wireBoard
	if err := json.Unmarshal(data, &wb); err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}
	decoded, err := FromCells(wb.Cells, wb.Turn)
	if err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}
	*b = *decoded
	return nil
}

// Decode reads one JSON encoded board.
func Decode(r io.Reader) (*Board, error) {
	var b Board
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
