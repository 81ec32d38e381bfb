package board

import (
	"errors"
	"fmt"
)

// Board dimensions are fixed for the lifetime of a room.
const (
	Width  = 5
	Height = 5
)

// ErrOutOfRange indicates a row/col pair outside the board grid.
var ErrOutOfRange = errors.New("coordinates out of range")

// Color identifies a participant's marking color, e.g. "red".
type Color string

// Cell is a single square of the board: an immutable goal description
// plus the set of colors that have marked it.
type Cell struct {
	Goal   string  `json:"goal"`
	Colors []Color `json:"colors"`
}

// Has reports whether color is present on the cell.
func (c Cell) Has(color Color) bool {
	for _, existing := range c.Colors {
		if existing == color {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers can't mutate board state
// through a returned cell.
func (c Cell) clone() Cell {
	colors := make([]Color, len(c.Colors))
	copy(colors, c.Colors)
	return Cell{Goal: c.Goal, Colors: colors}
}

// Board is the canonical grid state for one room. It is not safe for
// concurrent use; the owning room serializes all access.
type Board struct {
	cells [Height][Width]Cell
}

// New creates a board from a goal list in row-major order.
func New(goals []string) (*Board, error) {
	if len(goals) != Width*Height {
		return nil, fmt.Errorf("expected %d goals, got %d", Width*Height, len(goals))
	}

	b := &Board{}
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			b.cells[row][col] = Cell{Goal: goals[row*Width+col]}
		}
	}
	return b, nil
}

// NewDefault creates a board with the stock goal set.
func NewDefault() *Board {
	b, err := New(defaultGoals[:])
	if err != nil {
		// defaultGoals is sized to the grid at compile time
		panic(err)
	}
	return b
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < Height && col >= 0 && col < Width
}

// CellAt returns a copy of the cell at (row, col).
func (b *Board) CellAt(row, col int) (Cell, error) {
	if !b.inBounds(row, col) {
		return Cell{}, fmt.Errorf("cell (%d,%d): %w", row, col, ErrOutOfRange)
	}
	return b.cells[row][col].clone(), nil
}

// Mark adds color to the cell at (row, col). Marking an already-marked
// cell is a no-op; changed reports whether the cell actually changed.
func (b *Board) Mark(row, col int, color Color) (changed bool, err error) {
	if !b.inBounds(row, col) {
		return false, fmt.Errorf("mark (%d,%d): %w", row, col, ErrOutOfRange)
	}

	cell := &b.cells[row][col]
	if cell.Has(color) {
		return false, nil
	}
	cell.Colors = append(cell.Colors, color)
	return true, nil
}

// Unmark removes color from the cell at (row, col) if present.
func (b *Board) Unmark(row, col int, color Color) (changed bool, err error) {
	if !b.inBounds(row, col) {
		return false, fmt.Errorf("unmark (%d,%d): %w", row, col, ErrOutOfRange)
	}

	cell := &b.cells[row][col]
	for i, existing := range cell.Colors {
		if existing == color {
			cell.Colors = append(cell.Colors[:i], cell.Colors[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Snapshot returns a deep copy of the full grid for board sync messages.
func (b *Board) Snapshot() [][]Cell {
	rows := make([][]Cell, Height)
	for row := 0; row < Height; row++ {
		rows[row] = make([]Cell, Width)
		for col := 0; col < Width; col++ {
			rows[row][col] = b.cells[row][col].clone()
		}
	}
	return rows
}
