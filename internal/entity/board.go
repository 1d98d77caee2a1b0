package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 64
)

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WinLine is one candidate winning line, ordered from its first cell to its last.
type WinLine []Coord

// Board is a square grid of cells. It knows nothing about turns or scores.
type Board struct {
	size   int
	cells  []Cell
	placed int
	lines  []WinLine
}

// NewBoard - creates an empty board of size x size cells.
func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize {
		return nil, fmt.Errorf("%w: board size %d is below %d", apperror.ErrInvalidConfiguration, size, MinBoardSize)
	}

	if size > MaxBoardSize {
		return nil, fmt.Errorf("%w: board size %d is above %d", apperror.ErrInvalidConfiguration, size, MaxBoardSize)
	}

	return &Board{
		size:  size,
		cells: make([]Cell, size*size),
		lines: WinLines(size),
	}, nil
}

// BoardFromCells - rebuilds a board from a row-major grid, e.g. one read back from storage.
func BoardFromCells(grid [][]Cell) (*Board, error) {
	board, err := NewBoard(len(grid))
	if err != nil {
		return nil, err
	}

	for row, cells := range grid {
		if len(cells) != board.size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", apperror.ErrInvalidConfiguration, row, len(cells), board.size)
		}

		for col, cell := range cells {
			if !cell.Valid() {
				return nil, fmt.Errorf("%w: cell (%d,%d) has value %d", apperror.ErrInvalidConfiguration, row, col, int(cell))
			}

			if cell != CellEmpty {
				board.cells[board.index(row, col)] = cell
				board.placed++
			}
		}
	}

	return board, nil
}

// WinLines - returns the 2*size+2 win lines of a square board: every row, every
// column, the main diagonal and the anti-diagonal, in that order.
func WinLines(size int) []WinLine {
	if size <= 0 {
		return nil
	}

	lines := make([]WinLine, 0, 2*size+2)

	for row := range size {
		line := make(WinLine, 0, size)
		for col := range size {
			line = append(line, Coord{Row: row, Col: col})
		}
		lines = append(lines, line)
	}

	for col := range size {
		line := make(WinLine, 0, size)
		for row := range size {
			line = append(line, Coord{Row: row, Col: col})
		}
		lines = append(lines, line)
	}

	mainDiagonal := make(WinLine, 0, size)
	antiDiagonal := make(WinLine, 0, size)
	for i := range size {
		mainDiagonal = append(mainDiagonal, Coord{Row: i, Col: i})
		antiDiagonal = append(antiDiagonal, Coord{Row: i, Col: size - 1 - i})
	}

	return append(lines, mainDiagonal, antiDiagonal)
}

func (that *Board) Size() int {
	return that.size
}

// Lines - returns the win lines computed for this board. Callers must not modify them.
func (that *Board) Lines() []WinLine {
	return that.lines
}

func (that *Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < that.size && col < that.size
}

func (that *Board) At(row, col int) (Cell, error) {
	if !that.InBounds(row, col) {
		return CellEmpty, that.outOfRange(row, col)
	}

	return that.cells[that.index(row, col)], nil
}

func (that *Board) IsEmpty(row, col int) (bool, error) {
	cell, err := that.At(row, col)
	if err != nil {
		return false, err
	}

	return cell == CellEmpty, nil
}

// Place - puts the player's mark into an empty cell. The board is left untouched on error.
func (that *Board) Place(row, col int, player Player) error {
	if !player.Valid() {
		return fmt.Errorf("%w: %d", apperror.ErrUnknownPlayer, int(player))
	}

	empty, err := that.IsEmpty(row, col)
	if err != nil {
		return err
	}

	if !empty {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, row, col)
	}

	that.cells[that.index(row, col)] = CellOf(player)
	that.placed++

	return nil
}

// Placed - returns the number of non-empty cells.
func (that *Board) Placed() int {
	return that.placed
}

func (that *Board) IsFull() bool {
	return that.placed == len(that.cells)
}

// Clear - empties every cell, keeping the size and win lines.
func (that *Board) Clear() {
	for i := range that.cells {
		that.cells[i] = CellEmpty
	}
	that.placed = 0
}

// Cells - returns a row-major copy of the grid.
func (that *Board) Cells() [][]Cell {
	grid := make([][]Cell, that.size)
	for row := range that.size {
		grid[row] = make([]Cell, that.size)
		copy(grid[row], that.cells[row*that.size:(row+1)*that.size])
	}

	return grid
}

// String - renders the grid one row per line, "." for an empty cell.
func (that *Board) String() string {
	var sb strings.Builder

	for row := range that.size {
		for col := range that.size {
			if col > 0 {
				sb.WriteByte(' ')
			}

			cell := that.cells[that.index(row, col)]
			if cell == CellEmpty {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(cell.String())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (that *Board) index(row, col int) int {
	return row*that.size + col
}

func (that *Board) outOfRange(row, col int) error {
	return fmt.Errorf("%w: (%d,%d) on a %dx%d board", apperror.ErrOutOfRange, row, col, that.size, that.size)
}
