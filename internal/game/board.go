package game

import "errors"

const (
	Rows     = 6
	Cols     = 7
	ConnectN = 4
)

var (
	ErrInvalidColumn = errors.New("invalid_column")
	ErrColumnFull    = errors.New("column_full")
)

// Cell is the content of one board square. Its numeric value is what clients see.
type Cell int8

const (
	Empty Cell = iota
	PartyA
	PartyB
)

func (c Cell) Opponent() Cell {
	switch c {
	case PartyA:
		return PartyB
	case PartyB:
		return PartyA
	default:
		return Empty
	}
}

// Board is indexed [row][col] with row 0 at the top; discs settle toward row Rows-1.
type Board [Rows][Cols]Cell

// axes lists one direction per line; the opposite direction is walked by negation.
var axes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

func (b *Board) CanDrop(col int) bool {
	return col >= 0 && col < Cols && b[0][col] == Empty
}

func (b *Board) LegalColumns() []int {
	out := make([]int, 0, Cols)
	for c := 0; c < Cols; c++ {
		if b[0][c] == Empty {
			out = append(out, c)
		}
	}
	return out
}

// Drop places cell in the lowest empty row of col and returns that row.
func (b *Board) Drop(col int, cell Cell) (int, error) {
	if col < 0 || col >= Cols {
		return -1, ErrInvalidColumn
	}
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == Empty {
			b[r][col] = cell
			return r, nil
		}
	}
	return -1, ErrColumnFull
}

func (b *Board) Full() bool {
	for c := 0; c < Cols; c++ {
		if b[0][c] == Empty {
			return false
		}
	}
	return true
}

// AxisRuns returns, per axis, the length of the contiguous run of the disc at (row, col)
// counting both directions and the disc itself. An empty cell yields zeros.
func (b *Board) AxisRuns(row, col int) [4]int {
	var runs [4]int
	cell := b[row][col]
	if cell == Empty {
		return runs
	}
	for i, d := range axes {
		runs[i] = 1 + b.walk(row, col, d[0], d[1], cell) + b.walk(row, col, -d[0], -d[1], cell)
	}
	return runs
}

// WinsAt reports whether the disc at (row, col) completes ConnectN on any axis.
func (b *Board) WinsAt(row, col int) bool {
	for _, n := range b.AxisRuns(row, col) {
		if n >= ConnectN {
			return true
		}
	}
	return false
}

func (b *Board) walk(row, col, dr, dc int, cell Cell) int {
	n := 0
	r, c := row+dr, col+dc
	for r >= 0 && r < Rows && c >= 0 && c < Cols && b[r][c] == cell {
		n++
		r += dr
		c += dc
	}
	return n
}
