// Package board holds the fixed 10x20 playfield grid and the
// collision, placement and line-clear operations on it.
package board

import "github.com/kcr-83/tetris-go/internal/tetromino"

const (
	Width  = 10
	Height = 20
)

// Board is the playfield. A cell holds 0 when empty, otherwise the
// occupying piece kind + 1.
type Board struct {
	cells [][]int
}

// New returns an empty board.
func New() *Board {
	cells := make([][]int, Height)
	for y := range cells {
		cells[y] = make([]int, Width)
	}
	return &Board{cells: cells}
}

// Reset empties every cell.
func (b *Board) Reset() {
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = 0
		}
	}
}

// Cell returns the raw cell value at (x, y). Out-of-bounds reads
// return 0.
func (b *Board) Cell(x, y int) int {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return b.cells[y][x]
}

// Rows returns a copy of the grid, row by row.
func (b *Board) Rows() [][]int {
	rows := make([][]int, Height)
	for y := range b.cells {
		rows[y] = make([]int, Width)
		copy(rows[y], b.cells[y])
	}
	return rows
}

// CanPlace reports whether every cell is inside the playfield and
// unoccupied. Callers must check this before Place and before any
// move or rotation is committed.
func (b *Board) CanPlace(cells [4]tetromino.Point) bool {
	for _, cell := range cells {
		if cell.X < 0 || cell.X >= Width || cell.Y < 0 || cell.Y >= Height {
			return false
		}
		if b.cells[cell.Y][cell.X] != 0 {
			return false
		}
	}
	return true
}

// Place marks the cells occupied by the given kind. It performs no
// bounds or collision checking; the caller validates via CanPlace.
func (b *Board) Place(cells [4]tetromino.Point, kind tetromino.Kind) {
	for _, cell := range cells {
		b.cells[cell.Y][cell.X] = int(kind) + 1
	}
}

// FullRows returns the indices of completely occupied rows, top to
// bottom.
func (b *Board) FullRows() []int {
	var rows []int
	for y := 0; y < Height; y++ {
		full := true
		for x := 0; x < Width; x++ {
			if b.cells[y][x] == 0 {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	return rows
}

// ClearRows removes the given rows, compacts everything above them
// downward and fills the top with empty rows. The rows are cleared in
// a single pass so non-contiguous indices never double-shift. Returns
// the number of rows removed.
func (b *Board) ClearRows(rows []int) int {
	if len(rows) == 0 {
		return 0
	}
	cleared := map[int]struct{}{}
	for _, row := range rows {
		if row >= 0 && row < Height {
			cleared[row] = struct{}{}
		}
	}
	if len(cleared) == 0 {
		return 0
	}
	// Walk surviving rows bottom-up, writing them to the bottom of a
	// fresh grid.
	fresh := make([][]int, Height)
	for y := range fresh {
		fresh[y] = make([]int, Width)
	}
	write := Height - 1
	for y := Height - 1; y >= 0; y-- {
		if _, gone := cleared[y]; gone {
			continue
		}
		copy(fresh[write], b.cells[y])
		write--
	}
	b.cells = fresh
	return len(cleared)
}

// TopRowOccupied reports whether any cell in the topmost row is
// occupied, the board-full condition checked after every lock.
func (b *Board) TopRowOccupied() bool {
	for x := 0; x < Width; x++ {
		if b.cells[0][x] != 0 {
			return true
		}
	}
	return false
}

// Clone deep-copies the board so previews and ghost pieces can probe
// placements without touching the authoritative grid.
func (b *Board) Clone() *Board {
	clone := New()
	for y := range b.cells {
		copy(clone.cells[y], b.cells[y])
	}
	return clone
}

// SetCell writes a raw cell value. It is used when rebuilding a board
// from a snapshot; gameplay goes through Place.
func (b *Board) SetCell(x, y, value int) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	b.cells[y][x] = value
}
