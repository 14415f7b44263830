package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

func fillRow(b *board.Board, y int) {
	for x := 0; x < board.Width; x++ {
		b.SetCell(x, y, 1)
	}
}

func TestCanPlaceBounds(t *testing.T) {
	b := board.New()
	tests := []struct {
		name  string
		cells [4]tetromino.Point
		want  bool
	}{
		{
			name:  "inside",
			cells: [4]tetromino.Point{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 0, Y: 19}, {X: 9, Y: 19}},
			want:  true,
		},
		{
			name:  "left of field",
			cells: [4]tetromino.Point{{X: -1, Y: 5}, {X: 0, Y: 5}, {X: 1, Y: 5}, {X: 2, Y: 5}},
			want:  false,
		},
		{
			name:  "right of field",
			cells: [4]tetromino.Point{{X: 7, Y: 5}, {X: 8, Y: 5}, {X: 9, Y: 5}, {X: 10, Y: 5}},
			want:  false,
		},
		{
			name:  "above field",
			cells: [4]tetromino.Point{{X: 4, Y: -1}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 4, Y: 2}},
			want:  false,
		},
		{
			name:  "below field",
			cells: [4]tetromino.Point{{X: 4, Y: 17}, {X: 4, Y: 18}, {X: 4, Y: 19}, {X: 4, Y: 20}},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.CanPlace(tt.cells))
		})
	}
}

func TestCanPlaceOccupied(t *testing.T) {
	b := board.New()
	cells := [4]tetromino.Point{{X: 4, Y: 18}, {X: 5, Y: 18}, {X: 4, Y: 19}, {X: 5, Y: 19}}
	require.True(t, b.CanPlace(cells))

	b.Place(cells, tetromino.KindO)
	assert.False(t, b.CanPlace(cells))
	// A single overlapping cell is enough to reject.
	assert.False(t, b.CanPlace([4]tetromino.Point{{X: 5, Y: 17}, {X: 6, Y: 17}, {X: 5, Y: 18}, {X: 6, Y: 18}}))
	assert.True(t, b.CanPlace([4]tetromino.Point{{X: 6, Y: 18}, {X: 7, Y: 18}, {X: 6, Y: 19}, {X: 7, Y: 19}}))
}

func TestPlaceRecordsKind(t *testing.T) {
	b := board.New()
	cells := [4]tetromino.Point{{X: 0, Y: 19}, {X: 1, Y: 19}, {X: 2, Y: 19}, {X: 3, Y: 19}}
	b.Place(cells, tetromino.KindI)
	for _, cell := range cells {
		assert.Equal(t, int(tetromino.KindI)+1, b.Cell(cell.X, cell.Y))
	}
}

func TestFullRowsTopToBottom(t *testing.T) {
	b := board.New()
	fillRow(b, 12)
	fillRow(b, 3)
	fillRow(b, 19)
	assert.Equal(t, []int{3, 12, 19}, b.FullRows())

	b.SetCell(4, 12, 0)
	assert.Equal(t, []int{3, 19}, b.FullRows())
}

func TestClearRowsNonContiguous(t *testing.T) {
	b := board.New()
	// Distinct markers in rows 0-2 and a marker row below the gap so the
	// shift amounts are observable.
	b.SetCell(0, 0, 7)
	b.SetCell(1, 1, 6)
	b.SetCell(2, 2, 5)
	fillRow(b, 3)
	b.SetCell(5, 5, 4)
	fillRow(b, 7)

	count := b.ClearRows([]int{3, 7})
	require.Equal(t, 2, count)

	// Rows 0-2 shifted down by 2, row 5 (between the cleared rows) by 1.
	assert.Equal(t, 7, b.Cell(0, 2))
	assert.Equal(t, 6, b.Cell(1, 3))
	assert.Equal(t, 5, b.Cell(2, 4))
	assert.Equal(t, 4, b.Cell(5, 6))
	// Two fresh empty rows at the top, no surviving full rows.
	for x := 0; x < board.Width; x++ {
		assert.Zero(t, b.Cell(x, 0))
		assert.Zero(t, b.Cell(x, 1))
	}
	assert.Empty(t, b.FullRows())
}

func TestClearRowsAdjacent(t *testing.T) {
	b := board.New()
	b.SetCell(9, 15, 3)
	fillRow(b, 16)
	fillRow(b, 17)
	fillRow(b, 18)
	fillRow(b, 19)

	count := b.ClearRows([]int{16, 17, 18, 19})
	require.Equal(t, 4, count)
	assert.Equal(t, 3, b.Cell(9, 19))
	assert.Empty(t, b.FullRows())
}

func TestClearRowsNoop(t *testing.T) {
	b := board.New()
	b.SetCell(4, 10, 2)
	assert.Zero(t, b.ClearRows(nil))
	assert.Zero(t, b.ClearRows([]int{}))
	assert.Equal(t, 2, b.Cell(4, 10))
}

func TestClearAllRowsPerfectClear(t *testing.T) {
	b := board.New()
	rows := make([]int, board.Height)
	for y := 0; y < board.Height; y++ {
		fillRow(b, y)
		rows[y] = y
	}
	count := b.ClearRows(rows)
	require.Equal(t, board.Height, count)
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			assert.Zero(t, b.Cell(x, y))
		}
	}
}

func TestTopRowOccupied(t *testing.T) {
	b := board.New()
	assert.False(t, b.TopRowOccupied())
	b.SetCell(9, 0, 1)
	assert.True(t, b.TopRowOccupied())
}

func TestCloneIsDeep(t *testing.T) {
	b := board.New()
	b.SetCell(3, 9, 5)
	clone := b.Clone()
	clone.SetCell(3, 9, 0)
	clone.SetCell(0, 0, 1)

	assert.Equal(t, 5, b.Cell(3, 9))
	assert.Zero(t, b.Cell(0, 0))
}

func TestResetEmptiesEverything(t *testing.T) {
	b := board.New()
	fillRow(b, 19)
	b.SetCell(0, 0, 9)
	b.Reset()
	assert.False(t, b.TopRowOccupied())
	assert.Empty(t, b.FullRows())
	assert.Zero(t, b.Cell(0, 19))
}
