// Package tetromino defines the seven piece shapes, their rotation
// states and the factory that produces them.
package tetromino

import "fmt"

// Kind identifies one of the seven tetromino shapes.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL

	KindCount = 7
)

func (k Kind) Valid() bool {
	return k >= KindI && k < KindCount
}

func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindO:
		return "O"
	case KindT:
		return "T"
	case KindS:
		return "S"
	case KindZ:
		return "Z"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	default:
		return "?"
	}
}

// Point is a cell position. On the board Y grows downward.
type Point struct {
	X int
	Y int
}

// Rotation offsets within a 4x4 bounding box, indexed by kind and
// rotation state. Every entry holds exactly four cells; the O piece is
// identical across all four states.
var rotations = [KindCount][4][4]Point{
	KindI: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	KindO: {
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	KindT: {
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	KindS: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 1}, {2, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	KindZ: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	KindJ: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	KindL: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

// Offsets returns the four relative cell offsets for a kind at a
// rotation state. The rotation index is normalized modulo 4.
func Offsets(kind Kind, rotation int) [4]Point {
	return rotations[kind][((rotation%4)+4)%4]
}

// Piece is a live falling tetromino: a kind plus its anchor position
// and rotation state. The cell offsets derive from kind and rotation.
type Piece struct {
	Kind     Kind
	X        int
	Y        int
	Rotation int
}

// Cells returns the absolute board cells the piece occupies.
func (p *Piece) Cells() [4]Point {
	return p.CellsAt(p.X, p.Y, p.Rotation)
}

// CellsAt returns the absolute cells the piece would occupy at the
// given anchor and rotation, without mutating the piece.
func (p *Piece) CellsAt(x, y, rotation int) [4]Point {
	offsets := Offsets(p.Kind, rotation)
	var cells [4]Point
	for i, off := range offsets {
		cells[i] = Point{X: x + off.X, Y: y + off.Y}
	}
	return cells
}

// Rotate turns the piece one step; direction > 0 is clockwise,
// direction < 0 counterclockwise. Callers must validate the resulting
// cells first; there is no kick adjustment.
func (p *Piece) Rotate(direction int) {
	if direction >= 0 {
		p.Rotation = (p.Rotation + 1) % 4
		return
	}
	p.Rotation = (p.Rotation + 3) % 4
}

// Clone returns an independent copy of the piece.
func (p *Piece) Clone() *Piece {
	clone := *p
	return &clone
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s@(%d,%d)r%d", p.Kind, p.X, p.Y, p.Rotation)
}
