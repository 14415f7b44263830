package tetromino

import (
	"fmt"
	"math/rand"
	"time"
)

// ErrUnknownKind is returned when a piece of an invalid kind is
// requested.
var ErrUnknownKind = fmt.Errorf("tetromino: unknown kind")

// Spawn anchor: top center, rotation 0.
const (
	SpawnX = 3
	SpawnY = 0
)

// Factory produces pieces. Each spawn draws a kind uniformly at
// random, independent of previous draws.
type Factory struct {
	rng *rand.Rand
}

// NewFactory returns a factory seeded from the wall clock.
func NewFactory() *Factory {
	return NewFactorySeeded(time.Now().UnixNano())
}

// NewFactorySeeded returns a factory with a fixed seed, for
// deterministic sequences in tests.
func NewFactorySeeded(seed int64) *Factory {
	return &Factory{rng: rand.New(rand.NewSource(seed))}
}

// Random returns a new piece of a uniformly random kind at the spawn
// position.
func (f *Factory) Random() *Piece {
	kind := Kind(f.rng.Intn(KindCount))
	piece, _ := f.OfKind(kind)
	return piece
}

// OfKind returns a new piece of the given kind at the spawn position.
// An invalid kind is caller misuse and returns ErrUnknownKind.
func (f *Factory) OfKind(kind Kind) (*Piece, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return &Piece{Kind: kind, X: SpawnX, Y: SpawnY}, nil
}
