package tetromino_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcr-83/tetris-go/internal/tetromino"
)

func TestOfKindStartsAtSpawn(t *testing.T) {
	factory := tetromino.NewFactorySeeded(1)
	piece, err := factory.OfKind(tetromino.KindL)
	require.NoError(t, err)
	assert.Equal(t, tetromino.KindL, piece.Kind)
	assert.Equal(t, tetromino.SpawnX, piece.X)
	assert.Equal(t, tetromino.SpawnY, piece.Y)
	assert.Equal(t, 0, piece.Rotation)
}

func TestOfKindRejectsUnknownKind(t *testing.T) {
	factory := tetromino.NewFactorySeeded(1)
	_, err := factory.OfKind(tetromino.Kind(42))
	assert.ErrorIs(t, err, tetromino.ErrUnknownKind)
	_, err = factory.OfKind(tetromino.Kind(-1))
	assert.ErrorIs(t, err, tetromino.ErrUnknownKind)
}

func TestRandomCoversAllKinds(t *testing.T) {
	factory := tetromino.NewFactorySeeded(99)
	seen := map[tetromino.Kind]int{}
	for i := 0; i < 700; i++ {
		piece := factory.Random()
		require.True(t, piece.Kind.Valid())
		seen[piece.Kind]++
	}
	assert.Len(t, seen, tetromino.KindCount)
}

func TestSeededFactoriesAgree(t *testing.T) {
	a := tetromino.NewFactorySeeded(7)
	b := tetromino.NewFactorySeeded(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Random().Kind, b.Random().Kind)
	}
}
