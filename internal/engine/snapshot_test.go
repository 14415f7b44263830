package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/engine"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := engine.New(engine.Config{Difficulty: engine.DifficultyHard}, script(tetromino.KindI, tetromino.KindO, tetromino.KindT))
	e.Start()
	// Play a bit so the snapshot carries non-trivial state.
	for i := 0; i < 6; i++ {
		e.MoveRight()
		e.HardDrop()
	}
	require.Equal(t, engine.StateRunning, e.State())

	snapshot := e.Snapshot()

	restored := engine.New(engine.Config{}, script(tetromino.KindS))
	require.NoError(t, restored.Restore(snapshot))

	assert.Equal(t, e.Grid(), restored.Grid())
	assert.Equal(t, *e.Current(), *restored.Current())
	assert.Equal(t, *e.Next(), *restored.Next())
	assert.Equal(t, e.Score(), restored.Score())
	assert.Equal(t, e.Level(), restored.Level())
	assert.Equal(t, e.RowsCleared(), restored.RowsCleared())
	assert.Equal(t, e.Clears(), restored.Clears())
	assert.Equal(t, e.Mode(), restored.Mode())
	assert.Equal(t, e.Difficulty(), restored.Difficulty())
	assert.Equal(t, e.State(), restored.State())

	// A snapshot of the restored session is identical.
	assert.Equal(t, snapshot, restored.Snapshot())
}

func TestSnapshotSurvivesJSON(t *testing.T) {
	e := engine.New(engine.Config{Mode: engine.ModeChallenge, TargetRows: 25}, script(tetromino.KindJ, tetromino.KindL))
	e.Start()
	e.HardDrop()

	data, err := json.Marshal(e.Snapshot())
	require.NoError(t, err)

	var decoded engine.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := engine.New(engine.Config{}, script(tetromino.KindS))
	require.NoError(t, restored.Restore(decoded))
	assert.Equal(t, e.Grid(), restored.Grid())
	assert.Equal(t, 25, restored.TargetRows())
	assert.Equal(t, engine.ModeChallenge, restored.Mode())
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	valid := func() engine.Snapshot {
		return runningSnapshot(emptyGrid(), engine.PieceState{
			Kind: int(tetromino.KindT), X: 3, Y: 5,
		})
	}
	tests := []struct {
		name    string
		corrupt func(*engine.Snapshot)
	}{
		{"missing grid", func(s *engine.Snapshot) { s.Grid = nil }},
		{"short grid", func(s *engine.Snapshot) { s.Grid = s.Grid[:10] }},
		{"ragged row", func(s *engine.Snapshot) { s.Grid[4] = s.Grid[4][:3] }},
		{"cell value out of range", func(s *engine.Snapshot) { s.Grid[10][5] = 99 }},
		{"negative cell", func(s *engine.Snapshot) { s.Grid[10][5] = -1 }},
		{"unknown current kind", func(s *engine.Snapshot) { s.Current.Kind = 9 }},
		{"bad rotation", func(s *engine.Snapshot) { s.Current.Rotation = 4 }},
		{"unknown next kind", func(s *engine.Snapshot) { s.Next.Kind = -2 }},
		{"invalid mode", func(s *engine.Snapshot) { s.Mode = engine.Mode(7) }},
		{"invalid difficulty", func(s *engine.Snapshot) { s.Difficulty = engine.Difficulty(-1) }},
		{"idle state", func(s *engine.Snapshot) { s.State = engine.StateIdle }},
		{"invalid state", func(s *engine.Snapshot) { s.State = engine.State(9) }},
		{"negative score", func(s *engine.Snapshot) { s.Score = -10 }},
		{"negative clears", func(s *engine.Snapshot) { s.Clears.Double = -1 }},
		{"counters exceed rows", func(s *engine.Snapshot) { s.Clears.Tetris = 3; s.Rows = 2 }},
		{"piece overlaps board", func(s *engine.Snapshot) {
			for _, cell := range (&tetromino.Piece{Kind: tetromino.KindT, X: 3, Y: 5}).Cells() {
				s.Grid[cell.Y][cell.X] = 1
			}
		}},
		{"piece out of bounds", func(s *engine.Snapshot) { s.Current.Y = board.Height }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engine.New(engine.Config{}, script(tetromino.KindZ))
			e.Start()
			e.MoveLeft()
			before := e.Snapshot()

			snapshot := valid()
			tt.corrupt(&snapshot)
			err := e.Restore(snapshot)
			require.ErrorIs(t, err, engine.ErrInvalidSnapshot)

			// The running session is untouched by a failed restore.
			assert.Equal(t, before, e.Snapshot())
			assert.Equal(t, engine.StateRunning, e.State())
		})
	}
}

func TestRestoreAcceptsFinishedSessions(t *testing.T) {
	snapshot := runningSnapshot(emptyGrid(), engine.PieceState{
		Kind: int(tetromino.KindT), X: 3, Y: 5,
	})
	snapshot.State = engine.StateGameOver
	snapshot.Reason = engine.ReasonBoardFull
	// A finished session's piece position is not validated against the
	// grid; the game is already over.
	snapshot.Grid[5][3] = 1

	e := engine.New(engine.Config{}, script(tetromino.KindZ))
	require.NoError(t, e.Restore(snapshot))
	assert.Equal(t, engine.StateGameOver, e.State())
	assert.Equal(t, engine.ReasonBoardFull, e.Reason())
}
