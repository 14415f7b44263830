package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/engine"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

// scriptedSource feeds a fixed, repeating kind sequence so scenarios
// are deterministic.
type scriptedSource struct {
	kinds []tetromino.Kind
	index int
}

func script(kinds ...tetromino.Kind) *scriptedSource {
	return &scriptedSource{kinds: kinds}
}

func (s *scriptedSource) Random() *tetromino.Piece {
	kind := s.kinds[s.index%len(s.kinds)]
	s.index++
	return &tetromino.Piece{Kind: kind, X: tetromino.SpawnX, Y: tetromino.SpawnY}
}

func emptyGrid() [][]int {
	grid := make([][]int, board.Height)
	for y := range grid {
		grid[y] = make([]int, board.Width)
	}
	return grid
}

// runningSnapshot returns a minimal valid running-session snapshot.
func runningSnapshot(grid [][]int, current engine.PieceState) engine.Snapshot {
	return engine.Snapshot{
		Mode:       engine.ModeClassic,
		Difficulty: engine.DifficultyEasy,
		State:      engine.StateRunning,
		Grid:       grid,
		Current:    current,
		Next:       engine.PieceState{Kind: int(tetromino.KindO), X: tetromino.SpawnX},
	}
}

func TestLifecycleStates(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindT))
	assert.Equal(t, engine.StateIdle, e.State())

	e.Start()
	assert.Equal(t, engine.StateRunning, e.State())
	require.NotNil(t, e.Current())
	require.NotNil(t, e.Next())

	e.Pause()
	assert.Equal(t, engine.StatePaused, e.State())
	e.Pause()
	assert.Equal(t, engine.StatePaused, e.State())
	e.Resume()
	assert.Equal(t, engine.StateRunning, e.State())

	e.End()
	assert.Equal(t, engine.StateGameOver, e.State())
	assert.Equal(t, engine.ReasonPlayerEnded, e.Reason())
}

func TestMoveBlockedByWallIsSilentlyRejected(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindO))
	e.Start()

	moved := 0
	for e.MoveLeft() {
		moved++
	}
	// The O piece occupies offset columns 1-2, so from spawn x=3 it can
	// shift left four times before hugging the wall.
	assert.Equal(t, 4, moved)

	before := *e.Current()
	assert.False(t, e.MoveLeft())
	assert.Equal(t, before, *e.Current())
}

func TestRejectedRotationLeavesPieceUnchanged(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindI))
	// A horizontal I on the bottom row has no room to go vertical.
	err := e.Restore(runningSnapshot(emptyGrid(), engine.PieceState{
		Kind: int(tetromino.KindI), X: 3, Y: 18,
	}))
	require.NoError(t, err)

	before := *e.Current()
	assert.False(t, e.RotateCW())
	assert.Equal(t, before, *e.Current())
	assert.False(t, e.RotateCCW())
	assert.Equal(t, before, *e.Current())
}

func TestRotationAppliedWhenFree(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindT))
	err := e.Restore(runningSnapshot(emptyGrid(), engine.PieceState{
		Kind: int(tetromino.KindT), X: 3, Y: 5,
	}))
	require.NoError(t, err)

	assert.True(t, e.RotateCW())
	assert.Equal(t, 1, e.Current().Rotation)
	assert.True(t, e.RotateCCW())
	assert.Equal(t, 0, e.Current().Rotation)
	assert.True(t, e.RotateCCW())
	assert.Equal(t, 3, e.Current().Rotation)
}

func TestGravityStepMovesDownThenLocks(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindO))
	e.Start()

	startY := e.Current().Y
	result := e.Step()
	assert.False(t, result.Locked)
	assert.Equal(t, startY+1, e.Current().Y)

	// Drive the piece to the floor; the final step locks and spawns.
	locked := false
	for i := 0; i < board.Height+1; i++ {
		if r := e.Step(); r.Locked {
			locked = true
			break
		}
	}
	require.True(t, locked)
	assert.Equal(t, engine.StateRunning, e.State())
	assert.Equal(t, tetromino.SpawnY, e.Current().Y)
	// The locked O occupies the bottom rows at spawn columns.
	grid := e.Grid()
	assert.Equal(t, int(tetromino.KindO)+1, grid[19][4])
	assert.Equal(t, int(tetromino.KindO)+1, grid[19][5])
	assert.Equal(t, int(tetromino.KindO)+1, grid[18][4])
	assert.Equal(t, int(tetromino.KindO)+1, grid[18][5])
}

func TestSingleRowClearScenario(t *testing.T) {
	// Row 19 filled except column 9; a vertical I locks into column 9
	// rows 16-19.
	grid := emptyGrid()
	for x := 0; x < 9; x++ {
		grid[19][x] = int(tetromino.KindJ) + 1
	}
	e := engine.New(engine.Config{}, script(tetromino.KindI))
	err := e.Restore(runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
	}))
	require.NoError(t, err)
	e.PollEvents()

	result := e.Step()
	require.True(t, result.Locked)
	assert.Equal(t, 1, result.Cleared)
	assert.Equal(t, []int{19}, result.Rows)

	// 100 x (level 0 + 1) x easy multiplier 1.
	assert.Equal(t, 100, result.ScoreDelta)
	assert.Equal(t, 100, e.Score())
	assert.Equal(t, 1, e.Clears().Single)
	assert.Equal(t, 1, e.RowsCleared())
	assert.Equal(t, 0, e.Level())

	// The remaining three I cells compacted down one row.
	after := e.Grid()
	assert.Equal(t, int(tetromino.KindI)+1, after[19][9])
	assert.Equal(t, int(tetromino.KindI)+1, after[18][9])
	assert.Equal(t, int(tetromino.KindI)+1, after[17][9])
	assert.Zero(t, after[16][9])

	events := e.PollEvents()
	var sawRows, sawScore bool
	for _, event := range events {
		switch ev := event.(type) {
		case engine.RowsClearedEvent:
			sawRows = true
			assert.Equal(t, 1, ev.Count)
			assert.Equal(t, 100, ev.ScoreDelta)
		case engine.ScoreChangedEvent:
			sawScore = true
		}
	}
	assert.True(t, sawRows)
	assert.True(t, sawScore)
}

func TestTetrisClearScenario(t *testing.T) {
	grid := emptyGrid()
	for y := 16; y <= 19; y++ {
		for x := 0; x < 9; x++ {
			grid[y][x] = int(tetromino.KindL) + 1
		}
	}
	e := engine.New(engine.Config{Difficulty: engine.DifficultyEasy}, script(tetromino.KindI))
	err := e.Restore(runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
	}))
	require.NoError(t, err)

	result := e.Step()
	require.True(t, result.Locked)
	assert.Equal(t, 4, result.Cleared)
	assert.Equal(t, 800, result.ScoreDelta)
	assert.Equal(t, 1, e.Clears().Tetris)
	assert.Equal(t, 4, e.RowsCleared())
	// Every filled cell sat in the four cleared rows, so this is a
	// perfect clear.
	assert.Equal(t, emptyGrid(), e.Grid())
}

func TestLevelUpOnRowThreshold(t *testing.T) {
	grid := emptyGrid()
	for x := 0; x < 9; x++ {
		grid[19][x] = 1
	}
	e := engine.New(engine.Config{}, script(tetromino.KindI))
	snapshot := runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
	})
	snapshot.Rows = 9
	snapshot.Clears = engine.ClearCounts{Single: 9}
	require.NoError(t, e.Restore(snapshot))
	e.PollEvents()

	result := e.Step()
	require.Equal(t, 1, result.Cleared)
	assert.Equal(t, 10, e.RowsCleared())
	assert.Equal(t, 1, e.Level())

	var leveled bool
	for _, event := range e.PollEvents() {
		if ev, ok := event.(engine.LevelIncreasedEvent); ok {
			leveled = true
			assert.Equal(t, 1, ev.Level)
		}
	}
	assert.True(t, leveled)
}

func TestSpawnCollisionEndsGameWithoutPlacing(t *testing.T) {
	// Blocks in row 1 intersect the next piece's spawn cells but leave
	// the top row free, so the lock itself survives the board-full
	// check and the failing spawn is what ends the game.
	grid := emptyGrid()
	grid[1][3] = 1
	grid[1][4] = 1
	grid[1][5] = 1
	e := engine.New(engine.Config{}, script(tetromino.KindI))
	err := e.Restore(runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 3, Y: 18,
	}))
	require.NoError(t, err)

	result := e.Step()
	require.True(t, result.Locked)
	assert.Equal(t, engine.StateGameOver, e.State())
	assert.Equal(t, engine.ReasonNoSpaceForNewPiece, e.Reason())

	// The colliding spawn placed nothing: the only new cells are the
	// locked piece's own, on the bottom row.
	after := e.Grid()
	assert.Zero(t, after[1][6])
	assert.Equal(t, 1, after[1][3])
	assert.Equal(t, int(tetromino.KindI)+1, after[19][3])
}

func TestBoardFullAfterLockEndsGame(t *testing.T) {
	// A vertical I locking at the very top leaves row 0 occupied.
	grid := emptyGrid()
	for y := 4; y < board.Height; y++ {
		for x := 0; x < 9; x++ {
			grid[y][x] = 1
		}
	}
	e := engine.New(engine.Config{}, script(tetromino.KindT))
	err := e.Restore(runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 0, Y: 0, Rotation: 1,
	}))
	require.NoError(t, err)

	result := e.Step()
	require.True(t, result.Locked)
	assert.Equal(t, engine.StateGameOver, e.State())
	assert.Equal(t, engine.ReasonBoardFull, e.Reason())
}

func TestHardDropLocksAndScoresDistance(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindO))
	e.Start()

	result := e.HardDrop()
	require.True(t, result.Locked)
	assert.Equal(t, 18, result.Distance)
	// Two points per descended cell on an empty board.
	assert.Equal(t, 36, e.Score())
	assert.Equal(t, engine.StateRunning, e.State())
	assert.Equal(t, tetromino.SpawnY, e.Current().Y)
}

func TestSoftDropScoresPerCellAndShortensInterval(t *testing.T) {
	e := engine.New(engine.Config{Difficulty: engine.DifficultyNormal}, script(tetromino.KindT))
	e.Start()

	base := e.FallInterval()
	assert.Equal(t, 800*time.Millisecond, base)

	e.SetSoftDrop(true)
	assert.Equal(t, 50*time.Millisecond, e.FallInterval())
	e.Step()
	assert.Equal(t, 1, e.Score())

	e.SetSoftDrop(false)
	assert.Equal(t, base, e.FallInterval())
	e.Step()
	assert.Equal(t, 1, e.Score())
}

func TestFallIntervalShrinksWithLevelToFloor(t *testing.T) {
	grid := emptyGrid()
	for x := 0; x < 9; x++ {
		grid[19][x] = 1
	}
	previous := time.Duration(1 << 62)
	for _, rows := range []int{0, 10, 50, 120, 500} {
		e := engine.New(engine.Config{}, script(tetromino.KindI))
		snapshot := runningSnapshot(grid, engine.PieceState{
			Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
		})
		snapshot.Rows = rows
		snapshot.Level = rows / 10
		snapshot.Clears = engine.ClearCounts{Tetris: rows / 4}
		require.NoError(t, e.Restore(snapshot))

		interval := e.FallInterval()
		assert.LessOrEqual(t, interval, previous)
		assert.GreaterOrEqual(t, interval, 100*time.Millisecond)
		previous = interval
	}
}

func TestDifficultyScalesScoringAndGravity(t *testing.T) {
	grid := emptyGrid()
	for x := 0; x < 9; x++ {
		grid[19][x] = 1
	}
	tests := []struct {
		difficulty engine.Difficulty
		wantScore  int
	}{
		{engine.DifficultyEasy, 100},
		{engine.DifficultyNormal, 200},
		{engine.DifficultyHard, 300},
	}
	var previousInterval time.Duration
	for _, tt := range tests {
		t.Run(tt.difficulty.String(), func(t *testing.T) {
			e := engine.New(engine.Config{}, script(tetromino.KindI))
			snapshot := runningSnapshot(grid, engine.PieceState{
				Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
			})
			snapshot.Difficulty = tt.difficulty
			require.NoError(t, e.Restore(snapshot))

			if previousInterval > 0 {
				assert.Less(t, e.FallInterval(), previousInterval)
			}
			previousInterval = e.FallInterval()

			result := e.Step()
			require.Equal(t, 1, result.Cleared)
			assert.Equal(t, tt.wantScore, result.ScoreDelta)
		})
	}
}

func TestPauseFreezesGameplay(t *testing.T) {
	e := engine.New(engine.Config{Mode: engine.ModeTimed, Duration: time.Minute}, script(tetromino.KindT))
	e.Start()
	e.Pause()

	before := *e.Current()
	beforeGrid := e.Grid()
	assert.False(t, e.MoveLeft())
	assert.False(t, e.RotateCW())
	assert.Zero(t, e.Step())
	assert.Zero(t, e.HardDrop())
	e.AdvanceClock(10 * time.Second)

	assert.Equal(t, before, *e.Current())
	assert.Equal(t, beforeGrid, e.Grid())
	assert.Zero(t, e.Elapsed())

	e.Resume()
	assert.True(t, e.MoveLeft())
}

func TestTimedModeWinsOnExpiry(t *testing.T) {
	e := engine.New(engine.Config{Mode: engine.ModeTimed, Duration: 2 * time.Second}, script(tetromino.KindT))
	e.Start()
	e.PollEvents()

	e.AdvanceClock(1500 * time.Millisecond)
	assert.Equal(t, engine.StateRunning, e.State())
	assert.Equal(t, 500*time.Millisecond, e.Remaining())

	var sawTime bool
	for _, event := range e.PollEvents() {
		if ev, ok := event.(engine.TimeChangedEvent); ok {
			sawTime = true
			assert.Equal(t, 500*time.Millisecond, ev.Remaining)
		}
	}
	assert.True(t, sawTime)

	e.AdvanceClock(time.Second)
	assert.Equal(t, engine.StateWon, e.State())
	assert.Zero(t, e.Remaining())

	var sawWon bool
	for _, event := range e.PollEvents() {
		if _, ok := event.(engine.GameWonEvent); ok {
			sawWon = true
		}
	}
	assert.True(t, sawWon)
}

func TestChallengeModeWinsOnRowTarget(t *testing.T) {
	grid := emptyGrid()
	for x := 0; x < 9; x++ {
		grid[19][x] = 1
	}
	e := engine.New(engine.Config{}, script(tetromino.KindI))
	snapshot := runningSnapshot(grid, engine.PieceState{
		Kind: int(tetromino.KindI), X: 7, Y: 16, Rotation: 1,
	})
	snapshot.Mode = engine.ModeChallenge
	snapshot.TargetRows = 1
	require.NoError(t, e.Restore(snapshot))
	e.PollEvents()

	result := e.Step()
	require.Equal(t, 1, result.Cleared)
	assert.Equal(t, engine.StateWon, e.State())

	var sawWon bool
	for _, event := range e.PollEvents() {
		if ev, ok := event.(engine.GameWonEvent); ok {
			sawWon = true
			assert.Equal(t, 1, ev.Rows)
		}
	}
	assert.True(t, sawWon)
}

func TestGameOverEventCarriesBreakdown(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindT))
	e.Start()
	e.PollEvents()
	e.End()

	events := e.PollEvents()
	require.Len(t, events, 1)
	over, ok := events[0].(engine.GameOverEvent)
	require.True(t, ok)
	assert.Equal(t, engine.ReasonPlayerEnded, over.Reason)
	assert.Equal(t, e.Score(), over.Score)
	assert.Equal(t, e.Clears(), over.Clears)
}

func TestGhostYProbesWithoutMutating(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindO))
	e.Start()

	before := e.Grid()
	ghostY := e.GhostY()
	// The O piece's cells sit one row below its anchor, so the anchor
	// rests at height-2 on an empty board.
	assert.Equal(t, board.Height-2, ghostY)
	assert.Equal(t, before, e.Grid())
	assert.Equal(t, tetromino.SpawnY, e.Current().Y)
}

func TestScoreIsMonotonic(t *testing.T) {
	e := engine.New(engine.Config{}, script(tetromino.KindI, tetromino.KindO, tetromino.KindT))
	e.Start()
	last := 0
	for i := 0; i < 40 && e.State() == engine.StateRunning; i++ {
		e.MoveLeft()
		e.HardDrop()
		require.GreaterOrEqual(t, e.Score(), last)
		last = e.Score()
	}
}
