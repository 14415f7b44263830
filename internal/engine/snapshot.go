package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

// ErrInvalidSnapshot is returned when Restore rejects a snapshot. The
// running session is left untouched in that case.
var ErrInvalidSnapshot = errors.New("engine: invalid snapshot")

// PieceState is the serialized form of a piece.
type PieceState struct {
	Kind     int `json:"kind"`
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"`
}

func pieceState(p *tetromino.Piece) PieceState {
	return PieceState{Kind: int(p.Kind), X: p.X, Y: p.Y, Rotation: p.Rotation}
}

func (s PieceState) piece() *tetromino.Piece {
	return &tetromino.Piece{Kind: tetromino.Kind(s.Kind), X: s.X, Y: s.Y, Rotation: s.Rotation}
}

func (s PieceState) valid() bool {
	return tetromino.Kind(s.Kind).Valid() && s.Rotation >= 0 && s.Rotation < 4
}

// Snapshot captures a full session for save/resume. The external
// persistence format is this struct serialized as JSON.
type Snapshot struct {
	Mode       Mode        `json:"mode"`
	Difficulty Difficulty  `json:"difficulty"`
	DurationMs int64       `json:"durationMs,omitempty"`
	TargetRows int         `json:"targetRows,omitempty"`
	State      State       `json:"state"`
	Reason     EndReason   `json:"reason,omitempty"`
	Grid       [][]int     `json:"grid"`
	Current    PieceState  `json:"current"`
	Next       PieceState  `json:"next"`
	Score      int         `json:"score"`
	Level      int         `json:"level"`
	Rows       int         `json:"rows"`
	Clears     ClearCounts `json:"clears"`
	ElapsedMs  int64       `json:"elapsedMs"`
}

// Snapshot captures the current session state.
func (e *Engine) Snapshot() Snapshot {
	snapshot := Snapshot{
		Mode:       e.cfg.Mode,
		Difficulty: e.cfg.Difficulty,
		DurationMs: e.cfg.Duration.Milliseconds(),
		TargetRows: e.cfg.TargetRows,
		State:      e.state,
		Reason:     e.reason,
		Grid:       e.board.Rows(),
		Score:      e.score,
		Level:      e.level,
		Rows:       e.rows,
		Clears:     e.clears,
		ElapsedMs:  e.elapsed.Milliseconds(),
	}
	if e.current != nil {
		snapshot.Current = pieceState(e.current)
	}
	if e.next != nil {
		snapshot.Next = pieceState(e.next)
	}
	return snapshot
}

// Restore replaces the session with the snapshot's state. The snapshot
// is validated first; on any inconsistency the engine is left exactly
// as it was and ErrInvalidSnapshot is returned.
func (e *Engine) Restore(snapshot Snapshot) error {
	restored, err := buildBoard(snapshot.Grid)
	if err != nil {
		return err
	}
	if err := validateSnapshot(snapshot, restored); err != nil {
		return err
	}

	e.cfg = Config{
		Mode:       snapshot.Mode,
		Difficulty: snapshot.Difficulty,
		Duration:   time.Duration(snapshot.DurationMs) * time.Millisecond,
		TargetRows: snapshot.TargetRows,
	}.normalized()
	e.board = restored
	e.current = snapshot.Current.piece()
	e.next = snapshot.Next.piece()
	e.score = snapshot.Score
	e.level = snapshot.Level
	e.rows = snapshot.Rows
	e.clears = snapshot.Clears
	e.elapsed = time.Duration(snapshot.ElapsedMs) * time.Millisecond
	e.state = snapshot.State
	e.reason = snapshot.Reason
	e.softDrop = false
	e.events = nil
	return nil
}

func buildBoard(grid [][]int) (*board.Board, error) {
	if len(grid) != board.Height {
		return nil, fmt.Errorf("%w: grid has %d rows, want %d", ErrInvalidSnapshot, len(grid), board.Height)
	}
	restored := board.New()
	for y, row := range grid {
		if len(row) != board.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidSnapshot, y, len(row), board.Width)
		}
		for x, value := range row {
			if value < 0 || value > tetromino.KindCount {
				return nil, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidSnapshot, x, y, value)
			}
			restored.SetCell(x, y, value)
		}
	}
	return restored, nil
}

func validateSnapshot(snapshot Snapshot, restored *board.Board) error {
	if !snapshot.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidSnapshot, int(snapshot.Mode))
	}
	if !snapshot.Difficulty.Valid() {
		return fmt.Errorf("%w: difficulty %d", ErrInvalidSnapshot, int(snapshot.Difficulty))
	}
	if !snapshot.State.Valid() || snapshot.State == StateIdle {
		return fmt.Errorf("%w: state %d", ErrInvalidSnapshot, int(snapshot.State))
	}
	if !snapshot.Current.valid() {
		return fmt.Errorf("%w: current piece %+v", ErrInvalidSnapshot, snapshot.Current)
	}
	if !snapshot.Next.valid() {
		return fmt.Errorf("%w: next piece %+v", ErrInvalidSnapshot, snapshot.Next)
	}
	if snapshot.Score < 0 || snapshot.Level < 0 || snapshot.Rows < 0 || snapshot.ElapsedMs < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidSnapshot)
	}
	c := snapshot.Clears
	if c.Single < 0 || c.Double < 0 || c.Triple < 0 || c.Tetris < 0 {
		return fmt.Errorf("%w: negative clear counts", ErrInvalidSnapshot)
	}
	if c.Total() > snapshot.Rows {
		return fmt.Errorf("%w: clear counts exceed cleared rows", ErrInvalidSnapshot)
	}
	// A live session needs its falling piece to actually fit.
	if snapshot.State == StateRunning || snapshot.State == StatePaused {
		if !restored.CanPlace(snapshot.Current.piece().Cells()) {
			return fmt.Errorf("%w: current piece overlaps the board", ErrInvalidSnapshot)
		}
	}
	return nil
}
