// Package engine drives the falling piece against the board: spawn,
// gravity, movement, locking, line clears, scoring, levels and the
// session state machine for the three game modes.
package engine

import (
	"time"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateGameOver
	StateWon
)

func (s State) Valid() bool {
	return s >= StateIdle && s <= StateWon
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateGameOver:
		return "GameOver"
	case StateWon:
		return "Won"
	default:
		return "Unknown"
	}
}

// EndReason records why a session reached game over.
type EndReason string

const (
	ReasonBoardFull          EndReason = "board_full"
	ReasonNoSpaceForNewPiece EndReason = "no_space_for_new_piece"
	ReasonPlayerEnded        EndReason = "player_ended"
)

// ClearCounts tracks line clears by how many rows went at once.
type ClearCounts struct {
	Single int `json:"single"`
	Double int `json:"double"`
	Triple int `json:"triple"`
	Tetris int `json:"tetris"`
}

// Total returns the cumulative cleared-row count the counters imply.
func (c ClearCounts) Total() int {
	return c.Single + 2*c.Double + 3*c.Triple + 4*c.Tetris
}

// Config fixes the rules for one session.
type Config struct {
	Mode       Mode
	Difficulty Difficulty
	// Duration of a timed session; DefaultTimedDuration when zero.
	Duration time.Duration
	// TargetRows to win a challenge session; DefaultTargetRows when
	// zero.
	TargetRows int
}

func (c Config) normalized() Config {
	if c.Mode == ModeTimed && c.Duration <= 0 {
		c.Duration = DefaultTimedDuration
	}
	if c.Mode == ModeChallenge && c.TargetRows <= 0 {
		c.TargetRows = DefaultTargetRows
	}
	return c
}

// StepResult summarizes what a gravity step or drop did, for the UI to
// trigger sounds and animations from.
type StepResult struct {
	Locked     bool
	Cleared    int
	Rows       []int
	ScoreDelta int
	Distance   int
}

// PieceSource supplies spawned pieces. *tetromino.Factory is the
// production implementation; tests script their own sequences.
type PieceSource interface {
	Random() *tetromino.Piece
}

// Engine owns the session state. It is not safe for concurrent use;
// all mutation happens on the single UI loop.
type Engine struct {
	cfg     Config
	board   *board.Board
	factory PieceSource

	current *tetromino.Piece
	next    *tetromino.Piece

	score    int
	level    int
	rows     int
	clears   ClearCounts
	elapsed  time.Duration
	state    State
	reason   EndReason
	softDrop bool

	events []Event
}

// New returns an idle engine; Start begins play.
func New(cfg Config, factory PieceSource) *Engine {
	if factory == nil {
		factory = tetromino.NewFactory()
	}
	return &Engine{
		cfg:     cfg.normalized(),
		board:   board.New(),
		factory: factory,
		state:   StateIdle,
	}
}

// Start spawns the first piece and begins the session. Starting a
// session that already ran resets everything.
func (e *Engine) Start() {
	e.board.Reset()
	e.score = 0
	e.level = 0
	e.rows = 0
	e.clears = ClearCounts{}
	e.elapsed = 0
	e.reason = ""
	e.softDrop = false
	e.events = nil
	e.current = nil
	e.next = e.factory.Random()
	e.state = StateRunning
	e.spawn()
}

// spawn promotes the next piece to current at the spawn position and
// draws a fresh next piece. A spawn collision ends the session
// immediately without touching the board.
func (e *Engine) spawn() {
	e.current = e.next
	e.current.X = tetromino.SpawnX
	e.current.Y = tetromino.SpawnY
	e.current.Rotation = 0
	e.next = e.factory.Random()
	if !e.board.CanPlace(e.current.Cells()) {
		e.gameOver(ReasonNoSpaceForNewPiece)
	}
}

// MoveLeft shifts the current piece one column left. A blocked move is
// silently rejected and reported as false.
func (e *Engine) MoveLeft() bool { return e.move(-1) }

// MoveRight shifts the current piece one column right.
func (e *Engine) MoveRight() bool { return e.move(1) }

func (e *Engine) move(dx int) bool {
	if e.state != StateRunning {
		return false
	}
	if !e.board.CanPlace(e.current.CellsAt(e.current.X+dx, e.current.Y, e.current.Rotation)) {
		return false
	}
	e.current.X += dx
	return true
}

// RotateCW turns the current piece clockwise. There are no kick
// attempts: if the rotated cells collide the piece is left unchanged.
func (e *Engine) RotateCW() bool { return e.rotate(1) }

// RotateCCW turns the current piece counterclockwise.
func (e *Engine) RotateCCW() bool { return e.rotate(-1) }

func (e *Engine) rotate(direction int) bool {
	if e.state != StateRunning {
		return false
	}
	proposed := e.current.Rotation
	if direction >= 0 {
		proposed = (proposed + 1) % 4
	} else {
		proposed = (proposed + 3) % 4
	}
	if !e.board.CanPlace(e.current.CellsAt(e.current.X, e.current.Y, proposed)) {
		return false
	}
	e.current.Rotation = proposed
	return true
}

// SetSoftDrop toggles the fast gravity interval. Cells descended while
// soft drop is active score one point each via Step.
func (e *Engine) SetSoftDrop(active bool) {
	e.softDrop = active
}

// SoftDropActive reports whether soft drop is held.
func (e *Engine) SoftDropActive() bool {
	return e.softDrop
}

// Step performs one gravity tick: move the current piece down one row,
// or lock it, run the line-clear pass and spawn the next piece when it
// cannot descend.
func (e *Engine) Step() StepResult {
	if e.state != StateRunning {
		return StepResult{}
	}
	if e.board.CanPlace(e.current.CellsAt(e.current.X, e.current.Y+1, e.current.Rotation)) {
		e.current.Y++
		if e.softDrop {
			e.addScore(1)
		}
		return StepResult{Distance: 1}
	}
	return e.lockAndContinue(0)
}

// HardDrop sends the current piece straight down, locks it and spawns
// the next one, bypassing the remaining gravity delay.
func (e *Engine) HardDrop() StepResult {
	if e.state != StateRunning {
		return StepResult{}
	}
	distance := 0
	for e.board.CanPlace(e.current.CellsAt(e.current.X, e.current.Y+1, e.current.Rotation)) {
		e.current.Y++
		distance++
	}
	if distance > 0 {
		e.addScore(distance * 2)
	}
	result := e.lockAndContinue(distance)
	return result
}

// lockAndContinue places the current piece, clears full rows, scores
// them, checks the terminal conditions and spawns the next piece.
func (e *Engine) lockAndContinue(distance int) StepResult {
	e.board.Place(e.current.Cells(), e.current.Kind)
	result := StepResult{Locked: true, Distance: distance}

	full := e.board.FullRows()
	if len(full) > 0 {
		cleared := e.board.ClearRows(full)
		delta := rowScores[cleared] * (e.level + 1) * e.cfg.Difficulty.scoreMultiplier()
		e.countClear(cleared)
		e.rows += cleared
		e.addScore(delta)
		e.emit(RowsClearedEvent{Count: cleared, Rows: full, ScoreDelta: delta})
		if newLevel := e.rows / rowsPerLevel; newLevel > e.level {
			e.level = newLevel
			e.emit(LevelIncreasedEvent{Level: e.level})
		}
		result.Cleared = cleared
		result.Rows = full
		result.ScoreDelta = delta
	}

	if e.board.TopRowOccupied() {
		e.gameOver(ReasonBoardFull)
		return result
	}
	if e.cfg.Mode == ModeChallenge && e.rows >= e.cfg.TargetRows {
		e.won()
		return result
	}
	e.spawn()
	return result
}

func (e *Engine) countClear(cleared int) {
	switch cleared {
	case 1:
		e.clears.Single++
	case 2:
		e.clears.Double++
	case 3:
		e.clears.Triple++
	case 4:
		e.clears.Tetris++
	}
}

func (e *Engine) addScore(delta int) {
	if delta <= 0 {
		return
	}
	e.score += delta
	e.emit(ScoreChangedEvent{Score: e.score, Delta: delta})
}

// AdvanceClock accrues session time. The UI calls it from its clock
// tick while play is running; paused time therefore never accrues. In
// timed mode reaching the configured duration ends the session as won.
func (e *Engine) AdvanceClock(delta time.Duration) {
	if e.state != StateRunning || delta <= 0 {
		return
	}
	e.elapsed += delta
	if e.cfg.Mode != ModeTimed {
		return
	}
	remaining := e.cfg.Duration - e.elapsed
	if remaining < 0 {
		remaining = 0
	}
	e.emit(TimeChangedEvent{Remaining: remaining})
	if e.elapsed >= e.cfg.Duration {
		e.won()
	}
}

// Pause freezes gravity and gameplay commands. It does not mutate the
// board or the current piece.
func (e *Engine) Pause() {
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Resume continues a paused session.
func (e *Engine) Resume() {
	if e.state == StatePaused {
		e.state = StateRunning
	}
}

// TogglePause flips between Running and Paused.
func (e *Engine) TogglePause() {
	switch e.state {
	case StateRunning:
		e.state = StatePaused
	case StatePaused:
		e.state = StateRunning
	}
}

// End terminates the session at the player's request.
func (e *Engine) End() {
	if e.state == StateRunning || e.state == StatePaused {
		e.gameOver(ReasonPlayerEnded)
	}
}

func (e *Engine) gameOver(reason EndReason) {
	e.state = StateGameOver
	e.reason = reason
	e.softDrop = false
	e.emit(GameOverEvent{
		Reason: reason,
		Score:  e.score,
		Level:  e.level,
		Rows:   e.rows,
		Clears: e.clears,
	})
}

func (e *Engine) won() {
	e.state = StateWon
	e.softDrop = false
	e.emit(GameWonEvent{Score: e.score, Level: e.level, Rows: e.rows})
}

// FallInterval returns the current gravity tick interval: a
// difficulty-dependent base shrinking per level down to a fixed floor,
// or the fast fixed interval while soft drop is held.
func (e *Engine) FallInterval() time.Duration {
	if e.softDrop {
		return softDropInterval
	}
	interval := e.cfg.Difficulty.baseFallInterval() - time.Duration(e.level)*fallStep
	if interval < minFallInterval {
		return minFallInterval
	}
	return interval
}

// GhostY returns the row the current piece would land on if hard
// dropped, probed against a cloned board so the authoritative grid is
// never touched.
func (e *Engine) GhostY() int {
	if e.current == nil {
		return 0
	}
	probe := e.board.Clone()
	y := e.current.Y
	for probe.CanPlace(e.current.CellsAt(e.current.X, y+1, e.current.Rotation)) {
		y++
	}
	return y
}

// Accessors. Pieces are returned as clones so callers cannot mutate
// the live session state.

func (e *Engine) State() State           { return e.state }
func (e *Engine) Mode() Mode             { return e.cfg.Mode }
func (e *Engine) Difficulty() Difficulty { return e.cfg.Difficulty }
func (e *Engine) Score() int             { return e.score }
func (e *Engine) Level() int             { return e.level }
func (e *Engine) RowsCleared() int       { return e.rows }
func (e *Engine) Clears() ClearCounts    { return e.clears }
func (e *Engine) Reason() EndReason      { return e.reason }
func (e *Engine) Elapsed() time.Duration { return e.elapsed }
func (e *Engine) TargetRows() int        { return e.cfg.TargetRows }

// Grid returns a copy of the board cells.
func (e *Engine) Grid() [][]int { return e.board.Rows() }

// Current returns a clone of the falling piece, or nil before Start.
func (e *Engine) Current() *tetromino.Piece {
	if e.current == nil {
		return nil
	}
	return e.current.Clone()
}

// Next returns a clone of the upcoming piece, or nil before Start.
func (e *Engine) Next() *tetromino.Piece {
	if e.next == nil {
		return nil
	}
	return e.next.Clone()
}

// Remaining returns the time left in a timed session, zero otherwise.
func (e *Engine) Remaining() time.Duration {
	if e.cfg.Mode != ModeTimed {
		return 0
	}
	remaining := e.cfg.Duration - e.elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
