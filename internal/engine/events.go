package engine

import "time"

// Event is a state-change notification. The engine appends events to
// an internal queue as it mutates; the UI drains the queue once per
// frame with PollEvents, so no handler ever runs mid-mutation.
type Event interface {
	event()
}

// ScoreChangedEvent reports the new total after any score change.
type ScoreChangedEvent struct {
	Score int
	Delta int
}

// LevelIncreasedEvent reports a level-up.
type LevelIncreasedEvent struct {
	Level int
}

// RowsClearedEvent reports a completed line-clear pass.
type RowsClearedEvent struct {
	Count      int
	Rows       []int
	ScoreDelta int
}

// GameOverEvent reports the terminal losing transition with the final
// session breakdown.
type GameOverEvent struct {
	Reason EndReason
	Score  int
	Level  int
	Rows   int
	Clears ClearCounts
}

// GameWonEvent reports the terminal winning transition (timed expiry
// or challenge target met).
type GameWonEvent struct {
	Score int
	Level int
	Rows  int
}

// TimeChangedEvent reports the remaining time in timed mode.
type TimeChangedEvent struct {
	Remaining time.Duration
}

func (ScoreChangedEvent) event()   {}
func (LevelIncreasedEvent) event() {}
func (RowsClearedEvent) event()    {}
func (GameOverEvent) event()       {}
func (GameWonEvent) event()        {}
func (TimeChangedEvent) event()    {}

func (e *Engine) emit(event Event) {
	e.events = append(e.events, event)
}

// PollEvents returns and clears the pending event queue.
func (e *Engine) PollEvents() []Event {
	events := e.events
	e.events = nil
	return events
}
