package engine

import "time"

// Mode selects the win/lose rules for a session.
type Mode int

const (
	// ModeClassic runs until the board tops out.
	ModeClassic Mode = iota
	// ModeTimed runs for a fixed duration; reaching it ends the
	// session as won.
	ModeTimed
	// ModeChallenge ends as won once a target number of rows has been
	// cleared.
	ModeChallenge
)

func (m Mode) Valid() bool {
	return m >= ModeClassic && m <= ModeChallenge
}

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "Classic"
	case ModeTimed:
		return "Timed"
	case ModeChallenge:
		return "Challenge"
	default:
		return "Unknown"
	}
}

// Difficulty scales the starting gravity and the lock scoring.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyNormal:
		return "Normal"
	case DifficultyHard:
		return "Hard"
	default:
		return "Unknown"
	}
}

// baseFallInterval is the level-0 gravity interval per difficulty.
func (d Difficulty) baseFallInterval() time.Duration {
	switch d {
	case DifficultyEasy:
		return 950 * time.Millisecond
	case DifficultyHard:
		return 620 * time.Millisecond
	default:
		return 800 * time.Millisecond
	}
}

// scoreMultiplier scales row-clear scores per difficulty.
func (d Difficulty) scoreMultiplier() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

const (
	// fallStep is how much faster gravity gets per level.
	fallStep = 60 * time.Millisecond
	// minFallInterval is the gravity floor; levels beyond it no longer
	// speed the game up.
	minFallInterval = 100 * time.Millisecond
	// softDropInterval replaces the gravity interval while soft drop
	// is held.
	softDropInterval = 50 * time.Millisecond
	// rowsPerLevel is the level-up threshold on cumulative cleared
	// rows.
	rowsPerLevel = 10

	// Defaults for the non-classic modes.
	DefaultTimedDuration = 3 * time.Minute
	DefaultTargetRows    = 40
)

// rowScores is the base score per rows-cleared-at-once, scaled by
// (level+1) and the difficulty multiplier at lock time.
var rowScores = [5]int{0, 100, 300, 500, 800}
