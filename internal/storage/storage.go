// Package storage persists settings, high scores, statistics and the
// saved game as JSON files under the user config directory.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/kcr-83/tetris-go/internal/engine"
)

const (
	appDirName    = "tetris-go"
	settingsFile  = "settings.json"
	scoresFile    = "scores.json"
	statsFile     = "stats.json"
	savedGameFile = "saved-game.json"

	maxScores = 100
)

// Settings is the persisted player configuration.
type Settings struct {
	Theme         string `json:"theme"`
	Sound         bool   `json:"sound"`
	Music         bool   `json:"music"`
	Volume        int    `json:"volume"`
	Shadow        bool   `json:"shadow"`
	Animations    bool   `json:"animations"`
	HardDropTrace bool   `json:"hardDropTrace"`
	Scale         int    `json:"scale"`
	Sync          bool   `json:"sync"`
	Mode          int    `json:"mode"`
	Difficulty    int    `json:"difficulty"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Sound:      true,
		Music:      true,
		Volume:     70,
		Shadow:     true,
		Animations: true,
		Scale:      1,
		Mode:       int(engine.ModeClassic),
		Difficulty: int(engine.DifficultyNormal),
	}
}

// ScoreEntry is one high-score row.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Lines int    `json:"lines"`
	Level int    `json:"level"`
	Mode  string `json:"mode"`
	When  string `json:"when"`
}

// Statistics accumulates results across sessions.
type Statistics struct {
	GamesPlayed int                `json:"gamesPlayed"`
	GamesWon    int                `json:"gamesWon"`
	TotalScore  int                `json:"totalScore"`
	BestScore   int                `json:"bestScore"`
	TotalRows   int                `json:"totalRows"`
	Clears      engine.ClearCounts `json:"clears"`
}

// Record folds one finished session into the statistics.
func (s *Statistics) Record(score, rows int, clears engine.ClearCounts, won bool) {
	s.GamesPlayed++
	if won {
		s.GamesWon++
	}
	s.TotalScore += score
	if score > s.BestScore {
		s.BestScore = score
	}
	s.TotalRows += rows
	s.Clears.Single += clears.Single
	s.Clears.Double += clears.Double
	s.Clears.Triple += clears.Triple
	s.Clears.Tetris += clears.Tetris
}

// Store reads and writes the persistence files rooted at one
// directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// DefaultDir is the per-user location for the persistence files.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// LoadSettings returns the saved settings, or defaults when no file
// exists yet. A present but unreadable file returns the error so the
// caller can warn without losing the defaults.
func (s *Store) LoadSettings() (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), err
	}
	if settings.Scale < 1 {
		settings.Scale = 1
	}
	if settings.Volume < 0 {
		settings.Volume = 0
	}
	if settings.Volume > 100 {
		settings.Volume = 100
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings Settings) error {
	return s.writeJSON(settingsFile, settings)
}

// LoadScores returns the local high-score table, best first.
func (s *Store) LoadScores() ([]ScoreEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, scoresFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ScoreEntry{}, nil
		}
		return nil, err
	}
	var scores []ScoreEntry
	if err := json.Unmarshal(data, &scores); err != nil {
		return []ScoreEntry{}, err
	}
	return scores, nil
}

// AddScore inserts an entry, keeps the table sorted best-first and
// trims it to the retained maximum.
func (s *Store) AddScore(entry ScoreEntry) ([]ScoreEntry, error) {
	scores, err := s.LoadScores()
	if err != nil {
		return nil, err
	}
	scores = append(scores, entry)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if len(scores) > maxScores {
		scores = scores[:maxScores]
	}
	if err := s.writeJSON(scoresFile, scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// LoadStats returns the accumulated statistics, zeroed when no file
// exists.
func (s *Store) LoadStats() (Statistics, error) {
	var stats Statistics
	data, err := os.ReadFile(filepath.Join(s.dir, statsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, nil
		}
		return stats, err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

func (s *Store) SaveStats(stats Statistics) error {
	return s.writeJSON(statsFile, stats)
}

// SaveGame persists an engine snapshot for later resume.
func (s *Store) SaveGame(snapshot engine.Snapshot) error {
	return s.writeJSON(savedGameFile, snapshot)
}

// LoadGame returns the saved snapshot. os.ErrNotExist means there is
// nothing to resume; any other error means the file is unreadable or
// corrupt (restore validation catches semantic corruption).
func (s *Store) LoadGame() (engine.Snapshot, error) {
	var snapshot engine.Snapshot
	data, err := os.ReadFile(filepath.Join(s.dir, savedGameFile))
	if err != nil {
		return snapshot, err
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return engine.Snapshot{}, err
	}
	return snapshot, nil
}

// HasSavedGame reports whether a resume file exists.
func (s *Store) HasSavedGame() bool {
	_, err := os.Stat(filepath.Join(s.dir, savedGameFile))
	return err == nil
}

// ClearSavedGame removes the resume file; a missing file is fine.
func (s *Store) ClearSavedGame() error {
	err := os.Remove(filepath.Join(s.dir, savedGameFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) writeJSON(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}
