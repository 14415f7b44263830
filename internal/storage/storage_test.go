package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcr-83/tetris-go/internal/engine"
	"github.com/kcr-83/tetris-go/internal/storage"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	store := newStore(t)
	settings, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newStore(t)
	settings := storage.DefaultSettings()
	settings.Theme = "Ocean Neon"
	settings.Volume = 35
	settings.Scale = 2
	settings.Mode = int(engine.ModeTimed)
	require.NoError(t, store.SaveSettings(settings))

	loaded, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSettingsClampsBadValues(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	require.NoError(t, err)
	raw := []byte(`{"scale":0,"volume":400,"sound":true}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), raw, 0o644))

	settings, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.Scale)
	assert.Equal(t, 100, settings.Volume)
}

func TestAddScoreSortsBestFirst(t *testing.T) {
	store := newStore(t)
	for _, score := range []int{200, 800, 500} {
		_, err := store.AddScore(storage.ScoreEntry{Name: "p", Score: score})
		require.NoError(t, err)
	}
	scores, err := store.LoadScores()
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, 800, scores[0].Score)
	assert.Equal(t, 500, scores[1].Score)
	assert.Equal(t, 200, scores[2].Score)
}

func TestStatisticsRecordAndRoundTrip(t *testing.T) {
	store := newStore(t)
	stats, err := store.LoadStats()
	require.NoError(t, err)

	stats.Record(1200, 14, engine.ClearCounts{Single: 6, Tetris: 2}, false)
	stats.Record(300, 3, engine.ClearCounts{Single: 3}, true)
	require.NoError(t, store.SaveStats(stats))

	loaded, err := store.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.GamesPlayed)
	assert.Equal(t, 1, loaded.GamesWon)
	assert.Equal(t, 1500, loaded.TotalScore)
	assert.Equal(t, 1200, loaded.BestScore)
	assert.Equal(t, 17, loaded.TotalRows)
	assert.Equal(t, 9, loaded.Clears.Single)
	assert.Equal(t, 2, loaded.Clears.Tetris)
}

func TestSavedGameLifecycle(t *testing.T) {
	store := newStore(t)
	assert.False(t, store.HasSavedGame())

	e := engine.New(engine.Config{}, tetromino.NewFactorySeeded(5))
	e.Start()
	e.HardDrop()
	require.NoError(t, store.SaveGame(e.Snapshot()))
	assert.True(t, store.HasSavedGame())

	snapshot, err := store.LoadGame()
	require.NoError(t, err)

	restored := engine.New(engine.Config{}, tetromino.NewFactorySeeded(5))
	require.NoError(t, restored.Restore(snapshot))
	assert.Equal(t, e.Grid(), restored.Grid())
	assert.Equal(t, e.Score(), restored.Score())

	require.NoError(t, store.ClearSavedGame())
	assert.False(t, store.HasSavedGame())
	require.NoError(t, store.ClearSavedGame())
}

func TestLoadGameCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saved-game.json"), []byte("{nope"), 0o644))

	_, err = store.LoadGame()
	assert.Error(t, err)
}
