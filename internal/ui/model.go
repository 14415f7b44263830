package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kcr-83/tetris-go/internal/engine"
	"github.com/kcr-83/tetris-go/internal/storage"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

type Screen int

const (
	screenMenu Screen = iota
	screenSetup
	screenGame
	screenThemes
	screenScores
	screenStats
	screenConfig
	screenNameEntry
)

type tickMsg struct{ seq int }
type clockTickMsg struct{}
type soundMsg struct{}
type syncTickMsg struct{}
type lineClearTickMsg struct{}
type countdownTickMsg struct{}
type topOutTickMsg struct{}
type dropFlashTickMsg struct{}

type scoresLoadedMsg struct {
	scores []storage.ScoreEntry
	err    error
}

type scoreUploadedMsg struct {
	err error
}

const (
	lineClearFlashDuration = 140 * time.Millisecond
	tetrisFlashDuration    = 180 * time.Millisecond
	dropFlashDuration      = 100 * time.Millisecond
	topOutDuration         = 600 * time.Millisecond
	clockTickInterval      = 250 * time.Millisecond
	// softDropHold keeps soft drop alive between key-repeat presses;
	// once presses stop arriving the flag is released on the next
	// gravity tick.
	softDropHold = 220 * time.Millisecond

	maxNameLength = 12
)

type Model struct {
	screen Screen
	width  int
	height int

	store    *storage.Store
	settings storage.Settings
	scores   []storage.ScoreEntry
	stats    storage.Statistics

	game    *engine.Engine
	control *engine.Controller

	menuIndex    int
	setupIndex   int
	configIndex  int
	themeIndex   int
	scoresOffset int

	setupMode       engine.Mode
	setupDifficulty engine.Difficulty

	nameInput string
	wonGame   bool
	recorded  bool

	sound *SoundEngine
	music *MusicPlayer
	sync  *ScoreSync

	syncWarning string
	syncLoading bool
	syncDots    int
	statusNote  string

	tickSeq      int
	softDropTil  time.Time
	flashRows    []int
	flashStart   time.Time
	flashUntil   time.Time
	lastEvent    string
	lastDelta    int
	startCount   int
	topOutTil    time.Time
	dropDest     []tetromino.Point
	dropFrom     time.Time
	dropTil      time.Time
}

func NewModel(store *storage.Store) Model {
	settings, err := store.LoadSettings()
	if err != nil {
		DebugLogf("settings load error: %v", err)
	}
	index := themeIndexByName(settings.Theme)
	if index < 0 {
		index = 0
		settings.Theme = themes[index].Name
	}
	scoreSync := NewScoreSyncFromEnv(settings.Sync)
	scores := []storage.ScoreEntry{}
	if scoreSync == nil || !scoreSync.Enabled() {
		scores, _ = store.LoadScores()
	}
	stats, err := store.LoadStats()
	if err != nil {
		DebugLogf("stats load error: %v", err)
	}
	ctx, err := initAudioContext()
	if err != nil {
		DebugLogf("audio context init error: %v", err)
	}
	sound := NewSoundEngine(ctx, settings.Sound)
	sound.SetVolume(volumeFromPercent(settings.Volume))
	return Model{
		screen:          screenMenu,
		store:           store,
		settings:        settings,
		scores:          scores,
		stats:           stats,
		themeIndex:      index,
		setupMode:       engine.Mode(settings.Mode),
		setupDifficulty: engine.Difficulty(settings.Difficulty),
		sound:           sound,
		music:           NewMusicPlayer(ctx, volumeFromPercent(settings.Volume), settings.Music),
		sync:            scoreSync,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m.updateGravityTick(msg)
	case clockTickMsg:
		return m.updateClockTick()
	case soundMsg:
		return m, nil
	case syncTickMsg:
		if m.syncLoading {
			m.syncDots = (m.syncDots + 1) % 4
			return m, syncTickCmd()
		}
		return m, nil
	case lineClearTickMsg:
		if m.screen != screenGame {
			return m, nil
		}
		if m.isLineClearAnimating() {
			return m, lineClearTickCmd()
		}
		m.flashRows = nil
		return m, nil
	case dropFlashTickMsg:
		if m.screen != screenGame || m.dropTil.IsZero() {
			return m, nil
		}
		if time.Now().Before(m.dropTil) {
			return m, dropFlashTickCmd()
		}
		m.dropDest = nil
		m.dropTil = time.Time{}
		return m, nil
	case countdownTickMsg:
		return m.updateCountdown()
	case topOutTickMsg:
		return m.updateTopOut()
	case scoresLoadedMsg:
		if msg.err != nil {
			DebugLogf("scores fetch error: %v", msg.err)
			m.syncWarning = "Offline: scores not synced."
			m.syncLoading = false
			return m, nil
		}
		if m.sync == nil || !m.sync.Enabled() {
			m.syncWarning = "Score sync is disabled."
		} else {
			m.syncWarning = ""
		}
		m.scores = msg.scores
		m.syncLoading = false
		return m, nil
	case scoreUploadedMsg:
		if msg.err != nil {
			DebugLogf("score upload error: %v", msg.err)
			m.syncWarning = "Offline: scores not synced."
		} else {
			m.syncWarning = ""
		}
		m.syncLoading = false
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+=", "ctrl++":
			m.adjustScale(1)
			return m, nil
		case "ctrl+-", "ctrl+_":
			m.adjustScale(-1)
			return m, nil
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenSetup:
			return m.updateSetup(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenThemes:
			return m.updateThemes(msg)
		case screenScores:
			return m.updateScores(msg)
		case screenStats:
			return m.updateStats(msg)
		case screenConfig:
			return m.updateConfig(msg)
		case screenNameEntry:
			return m.updateNameEntry(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case screenMenu:
		return viewMenu(m)
	case screenSetup:
		return viewSetup(m)
	case screenGame:
		return viewGame(m)
	case screenThemes:
		return viewThemes(m)
	case screenScores:
		return viewScores(m)
	case screenStats:
		return viewStats(m)
	case screenConfig:
		return viewConfig(m)
	case screenNameEntry:
		return viewNameEntry(m)
	default:
		return ""
	}
}

// scheduleTick arms the next gravity tick. The sequence number makes
// stale ticks from an abandoned chain no-ops, so rescheduling at a new
// interval never doubles gravity.
func (m *Model) scheduleTick(interval time.Duration) tea.Cmd {
	m.tickSeq++
	seq := m.tickSeq
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockTickInterval, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func syncTickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg { return syncTickMsg{} })
}

func lineClearTickCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(time.Time) tea.Msg { return lineClearTickMsg{} })
}

func countdownTickCmd() tea.Cmd {
	return tea.Tick(380*time.Millisecond, func(time.Time) tea.Msg { return countdownTickMsg{} })
}

func topOutTickCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(time.Time) tea.Msg { return topOutTickMsg{} })
}

func dropFlashTickCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(time.Time) tea.Msg { return dropFlashTickMsg{} })
}

func playSound(engine *SoundEngine, event SoundEvent) tea.Cmd {
	return func() tea.Msg {
		if engine != nil {
			engine.Play(event)
		}
		return soundMsg{}
	}
}

func (m *Model) updateGravityTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.tickSeq {
		return *m, nil
	}
	if m.screen != screenGame || m.game == nil {
		return *m, nil
	}
	if m.startCount > 0 {
		return *m, nil
	}
	state := m.game.State()
	if state != engine.StateRunning {
		if state == engine.StatePaused {
			return *m, m.scheduleTick(m.game.FallInterval())
		}
		return *m, nil
	}
	// Release soft drop once key-repeat presses stop arriving.
	if m.control.SoftDropActive() && time.Now().After(m.softDropTil) {
		m.control.Apply(engine.ActionSoftDropEnd)
	}
	result := m.game.Step()
	cmds := m.handleStepResult(result, false)
	if m.game.State() == engine.StateRunning || m.game.State() == engine.StatePaused {
		cmds = append(cmds, m.scheduleTick(m.game.FallInterval()))
	}
	return *m, tea.Batch(cmds...)
}

func (m *Model) updateClockTick() (tea.Model, tea.Cmd) {
	if m.screen != screenGame || m.game == nil {
		return *m, nil
	}
	// The engine ignores clock advances while paused, so paused time
	// never counts toward a timed session.
	m.game.AdvanceClock(clockTickInterval)
	cmds := m.drainEvents()
	switch m.game.State() {
	case engine.StateRunning, engine.StatePaused:
		cmds = append(cmds, clockTickCmd())
	case engine.StateWon:
		// Timed mode ends from the clock, not from a lock.
		cmds = append(cmds, m.beginGameWon())
	}
	return *m, tea.Batch(cmds...)
}

func (m *Model) updateCountdown() (tea.Model, tea.Cmd) {
	if m.screen != screenGame || m.game == nil || m.startCount <= 0 {
		return *m, nil
	}
	m.startCount--
	if m.startCount > 0 {
		return *m, countdownTickCmd()
	}
	cmds := []tea.Cmd{m.scheduleTick(m.game.FallInterval()), clockTickCmd()}
	if m.settings.Sound {
		cmds = append(cmds, playSound(m.sound, SoundMenuSelect))
	}
	return *m, tea.Batch(cmds...)
}

func (m *Model) updateTopOut() (tea.Model, tea.Cmd) {
	if m.screen != screenGame || m.topOutTil.IsZero() {
		return *m, nil
	}
	if time.Now().Before(m.topOutTil) {
		return *m, topOutTickCmd()
	}
	m.topOutTil = time.Time{}
	m.nameInput = ""
	return *m, m.setScreen(screenNameEntry)
}

// handleStepResult turns a gravity step or drop outcome into feedback
// commands and drives the end-of-game transitions.
func (m *Model) handleStepResult(result engine.StepResult, hardDrop bool) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.drainEvents(); cmd != nil {
		cmds = append(cmds, cmd...)
	}
	if result.Locked {
		// A lock always releases soft drop; the next piece starts at
		// normal gravity.
		if m.control.SoftDropActive() {
			m.control.Apply(engine.ActionSoftDropEnd)
		}
		if result.Cleared > 0 && m.settings.Animations {
			m.flashRows = result.Rows
			m.flashStart = time.Now()
			duration := lineClearFlashDuration
			if result.Cleared == 4 {
				duration = tetrisFlashDuration
			}
			m.flashUntil = m.flashStart.Add(duration)
			cmds = append(cmds, lineClearTickCmd())
		}
		if m.settings.Sound {
			switch {
			case result.Cleared > 0:
				cmds = append(cmds, playSound(m.sound, lineClearSound(result.Cleared)))
			case hardDrop:
				cmds = append(cmds, playSound(m.sound, SoundDrop))
			default:
				cmds = append(cmds, playSound(m.sound, SoundLock))
			}
		}
	}
	switch m.game.State() {
	case engine.StateGameOver:
		cmds = append(cmds, m.beginGameOver())
	case engine.StateWon:
		cmds = append(cmds, m.beginGameWon())
	}
	return cmds
}

func lineClearSound(cleared int) SoundEvent {
	switch cleared {
	case 1:
		return SoundLine1
	case 2:
		return SoundLine2
	case 3:
		return SoundLine3
	default:
		return SoundLine4
	}
}

// drainEvents consumes the engine's event queue, updating the side
// panel callouts and reacting to terminal transitions.
func (m *Model) drainEvents() []tea.Cmd {
	if m.game == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, event := range m.game.PollEvents() {
		switch ev := event.(type) {
		case engine.RowsClearedEvent:
			m.lastEvent = clearLabel(ev.Count)
			m.lastDelta = ev.ScoreDelta
		case engine.LevelIncreasedEvent:
			m.lastEvent = "LEVEL UP"
			DebugLogf("level increased to %d", ev.Level)
		case engine.ScoreChangedEvent:
			// Score is rendered from the engine directly.
		case engine.TimeChangedEvent:
			// Remaining time is rendered from the engine directly.
		case engine.GameOverEvent:
			DebugLogf("game over: %s score=%d rows=%d", ev.Reason, ev.Score, ev.Rows)
		case engine.GameWonEvent:
			DebugLogf("game won: score=%d rows=%d", ev.Score, ev.Rows)
		}
	}
	return cmds
}

func clearLabel(count int) string {
	switch count {
	case 1:
		return "SINGLE"
	case 2:
		return "DOUBLE"
	case 3:
		return "TRIPLE"
	default:
		return "TETRIS"
	}
}

// beginGameOver records the finished session and starts the top-out
// effect that leads into name entry.
func (m *Model) beginGameOver() tea.Cmd {
	m.recordGameEnd(false)
	m.wonGame = false
	var cmds []tea.Cmd
	if m.settings.Sound {
		cmds = append(cmds, playSound(m.sound, SoundGameOver))
	}
	if m.settings.Animations {
		m.topOutTil = time.Now().Add(topOutDuration)
		cmds = append(cmds, topOutTickCmd())
	} else {
		m.nameInput = ""
		cmds = append(cmds, m.setScreen(screenNameEntry))
	}
	return tea.Batch(cmds...)
}

func (m *Model) beginGameWon() tea.Cmd {
	m.recordGameEnd(true)
	m.wonGame = true
	m.nameInput = ""
	cmds := []tea.Cmd{m.setScreen(screenNameEntry)}
	if m.settings.Sound {
		cmds = append(cmds, playSound(m.sound, SoundGameWon))
	}
	return tea.Batch(cmds...)
}

func (m *Model) recordGameEnd(won bool) {
	if m.recorded || m.game == nil {
		return
	}
	m.recorded = true
	m.stats.Record(m.game.Score(), m.game.RowsCleared(), m.game.Clears(), won)
	if err := m.store.SaveStats(m.stats); err != nil {
		DebugLogf("stats save error: %v", err)
	}
	if err := m.store.ClearSavedGame(); err != nil {
		DebugLogf("saved game clear error: %v", err)
	}
}

func (m *Model) setScreen(screen Screen) tea.Cmd {
	m.screen = screen
	m.syncMusicForScreen()
	return nil
}

func (m *Model) syncMusicForScreen() {
	if m.music == nil {
		return
	}
	if !m.settings.Music {
		m.music.Stop()
		return
	}
	if m.screen == screenGame {
		m.music.Start()
		return
	}
	m.music.Stop()
}

type menuAction int

const (
	menuNewGame menuAction = iota
	menuContinue
	menuThemes
	menuScores
	menuStats
	menuConfig
	menuQuit
)

type menuEntry struct {
	label  string
	action menuAction
}

func (m Model) menuEntries() []menuEntry {
	entries := []menuEntry{{label: "New Game", action: menuNewGame}}
	if m.store.HasSavedGame() {
		entries = append(entries, menuEntry{label: "Continue", action: menuContinue})
	}
	entries = append(entries,
		menuEntry{label: "Themes", action: menuThemes},
		menuEntry{label: "High Scores", action: menuScores},
		menuEntry{label: "Statistics", action: menuStats},
		menuEntry{label: "Settings", action: menuConfig},
		menuEntry{label: "Quit", action: menuQuit},
	)
	return entries
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.menuEntries()
	if m.menuIndex >= len(entries) {
		m.menuIndex = len(entries) - 1
	}
	var cmd tea.Cmd
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
			cmd = m.menuMoveSound()
		}
	case "down", "j":
		if m.menuIndex < len(entries)-1 {
			m.menuIndex++
			cmd = m.menuMoveSound()
		}
	case "enter":
		m.statusNote = ""
		if m.settings.Sound {
			cmd = playSound(m.sound, SoundMenuSelect)
		}
		switch entries[m.menuIndex].action {
		case menuNewGame:
			m.setupIndex = 0
			return *m, tea.Batch(cmd, m.setScreen(screenSetup))
		case menuContinue:
			return m.continueGame(cmd)
		case menuThemes:
			return *m, tea.Batch(cmd, m.setScreen(screenThemes))
		case menuScores:
			m.scoresOffset = 0
			if m.sync != nil && m.sync.Enabled() {
				m.syncLoading = true
				m.syncDots = 0
				return *m, tea.Batch(cmd, m.setScreen(screenScores), m.sync.FetchScoresCmd(), syncTickCmd())
			}
			if m.sync != nil {
				m.syncWarning = "Score sync is disabled."
			}
			return *m, tea.Batch(cmd, m.setScreen(screenScores))
		case menuStats:
			return *m, tea.Batch(cmd, m.setScreen(screenStats))
		case menuConfig:
			return *m, tea.Batch(cmd, m.setScreen(screenConfig))
		case menuQuit:
			return *m, tea.Quit
		}
	case "q", "esc":
		return *m, tea.Quit
	}
	return *m, cmd
}

func (m *Model) menuMoveSound() tea.Cmd {
	if m.settings.Sound {
		return playSound(m.sound, SoundMenuMove)
	}
	return nil
}

var setupItems = []string{"Mode", "Difficulty", "Start"}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.setupIndex > 0 {
			m.setupIndex--
			return *m, m.menuMoveSound()
		}
	case "down", "j":
		if m.setupIndex < len(setupItems)-1 {
			m.setupIndex++
			return *m, m.menuMoveSound()
		}
	case "left", "h":
		m.cycleSetup(-1)
		return *m, m.menuMoveSound()
	case "right", "l":
		m.cycleSetup(1)
		return *m, m.menuMoveSound()
	case "enter":
		if m.setupIndex == len(setupItems)-1 {
			return m.startNewGame()
		}
		m.cycleSetup(1)
		return *m, m.menuMoveSound()
	case "q", "esc":
		return *m, m.setScreen(screenMenu)
	}
	return *m, nil
}

func (m *Model) cycleSetup(delta int) {
	switch m.setupIndex {
	case 0:
		m.setupMode = engine.Mode((int(m.setupMode) + delta + 3) % 3)
	case 1:
		m.setupDifficulty = engine.Difficulty((int(m.setupDifficulty) + delta + 3) % 3)
	}
}

func (m *Model) startNewGame() (tea.Model, tea.Cmd) {
	m.settings.Mode = int(m.setupMode)
	m.settings.Difficulty = int(m.setupDifficulty)
	if err := m.store.SaveSettings(m.settings); err != nil {
		DebugLogf("settings save error: %v", err)
	}
	m.game = engine.New(engine.Config{
		Mode:       m.setupMode,
		Difficulty: m.setupDifficulty,
	}, tetromino.NewFactory())
	m.game.Start()
	m.control = engine.NewController(m.game)
	m.resetSessionUI()
	cmds := []tea.Cmd{m.setScreen(screenGame), countdownTickCmd()}
	if m.settings.Sound {
		cmds = append(cmds, playSound(m.sound, SoundMenuSelect))
	}
	return *m, tea.Batch(cmds...)
}

func (m *Model) continueGame(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	snapshot, err := m.store.LoadGame()
	if err != nil {
		DebugLogf("saved game load error: %v", err)
		m.statusNote = "Saved game could not be read."
		return *m, cmd
	}
	game := engine.New(engine.Config{}, tetromino.NewFactory())
	if err := game.Restore(snapshot); err != nil {
		DebugLogf("saved game restore error: %v", err)
		m.statusNote = "Saved game was corrupted; starting fresh."
		if err := m.store.ClearSavedGame(); err != nil {
			DebugLogf("saved game clear error: %v", err)
		}
		return *m, cmd
	}
	game.Resume()
	m.game = game
	m.control = engine.NewController(game)
	m.resetSessionUI()
	return *m, tea.Batch(cmd, m.setScreen(screenGame), countdownTickCmd())
}

func (m *Model) resetSessionUI() {
	m.recorded = false
	m.wonGame = false
	m.lastEvent = ""
	m.lastDelta = 0
	m.flashRows = nil
	m.flashStart = time.Time{}
	m.flashUntil = time.Time{}
	m.topOutTil = time.Time{}
	m.dropDest = nil
	m.dropFrom = time.Time{}
	m.dropTil = time.Time{}
	m.softDropTil = time.Time{}
	m.startCount = 2
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.game == nil {
		return *m, m.setScreen(screenMenu)
	}
	if m.startCount > 0 || !m.topOutTil.IsZero() {
		switch msg.String() {
		case "q", "esc":
			return m.leaveGame()
		}
		return *m, nil
	}
	switch msg.String() {
	case "left", "h":
		if m.control.SoftDropActive() {
			m.control.Apply(engine.ActionSoftDropEnd)
		}
		moved := m.game.MoveLeft()
		if moved && m.settings.Sound {
			return *m, playSound(m.sound, SoundMove)
		}
	case "right", "l":
		if m.control.SoftDropActive() {
			m.control.Apply(engine.ActionSoftDropEnd)
		}
		moved := m.game.MoveRight()
		if moved && m.settings.Sound {
			return *m, playSound(m.sound, SoundMove)
		}
	case "down", "j":
		if m.game.State() != engine.StateRunning {
			return *m, nil
		}
		m.softDropTil = time.Now().Add(softDropHold)
		if !m.control.SoftDropActive() {
			m.control.Apply(engine.ActionSoftDropStart)
			// Re-arm gravity at the fast interval right away instead
			// of waiting out the pending slow tick.
			return *m, m.scheduleTick(m.game.FallInterval())
		}
	case " ":
		if m.game.State() != engine.StateRunning {
			return *m, nil
		}
		var cmds []tea.Cmd
		if m.settings.HardDropTrace && m.settings.Animations {
			cmds = append(cmds, m.startDropFlash())
		}
		result := m.game.HardDrop()
		cmds = append(cmds, m.handleStepResult(result, true)...)
		if m.game.State() == engine.StateRunning {
			cmds = append(cmds, m.scheduleTick(m.game.FallInterval()))
		}
		return *m, tea.Batch(cmds...)
	case "up", "x":
		if m.game.RotateCW() && m.settings.Sound {
			return *m, playSound(m.sound, SoundRotate)
		}
	case "z":
		if m.game.RotateCCW() && m.settings.Sound {
			return *m, playSound(m.sound, SoundRotate)
		}
	case "p":
		m.game.TogglePause()
	case "q", "esc":
		return m.leaveGame()
	}
	return *m, nil
}

// startDropFlash highlights the landing cells of a hard drop for a
// short moment.
func (m *Model) startDropFlash() tea.Cmd {
	current := m.game.Current()
	if current == nil {
		return nil
	}
	ghostY := m.game.GhostY()
	cells := current.CellsAt(current.X, ghostY, current.Rotation)
	m.dropDest = cells[:]
	m.dropFrom = time.Now()
	m.dropTil = m.dropFrom.Add(dropFlashDuration)
	return dropFlashTickCmd()
}

// leaveGame saves a live session for later resume and returns to the
// menu; finished sessions are simply abandoned.
func (m *Model) leaveGame() (tea.Model, tea.Cmd) {
	switch m.game.State() {
	case engine.StateRunning, engine.StatePaused:
		m.game.Pause()
		if err := m.store.SaveGame(m.game.Snapshot()); err != nil {
			DebugLogf("saved game write error: %v", err)
			m.statusNote = "Could not save the game."
		} else {
			m.statusNote = "Game saved."
		}
	}
	return *m, m.setScreen(screenMenu)
}

func (m *Model) updateThemes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.themeIndex > 0 {
			m.themeIndex--
			return *m, m.menuMoveSound()
		}
	case "down", "j":
		if m.themeIndex < len(themes)-1 {
			m.themeIndex++
			return *m, m.menuMoveSound()
		}
	case "enter":
		m.settings.Theme = themes[m.themeIndex].Name
		if err := m.store.SaveSettings(m.settings); err != nil {
			DebugLogf("settings save error: %v", err)
		}
		cmd := m.setScreen(screenMenu)
		if m.settings.Sound {
			return *m, tea.Batch(cmd, playSound(m.sound, SoundMenuSelect))
		}
		return *m, cmd
	case "q", "esc":
		return *m, m.setScreen(screenMenu)
	}
	return *m, nil
}

func (m *Model) updateScores(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		cmd := m.setScreen(screenMenu)
		if m.settings.Sound {
			return *m, tea.Batch(cmd, playSound(m.sound, SoundMenuSelect))
		}
		return *m, cmd
	case "up", "k":
		if m.scoresOffset > 0 {
			m.scoresOffset--
		}
	case "down", "j":
		max := len(m.scores) - scoresPageSize
		if max < 0 {
			max = 0
		}
		if m.scoresOffset < max {
			m.scoresOffset++
		}
	}
	return *m, nil
}

func (m *Model) updateStats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		return *m, m.setScreen(screenMenu)
	}
	return *m, nil
}

var configItems = []string{
	"Sound",
	"Music",
	"Volume",
	"Shadow",
	"Animations",
	"Hard Drop Flash",
	"Scale",
	"Score Sync",
}

func (m *Model) updateConfig(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.configIndex > 0 {
			m.configIndex--
			return *m, m.menuMoveSound()
		}
	case "down", "j":
		if m.configIndex < len(configItems)-1 {
			m.configIndex++
			return *m, m.menuMoveSound()
		}
	case "enter":
		m.toggleConfig()
		if m.settings.Sound {
			return *m, playSound(m.sound, SoundMenuSelect)
		}
	case "left", "h":
		m.adjustConfig(-1)
		return *m, m.menuMoveSound()
	case "right", "l":
		m.adjustConfig(1)
		return *m, m.menuMoveSound()
	case "q", "esc":
		return *m, m.setScreen(screenMenu)
	}
	return *m, nil
}

func (m *Model) toggleConfig() {
	switch m.configIndex {
	case 0:
		m.settings.Sound = !m.settings.Sound
		if m.sound != nil {
			m.sound.SetEnabled(m.settings.Sound)
		}
	case 1:
		m.settings.Music = !m.settings.Music
		if m.music != nil {
			m.music.SetEnabled(m.settings.Music)
		}
		m.syncMusicForScreen()
	case 2:
		m.adjustVolume(5)
	case 3:
		m.settings.Shadow = !m.settings.Shadow
	case 4:
		m.settings.Animations = !m.settings.Animations
		if !m.settings.Animations {
			m.flashRows = nil
			m.flashUntil = time.Time{}
			m.dropDest = nil
			m.dropTil = time.Time{}
		}
	case 5:
		m.settings.HardDropTrace = !m.settings.HardDropTrace
	case 6:
		m.adjustScale(1)
	case 7:
		m.settings.Sync = !m.settings.Sync
		if m.sync != nil {
			m.sync.SetEnabled(m.settings.Sync)
		}
	}
	m.saveSettings()
}

func (m *Model) adjustConfig(delta int) {
	switch m.configIndex {
	case 2:
		m.adjustVolume(5 * delta)
	case 6:
		m.adjustScale(delta)
	}
}

func (m *Model) adjustVolume(delta int) {
	volume := m.settings.Volume + delta
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	if volume == m.settings.Volume {
		return
	}
	m.settings.Volume = volume
	if m.sound != nil {
		m.sound.SetVolume(volumeFromPercent(volume))
	}
	if m.music != nil {
		m.music.SetVolume(volumeFromPercent(volume))
	}
	m.saveSettings()
}

func (m *Model) adjustScale(delta int) {
	scale := clampScale(m.settings.Scale + delta)
	if scale == m.settings.Scale {
		return
	}
	m.settings.Scale = scale
	m.saveSettings()
}

func (m *Model) saveSettings() {
	if err := m.store.SaveSettings(m.settings); err != nil {
		DebugLogf("settings save error: %v", err)
	}
}

func (m *Model) updateNameEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.nameInput)
		if name == "" {
			name = "Player"
		}
		entry := storage.ScoreEntry{
			Name:  name,
			Score: m.game.Score(),
			Lines: m.game.RowsCleared(),
			Level: m.game.Level(),
			Mode:  m.game.Mode().String(),
			When:  time.Now().Format("2006-01-02"),
		}
		scores, err := m.store.AddScore(entry)
		if err != nil {
			DebugLogf("score save error: %v", err)
		} else if m.sync == nil || !m.sync.Enabled() {
			m.scores = scores
		}
		cmds := []tea.Cmd{m.setScreen(screenMenu)}
		if m.sync != nil && m.sync.Enabled() {
			m.syncLoading = true
			cmds = append(cmds, m.sync.UploadScoreCmd(entry), syncTickCmd())
		}
		if m.settings.Sound {
			cmds = append(cmds, playSound(m.sound, SoundMenuSelect))
		}
		return *m, tea.Batch(cmds...)
	case "esc":
		return *m, m.setScreen(screenMenu)
	case "backspace":
		if len(m.nameInput) > 0 {
			m.nameInput = m.nameInput[:len(m.nameInput)-1]
		}
	default:
		text := msg.String()
		if len(text) == 1 && len(m.nameInput) < maxNameLength {
			r := rune(text[0])
			if r >= ' ' && r <= '~' {
				m.nameInput += text
			}
		}
	}
	return *m, nil
}

func (m Model) isLineClearAnimating() bool {
	return !m.flashUntil.IsZero() && time.Now().Before(m.flashUntil)
}

func (m Model) isTopOutAnimating() bool {
	return !m.topOutTil.IsZero() && time.Now().Before(m.topOutTil)
}

func volumeFromPercent(value int) float64 {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return float64(value) / 100
}
