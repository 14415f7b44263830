package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kcr-83/tetris-go/internal/board"
	"github.com/kcr-83/tetris-go/internal/engine"
	"github.com/kcr-83/tetris-go/internal/tetromino"
)

const scoresPageSize = 20

func viewMenu(m Model) string {
	theme := themes[m.themeIndex]
	entries := m.menuEntries()
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.label)
	}
	content := renderMenu("TETRIS", items, m.menuIndex, "Enter to select, Q to quit", theme)
	if m.statusNote != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", helpStyle(theme).Render(m.statusNote))
	}
	return center(m.width, m.height, content)
}

func viewSetup(m Model) string {
	theme := themes[m.themeIndex]
	items := []string{
		fmt.Sprintf("Mode: %s", modeLabel(m.setupMode)),
		fmt.Sprintf("Difficulty: %s", m.setupDifficulty.String()),
		"Start",
	}
	menu := renderMenu("New Game", items, m.setupIndex, "Left/Right to change, Enter to start, Esc to back", theme)
	note := ""
	switch m.setupMode {
	case engine.ModeTimed:
		note = "Score as much as possible before the clock runs out."
	case engine.ModeChallenge:
		note = fmt.Sprintf("Clear %d rows to win.", engine.DefaultTargetRows)
	}
	if note != "" {
		menu = lipgloss.JoinVertical(lipgloss.Center, menu, "", helpStyle(theme).Render(note))
	}
	return center(m.width, m.height, menu)
}

func modeLabel(mode engine.Mode) string {
	switch mode {
	case engine.ModeTimed:
		return "Timed"
	case engine.ModeChallenge:
		return "Challenge"
	default:
		return "Classic"
	}
}

func viewThemes(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(themes))
	for _, t := range themes {
		items = append(items, t.Name)
	}
	preview := renderThemeSelectionPreview(theme)
	menu := renderMenu("Themes", items, m.themeIndex, "Enter to apply, Esc to back", theme)
	content := lipgloss.JoinVertical(lipgloss.Left, preview, "", menu)
	return center(m.width, m.height, content)
}

func renderThemeSelectionPreview(theme Theme) string {
	if theme.Name != levelShiftThemeName {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			titleStyle(theme).Render("Theme Preview"),
			renderPreviewPieceGrid(theme),
		)
	}

	indices := levelShiftThemeIndices()
	if len(indices) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			titleStyle(theme).Render("Theme Preview"),
			renderPreviewPieceGrid(theme),
		)
	}

	previewCount := 3
	if len(indices) < previewCount {
		previewCount = len(indices)
	}

	sections := make([]string, 0, previewCount)
	for level := 0; level < previewCount; level++ {
		previewTheme := themes[indices[level]]
		section := lipgloss.JoinVertical(
			lipgloss.Left,
			helpStyle(theme).Render(fmt.Sprintf("Level %d -> %s", level, previewTheme.Name)),
			renderPreviewPieceGrid(previewTheme),
		)
		sections = append(sections, section)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle(theme).Render("Theme Preview (Level Shift)"),
		helpStyle(theme).Render("Cycles palette every level during gameplay."),
		lipgloss.JoinHorizontal(lipgloss.Top, sections...),
	)
}

func renderPreviewPieceGrid(theme Theme) string {
	rowTop := renderPreviewPieceRow(theme, []tetromino.Kind{tetromino.KindI, tetromino.KindO, tetromino.KindT, tetromino.KindS})
	rowBottom := renderPreviewPieceRow(theme, []tetromino.Kind{tetromino.KindZ, tetromino.KindJ, tetromino.KindL})
	return lipgloss.JoinVertical(lipgloss.Left, rowTop, rowBottom)
}

func renderPreviewPieceRow(theme Theme, kinds []tetromino.Kind) string {
	items := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		piece := lipgloss.NewStyle().MarginRight(1).Render(renderMiniPiece(kind, theme, 1))
		items = append(items, piece)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func viewScores(m Model) string {
	theme := themes[m.themeIndex]
	var b strings.Builder
	b.WriteString(titleStyle(theme).Render("High Scores"))
	b.WriteString("\n\n")
	if len(m.scores) == 0 {
		b.WriteString("No scores yet.\n")
	} else {
		start := m.scoresOffset
		end := start + scoresPageSize
		if end > len(m.scores) {
			end = len(m.scores)
		}
		for i, score := range m.scores[start:end] {
			line := fmt.Sprintf("%2d. %-12s %7d  L%2d  %-9s %s", start+i+1, score.Name, score.Score, score.Level, score.Mode, score.When)
			b.WriteString(line)
			b.WriteString("\n")
		}
		if len(m.scores) > scoresPageSize {
			b.WriteString("\n")
			b.WriteString(helpStyle(theme).Render("Use Up/Down to scroll"))
			b.WriteString("\n")
		}
	}
	if m.syncWarning != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle(theme).Render(m.syncWarning))
		b.WriteString("\n")
	}
	if m.syncLoading {
		b.WriteString("\n")
		b.WriteString(helpStyle(theme).Render(renderSyncLoader(m.syncDots)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle(theme).Render("Enter to back"))
	return center(m.width, m.height, b.String())
}

func viewStats(m Model) string {
	theme := themes[m.themeIndex]
	var b strings.Builder
	b.WriteString(titleStyle(theme).Render("Statistics"))
	b.WriteString("\n\n")
	lines := []string{
		fmt.Sprintf("Games played: %d", m.stats.GamesPlayed),
		fmt.Sprintf("Games won:    %d", m.stats.GamesWon),
		fmt.Sprintf("Best score:   %d", m.stats.BestScore),
		fmt.Sprintf("Total score:  %d", m.stats.TotalScore),
		fmt.Sprintf("Rows cleared: %d", m.stats.TotalRows),
		"",
		fmt.Sprintf("Singles: %d  Doubles: %d", m.stats.Clears.Single, m.stats.Clears.Double),
		fmt.Sprintf("Triples: %d  Tetrises: %d", m.stats.Clears.Triple, m.stats.Clears.Tetris),
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle(theme).Render("Enter to back"))
	return center(m.width, m.height, b.String())
}

func viewConfig(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(configItems))
	for i, item := range configItems {
		state := "OFF"
		switch i {
		case 0:
			if m.settings.Sound {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		case 1:
			if m.settings.Music {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		case 2:
			items = append(items, fmt.Sprintf("%s: %d%%", item, clampVolumePercent(m.settings.Volume)))
		case 3:
			if m.settings.Shadow {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		case 4:
			if m.settings.Animations {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		case 5:
			if m.settings.HardDropTrace {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		case 6:
			items = append(items, fmt.Sprintf("%s: %dx", item, clampScale(m.settings.Scale)))
		case 7:
			if m.settings.Sync {
				state = "ON"
			}
			items = append(items, fmt.Sprintf("%s: %s", item, state))
		}
	}
	content := renderMenu("Settings", items, m.configIndex, "Enter to toggle, Left/Right to adjust, Esc to back", theme)
	return center(m.width, m.height, content)
}

func viewNameEntry(m Model) string {
	theme := themes[m.themeIndex]
	title := "Game Over"
	if m.wonGame {
		title = "You Won!"
	}
	var b strings.Builder
	b.WriteString(titleStyle(theme).Render(title))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %d  Lines: %d  Level: %d\n\n", m.game.Score(), m.game.RowsCleared(), m.game.Level()))
	b.WriteString("Enter your name: ")
	b.WriteString(highlightStyle(theme).Render(m.nameInput))
	b.WriteString("\n\n")
	b.WriteString(helpStyle(theme).Render("Enter to save, Esc to skip"))
	return center(m.width, m.height, b.String())
}

func viewGame(m Model) string {
	theme := resolveGameTheme(m)
	scale := clampScale(m.settings.Scale)
	minWidth, minHeight := minGameSize(scale)
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		message := fmt.Sprintf("Terminal too small. Need at least %dx%d. Current %dx%d.", minWidth, minHeight, m.width, m.height)
		return center(m.width, m.height, message)
	}
	boardView := renderBoard(m, theme, scale)
	readyLabel := ""
	if m.startCount > 0 {
		if m.startCount > 1 {
			readyLabel = "READY"
		} else {
			readyLabel = "GO"
		}
	}
	info := renderInfo(m, theme, scale, readyLabel)
	content := lipgloss.JoinHorizontal(lipgloss.Top, boardView, info)
	if m.width > 0 && m.width < minWidth+24 {
		content = lipgloss.JoinVertical(lipgloss.Left, boardView, info)
	}
	if m.isTopOutAnimating() {
		shake := ((time.Now().UnixNano() / int64(18*time.Millisecond)) % 2)
		if shake == 0 {
			content = lipgloss.NewStyle().PaddingLeft(1).Render(content)
		}
	}
	return center(m.width, m.height, content)
}

func resolveGameTheme(m Model) Theme {
	selected := themes[m.themeIndex]
	if selected.Name != levelShiftThemeName || m.game == nil {
		return selected
	}
	indices := levelShiftThemeIndices()
	if len(indices) == 0 {
		return selected
	}
	level := m.game.Level()
	if level < 0 {
		level = 0
	}
	return themes[indices[level%len(indices)]]
}

func renderBoard(m Model, theme Theme, scale int) string {
	game := m.game
	border := lipgloss.NewStyle().Foreground(theme.BorderColor)
	cellEmpty := lipgloss.NewStyle()
	cellText := strings.Repeat(" ", cellWidth(scale))
	grid := game.Grid()
	current := game.Current()
	ghost := make([][]bool, board.Height)
	for y := range ghost {
		ghost[y] = make([]bool, board.Width)
	}
	if current != nil {
		ghostY := game.GhostY()
		if m.settings.Shadow && ghostY != current.Y {
			for _, p := range current.CellsAt(current.X, ghostY, current.Rotation) {
				if p.Y >= 0 && p.Y < board.Height && p.X >= 0 && p.X < board.Width {
					if grid[p.Y][p.X] == 0 {
						ghost[p.Y][p.X] = true
					}
				}
			}
		}
		for _, p := range current.Cells() {
			if p.Y >= 0 && p.Y < board.Height && p.X >= 0 && p.X < board.Width {
				grid[p.Y][p.X] = int(current.Kind) + 1
			}
		}
	}
	now := time.Now()
	flashActive := !m.flashUntil.IsZero() && now.Before(m.flashUntil)
	flashMap := map[int]struct{}{}
	if flashActive {
		for _, row := range m.flashRows {
			flashMap[row] = struct{}{}
		}
	}
	dropActive := !m.dropTil.IsZero() && now.Before(m.dropTil)
	dropDestMap := map[tetromino.Point]struct{}{}
	if dropActive {
		for _, point := range m.dropDest {
			dropDestMap[point] = struct{}{}
		}
	}
	whiteStyle := lipgloss.NewStyle().Background(lipgloss.Color("15"))
	breakColumns := brokenColumns(now, m.flashStart, m.flashUntil)
	currentColor := theme.PieceColors[0]
	if current != nil {
		currentColor = theme.PieceColors[int(current.Kind)%len(theme.PieceColors)]
	}
	var b strings.Builder
	b.WriteString(border.Render("+" + strings.Repeat("-", board.Width*cellWidth(scale)) + "+"))
	b.WriteString("\n")
	for y := 0; y < board.Height; y++ {
		for repeat := 0; repeat < scale; repeat++ {
			b.WriteString(border.Render("|"))
			for x := 0; x < board.Width; x++ {
				if _, ok := dropDestMap[tetromino.Point{X: x, Y: y}]; ok {
					b.WriteString(whiteStyle.Render(cellText))
					continue
				}
				if _, flashRow := flashMap[y]; flashRow {
					if x < breakColumns {
						b.WriteString(cellEmpty.Render(cellText))
					} else {
						b.WriteString(whiteStyle.Render(cellText))
					}
					continue
				}
				val := grid[y][x]
				if val == 0 {
					if ghost[y][x] {
						ghostText := strings.Repeat(".", cellWidth(scale))
						b.WriteString(lipgloss.NewStyle().Foreground(currentColor).Faint(true).Render(ghostText))
					} else {
						b.WriteString(cellEmpty.Render(cellText))
					}
					continue
				}
				color := theme.PieceColors[(val-1)%len(theme.PieceColors)]
				b.WriteString(lipgloss.NewStyle().Background(color).Render(cellText))
			}
			b.WriteString(border.Render("|"))
			b.WriteString("\n")
		}
	}
	b.WriteString(border.Render("+" + strings.Repeat("-", board.Width*cellWidth(scale)) + "+"))
	return b.String()
}

func brokenColumns(now, start, until time.Time) int {
	if start.IsZero() || until.IsZero() || !until.After(start) {
		return 0
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	duration := until.Sub(start)
	if elapsed >= duration {
		return board.Width
	}
	progress := float64(elapsed) / float64(duration)
	if progress <= 0.35 {
		return 0
	}
	breakProgress := (progress - 0.35) / 0.65
	columns := int(breakProgress*float64(board.Width)) + 1
	if columns < 0 {
		return 0
	}
	if columns > board.Width {
		return board.Width
	}
	return columns
}

func renderInfo(m Model, theme Theme, scale int, readyLabel string) string {
	game := m.game
	var b strings.Builder
	pad := lipgloss.NewStyle().PaddingLeft(2)
	if readyLabel != "" {
		b.WriteString(pad.Render(highlightStyle(theme).Render(readyLabel)))
		b.WriteString("\n\n")
	}
	b.WriteString(pad.Render(titleStyle(theme).Render("Next")))
	b.WriteString("\n")
	if next := game.Next(); next != nil {
		b.WriteString(pad.Render(renderMiniPiece(next.Kind, theme, scale)))
	}
	b.WriteString("\n\n")
	b.WriteString(pad.Render(fmt.Sprintf("Score: %d", game.Score())))
	b.WriteString("\n")
	b.WriteString(pad.Render(fmt.Sprintf("Lines: %d", game.RowsCleared())))
	b.WriteString("\n")
	b.WriteString(pad.Render(fmt.Sprintf("Level: %d", game.Level())))
	b.WriteString("\n")
	b.WriteString(pad.Render(helpStyle(theme).Render(fmt.Sprintf("%s / %s", modeLabel(game.Mode()), game.Difficulty().String()))))
	b.WriteString("\n")
	switch game.Mode() {
	case engine.ModeTimed:
		b.WriteString(pad.Render(highlightStyle(theme).Render("Time: " + formatClock(game.Remaining()))))
		b.WriteString("\n")
	case engine.ModeChallenge:
		b.WriteString(pad.Render(highlightStyle(theme).Render(fmt.Sprintf("Goal: %d/%d rows", game.RowsCleared(), game.TargetRows()))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.lastEvent != "" || m.lastDelta > 0 {
		label := m.lastEvent
		if label == "" {
			label = "POINTS"
		}
		b.WriteString(pad.Render(highlightStyle(theme).Render(label)))
		b.WriteString("\n")
		if m.lastDelta > 0 {
			b.WriteString(pad.Render(highlightStyle(theme).Render(fmt.Sprintf("+%d", m.lastDelta))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	keys := []string{
		"Arrows/HJKL: move",
		"Z/X or Up: rotate",
		"Space: hard drop",
		"P: pause",
		"Q: save & menu",
	}
	for _, line := range keys {
		b.WriteString(pad.Render(helpStyle(theme).Render(line)))
		b.WriteString("\n")
	}
	switch game.State() {
	case engine.StatePaused:
		b.WriteString("\n")
		b.WriteString(pad.Render(highlightStyle(theme).Render("Paused")))
	case engine.StateGameOver:
		b.WriteString("\n")
		b.WriteString(pad.Render(warningStyle(theme).Render("Game Over")))
	case engine.StateWon:
		b.WriteString("\n")
		b.WriteString(pad.Render(highlightStyle(theme).Render("You Won!")))
	}
	return b.String()
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func renderMiniPiece(kind tetromino.Kind, theme Theme, scale int) string {
	grid := make([][]int, 4)
	for y := range grid {
		grid[y] = make([]int, 4)
	}
	for _, p := range tetromino.Offsets(kind, 0) {
		grid[p.Y][p.X] = 1
	}
	cellEmpty := lipgloss.NewStyle()
	cellText := strings.Repeat(" ", cellWidth(scale))
	var b strings.Builder
	for y := 0; y < 4; y++ {
		for repeat := 0; repeat < scale; repeat++ {
			for x := 0; x < 4; x++ {
				if grid[y][x] == 0 {
					b.WriteString(cellEmpty.Render(cellText))
					continue
				}
				color := theme.PieceColors[int(kind)%len(theme.PieceColors)]
				b.WriteString(lipgloss.NewStyle().Background(color).Render(cellText))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func minGameSize(scale int) (int, int) {
	width := board.Width*cellWidth(scale) + 4
	height := board.Height*scale + 4
	return width, height
}

func titleStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
}

func highlightStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
}

func helpStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.TextColor)
}

func warningStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
}

func center(width, height int, content string) string {
	if width == 0 || height == 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderSyncLoader(dots int) string {
	if dots < 0 {
		dots = 0
	}
	if dots > 3 {
		dots = dots % 4
	}
	return "Syncing" + strings.Repeat(".", dots)
}

func clampScale(value int) int {
	if value < 1 {
		return 1
	}
	if value > 3 {
		return 3
	}
	return value
}

func clampVolumePercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func cellWidth(scale int) int {
	if scale < 1 {
		scale = 1
	}
	return 2 * scale
}

func renderMenu(title string, items []string, selected int, footer string, theme Theme) string {
	maxWidth := lipgloss.Width(title)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item)
		if width := lipgloss.Width(item); width > maxWidth {
			maxWidth = width
		}
	}
	if width := lipgloss.Width(footer); width > maxWidth {
		maxWidth = width
	}
	lineStyle := lipgloss.NewStyle().Width(maxWidth).Align(lipgloss.Center)
	var b strings.Builder
	b.WriteString(lineStyle.Render(titleStyle(theme).Render(title)))
	b.WriteString("\n\n")
	for i, line := range lines {
		if i == selected {
			b.WriteString(lineStyle.Render(highlightStyle(theme).Render(line)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(lineStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lineStyle.Render(helpStyle(theme).Render(footer)))
	return b.String()
}
