package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kcr-83/tetris-go/internal/storage"
	"github.com/kcr-83/tetris-go/internal/ui"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	dataDir := flag.String("data-dir", "", "override the persistence directory")
	flag.Parse()
	ui.EnableDebugLogging(*debug)
	ui.DebugLogf("tetris start debug=%v", *debug)

	dir := *dataDir
	if dir == "" {
		var err error
		dir, err = storage.DefaultDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "tetris: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := storage.NewStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tetris: %v\n", err)
		os.Exit(1)
	}

	program := tea.NewProgram(ui.NewModel(store), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		ui.DebugLogf("program error: %v", err)
		fmt.Fprintf(os.Stderr, "tetris: %v\n", err)
		os.Exit(1)
	}
}
