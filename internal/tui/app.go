package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decenza/de1-sim/internal/config"
	"github.com/decenza/de1-sim/internal/engine"
	"github.com/decenza/de1-sim/internal/eventlog"
)

// Run starts the TUI application around the given engine.
func Run(eng *engine.Engine, log *eventlog.Log, settings config.Settings) error {
	m := NewModel(eng, log, settings)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}

	return nil
}
