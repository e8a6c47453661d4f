package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/clpipe/searchusage/internal/types"
)

// Run opens the interactive browser over matches and blocks until the user
// quits.
func Run(matches []types.UsageMatch, opts Options) error {
	m := NewModel(matches, opts)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
