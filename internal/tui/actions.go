package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// copyLocation copies the selected match's path:line to the clipboard.
func (m Model) copyLocation() tea.Cmd {
	u := m.selectedMatch()
	if u == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	loc := u.Location()
	if err := clipboard.WriteAll(loc); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("Copied: %s", loc)) }
}

// copyLine copies the selected match's text to the clipboard.
func (m Model) copyLine() tea.Cmd {
	u := m.selectedMatch()
	if u == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	if err := clipboard.WriteAll(u.Text); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Copied line text") }
}

// savePrefs persists the current context width in the background.
func (m Model) savePrefs() tea.Cmd {
	prefs := Prefs{ContextLines: m.contextLines}
	return func() tea.Msg {
		if err := SavePrefs(prefs); err != nil {
			return statusMsg(fmt.Sprintf("Could not save preferences: %v", err))
		}
		return nil
	}
}
