package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const defaultContextLines = 3

// Prefs holds browser preferences that persist across sessions.
type Prefs struct {
	// ContextLines is the number of lines shown on each side of a match.
	ContextLines int `json:"context_lines"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{ContextLines: defaultContextLines}
}

// prefsPath returns the path to the preferences file.
func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".searchusage", "tui_prefs.json"), nil
}

// LoadPrefs loads preferences from disk, returning defaults if absent or
// invalid.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	if prefs.ContextLines < 1 || prefs.ContextLines > maxContext {
		prefs.ContextLines = defaultContextLines
	}
	return prefs
}

// SavePrefs persists preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
