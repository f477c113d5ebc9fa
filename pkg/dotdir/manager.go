// Package dotdir manages the .dalia/ and ~/.dalia directories where the
// dalia CLI keeps its configuration.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the dalia directory.
	dirName = ".dalia"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .dalia/ directory.
// Order of precedence is as follows:
//  1. Provided override (created when missing)
//  2. Local ./.dalia/ dir
//  3. Home ~/.dalia/ dir
//
// When no override is given and neither directory exists, Target returns an
// empty string: callers fall back to defaults rather than scattering state.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating dalia directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if local, ok := m.localDir(); ok {
		return filepath.Abs(local)
	}

	if home, ok := m.homeDir(); ok {
		return home, nil
	}

	return "", nil
}

// EnsureHome creates ~/.dalia when it does not exist and returns its path.
// Used by commands that are about to write state and need a directory.
func (m *Manager) EnsureHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dalia directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDir reports a .dalia/ directory in the current working directory.
func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	dir := filepath.Join(cwd, dirName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	return dir, true
}

// homeDir reports an existing ~/.dalia directory.
func (m *Manager) homeDir() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}

	dir := filepath.Join(home, dirName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	return dir, true
}
