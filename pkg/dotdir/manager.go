// Package dotdir manages the .tabagent/ and ~/.tabagent directories.
//
// The directory holds config.toml and, unless configured otherwise, the
// SQLite database of recorded runs.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the tabagent directory.
	DirName = ".tabagent"

	// HomeEnv names an environment variable that points tabagent at a
	// directory of its own when no override is given.
	HomeEnv = "TABAGENT_HOME"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the tabagent directory, creating it
// if needed. The first of these wins:
//  1. overrideDir
//  2. $TABAGENT_HOME
//  3. ./.tabagent/ when it already exists
//  4. ~/.tabagent/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating tabagent directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// File returns the path of name inside the directory Target resolves.
func (m *Manager) File(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	if env := os.Getenv(HomeEnv); env != "" {
		return env, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if local := filepath.Join(cwd, DirName); isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
