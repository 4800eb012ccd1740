// Package sqlitepath decides which SQLite file recorded runs live in.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/tabagent/pkg/dotdir"
)

// DefaultFileName is the database created in the .tabagent/ directory when
// no other database is found.
const DefaultFileName = "tabagent.db"

// ResolveSQLitePath returns the database path to use. Order of precedence:
//  1. override (flag or config value)
//  2. TABAGENT_SQLITE, then TABAGENT_DB
//  3. the first existing candidate file
//  4. tabagent.db inside the resolved .tabagent/ directory
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("TABAGENT_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("TABAGENT_DB")); envPath != "" {
		return envPath, nil
	}

	if configDir == "" {
		for _, candidate := range sqliteCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return dotdir.NewManager().File(configDir, DefaultFileName)
}

func sqliteCandidates() []string {
	candidates := []string{
		filepath.Join(dotdir.DirName, DefaultFileName),
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "tabagent", DefaultFileName))
	}

	return candidates
}
