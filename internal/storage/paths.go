// Package storage provides persistent storage for driver preferences and aggregate match statistics.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const appName = "adjacency"

// DataDirEnv names the variable that overrides the data directory.
const DataDirEnv = "ADJACENCY_DATA_DIR"

// GetDataDir returns the directory holding the application's files, creating
// it if needed. $ADJACENCY_DATA_DIR is used as is when set; otherwise the
// directory is "adjacency" under the platform data home.
func GetDataDir() (string, error) {
	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		home, err := platformDataHome()
		if err != nil {
			return "", errors.Wrap(err, "locating data home")
		}
		dataDir = filepath.Join(home, appName)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating data directory %s", dataDir)
	}
	return dataDir, nil
}

// platformDataHome returns the per-user data root:
// ~/Library/Application Support on macOS, %APPDATA% on Windows and
// $XDG_DATA_HOME or ~/.local/share elsewhere.
func platformDataHome() (string, error) {
	var env string
	var fallback []string

	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the badger directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating database directory")
	}

	log.Debug().Str("dir", dbDir).Msg("database directory")
	return dbDir, nil
}
