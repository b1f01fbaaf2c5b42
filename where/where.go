// Package where resolves the directories and files playtrack writes to. Directories are created on access.
package where

import (
	"os"
	"path/filepath"

	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "PLAYTRACK_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory, holding playtrack.toml and the session history.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Playtrack))
}

// Cache holds the journal and the failed batch queue.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}

	return ensureDir(filepath.Join(base, constant.Playtrack))
}

// Logs holds one log file per day.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Journal holds one JSON-lines record file per day.
func Journal() string {
	return ensureDir(filepath.Join(Cache(), "journal"))
}

// Queue is the file of gateway batches waiting for redelivery.
func Queue() string {
	return filepath.Join(Cache(), "failed_batches.json")
}

// History is the per-asset session summary file.
func History() string {
	return filepath.Join(Config(), "history.json")
}
