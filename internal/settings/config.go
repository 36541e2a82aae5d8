package settings

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/wattwatch/internal/errors"
)

const (
	defaultDirPerm = 0o755
	dbFileName     = "settings.db"
)

type Config struct {
	DBPath string
}

// DefaultConfig places the database under $XDG_STATE_HOME/wattwatch,
// falling back to ~/.local/state/wattwatch.
func DefaultConfig() Config {
	return Config{DBPath: DefaultDBPath()}
}

func DefaultDBPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "wattwatch", dbFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "wattwatch", dbFileName)
	}

	return filepath.Join(os.TempDir(), "wattwatch", dbFileName)
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}
