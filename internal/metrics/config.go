package metrics

import "codeberg.org/mutker/wattwatch/internal/errors"

const defaultNamespace = "wattwatch"

type Config struct {
	Enabled   bool
	Namespace string
	// SessionID is attached to every series as a constant label when set.
	SessionID string
}

func DefaultConfig() Config {
	return Config{
		Namespace: defaultNamespace,
		Enabled:   false, // Disabled by default
	}
}

func (c Config) Validate() error {
	if c.Enabled && c.Namespace == "" {
		return errors.New().WithMessage(ErrInvalidConfig, "metrics namespace is required when enabled")
	}

	return nil
}
