package settings

import "context"

// Settings is the key/value collaborator that persists user preferences.
type Settings interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany stores all pairs atomically.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// All returns a copy of every stored pair.
	All(ctx context.Context) (map[string]string, error)
	Close() error
}
