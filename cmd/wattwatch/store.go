package main

import (
	"context"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/settings"
)

// openStore opens the settings database and layers it over the loaded defaults.
// The caller closes the returned Settings.
func openStore(ctx context.Context, opts *config.Options, log logger.Logger) (*config.Store, settings.Settings, error) {
	st, err := settings.Open(settings.Config{DBPath: opts.SettingsDB}, log)
	if err != nil {
		return nil, nil, err
	}

	store, err := config.NewStore(ctx, opts.Meter, st, log)
	if err != nil {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("Failed to close settings database")
		}
		return nil, nil, err
	}

	for _, o := range store.Overrides() {
		ev := log.Debug()
		if opts.Explicit(o.Option) {
			ev = log.Warn()
		}
		ev.Str("option", o.Option).
			Str("configured", o.Loaded).
			Str("stored", o.Stored).
			Msg("Stored setting takes precedence; use 'wattwatch config set' or 'config reset' to change it")
	}

	return store, st, nil
}

func closeSettings(st settings.Settings, log logger.Logger) {
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close settings database")
	}
}
