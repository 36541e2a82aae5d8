package config

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/settings"
)

// Patch holds a partial Config update; nil fields are left unchanged.
type Patch struct {
	APIBaseURL          *string
	DeviceID            *string
	PollIntervalSeconds *int
	DarkMode            *bool
}

// Override is a persisted preference that replaced a value loaded from
// flags, environment or config file. Option is the flag name.
type Override struct {
	Option string
	Loaded string
	Stored string
}

// Listener is notified with the new Config after every successful change.
type Listener func(Config)

// Store owns the runtime Config and keeps it in sync with the settings collaborator.
type Store struct {
	mu        sync.RWMutex
	writeMu   sync.Mutex
	cfg       Config
	defaults  Config
	settings  settings.Settings
	listeners []Listener
	overrides []Override
	logger    logger.Logger
}

// NewStore builds a Store from defaults overlaid with persisted settings.
func NewStore(ctx context.Context, defaults Config, s settings.Settings, log logger.Logger) (*Store, error) {
	if err := defaults.Validate(); err != nil {
		return nil, errors.New().Wrap(errors.ErrInvalidConfig, err)
	}

	cfg := defaults

	if v, ok, err := s.Get(ctx, KeyAPIURL); err != nil {
		return nil, err
	} else if ok && strings.TrimSpace(v) != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}

	if v, ok, err := s.Get(ctx, KeyDeviceID); err != nil {
		return nil, err
	} else if ok && strings.TrimSpace(v) != "" {
		cfg.DeviceID = strings.TrimSpace(v)
	}

	if v, ok, err := s.Get(ctx, KeyRefreshInterval); err != nil {
		return nil, err
	} else if ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.PollIntervalSeconds = n
		} else {
			log.Warn().Str("value", v).Msg("Ignoring invalid stored refresh interval")
		}
	}

	if v, ok, err := s.Get(ctx, KeyDarkMode); err != nil {
		return nil, err
	} else if ok {
		cfg.DarkMode = v == "true"
	}

	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("Stored settings are invalid, using defaults")
		cfg = defaults
	}

	return &Store{
		cfg:       cfg,
		defaults:  defaults,
		settings:  s,
		overrides: diff(defaults, cfg),
		logger:    log,
	}, nil
}

// Overrides lists the loaded values that persisted settings replaced at startup.
func (s *Store) Overrides() []Override {
	return append([]Override(nil), s.overrides...)
}

func diff(loaded, stored Config) []Override {
	var out []Override
	add := func(option, l, s string) {
		if l != s {
			out = append(out, Override{Option: option, Loaded: l, Stored: s})
		}
	}
	add("api-url", loaded.APIBaseURL, stored.APIBaseURL)
	add("device-id", loaded.DeviceID, stored.DeviceID)
	add("interval", strconv.Itoa(loaded.PollIntervalSeconds), strconv.Itoa(stored.PollIntervalSeconds))
	add("dark-mode", strconv.FormatBool(loaded.DarkMode), strconv.FormatBool(stored.DarkMode))
	return out
}

// Get returns a copy of the current Config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// APIBaseURL returns the current API base URL.
func (s *Store) APIBaseURL() string {
	return s.Get().APIBaseURL
}

// Interval returns the polling interval as a duration.
func (s *Store) Interval() time.Duration {
	return time.Duration(s.Get().PollIntervalSeconds) * time.Second
}

// OnChange registers l to be called after every successful Update or Reset.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Update validates and applies p, persists the result and notifies listeners.
// On any error the previous Config stays in effect.
func (s *Store) Update(ctx context.Context, p Patch) (Config, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Get()
	if p.APIBaseURL != nil {
		next.APIBaseURL = strings.TrimSpace(*p.APIBaseURL)
	}
	if p.DeviceID != nil {
		next.DeviceID = strings.TrimSpace(*p.DeviceID)
	}
	if p.PollIntervalSeconds != nil {
		next.PollIntervalSeconds = *p.PollIntervalSeconds
	}
	if p.DarkMode != nil {
		next.DarkMode = *p.DarkMode
	}

	if err := next.Validate(); err != nil {
		return s.Get(), err
	}

	if err := s.settings.SetMany(ctx, map[string]string{
		KeyAPIURL:          next.APIBaseURL,
		KeyDeviceID:        next.DeviceID,
		KeyRefreshInterval: strconv.Itoa(next.PollIntervalSeconds),
		KeyDarkMode:        strconv.FormatBool(next.DarkMode),
	}); err != nil {
		return s.Get(), err
	}

	s.logger.Info().
		Str("api_url", next.APIBaseURL).
		Str("device_id", next.DeviceID).
		Int("interval", next.PollIntervalSeconds).
		Bool("dark_mode", next.DarkMode).
		Msg("Configuration updated")

	s.swap(next)

	return next, nil
}

// Reset removes the persisted settings and restores the defaults.
func (s *Store) Reset(ctx context.Context) (Config, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.settings.Delete(ctx, Keys()...); err != nil {
		return s.Get(), err
	}

	s.logger.Info().Msg("Configuration reset to defaults")
	s.swap(s.defaults)

	return s.defaults, nil
}

func (s *Store) swap(next Config) {
	s.mu.Lock()
	s.cfg = next
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}
