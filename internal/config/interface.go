package config

import (
	"fmt"

	"codeberg.org/mutker/wattwatch/internal/errors"
)

// Settings keys shared with the settings collaborator.
const (
	KeyAPIURL          = "apiUrl"
	KeyDeviceID        = "deviceId"
	KeyRefreshInterval = "refreshInterval"
	KeyDarkMode        = "darkMode"
)

// Keys lists every persisted settings key.
func Keys() []string {
	return []string{KeyAPIURL, KeyDeviceID, KeyRefreshInterval, KeyDarkMode}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// ValidationError represents a configuration validation error
type ValidationError interface {
	error
	// Field returns the name of the invalid field
	Field() string
	// Value returns the invalid value
	Value() interface{}
	// Reason returns why the value is invalid
	Reason() string
}

type fieldError struct {
	field  string
	value  interface{}
	reason string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.field, e.value, e.reason)
}

func (e *fieldError) Field() string      { return e.field }
func (e *fieldError) Value() interface{} { return e.value }
func (e *fieldError) Reason() string     { return e.reason }

func invalid(code errors.ErrorCode, field string, value interface{}, reason string) error {
	return errors.New().Wrap(code, &fieldError{field: field, value: value, reason: reason})
}
