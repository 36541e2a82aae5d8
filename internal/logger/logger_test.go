package logger_test

import (
	"bytes"
	"testing"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DebugLevel,
		"info":    logger.InfoLevel,
		"":        logger.InfoLevel,
		"warning": logger.WarnLevel,
		"WARN":    logger.WarnLevel,
		"error":   logger.ErrorLevel,
	}
	for in, want := range tests {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("loud")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestWithAddsField(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	log := logger.New(zerolog.New(&buf)).With("component", "retry")

	log.Info().Int("attempt", 2).Msg("retrying")

	assert.Contains(t, buf.String(), `"component":"retry"`)
	assert.Contains(t, buf.String(), `"attempt":2`)
}

func TestErrorWithCode(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	log := logger.New(zerolog.New(&buf))

	log.ErrorWithCode(errors.New().New(errors.ErrOffline)).Msg("fetch failed")

	assert.Contains(t, buf.String(), `"error_code":"offline"`)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Nop().Warn().Str("k", "v").Msg("ignored")
	})
}
