// Package retry wraps a telemetry fetch with a bounded fixed-delay retry.
package retry

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"codeberg.org/mutker/wattwatch/internal/telemetry"
)

const (
	// DefaultMaxRetries bounds the retries of one cycle; a cycle makes at
	// most DefaultMaxRetries+1 calls.
	DefaultMaxRetries = 3
	// DefaultDelay is the pause before each retry.
	DefaultDelay = 2 * time.Second
)

// Hook observes a retry before its delay starts.
type Hook func(attempt int, err error)

// Option configures a Controller.
type Option func(*Controller)

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Controller) { c.maxRetries = n }
}

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithOnRetry registers a retry hook.
func WithOnRetry(h Hook) Option {
	return func(c *Controller) { c.onRetry = h }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller retries transient fetch failures.
type Controller struct {
	fetcher    telemetry.Fetcher
	maxRetries int
	delay      time.Duration
	onRetry    Hook
	logger     logger.Logger
	attempts   atomic.Int32
}

// New returns a Controller around f.
func New(f telemetry.Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:    f,
		maxRetries: DefaultMaxRetries,
		delay:      DefaultDelay,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}

	return c
}

// Attempts returns the number of retries spent in the current cycle.
func (c *Controller) Attempts() int {
	return int(c.attempts.Load())
}

// MaxRetries returns the retry bound.
func (c *Controller) MaxRetries() int {
	return c.maxRetries
}

// FetchWithRetry fetches the latest reading, retrying transient failures.
// The attempt counter is back at zero when it returns.
func (c *Controller) FetchWithRetry(ctx context.Context, deviceID string) (meter.Reading, error) {
	defer c.attempts.Store(0)

	for {
		reading, err := c.fetcher.FetchLatest(ctx, deviceID)
		if err == nil {
			return reading, nil
		}

		if !telemetry.IsTransient(err) {
			return meter.Reading{}, err
		}

		attempt := c.Attempts()
		if attempt >= c.maxRetries {
			c.logger.Warn().
				Err(err).
				Str("device_id", deviceID).
				Int("retries", attempt).
				Msg("Giving up after retries")
			return meter.Reading{}, err
		}

		attempt = int(c.attempts.Add(1))
		c.logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", c.maxRetries).
			Dur("delay", c.delay).
			Msg("Retrying fetch")
		if c.onRetry != nil {
			c.onRetry(attempt, err)
		}

		if err := sleep(ctx, c.delay); err != nil {
			return meter.Reading{}, errors.New().Wrap(errors.ErrCanceled, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
