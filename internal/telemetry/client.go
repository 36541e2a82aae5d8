// Package telemetry fetches readings from the meter HTTP API.
package telemetry

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/mutker/wattwatch/internal/connectivity"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/meter"
)

const (
	// DefaultTimeout is the hard limit for one request.
	DefaultTimeout = 10 * time.Second
	// MaxBodySize caps the accepted response body.
	MaxBodySize  = 1 << 20
	latestPath   = "/readings/latest"
	deviceIDArg  = "deviceId"
	acceptHeader = "application/json"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSignal sets the connectivity signal checked before each request.
func WithSignal(s connectivity.Signal) Option {
	return func(c *Client) { c.online = s }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithClock sets the clock used to stamp readings without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client performs single GET requests against the meter API. It never retries.
type Client struct {
	base    BaseURLSource
	http    *http.Client
	online  connectivity.Signal
	timeout time.Duration
	now     func() time.Time
	logger  logger.Logger
}

// NewClient returns a Client reading its base URL from base.
func NewClient(base BaseURLSource, opts ...Option) *Client {
	c := &Client{
		base:    base,
		http:    &http.Client{},
		online:  connectivity.Static(true),
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint builds the latest-reading URL for deviceID.
func Endpoint(baseURL, deviceID string) (string, error) {
	errFactory := errors.New()

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", errFactory.Wrap(ErrInvalidEndpoint, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errFactory.WithData(ErrInvalidEndpoint, baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + latestPath
	u.RawPath = ""
	u.RawQuery = url.Values{deviceIDArg: {deviceID}}.Encode()

	return u.String(), nil
}

// FetchLatest performs one request for the newest reading of deviceID.
func (c *Client) FetchLatest(ctx context.Context, deviceID string) (meter.Reading, error) {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return meter.Reading{}, errFactory.Wrap(ErrCanceled, err)
	}

	if !c.online.Online() {
		return meter.Reading{}, errFactory.New(ErrOffline)
	}

	endpoint, err := Endpoint(c.base.APIBaseURL(), deviceID)
	if err != nil {
		return meter.Reading{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return meter.Reading{}, errFactory.Wrap(ErrInvalidEndpoint, err)
	}
	req.Header.Set("Accept", acceptHeader)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return meter.Reading{}, c.transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("device_id", deviceID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Meter API responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return meter.Reading{}, errFactory.WithData(ErrHTTP, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return meter.Reading{}, c.transportError(ctx, reqCtx, err)
	}
	if len(body) > MaxBodySize {
		return meter.Reading{}, errFactory.WithMessage(ErrInvalidPayload, "response body exceeds 1 MiB")
	}

	return Decode(body, c.now())
}

func (*Client) transportError(parent, reqCtx context.Context, err error) error {
	errFactory := errors.New()

	if parent.Err() != nil {
		return errFactory.Wrap(ErrCanceled, parent.Err())
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return errFactory.Wrap(ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errFactory.Wrap(ErrTimeout, err)
	}

	return errFactory.Wrap(ErrNetwork, err)
}
