package telemetry

import (
	"context"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

// Fetcher retrieves the latest reading of a device.
type Fetcher interface {
	FetchLatest(ctx context.Context, deviceID string) (meter.Reading, error)
}

// BaseURLSource supplies the API base URL. It is consulted on every request.
type BaseURLSource interface {
	APIBaseURL() string
}

// StaticURL is a BaseURLSource with a fixed value.
type StaticURL string

func (s StaticURL) APIBaseURL() string { return string(s) }
