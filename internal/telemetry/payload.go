package telemetry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/meter"
)

// payload mirrors the API response. Field matching is case-insensitive.
type payload struct {
	Voltage     json.RawMessage `json:"voltage"`
	Current     json.RawMessage `json:"current"`
	Power       json.RawMessage `json:"power"`
	Frequency   json.RawMessage `json:"frequency"`
	PowerFactor json.RawMessage `json:"powerFactor"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Decode converts a response body to a Reading. received stamps readings
// that carry no usable timestamp.
func Decode(body []byte, received time.Time) (meter.Reading, error) {
	errFactory := errors.New()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return meter.Reading{}, errFactory.WithMessage(ErrInvalidPayload, "response is not a JSON object")
	}

	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return meter.Reading{}, errFactory.Wrap(ErrInvalidPayload, err)
	}

	ts, ok := parseTimestamp(p.Timestamp)
	if !ok {
		ts = received
	}

	return meter.Reading{
		Timestamp:   ts,
		Voltage:     parseValue(p.Voltage),
		Current:     parseValue(p.Current),
		Power:       parseValue(p.Power),
		Frequency:   parseValue(p.Frequency),
		PowerFactor: parseValue(p.PowerFactor),
	}, nil
}

// parseValue accepts JSON numbers and numeric strings.
func parseValue(raw json.RawMessage) meter.Value {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return meter.Unavailable()
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return meter.Of(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return meter.Unavailable()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return meter.Unavailable()
	}

	return meter.Of(f)
}

// parseTimestamp reads an ISO-8601 string. Values without a zone are UTC.
func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}
