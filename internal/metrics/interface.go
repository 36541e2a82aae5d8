package metrics

import (
	"time"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

// Outcome of a poll cycle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeOffline Outcome = "offline"
)

// Recorder receives instrumentation events from the session.
type Recorder interface {
	ObservePoll(outcome Outcome, elapsed time.Duration)
	ObserveRetry(code string)
	ObserveReading(r meter.Reading, cumulativeKWh float64)
	SetOnline(online bool)
	SetHistorySize(n int)
}
