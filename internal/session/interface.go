package session

import (
	"time"

	"codeberg.org/mutker/wattwatch/internal/meter"
	"codeberg.org/mutker/wattwatch/internal/status"
)

// ConnState is the connection status shown to the user.
type ConnState int

const (
	Connected ConnState = iota
	Offline
	Error
)

func (c ConnState) String() string {
	switch c {
	case Connected:
		return "connected"
	case Offline:
		return "offline"
	default:
		return "error"
	}
}

// Status is reported after every poll cycle and skipped tick.
type Status struct {
	State ConnState
	Err   error
	At    time.Time
}

// Update is reported for every applied reading.
type Update struct {
	Reading       meter.Reading
	Severities    map[meter.Metric]status.Severity
	CumulativeKWh float64
	HistorySize   int
}

// Observer is the presentation collaborator. Callbacks run on the polling
// goroutine and must not block. They must not call config.Store.Update or
// Reset directly either: the change restarts polling, which waits for the
// callback to return. Hand such changes to another goroutine.
type Observer interface {
	OnReading(u Update)
	OnStatus(s Status)
}

// Snapshot is a consistent view of the session state.
type Snapshot struct {
	SessionID     string
	Latest        meter.Reading
	HasReading    bool
	Severities    map[meter.Metric]status.Severity
	CumulativeKWh float64
	LastUpdate    time.Time
	Status        Status
	Polling       bool
	HistorySize   int
}

type nopObserver struct{}

func (nopObserver) OnReading(Update) {}
func (nopObserver) OnStatus(Status)  {}
