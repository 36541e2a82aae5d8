// Package meter defines the telemetry sample produced by the meter API.
package meter

import (
	"math"
	"strconv"
	"time"
)

// Metric names a measured quantity of a Reading.
type Metric string

const (
	Voltage     Metric = "voltage"
	Current     Metric = "current"
	Power       Metric = "power"
	Frequency   Metric = "frequency"
	PowerFactor Metric = "power_factor"
)

// Metrics lists every metric in display order.
func Metrics() []Metric {
	return []Metric{Voltage, Current, Power, Frequency, PowerFactor}
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	switch m {
	case Voltage:
		return "V"
	case Current:
		return "A"
	case Power:
		return "W"
	case Frequency:
		return "Hz"
	default:
		return ""
	}
}

// Decimals returns the number of decimals used when rendering the metric.
func (m Metric) Decimals() int {
	switch m {
	case Current:
		return 3
	case Frequency:
		return 1
	default:
		return 2
	}
}

// Value is a measured quantity that may be unavailable upstream.
// The zero Value is unavailable.
type Value struct {
	v  float64
	ok bool
}

// Of returns an available Value. NaN and infinities are unavailable.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}

	return Value{v: v, ok: true}
}

// Unavailable returns a Value with no measurement.
func Unavailable() Value {
	return Value{}
}

// Get returns the measurement and whether it is available.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Available reports whether the value carries a measurement.
func (v Value) Available() bool {
	return v.ok
}

// Float returns the measurement, or 0 when unavailable.
func (v Value) Float() float64 {
	if !v.ok {
		return 0
	}

	return v.v
}

// Format renders the value with the given decimals, or "N/A".
func (v Value) Format(decimals int) string {
	if !v.ok {
		return "N/A"
	}

	return strconv.FormatFloat(v.v, 'f', decimals, 64)
}

// Reading is one immutable telemetry sample.
type Reading struct {
	Timestamp   time.Time
	Voltage     Value
	Current     Value
	Power       Value
	Frequency   Value
	PowerFactor Value
}

// Value returns the reading's value for m.
func (r Reading) Value(m Metric) Value {
	switch m {
	case Voltage:
		return r.Voltage
	case Current:
		return r.Current
	case Power:
		return r.Power
	case Frequency:
		return r.Frequency
	case PowerFactor:
		return r.PowerFactor
	default:
		return Unavailable()
	}
}
