// Package status maps readings to severity levels.
package status

import (
	"codeberg.org/mutker/wattwatch/internal/meter"
)

// Severity of a single metric value.
type Severity int

const (
	// None marks display-only metrics and unavailable values.
	None Severity = iota
	Normal
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "none"
	}
}

// Range is an inclusive interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Band holds the thresholds of one metric. Values inside Normal are normal,
// inside Warning are warnings, and everything else is critical.
type Band struct {
	Normal  Range
	Warning Range
}

// Table maps metrics to their bands. Metrics without a band are display-only.
type Table map[meter.Metric]Band

// DefaultTable returns the mains supply thresholds.
func DefaultTable() Table {
	return Table{
		meter.Voltage:   {Normal: Range{210, 240}, Warning: Range{200, 250}},
		meter.Frequency: {Normal: Range{49.5, 50.5}, Warning: Range{49, 51}},
	}
}

// Classifier classifies values against a Table. It is stateless.
type Classifier struct {
	table Table
}

// NewClassifier returns a Classifier using table.
func NewClassifier(table Table) Classifier {
	t := make(Table, len(table))
	for m, b := range table {
		t[m] = b
	}

	return Classifier{table: t}
}

var defaultClassifier = NewClassifier(DefaultTable())

// Classify uses DefaultTable.
func Classify(m meter.Metric, v meter.Value) Severity {
	return defaultClassifier.Classify(m, v)
}

// Classify returns the severity of v for metric m.
func (c Classifier) Classify(m meter.Metric, v meter.Value) Severity {
	band, ok := c.table[m]
	if !ok {
		return None
	}

	f, ok := v.Get()
	if !ok {
		return None
	}

	switch {
	case band.Normal.Contains(f):
		return Normal
	case band.Warning.Contains(f):
		return Warning
	default:
		return Critical
	}
}

// ClassifyReading returns the severity of every banded metric in r.
func (c Classifier) ClassifyReading(r meter.Reading) map[meter.Metric]Severity {
	out := make(map[meter.Metric]Severity, len(c.table))
	for m := range c.table {
		out[m] = c.Classify(m, r.Value(m))
	}

	return out
}
