package history

import (
	"sync"
	"time"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

// DefaultChartPoints is the length of the live chart window.
const DefaultChartPoints = 30

// Point is one sample of the live chart.
type Point struct {
	Time    time.Time
	Power   meter.Value
	Voltage meter.Value
}

// PointOf extracts the charted values of r.
func PointOf(r meter.Reading) Point {
	return Point{Time: r.Timestamp, Power: r.Power, Voltage: r.Voltage}
}

// ChartSink renders the live chart. evicted is nil until the window is full.
type ChartSink interface {
	OnPoint(added Point, evicted *Point)
}

// ChartFeed keeps the latest chart points and forwards changes to a sink.
type ChartFeed struct {
	mu   sync.Mutex
	ring *Ring[Point]
	sink ChartSink
}

// NewChartFeed returns a feed of capacity points. sink may be nil.
func NewChartFeed(capacity int, sink ChartSink) *ChartFeed {
	return &ChartFeed{ring: NewRing[Point](capacity), sink: sink}
}

// Add appends the chart point of r and notifies the sink.
func (c *ChartFeed) Add(r meter.Reading) {
	p := PointOf(r)

	c.mu.Lock()
	old, evicted := c.ring.Push(p)
	sink := c.sink
	c.mu.Unlock()

	if sink == nil {
		return
	}
	if evicted {
		sink.OnPoint(p, &old)
		return
	}
	sink.OnPoint(p, nil)
}

// Points returns the window, oldest first.
func (c *ChartFeed) Points() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ring.Slice()
}

// Clear empties the window.
func (c *ChartFeed) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ring.Clear()
}
