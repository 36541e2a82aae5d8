package history_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/wattwatch/internal/history"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func reading(i int) meter.Reading {
	return meter.Reading{
		Timestamp: epoch.Add(time.Duration(i) * time.Second),
		Power:     meter.Of(float64(i)),
		Voltage:   meter.Of(230),
	}
}

func TestRing(t *testing.T) {
	r := history.NewRing[int](3)

	for i := 1; i <= 3; i++ {
		_, evicted := r.Push(i)
		assert.False(t, evicted)
	}
	old, evicted := r.Push(4)
	assert.True(t, evicted)
	assert.Equal(t, 1, old)

	assert.Equal(t, []int{2, 3, 4}, r.Slice())
	assert.Equal(t, []int{3, 4}, r.Last(2))
	assert.Equal(t, []int{2, 3, 4}, r.Last(10))
	assert.Empty(t, r.Last(0))
	assert.Equal(t, 3, r.Cap())

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Slice())
}

func TestRingPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { history.NewRing[int](0) })
}

func TestBufferKeepsLastHundredInOrder(t *testing.T) {
	b := history.NewBuffer(history.DefaultCapacity)

	const total = 250
	for i := range total {
		evicted, ok := b.Append(reading(i))
		if i < history.DefaultCapacity {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok)
		assert.Equal(t, reading(i-history.DefaultCapacity), evicted)
		assert.LessOrEqual(t, b.Len(), history.DefaultCapacity)
	}

	all := b.All()
	require.Len(t, all, history.DefaultCapacity)
	for i, r := range all {
		assert.Equal(t, reading(total-history.DefaultCapacity+i), r)
	}

	last := b.Last(10)
	require.Len(t, last, 10)
	assert.Equal(t, reading(total-1), last[9])
}

func TestBufferAllIsACopy(t *testing.T) {
	b := history.NewBuffer(5)
	b.Append(reading(1))

	all := b.All()
	all[0] = reading(99)

	assert.Equal(t, reading(1), b.All()[0])
}

func TestBufferClear(t *testing.T) {
	b := history.NewBuffer(5)
	b.Append(reading(1))
	b.Clear()

	assert.Zero(t, b.Len())
	assert.Empty(t, b.All())
}

type recordingSink struct {
	added   []history.Point
	evicted []*history.Point
}

func (s *recordingSink) OnPoint(added history.Point, evicted *history.Point) {
	s.added = append(s.added, added)
	s.evicted = append(s.evicted, evicted)
}

func TestChartFeed(t *testing.T) {
	sink := &recordingSink{}
	feed := history.NewChartFeed(history.DefaultChartPoints, sink)

	for i := range history.DefaultChartPoints + 2 {
		feed.Add(reading(i))
	}

	points := feed.Points()
	require.Len(t, points, history.DefaultChartPoints)
	assert.Equal(t, history.PointOf(reading(2)), points[0])

	require.Len(t, sink.evicted, history.DefaultChartPoints+2)
	assert.Nil(t, sink.evicted[history.DefaultChartPoints-1])
	require.NotNil(t, sink.evicted[history.DefaultChartPoints])
	assert.Equal(t, history.PointOf(reading(0)), *sink.evicted[history.DefaultChartPoints])

	feed.Clear()
	assert.Empty(t, feed.Points())
}
