package meter_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/wattwatch/internal/meter"
	"github.com/stretchr/testify/assert"
)

func TestValueAvailability(t *testing.T) {
	v := meter.Of(230.456)
	got, ok := v.Get()
	assert.True(t, ok)
	assert.InDelta(t, 230.456, got, 1e-9)
	assert.Equal(t, "230.46", v.Format(2))

	assert.False(t, meter.Of(math.NaN()).Available())
	assert.False(t, meter.Of(math.Inf(1)).Available())
}

func TestUnavailableIsZeroForArithmetic(t *testing.T) {
	var zero meter.Value
	assert.False(t, zero.Available())
	assert.Zero(t, zero.Float())
	assert.Equal(t, "N/A", meter.Unavailable().Format(3))
}

func TestZeroMeasurementIsDistinctFromUnavailable(t *testing.T) {
	v := meter.Of(0)
	assert.True(t, v.Available())
	assert.Equal(t, "0.0", v.Format(1))
}

func TestReadingValue(t *testing.T) {
	r := meter.Reading{
		Voltage:     meter.Of(230),
		Current:     meter.Of(5),
		Power:       meter.Of(1150),
		Frequency:   meter.Of(50),
		PowerFactor: meter.Of(0.95),
	}

	assert.InDelta(t, 1150, r.Value(meter.Power).Float(), 1e-9)
	assert.InDelta(t, 0.95, r.Value(meter.PowerFactor).Float(), 1e-9)
	assert.False(t, r.Value(meter.Metric("energy")).Available())
	assert.Len(t, meter.Metrics(), 5)
	assert.Equal(t, "Hz", meter.Frequency.Unit())
	assert.Equal(t, 3, meter.Current.Decimals())
}
