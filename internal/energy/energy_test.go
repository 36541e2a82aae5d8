package energy_test

import (
	"testing"

	"codeberg.org/mutker/wattwatch/internal/energy"
	"codeberg.org/mutker/wattwatch/internal/meter"
	"github.com/stretchr/testify/assert"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		name     string
		power    meter.Value
		interval int
		want     float64
	}{
		{"one kW for an hour", meter.Of(1000), 3600, 1},
		{"known sample", meter.Of(287.9), 30, 287.9 * 30 / 3600 / 1000},
		{"unavailable", meter.Unavailable(), 30, 0},
		{"negative", meter.Of(-50), 30, 0},
		{"zero interval", meter.Of(100), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, energy.Increment(tt.power, tt.interval), 1e-12)
		})
	}
}

func TestIntegratorIsNonDecreasing(t *testing.T) {
	i := energy.NewIntegrator()
	powers := []meter.Value{
		meter.Of(120), meter.Of(0), meter.Unavailable(), meter.Of(3500.5), meter.Of(-10), meter.Of(1),
	}

	prev := i.Total()
	for _, p := range powers {
		total := i.Apply(meter.Reading{Power: p}, 5)
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}

	want := (120 + 3500.5 + 1) * 5.0 / 3600 / 1000
	assert.InDelta(t, want, i.Total(), 1e-12)
}

func TestIntegratorReset(t *testing.T) {
	i := energy.NewIntegrator()
	i.Apply(meter.Reading{Power: meter.Of(1000)}, 3600)
	assert.InDelta(t, 1.0, i.Total(), 1e-12)

	i.Reset()
	assert.Zero(t, i.Total())
}
