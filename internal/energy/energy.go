// Package energy integrates polled power samples into cumulative kWh.
package energy

import (
	"sync"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

// Increment returns the kWh contributed by one sample held for intervalSeconds.
// Unavailable or negative power and non-positive intervals contribute 0.
func Increment(power meter.Value, intervalSeconds int) float64 {
	w, ok := power.Get()
	if !ok || w <= 0 || intervalSeconds <= 0 {
		return 0
	}

	return w * float64(intervalSeconds) / 3600 / 1000
}

// Integrator keeps the running energy total.
//
// The configured poll interval is used as the time step, so gaps from
// retries or offline periods are not accounted for.
type Integrator struct {
	mu    sync.Mutex
	total float64
}

// NewIntegrator returns an Integrator at zero.
func NewIntegrator() *Integrator {
	return &Integrator{}
}

// Apply adds the reading's contribution and returns the new total.
func (i *Integrator) Apply(r meter.Reading, intervalSeconds int) float64 {
	inc := Increment(r.Power, intervalSeconds)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.total += inc
	return i.total
}

// Total returns cumulative energy in kWh.
func (i *Integrator) Total() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.total
}

// Reset sets the total back to zero.
func (i *Integrator) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.total = 0
}
