package history

import (
	"sync"

	"codeberg.org/mutker/wattwatch/internal/meter"
)

// DefaultCapacity is the number of readings kept for reports.
const DefaultCapacity = 100

// Buffer is the session's reading history, oldest first.
type Buffer struct {
	mu   sync.RWMutex
	ring *Ring[meter.Reading]
}

// NewBuffer returns a Buffer holding at most capacity readings.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{ring: NewRing[meter.Reading](capacity)}
}

// Append adds r at the tail, returning the evicted head when full.
func (b *Buffer) Append(r meter.Reading) (meter.Reading, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Push(r)
}

// All returns a copy of the history, oldest first.
func (b *Buffer) All() []meter.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ring.Slice()
}

// Last returns up to n newest readings, oldest first.
func (b *Buffer) Last(n int) []meter.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ring.Last(n)
}

// Len returns the number of stored readings.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ring.Len()
}

// Clear drops all readings.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring.Clear()
}
