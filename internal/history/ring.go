// Package history keeps the bounded in-memory reading history.
package history

// Ring is a fixed-capacity FIFO. Pushing to a full ring evicts the oldest item.
// It is not safe for concurrent use.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

// NewRing returns an empty ring. capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("history: ring capacity must be positive")
	}

	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v, returning the evicted item if the ring was full.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.size == len(r.items) {
		evicted, ok = r.items[r.head], true
		r.items[r.head] = v
		r.head = (r.head + 1) % len(r.items)
		return evicted, ok
	}

	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++
	return evicted, false
}

// Len returns the number of items.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// Last returns up to n newest items, oldest first.
func (r *Ring[T]) Last(n int) []T {
	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return []T{}
	}

	out := make([]T, n)
	start := r.size - n
	for i := range n {
		out[i] = r.items[(r.head+start+i)%len(r.items)]
	}

	return out
}

// Slice returns all items, oldest first.
func (r *Ring[T]) Slice() []T {
	return r.Last(r.size)
}

// Clear empties the ring.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head, r.size = 0, 0
}
