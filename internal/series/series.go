package series

import "fmt"

// Bounded is a fixed-capacity append-only sequence with FIFO eviction.
// When a full series receives a new element, the oldest element is evicted
// before the newest is appended, so Len() never exceeds Cap().
//
// Bounded is not internally synchronized: it is designed for a single
// owning writer (the engine serializes all mutation behind its own lock).
type Bounded[T any] struct {
	data []T
	cap  int
}

// New creates an empty series with the given capacity.
// A zero or negative capacity is a configuration error.
func New[T any](capacity int) (*Bounded[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("series: capacity must be positive, got %d", capacity)
	}
	return &Bounded[T]{
		data: make([]T, 0, capacity),
		cap:  capacity,
	}, nil
}

// Append adds v at the back, evicting the front element first if the
// series is full.
func (b *Bounded[T]) Append(v T) {
	if len(b.data) >= b.cap {
		copy(b.data, b.data[1:])
		b.data = b.data[:len(b.data)-1]
	}
	b.data = append(b.data, v)
}

// Latest returns the most recently appended element, or false if the
// series is empty.
func (b *Bounded[T]) Latest() (T, bool) {
	if len(b.data) == 0 {
		var zero T
		return zero, false
	}
	return b.data[len(b.data)-1], true
}

// All returns a copy of the retained elements, oldest first.
func (b *Bounded[T]) All() []T {
	out := make([]T, len(b.data))
	copy(out, b.data)
	return out
}

// Len returns the number of retained elements.
func (b *Bounded[T]) Len() int { return len(b.data) }

// Cap returns the configured capacity.
func (b *Bounded[T]) Cap() int { return b.cap }

// Clear removes all retained elements. Capacity is unchanged.
func (b *Bounded[T]) Clear() {
	b.data = b.data[:0]
}
