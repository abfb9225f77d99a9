package netlog

import "sync"

// RingBuffer is a thread-safe ring buffer keeping the most recent entries.
type RingBuffer[T any] struct {
	buffer     []T
	size       uint64
	capacity   uint64
	writeIndex uint64
	mu         sync.RWMutex
}

// NewRingBuffer creates a new ring buffer with the given capacity
func NewRingBuffer[T any](capacity uint64) *RingBuffer[T] {
	if capacity == 0 {
		panic("capacity must be greater than 0")
	}

	return &RingBuffer[T]{
		buffer:   make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an entry, overwriting the oldest one when full.
func (rb *RingBuffer[T]) Add(record T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.buffer[rb.writeIndex%rb.capacity] = record
	rb.writeIndex++

	if rb.size < rb.capacity {
		rb.size++
	}
}

// Last returns up to n of the most recent entries, oldest first.
func (rb *RingBuffer[T]) Last(n uint64) []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	count := min(n, rb.size)
	result := make([]T, count)

	startIdx := rb.writeIndex - count
	for i := uint64(0); i < count; i++ {
		result[i] = rb.buffer[(startIdx+i)%rb.capacity]
	}

	return result
}

// All returns every entry currently held, oldest first.
func (rb *RingBuffer[T]) All() []T {
	return rb.Last(rb.capacity)
}

// Size returns the current number of entries
func (rb *RingBuffer[T]) Size() uint64 {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// Capacity returns the maximum number of entries
func (rb *RingBuffer[T]) Capacity() uint64 {
	return rb.capacity
}

// Reset drops all entries.
func (rb *RingBuffer[T]) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	clear(rb.buffer)
	rb.size = 0
	rb.writeIndex = 0
}
