package status

// ringBuffer is a fixed-capacity FIFO that keeps the newest items.
// Not safe for concurrent use; the caller synchronizes.
type ringBuffer[T any] struct {
	buf      []T
	capacity int
	head     int // next write position
	count    int
	overflow bool // true once any item has been dropped
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer[T]) push(item T) {
	if r.count == r.capacity {
		r.overflow = true
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = item
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// items returns the contents oldest first without removing them.
func (r *ringBuffer[T]) items() []T {
	if r.count == 0 {
		return nil
	}

	result := make([]T, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}
	return result
}

func (r *ringBuffer[T]) len() int {
	return r.count
}
