// Package queue provides an unbounded FIFO used to hand values from one
// goroutine to another, e.g. from an MQTT callback to the control loop.
package queue

import (
	"sync"
	"time"
)

// Queue is a concurrency-safe FIFO with a timed Pop.
// Depth is unbounded: a producer that outpaces its consumer grows memory.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T

	// ready carries at most one pending wake-up for a blocked Pop.
	ready chan struct{}
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push appends item and wakes one waiting Pop.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.signal()
}

// Requeue puts item back at the head, ahead of everything already queued.
// It is for a consumer returning an item it popped but could not handle.
func (q *Queue[T]) Requeue(item T) {
	q.mu.Lock()
	q.items = append([]T{item}, q.items...)
	q.mu.Unlock()
	q.signal()
}

// Pop removes and returns the oldest item. It blocks for up to timeout
// waiting for one to arrive and reports false if none did.
// A timeout <= 0 polls without blocking.
func (q *Queue[T]) Pop(timeout time.Duration) (T, bool) {
	if item, ok := q.tryPop(); ok {
		return item, true
	}
	if timeout <= 0 {
		var zero T
		return zero, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.ready:
			if item, ok := q.tryPop(); ok {
				return item, true
			}
		case <-timer.C:
			return q.tryPop()
		}
	}
}

// Size returns the number of queued items at the moment of the call.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue held no items at the moment of the call.
func (q *Queue[T]) Empty() bool {
	return q.Size() == 0
}

func (q *Queue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]

	// Pass the wake-up on so a second waiter sees the remaining items.
	if len(q.items) > 0 {
		q.signal()
	}
	return item, true
}

func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
