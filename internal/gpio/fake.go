package gpio

import (
	"fmt"
	"sync"
)

// FakeLines is a test double for Lines that keeps levels in memory.
type FakeLines struct {
	mu sync.Mutex

	// Levels holds the current level per offset. Tests set input levels here.
	Levels map[int]int

	// Sets records every SetValue call in order.
	Sets []LineSet

	// ReadError, if set, is returned by Value.
	ReadError error

	// WriteError, if set, is returned by SetValue.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// LineSet is one recorded SetValue call.
type LineSet struct {
	Offset int
	Value  int
}

// NewFakeLines creates a FakeLines with all levels at 0.
func NewFakeLines() *FakeLines {
	return &FakeLines{Levels: make(map[int]int)}
}

// Value returns the scripted level for offset.
func (f *FakeLines) Value(offset int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.Levels[offset], nil
}

// SetValue records the write and updates the level.
func (f *FakeLines) SetValue(offset int, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WriteError != nil {
		return f.WriteError
	}
	if value != 0 && value != 1 {
		return fmt.Errorf("invalid level %d", value)
	}
	f.Levels[offset] = value
	f.Sets = append(f.Sets, LineSet{Offset: offset, Value: value})
	return nil
}

// SetLevel sets an input level as seen by Value.
func (f *FakeLines) SetLevel(offset, value int) {
	f.mu.Lock()
	f.Levels[offset] = value
	f.mu.Unlock()
}

// Close marks the lines as closed.
func (f *FakeLines) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Writes returns a copy of the recorded SetValue calls.
func (f *FakeLines) Writes() []LineSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]LineSet, len(f.Sets))
	copy(out, f.Sets)
	return out
}
