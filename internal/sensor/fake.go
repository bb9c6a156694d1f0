package sensor

import "sync"

// FakeSensor returns scripted readings for testing.
type FakeSensor struct {
	mu sync.Mutex

	// Readings are returned in order; the last one repeats once exhausted.
	Readings []int

	calls int
}

var _ TemperatureSensor = (*FakeSensor)(nil)

// NewFakeSensor creates a FakeSensor returning readings in order.
func NewFakeSensor(readings ...int) *FakeSensor {
	return &FakeSensor{Readings: readings}
}

func (f *FakeSensor) TemperatureTenthCelsius() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.Readings) == 0 {
		return MinTenthCelsius
	}
	v := f.Readings[0]
	if len(f.Readings) > 1 {
		f.Readings = f.Readings[1:]
	}
	return v
}

// Calls returns how many readings have been taken.
func (f *FakeSensor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
