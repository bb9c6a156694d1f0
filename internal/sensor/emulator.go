package sensor

import "math/rand/v2"

// Emulator returns uniformly distributed readings in a fixed range.
type Emulator struct {
	lo, hi int
	rng    *rand.Rand
}

var _ TemperatureSensor = (*Emulator)(nil)

// NewEmulator creates an emulator over the default temperature bounds.
func NewEmulator() *Emulator {
	return NewEmulatorRange(MinTenthCelsius, MaxTenthCelsius, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewEmulatorRange creates an emulator over [lo, hi] using rng. Bounds
// given in the wrong order are swapped.
func NewEmulatorRange(lo, hi int, rng *rand.Rand) *Emulator {
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Emulator{lo: lo, hi: hi, rng: rng}
}

func (e *Emulator) TemperatureTenthCelsius() int {
	return e.lo + e.rng.IntN(e.hi-e.lo+1)
}
