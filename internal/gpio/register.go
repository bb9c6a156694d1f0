package gpio

import (
	"fmt"
	"sort"
	"sync"
)

type pinState struct {
	kind      Kind
	direction Direction
	value     uint8
}

// Register is an in-memory pin table. It is safe for concurrent use.
//
// Write callbacks run on the writer's goroutine after the register lock has
// been released, so a callback may call back into the Register.
type Register struct {
	mu        sync.Mutex
	pins      map[int]*pinState
	onDigital WriteDigitalFunc
	onAnalog  WriteAnalogFunc
}

var _ Manager = (*Register)(nil)

// NewRegister creates an empty Register.
func NewRegister() *Register {
	return &Register{pins: make(map[int]*pinState)}
}

// RegisterPin adds a pin with value 0.
func (r *Register) RegisterPin(cfg PinConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pins[cfg.Number]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyRegistered, cfg.Number)
	}
	r.pins[cfg.Number] = &pinState{kind: cfg.Kind, direction: cfg.Direction}
	return nil
}

// UnregisterPin removes a pin and discards its value.
func (r *Register) UnregisterPin(pin int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pins[pin]; !ok {
		return fmt.Errorf("%w: %d", ErrNotRegistered, pin)
	}
	delete(r.pins, pin)
	return nil
}

// WriteDigitalPin sets a digital output and notifies the digital callback.
func (r *Register) WriteDigitalPin(pin int, value DigitalValue) error {
	level := uint8(Low)
	if value != Low {
		level = uint8(High)
	}

	r.mu.Lock()
	if err := r.checkLocked(pin, Digital, Output); err != nil {
		r.mu.Unlock()
		return err
	}
	r.pins[pin].value = level
	cb := r.onDigital
	r.mu.Unlock()

	if cb != nil {
		cb(pin, DigitalValue(level))
	}
	return nil
}

// WriteAnalogPin sets an analog output and notifies the analog callback.
func (r *Register) WriteAnalogPin(pin int, value uint8) error {
	r.mu.Lock()
	if err := r.checkLocked(pin, Analog, Output); err != nil {
		r.mu.Unlock()
		return err
	}
	r.pins[pin].value = value
	cb := r.onAnalog
	r.mu.Unlock()

	if cb != nil {
		cb(pin, value)
	}
	return nil
}

// ReadDigitalPin returns the level of a digital pin of either direction.
func (r *Register) ReadDigitalPin(pin int) (DigitalValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.lookupLocked(pin, Digital)
	if err != nil {
		return Low, err
	}
	if st.value == 0 {
		return Low, nil
	}
	return High, nil
}

// ReadAnalogPin returns the value of an analog pin of either direction.
func (r *Register) ReadAnalogPin(pin int) (uint8, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.lookupLocked(pin, Analog)
	if err != nil {
		return 0, err
	}
	return st.value, nil
}

// InjectAnalogValue sets an analog input pin without notifying.
func (r *Register) InjectAnalogValue(pin int, value uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(pin, Analog, Input); err != nil {
		return err
	}
	r.pins[pin].value = value
	return nil
}

// InjectDigitalValue sets a digital input pin without notifying.
func (r *Register) InjectDigitalValue(pin int, value DigitalValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(pin, Digital, Input); err != nil {
		return err
	}
	if value != Low {
		r.pins[pin].value = uint8(High)
	} else {
		r.pins[pin].value = uint8(Low)
	}
	return nil
}

// SetWriteDigitalCallback replaces the digital write handler.
func (r *Register) SetWriteDigitalCallback(cb WriteDigitalFunc) {
	r.mu.Lock()
	r.onDigital = cb
	r.mu.Unlock()
}

// SetWriteAnalogCallback replaces the analog write handler.
func (r *Register) SetWriteAnalogCallback(cb WriteAnalogFunc) {
	r.mu.Lock()
	r.onAnalog = cb
	r.mu.Unlock()
}

// Pins returns all registered pins ordered by number.
func (r *Register) Pins() []PinInfo {
	r.mu.Lock()
	out := make([]PinInfo, 0, len(r.pins))
	for n, st := range r.pins {
		out = append(out, PinInfo{Number: n, Kind: st.kind, Direction: st.direction, Value: st.value})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *Register) lookupLocked(pin int, kind Kind) (*pinState, error) {
	st, ok := r.pins[pin]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotRegistered, pin)
	}
	if st.kind != kind {
		return nil, fmt.Errorf("%w: pin %d is %s, not %s", ErrKindMismatch, pin, st.kind, kind)
	}
	return st, nil
}

// checkLocked validates registration, then direction, then kind.
func (r *Register) checkLocked(pin int, kind Kind, dir Direction) error {
	st, ok := r.pins[pin]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotRegistered, pin)
	}
	if st.direction != dir {
		return fmt.Errorf("%w: pin %d is %s, not %s", ErrDirectionMismatch, pin, st.direction, dir)
	}
	if st.kind != kind {
		return fmt.Errorf("%w: pin %d is %s, not %s", ErrKindMismatch, pin, st.kind, kind)
	}
	return nil
}
