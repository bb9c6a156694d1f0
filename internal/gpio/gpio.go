// Package gpio models the device's pins as an in-memory register and
// optionally mirrors selected lines onto real hardware.
// The Register is the simulation; Lines abstracts the physical side with a
// Linux character-device implementation and a fake for tests.
package gpio

import (
	"errors"
	"fmt"
)

// Kind is whether a pin carries a boolean or an 8-bit value.
type Kind int

const (
	Digital Kind = iota
	Analog
)

func (k Kind) String() string {
	switch k {
	case Digital:
		return "digital"
	case Analog:
		return "analog"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Direction is whether a pin is driven by the device (Output) or sampled (Input).
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// DigitalValue is the level of a digital pin.
type DigitalValue uint8

const (
	Low  DigitalValue = 0
	High DigitalValue = 1
)

func (v DigitalValue) String() string {
	if v == High {
		return "HIGH"
	}
	return "LOW"
}

// PinConfig describes a pin to register.
type PinConfig struct {
	Number    int
	Kind      Kind
	Direction Direction
}

// PinInfo is a point-in-time view of a registered pin.
type PinInfo struct {
	Number    int
	Kind      Kind
	Direction Direction
	Value     uint8
}

// Register errors. Returned errors wrap these and name the pin.
var (
	ErrAlreadyRegistered = errors.New("gpio: pin already registered")
	ErrNotRegistered     = errors.New("gpio: pin not registered")
	ErrDirectionMismatch = errors.New("gpio: pin direction mismatch")
	ErrKindMismatch      = errors.New("gpio: pin kind mismatch")
)

// WriteDigitalFunc is notified after a digital output write.
type WriteDigitalFunc func(pin int, value DigitalValue)

// WriteAnalogFunc is notified after an analog output write.
type WriteAnalogFunc func(pin int, value uint8)

// Manager is the pin register as seen by the application.
type Manager interface {
	RegisterPin(cfg PinConfig) error
	UnregisterPin(pin int) error

	WriteDigitalPin(pin int, value DigitalValue) error
	WriteAnalogPin(pin int, value uint8) error
	ReadDigitalPin(pin int) (DigitalValue, error)
	ReadAnalogPin(pin int) (uint8, error)

	// InjectAnalogValue sets an analog input directly. It is not a write
	// and does not notify.
	InjectAnalogValue(pin int, value uint8) error
	// InjectDigitalValue sets a digital input directly. It does not notify.
	InjectDigitalValue(pin int, value DigitalValue) error

	// SetWriteDigitalCallback replaces the digital write handler; nil disables it.
	SetWriteDigitalCallback(cb WriteDigitalFunc)
	// SetWriteAnalogCallback replaces the analog write handler; nil disables it.
	SetWriteAnalogCallback(cb WriteAnalogFunc)

	Pins() []PinInfo
}

// Lines reads and drives physical GPIO lines by offset.
type Lines interface {
	// Value returns the raw level (0 or 1) of an input line.
	Value(offset int) (int, error)

	// SetValue drives an output line to 0 or 1.
	SetValue(offset int, value int) error

	// Close releases GPIO resources.
	Close() error
}
