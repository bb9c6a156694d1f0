//go:build !linux

package gpio

import "errors"

// ChipLines is not available on non-Linux platforms.
type ChipLines struct{}

// NewChipLines returns an error on non-Linux platforms.
func NewChipLines(chipName string, inputs, outputs []int) (*ChipLines, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Value is not implemented on non-Linux platforms.
func (c *ChipLines) Value(offset int) (int, error) {
	return 0, errors.New("gpio: not supported")
}

// SetValue is not implemented on non-Linux platforms.
func (c *ChipLines) SetValue(offset int, value int) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (c *ChipLines) Close() error {
	return nil
}
