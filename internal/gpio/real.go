//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// ChipLines drives real lines through the Linux GPIO character device.
type ChipLines struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewChipLines opens chip and requests the given offsets. Inputs are
// requested with pull-down, outputs start low.
func NewChipLines(chipName string, inputs, outputs []int) (*ChipLines, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	c := &ChipLines{chip: chip, lines: make(map[int]*gpiocdev.Line)}

	for _, offset := range inputs {
		line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("request input line %d: %w", offset, err)
		}
		c.lines[offset] = line
	}
	for _, offset := range outputs {
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("request output line %d: %w", offset, err)
		}
		c.lines[offset] = line
	}

	return c, nil
}

// Value returns the raw level of a requested line.
func (c *ChipLines) Value(offset int) (int, error) {
	line, ok := c.lines[offset]
	if !ok {
		return 0, fmt.Errorf("line %d not requested", offset)
	}
	v, err := line.Value()
	if err != nil {
		return 0, fmt.Errorf("read line %d: %w", offset, err)
	}
	return v, nil
}

// SetValue drives a requested output line.
func (c *ChipLines) SetValue(offset int, value int) error {
	line, ok := c.lines[offset]
	if !ok {
		return fmt.Errorf("line %d not requested", offset)
	}
	if err := line.SetValue(value); err != nil {
		return fmt.Errorf("set line %d: %w", offset, err)
	}
	return nil
}

// Close returns every line to input with pull-down, matching the Pi boot
// defaults, then releases the lines and the chip.
func (c *ChipLines) Close() error {
	var errs []error

	for offset, line := range c.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", offset, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", offset, err))
		}
	}
	c.lines = nil

	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		c.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
