// Package logic contains pure input-interpretation logic for the controller.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Mode selects how button samples become toggles.
type Mode string

const (
	// ModeLevel toggles on every sample that reads High.
	ModeLevel Mode = "level"

	// ModeEdge toggles once per debounced Low to High transition.
	ModeEdge Mode = "edge"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLevel, ModeEdge:
		return Mode(s), nil
	case "":
		return ModeLevel, nil
	}
	return "", fmt.Errorf("logic: unknown button mode %q", s)
}

// Sample is a single reading of the button input.
type Sample struct {
	High bool
	Time time.Time
}

// lineState tracks debounce state for the button line.
type lineState struct {
	// Current stable (debounced) level
	Stable bool
	// Pending level during debounce
	Pending bool
	// Whether a pending level is being observed
	HasPending bool
	// Time when pending level was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}
