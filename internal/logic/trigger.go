package logic

import "time"

// ButtonTrigger decides when a button sample should toggle the LED.
type ButtonTrigger struct {
	mode     Mode
	debounce time.Duration
	line     lineState
	presses  uint64
}

// NewButtonTrigger creates a trigger. debounce is only used in ModeEdge.
func NewButtonTrigger(mode Mode, debounce time.Duration) *ButtonTrigger {
	if mode == "" {
		mode = ModeLevel
	}
	return &ButtonTrigger{mode: mode, debounce: debounce}
}

// Mode returns the trigger mode.
func (b *ButtonTrigger) Mode() Mode {
	return b.mode
}

// Process takes a new sample and reports whether it should toggle.
//
// In ModeEdge a button held at startup is taken as the baseline and does not
// toggle until it has been released and pressed again.
func (b *ButtonTrigger) Process(s Sample) bool {
	var fire bool
	if b.mode == ModeLevel {
		fire = s.High
	} else {
		fire = b.processEdge(s.High, s.Time)
	}

	if fire {
		b.presses++
	}
	return fire
}

func (b *ButtonTrigger) processEdge(high bool, now time.Time) bool {
	l := &b.line

	if !l.Baselined {
		if !l.HasPending || l.Pending != high {
			l.Pending = high
			l.HasPending = true
			l.PendingSince = now
			return false
		}
		if now.Sub(l.PendingSince) >= b.debounce {
			l.Stable = high
			l.Baselined = true
			l.HasPending = false
		}
		return false
	}

	if high == l.Stable {
		l.HasPending = false
		return false
	}

	if !l.HasPending || l.Pending != high {
		l.Pending = high
		l.HasPending = true
		l.PendingSince = now
		if b.debounce > 0 {
			return false
		}
	}

	if now.Sub(l.PendingSince) >= b.debounce {
		l.Stable = high
		l.HasPending = false
		return high
	}
	return false
}

// Presses returns how many toggles have been reported.
func (b *ButtonTrigger) Presses() uint64 {
	return b.presses
}

// Reset clears debounce state, e.g. after the pins are re-registered.
// The press count is kept.
func (b *ButtonTrigger) Reset() {
	b.line = lineState{}
}
