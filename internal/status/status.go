// Package status provides a thread-safe status tracker for the pin controller.
// It is written by the application loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"
)

// DiagnosticHistory is how many recent diagnostics a Tracker keeps.
const DiagnosticHistory = 16

// PinInfo describes one registered pin. This is a local copy to avoid
// importing internal/gpio from status.
type PinInfo struct {
	Number    int
	Kind      string
	Direction string
	Value     int
}

// Diagnostic is one message that was published to the error topic.
type Diagnostic struct {
	Time    time.Time
	Message string
}

// Config contains controller configuration for display.
type Config struct {
	Broker               string
	ClientID             string
	MaxReconnectAttempts int
	ButtonMode           string
	HTTPAddr             string
	GPIOChip             string // empty = no hardware mirror
}

// Snapshot is a point-in-time view of controller state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State             string
	ReconnectAttempts int
	MQTTConnected     bool
	LED               bool
	Temperature       int // tenths of a degree Celsius
	HasTemperature    bool
	ButtonPresses     uint64
	Restarts          int
	SessionID         string
	Pins              []PinInfo
	Diagnostics       []Diagnostic
	DroppedDiagnostic bool
	StartTime         time.Time
	Now               time.Time
	Config            Config
}

// Uptime returns the duration since the controller started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable controller state behind an RWMutex.
type Tracker struct {
	mu    sync.RWMutex
	snap  Snapshot
	diags *ringBuffer[Diagnostic]
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     "WaitingToConnect",
			StartTime: startTime,
			Config:    cfg,
		},
		diags: newRingBuffer[Diagnostic](DiagnosticHistory),
	}
}

// Update sets the state machine position and transport liveness.
// Called from the application loop on every tick.
func (t *Tracker) Update(state string, reconnectAttempts int, connected bool) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.ReconnectAttempts = reconnectAttempts
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetLED sets the status LED flag.
func (t *Tracker) SetLED(on bool) {
	t.mu.Lock()
	t.snap.LED = on
	t.mu.Unlock()
}

// SetButtonPresses sets the number of button toggles seen.
func (t *Tracker) SetButtonPresses(n uint64) {
	t.mu.Lock()
	t.snap.ButtonPresses = n
	t.mu.Unlock()
}

// SetTemperature records the last published temperature.
func (t *Tracker) SetTemperature(tenthsCelsius int) {
	t.mu.Lock()
	t.snap.Temperature = tenthsCelsius
	t.snap.HasTemperature = true
	t.mu.Unlock()
}

// SetPins replaces the pin table. The slice is copied.
func (t *Tracker) SetPins(pins []PinInfo) {
	cp := append([]PinInfo(nil), pins...)
	t.mu.Lock()
	t.snap.Pins = cp
	t.mu.Unlock()
}

// RecordRestart counts a restart and stores its session id.
func (t *Tracker) RecordRestart(sessionID string) {
	t.mu.Lock()
	t.snap.Restarts++
	t.snap.SessionID = sessionID
	t.mu.Unlock()
}

// AddDiagnostic appends to the recent diagnostics, dropping the oldest once
// DiagnosticHistory is reached.
func (t *Tracker) AddDiagnostic(at time.Time, msg string) {
	t.mu.Lock()
	t.diags.push(Diagnostic{Time: at, Message: msg})
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the controller state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Pins = append([]PinInfo(nil), t.snap.Pins...)
	s.Diagnostics = t.diags.items()
	s.DroppedDiagnostic = t.diags.overflow
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
