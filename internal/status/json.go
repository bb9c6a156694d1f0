package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string           `json:"state"`
	Ready         bool             `json:"ready"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	MQTT          MQTTStatus       `json:"mqtt"`
	LED           bool             `json:"led"`
	Temperature   *int             `json:"temperature,omitempty"`
	ButtonPresses uint64           `json:"button_presses"`
	Restarts      int              `json:"restarts"`
	SessionID     string           `json:"session_id,omitempty"`
	Pins          []PinJSON        `json:"pins"`
	Diagnostics   []DiagnosticJSON `json:"diagnostics"`
	Config        ConfigJSON       `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected         bool   `json:"connected"`
	Broker            string `json:"broker"`
	ClientID          string `json:"client_id"`
	ReconnectAttempts int    `json:"reconnect_attempts"`
}

// PinJSON is the JSON representation of a registered pin.
type PinJSON struct {
	Pin       int    `json:"pin"`
	Kind      string `json:"kind"`
	Direction string `json:"direction"`
	Value     int    `json:"value"`
}

// DiagnosticJSON is the JSON representation of a recent diagnostic.
type DiagnosticJSON struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// ConfigJSON is the JSON representation of controller config.
type ConfigJSON struct {
	MaxReconnectAttempts int    `json:"max_reconnect_attempts"`
	ButtonMode           string `json:"button_mode"`
	HTTPAddr             string `json:"http_addr"`
	GPIOChip             string `json:"gpio_chip,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := snap.State
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		Ready:         state == "Connected",
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected:         snap.MQTTConnected,
			Broker:            snap.Config.Broker,
			ClientID:          snap.Config.ClientID,
			ReconnectAttempts: snap.ReconnectAttempts,
		},
		LED:           snap.LED,
		ButtonPresses: snap.ButtonPresses,
		Restarts:      snap.Restarts,
		SessionID:     snap.SessionID,
		Pins:          make([]PinJSON, 0, len(snap.Pins)),
		Diagnostics:   make([]DiagnosticJSON, 0, len(snap.Diagnostics)),
		Config: ConfigJSON{
			MaxReconnectAttempts: snap.Config.MaxReconnectAttempts,
			ButtonMode:           snap.Config.ButtonMode,
			HTTPAddr:             snap.Config.HTTPAddr,
			GPIOChip:             snap.Config.GPIOChip,
		},
	}

	if snap.HasTemperature {
		t := snap.Temperature
		inner.Temperature = &t
	}
	for _, p := range snap.Pins {
		inner.Pins = append(inner.Pins, PinJSON{Pin: p.Number, Kind: p.Kind, Direction: p.Direction, Value: p.Value})
	}
	for _, d := range snap.Diagnostics {
		inner.Diagnostics = append(inner.Diagnostics, DiagnosticJSON{
			Timestamp: d.Time.UTC().Format(time.RFC3339),
			Message:   d.Message,
		})
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
