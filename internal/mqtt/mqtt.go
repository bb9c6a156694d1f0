// Package mqtt provides the broker transport with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
)

// Topics used by the controller.
const (
	// TopicControl receives restart and set_rgb commands.
	TopicControl = "embedded/control"

	// TopicPinState carries {"pin":N,"value":V} for every output write.
	TopicPinState = "embedded/pins/state"

	// TopicTemperature carries {"temperature":N} in tenths of a degree Celsius.
	TopicTemperature = "embedded/sensors/temperature"

	// TopicErrors carries free-text diagnostics.
	TopicErrors = "embedded/errors"
)

// Transport errors.
var (
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe failed")
	ErrNotConnected     = errors.New("mqtt: not connected")
	ErrInvalidTopic     = errors.New("mqtt: topic cannot be empty")
)

// Message is one (topic, payload) pair moving through the transport.
type Message struct {
	Topic   string
	Payload []byte
}

// MessageHandler receives inbound messages. It may be called from a
// goroutine other than the one that registered it.
type MessageHandler func(topic string, payload []byte)

// Client is the broker transport used by the application.
type Client interface {
	// Connect opens the connection. Failures wrap ErrConnectionFailed.
	Connect() error

	// Disconnect closes the connection and returns once the transport's
	// I/O goroutine has stopped. It is safe to call repeatedly and does not
	// fire the disconnect handler.
	Disconnect()

	// IsConnected is a best-effort liveness probe.
	IsConnected() bool

	// Subscribe registers interest in topic; messages go to the message handler.
	Subscribe(topic string) error

	// Publish queues payload for delivery and returns without waiting for it.
	Publish(topic string, payload []byte) error

	SetMessageHandler(h MessageHandler)

	// SetConnectHandler is fired once per successful connect.
	SetConnectHandler(h func())

	// SetDisconnectHandler is fired when the connection is lost, with the cause.
	SetDisconnectHandler(h func(reason error))
}

// PinStatePayload is the body published on TopicPinState.
type PinStatePayload struct {
	Pin   int `json:"pin"`
	Value int `json:"value"`
}

// TemperaturePayload is the body published on TopicTemperature.
type TemperaturePayload struct {
	Temperature int `json:"temperature"`
}

// FormatPinState creates the JSON payload for a pin write.
func FormatPinState(pin, value int) []byte {
	data, _ := json.Marshal(PinStatePayload{Pin: pin, Value: value})
	return data
}

// FormatTemperature creates the JSON payload for a temperature sample.
func FormatTemperature(tenthsCelsius int) []byte {
	data, _ := json.Marshal(TemperaturePayload{Temperature: tenthsCelsius})
	return data
}
