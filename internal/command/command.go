// Package command parses control messages received on the control topic.
// It has no I/O: the caller publishes the error text of any failure.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sweeney/pin-controller/internal/mqtt"
)

// Kind names a supported command.
type Kind string

const (
	KindRestart Kind = "restart"
	KindSetRGB  Kind = "set_rgb"
)

// Channel bounds for set_rgb.
const (
	colorMin = 0
	colorMax = 255
)

// Command is a validated control command.
type Command struct {
	Kind Kind
	RGB  RGB // set only for KindSetRGB
}

// RGB is the colour requested by set_rgb.
type RGB struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Error classes. Use errors.Is to test which one a Parse error belongs to.
var (
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrValidation         = errors.New("validation failed")
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// Error carries the diagnostic text published for a rejected message.
type Error struct {
	Class error
	Msg   string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Class }

func newError(class error, format string, args ...any) *Error {
	return &Error{Class: class, Msg: fmt.Sprintf(format, args...)}
}

// Parse decodes payload received on topic into a Command.
func Parse(topic string, payload []byte) (Command, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Command{}, newError(ErrMalformedPayload, "Invalid JSON format: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Command{}, newError(ErrMalformedPayload, "Invalid JSON format: trailing data after value")
	}

	obj, _ := doc.(map[string]any)
	name, ok := obj["command"].(string)
	if !ok {
		return Command{}, newError(ErrMalformedPayload, "Missing or invalid 'command' field")
	}

	if topic == mqtt.TopicControl {
		switch Kind(name) {
		case KindRestart:
			return Command{Kind: KindRestart}, nil
		case KindSetRGB:
			rgb, err := parseRGB(obj)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: KindSetRGB, RGB: rgb}, nil
		}
	}

	return Command{}, newError(ErrUnsupportedCommand, "Unsupported command or topic: %s", name)
}

func parseRGB(obj map[string]any) (RGB, error) {
	var vals [3]int64
	for i, field := range []string{"red", "green", "blue"} {
		n, ok := integerField(obj, field)
		if !ok {
			return RGB{}, newError(ErrValidation, "Missing or invalid 'red', 'green', or 'blue' fields")
		}
		vals[i] = n
	}

	for _, v := range vals {
		if v < colorMin || v > colorMax {
			return RGB{}, newError(ErrValidation, "RGB values must be in range [%d, %d]", colorMin, colorMax)
		}
	}

	return RGB{Red: uint8(vals[0]), Green: uint8(vals[1]), Blue: uint8(vals[2])}, nil
}

// integerField reports the value of an integer literal field; 1.0 is not an integer.
func integerField(obj map[string]any, field string) (int64, bool) {
	num, ok := obj[field].(json.Number)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
