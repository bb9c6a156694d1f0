package app

import (
	"errors"
	"fmt"

	"github.com/sweeney/pin-controller/internal/gpio"
	"github.com/sweeney/pin-controller/internal/mqtt"
)

// setupPins registers the six pins of the layout with zero values.
func (a *Application) setupPins() error {
	var errs []error
	for _, cfg := range a.pins.layout() {
		if err := a.gpio.RegisterPin(cfg); err != nil {
			errs = append(errs, fmt.Errorf("register pin %d: %w", cfg.Number, err))
		}
	}
	return errors.Join(errs...)
}

// removePins unregisters the layout. Pins that are already gone are skipped.
func (a *Application) removePins() {
	for _, cfg := range a.pins.layout() {
		if err := a.gpio.UnregisterPin(cfg.Number); err != nil {
			a.log.Warnf("unregister pin %d: %v", cfg.Number, err)
		}
	}
}

func (a *Application) attachPinHandlers() {
	a.gpio.SetWriteDigitalCallback(a.onDigitalWrite)
	a.gpio.SetWriteAnalogCallback(a.onAnalogWrite)
}

func (a *Application) detachPinHandlers() {
	a.gpio.SetWriteDigitalCallback(nil)
	a.gpio.SetWriteAnalogCallback(nil)
}

func (a *Application) onDigitalWrite(pin int, value gpio.DigitalValue) {
	a.log.Infof("digital pin %d changed to %s", pin, value)

	if pin == a.pins.LED {
		a.mirrorLED(value)
	}
	a.publish(mqtt.TopicPinState, mqtt.FormatPinState(pin, int(value)))
}

func (a *Application) onAnalogWrite(pin int, value uint8) {
	a.log.Infof("analog pin %d set to %d", pin, value)
	a.publish(mqtt.TopicPinState, mqtt.FormatPinState(pin, int(value)))
}

// mirrorLED drives the hardware LED line when a mirror is configured.
func (a *Application) mirrorLED(value gpio.DigitalValue) {
	if a.lines == nil {
		return
	}
	if err := a.lines.SetValue(a.pins.LED, int(value)); err != nil {
		a.log.Warnf("drive led line %d: %v", a.pins.LED, err)
	}
}

// sampleButtonLine copies the hardware button level into the register.
func (a *Application) sampleButtonLine() {
	if a.lines == nil {
		return
	}

	level, err := a.lines.Value(a.pins.Button)
	if err != nil {
		a.log.Warnf("read button line %d: %v", a.pins.Button, err)
		return
	}

	value := gpio.Low
	if level != 0 {
		value = gpio.High
	}
	if err := a.gpio.InjectDigitalValue(a.pins.Button, value); err != nil {
		a.log.Warnf("inject button value: %v", err)
	}
}

func (a *Application) publish(topic string, payload []byte) {
	a.log.WithField("topic", topic).Debugf("publishing %s", payload)
	if err := a.client.Publish(topic, payload); err != nil {
		a.log.WithField("topic", topic).Warnf("publish: %v", err)
	}
}
