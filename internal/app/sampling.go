package app

import (
	"time"

	"github.com/sweeney/pin-controller/internal/gpio"
	"github.com/sweeney/pin-controller/internal/logic"
	"github.com/sweeney/pin-controller/internal/mqtt"
	"github.com/sweeney/pin-controller/internal/sensor"
)

// processButton toggles the LED when the button trigger fires.
func (a *Application) processButton(now time.Time) {
	a.sampleButtonLine()

	value, err := a.gpio.ReadDigitalPin(a.pins.Button)
	if err != nil {
		a.log.Warnf("read button: %v", err)
		return
	}

	if !a.button.Process(logic.Sample{High: value == gpio.High, Time: now}) {
		return
	}

	a.led = !a.led
	level := gpio.Low
	if a.led {
		level = gpio.High
	}
	if err := a.gpio.WriteDigitalPin(a.pins.LED, level); err != nil {
		a.log.Warnf("write led: %v", err)
	}
}

// processTemperature publishes one reading per TemperatureInterval. The
// reading goes through the analog input pin so the published value is
// what the register holds. The first call only opens the window.
func (a *Application) processTemperature(now time.Time) {
	if !a.sampling {
		a.sampling = true
		a.lastTemperature = now
		return
	}
	if now.Sub(a.lastTemperature) < TemperatureInterval {
		return
	}
	a.lastTemperature = now

	reading := a.sensor.TemperatureTenthCelsius()
	if err := a.gpio.InjectAnalogValue(a.pins.Temperature, sensor.ToAnalog(reading)); err != nil {
		a.log.Warnf("inject temperature: %v", err)
		return
	}

	raw, err := a.gpio.ReadAnalogPin(a.pins.Temperature)
	if err != nil {
		a.log.Warnf("read temperature: %v", err)
		return
	}

	temperature := sensor.FromAnalog(raw)
	a.publish(mqtt.TopicTemperature, mqtt.FormatTemperature(temperature))
	if a.tracker != nil {
		a.tracker.SetTemperature(temperature)
	}
	a.log.WithField("sensor", reading).Infof("published temperature %d", temperature)
}
