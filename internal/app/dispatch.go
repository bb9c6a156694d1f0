package app

import (
	"fmt"

	"github.com/sweeney/pin-controller/internal/command"
	"github.com/sweeney/pin-controller/internal/mqtt"
)

// processMessage handles one inbound message. Failures are published to
// the error topic and never stop the loop.
func (a *Application) processMessage(msg mqtt.Message) {
	a.log.WithField("topic", msg.Topic).Infof("message received: %s", msg.Payload)

	cmd, err := command.Parse(msg.Topic, msg.Payload)
	if err != nil {
		a.publishError(err.Error())
		return
	}

	switch cmd.Kind {
	case command.KindRestart:
		a.log.Info("received restart command")
		a.RequestRestart()

	case command.KindSetRGB:
		a.setRGB(cmd.RGB)
	}
}

// setRGB writes red, green then blue. A failed write stops the sequence;
// writes already applied stay applied.
func (a *Application) setRGB(rgb command.RGB) {
	a.log.Infof("set rgb: R=%d G=%d B=%d", rgb.Red, rgb.Green, rgb.Blue)

	writes := []struct {
		pin   int
		value uint8
	}{
		{a.pins.Red, rgb.Red},
		{a.pins.Green, rgb.Green},
		{a.pins.Blue, rgb.Blue},
	}
	for _, w := range writes {
		if err := a.gpio.WriteAnalogPin(w.pin, w.value); err != nil {
			a.publishError(fmt.Sprintf("GPIO error: %v", err))
			return
		}
	}
}

func (a *Application) publishError(msg string) {
	a.log.Warn(msg)
	a.publish(mqtt.TopicErrors, []byte(msg))
	if a.tracker != nil {
		a.tracker.AddDiagnostic(a.now(), msg)
	}
}
