// Package app is the controller's orchestration engine. It owns the
// connect and reconnect policy, wires the pin register to the transport,
// dispatches inbound commands and samples the button and temperature inputs.
//
// All pin, LED and sampling state belongs to the control loop goroutine.
// Transport callbacks only touch the state machine fields under mu or push
// onto the inbound queue; no code path holds mu while calling into the
// register, the transport or the queue.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/pin-controller/internal/gpio"
	"github.com/sweeney/pin-controller/internal/logger"
	"github.com/sweeney/pin-controller/internal/logic"
	"github.com/sweeney/pin-controller/internal/mqtt"
	"github.com/sweeney/pin-controller/internal/queue"
	"github.com/sweeney/pin-controller/internal/sensor"
	"github.com/sweeney/pin-controller/internal/status"
)

// Timing of the state machine.
const (
	ReconnectInterval   = 2 * time.Second
	RestartCooldown     = 3 * time.Second
	TemperatureInterval = 5 * time.Second
	DefaultLoopInterval = 10 * time.Millisecond
)

// Pins is the fixed pin layout.
type Pins struct {
	Red         int
	Green       int
	Blue        int
	Temperature int
	Button      int
	LED         int
}

// layout lists the six pins in registration order.
func (p Pins) layout() []gpio.PinConfig {
	return []gpio.PinConfig{
		{Number: p.Red, Kind: gpio.Analog, Direction: gpio.Output},
		{Number: p.Green, Kind: gpio.Analog, Direction: gpio.Output},
		{Number: p.Blue, Kind: gpio.Analog, Direction: gpio.Output},
		{Number: p.Temperature, Kind: gpio.Analog, Direction: gpio.Input},
		{Number: p.Button, Kind: gpio.Digital, Direction: gpio.Input},
		{Number: p.LED, Kind: gpio.Digital, Direction: gpio.Output},
	}
}

// Options configures an Application. Zero values select defaults.
type Options struct {
	Pins                 Pins
	MaxReconnectAttempts int

	ButtonMode     logic.Mode
	ButtonDebounce time.Duration

	// LoopInterval is the idle time between ticks in Run.
	LoopInterval time.Duration

	// Lines mirrors the button and LED onto hardware. Nil disables it.
	Lines gpio.Lines

	// Tracker receives status on every tick. Nil disables it.
	Tracker *status.Tracker

	Now          func() time.Time
	Sleep        func(time.Duration)
	NewSessionID func() string
}

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("app: invalid options")

// Application is the controller state machine.
type Application struct {
	client  mqtt.Client
	gpio    gpio.Manager
	sensor  sensor.TemperatureSensor
	lines   gpio.Lines
	tracker *status.Tracker
	log     *logger.Log

	pins         Pins
	maxAttempts  int
	loopInterval time.Duration
	now          func() time.Time
	sleep        func(time.Duration)
	newSessionID func() string

	inbound *queue.Queue[mqtt.Message]

	mu                sync.Mutex
	state             State
	reconnectAttempts int
	lastReconnect     time.Time

	// Owned by the control loop.
	led             bool
	button          *logic.ButtonTrigger
	lastTemperature time.Time
	sampling        bool
	exited          bool
}

// New creates the application, registers the pin layout and attaches the
// pin write handlers. It does not connect.
func New(client mqtt.Client, pins gpio.Manager, temp sensor.TemperatureSensor, log *logger.Log, opts Options) (*Application, error) {
	if opts.MaxReconnectAttempts < 0 {
		return nil, fmt.Errorf("%w: max reconnect attempts %d", ErrInvalidOptions, opts.MaxReconnectAttempts)
	}
	if opts.ButtonDebounce < 0 {
		return nil, fmt.Errorf("%w: button debounce %v", ErrInvalidOptions, opts.ButtonDebounce)
	}

	a := &Application{
		client:       client,
		gpio:         pins,
		sensor:       temp,
		lines:        opts.Lines,
		tracker:      opts.Tracker,
		log:          log.Module("app"),
		pins:         opts.Pins,
		maxAttempts:  opts.MaxReconnectAttempts,
		loopInterval: opts.LoopInterval,
		now:          opts.Now,
		sleep:        opts.Sleep,
		newSessionID: opts.NewSessionID,
		inbound:      queue.New[mqtt.Message](),
		state:        WaitingToConnect,
		button:       logic.NewButtonTrigger(opts.ButtonMode, opts.ButtonDebounce),
	}
	if a.loopInterval <= 0 {
		a.loopInterval = DefaultLoopInterval
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.sleep == nil {
		a.sleep = time.Sleep
	}
	if a.newSessionID == nil {
		a.newSessionID = uuid.NewString
	}
	a.lastReconnect = a.now()

	if err := a.setupPins(); err != nil {
		return nil, err
	}
	a.attachPinHandlers()
	return a, nil
}

// State returns the current state.
func (a *Application) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ReconnectAttempts returns the consecutive failed reconnects.
func (a *Application) ReconnectAttempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reconnectAttempts
}

// LED reports the status LED flag.
func (a *Application) LED() bool {
	return a.led
}

// Pending returns the number of inbound messages not yet dispatched.
func (a *Application) Pending() int {
	return a.inbound.Size()
}

// RequestRestart moves the state machine to Restarting. The restart runs
// on the next tick.
func (a *Application) RequestRestart() {
	a.transition(func(State) (State, bool) { return Restarting, true })
}

// RequestExit moves the state machine to Exiting unless it is already there.
func (a *Application) RequestExit(reason string) {
	if a.transition(func(cur State) (State, bool) { return Exiting, cur != Exiting }) {
		a.log.WithField("reason", reason).Info("exit requested")
	}
}

// Start attaches the transport handlers and makes the initial connection.
// A failed connect leaves the application Disconnected so the reconnect
// policy takes over.
func (a *Application) Start() {
	a.client.SetMessageHandler(a.handleMessage)
	a.client.SetConnectHandler(a.handleConnect)
	a.client.SetDisconnectHandler(a.handleDisconnect)

	if err := a.connect(); err != nil {
		a.log.Errorf("initial connect failed: %v", err)
		now := a.now()
		a.transition(func(State) (State, bool) { return Disconnected, true }, func() { a.lastReconnect = now })
		return
	}

	a.transition(keepConnected)
}

// Run starts the application and ticks until it exits. Cancelling ctx
// drives the state machine to Exiting; a restart cooldown already in
// progress still runs to completion.
func (a *Application) Run(ctx context.Context) {
	a.Start()
	defer a.shutdown()

	for {
		if ctx.Err() != nil {
			a.RequestExit(ctx.Err().Error())
		}
		if !a.Step() {
			return
		}

		select {
		case <-ctx.Done():
		case <-time.After(a.loopInterval):
		}
	}
}

// Step runs one tick of the state machine. It returns false once the
// application has exited.
func (a *Application) Step() bool {
	if a.exited {
		return false
	}

	a.mu.Lock()
	state := a.state
	a.mu.Unlock()

	now := a.now()

	switch state {
	case WaitingToConnect:

	case Connected:
		a.processButton(now)
		a.processTemperature(now)
		if msg, ok := a.inbound.Pop(0); ok {
			a.processMessage(msg)
		}

	case Disconnected:
		a.checkReconnect(now)

	case Reconnecting:
		a.reconnect(now)

	case Restarting:
		a.restart()

	case Exiting:
		a.log.Info("exiting application")
		a.exited = true
	}

	a.updateStatus()
	return !a.exited
}

func (a *Application) connect() error {
	if err := a.client.Connect(); err != nil {
		return err
	}
	return a.client.Subscribe(mqtt.TopicControl)
}

// checkReconnect schedules a reconnect, or gives up once the attempts are
// exhausted.
func (a *Application) checkReconnect(now time.Time) {
	var attempt int
	var exhausted bool

	changed := a.transition(func(cur State) (State, bool) {
		if cur != Disconnected || now.Sub(a.lastReconnect) < ReconnectInterval {
			return cur, false
		}
		if a.reconnectAttempts < a.maxAttempts {
			attempt = a.reconnectAttempts + 1
			return Reconnecting, true
		}
		exhausted = true
		a.lastReconnect = now
		return Exiting, true
	})
	if !changed {
		return
	}

	if exhausted {
		a.log.Error("max reconnection attempts reached, exiting")
		return
	}
	a.log.WithField("attempt", attempt).Info("attempting reconnect")
}

func (a *Application) reconnect(now time.Time) {
	if a.client.IsConnected() {
		a.client.Disconnect()
	}

	if err := a.connect(); err != nil {
		a.log.Warnf("reconnect failed: %v", err)
		a.transition(func(State) (State, bool) { return Disconnected, true }, func() {
			a.lastReconnect = now
			a.reconnectAttempts++
		})
		return
	}

	a.transition(keepConnected, func() {
		a.reconnectAttempts = 0
	})
}

// keepConnected is the transition after a successful connect. The connect
// or disconnect handlers may already have moved the state on; their write
// wins.
func keepConnected(cur State) (State, bool) {
	if cur == Reconnecting {
		return WaitingToConnect, true
	}
	return cur, true
}

func (a *Application) restart() {
	session := a.newSessionID()
	log := a.log.WithField("session", session)
	log.Info("restarting")

	a.client.Disconnect()
	a.removePins()
	a.detachPinHandlers()

	a.transition(func(State) (State, bool) { return Disconnected, true })

	a.sleep(RestartCooldown)

	if err := a.setupPins(); err != nil {
		log.Errorf("re-register pins: %v", err)
	}
	a.attachPinHandlers()
	a.led = false
	a.button.Reset()
	a.mirrorLED(gpio.Low)

	if a.tracker != nil {
		a.tracker.RecordRestart(session)
	}
	log.Info("restart complete")
}

// shutdown detaches the transport handlers and closes the connection.
func (a *Application) shutdown() {
	a.client.SetMessageHandler(nil)
	a.client.SetConnectHandler(nil)
	a.client.SetDisconnectHandler(nil)
	a.client.Disconnect()
}

func (a *Application) handleMessage(topic string, payload []byte) {
	a.inbound.Push(mqtt.Message{Topic: topic, Payload: append([]byte(nil), payload...)})
}

// handleConnect accepts the transport's connect event only while a connect
// is pending. A late event after a failed subscribe leaves Disconnected in
// place so the reconnect policy still runs.
func (a *Application) handleConnect() {
	a.transition(func(cur State) (State, bool) {
		return Connected, cur == WaitingToConnect || cur == Reconnecting
	}, func() {
		a.reconnectAttempts = 0
	})
}

// handleDisconnect ignores disconnects during a restart, which tears the
// connection down itself.
func (a *Application) handleDisconnect(reason error) {
	a.log.Warnf("transport disconnected: %v", reason)

	now := a.now()
	a.transition(func(cur State) (State, bool) {
		return Disconnected, cur != Restarting && cur != Exiting
	}, func() {
		a.lastReconnect = now
	})
}

// transition applies next under mu. When next reports a change, the state is
// updated and the optional effects run, still under mu; the change is logged
// after mu is released.
func (a *Application) transition(next func(cur State) (State, bool), effects ...func()) bool {
	a.mu.Lock()
	from := a.state
	to, ok := next(from)
	if ok {
		a.state = to
		for _, fn := range effects {
			fn()
		}
	}
	a.mu.Unlock()

	if ok && from != to {
		a.log.With(logger.Fields{"from": from.String(), "to": to.String()}).Info("state change")
	}
	return ok
}

func (a *Application) updateStatus() {
	if a.tracker == nil {
		return
	}

	a.mu.Lock()
	state, attempts := a.state, a.reconnectAttempts
	a.mu.Unlock()

	a.tracker.Update(state.String(), attempts, a.client.IsConnected())
	a.tracker.SetLED(a.led)
	a.tracker.SetButtonPresses(a.button.Presses())

	pins := a.gpio.Pins()
	infos := make([]status.PinInfo, 0, len(pins))
	for _, p := range pins {
		infos = append(infos, status.PinInfo{
			Number:    p.Number,
			Kind:      p.Kind.String(),
			Direction: p.Direction.String(),
			Value:     int(p.Value),
		})
	}
	a.tracker.SetPins(infos)
}
