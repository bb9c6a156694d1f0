package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/pin-controller/internal/logger"
	"github.com/sweeney/pin-controller/internal/queue"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	subscribeTimeout  = 5 * time.Second
	keepAlive         = 60 * time.Second
	disconnectQuiesce = 250 // milliseconds
	loopPopTimeout    = 100 * time.Millisecond
)

// Options configures a RealClient.
type Options struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
}

// RealClient talks to an actual MQTT broker through paho.
//
// Publish only enqueues; a per-connection goroutine drains the queue while
// the connection is open, so messages published while disconnected are
// delivered after the next Connect.
type RealClient struct {
	client   paho.Client
	log      *logger.Log
	outbound *queue.Queue[Message]

	loopMu  sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	cbMu         sync.RWMutex
	onMessage    MessageHandler
	onConnect    func()
	onDisconnect func(reason error)
}

var _ Client = (*RealClient)(nil)

// NewRealClient creates a client for the broker in opts. It does not connect.
func NewRealClient(opts Options, log *logger.Log) *RealClient {
	c := &RealClient{
		log:      log.Module("mqtt"),
		outbound: queue.New[Message](),
	}

	routePahoLogs(c.log)

	c.client = paho.NewClient(c.buildClientOptions(opts))
	return c
}

// buildClientOptions disables paho's own reconnect: the application owns
// the reconnect policy.
func (c *RealClient) buildClientOptions(opts Options) *paho.ClientOptions {
	o := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetOrderMatters(true).
		SetDefaultPublishHandler(c.handleMessage).
		SetOnConnectHandler(c.handleConnect).
		SetConnectionLostHandler(c.handleConnectionLost)

	if opts.Username != "" {
		o.SetUsername(opts.Username)
		o.SetPassword(opts.Password)
	}
	return o
}

// Connect opens the connection and starts the publish goroutine.
func (c *RealClient) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.startLoop()
	return nil
}

// Disconnect stops and joins the publish goroutine, then closes the connection.
func (c *RealClient) Disconnect() {
	c.stopLoop()
	c.wg.Wait()

	if c.client.IsConnectionOpen() {
		c.client.Disconnect(disconnectQuiesce)
		c.log.Info("disconnected from broker")
	}
}

// IsConnected reports whether the connection is currently open.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Subscribe subscribes at QoS 0; messages go to the message handler.
func (c *RealClient) Subscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.client.IsConnectionOpen() {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, ErrNotConnected)
	}

	token := c.client.Subscribe(topic, 0, nil)
	if !token.WaitTimeout(subscribeTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, topic, subscribeTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.log.WithField("topic", topic).Debug("subscribed")
	return nil
}

// Publish queues a QoS 0, non-retained message.
func (c *RealClient) Publish(topic string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("%w: %w", ErrPublishFailed, ErrInvalidTopic)
	}
	c.outbound.Push(Message{Topic: topic, Payload: payload})
	return nil
}

// Pending returns the number of queued, unsent messages.
func (c *RealClient) Pending() int {
	return c.outbound.Size()
}

func (c *RealClient) SetMessageHandler(h MessageHandler) {
	c.cbMu.Lock()
	c.onMessage = h
	c.cbMu.Unlock()
}

func (c *RealClient) SetConnectHandler(h func()) {
	c.cbMu.Lock()
	c.onConnect = h
	c.cbMu.Unlock()
}

func (c *RealClient) SetDisconnectHandler(h func(reason error)) {
	c.cbMu.Lock()
	c.onDisconnect = h
	c.cbMu.Unlock()
}

func (c *RealClient) startLoop() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.loop(c.done)
}

// stopLoop signals the publish goroutine without waiting for it.
func (c *RealClient) stopLoop() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if !c.running {
		return
	}
	close(c.done)
	c.running = false
}

func (c *RealClient) loop(done <-chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-done:
			return
		default:
		}

		msg, ok := c.outbound.Pop(loopPopTimeout)
		if !ok {
			continue
		}

		// The connection may have been lost while Pop was waiting.
		select {
		case <-done:
			c.outbound.Requeue(msg)
			return
		default:
		}

		token := c.client.Publish(msg.Topic, 0, false, msg.Payload)
		if !token.WaitTimeout(publishTimeout) {
			c.log.WithField("topic", msg.Topic).Warnf("%v: timeout after %v", ErrPublishFailed, publishTimeout)
			continue
		}
		if err := token.Error(); err != nil {
			c.log.WithField("topic", msg.Topic).Warnf("%v: %v", ErrPublishFailed, err)
		}
	}
}

func (c *RealClient) handleConnect(_ paho.Client) {
	c.log.Info("connected to broker")

	c.cbMu.RLock()
	cb := c.onConnect
	c.cbMu.RUnlock()
	if cb != nil {
		cb()
	}
}

// handleConnectionLost is only called by paho for connections lost without
// a Disconnect call.
func (c *RealClient) handleConnectionLost(_ paho.Client, err error) {
	c.log.Warnf("connection lost: %v", err)
	c.stopLoop()

	c.cbMu.RLock()
	cb := c.onDisconnect
	c.cbMu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

func (c *RealClient) handleMessage(_ paho.Client, msg paho.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("topic", msg.Topic()).Errorf("message handler panic recovered: %v", r)
		}
	}()

	c.cbMu.RLock()
	cb := c.onMessage
	c.cbMu.RUnlock()
	if cb != nil {
		cb(msg.Topic(), msg.Payload())
	}
}

// pahoLogger adapts a logrus entry to paho's Logger at a fixed level.
type pahoLogger struct {
	entry *logger.Log
	level logrus.Level
}

func (p pahoLogger) Println(v ...interface{}) {
	p.entry.Logln(p.level, v...)
}

func (p pahoLogger) Printf(format string, v ...interface{}) {
	p.entry.Logf(p.level, format, v...)
}

var routeOnce sync.Once

// routePahoLogs sends paho's internal logging through logrus. paho's
// loggers are package globals, so this happens once per process.
func routePahoLogs(log *logger.Log) {
	routeOnce.Do(func() {
		l := log.With(logger.Fields{"source": "paho"})
		paho.ERROR = pahoLogger{entry: l, level: logrus.ErrorLevel}
		paho.CRITICAL = pahoLogger{entry: l, level: logrus.ErrorLevel}
		paho.WARN = pahoLogger{entry: l, level: logrus.WarnLevel}
		if log.Logger.IsLevelEnabled(logrus.TraceLevel) {
			paho.DEBUG = pahoLogger{entry: l, level: logrus.TraceLevel}
		}
	})
}
