package mqtt

import (
	"fmt"
	"sync"
)

// FakeClient records transport activity for test assertions. It is safe
// for use from the application goroutine and the test goroutine at once.
type FakeClient struct {
	mu sync.Mutex

	published     []Message
	subscriptions []string
	connected     bool

	connectCalls    int
	disconnectCalls int

	// ConnectErrors are consumed one per Connect call; a nil entry succeeds.
	// Once exhausted, ConnectError applies.
	ConnectErrors []error

	// ConnectError, if set, is returned by every Connect after ConnectErrors.
	ConnectError error

	// SubscribeError, if set, is returned by Subscribe.
	SubscribeError error

	// FireConnectOnConnect invokes the connect handler from a successful
	// Connect, as a real broker session would.
	FireConnectOnConnect bool

	onMessage    MessageHandler
	onConnect    func()
	onDisconnect func(reason error)
}

var _ Client = (*FakeClient)(nil)

// NewFakeClient creates a FakeClient that accepts connections and fires
// the connect handler on each one.
func NewFakeClient() *FakeClient {
	return &FakeClient{FireConnectOnConnect: true}
}

func (f *FakeClient) Connect() error {
	f.mu.Lock()
	f.connectCalls++

	err := f.ConnectError
	if len(f.ConnectErrors) > 0 {
		err = f.ConnectErrors[0]
		f.ConnectErrors = f.ConnectErrors[1:]
	}
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	f.connected = true
	cb := f.onConnect
	fire := f.FireConnectOnConnect
	f.mu.Unlock()

	if fire && cb != nil {
		cb()
	}
	return nil
}

// Disconnect marks the fake disconnected without firing the disconnect handler.
func (f *FakeClient) Disconnect() {
	f.mu.Lock()
	f.disconnectCalls++
	f.connected = false
	f.mu.Unlock()
}

func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeClient) Subscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if topic == "" {
		return ErrInvalidTopic
	}
	if !f.connected {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, ErrNotConnected)
	}
	if f.SubscribeError != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, f.SubscribeError)
	}
	f.subscriptions = append(f.subscriptions, topic)
	return nil
}

func (f *FakeClient) Publish(topic string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("%w: %w", ErrPublishFailed, ErrInvalidTopic)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	return nil
}

func (f *FakeClient) SetMessageHandler(h MessageHandler) {
	f.mu.Lock()
	f.onMessage = h
	f.mu.Unlock()
}

func (f *FakeClient) SetConnectHandler(h func()) {
	f.mu.Lock()
	f.onConnect = h
	f.mu.Unlock()
}

func (f *FakeClient) SetDisconnectHandler(h func(reason error)) {
	f.mu.Lock()
	f.onDisconnect = h
	f.mu.Unlock()
}

// Deliver simulates an inbound message from the broker.
func (f *FakeClient) Deliver(topic string, payload []byte) {
	f.mu.Lock()
	cb := f.onMessage
	f.mu.Unlock()

	if cb != nil {
		cb(topic, payload)
	}
}

// FireConnect invokes the connect handler without changing connection state.
func (f *FakeClient) FireConnect() {
	f.mu.Lock()
	cb := f.onConnect
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// DropConnection simulates the broker going away.
func (f *FakeClient) DropConnection(reason error) {
	f.mu.Lock()
	f.connected = false
	cb := f.onDisconnect
	f.mu.Unlock()

	if cb != nil {
		cb(reason)
	}
}

// Published returns a copy of every published message in order.
func (f *FakeClient) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.published...)
}

// PublishedTo returns the messages published on topic in order.
func (f *FakeClient) PublishedTo(topic string) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Message
	for _, m := range f.published {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Subscriptions returns the subscribed topics in order.
func (f *FakeClient) Subscriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subscriptions...)
}

func (f *FakeClient) ConnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

func (f *FakeClient) DisconnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnectCalls
}

// Reset clears recorded activity.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = nil
	f.subscriptions = nil
	f.connectCalls = 0
	f.disconnectCalls = 0
}
