package mqtt

import (
	"errors"
	"testing"

	"github.com/sweeney/pin-controller/internal/logger"
)

func TestBuildClientOptions(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://localhost:1883", ClientID: "embedded_device"}, logger.Discard())
	opts := c.buildClientOptions(Options{
		Broker:   "tcp://broker.local:1884",
		ClientID: "dev-1",
		Username: "user",
		Password: "secret",
	})

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://broker.local:1884" {
		t.Errorf("unexpected servers: %v", opts.Servers)
	}
	if opts.ClientID != "dev-1" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "user" || opts.Password != "secret" {
		t.Errorf("credentials not set: %q/%q", opts.Username, opts.Password)
	}
	if opts.AutoReconnect {
		t.Error("paho auto-reconnect must be disabled")
	}
	if opts.ConnectRetry {
		t.Error("paho connect retry must be disabled")
	}
	if !opts.CleanSession {
		t.Error("expected clean session")
	}
}

func TestBuildClientOptionsNoCredentials(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://localhost:1883", ClientID: "x"}, logger.Discard())
	opts := c.buildClientOptions(Options{Broker: "tcp://localhost:1883", ClientID: "x"})
	if opts.Username != "" || opts.Password != "" {
		t.Error("credentials should be empty")
	}
}

func TestRealClientPublishQueuesWhileDisconnected(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())

	if err := c.Publish(TopicErrors, []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Publish(TopicErrors, []byte("b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", c.Pending())
	}

	if err := c.Publish("", nil); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestRealClientConnectRefused(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())

	err := c.Connect()
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
	if c.IsConnected() {
		t.Error("should not be connected")
	}
}

func TestRealClientDisconnectIdempotent(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())

	c.Disconnect()
	c.Disconnect()
}

func TestRealClientSubscribeEmptyTopic(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())
	if err := c.Subscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestRealClientSubscribeNotConnected(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())
	err := c.Subscribe(TopicControl)
	if !errors.Is(err, ErrSubscribeFailed) || !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrSubscribeFailed wrapping ErrNotConnected, got %v", err)
	}
}

func TestRealClientLoopKeepsMessageAfterStop(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ClientID: "x"}, logger.Discard())

	c.startLoop()
	c.stopLoop()
	if err := c.Publish(TopicPinState, []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Publish(TopicPinState, []byte("b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.wg.Wait()

	if c.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", c.Pending())
	}
	first, _ := c.outbound.Pop(0)
	if string(first.Payload) != "a" {
		t.Errorf("first queued payload = %q, want a", first.Payload)
	}
}
