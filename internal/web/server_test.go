package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/pin-controller/internal/logger"
	"github.com/sweeney/pin-controller/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Broker:               "tcp://192.168.1.200:1883",
		ClientID:             "embedded_device",
		MaxReconnectAttempts: 5,
		ButtonMode:           "level",
		HTTPAddr:             ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, logger.Discard())
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update("Connected", 0, true)
	tr.SetTemperature(249)
	tr.SetPins([]status.PinInfo{{Number: 3, Kind: "analog", Direction: "output", Value: 128}})

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "Connected" || !sj.Status.Ready {
		t.Errorf("State: got %q ready=%v", sj.Status.State, sj.Status.Ready)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Temperature == nil || *sj.Status.Temperature != 249 {
		t.Errorf("Temperature: got %v", sj.Status.Temperature)
	}
	if len(sj.Status.Pins) != 1 || sj.Status.Pins[0].Value != 128 {
		t.Errorf("Pins: got %+v", sj.Status.Pins)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update("Disconnected", 2, false)
	tr.SetLED(true)
	tr.SetTemperature(245)
	tr.AddDiagnostic(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC), "RGB values must be in range [0, 255]")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{
		"Pin Controller",
		"Disconnected",
		"24.5 °C",
		"2 / 5",
		"Recent Errors",
		"RGB values must be in range [0, 255]",
		"no pins registered",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}
	if sj1.Status.Temperature != nil {
		t.Error("expected no temperature initially")
	}

	tr.Update("Connected", 0, true)
	tr.SetLED(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if !sj2.Status.LED {
		t.Error("expected LED on after update")
	}
}

func TestAddr(t *testing.T) {
	srv := New(":8081", status.NewTracker(time.Now(), status.Config{}), logger.Discard())
	if srv.Addr() != ":8081" {
		t.Errorf("Addr: got %q", srv.Addr())
	}
}
