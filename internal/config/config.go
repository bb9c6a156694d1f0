// Package config loads controller settings from an optional TOML file and
// environment variables. Settings are read once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Config is the full controller configuration.
type Config struct {
	Logger LogConf  `toml:"logger"`
	MQTT   MQTTConf `toml:"mqtt"`
	App    AppConf  `toml:"app"`
	Pins   PinConf  `toml:"pins"`
	GPIO   GPIOConf `toml:"gpio"`
	HTTP   HTTPConf `toml:"http"`
}

// LogConf configures the logger.
type LogConf struct {
	Level string `toml:"log-level"`
}

// MQTTConf configures the broker connection.
type MQTTConf struct {
	ClientID string `toml:"client-id"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// AppConf configures the control loop.
type AppConf struct {
	MaxReconnectAttempts int `toml:"max-reconnect-attempts"`
}

// PinConf holds the six pin numbers of the fixed layout.
type PinConf struct {
	Red         int `toml:"red"`
	Green       int `toml:"green"`
	Blue        int `toml:"blue"`
	Temperature int `toml:"temperature"`
	Button      int `toml:"button"`
	LED         int `toml:"led"`
}

// GPIOConf configures the optional hardware mirror and the button trigger.
type GPIOConf struct {
	Chip           string `toml:"chip"`            // empty disables the hardware mirror
	ButtonMode     string `toml:"button-mode"`     // "level" or "edge"
	ButtonDebounce string `toml:"button-debounce"` // Go duration, edge mode only
}

// HTTPConf configures the status server.
type HTTPConf struct {
	Addr string `toml:"addr"` // empty disables the server
}

// Button trigger modes.
const (
	ButtonModeLevel = "level"
	ButtonModeEdge  = "edge"
)

// DefaultClientID is the client id used when none is configured.
const DefaultClientID = "embedded_device"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "info"},
		MQTT: MQTTConf{
			ClientID: DefaultClientID,
			Host:     "localhost",
			Port:     1883,
		},
		App: AppConf{MaxReconnectAttempts: 5},
		Pins: PinConf{
			Red:         3,
			Green:       5,
			Blue:        6,
			Temperature: 0,
			Button:      2,
			LED:         13,
		},
		GPIO: GPIOConf{
			ButtonMode:     ButtonModeLevel,
			ButtonDebounce: "50ms",
		},
		HTTP: HTTPConf{Addr: ":8080"},
	}
}

// Load builds the configuration: defaults, then the TOML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID + "-" + uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"MQTT_HOST", &c.MQTT.Host},
		{"MQTT_CLIENT_ID", &c.MQTT.ClientID},
		{"MQTT_USERNAME", &c.MQTT.User},
		{"MQTT_PASSWORD", &c.MQTT.Password},
		{"LOG_LEVEL", &c.Logger.Level},
		{"HTTP_ADDR", &c.HTTP.Addr},
		{"GPIO_CHIP", &c.GPIO.Chip},
		{"BUTTON_MODE", &c.GPIO.ButtonMode},
		{"BUTTON_DEBOUNCE", &c.GPIO.ButtonDebounce},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MQTT_PORT", &c.MQTT.Port},
		{"MAX_RECONNECT_ATTEMPTS", &c.App.MaxReconnectAttempts},
		{"RED_PIN", &c.Pins.Red},
		{"GREEN_PIN", &c.Pins.Green},
		{"BLUE_PIN", &c.Pins.Blue},
		{"TEMPERATURE_PIN", &c.Pins.Temperature},
		{"BUTTON_PIN", &c.Pins.Button},
		{"LED_PIN", &c.Pins.LED},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", i.key, err)
		}
		*i.dst = n
	}

	return nil
}

// Validate checks the configuration for values the controller cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.MQTT.Host == "" {
		errs = append(errs, errors.New("mqtt host is empty"))
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		errs = append(errs, fmt.Errorf("mqtt port %d out of range", c.MQTT.Port))
	}
	if c.App.MaxReconnectAttempts < 0 {
		errs = append(errs, fmt.Errorf("max reconnect attempts %d is negative", c.App.MaxReconnectAttempts))
	}

	seen := make(map[int]string)
	for _, p := range c.Pins.named() {
		if p.number < 0 {
			errs = append(errs, fmt.Errorf("%s pin %d is negative", p.name, p.number))
			continue
		}
		if other, ok := seen[p.number]; ok {
			errs = append(errs, fmt.Errorf("%s pin %d already used by %s", p.name, p.number, other))
			continue
		}
		seen[p.number] = p.name
	}

	switch c.GPIO.ButtonMode {
	case ButtonModeLevel, ButtonModeEdge:
	default:
		errs = append(errs, fmt.Errorf("unknown button mode %q", c.GPIO.ButtonMode))
	}
	if _, err := c.ButtonDebounce(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ButtonDebounce parses the configured debounce duration.
func (c *Config) ButtonDebounce() (time.Duration, error) {
	if c.GPIO.ButtonDebounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.GPIO.ButtonDebounce)
	if err != nil {
		return 0, fmt.Errorf("button debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("button debounce %v is negative", d)
	}
	return d, nil
}

// BrokerURL returns the paho broker address.
func (c *Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTT.Host, c.MQTT.Port)
}

type namedPin struct {
	name   string
	number int
}

func (p PinConf) named() []namedPin {
	return []namedPin{
		{"red", p.Red},
		{"green", p.Green},
		{"blue", p.Blue},
		{"temperature", p.Temperature},
		{"button", p.Button},
		{"led", p.LED},
	}
}
