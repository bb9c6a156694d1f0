// Command pin-controller bridges MQTT commands to the device's simulated pins
// and publishes pin state and temperature readings back to the broker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/pin-controller/internal/app"
	"github.com/sweeney/pin-controller/internal/config"
	"github.com/sweeney/pin-controller/internal/gpio"
	"github.com/sweeney/pin-controller/internal/logger"
	"github.com/sweeney/pin-controller/internal/logic"
	"github.com/sweeney/pin-controller/internal/mqtt"
	"github.com/sweeney/pin-controller/internal/sensor"
	"github.com/sweeney/pin-controller/internal/status"
	"github.com/sweeney/pin-controller/internal/web"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "TOML config file (environment variables override it)")
	printConfig := flag.Bool("print-config", false, "Print the effective configuration and exit")

	flag.Parse()

	if err := run(*configPath, *printConfig); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, printConfig bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if printConfig {
		return writeConfig(os.Stdout, *cfg)
	}

	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		return err
	}
	mainLog := log.Module("main")

	// Optional hardware mirror for the button and LED
	var lines gpio.Lines
	if cfg.GPIO.Chip != "" {
		chip, err := gpio.NewChipLines(cfg.GPIO.Chip, []int{cfg.Pins.Button}, []int{cfg.Pins.LED})
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer chip.Close()
		lines = chip
		mainLog.Infof("mirroring button line %d and led line %d on %s", cfg.Pins.Button, cfg.Pins.LED, cfg.GPIO.Chip)
	}

	client := mqtt.NewRealClient(mqtt.Options{
		Broker:   cfg.BrokerURL(),
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.User,
		Password: cfg.MQTT.Password,
	}, log)

	tracker := status.NewTracker(time.Now(), statusConfig(*cfg))

	opts, err := appOptions(*cfg)
	if err != nil {
		return err
	}
	opts.Lines = lines
	opts.Tracker = tracker

	application, err := app.New(client, gpio.NewRegister(), sensor.NewEmulator(), log, opts)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLog.Errorf("http server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		mainLog.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mainLog.Infof("started: broker=%s client=%s max_reconnect_attempts=%d button=%s log_level=%s",
		cfg.BrokerURL(), cfg.MQTT.ClientID, cfg.App.MaxReconnectAttempts, opts.ButtonMode, log.GetLevel())

	application.Run(ctx)

	mainLog.Info("stopped")
	return nil
}

// appOptions maps the configuration onto application options.
func appOptions(cfg config.Config) (app.Options, error) {
	mode, err := logic.ParseMode(cfg.GPIO.ButtonMode)
	if err != nil {
		return app.Options{}, err
	}
	debounce, err := cfg.ButtonDebounce()
	if err != nil {
		return app.Options{}, err
	}

	return app.Options{
		Pins: app.Pins{
			Red:         cfg.Pins.Red,
			Green:       cfg.Pins.Green,
			Blue:        cfg.Pins.Blue,
			Temperature: cfg.Pins.Temperature,
			Button:      cfg.Pins.Button,
			LED:         cfg.Pins.LED,
		},
		MaxReconnectAttempts: cfg.App.MaxReconnectAttempts,
		ButtonMode:           mode,
		ButtonDebounce:       debounce,
	}, nil
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		Broker:               cfg.BrokerURL(),
		ClientID:             cfg.MQTT.ClientID,
		MaxReconnectAttempts: cfg.App.MaxReconnectAttempts,
		ButtonMode:           cfg.GPIO.ButtonMode,
		HTTPAddr:             cfg.HTTP.Addr,
		GPIOChip:             cfg.GPIO.Chip,
	}
}

// writeConfig prints cfg as TOML with the broker password masked.
func writeConfig(w io.Writer, cfg config.Config) error {
	if cfg.MQTT.Password != "" {
		cfg.MQTT.Password = "********"
	}
	return toml.NewEncoder(w).Encode(cfg)
}
