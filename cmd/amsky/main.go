// cmd/amsky/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tamzrod/amsky-bridge/internal/config"
	"github.com/tamzrod/amsky-bridge/internal/driver"
	"github.com/tamzrod/amsky-bridge/internal/host"
	"github.com/tamzrod/amsky-bridge/internal/logging"
	"github.com/tamzrod/amsky-bridge/internal/mqtt"
	"github.com/tamzrod/amsky-bridge/internal/poller"
	"github.com/tamzrod/amsky-bridge/internal/storage"
	"github.com/tamzrod/amsky-bridge/internal/writer"
)

const (
	appName = "amsky-bridge"
	// Overridden with -ldflags "-X main.version=...".
	version = "dev"

	mqttConnectTimeout = 10 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: amsky <config.yaml>")
	}

	cfgPath := os.Args[1]

	// .env is optional
	_ = godotenv.Load()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	logger := logging.New(level, cfg.Log.Format, appName, version)
	slog.SetDefault(logger)

	logger.Info("starting",
		"device", cfg.Driver.Name,
		"api_url", cfg.Driver.APIURL,
		"log_level", level.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// ---- poller + driver ----
	p, err := poller.Build(cfg.Driver)
	if err != nil {
		return fmt.Errorf("poller build failed: %w", err)
	}

	drv := driver.New(p, cfg.Driver.APIURL)

	// ---- export sinks ----
	out := writer.NewFanout()

	if m := cfg.Exports.Modbus; m != nil {
		w, closeModbus, err := writer.BuildModbus(*m, cfg.Driver.Name)
		if err != nil {
			return fmt.Errorf("modbus writer failed (endpoint=%s): %w", m.Endpoint, err)
		}
		defer closeModbus()
		out.Add("modbus", w)
	}

	var mc *mqtt.Client
	if q := cfg.Exports.MQTT; q != nil {
		mc, err = mqtt.NewClient(*q, cfg.Driver.Name, logger)
		if err != nil {
			return err
		}

		cctx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err = mc.Connect(cctx)
		cancel()
		if err != nil {
			return fmt.Errorf("mqtt connect failed (broker=%s:%d): %w", q.Broker, q.Port, err)
		}
		defer mc.Disconnect()
		out.Add("mqtt", mc)
	}

	if h := cfg.Exports.History; h != nil {
		hist, err := storage.Open(h.Path, time.Duration(h.RetentionHours)*time.Hour, logger)
		if err != nil {
			return fmt.Errorf("history open failed (path=%s): %w", h.Path, err)
		}
		defer func() {
			if err := hist.Close(); err != nil {
				logger.Warn("history close failed", "error", err)
			}
		}()
		out.Add("history", hist)
	}

	// ---- host runtime ----
	rt, err := host.New(host.Config{
		DeviceName:    cfg.Driver.Name,
		PollingPeriod: time.Duration(cfg.Poll.IntervalMs) * time.Millisecond,
		UpdatePeriod:  time.Duration(cfg.Poll.UpdatePeriodMs) * time.Millisecond,
		Logger:        logger,
	}, drv, out)
	if err != nil {
		return err
	}

	if mc != nil {
		mc.SetController(rt)
	}

	logger.Info("runtime ready", "sinks", out.Len())

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	if *cfg.Driver.ConnectOnStart {
		if err := rt.Connect(ctx); err != nil {
			// Without a command channel nobody could ever retry.
			if mc == nil {
				return fmt.Errorf("initial connect failed (url=%s): %w", cfg.Driver.APIURL, err)
			}
			logger.Warn("initial connect failed, waiting for connect command", "error", err)
		}
	}

	return <-done
}
