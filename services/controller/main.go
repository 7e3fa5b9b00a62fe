package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
	"github.com/02loveslollipop/climate-controller/services/controller/config"
	httpserver "github.com/02loveslollipop/climate-controller/services/controller/http"
	"github.com/02loveslollipop/climate-controller/services/controller/sensor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	acquirer, closeAcquirer, err := newAcquirer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("sensor error: %v", err)
	}
	defer closeAcquirer()

	reader := sensor.NewReader(acquirer, cfg.SensorTimeout, logger)
	engine := climate.NewEngine(climate.Thresholds{
		Temperature: cfg.TempThreshold,
		Humidity:    cfg.HumidThreshold,
	})
	controller := climate.NewController(engine, reader, cfg.PollInterval, logger)
	responder := httpserver.NewResponder(controller, cfg.JSONValidFlag, logger)
	srv := httpserver.New(cfg, responder, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return controller.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	if cfg.LegacyListenAddr != "" {
		line := httpserver.NewLineServer(cfg.LegacyListenAddr, responder, logger)
		g.Go(func() error { return line.Run(ctx) })
	}

	logger.Info("climate controller listening", "addr", cfg.ListenAddr(), "sensor", cfg.SensorDriver)

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newAcquirer(ctx context.Context, cfg config.Config, logger *slog.Logger) (sensor.Acquirer, func(), error) {
	switch cfg.SensorDriver {
	case config.DriverPostgres:
		pg, err := sensor.NewPostgres(ctx, cfg.DatabaseURL, cfg.SensorTable)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.DriverMQTT:
		m, err := sensor.NewMQTT(sensor.MQTTOptions{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Topic:     cfg.MQTTTopic,
			MaxAge:    cfg.MQTTMaxAge,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case config.DriverSimulated:
		return sensor.NewSimulated(uint64(time.Now().UnixNano()), 0), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sensor driver %q", cfg.SensorDriver)
	}
}
