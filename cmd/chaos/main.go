// cmd/chaos/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"lendledger/internal/chaos"
	"lendledger/internal/config"
	"lendledger/internal/library"
	"lendledger/internal/logging"
	"lendledger/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(os.Stdout, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := sdkmetric.NewManualReader()
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  cfg.ServiceName + "-chaos",
		OTLPEndpoint: cfg.OTLPEndpoint,
		MetricReader: reader,
	})
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	svc := library.NewService(
		library.WithLogger(logger),
		library.WithTracerProvider(providers.TracerProvider),
		library.WithMeterProvider(providers.MeterProvider),
	)

	engine := chaos.NewEngine(logger, providers.TracerProvider)
	engine.RegisterExperiments(svc, chaos.Settings{
		Concurrency:    cfg.Chaos.Concurrency,
		RatePerSecond:  cfg.Chaos.RatePerSecond,
		Duration:       cfg.Chaos.Duration,
		SampleInterval: cfg.Chaos.SampleInterval,
	})

	gameDay := chaos.GameDay{
		Name:      "Ledger Chaos Game Day",
		Date:      time.Now(),
		Scenarios: engine.Experiments(),
		Pause:     cfg.Chaos.Pause,
	}

	gameDayErr := engine.ExecuteGameDay(ctx, gameDay)
	logLedgerMetrics(context.Background(), logger, reader)

	if err := providers.Shutdown(context.Background()); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}
	if gameDayErr != nil {
		logger.Error("chaos game day failed", "error", gameDayErr)
		os.Exit(1)
	}
}

func logLedgerMetrics(ctx context.Context, logger *slog.Logger, reader *sdkmetric.ManualReader) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		logger.Error("collect metrics failed", "error", err)
		return
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			logger.Info("ledger metric", "name", m.Name, "value", total)
		}
	}
}
