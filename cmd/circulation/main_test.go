package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"lendledger/internal/library"
	"lendledger/internal/logging"
	"lendledger/internal/telemetry"
)

func TestDemonstrationRuns(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	err := execute(context.Background(),
		telemetry.Config{ServiceName: "lendledger-test", MetricReader: reader},
		logging.Discard(), run)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	assert.ErrorIs(t, reader.Collect(context.Background(), &rm), sdkmetric.ErrReaderShutdown)
}

func TestTelemetryShutDownWhenScenarioFails(t *testing.T) {
	errBoom := errors.New("boom")
	reader := sdkmetric.NewManualReader()

	err := execute(context.Background(),
		telemetry.Config{ServiceName: "lendledger-test", MetricReader: reader},
		logging.Discard(),
		func(context.Context, library.Service, *slog.Logger) error { return errBoom })
	require.ErrorIs(t, err, errBoom)

	var rm metricdata.ResourceMetrics
	assert.ErrorIs(t, reader.Collect(context.Background(), &rm), sdkmetric.ErrReaderShutdown)
}
