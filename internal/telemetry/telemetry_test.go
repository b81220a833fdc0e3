package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSetupWithoutExporter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()

	providers, err := Setup(ctx, Config{ServiceName: "lendledger-test", MetricReader: reader})
	require.NoError(t, err)

	counter, err := providers.MeterProvider.Meter("test").Int64Counter("probe")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "probe", rm.ScopeMetrics[0].Metrics[0].Name)

	name, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "lendledger-test", name.AsString())

	_, span := providers.TracerProvider.Tracer("test").Start(ctx, "probe")
	span.End()

	assert.NoError(t, providers.Shutdown(ctx))
}
