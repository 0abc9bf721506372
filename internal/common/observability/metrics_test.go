package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestTrackRecordsCounterAndDuration(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "test")
	ctx := context.Background()

	obs.Track(ctx, "CreateProduct", time.Now(), nil)
	obs.Track(ctx, "CreateProduct", time.Now(), errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m
	}
	require.Contains(t, names, "inventory.operations")
	require.Contains(t, names, "inventory.operation.duration")

	sum, ok := names["inventory.operations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Len(t, sum.DataPoints, 2, "success and error are separate series")
}

func TestTrackOnNilIsNoop(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.Track(context.Background(), "op", time.Now(), nil)
	})
}
