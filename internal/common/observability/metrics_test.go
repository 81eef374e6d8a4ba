package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordReport_ExportsCounterAndHistogram(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "rcm-benchmark-test")

	ctx := context.Background()
	obs.RecordReport(ctx, "api", "success")
	obs.RecordReport(ctx, "api", "success")
	obs.RecordReportDuration(ctx, 25*time.Millisecond, "success")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m
	}

	counter, ok := names["reports.generated"]
	require.True(t, ok)
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	_, ok = names["reports.duration"]
	assert.True(t, ok)

	require.NoError(t, obs.Shutdown(ctx))
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	obs.RecordReport(context.Background(), "api", "success")
	obs.RecordReportDuration(context.Background(), time.Millisecond, "success")
	assert.NoError(t, obs.Shutdown(context.Background()))
}
