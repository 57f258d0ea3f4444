package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())

	require.NotNil(t, m.RunsStartedTotal)
	require.NotNil(t, m.SequenceRejections)

	// Instruments from the global no-op provider must accept records
	ctx := context.Background()
	m.RecordRunCompleted(ctx, ReasonAllScanned, 42)
	m.RecordRejection(ctx, m.DeniedTotal, "tenant_frozen")
	require.NotNil(t, Tracer())
}

func TestRunDurationView(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithView(RunDurationView()))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	hist, err := mp.Meter(instrumentationName).Float64Histogram(runDurationName)
	require.NoError(t, err)
	hist.Record(ctx, 1200)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	data, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	require.Equal(t, RunDurationBuckets, data.DataPoints[0].Bounds)
	require.Equal(t, uint64(1), data.DataPoints[0].Count)
}
