package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/wolfeidau/patrol"
	runDurationName     = "patrol.runs.duration"
)

// Completion reasons recorded on RunsCompletedTotal.
const (
	ReasonAllScanned = "all_scanned"
	ReasonEndShift   = "end_shift"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Run lifecycle metrics
	RunsStartedTotal   metric.Int64Counter
	RunsCompletedTotal metric.Int64Counter
	RunDuration        metric.Float64Histogram

	// Scan metrics
	ScansRecordedTotal  metric.Int64Counter
	ScansDuplicateTotal metric.Int64Counter
	SequenceRejections  metric.Int64Counter

	// Authorization metrics
	DeniedTotal metric.Int64Counter

	// Activity logs
	IncidentsTotal   metric.Int64Counter
	OccurrencesTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// Tracer returns the tracer used by the patrol service.
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(instrumentationName)
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	// Run lifecycle metrics
	m.RunsStartedTotal, _ = meter.Int64Counter(
		"patrol.runs.started.total",
		metric.WithDescription("Total number of route runs started"),
		metric.WithUnit("{run}"),
	)

	m.RunsCompletedTotal, _ = meter.Int64Counter(
		"patrol.runs.completed.total",
		metric.WithDescription("Total number of route runs completed, by reason"),
		metric.WithUnit("{run}"),
	)

	m.RunDuration, _ = meter.Float64Histogram(
		runDurationName,
		metric.WithDescription("Wall clock duration of completed route runs"),
		metric.WithUnit("s"),
	)

	// Scan metrics
	m.ScansRecordedTotal, _ = meter.Int64Counter(
		"patrol.scans.recorded.total",
		metric.WithDescription("Total number of checkpoint scans recorded"),
		metric.WithUnit("{scan}"),
	)

	m.ScansDuplicateTotal, _ = meter.Int64Counter(
		"patrol.scans.duplicate.total",
		metric.WithDescription("Total number of repeated scans answered with the existing record"),
		metric.WithUnit("{scan}"),
	)

	m.SequenceRejections, _ = meter.Int64Counter(
		"patrol.scans.rejected.total",
		metric.WithDescription("Total number of scans rejected by checkpoint ordering, by kind"),
		metric.WithUnit("{scan}"),
	)

	// Authorization metrics
	m.DeniedTotal, _ = meter.Int64Counter(
		"patrol.authz.denied.total",
		metric.WithDescription("Total number of denied operations, by kind"),
		metric.WithUnit("{request}"),
	)

	// Activity logs
	m.IncidentsTotal, _ = meter.Int64Counter(
		"patrol.incidents.total",
		metric.WithDescription("Total number of incidents reported"),
		metric.WithUnit("{incident}"),
	)

	m.OccurrencesTotal, _ = meter.Int64Counter(
		"patrol.occurrences.total",
		metric.WithDescription("Total number of occurrences logged, by type"),
		metric.WithUnit("{occurrence}"),
	)

	return m
}

// RecordRunCompleted counts a completed run and its duration.
func (m *Metrics) RecordRunCompleted(ctx context.Context, reason string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("reason", reason))
	m.RunsCompletedTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, seconds, attrs)
}

// RecordRejection counts an operation rejected with the given error kind.
func (m *Metrics) RecordRejection(ctx context.Context, counter metric.Int64Counter, kind string) {
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
