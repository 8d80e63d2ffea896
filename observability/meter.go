package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/ticksim/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows plain HTTP.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the simulation's instruments. Durations are in ticks.
type Metrics struct {
	steps      metric.Int64Counter
	pending    metric.Int64Histogram
	results    metric.Int64Counter
	latency    metric.Int64Histogram
	admissions metric.Int64Counter
	workflows  metric.Int64Counter
	makespan   metric.Int64Histogram
	arrivals   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.steps, err = meter.Int64Counter(MetricSteps,
		metric.WithDescription("Executor steps by state at the start of the step"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSteps, err)
	}
	if m.pending, err = meter.Int64Histogram(MetricPending,
		metric.WithDescription("Pending queue depth observed after each step"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricPending, err)
	}
	if m.results, err = meter.Int64Counter(MetricResults,
		metric.WithDescription("Results emitted by code and reason"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResults, err)
	}
	if m.latency, err = meter.Int64Histogram(MetricLatency,
		metric.WithDescription("Ticks between receipt and observation of a result"),
		metric.WithUnit("{tick}"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricLatency, err)
	}
	if m.admissions, err = meter.Int64Counter(MetricAdmissions,
		metric.WithDescription("Actions admitted for execution"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricAdmissions, err)
	}
	if m.workflows, err = meter.Int64Counter(MetricWorkflows,
		metric.WithDescription("Workflow instances finished by status"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricWorkflows, err)
	}
	if m.makespan, err = meter.Int64Histogram(MetricMakespan,
		metric.WithDescription("Ticks from workflow arrival to its last result"),
		metric.WithUnit("{tick}"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricMakespan, err)
	}
	if m.arrivals, err = meter.Int64Counter(MetricArrivals,
		metric.WithDescription("Workflow arrivals released"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricArrivals, err)
	}
	return &m, nil
}

// RecordStep records one executor step and the queue depth after it.
func (m *Metrics) RecordStep(ctx context.Context, executor, state string, pending int) {
	m.steps.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrExecutor, executor),
		attribute.String(AttrState, state),
	))
	m.pending.Record(ctx, int64(pending), metric.WithAttributes(
		attribute.String(AttrExecutor, executor),
	))
}

// RecordResult counts a result and records its latency; a negative latency
// is not recorded.
func (m *Metrics) RecordResult(ctx context.Context, executor, code, reason string, latency int64) {
	m.results.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrExecutor, executor),
		attribute.String(AttrCode, code),
		attribute.String(AttrReason, reason),
	))
	if latency >= 0 {
		m.latency.Record(ctx, latency, metric.WithAttributes(
			attribute.String(AttrExecutor, executor),
			attribute.String(AttrCode, code),
		))
	}
}

// RecordAdmission counts an admitted action.
func (m *Metrics) RecordAdmission(ctx context.Context, executor, function, variant string) {
	m.admissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrExecutor, executor),
		attribute.String(AttrFunction, function),
		attribute.String(AttrVariant, variant),
	))
}

// RecordArrival counts a released workflow arrival.
func (m *Metrics) RecordArrival(ctx context.Context, workflow string) {
	m.arrivals.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrWorkflow, workflow),
	))
}

// RecordWorkflow counts a finished workflow instance and its makespan.
func (m *Metrics) RecordWorkflow(ctx context.Context, workflow, status string, makespan int64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrWorkflow, workflow),
		attribute.String(AttrStatus, status),
	)
	m.workflows.Add(ctx, 1, attrs)
	m.makespan.Record(ctx, makespan, attrs)
}

// Metric names.
const (
	MetricSteps      = "ticksim.executor.steps"
	MetricPending    = "ticksim.executor.pending"
	MetricResults    = "ticksim.executor.results"
	MetricLatency    = "ticksim.executor.latency"
	MetricAdmissions = "ticksim.executor.admissions"
	MetricWorkflows  = "ticksim.workflow.finished"
	MetricMakespan   = "ticksim.workflow.makespan"
	MetricArrivals   = "ticksim.workflow.arrivals"
)
