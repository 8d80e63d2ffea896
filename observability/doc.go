// Package observability wires OpenTelemetry tracing and metrics into the
// simulator.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
//	defer span.End()
//
// Metrics are recorded in ticks, not wall time:
//
//	metrics, err := observability.NewMetrics(observability.Meter("ticksim"))
//	metrics.RecordResult(ctx, "Worker:0:InferExecutor", "success", "completed", 3)
//
// Setup installs both providers from a Config and is a no-op when telemetry
// is disabled.
package observability
