// Package executor implements tick-driven executors that admit and run
// requests on a single resource.
//
// An Executor owns a logical clock and a pending queue ordered by each
// entry's earliest eligible tick. A driver calls Step once per tick; every
// call advances the clock by one and returns the Results decided during that
// tick. InferExecutor applies the admission rules for inference requests:
// unknown functions and missed deadlines are dropped, requests whose function
// is not loaded on the resource are retried on a later tick, and the first
// admissible request occupies the executor for its cost in ticks.
//
// Decorators add logging, metrics and tracing around Step:
//
//	var s executor.Stepper = executor.NewInferExecutor(0, table, catalog)
//	s = executor.WithLogging(s, log)
//	s = executor.WithMetrics(s, metrics)
//	results := s.Step(ctx)
package executor
