// Package logger provides structured logging for the simulator using
// zerolog.
//
// Executors and the reference driver log every scheduling decision at
// debug level with the logical tick attached, so a run can be replayed from
// its log alone.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("executor").WithExecutor("Worker:0:InferExecutor")
//	log.Debug("admitted", logger.Fields(logger.FieldTick, 3, logger.FieldFunction, "infer"))
package logger
