// Package validation provides input validation for workflow definitions and
// simulation configuration.
//
// Struct tag validation uses go-playground/validator:
//
//	type WorkerConfig struct {
//	    Resource string `validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic checks collect every failure before reporting:
//
//	v := validation.New()
//	v.Positive("simulation.ticks", cfg.Ticks)
//	v.Unique("simulation.workers.id", ids)
//	err := v.Error()
//
// Both paths return an *errors.AppError with code INVALID_INPUT and the
// failing fields under Details["fields"].
package validation
