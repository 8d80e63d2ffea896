package executor

import (
	"context"

	"github.com/kbukum/ticksim/logger"
	"github.com/kbukum/ticksim/message"
	"github.com/kbukum/ticksim/observability"
)

// WithTracing wraps a Stepper so every step runs in a span named
// "executor.step" carrying the executor, tick and result count.
func WithTracing(s Stepper) Stepper {
	return &tracingStepper{Stepper: s}
}

type tracingStepper struct {
	Stepper
}

func (s *tracingStepper) Step(ctx context.Context) []message.Result {
	ctx, span := observability.StartSpan(ctx, observability.SpanStep)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrExecutor, s.Name())
	observability.SetSpanAttribute(ctx, observability.AttrTick, int64(s.Clock()))
	observability.SetSpanAttribute(ctx, observability.AttrState, s.State().String())

	results := s.Stepper.Step(ctx)

	observability.SetSpanAttribute(ctx, observability.AttrResults, len(results))
	observability.SetSpanAttribute(ctx, observability.AttrPending, s.Pending())
	return results
}

// WithMetrics wraps a Stepper with step, admission and result metrics.
func WithMetrics(s Stepper, metrics *observability.Metrics) Stepper {
	return &metricsStepper{Stepper: s, metrics: metrics}
}

type metricsStepper struct {
	Stepper
	metrics *observability.Metrics
}

func (s *metricsStepper) Step(ctx context.Context) []message.Result {
	before := s.State()
	results := s.Stepper.Step(ctx)

	s.metrics.RecordStep(ctx, s.Name(), before.String(), s.Pending())
	if before == Idle && s.State() == Busy {
		if action, ok := s.Current(); ok {
			s.metrics.RecordAdmission(ctx, s.Name(), action.Function, action.Variant)
		}
	}
	for _, r := range results {
		s.metrics.RecordResult(ctx, s.Name(), r.Code.String(), string(r.Reason), int64(r.Latency()))
	}
	return results
}

// WithLogging wraps a Stepper with result logging. Successes and retryable
// errors log at debug, terminal errors at warn.
func WithLogging(s Stepper, log *logger.Logger) Stepper {
	return &loggingStepper{Stepper: s, log: log.WithExecutor(s.Name())}
}

type loggingStepper struct {
	Stepper
	log *logger.Logger
}

func (s *loggingStepper) Step(ctx context.Context) []message.Result {
	tick := s.Clock()
	results := s.Stepper.Step(ctx)

	log := s.log.WithContext(ctx)
	for _, r := range results {
		fields := map[string]interface{}{
			logger.FieldTick:      int64(tick),
			logger.FieldRequestID: r.Action.RequestID,
			logger.FieldFunction:  r.Action.Function,
			logger.FieldCode:      r.Code.String(),
			logger.FieldReason:    string(r.Reason),
		}
		switch {
		case r.OK(), r.Retryable():
			log.Debug(r.Message, fields)
		default:
			log.Warn(r.Message, fields)
		}
	}
	return results
}
