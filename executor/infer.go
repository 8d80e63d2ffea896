package executor

import (
	"context"
	"fmt"

	"github.com/kbukum/ticksim/dag"
	"github.com/kbukum/ticksim/logger"
	"github.com/kbukum/ticksim/message"
	"github.com/kbukum/ticksim/resource"
)

// InferExecutor runs inference requests on one resource, consulting a
// catalog for the functions it recognises and their costs.
type InferExecutor struct {
	*Executor

	workerID int
	resource resource.Resource
	catalog  *dag.Catalog
	tag      string
	log      *logger.Logger
}

var _ Stepper = (*InferExecutor)(nil)

// InferOption configures an InferExecutor.
type InferOption func(*InferExecutor)

// WithTag restricts the allocation check to functions loaded under tag.
func WithTag(tag string) InferOption {
	return func(e *InferExecutor) { e.tag = tag }
}

// WithLogger sets the logger used for per-decision debug output.
func WithLogger(log *logger.Logger) InferOption {
	return func(e *InferExecutor) { e.log = log }
}

// NewInferExecutor creates an idle executor named "Worker:<id>:InferExecutor".
func NewInferExecutor(workerID int, res resource.Resource, catalog *dag.Catalog, opts ...InferOption) *InferExecutor {
	if catalog == nil {
		catalog = dag.NewCatalog()
	}
	e := &InferExecutor{
		Executor: NewExecutor(fmt.Sprintf("Worker:%d:InferExecutor", workerID)),
		workerID: workerID,
		resource: res,
		catalog:  catalog,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithExecutor(e.Name())
	return e
}

// WorkerID returns the worker number the executor was created with.
func (e *InferExecutor) WorkerID() int { return e.workerID }

// Resource returns the bound resource.
func (e *InferExecutor) Resource() resource.Resource { return e.resource }

// Step runs one tick. A busy executor works on its current action and emits
// Success when it finishes. An idle executor examines due entries in order:
// terminal errors are dropped and examination continues; a not-loaded entry
// is requeued and examination stops; the first admissible entry is admitted.
// The clock advances by one in every case.
func (e *InferExecutor) Step(_ context.Context) []message.Result {
	var results []message.Result

	if !e.IsFree() {
		if done, received, ok := e.work(); ok {
			observed := e.clock + 1
			results = append(results, message.Succeeded(done, received, observed,
				fmt.Sprintf("INFER was run on Model: %s for Request: %s by %s at time %d",
					done.Function, done.RequestID, e.name, observed)))
			e.log.Debug("action completed", e.fields(done, logger.FieldReason, message.ReasonCompleted))
		}
		e.tick()
		return results
	}

	for {
		head, ok := e.queue.Peek()
		if !ok || head.Earliest > e.clock {
			break
		}
		entry, _ := e.queue.Pop()
		result, admitted, requeue := e.examine(entry)
		if result != nil {
			results = append(results, *result)
		}
		if requeue {
			e.queue.Requeue(entry)
		}
		if admitted || requeue {
			break
		}
	}

	e.tick()
	return results
}

// examine applies the admission checks to one due entry. It returns the
// Result to emit, whether the entry was admitted and whether it must be
// requeued.
func (e *InferExecutor) examine(entry Entry) (*message.Result, bool, bool) {
	action := entry.Action

	fn, ok := e.catalog.Get(action.Function)
	if !ok {
		r := message.Failed(message.ReasonUnknownFunction, action, entry.Received, e.clock,
			fmt.Sprintf("Model: %s is not recognized by %s.", action.Function, e.name))
		e.log.Debug("request dropped", e.fields(action, logger.FieldReason, r.Reason))
		return &r, false, false
	}

	if action.Expired(e.clock) {
		r := message.Failed(message.ReasonDeadlineMissed, action, entry.Received, e.clock,
			fmt.Sprintf("INFER for Request: %s and Model: %s could not be serviced by %s in time.",
				action.RequestID, action.Function, e.name))
		e.log.Debug("request dropped", e.fields(action, logger.FieldReason, r.Reason))
		return &r, false, false
	}

	if !e.resource.IsAllocated(fn, e.tag) {
		r := message.Failed(message.ReasonNotLoaded, action, entry.Received, e.clock,
			fmt.Sprintf("Model: %s is not LOADED at time %d so INFER cannot proceed",
				action.Function, e.clock))
		e.log.Debug("request deferred", e.fields(action, logger.FieldReason, r.Reason))
		return &r, false, true
	}

	cost, ok := fn.Cost(e.resource.Name(), action.Variant)
	if !ok {
		r := message.Failed(message.ReasonUnknownVariant, action, entry.Received, e.clock,
			fmt.Sprintf("Model: %s has no cost for variant %s on %s.",
				action.Function, action.Variant, e.resource.Name()))
		e.log.Debug("request dropped", e.fields(action, logger.FieldReason, r.Reason))
		return &r, false, false
	}

	e.admit(entry, cost)
	e.log.Debug("request admitted", e.fields(action, logger.FieldRemaining, cost))
	return nil, true, false
}

func (e *InferExecutor) fields(action message.Action, kvs ...any) map[string]interface{} {
	f := logger.Fields(kvs...)
	f[logger.FieldTick] = int64(e.clock)
	f[logger.FieldFunction] = action.Function
	f[logger.FieldVariant] = action.Variant
	f[logger.FieldRequestID] = action.RequestID
	return f
}
