package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/kbukum/ticksim/dag"
	"github.com/kbukum/ticksim/errors"
	"github.com/kbukum/ticksim/executor"
	"github.com/kbukum/ticksim/logger"
	"github.com/kbukum/ticksim/message"
	"github.com/kbukum/ticksim/observability"
	"github.com/kbukum/ticksim/resource"
)

// Driver steps a fleet of executors and walks workflow instances through them.
// It is not safe for concurrent use.
type Driver struct {
	workers   []worker
	arrivals  []Arrival
	next      int
	ids       map[string]struct{} // every scheduled arrival id
	clock     message.Tick
	instances map[string]*instance // keyed by request id
	collector *Collector
	metrics   *observability.Metrics
	log       *logger.Logger
}

type worker struct {
	stepper  executor.Stepper
	resource resource.Resource
}

// instance is one arrival's walk through its workflow.
type instance struct {
	id       string
	workflow *dag.Workflow
	variant  string
	arrived  message.Tick
	deadline message.Tick
	slo      int
	hasSLO   bool
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithDriverLogger sets the driver's logger.
func WithDriverLogger(log *logger.Logger) DriverOption {
	return func(d *Driver) { d.log = log }
}

// WithDriverMetrics records arrival and workflow metrics.
func WithDriverMetrics(m *observability.Metrics) DriverOption {
	return func(d *Driver) { d.metrics = m }
}

// WithCollector replaces the driver's collector.
func WithCollector(c *Collector) DriverOption {
	return func(d *Driver) { d.collector = c }
}

// NewDriver creates a driver with no executors at tick 0.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		instances: make(map[string]*instance),
		ids:       make(map[string]struct{}),
		collector: NewCollector(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithComponent("driver")
	return d
}

// AddExecutor registers s, bound to res, for placement. Executors are
// stepped in registration order. The executor's clock must equal the
// driver's, since deadlines and eligibility ticks are taken from the driver.
func (d *Driver) AddExecutor(s executor.Stepper, res resource.Resource) error {
	if s == nil {
		return errors.InvalidInput("executor", "executor is nil")
	}
	if s.Clock() != d.clock {
		return errors.InvalidInput("executor",
			fmt.Sprintf("%s is at tick %d but the driver is at tick %d", s.Name(), s.Clock(), d.clock)).
			WithDetails(map[string]any{"executor": s.Name(), "executor_tick": int64(s.Clock()), "tick": int64(d.clock)})
	}
	d.workers = append(d.workers, worker{stepper: s, resource: res})
	return nil
}

// Schedule adds arrivals. Arrivals due at the same tick are released in the
// order they were scheduled. Ids must be non-empty and unique across every
// call; on error nothing is scheduled.
func (d *Driver) Schedule(arrivals ...Arrival) error {
	batch := make(map[string]struct{}, len(arrivals))
	for _, a := range arrivals {
		if a.ID == "" {
			return errors.InvalidInput("arrivals", "arrival id is empty")
		}
		_, seen := d.ids[a.ID]
		if _, dup := batch[a.ID]; seen || dup {
			return errors.InvalidInput("arrivals", fmt.Sprintf("arrival id %q is already scheduled", a.ID)).
				WithDetail("arrival", a.ID)
		}
		batch[a.ID] = struct{}{}
	}
	for id := range batch {
		d.ids[id] = struct{}{}
	}

	d.arrivals = append(d.arrivals, arrivals...)
	pending := d.arrivals[d.next:]
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Tick < pending[j].Tick })
	return nil
}

// Clock returns the current tick.
func (d *Driver) Clock() message.Tick { return d.clock }

// Collector returns the driver's collector.
func (d *Driver) Collector() *Collector { return d.collector }

// Report returns a snapshot of the run so far.
func (d *Driver) Report() Report { return d.collector.Report(d.clock) }

// Tick releases due arrivals, steps every executor once and routes the
// results. It fails only on a structural error in an arriving workflow.
func (d *Driver) Tick(ctx context.Context) error {
	if len(d.workers) == 0 {
		return errors.InvalidInput("executors", "driver has no executors")
	}

	for d.next < len(d.arrivals) && d.arrivals[d.next].Tick <= d.clock {
		a := d.arrivals[d.next]
		d.next++
		if err := d.release(ctx, a); err != nil {
			return err
		}
	}

	for _, w := range d.workers {
		for _, r := range w.stepper.Step(ctx) {
			d.route(ctx, r)
		}
	}

	d.clock++
	return nil
}

// Run calls Tick ticks times inside a span and returns the final report.
// It stops early when ctx is done.
func (d *Driver) Run(ctx context.Context, ticks int) (Report, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()

	log := d.log.WithContext(ctx)
	log.Info("simulation started", logger.Fields(
		logger.FieldTick, int64(d.clock),
		"ticks", ticks,
		"executors", len(d.workers),
		"arrivals", len(d.arrivals)-d.next,
	))

	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			observability.SetSpanError(ctx, err)
			return d.Report(), err
		}
		if err := d.Tick(ctx); err != nil {
			observability.SetSpanError(ctx, err)
			log.Error("simulation aborted", logger.MergeWithError(logger.Fields(logger.FieldTick, int64(d.clock)), err))
			return d.Report(), err
		}
	}

	report := d.Report()
	observability.SetSpanAttribute(ctx, observability.AttrTick, int64(report.Ticks))
	observability.SetSpanAttribute(ctx, "completed", report.Completed)
	observability.SetSpanAttribute(ctx, "failed", report.Failed)
	log.Info("simulation finished", logger.Fields(
		logger.FieldTick, int64(report.Ticks),
		"results", report.Results,
		"completed", report.Completed,
		"failed", report.Failed,
		"in_flight", report.InFlight,
	))
	return report, nil
}

func (d *Driver) release(ctx context.Context, a Arrival) error {
	if a.Workflow == nil {
		return errors.InvalidInput("workflow", "arrival has no workflow").WithDetail("arrival", a.ID)
	}
	w := a.Workflow.Clone()
	if err := w.Begin(); err != nil {
		return err
	}

	inst := &instance{
		id:       a.ID,
		workflow: w,
		variant:  a.Variant,
		arrived:  d.clock,
		deadline: message.Never,
	}
	if slo, ok := w.SLO(); ok {
		inst.slo, inst.hasSLO = slo, true
		inst.deadline = d.clock + message.Tick(slo)
	}

	d.collector.Arrived()
	if d.metrics != nil {
		d.metrics.RecordArrival(ctx, w.Name())
	}
	d.log.Debug("workflow arrived", logger.Fields(
		logger.FieldWorkflow, w.Name(),
		logger.FieldRequestID, a.ID,
		logger.FieldTick, int64(d.clock),
	))

	if !w.HasNext() {
		d.complete(ctx, inst, d.clock)
		return nil
	}
	d.submit(inst, w.Advance(), d.clock)
	return nil
}

// submit places fn on an executor, eligible and received at tick at.
func (d *Driver) submit(inst *instance, fn *dag.Function, at message.Tick) {
	action := message.Action{
		Function:  fn.ID(),
		Variant:   inst.variant,
		RequestID: fmt.Sprintf("%s/%s", inst.id, fn.ID()),
		Deadline:  inst.deadline,
	}
	w := d.place(fn)
	w.stepper.Submit(at, action, at)
	d.instances[action.RequestID] = inst
}

// place picks the first executor whose resource has fn loaded, otherwise the
// executor with the fewest pending requests.
func (d *Driver) place(fn *dag.Function) worker {
	for _, w := range d.workers {
		if w.resource != nil && w.resource.IsAllocated(fn, "") {
			return w
		}
	}
	best := d.workers[0]
	for _, w := range d.workers[1:] {
		if w.stepper.Pending() < best.stepper.Pending() {
			best = w
		}
	}
	return best
}

func (d *Driver) route(ctx context.Context, r message.Result) {
	d.collector.Record(r)

	inst, ok := d.instances[r.Action.RequestID]
	if !ok {
		return
	}

	err := r.Err()
	switch {
	case err == nil:
		delete(d.instances, r.Action.RequestID)
		if inst.workflow.HasNext() {
			d.submit(inst, inst.workflow.Advance(), r.Observed)
			return
		}
		d.complete(ctx, inst, r.Observed)
	case errors.IsRetryable(err):
		// The executor keeps the request queued.
	default:
		delete(d.instances, r.Action.RequestID)
		appErr, _ := errors.AsAppError(err)
		d.collector.Failed(appErr.Code)
		if d.metrics != nil {
			d.metrics.RecordWorkflow(ctx, inst.workflow.Name(), "failed", int64(r.Observed-inst.arrived))
		}
		d.log.Debug("workflow failed", logger.MergeWithError(logger.Fields(
			logger.FieldWorkflow, inst.workflow.Name(),
			logger.FieldRequestID, r.Action.RequestID,
			logger.FieldCode, string(appErr.Code),
		), err))
	}
}

func (d *Driver) complete(ctx context.Context, inst *instance, at message.Tick) {
	makespan := at - inst.arrived
	within := !inst.hasSLO || makespan <= message.Tick(inst.slo)
	d.collector.Completed(makespan, within)
	if d.metrics != nil {
		d.metrics.RecordWorkflow(ctx, inst.workflow.Name(), "completed", int64(makespan))
	}
	d.log.Debug("workflow completed", logger.Fields(
		logger.FieldWorkflow, inst.workflow.Name(),
		logger.FieldRequestID, inst.id,
		"makespan", int64(makespan),
	))
}
