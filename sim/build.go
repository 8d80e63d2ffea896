package sim

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/ticksim/dag"
	apperrors "github.com/kbukum/ticksim/errors"
	"github.com/kbukum/ticksim/executor"
	"github.com/kbukum/ticksim/logger"
	"github.com/kbukum/ticksim/message"
	"github.com/kbukum/ticksim/observability"
	"github.com/kbukum/ticksim/resource"
)

// Build assembles a driver from cfg: it loads the workflows, creates one
// InferExecutor per worker with its functions preloaded and schedules the
// configured arrivals. Executors get metrics and tracing when telemetry is
// enabled. The run logger is registered under cfg.Name.
func Build(cfg *Config) (*Driver, error) {
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.Register(cfg.Name, log)

	workflows, err := loadWorkflows(cfg.Simulation.Workflows, cfg.Simulation.WorkflowDirs)
	if err != nil {
		return nil, err
	}
	catalog := dag.NewCatalog()
	for _, w := range workflows {
		catalog.Merge(w.Catalog())
	}

	opts := []DriverOption{WithDriverLogger(log)}
	var metrics *observability.Metrics
	if cfg.Telemetry.Enabled {
		if metrics, err = observability.NewMetrics(observability.Meter(cfg.Name)); err != nil {
			return nil, apperrors.Internal(err)
		}
		opts = append(opts, WithDriverMetrics(metrics))
	}
	d := NewDriver(opts...)

	for _, wc := range cfg.Simulation.Workers {
		table := resource.NewTable(wc.Resource)
		for _, id := range wc.Loaded {
			if _, ok := catalog.Get(id); !ok {
				return nil, apperrors.NotFound("function", id).WithDetail("worker", wc.ID)
			}
			table.Load(id, wc.Tag)
		}

		var s executor.Stepper = executor.NewInferExecutor(wc.ID, table, catalog,
			executor.WithTag(wc.Tag),
			executor.WithLogger(log),
		)
		s = executor.WithLogging(s, log)
		if metrics != nil {
			s = executor.WithMetrics(s, metrics)
			s = executor.WithTracing(s)
		}
		if err := d.AddExecutor(s, table); err != nil {
			return nil, err
		}
	}

	for _, ac := range cfg.Simulation.Arrivals {
		w, ok := workflows[ac.Workflow]
		if !ok {
			return nil, apperrors.NotFound("workflow", ac.Workflow)
		}
		if err := d.Schedule(GenerateArrivals(w, ac.Count, ac.Interval, message.Tick(ac.Start), ac.Variant)...); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Execute installs telemetry, builds the driver and runs it for the
// configured number of ticks.
func Execute(ctx context.Context, cfg *Config) (report Report, err error) {
	shutdown, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		err = errors.Join(err, shutdown(context.WithoutCancel(ctx)))
	}()

	d, err := Build(cfg)
	if err != nil {
		return Report{}, err
	}
	return d.Run(logger.ContextWithRunID(ctx, uuid.NewString()), cfg.Simulation.Ticks)
}

// loadWorkflows resolves each entry as a file path or a name under dirs and
// returns the workflows keyed by name.
func loadWorkflows(entries, dirs []string) (map[string]*dag.Workflow, error) {
	loader := dag.NewFileLoader(dirs...)
	out := make(map[string]*dag.Workflow, len(entries))
	for _, entry := range entries {
		var (
			w   *dag.Workflow
			err error
		)
		switch strings.ToLower(filepath.Ext(entry)) {
		case ".yaml", ".yml":
			w, err = dag.LoadWorkflow(entry)
		default:
			var def *dag.Definition
			if def, err = loader.Load(entry); err == nil {
				w, err = def.Build()
			}
		}
		if err != nil {
			return nil, err
		}
		if _, dup := out[w.Name()]; dup {
			return nil, apperrors.InvalidInput("workflows", fmt.Sprintf("workflow %q is defined twice", w.Name())).
				WithDetail("source", entry)
		}
		out[w.Name()] = w
	}
	return out, nil
}
