package dag

import (
	"sort"

	"github.com/kbukum/ticksim/errors"
)

// Workflow owns a set of functions and the dependency graph over them.
type Workflow struct {
	name      string
	slo       *int
	functions map[string]*Function
	graph     *Graph
	sealed    bool

	order []*Function
	pos   int
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithSLO sets the workflow's service level objective in ticks.
func WithSLO(ticks int) Option {
	return func(w *Workflow) { w.slo = &ticks }
}

// New creates an empty, unsealed workflow.
func New(name string, opts ...Option) *Workflow {
	w := &Workflow{
		name:      name,
		functions: make(map[string]*Function),
		graph:     NewGraph(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FromFunctions creates a workflow pre-populated with fns.
func FromFunctions(name string, fns []*Function, opts ...Option) (*Workflow, error) {
	w := New(name, opts...)
	for _, fn := range fns {
		if err := w.AddFunction(fn); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// SLO returns the service level objective, if one was set.
func (w *Workflow) SLO() (int, bool) {
	if w.slo == nil {
		return 0, false
	}
	return *w.slo, true
}

// Sealed reports whether structural mutation is still allowed.
func (w *Workflow) Sealed() bool { return w.sealed }

// Len returns the number of functions.
func (w *Workflow) Len() int { return len(w.functions) }

// Contains reports whether a function with id exists.
func (w *Workflow) Contains(id string) bool {
	_, ok := w.functions[id]
	return ok
}

// Get returns the function with id.
func (w *Workflow) Get(id string) (*Function, bool) {
	fn, ok := w.functions[id]
	return fn, ok
}

// Functions returns the functions in the order they were added.
func (w *Workflow) Functions() []*Function {
	out := make([]*Function, 0, len(w.functions))
	for _, id := range w.graph.Nodes() {
		if fn, ok := w.functions[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Edges returns the dependency edges in insertion order.
func (w *Workflow) Edges() []Edge { return w.graph.Edges() }

// DependencyGraph returns a copy of the dependency graph.
func (w *Workflow) DependencyGraph() *Graph { return w.graph.Clone() }

// AddFunction adds fn and its graph node.
func (w *Workflow) AddFunction(fn *Function) error {
	if w.sealed {
		return errors.Sealed(w.name, "add function")
	}
	if fn == nil {
		return errors.InvalidInput("function", "function is nil")
	}
	if _, ok := w.functions[fn.ID()]; ok {
		return errors.DuplicateFunction(w.name, fn.ID())
	}
	w.functions[fn.ID()] = fn
	w.graph.AddNode(fn.ID())
	return nil
}

// AddEdge records that from must run before to, adding either function if absent.
func (w *Workflow) AddEdge(from, to *Function) error {
	if w.sealed {
		return errors.Sealed(w.name, "add edge")
	}
	if from == nil || to == nil {
		return errors.InvalidInput("function", "edge endpoint is nil")
	}
	for _, fn := range []*Function{from, to} {
		if !w.Contains(fn.ID()) {
			if err := w.AddFunction(fn); err != nil {
				return err
			}
		}
	}
	w.graph.AddEdge(from.ID(), to.ID())
	return nil
}

// Validate checks that the graph covers exactly the functions and is acyclic.
func (w *Workflow) Validate() error {
	if err := w.checkNodes(); err != nil {
		return err
	}
	if _, err := TopologicalOrder(w.graph.nodes, w.graph.edges); err != nil {
		return w.annotate(err)
	}
	return nil
}

// ExecutionOrder returns a fresh topological ordering of all functions.
func (w *Workflow) ExecutionOrder() ([]*Function, error) {
	if err := w.checkNodes(); err != nil {
		return nil, err
	}
	ids, err := TopologicalOrder(w.graph.nodes, w.graph.edges)
	if err != nil {
		return nil, w.annotate(err)
	}
	return w.resolve(ids), nil
}

// Levels groups functions by dependency depth; functions in a level are independent.
func (w *Workflow) Levels() ([][]*Function, error) {
	if err := w.checkNodes(); err != nil {
		return nil, err
	}
	levels, err := BuildLevels(w.graph.nodes, w.graph.edges)
	if err != nil {
		return nil, w.annotate(err)
	}
	out := make([][]*Function, len(levels))
	for i, level := range levels {
		out[i] = w.resolve(level)
	}
	return out, nil
}

// Clone returns an unsealed copy sharing the immutable functions.
func (w *Workflow) Clone() *Workflow {
	c := &Workflow{
		name:      w.name,
		functions: make(map[string]*Function, len(w.functions)),
		graph:     w.graph.Clone(),
	}
	if w.slo != nil {
		slo := *w.slo
		c.slo = &slo
	}
	for id, fn := range w.functions {
		c.functions[id] = fn
	}
	return c
}

// Catalog returns a catalog holding every function of the workflow.
func (w *Workflow) Catalog() *Catalog {
	return NewCatalog(w.Functions()...)
}

func (w *Workflow) checkNodes() error {
	var missing, extra []string
	for id := range w.functions {
		if !w.graph.HasNode(id) {
			missing = append(missing, id)
		}
	}
	for _, id := range w.graph.nodes {
		if _, ok := w.functions[id]; !ok {
			extra = append(extra, id)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return errors.GraphMismatch(w.name, missing, extra)
}

func (w *Workflow) annotate(err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail("workflow", w.name)
	}
	return err
}

func (w *Workflow) resolve(ids []string) []*Function {
	out := make([]*Function, len(ids))
	for i, id := range ids {
		out[i] = w.functions[id]
	}
	return out
}
