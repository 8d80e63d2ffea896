package dag

import (
	"sort"

	"github.com/kbukum/ticksim/errors"
)

// CostTable maps resource type to execution variant to duration in ticks.
type CostTable map[string]map[string]int

// Function is a named unit of work with its execution costs.
// It is immutable once constructed.
type Function struct {
	id    string
	costs CostTable
}

// NewFunction validates costs and returns a Function owning a private copy of them.
func NewFunction(id string, costs CostTable) (*Function, error) {
	if id == "" {
		return nil, errors.InvalidFunction(id, "id is required")
	}
	cp := make(CostTable, len(costs))
	for res, variants := range costs {
		if res == "" {
			return nil, errors.InvalidFunction(id, "resource type is empty")
		}
		inner := make(map[string]int, len(variants))
		for variant, ticks := range variants {
			if ticks <= 0 {
				return nil, errors.InvalidFunction(id, "cost must be a positive number of ticks").
					WithDetails(map[string]any{"resource": res, "variant": variant, "ticks": ticks})
			}
			inner[variant] = ticks
		}
		cp[res] = inner
	}
	return &Function{id: id, costs: cp}, nil
}

// ID returns the function's unique id.
func (f *Function) ID() string { return f.id }

// Cost returns the duration of variant on resource.
func (f *Function) Cost(resource, variant string) (int, bool) {
	variants, ok := f.costs[resource]
	if !ok {
		return 0, false
	}
	ticks, ok := variants[variant]
	return ticks, ok
}

// Resources returns the sorted resource types the function can run on.
func (f *Function) Resources() []string {
	out := make([]string, 0, len(f.costs))
	for res := range f.costs {
		out = append(out, res)
	}
	sort.Strings(out)
	return out
}

// Variants returns the sorted execution variants known for resource.
func (f *Function) Variants(resource string) []string {
	variants := f.costs[resource]
	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Costs returns a copy of the cost table.
func (f *Function) Costs() CostTable {
	cp := make(CostTable, len(f.costs))
	for res, variants := range f.costs {
		inner := make(map[string]int, len(variants))
		for v, t := range variants {
			inner[v] = t
		}
		cp[res] = inner
	}
	return cp
}
