package dag

import (
	"sort"
	"sync"
)

// Catalog maps function names to their definitions. Executors consult it to
// recognise requests and look up costs.
type Catalog struct {
	mu        sync.RWMutex
	functions map[string]*Function
}

// NewCatalog creates a catalog holding fns.
func NewCatalog(fns ...*Function) *Catalog {
	c := &Catalog{functions: make(map[string]*Function, len(fns))}
	for _, fn := range fns {
		c.Register(fn)
	}
	return c
}

// Register adds fn, replacing any function with the same id.
func (c *Catalog) Register(fn *Function) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[fn.ID()] = fn
}

// Get retrieves a function by name.
func (c *Catalog) Get(name string) (*Function, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.functions[name]
	return fn, ok
}

// Len returns the number of registered functions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.functions)
}

// List returns sorted names of all registered functions.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge registers every function of other.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	fns := make([]*Function, 0, len(other.functions))
	for _, fn := range other.functions {
		fns = append(fns, fn)
	}
	other.mu.RUnlock()

	for _, fn := range fns {
		c.Register(fn)
	}
}
