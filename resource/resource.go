package resource

import (
	"sort"
	"sync"

	"github.com/kbukum/ticksim/dag"
)

// Resource is the compute an executor is bound to. Implementations must be
// safe for concurrent reads and IsAllocated must not have side effects.
type Resource interface {
	// Name is the resource type used to look up function costs.
	Name() string
	// IsAllocated reports whether fn is loaded under tag. An empty tag
	// matches any tag.
	IsAllocated(fn *dag.Function, tag string) bool
}

// Table is an in-memory Resource.
type Table struct {
	name string

	mu     sync.RWMutex
	loaded map[string]map[string]struct{}
}

var _ Resource = (*Table)(nil)

// NewTable creates an empty table for resource type name.
func NewTable(name string) *Table {
	return &Table{
		name:   name,
		loaded: make(map[string]map[string]struct{}),
	}
}

// Name returns the resource type.
func (t *Table) Name() string { return t.name }

// Load marks function fnID as loaded under tag.
func (t *Table) Load(fnID, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tags, ok := t.loaded[fnID]
	if !ok {
		tags = make(map[string]struct{})
		t.loaded[fnID] = tags
	}
	tags[tag] = struct{}{}
}

// Unload removes fnID under tag. An empty tag removes every tag.
func (t *Table) Unload(fnID, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tag == "" {
		delete(t.loaded, fnID)
		return
	}
	tags := t.loaded[fnID]
	delete(tags, tag)
	if len(tags) == 0 {
		delete(t.loaded, fnID)
	}
}

// Loaded returns the sorted tags fnID is loaded under.
func (t *Table) Loaded(fnID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tags := make([]string, 0, len(t.loaded[fnID]))
	for tag := range t.loaded[fnID] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Functions returns the sorted ids of every loaded function.
func (t *Table) Functions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.loaded))
	for id := range t.loaded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsAllocated implements Resource.
func (t *Table) IsAllocated(fn *dag.Function, tag string) bool {
	if fn == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	tags, ok := t.loaded[fn.ID()]
	if !ok {
		return false
	}
	if tag == "" {
		return len(tags) > 0
	}
	_, ok = tags[tag]
	return ok
}
