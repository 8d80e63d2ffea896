package dag

import (
	"github.com/kbukum/ticksim/errors"
)

// Edge represents a dependency: From must run before To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph over function ids that remembers insertion order.
type Graph struct {
	nodes []string
	index map[string]int
	edges []Edge
	seen  map[Edge]struct{}
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		seen:  make(map[Edge]struct{}),
	}
}

// AddNode adds id and reports whether it was new.
func (g *Graph) AddNode(id string) bool {
	if _, ok := g.index[id]; ok {
		return false
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
	return true
}

// AddEdge adds from → to, creating missing endpoints. Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	e := Edge{From: from, To: to}
	if _, ok := g.seen[e]; ok {
		return
	}
	g.seen[e] = struct{}{}
	g.edges = append(g.edges, e)
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Predecessors returns the direct dependencies of id.
func (g *Graph) Predecessors(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

// Successors returns the functions that directly depend on id.
func (g *Graph) Successors(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, n := range g.nodes {
		c.AddNode(n)
	}
	for _, e := range g.edges {
		c.AddEdge(e.From, e.To)
	}
	return c
}

// IsAcyclic reports whether the graph has no directed cycle.
func (g *Graph) IsAcyclic() bool {
	_, err := TopologicalOrder(g.nodes, g.edges)
	return err == nil
}

// TopologicalOrder linearises nodes so that every edge points forward.
// Ties are broken by position in nodes, so the result is deterministic.
// Returns an error if an edge references an unknown node or a cycle exists.
func TopologicalOrder(nodes []string, edges []Edge) ([]string, error) {
	levels, err := BuildLevels(nodes, edges)
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(nodes))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within the same level do not depend on each other.
// Returns an error if a cycle is detected.
func BuildLevels(nodes []string, edges []Edge) ([][]string, error) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string) // from -> [to...]

	for _, name := range nodes {
		inDegree[name] = 0
	}

	for _, e := range edges {
		if _, ok := inDegree[e.From]; !ok {
			return nil, errors.InvalidInput("edge", "edge references unknown node "+e.From)
		}
		if _, ok := inDegree[e.To]; !ok {
			return nil, errors.InvalidInput("edge", "edge references unknown node "+e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	// Level 0 keeps the caller's node order.
	var queue []string
	for _, name := range nodes {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(nodes) {
		return nil, errors.CycleDetected(visited, len(nodes))
	}

	return levels, nil
}
