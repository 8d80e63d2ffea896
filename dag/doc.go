// Package dag models workflows: functions with per-resource cost tables and
// the dependency graph that constrains the order they run in.
//
// A Workflow is built incrementally, then either queried for a fresh
// execution order (ExecutionOrder, Levels) or sealed with Begin and walked
// once through its cursor:
//
//	wf := dag.New("detect", dag.WithSLO(30))
//	_ = wf.AddEdge(preprocess, infer)
//	_ = wf.Begin()
//	for wf.HasNext() {
//		fn := wf.Advance()
//		...
//	}
//
// Ordering uses Kahn's algorithm over the graph's insertion order, so repeated
// calls on an unchanged workflow always agree.
package dag
