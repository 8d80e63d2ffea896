package resource

import (
	"sync"
	"testing"

	"github.com/kbukum/ticksim/dag"
)

func mustFn(t *testing.T, id string) *dag.Function {
	t.Helper()
	fn, err := dag.NewFunction(id, dag.CostTable{"gpu": {"1": 1}})
	if err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestTable_IsAllocated(t *testing.T) {
	table := NewTable("gpu")
	infer := mustFn(t, "infer")
	table.Load("infer", "v2")

	tests := []struct {
		name string
		fn   *dag.Function
		tag  string
		want bool
	}{
		{"exact tag", infer, "v2", true},
		{"any tag", infer, "", true},
		{"other tag", infer, "v1", false},
		{"not loaded", mustFn(t, "other"), "", false},
		{"nil function", nil, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := table.IsAllocated(tc.fn, tc.tag); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
	if table.Name() != "gpu" {
		t.Errorf("expected name gpu, got %q", table.Name())
	}
}

func TestTable_LoadUnload(t *testing.T) {
	table := NewTable("gpu")
	table.Load("infer", "b")
	table.Load("infer", "a")
	table.Load("embed", "")

	if got := table.Loaded("infer"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected tags %v", got)
	}
	if got := table.Functions(); len(got) != 2 || got[0] != "embed" {
		t.Fatalf("unexpected functions %v", got)
	}

	table.Unload("infer", "a")
	if got := table.Loaded("infer"); len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected only b left, got %v", got)
	}
	table.Unload("infer", "b")
	if table.IsAllocated(mustFn(t, "infer"), "") {
		t.Fatal("expected infer to be fully unloaded")
	}

	table.Load("embed", "x")
	table.Unload("embed", "")
	if len(table.Loaded("embed")) != 0 {
		t.Fatal("empty tag must unload every tag")
	}
}

func TestTable_ConcurrentReads(t *testing.T) {
	table := NewTable("gpu")
	fn := mustFn(t, "infer")
	table.Load("infer", "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !table.IsAllocated(fn, "") {
					t.Error("expected allocated")
					return
				}
			}
		}()
	}
	wg.Wait()
}
