package eval

import (
	"testing"

	"ore/heap"
	"ore/types"
)

// runWithHeap evaluates with a tight GC threshold so collections happen
// mid-program
func runWithHeap(t *testing.T, threshold int, source string) (types.Result, *Evaluator) {
	t.Helper()
	prog := parseSrc(t, source)
	e := NewEvaluator(heap.New(threshold))
	return e.RunProgram(prog, types.NewContext()), e
}

// An allocation-heavy loop stays bounded: garbage from earlier
// iterations is collected while rooted data survives
func TestGCCollectsLoopGarbage(t *testing.T) {
	src := `
		keep = [];
		for i = 0, i < 500, i = i + 1 do
			tmp = "piece " .. i;
			tmp2 = [i, i + 1];
			if i % 100 == 0 then keep.push(i .. "!") end
		end;
		return #keep`
	result, e := runWithHeap(t, 50, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	if result.Val.(types.NumberValue).Val != 5 {
		t.Errorf("expected 5 kept pieces, got %s", result.Val)
	}
	if e.heap.Collections() == 0 {
		t.Fatal("the threshold should have forced collections")
	}

	// After a final collection only root-reachable objects remain.
	live := e.heap.Size()
	e.CollectGarbage()
	after := e.heap.Size()
	if after > live {
		t.Errorf("collection grew the heap? %d -> %d", live, after)
	}
	if after > 40 {
		t.Errorf("too many survivors for the rooted data: %d", after)
	}
}

// Values held only in Go locals mid-expression survive a collection
// triggered by a nested call
func TestGCProtectsInFlightArguments(t *testing.T) {
	src := `
		fn churn() for i = 0, i < 200, i = i + 1 do x = [i] end; return 0 end;
		fn pair(a, b) return a[0] + b end;
		return pair([41], churn() + 1)`
	result, _ := runWithHeap(t, 20, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	if result.Val.(types.NumberValue).Val != 42 {
		t.Errorf("in-flight argument was corrupted: %s", result.Val)
	}
}

// Closure environments survive collection as long as the closure does
func TestGCKeepsClosureEnvironments(t *testing.T) {
	src := `
		mk = fn() big = "payload"; n = 0; return fn() n = n + 1; return big .. n end end;
		f = mk();
		for i = 0, i < 300, i = i + 1 do waste = [i, "junk " .. i] end;
		return f()`
	result, e := runWithHeap(t, 25, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	if s, _ := e.heap.StringOf(result.Val); s != "payload1" {
		t.Errorf("captured state lost, got %q", s)
	}
}

// Cyclic graphs are reclaimed once unreachable
func TestGCReclaimsCycles(t *testing.T) {
	src := `
		fn cycle()
			a = {};
			b = {};
			a.peer = b;
			b.peer = a;
			return nil
		end;
		for i = 0, i < 100, i = i + 1 do cycle() end;
		return 1`
	result, e := runWithHeap(t, 10, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	e.CollectGarbage()
	if e.heap.Size() > 30 {
		t.Errorf("cyclic garbage not reclaimed, %d objects live", e.heap.Size())
	}
}

// The caught thrown value stays rooted while the catch handler runs
func TestGCRootsPendingThrow(t *testing.T) {
	src := `
		try
			throw "precious"
		catch e do
			for i = 0, i < 200, i = i + 1 do junk = ["garbage " .. i] end;
			return e
		end`
	result, e := runWithHeap(t, 15, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	if s, _ := e.heap.StringOf(result.Val); s != "precious" {
		t.Errorf("thrown value was collected mid-handler, got %q", s)
	}
}

// Exported values are roots
func TestGCRootsExportedValue(t *testing.T) {
	src := `
		export {answer: 42};
		for i = 0, i < 200, i = i + 1 do junk = "j" .. i end;
		return nil`
	result, e := runWithHeap(t, 15, src)
	if !result.IsNormal() {
		t.Fatalf("program failed: %s", result.Flow)
	}
	e.CollectGarbage()
	exported, ok := e.ExportedValue()
	if !ok {
		t.Fatal("export lost")
	}
	if got := e.heap.Inspect(exported); got != `{ "answer": 42, }` {
		t.Errorf("exported object damaged: %s", got)
	}
}
