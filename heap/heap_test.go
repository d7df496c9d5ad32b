package heap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ore/scope"
	"ore/types"
)

func TestAllocationHandsOutLiveRefs(t *testing.T) {
	h := New(0)
	obj := h.NewPlain()
	ref := obj.Ref()

	got, ok := h.Deref(ref)
	if !ok || got != obj {
		t.Fatal("a fresh ref should resolve to its object")
	}
	if h.Size() != 1 {
		t.Errorf("expected 1 live object, got %d", h.Size())
	}
}

func TestPropertyMapBasics(t *testing.T) {
	h := New(0)
	obj := h.NewPlain()

	if obj.Contains("k") {
		t.Error("fresh objects have no properties")
	}
	if obj.Get("k").Type() != types.TYPE_NIL {
		t.Error("missing properties read as nil, not an error")
	}

	obj.Put("b", types.NewNumber(2))
	obj.Put("a", types.NewNumber(1))
	obj.Put("b", types.NewNumber(3))

	if diff := cmp.Diff([]string{"b", "a"}, obj.Keys()); diff != "" {
		t.Errorf("keys should keep insertion order (-want +got):\n%s", diff)
	}
	if obj.Get("b").(types.NumberValue).Val != 3 {
		t.Error("puts overwrite in place")
	}
}

// o[1] and o["1"] collide: number keys coerce to their decimal string
func TestNumericKeyCoercion(t *testing.T) {
	h := New(0)

	key, ok := h.PropertyKey(types.NewNumber(1))
	if !ok || key != "1" {
		t.Fatalf("number key: got %q", key)
	}
	key, ok = h.PropertyKey(h.NewString("1").Ref())
	if !ok || key != "1" {
		t.Fatalf("string key: got %q", key)
	}
	if _, ok := h.PropertyKey(types.NewBool(true)); ok {
		t.Error("bools are not property keys")
	}
	if _, ok := h.PropertyKey(h.NewArray(nil).Ref()); ok {
		t.Error("arrays are not property keys")
	}
}

func TestArraySemantics(t *testing.T) {
	h := New(0)
	arr := h.NewArray([]types.Value{types.NewNumber(10)})

	if arr.IndexGet(5).Type() != types.TYPE_NIL {
		t.Error("out-of-range reads yield nil")
	}

	arr.IndexSet(3, types.NewNumber(40))
	if arr.Len() != 4 {
		t.Fatalf("write should extend to length 4, got %d", arr.Len())
	}
	if arr.IndexGet(1).Type() != types.TYPE_NIL || arr.IndexGet(2).Type() != types.TYPE_NIL {
		t.Error("intervening slots fill with nils")
	}

	arr.Push(types.NewNumber(50))
	if arr.Len() != 5 {
		t.Error("push should append")
	}
	if arr.Pop().(types.NumberValue).Val != 50 {
		t.Error("pop should return the last element")
	}

	empty := h.NewArray(nil)
	if empty.Pop().Type() != types.TYPE_NIL {
		t.Error("popping an empty array yields nil")
	}
}

func TestExceptionObjectsMirrorKindAndMessage(t *testing.T) {
	h := New(0)
	exc := h.NewException(types.ExcType, "bad operand")

	if exc.ExceptionKind() != types.ExcType || exc.ExceptionMessage() != "bad operand" {
		t.Error("exception state lost")
	}
	kind, _ := h.StringOf(exc.Get("kind"))
	if kind != "TypeError" {
		t.Errorf("kind property: got %q", kind)
	}
	msg, _ := h.StringOf(exc.Get("message"))
	if msg != "bad operand" {
		t.Errorf("message property: got %q", msg)
	}
}

func TestCollectSweepsUnreachable(t *testing.T) {
	h := New(0)
	root := scope.New()

	kept := h.NewPlain()
	root.Declare("kept", kept.Ref())
	h.NewPlain() // garbage
	h.NewString("garbage")

	swept := h.Collect(Roots{Scopes: []*scope.Scope{root}})
	if swept < 2 {
		t.Errorf("expected at least 2 swept, got %d", swept)
	}
	if _, ok := h.Get(kept.Handle()); !ok {
		t.Error("rooted object must survive")
	}
}

// Closures referencing scopes that contain the closure form cycles;
// reachability-based marking collects them once the scope is dropped
func TestCollectHandlesCycles(t *testing.T) {
	h := New(0)
	root := scope.New()

	captured := scope.NewBlock(root)
	fn := h.NewFunction("loop", nil, nil, captured)
	captured.Declare("self", fn.Ref())

	a := h.NewPlain()
	b := h.NewPlain()
	a.Put("other", b.Ref())
	b.Put("other", a.Ref())
	root.Declare("a", a.Ref())

	// fn is reachable only through its own captured scope: garbage
	swept := h.Collect(Roots{Scopes: []*scope.Scope{root}})
	if swept == 0 {
		t.Error("the closure cycle should have been collected")
	}
	if _, ok := h.Get(a.Handle()); !ok {
		t.Error("a is rooted")
	}
	if _, ok := h.Get(b.Handle()); !ok {
		t.Error("b is reachable through the a<->b cycle from the root")
	}
	if _, ok := h.Get(fn.Handle()); ok {
		t.Error("the unrooted closure should be gone")
	}
}

func TestCollectFollowsCapturedScopes(t *testing.T) {
	h := New(0)
	root := scope.New()

	captured := scope.NewBlock(scope.New())
	cell := h.NewPlain()
	captured.Declare("cell", cell.Ref())
	fn := h.NewFunction("", nil, nil, captured)
	root.Declare("f", fn.Ref())

	h.Collect(Roots{Scopes: []*scope.Scope{root}})
	if _, ok := h.Get(cell.Handle()); !ok {
		t.Error("values in a closure's captured scope are reachable")
	}
}

func TestCollectRootsInFlightValues(t *testing.T) {
	h := New(0)
	temp := h.NewArray([]types.Value{h.NewString("x").Ref()})

	h.Collect(Roots{Values: []types.Value{temp.Ref()}})
	if _, ok := h.Get(temp.Handle()); !ok {
		t.Error("in-flight values are roots")
	}
	if h.Size() != 2 {
		t.Errorf("array and element should survive, have %d", h.Size())
	}
}

type closeRecorder struct {
	closed *bool
}

func (c closeRecorder) Close() error {
	*c.closed = true
	return nil
}

// Sweeping an FFI module releases its library handle
func TestSweepClosesModuleHandles(t *testing.T) {
	h := New(0)
	closed := false
	h.NewModule(closeRecorder{closed: &closed})

	h.Collect(Roots{})
	if !closed {
		t.Error("sweep should close the module's library handle")
	}
}

func TestShouldCollectThreshold(t *testing.T) {
	h := New(3)
	if h.ShouldCollect() {
		t.Error("fresh heap should not want a collection")
	}
	h.NewPlain()
	h.NewPlain()
	h.NewPlain()
	if !h.ShouldCollect() {
		t.Error("threshold crossed, collection due")
	}
	h.Collect(Roots{})
	if h.ShouldCollect() {
		t.Error("collection resets the allocation counter")
	}
}

func TestDisplayAndInspect(t *testing.T) {
	h := New(0)

	str := h.NewString("hi").Ref()
	if h.Display(str) != "hi" {
		t.Error("display renders strings bare")
	}
	if h.Inspect(str) != `"hi"` {
		t.Error("inspect quotes strings")
	}

	arr := h.NewArray([]types.Value{types.NewNumber(1), str, types.NewNil()}).Ref()
	if got := h.Inspect(arr); got != `[1, "hi", nil]` {
		t.Errorf("array inspect: got %s", got)
	}

	obj := h.NewPlain()
	obj.Put("n", types.NewNumber(2))
	if got := h.Inspect(obj.Ref()); got != `{ "n": 2, }` {
		t.Errorf("object inspect: got %s", got)
	}

	// self-referential structures terminate
	cyc := h.NewArray(nil)
	cyc.Push(cyc.Ref())
	if got := h.Inspect(cyc.Ref()); got != "[...]" {
		t.Errorf("cycle inspect: got %s", got)
	}
}
