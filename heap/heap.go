// Package heap owns every reference-typed Ore value. Allocation hands
// out fresh handles; a mark-and-sweep collector reclaims objects no
// longer reachable from the roots the evaluator supplies at safe
// points. Reachability-based marking is what makes cyclic object graphs
// (closures capturing scopes that contain the closure) collectable.
package heap

import (
	"github.com/iancoleman/orderedmap"

	"ore/parser"
	"ore/scope"
	"ore/types"
)

// DefaultGCThreshold is the number of allocations between collections
// when the embedder does not configure one.
const DefaultGCThreshold = 10000

// Heap owns all allocated objects
type Heap struct {
	objects       map[types.Handle]*Object
	nextHandle    types.Handle
	allocsSinceGC int
	threshold     int
	collections   int
	swept         int
}

// New creates a heap. A threshold <= 0 selects the default.
func New(threshold int) *Heap {
	if threshold <= 0 {
		threshold = DefaultGCThreshold
	}
	return &Heap{
		objects:   make(map[types.Handle]*Object),
		threshold: threshold,
	}
}

// alloc registers a fresh object and counts it against the GC trigger
func (h *Heap) alloc(kind ObjectKind) *Object {
	h.nextHandle++
	obj := &Object{
		heap:   h,
		handle: h.nextHandle,
		props:  orderedmap.New(),
		kind:   kind,
	}
	h.objects[obj.handle] = obj
	h.allocsSinceGC++
	return obj
}

// NewPlain allocates a plain object
func (h *Heap) NewPlain() *Object {
	return h.alloc(KindPlain)
}

// NewString allocates a string box. String boxes are not interned; each
// call yields a fresh object, and equality is by content.
func (h *Heap) NewString(s string) *Object {
	obj := h.alloc(KindString)
	obj.str = s
	return obj
}

// NewArray allocates an array taking ownership of elems
func (h *Heap) NewArray(elems []types.Value) *Object {
	obj := h.alloc(KindArray)
	obj.elems = elems
	return obj
}

// NewFunction allocates a function closure capturing the given scope
func (h *Heap) NewFunction(name string, params []parser.Param, body *parser.BlockStmt, captured *scope.Scope) *Object {
	obj := h.alloc(KindFunction)
	obj.fn = &FunctionData{
		Name:     name,
		Params:   params,
		Body:     body,
		Captured: captured,
	}
	return obj
}

// NewNative allocates a native callable wrapping a host procedure
func (h *Heap) NewNative(fn NativeFunc) *Object {
	obj := h.alloc(KindNative)
	obj.native = fn
	return obj
}

// NewException allocates an exception object. The kind and message are
// mirrored into the property map so user code can read e.kind and
// e.message; further properties may be attached freely.
func (h *Heap) NewException(kind types.ExceptionKind, message string) *Object {
	obj := h.alloc(KindException)
	obj.excKind = kind
	obj.excMsg = message
	obj.Put("kind", h.NewString(kind.String()).Ref())
	obj.Put("message", h.NewString(message).Ref())
	return obj
}

// NewModule allocates an FFI module object owning lib; the handle is
// released when the object is swept.
func (h *Heap) NewModule(lib Library) *Object {
	obj := h.alloc(KindModule)
	obj.lib = lib
	return obj
}

// Get resolves a handle to its live object
func (h *Heap) Get(handle types.Handle) (*Object, bool) {
	obj, ok := h.objects[handle]
	return obj, ok
}

// Deref resolves a Value to its heap object if it is a reference
func (h *Heap) Deref(v types.Value) (*Object, bool) {
	ref, ok := v.(types.RefValue)
	if !ok {
		return nil, false
	}
	return h.Get(ref.Handle)
}

// DerefKind resolves a Value to an object of a specific kind
func (h *Heap) DerefKind(v types.Value, kind ObjectKind) (*Object, bool) {
	obj, ok := h.Deref(v)
	if !ok || obj.kind != kind {
		return nil, false
	}
	return obj, true
}

// StringOf extracts string-box content from a Value
func (h *Heap) StringOf(v types.Value) (string, bool) {
	obj, ok := h.DerefKind(v, KindString)
	if !ok {
		return "", false
	}
	return obj.str, true
}

// PropertyKey coerces a Value to a property-map key. Numbers use their
// decimal string form, so o[1] and o["1"] address the same slot; string
// boxes use their content. Any other tag is not a valid key.
func (h *Heap) PropertyKey(v types.Value) (string, bool) {
	switch val := v.(type) {
	case types.NumberValue:
		return val.KeyString(), true
	case types.RefValue:
		if s, ok := h.StringOf(val); ok {
			return s, true
		}
	}
	return "", false
}

// Size returns the number of live objects
func (h *Heap) Size() int {
	return len(h.objects)
}

// Collections returns how many collections have run
func (h *Heap) Collections() int {
	return h.collections
}

// TotalSwept returns how many objects have been destroyed so far
func (h *Heap) TotalSwept() int {
	return h.swept
}

// ShouldCollect reports whether allocations since the last collection
// have crossed the threshold. The evaluator checks this at safe points;
// the heap never interrupts an evaluation step on its own.
func (h *Heap) ShouldCollect() bool {
	return h.allocsSinceGC >= h.threshold
}

// Roots is the root set the evaluator hands to Collect: every scope
// reachable from the current scope pointer and the frame stack, every
// in-flight value, and the pending thrown value if any.
type Roots struct {
	Values []types.Value
	Scopes []*scope.Scope
}

// Collect runs mark and sweep from the given roots and returns the
// number of objects destroyed.
func (h *Heap) Collect(roots Roots) int {
	marker := &marker{heap: h}
	for _, v := range roots.Values {
		marker.markValue(v)
	}
	for _, s := range roots.Scopes {
		marker.markScope(s)
	}
	marker.drain()

	destroyed := 0
	for handle, obj := range h.objects {
		if obj.marked {
			obj.marked = false
			continue
		}
		if obj.kind == KindModule && obj.lib != nil {
			_ = obj.lib.Close()
		}
		delete(h.objects, handle)
		destroyed++
	}

	h.allocsSinceGC = 0
	h.collections++
	h.swept += destroyed
	return destroyed
}

// marker performs the DFS of the mark phase with an explicit work list
type marker struct {
	heap   *Heap
	stack  []*Object
	scopes map[*scope.Scope]bool
}

func (m *marker) markValue(v types.Value) {
	ref, ok := v.(types.RefValue)
	if !ok {
		return
	}
	obj, ok := m.heap.objects[ref.Handle]
	if !ok || obj.marked {
		return
	}
	obj.marked = true
	m.stack = append(m.stack, obj)
}

func (m *marker) markScope(s *scope.Scope) {
	if m.scopes == nil {
		m.scopes = make(map[*scope.Scope]bool)
	}
	for sc := s; sc != nil; sc = sc.Parent() {
		if m.scopes[sc] {
			break
		}
		m.scopes[sc] = true
		sc.Each(func(_ string, value types.Value) {
			m.markValue(value)
		})
	}
}

// drain traverses marked objects' internal references until no work
// remains: property-map values, array elements, captured scopes.
func (m *marker) drain() {
	for len(m.stack) > 0 {
		obj := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]

		for _, key := range obj.props.Keys() {
			if v, ok := obj.props.Get(key); ok {
				m.markValue(v.(types.Value))
			}
		}
		if obj.kind == KindArray {
			for _, elem := range obj.elems {
				m.markValue(elem)
			}
		}
		if obj.kind == KindFunction && obj.fn.Captured != nil {
			m.markScope(obj.fn.Captured)
		}
	}
}
