package heap

import (
	"io"

	"github.com/iancoleman/orderedmap"

	"ore/parser"
	"ore/scope"
	"ore/types"
)

// ObjectKind distinguishes the heap object variants. Variants share the
// common header (mark bit, owning heap, property map) and never use
// inheritance; capability dispatch switches on the kind.
type ObjectKind int

const (
	KindPlain     ObjectKind = iota // property map only
	KindString                      // immutable string content, equality by content
	KindArray                       // contiguous value sequence
	KindFunction                    // closure: body + captured environment
	KindNative                      // host-provided procedure
	KindException                   // kind tag + message
	KindModule                      // FFI module owning a library handle
)

// String returns the kind name
func (k ObjectKind) String() string {
	switch k {
	case KindPlain:
		return "object"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	case KindException:
		return "exception"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// NativeFunc is a host-provided callable. It may allocate via the
// interpreter's heap, throw by returning a throw Result, and recursively
// invoke function closures through the interpreter.
type NativeFunc func(ip Interp, ctx *types.Context, args []types.Value) types.Result

// Interp is the surface native callables and the builtin prelude see.
// The evaluator implements it; keeping it an interface here avoids a
// package cycle while still handing natives the running interpreter.
type Interp interface {
	// Heap returns the interpreter's heap for allocation
	Heap() *Heap
	// Call invokes a function closure or native callable value
	Call(ctx *types.Context, callee types.Value, args []types.Value) types.Result
	// Output is where print-style builtins write
	Output() io.Writer
	// CollectGarbage forces a collection with the interpreter's live
	// roots and returns the number of objects swept
	CollectGarbage() int
}

// Library is the handle an FFI module owns; it is released when the
// module object is swept.
type Library interface {
	Close() error
}

// FunctionData is the closure state of a KindFunction object
type FunctionData struct {
	Name     string // empty for anonymous functions
	Params   []parser.Param
	Body     *parser.BlockStmt
	Captured *scope.Scope // scope chain at the point of definition
}

// Object is a heap-allocated value. Every object carries the header
// (mark bit, owning heap, property map); the kind selects which of the
// variant fields is meaningful.
type Object struct {
	marked bool
	heap   *Heap
	handle types.Handle
	props  *orderedmap.OrderedMap // string -> types.Value, insertion order

	kind ObjectKind

	str     string              // KindString
	elems   []types.Value       // KindArray
	fn      *FunctionData       // KindFunction
	native  NativeFunc          // KindNative
	excKind types.ExceptionKind // KindException
	excMsg  string              // KindException
	lib     Library             // KindModule
}

// Kind returns the object variant
func (o *Object) Kind() ObjectKind {
	return o.kind
}

// Handle returns the object's heap handle
func (o *Object) Handle() types.Handle {
	return o.handle
}

// Ref returns a Value aliasing this object
func (o *Object) Ref() types.Value {
	return types.NewRef(o.handle)
}

// Invokable reports whether calling this object is meaningful
func (o *Object) Invokable() bool {
	return o.kind == KindFunction || o.kind == KindNative
}

// Get looks up a property; a missing key yields nil, never an error
func (o *Object) Get(key string) types.Value {
	if v, ok := o.props.Get(key); ok {
		return v.(types.Value)
	}
	return types.NewNil()
}

// Contains reports whether the property map has the key
func (o *Object) Contains(key string) bool {
	_, ok := o.props.Get(key)
	return ok
}

// Put sets or inserts a property
func (o *Object) Put(key string, value types.Value) {
	o.props.Set(key, value)
}

// Keys returns property keys in insertion order
func (o *Object) Keys() []string {
	return o.props.Keys()
}

// Str returns the content of a string box
func (o *Object) Str() string {
	return o.str
}

// Function returns the closure data of a KindFunction object
func (o *Object) Function() *FunctionData {
	return o.fn
}

// Native returns the host procedure of a KindNative object
func (o *Object) Native() NativeFunc {
	return o.native
}

// ExceptionKind returns the kind tag of a KindException object
func (o *Object) ExceptionKind() types.ExceptionKind {
	return o.excKind
}

// ExceptionMessage returns the message of a KindException object
func (o *Object) ExceptionMessage() string {
	return o.excMsg
}

// Len returns the array length or string byte length
func (o *Object) Len() int {
	if o.kind == KindString {
		return len(o.str)
	}
	return len(o.elems)
}

// Elements returns the array's backing slice (not a copy)
func (o *Object) Elements() []types.Value {
	return o.elems
}

// IndexGet reads an array slot; out-of-range reads yield nil
func (o *Object) IndexGet(i int) types.Value {
	if i < 0 || i >= len(o.elems) {
		return types.NewNil()
	}
	return o.elems[i]
}

// IndexSet writes an array slot, extending the array with nils when the
// index is past the current length. Negative indices are the caller's
// problem (the evaluator throws RangeError before getting here).
func (o *Object) IndexSet(i int, v types.Value) {
	for len(o.elems) <= i {
		o.elems = append(o.elems, types.NewNil())
	}
	o.elems[i] = v
}

// Push appends to an array
func (o *Object) Push(v types.Value) {
	o.elems = append(o.elems, v)
}

// Pop removes and returns the last element; an empty array yields nil
func (o *Object) Pop() types.Value {
	if len(o.elems) == 0 {
		return types.NewNil()
	}
	v := o.elems[len(o.elems)-1]
	o.elems = o.elems[:len(o.elems)-1]
	return v
}
