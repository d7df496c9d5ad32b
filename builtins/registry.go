// Package builtins carries the standard prelude the host installs into
// an interpreter's root scope. Builtins are plain native callables; the
// registry only fixes the registration contract, the evaluator treats
// them like any other invokable value.
package builtins

import (
	"ore/heap"
	"ore/scope"
)

// Func is the native-callable signature builtins implement
type Func = heap.NativeFunc

// Registry holds all registered builtin functions
type Registry struct {
	funcs map[string]Func
	names []string
}

// NewRegistry creates a registry with the full standard prelude
func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}

	// Core builtins
	r.Register("print", builtinPrint)
	r.Register("println", builtinPrintln)
	r.Register("typeof", builtinTypeof)
	r.Register("str", builtinStr)
	r.Register("num", builtinNum)
	r.Register("len", builtinLen)
	r.Register("keys", builtinKeys)
	r.Register("contains", builtinContains)
	r.Register("throw_error", builtinThrowError)

	// String builtins
	r.Register("upcase", builtinUpcase)
	r.Register("downcase", builtinDowncase)
	r.Register("trim", builtinTrim)
	r.Register("index", builtinIndex)
	r.Register("explode", builtinExplode)
	r.Register("implode", builtinImplode)

	// Math builtins
	r.Register("abs", builtinAbs)
	r.Register("floor", builtinFloor)
	r.Register("ceil", builtinCeil)
	r.Register("round", builtinRound)
	r.Register("sqrt", builtinSqrt)
	r.Register("min", builtinMin)
	r.Register("max", builtinMax)

	// Hashing builtins
	r.Register("sha256", builtinSha256)
	r.Register("blake2b", builtinBlake2b)
	r.Register("argon2", builtinArgon2)
	r.Register("crypt_check", builtinCryptCheck)

	// Garbage collection builtins
	r.Register("collect_garbage", builtinCollectGarbage)
	r.Register("heap_stats", builtinHeapStats)

	// FFI
	r.Register("load_library", builtinLoadLibrary)

	return r
}

// Register adds a builtin; later registrations win, so an embedder can
// shadow a prelude entry before installing
func (r *Registry) Register(name string, fn Func) {
	if _, exists := r.funcs[name]; !exists {
		r.names = append(r.names, name)
	}
	r.funcs[name] = fn
}

// Get looks up a builtin by name
func (r *Registry) Get(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns registration order
func (r *Registry) Names() []string {
	return r.names
}

// InstallInto allocates a native callable for every builtin and binds
// it in the given scope (normally the root scope)
func (r *Registry) InstallInto(h *heap.Heap, s *scope.Scope) {
	for _, name := range r.names {
		s.Declare(name, h.NewNative(r.funcs[name]).Ref())
	}
}
