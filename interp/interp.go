// Package interp is the host embedding surface: construct an
// Interpreter, register natives, run programs, read the exported value.
// A single Interpreter instance belongs to one goroutine for its whole
// lifetime; independent instances may run concurrently as long as they
// share no objects.
package interp

import (
	"fmt"
	"io"
	"strings"

	"ore/builtins"
	"ore/eval"
	"ore/heap"
	"ore/parser"
	"ore/types"
)

// Interpreter owns a heap, an evaluator, and the installed prelude
type Interpreter struct {
	heap *heap.Heap
	eval *eval.Evaluator
	cfg  Config
}

// UncaughtException is the error Run returns when a thrown value
// reaches the top without a catch. Stack is the logical function-name
// stack at the point of the throw, innermost first.
type UncaughtException struct {
	Kind    types.ExceptionKind
	Message string
	Stack   []string
}

// Error formats the exception with its traceback
func (u *UncaughtException) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uncaught %s: %s", u.Kind, u.Message)
	for _, name := range u.Stack {
		fmt.Fprintf(&b, "\n  in %s", name)
	}
	return b.String()
}

// New constructs an interpreter and installs the standard prelude into
// its root scope
func New(cfg Config) *Interpreter {
	h := heap.New(cfg.GCThreshold)
	e := eval.NewEvaluator(h)
	builtins.NewRegistry().InstallInto(h, e.Global())
	return &Interpreter{
		heap: h,
		eval: e,
		cfg:  cfg,
	}
}

// Heap returns the interpreter's heap
func (ip *Interpreter) Heap() *heap.Heap {
	return ip.heap
}

// Evaluator returns the underlying evaluator
func (ip *Interpreter) Evaluator() *eval.Evaluator {
	return ip.eval
}

// SetOutput redirects print-style builtins
func (ip *Interpreter) SetOutput(w io.Writer) {
	ip.eval.SetOutput(w)
}

// Register installs a native callable in the root scope under name
func (ip *Interpreter) Register(name string, fn heap.NativeFunc) {
	ip.eval.Global().Declare(name, ip.heap.NewNative(fn).Ref())
}

// ExportedValue returns the value recorded by the last export statement
func (ip *Interpreter) ExportedValue() (types.Value, bool) {
	return ip.eval.ExportedValue()
}

// Run evaluates a parsed program. The returned error, if any, is an
// *UncaughtException; all pending finalisers have run by the time it
// surfaces.
func (ip *Interpreter) Run(prog *parser.Program) (types.Value, error) {
	ctx := types.NewContextWithLimit(ip.cfg.TickLimit)
	ctx.StepHook = ip.cfg.StepHook

	result := ip.eval.RunProgram(prog, ctx)
	if result.IsThrow() {
		return nil, ip.uncaught(result.Val)
	}
	return result.Val, nil
}

// RunSource parses and evaluates source text
func (ip *Interpreter) RunSource(source string) (types.Value, error) {
	p := parser.NewParser(source)
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return ip.Run(prog)
}

// uncaught converts a thrown value into the embedder-facing error.
// Exception objects carry their kind and message; any other thrown
// value surfaces as a user error with its display form.
func (ip *Interpreter) uncaught(thrown types.Value) *UncaughtException {
	u := &UncaughtException{
		Kind:  types.ExcUser,
		Stack: ip.eval.LastTrace(),
	}
	if obj, ok := ip.heap.DerefKind(thrown, heap.KindException); ok {
		u.Kind = obj.ExceptionKind()
		u.Message = obj.ExceptionMessage()
	} else {
		u.Message = ip.heap.Display(thrown)
	}
	return u
}
