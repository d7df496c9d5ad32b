// Package eval executes Ore ASTs. The evaluator walks nodes against the
// scope chain, allocates on the heap, and propagates non-local control
// flow (return, break, continue, throw) as explicit Result signals
// instead of interpreter-level flags.
package eval

import (
	"fmt"
	"io"
	"os"

	"ore/heap"
	"ore/parser"
	"ore/scope"
	"ore/types"
)

// frame is one entry of the function-call stack: the callee's name for
// error reporting and its scope for the GC root set.
type frame struct {
	name  string
	scope *scope.Scope
}

// Evaluator walks the AST and evaluates expressions/statements
type Evaluator struct {
	heap   *heap.Heap
	global *scope.Scope
	scope  *scope.Scope
	frames []frame
	temps  []types.Value // in-flight values rooted across nested evaluation
	out    io.Writer

	exported    types.Value
	hasExported bool
	lastTrace   []string
}

// NewEvaluator creates an evaluator owning a fresh root scope
func NewEvaluator(h *heap.Heap) *Evaluator {
	e := &Evaluator{
		heap: h,
		out:  os.Stdout,
	}
	e.global = scope.New()
	e.scope = e.global
	return e
}

// Heap returns the evaluator's heap
func (e *Evaluator) Heap() *heap.Heap {
	return e.heap
}

// Global returns the root scope; the embedder installs builtins here
func (e *Evaluator) Global() *scope.Scope {
	return e.global
}

// Output returns where print-style builtins write
func (e *Evaluator) Output() io.Writer {
	return e.out
}

// SetOutput redirects print-style builtins
func (e *Evaluator) SetOutput(w io.Writer) {
	e.out = w
}

// ExportedValue returns the value recorded by the last export statement
func (e *Evaluator) ExportedValue() (types.Value, bool) {
	return e.exported, e.hasExported
}

// LastTrace returns the function-name stack captured when the most
// recent throw was raised, innermost first.
func (e *Evaluator) LastTrace() []string {
	return e.lastTrace
}

// protect roots a value against collection while it is held only in Go
// locals; release drops the most recent n protected values.
func (e *Evaluator) protect(v types.Value) {
	e.temps = append(e.temps, v)
}

func (e *Evaluator) release(n int) {
	e.temps = e.temps[:len(e.temps)-n]
}

// captureTrace snapshots the call stack, innermost frame first
func (e *Evaluator) captureTrace() []string {
	trace := make([]string, 0, len(e.frames))
	for i := len(e.frames) - 1; i >= 0; i-- {
		trace = append(trace, e.frames[i].name)
	}
	return trace
}

// throwError allocates an exception object and raises it
func (e *Evaluator) throwError(kind types.ExceptionKind, format string, args ...interface{}) types.Result {
	msg := fmt.Sprintf(format, args...)
	e.lastTrace = e.captureTrace()
	return types.Throw(e.heap.NewException(kind, msg).Ref())
}

// CollectGarbage runs a collection using the evaluator's live roots:
// every scope reachable from the current pointer and the frame stack,
// every in-flight value, and the recorded export. Returns the number of
// objects swept.
func (e *Evaluator) CollectGarbage() int {
	roots := heap.Roots{
		Scopes: []*scope.Scope{e.scope, e.global},
	}
	for _, f := range e.frames {
		roots.Scopes = append(roots.Scopes, f.scope)
	}
	roots.Values = append(roots.Values, e.temps...)
	if e.hasExported {
		roots.Values = append(roots.Values, e.exported)
	}
	return e.heap.Collect(roots)
}

// maybeCollect is the GC safe point checked before each statement
func (e *Evaluator) maybeCollect() {
	if e.heap.ShouldCollect() {
		e.CollectGarbage()
	}
}

// Eval evaluates an expression node and returns a Result
func (e *Evaluator) Eval(node parser.Expr, ctx *types.Context) types.Result {
	switch n := node.(type) {
	case *parser.NumberLiteral:
		return types.Ok(types.NewNumber(n.Value))
	case *parser.BoolLiteral:
		return types.Ok(types.NewBool(n.Value))
	case *parser.StringLiteral:
		return types.Ok(e.heap.NewString(n.Value).Ref())
	case *parser.NilLiteral:
		return types.Ok(types.NewNil())
	case *parser.IdentifierExpr:
		return e.evalIdentifier(n)
	case *parser.ArrayExpr:
		return e.evalArray(n, ctx)
	case *parser.ObjectExpr:
		return e.evalObject(n, ctx)
	case *parser.MemberExpr:
		return e.evalMember(n, ctx)
	case *parser.CallExpr:
		return e.evalCall(n, ctx)
	case *parser.AssignExpr:
		return e.evalAssign(n, ctx)
	case *parser.UnaryExpr:
		return e.evalUnary(n, ctx)
	case *parser.BinaryExpr:
		return e.evalBinary(n, ctx)
	case *parser.FunctionExpr:
		return e.evalFunction(n)
	default:
		// Unknown node type - this should never happen if the parser is correct
		return e.throwError(types.ExcSyntax, "cannot evaluate %T", node)
	}
}

// evalIdentifier looks up a variable by name
func (e *Evaluator) evalIdentifier(node *parser.IdentifierExpr) types.Result {
	val, ok := e.scope.Lookup(node.Name)
	if !ok {
		return e.throwError(types.ExcReference, "%s is not defined", node.Name)
	}
	return types.Ok(val)
}

// evalArray evaluates elements left-to-right and allocates an array
func (e *Evaluator) evalArray(node *parser.ArrayExpr, ctx *types.Context) types.Result {
	elems := make([]types.Value, 0, len(node.Elements))
	for _, elemExpr := range node.Elements {
		result := e.Eval(elemExpr, ctx)
		if !result.IsNormal() {
			e.release(len(elems))
			return result
		}
		elems = append(elems, result.Val)
		e.protect(result.Val)
	}
	e.release(len(elems))
	return types.Ok(e.heap.NewArray(elems).Ref())
}

// evalObject evaluates properties in declared order and allocates a
// plain object
func (e *Evaluator) evalObject(node *parser.ObjectExpr, ctx *types.Context) types.Result {
	obj := e.heap.NewPlain()
	e.protect(obj.Ref())
	for _, prop := range node.Properties {
		result := e.Eval(prop.Value, ctx)
		if !result.IsNormal() {
			e.release(1)
			return result
		}
		obj.Put(prop.Key, result.Val)
	}
	e.release(1)
	return types.Ok(obj.Ref())
}

// evalFunction allocates a closure capturing the current scope chain.
// A named declaration also binds the name so the function can recurse.
func (e *Evaluator) evalFunction(node *parser.FunctionExpr) types.Result {
	obj := e.heap.NewFunction(node.Name, node.Params, node.Body, e.scope)
	if node.Name != "" {
		e.scope.Declare(node.Name, obj.Ref())
	}
	return types.Ok(obj.Ref())
}

// evalCall evaluates the callee, then the arguments left-to-right, then
// invokes
func (e *Evaluator) evalCall(node *parser.CallExpr, ctx *types.Context) types.Result {
	calleeResult := e.Eval(node.Callee, ctx)
	if !calleeResult.IsNormal() {
		return calleeResult
	}
	callee := calleeResult.Val
	e.protect(callee)

	args := make([]types.Value, 0, len(node.Args))
	for _, argExpr := range node.Args {
		argResult := e.Eval(argExpr, ctx)
		if !argResult.IsNormal() {
			e.release(1 + len(args))
			return argResult
		}
		args = append(args, argResult.Val)
		e.protect(argResult.Val)
	}

	result := e.Call(ctx, callee, args)
	e.release(1 + len(args))
	return result
}

// Call invokes a function closure or native callable. Any other value
// is a TypeError. This is also the re-entry point native callables use
// to call back into user code.
func (e *Evaluator) Call(ctx *types.Context, callee types.Value, args []types.Value) types.Result {
	obj, ok := e.heap.Deref(callee)
	if !ok || !obj.Invokable() {
		return e.throwError(types.ExcType, "%s is not callable", e.heap.Inspect(callee))
	}
	if obj.Kind() == heap.KindNative {
		return e.invokeNative(obj.Native(), ctx, args)
	}
	return e.invokeFunction(obj.Function(), ctx, args)
}

// invokeFunction pushes a fresh function frame parented at the
// closure's captured environment, binds parameters, and evaluates the
// body. A Return signal yields its value; normal termination yields
// nil; break/continue escaping the body is a TypeError.
func (e *Evaluator) invokeFunction(fn *heap.FunctionData, ctx *types.Context, args []types.Value) types.Result {
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}

	frameScope := scope.NewFrame(fn.Captured)
	prev := e.scope
	e.scope = frameScope
	e.frames = append(e.frames, frame{name: name, scope: frameScope})
	defer func() {
		e.frames = e.frames[:len(e.frames)-1]
		e.scope = prev
	}()

	for i, param := range fn.Params {
		switch {
		case i < len(args):
			frameScope.Declare(param.Name, args[i])
		case param.Default != nil:
			// Defaults evaluate in the new frame, so they can see
			// earlier parameters.
			result := e.Eval(param.Default, ctx)
			if !result.IsNormal() {
				return result
			}
			frameScope.Declare(param.Name, result.Val)
		default:
			frameScope.Declare(param.Name, types.NewNil())
		}
	}

	result := e.evalStatements(fn.Body.Stmts, ctx)
	switch result.Flow {
	case types.FlowReturn:
		return types.Ok(result.Val)
	case types.FlowBreak:
		return e.throwError(types.ExcType, "break outside of a loop")
	case types.FlowContinue:
		return e.throwError(types.ExcType, "continue outside of a loop")
	case types.FlowThrow:
		return result
	default:
		return types.Ok(types.NewNil())
	}
}

// invokeNative calls a host procedure; a panic escaping it converts to
// a thrown NativeError instead of taking the interpreter down.
func (e *Evaluator) invokeNative(fn heap.NativeFunc, ctx *types.Context, args []types.Value) (result types.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = e.throwError(types.ExcNative, "native callable panicked: %v", r)
		}
	}()
	return fn(e, ctx, args)
}

// compoundOp maps a compound-assignment token to its binary operator
func compoundOp(op parser.TokenType) (parser.TokenType, bool) {
	switch op {
	case parser.TOKEN_PLUS_ASSIGN:
		return parser.TOKEN_PLUS, true
	case parser.TOKEN_MINUS_ASSIGN:
		return parser.TOKEN_MINUS, true
	case parser.TOKEN_STAR_ASSIGN:
		return parser.TOKEN_STAR, true
	case parser.TOKEN_SLASH_ASSIGN:
		return parser.TOKEN_SLASH, true
	case parser.TOKEN_LSHIFT_ASSIGN:
		return parser.TOKEN_LSHIFT, true
	case parser.TOKEN_RSHIFT_ASSIGN:
		return parser.TOKEN_RSHIFT, true
	case parser.TOKEN_CONCAT_ASSIGN:
		return parser.TOKEN_CONCAT, true
	}
	return op, false
}

// evalAssign evaluates assignment in all its variants. Compound forms
// desugar to read-op-write: the LHS is read first, then the RHS
// evaluates, then the operator combines them.
func (e *Evaluator) evalAssign(node *parser.AssignExpr, ctx *types.Context) types.Result {
	switch target := node.Target.(type) {
	case *parser.IdentifierExpr:
		return e.assignIdentifier(target, node, ctx)
	case *parser.MemberExpr:
		return e.assignMember(target, node, ctx)
	default:
		// The parser rejects these; only a malformed AST gets here.
		return e.throwError(types.ExcSyntax, "invalid assignment target %T", node.Target)
	}
}

func (e *Evaluator) assignIdentifier(target *parser.IdentifierExpr, node *parser.AssignExpr, ctx *types.Context) types.Result {
	binOp, compound := compoundOp(node.Operator)

	var current types.Value
	if compound {
		val, ok := e.scope.Lookup(target.Name)
		if !ok {
			return e.throwError(types.ExcReference, "%s is not defined", target.Name)
		}
		current = val
		e.protect(current)
		defer e.release(1)
	}

	rhs := e.Eval(node.Value, ctx)
	if !rhs.IsNormal() {
		return rhs
	}

	value := rhs.Val
	if compound {
		combined := e.applyBinary(binOp, current, value)
		if !combined.IsNormal() {
			return combined
		}
		value = combined.Val
	}

	e.scope.Assign(target.Name, value)
	return types.Ok(value)
}

func (e *Evaluator) assignMember(target *parser.MemberExpr, node *parser.AssignExpr, ctx *types.Context) types.Result {
	ref, result := e.resolveMember(target, ctx)
	if !result.IsNormal() {
		return result
	}
	// The target object stays rooted while the RHS evaluates.
	e.protect(ref.obj.Ref())
	defer e.release(1)

	binOp, compound := compoundOp(node.Operator)
	var current types.Value
	if compound {
		current = ref.read()
		e.protect(current)
		defer e.release(1)
	}

	rhs := e.Eval(node.Value, ctx)
	if !rhs.IsNormal() {
		return rhs
	}

	value := rhs.Val
	if compound {
		combined := e.applyBinary(binOp, current, value)
		if !combined.IsNormal() {
			return combined
		}
		value = combined.Val
	}

	ref.write(value)
	return types.Ok(value)
}
