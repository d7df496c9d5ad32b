package eval

import (
	"ore/parser"
	"ore/scope"
	"ore/types"
)

// RunProgram evaluates a program against the root scope. A top-level
// return yields its value; otherwise the result is the last statement's
// value. Break or continue escaping to the top is a TypeError.
func (e *Evaluator) RunProgram(prog *parser.Program, ctx *types.Context) types.Result {
	result := e.evalStatements(prog.Stmts, ctx)
	switch result.Flow {
	case types.FlowReturn:
		return types.Ok(result.Val)
	case types.FlowBreak:
		return e.throwError(types.ExcType, "break outside of a loop")
	case types.FlowContinue:
		return e.throwError(types.ExcType, "continue outside of a loop")
	default:
		return result
	}
}

// evalStatements evaluates a statement sequence in the current scope.
// Each statement boundary is a safe point: the tick/step hook runs and
// the heap may collect, with the evaluator's live roots supplied. The
// result is the last statement's value, or nil for an empty sequence.
func (e *Evaluator) evalStatements(stmts []parser.Stmt, ctx *types.Context) types.Result {
	result := types.Ok(types.NewNil())
	for _, stmt := range stmts {
		if !ctx.Step() {
			return e.throwError(types.ExcRange, "tick limit exceeded")
		}
		e.maybeCollect()

		result = e.EvalStmt(stmt, ctx)
		if !result.IsNormal() {
			return result
		}
	}
	return result
}

// EvalStmt evaluates a single statement
func (e *Evaluator) EvalStmt(stmt parser.Stmt, ctx *types.Context) types.Result {
	switch s := stmt.(type) {
	case *parser.ExprStmt:
		return e.Eval(s.Expr, ctx)
	case *parser.BlockStmt:
		return e.evalBlock(s, ctx)
	case *parser.IfStmt:
		return e.evalIfStmt(s, ctx)
	case *parser.WhileStmt:
		return e.evalWhileStmt(s, ctx)
	case *parser.DoWhileStmt:
		return e.evalDoWhileStmt(s, ctx)
	case *parser.ForStmt:
		return e.evalForStmt(s, ctx)
	case *parser.ReturnStmt:
		return e.evalReturnStmt(s, ctx)
	case *parser.BreakStmt:
		return types.Break()
	case *parser.ContinueStmt:
		return types.Continue()
	case *parser.ThrowStmt:
		return e.evalThrowStmt(s, ctx)
	case *parser.TryStmt:
		return e.evalTryStmt(s, ctx)
	case *parser.GlobalStmt:
		return e.evalGlobalStmt(s, ctx)
	case *parser.ExportStmt:
		return e.evalExportStmt(s, ctx)
	default:
		return e.throwError(types.ExcSyntax, "cannot execute %T", stmt)
	}
}

// evalBlock evaluates a block in a fresh child scope
func (e *Evaluator) evalBlock(block *parser.BlockStmt, ctx *types.Context) types.Result {
	prev := e.scope
	e.scope = scope.NewBlock(prev)
	result := e.evalStatements(block.Stmts, ctx)
	e.scope = prev
	return result
}

// evalIfStmt evaluates if/elseif/else; a missing else behaves as an
// empty block
func (e *Evaluator) evalIfStmt(stmt *parser.IfStmt, ctx *types.Context) types.Result {
	testResult := e.Eval(stmt.Test, ctx)
	if !testResult.IsNormal() {
		return testResult
	}
	if types.Truthy(testResult.Val) {
		return e.evalBlock(stmt.Consequent, ctx)
	}
	if stmt.Alternate == nil {
		return types.Ok(types.NewNil())
	}
	return e.EvalStmt(stmt.Alternate, ctx)
}

// evalWhileStmt evaluates a while loop; break exits, continue skips to
// the next guard evaluation
func (e *Evaluator) evalWhileStmt(stmt *parser.WhileStmt, ctx *types.Context) types.Result {
	for {
		// Loop back-edges are also tick-limit checkpoints.
		if !ctx.Step() {
			return e.throwError(types.ExcRange, "tick limit exceeded")
		}
		testResult := e.Eval(stmt.Test, ctx)
		if !testResult.IsNormal() {
			return testResult
		}
		if !types.Truthy(testResult.Val) {
			return types.Ok(types.NewNil())
		}

		bodyResult := e.evalBlock(stmt.Body, ctx)
		switch bodyResult.Flow {
		case types.FlowReturn, types.FlowThrow:
			return bodyResult
		case types.FlowBreak:
			return types.Ok(types.NewNil())
		}
	}
}

// evalDoWhileStmt evaluates a do/while loop; the body runs exactly once
// before the first test
func (e *Evaluator) evalDoWhileStmt(stmt *parser.DoWhileStmt, ctx *types.Context) types.Result {
	for {
		if !ctx.Step() {
			return e.throwError(types.ExcRange, "tick limit exceeded")
		}
		bodyResult := e.evalBlock(stmt.Body, ctx)
		switch bodyResult.Flow {
		case types.FlowReturn, types.FlowThrow:
			return bodyResult
		case types.FlowBreak:
			return types.Ok(types.NewNil())
		}

		testResult := e.Eval(stmt.Test, ctx)
		if !testResult.IsNormal() {
			return testResult
		}
		if !types.Truthy(testResult.Val) {
			return types.Ok(types.NewNil())
		}
	}
}

// evalForStmt evaluates for init, test, update do ... end. The whole
// loop lives in a block scope so init bindings stay local; a nil test
// counts as true; continue still runs the update.
func (e *Evaluator) evalForStmt(stmt *parser.ForStmt, ctx *types.Context) types.Result {
	prev := e.scope
	e.scope = scope.NewBlock(prev)
	defer func() { e.scope = prev }()

	if stmt.Init != nil {
		initResult := e.Eval(stmt.Init, ctx)
		if !initResult.IsNormal() {
			return initResult
		}
	}

	for {
		if !ctx.Step() {
			return e.throwError(types.ExcRange, "tick limit exceeded")
		}
		if stmt.Test != nil {
			testResult := e.Eval(stmt.Test, ctx)
			if !testResult.IsNormal() {
				return testResult
			}
			if !types.Truthy(testResult.Val) {
				return types.Ok(types.NewNil())
			}
		}

		bodyResult := e.evalBlock(stmt.Body, ctx)
		switch bodyResult.Flow {
		case types.FlowReturn, types.FlowThrow:
			return bodyResult
		case types.FlowBreak:
			return types.Ok(types.NewNil())
		}

		if stmt.Update != nil {
			updateResult := e.Eval(stmt.Update, ctx)
			if !updateResult.IsNormal() {
				return updateResult
			}
		}
	}
}

// evalReturnStmt evaluates return [expr]; a missing argument returns nil
func (e *Evaluator) evalReturnStmt(stmt *parser.ReturnStmt, ctx *types.Context) types.Result {
	if stmt.Value == nil {
		return types.Return(types.NewNil())
	}
	result := e.Eval(stmt.Value, ctx)
	if !result.IsNormal() {
		return result
	}
	return types.Return(result.Val)
}

// evalThrowStmt raises any value; user throws are not wrapped
func (e *Evaluator) evalThrowStmt(stmt *parser.ThrowStmt, ctx *types.Context) types.Result {
	result := e.Eval(stmt.Value, ctx)
	if !result.IsNormal() {
		return result
	}
	e.lastTrace = e.captureTrace()
	return types.Throw(result.Val)
}

// evalTryStmt evaluates try/catch/finally. The catch parameter binds in
// a fresh block scope. The finaliser runs on every exit path; a signal
// it raises replaces the pending one.
func (e *Evaluator) evalTryStmt(stmt *parser.TryStmt, ctx *types.Context) types.Result {
	result := e.evalBlock(stmt.Block, ctx)

	if result.IsThrow() && stmt.Handler != nil {
		prev := e.scope
		catchScope := scope.NewBlock(prev)
		catchScope.Declare(stmt.CatchParam, result.Val)
		e.scope = catchScope
		result = e.evalStatements(stmt.Handler.Stmts, ctx)
		e.scope = prev
	}

	if stmt.Finalizer != nil {
		// The pending value stays rooted while the finaliser runs.
		pending := result.Val != nil
		if pending {
			e.protect(result.Val)
		}
		finallyResult := e.evalBlock(stmt.Finalizer, ctx)
		if pending {
			e.release(1)
		}
		if !finallyResult.IsNormal() {
			return finallyResult
		}
	}

	return result
}

// evalGlobalStmt executes the embedded assignment against the root
// scope, creating the binding there if absent
func (e *Evaluator) evalGlobalStmt(stmt *parser.GlobalStmt, ctx *types.Context) types.Result {
	assign := stmt.Assignment
	target := assign.Target.(*parser.IdentifierExpr)
	binOp, compound := compoundOp(assign.Operator)

	var current types.Value
	if compound {
		val, ok := e.scope.Root().Lookup(target.Name)
		if !ok {
			return e.throwError(types.ExcReference, "%s is not defined", target.Name)
		}
		current = val
		e.protect(current)
		defer e.release(1)
	}

	rhs := e.Eval(assign.Value, ctx)
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

	e.scope.AssignGlobal(target.Name, value)
	return types.Ok(value)
}

// evalExportStmt records the module-export value; it is visible to the
// embedder but invisible to user code
func (e *Evaluator) evalExportStmt(stmt *parser.ExportStmt, ctx *types.Context) types.Result {
	result := e.Eval(stmt.Value, ctx)
	if !result.IsNormal() {
		return result
	}
	e.exported = result.Val
	e.hasExported = true
	return types.Ok(types.NewNil())
}
