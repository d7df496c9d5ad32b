package eval

import (
	"math"
	"strings"

	"ore/heap"
	"ore/parser"
	"ore/types"
)

// evalUnary evaluates not, unary minus, and # (length)
func (e *Evaluator) evalUnary(node *parser.UnaryExpr, ctx *types.Context) types.Result {
	operandResult := e.Eval(node.Operand, ctx)
	if !operandResult.IsNormal() {
		return operandResult
	}
	operand := operandResult.Val

	switch node.Operator {
	case parser.TOKEN_NOT:
		return types.Ok(types.NewBool(!types.Truthy(operand)))
	case parser.TOKEN_MINUS:
		num, ok := operand.(types.NumberValue)
		if !ok {
			return e.throwError(types.ExcType, "cannot negate %s", operand.Type())
		}
		return types.Ok(types.NewNumber(-num.Val))
	case parser.TOKEN_HASH:
		return e.opLength(operand)
	default:
		return e.throwError(types.ExcSyntax, "unknown unary operator %s", node.Operator)
	}
}

// opLength implements #: byte length of a string box or array length;
// every other kind is a TypeError
func (e *Evaluator) opLength(v types.Value) types.Result {
	obj, ok := e.heap.Deref(v)
	if !ok {
		return e.throwError(types.ExcType, "%s has no length", v.Type())
	}
	switch obj.Kind() {
	case heap.KindString, heap.KindArray:
		return types.Ok(types.NewNumber(float64(obj.Len())))
	default:
		return e.throwError(types.ExcType, "%s has no length", obj.Kind())
	}
}

// evalBinary evaluates binary expressions; and/or short-circuit and
// must not evaluate the RHS when the result is already determined
func (e *Evaluator) evalBinary(node *parser.BinaryExpr, ctx *types.Context) types.Result {
	if node.Operator == parser.TOKEN_AND || node.Operator == parser.TOKEN_OR {
		return e.evalLogical(node, ctx)
	}

	leftResult := e.Eval(node.Left, ctx)
	if !leftResult.IsNormal() {
		return leftResult
	}
	e.protect(leftResult.Val)

	rightResult := e.Eval(node.Right, ctx)
	e.release(1)
	if !rightResult.IsNormal() {
		return rightResult
	}

	return e.applyBinary(node.Operator, leftResult.Val, rightResult.Val)
}

// evalLogical evaluates and/or with short-circuit semantics; the result
// is the deciding operand, not coerced to bool
func (e *Evaluator) evalLogical(node *parser.BinaryExpr, ctx *types.Context) types.Result {
	leftResult := e.Eval(node.Left, ctx)
	if !leftResult.IsNormal() {
		return leftResult
	}
	left := leftResult.Val

	switch node.Operator {
	case parser.TOKEN_AND:
		if !types.Truthy(left) {
			return types.Ok(left)
		}
		return e.Eval(node.Right, ctx)
	default: // TOKEN_OR
		if types.Truthy(left) {
			return types.Ok(left)
		}
		return e.Eval(node.Right, ctx)
	}
}

// applyBinary dispatches a non-short-circuiting binary operator over
// already-evaluated operands; compound assignment reuses it
func (e *Evaluator) applyBinary(op parser.TokenType, left, right types.Value) types.Result {
	switch op {
	case parser.TOKEN_PLUS, parser.TOKEN_MINUS, parser.TOKEN_STAR, parser.TOKEN_SLASH,
		parser.TOKEN_POW, parser.TOKEN_PERCENT:
		return e.opArithmetic(op, left, right)
	case parser.TOKEN_LSHIFT, parser.TOKEN_RSHIFT:
		return e.opShift(op, left, right)
	case parser.TOKEN_LT, parser.TOKEN_LE, parser.TOKEN_GT, parser.TOKEN_GE:
		return e.opCompare(op, left, right)
	case parser.TOKEN_EQ:
		return types.Ok(types.NewBool(e.valuesEqual(left, right)))
	case parser.TOKEN_NE:
		return types.Ok(types.NewBool(!e.valuesEqual(left, right)))
	case parser.TOKEN_CONCAT:
		return types.Ok(e.heap.NewString(e.heap.Display(left) + e.heap.Display(right)).Ref())
	case parser.TOKEN_XOR:
		return types.Ok(types.NewBool(types.Truthy(left) != types.Truthy(right)))
	default:
		return e.throwError(types.ExcSyntax, "unknown binary operator %s", op)
	}
}

// opArithmetic implements + - * / ** % over numbers. Division by zero
// yields IEEE infinities or NaN; there is no fault.
func (e *Evaluator) opArithmetic(op parser.TokenType, left, right types.Value) types.Result {
	l, lok := left.(types.NumberValue)
	r, rok := right.(types.NumberValue)
	if !lok || !rok {
		return e.throwError(types.ExcType, "cannot apply %s to %s and %s", op, left.Type(), right.Type())
	}
	switch op {
	case parser.TOKEN_PLUS:
		return types.Ok(types.NewNumber(l.Val + r.Val))
	case parser.TOKEN_MINUS:
		return types.Ok(types.NewNumber(l.Val - r.Val))
	case parser.TOKEN_STAR:
		return types.Ok(types.NewNumber(l.Val * r.Val))
	case parser.TOKEN_SLASH:
		return types.Ok(types.NewNumber(l.Val / r.Val))
	case parser.TOKEN_POW:
		return types.Ok(types.NewNumber(math.Pow(l.Val, r.Val)))
	default: // TOKEN_PERCENT
		return types.Ok(types.NewNumber(math.Mod(l.Val, r.Val)))
	}
}

// opShift implements << and >> on operands truncated to int64
func (e *Evaluator) opShift(op parser.TokenType, left, right types.Value) types.Result {
	l, lok := left.(types.NumberValue)
	r, rok := right.(types.NumberValue)
	if !lok || !rok {
		return e.throwError(types.ExcType, "cannot apply %s to %s and %s", op, left.Type(), right.Type())
	}
	shift := int64(r.Val)
	if shift < 0 {
		return e.throwError(types.ExcRange, "negative shift count")
	}
	if shift >= 64 {
		return types.Ok(types.NewNumber(0))
	}
	base := int64(l.Val)
	if op == parser.TOKEN_LSHIFT {
		return types.Ok(types.NewNumber(float64(base << uint(shift))))
	}
	return types.Ok(types.NewNumber(float64(base >> uint(shift))))
}

// opCompare implements ordered comparison: IEEE between numbers,
// lexicographic between string boxes, TypeError for any other pairing
func (e *Evaluator) opCompare(op parser.TokenType, left, right types.Value) types.Result {
	if l, lok := left.(types.NumberValue); lok {
		if r, rok := right.(types.NumberValue); rok {
			return types.Ok(types.NewBool(compareNumbers(op, l.Val, r.Val)))
		}
	}
	if ls, lok := e.heap.StringOf(left); lok {
		if rs, rok := e.heap.StringOf(right); rok {
			cmp := strings.Compare(ls, rs)
			return types.Ok(types.NewBool(compareNumbers(op, float64(cmp), 0)))
		}
	}
	return e.throwError(types.ExcType, "cannot compare %s and %s", left.Type(), right.Type())
}

func compareNumbers(op parser.TokenType, l, r float64) bool {
	switch op {
	case parser.TOKEN_LT:
		return l < r
	case parser.TOKEN_LE:
		return l <= r
	case parser.TOKEN_GT:
		return l > r
	default: // TOKEN_GE
		return l >= r
	}
}

// valuesEqual implements ==: same-tag equality; refs compare by
// identity unless both referents are string boxes, which compare by
// content; heterogeneous pairings are unequal
func (e *Evaluator) valuesEqual(left, right types.Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	if left.Type() == types.TYPE_REF {
		if ls, lok := e.heap.StringOf(left); lok {
			if rs, rok := e.heap.StringOf(right); rok {
				return ls == rs
			}
			return false
		}
	}
	return left.Equal(right)
}
