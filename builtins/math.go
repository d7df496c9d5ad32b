package builtins

import (
	"math"

	"ore/heap"
	"ore/types"
)

// numberArg extracts a required number argument
func numberArg(ip heap.Interp, args []types.Value, i int) (float64, types.Result) {
	if i >= len(args) {
		return 0, throwf(ip, types.ExcType, "missing number argument")
	}
	n, ok := args[i].(types.NumberValue)
	if !ok {
		return 0, throwf(ip, types.ExcType, "expected a number, got %s", args[i].Type())
	}
	return n.Val, types.Ok(nil)
}

// mathUnary wraps a one-argument math function as a builtin
func mathUnary(fn func(float64) float64) Func {
	return func(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
		n, r := numberArg(ip, args, 0)
		if !r.IsNormal() {
			return r
		}
		return types.Ok(types.NewNumber(fn(n)))
	}
}

var (
	builtinAbs   = mathUnary(math.Abs)
	builtinFloor = mathUnary(math.Floor)
	builtinCeil  = mathUnary(math.Ceil)
	builtinRound = mathUnary(math.Round)
	builtinSqrt  = mathUnary(math.Sqrt)
)

// builtinMin returns the smallest of its number arguments
// min(n, ...) -> number
func builtinMin(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	return minmax(ip, args, math.Min)
}

// builtinMax returns the largest of its number arguments
// max(n, ...) -> number
func builtinMax(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	return minmax(ip, args, math.Max)
}

func minmax(ip heap.Interp, args []types.Value, pick func(a, b float64) float64) types.Result {
	if len(args) == 0 {
		return throwf(ip, types.ExcType, "expected at least 1 argument")
	}
	best, r := numberArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	for i := 1; i < len(args); i++ {
		n, r := numberArg(ip, args, i)
		if !r.IsNormal() {
			return r
		}
		best = pick(best, n)
	}
	return types.Ok(types.NewNumber(best))
}
