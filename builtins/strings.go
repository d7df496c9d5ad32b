package builtins

import (
	"strings"

	"ore/heap"
	"ore/types"
)

// stringArg extracts a required string-box argument
func stringArg(ip heap.Interp, args []types.Value, i int) (string, types.Result) {
	if i >= len(args) {
		return "", throwf(ip, types.ExcType, "missing string argument")
	}
	s, ok := ip.Heap().StringOf(args[i])
	if !ok {
		return "", throwf(ip, types.ExcType, "expected a string, got %s", args[i].Type())
	}
	return s, types.Ok(nil)
}

// builtinUpcase uppercases a string
// upcase(str) -> str
func builtinUpcase(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	return types.Ok(ip.Heap().NewString(strings.ToUpper(s)).Ref())
}

// builtinDowncase lowercases a string
// downcase(str) -> str
func builtinDowncase(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	return types.Ok(ip.Heap().NewString(strings.ToLower(s)).Ref())
}

// builtinTrim strips leading and trailing whitespace
// trim(str) -> str
func builtinTrim(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	return types.Ok(ip.Heap().NewString(strings.TrimSpace(s)).Ref())
}

// builtinIndex returns the 0-based position of needle in haystack, or
// -1 when absent
// index(haystack, needle) -> number
func builtinIndex(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	haystack, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	needle, r := stringArg(ip, args, 1)
	if !r.IsNormal() {
		return r
	}
	return types.Ok(types.NewNumber(float64(strings.Index(haystack, needle))))
}

// builtinExplode splits a string into an array of pieces
// explode(str, sep) -> [str]
func builtinExplode(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	s, r := stringArg(ip, args, 0)
	if !r.IsNormal() {
		return r
	}
	sep, r := stringArg(ip, args, 1)
	if !r.IsNormal() {
		return r
	}
	pieces := strings.Split(s, sep)
	elems := make([]types.Value, len(pieces))
	for i, piece := range pieces {
		elems[i] = ip.Heap().NewString(piece).Ref()
	}
	return types.Ok(ip.Heap().NewArray(elems).Ref())
}

// builtinImplode joins an array of values with a separator, coercing
// elements through their display form
// implode(arr, sep) -> str
func builtinImplode(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 2 {
		return throwf(ip, types.ExcType, "implode expects 2 arguments")
	}
	arr, ok := ip.Heap().DerefKind(args[0], heap.KindArray)
	if !ok {
		return throwf(ip, types.ExcType, "implode expects an array, got %s", args[0].Type())
	}
	sep, r := stringArg(ip, args, 1)
	if !r.IsNormal() {
		return r
	}
	parts := make([]string, len(arr.Elements()))
	for i, elem := range arr.Elements() {
		parts[i] = ip.Heap().Display(elem)
	}
	return types.Ok(ip.Heap().NewString(strings.Join(parts, sep)).Ref())
}
