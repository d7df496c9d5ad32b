package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"ore/heap"
	"ore/types"
)

// throwf allocates and raises an exception from a builtin
func throwf(ip heap.Interp, kind types.ExceptionKind, format string, args ...interface{}) types.Result {
	return types.Throw(ip.Heap().NewException(kind, fmt.Sprintf(format, args...)).Ref())
}

// builtinPrint writes the display form of its arguments separated by
// spaces, without a trailing newline
// print(v, ...) -> nil
func builtinPrint(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = ip.Heap().Display(arg)
	}
	fmt.Fprint(ip.Output(), strings.Join(parts, " "))
	return types.Ok(types.NewNil())
}

// builtinPrintln is print with a trailing newline
// println(v, ...) -> nil
func builtinPrintln(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	result := builtinPrint(ip, ctx, args)
	if !result.IsNormal() {
		return result
	}
	fmt.Fprintln(ip.Output())
	return types.Ok(types.NewNil())
}

// builtinTypeof returns the kind of a value as a string
// typeof(v) -> str
func builtinTypeof(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 1 {
		return throwf(ip, types.ExcType, "typeof expects 1 argument")
	}
	name := ""
	switch args[0].Type() {
	case types.TYPE_NIL:
		name = "nil"
	case types.TYPE_BOOL:
		name = "boolean"
	case types.TYPE_NUM:
		name = "number"
	default:
		obj, ok := ip.Heap().Deref(args[0])
		if !ok {
			return throwf(ip, types.ExcReference, "dangling reference")
		}
		name = obj.Kind().String()
	}
	return types.Ok(ip.Heap().NewString(name).Ref())
}

// builtinStr returns the display form of a value
// str(v) -> str
func builtinStr(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 1 {
		return throwf(ip, types.ExcType, "str expects 1 argument")
	}
	return types.Ok(ip.Heap().NewString(ip.Heap().Display(args[0])).Ref())
}

// builtinNum parses a string into a number; numbers pass through
// num(v) -> number
func builtinNum(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 1 {
		return throwf(ip, types.ExcType, "num expects 1 argument")
	}
	if n, ok := args[0].(types.NumberValue); ok {
		return types.Ok(n)
	}
	s, ok := ip.Heap().StringOf(args[0])
	if !ok {
		return throwf(ip, types.ExcType, "cannot convert %s to a number", args[0].Type())
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return throwf(ip, types.ExcType, "%q is not a number", s)
	}
	return types.Ok(types.NewNumber(val))
}

// builtinLen returns the length of a string box or array
// len(v) -> number
func builtinLen(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 1 {
		return throwf(ip, types.ExcType, "len expects 1 argument")
	}
	obj, ok := ip.Heap().Deref(args[0])
	if !ok {
		return throwf(ip, types.ExcType, "%s has no length", args[0].Type())
	}
	switch obj.Kind() {
	case heap.KindString, heap.KindArray:
		return types.Ok(types.NewNumber(float64(obj.Len())))
	default:
		return throwf(ip, types.ExcType, "%s has no length", obj.Kind())
	}
}

// builtinKeys returns an object's property keys in insertion order
// keys(obj) -> [str]
func builtinKeys(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 1 {
		return throwf(ip, types.ExcType, "keys expects 1 argument")
	}
	obj, ok := ip.Heap().Deref(args[0])
	if !ok {
		return throwf(ip, types.ExcType, "keys expects an object, got %s", args[0].Type())
	}
	keys := obj.Keys()
	elems := make([]types.Value, len(keys))
	for i, key := range keys {
		elems[i] = ip.Heap().NewString(key).Ref()
	}
	return types.Ok(ip.Heap().NewArray(elems).Ref())
}

// builtinContains reports whether an object has a property
// contains(obj, key) -> bool
func builtinContains(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	if len(args) != 2 {
		return throwf(ip, types.ExcType, "contains expects 2 arguments")
	}
	obj, ok := ip.Heap().Deref(args[0])
	if !ok {
		return throwf(ip, types.ExcType, "contains expects an object, got %s", args[0].Type())
	}
	key, ok := ip.Heap().PropertyKey(args[1])
	if !ok {
		return throwf(ip, types.ExcType, "%s is not a valid property key", args[1].Type())
	}
	return types.Ok(types.NewBool(obj.Contains(key)))
}

// builtinThrowError raises a fresh exception object with the given
// message; this is the builtin-side equivalent of the throw statement
// throw_error(message) -> never returns normally
func builtinThrowError(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
	msg := ""
	if len(args) > 0 {
		msg = ip.Heap().Display(args[0])
	}
	return throwf(ip, types.ExcUser, "%s", msg)
}
