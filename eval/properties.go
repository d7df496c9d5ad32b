package eval

import (
	"strings"

	"ore/heap"
	"ore/parser"
	"ore/types"
)

// memberRef is a resolved assignment target: either an array slot or a
// property of an object
type memberRef struct {
	obj     *heap.Object
	key     string
	index   int
	isIndex bool
}

func (r memberRef) read() types.Value {
	if r.isIndex {
		return r.obj.IndexGet(r.index)
	}
	return r.obj.Get(r.key)
}

func (r memberRef) write(v types.Value) {
	if r.isIndex {
		r.obj.IndexSet(r.index, v)
	} else {
		r.obj.Put(r.key, v)
	}
}

// resolveMember evaluates a member expression into a writable target.
// Only heap objects can be written to; assigning through a scalar is a
// TypeError. Array writes with a number key index the sequence and must
// be non-negative integers; other keys behave as property puts.
func (e *Evaluator) resolveMember(node *parser.MemberExpr, ctx *types.Context) (memberRef, types.Result) {
	objResult := e.Eval(node.Object, ctx)
	if !objResult.IsNormal() {
		return memberRef{}, objResult
	}
	obj, ok := e.heap.Deref(objResult.Val)
	if !ok {
		return memberRef{}, e.throwError(types.ExcType, "cannot set a property on %s", objResult.Val.Type())
	}
	if obj.Kind() == heap.KindString {
		return memberRef{}, e.throwError(types.ExcType, "strings are immutable")
	}

	e.protect(obj.Ref())
	defer e.release(1)

	keyVal, result := e.memberKey(node, ctx)
	if !result.IsNormal() {
		return memberRef{}, result
	}

	if obj.Kind() == heap.KindArray {
		if num, isNum := keyVal.(types.NumberValue); isNum && node.Computed {
			idx := int(num.Val)
			if float64(idx) != num.Val || idx < 0 {
				return memberRef{}, e.throwError(types.ExcRange, "invalid array index %s", num.String())
			}
			return memberRef{obj: obj, index: idx, isIndex: true}, types.Ok(nil)
		}
	}

	key, ok := e.heap.PropertyKey(keyVal)
	if !ok {
		return memberRef{}, e.throwError(types.ExcType, "%s is not a valid property key", keyVal.Type())
	}
	return memberRef{obj: obj, key: key}, types.Ok(nil)
}

// memberKey produces the key value for a member expression: the literal
// identifier for dotted access, the evaluated expression for computed
// access.
func (e *Evaluator) memberKey(node *parser.MemberExpr, ctx *types.Context) (types.Value, types.Result) {
	if !node.Computed {
		ident := node.Property.(*parser.IdentifierExpr)
		return e.heap.NewString(ident.Name).Ref(), types.Ok(nil)
	}
	keyResult := e.Eval(node.Property, ctx)
	if !keyResult.IsNormal() {
		return nil, keyResult
	}
	switch key := keyResult.Val.(type) {
	case types.NumberValue:
		return key, types.Ok(nil)
	case types.RefValue:
		if _, ok := e.heap.StringOf(key); ok {
			return key, types.Ok(nil)
		}
	}
	return nil, e.throwError(types.ExcType, "%s is not a valid property key", keyResult.Val.Type())
}

// evalMember evaluates property access: obj.p and obj[e]. Missing
// properties yield nil, never an error. Scalars carry an empty method
// table, so member access on them also yields nil; strings promote to
// the string-box method surface.
func (e *Evaluator) evalMember(node *parser.MemberExpr, ctx *types.Context) types.Result {
	objResult := e.Eval(node.Object, ctx)
	if !objResult.IsNormal() {
		return objResult
	}

	e.protect(objResult.Val)
	defer e.release(1)

	keyVal, result := e.memberKey(node, ctx)
	if !result.IsNormal() {
		return result
	}

	obj, isRef := e.heap.Deref(objResult.Val)
	if !isRef {
		// nil/bool/number have empty method tables
		return types.Ok(types.NewNil())
	}

	switch obj.Kind() {
	case heap.KindString:
		return e.stringMember(obj, keyVal, node.Computed)
	case heap.KindArray:
		return e.arrayMember(obj, keyVal, node.Computed)
	default:
		key, ok := e.heap.PropertyKey(keyVal)
		if !ok {
			return e.throwError(types.ExcType, "%s is not a valid property key", keyVal.Type())
		}
		return types.Ok(obj.Get(key))
	}
}

// stringMember handles the string-box surface: byte length, indexed
// char access (one-char string box), and the method table.
func (e *Evaluator) stringMember(obj *heap.Object, keyVal types.Value, computed bool) types.Result {
	if num, isNum := keyVal.(types.NumberValue); isNum && computed {
		idx := int(num.Val)
		s := obj.Str()
		if float64(idx) != num.Val || idx < 0 || idx >= len(s) {
			return types.Ok(types.NewNil())
		}
		return types.Ok(e.heap.NewString(s[idx : idx+1]).Ref())
	}
	key, ok := e.heap.PropertyKey(keyVal)
	if !ok {
		return e.throwError(types.ExcType, "%s is not a valid property key", keyVal.Type())
	}
	if key == "length" {
		return types.Ok(types.NewNumber(float64(len(obj.Str()))))
	}
	if method, ok := e.stringMethod(obj, key); ok {
		return types.Ok(method)
	}
	return types.Ok(types.NewNil())
}

// arrayMember handles the array surface: computed numeric indexing
// (out-of-range reads yield nil), live length, push and pop.
func (e *Evaluator) arrayMember(obj *heap.Object, keyVal types.Value, computed bool) types.Result {
	if num, isNum := keyVal.(types.NumberValue); isNum && computed {
		idx := int(num.Val)
		if float64(idx) != num.Val {
			return types.Ok(types.NewNil())
		}
		return types.Ok(obj.IndexGet(idx))
	}
	key, ok := e.heap.PropertyKey(keyVal)
	if !ok {
		return e.throwError(types.ExcType, "%s is not a valid property key", keyVal.Type())
	}
	switch key {
	case "length":
		return types.Ok(types.NewNumber(float64(obj.Len())))
	case "push":
		return types.Ok(e.boundNative(obj, arrayPush))
	case "pop":
		return types.Ok(e.boundNative(obj, arrayPop))
	}
	return types.Ok(obj.Get(key))
}

// boundNative allocates a native callable bound to a receiver. The
// receiver is stowed in the native's property map so the collector sees
// the edge and keeps the receiver alive.
func (e *Evaluator) boundNative(recv *heap.Object, fn func(recv *heap.Object) heap.NativeFunc) types.Value {
	obj := e.heap.NewNative(fn(recv))
	obj.Put("receiver", recv.Ref())
	return obj.Ref()
}

// arrayPush appends its arguments and returns the new length
func arrayPush(recv *heap.Object) heap.NativeFunc {
	return func(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
		for _, arg := range args {
			recv.Push(arg)
		}
		return types.Ok(types.NewNumber(float64(recv.Len())))
	}
}

// arrayPop removes and returns the last element, nil when empty
func arrayPop(recv *heap.Object) heap.NativeFunc {
	return func(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
		return types.Ok(recv.Pop())
	}
}

// stringMethod resolves the string-box method table
func (e *Evaluator) stringMethod(recv *heap.Object, name string) (types.Value, bool) {
	var fn func(s string) string
	switch name {
	case "upcase":
		fn = strings.ToUpper
	case "downcase":
		fn = strings.ToLower
	case "trim":
		fn = strings.TrimSpace
	case "reverse":
		fn = reverseString
	default:
		return nil, false
	}
	obj := e.heap.NewNative(func(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
		return types.Ok(ip.Heap().NewString(fn(recv.Str())).Ref())
	})
	obj.Put("receiver", recv.Ref())
	return obj.Ref(), true
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
