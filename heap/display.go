package heap

import (
	"fmt"
	"strings"

	"ore/types"
)

// Display returns the user-facing display form of a value: string boxes
// render bare (no quotes), everything else renders as Inspect. This is
// the coercion `..` and print use.
func (h *Heap) Display(v types.Value) string {
	if s, ok := h.StringOf(v); ok {
		return s
	}
	return h.Inspect(v)
}

// Inspect returns the literal form of a value: strings quoted, arrays
// and objects rendered recursively. Reference cycles print as "...".
func (h *Heap) Inspect(v types.Value) string {
	return h.inspect(v, make(map[types.Handle]bool))
}

func (h *Heap) inspect(v types.Value, seen map[types.Handle]bool) string {
	ref, ok := v.(types.RefValue)
	if !ok {
		if v == nil {
			return "nil"
		}
		return v.String()
	}
	obj, ok := h.Get(ref.Handle)
	if !ok {
		return v.String()
	}
	if seen[ref.Handle] {
		return "..."
	}

	switch obj.kind {
	case KindString:
		return fmt.Sprintf("%q", obj.str)
	case KindArray:
		seen[ref.Handle] = true
		defer delete(seen, ref.Handle)
		parts := make([]string, len(obj.elems))
		for i, elem := range obj.elems {
			parts[i] = h.inspect(elem, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindFunction:
		if obj.fn.Name != "" {
			return fmt.Sprintf("<function %s>", obj.fn.Name)
		}
		return "<function>"
	case KindNative:
		return "<native function>"
	case KindException:
		return fmt.Sprintf("<%s: %s>", obj.excKind, obj.excMsg)
	case KindModule:
		return "<module>"
	default:
		seen[ref.Handle] = true
		defer delete(seen, ref.Handle)
		var b strings.Builder
		b.WriteString("{")
		for _, key := range obj.props.Keys() {
			val, _ := obj.props.Get(key)
			fmt.Fprintf(&b, " %q: %s,", key, h.inspect(val.(types.Value), seen))
		}
		b.WriteString(" }")
		return b.String()
	}
}
