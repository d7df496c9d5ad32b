package types

import "fmt"

// RefValue is a Value whose payload is a heap handle.
// Comparing two refs here compares identity; content equality for string
// boxes is heap-aware and lives with the evaluator's operators.
type RefValue struct {
	Handle Handle
}

// Type returns the type code for references
func (r RefValue) Type() TypeCode {
	return TYPE_REF
}

// String returns a handle-based placeholder; the heap renders the real
// display form since only it can see the referent.
func (r RefValue) String() string {
	return fmt.Sprintf("<object #%d>", r.Handle)
}

// Equal checks reference identity
func (r RefValue) Equal(other Value) bool {
	if other == nil {
		return false
	}
	otherRef, ok := other.(RefValue)
	if !ok {
		return false
	}
	return r.Handle == otherRef.Handle
}

// Truthy returns the Ore truthiness; every object is truthy, including
// empty strings and empty arrays
func (r RefValue) Truthy() bool {
	return true
}

// NewRef creates a new RefValue for a heap handle
func NewRef(h Handle) RefValue {
	return RefValue{Handle: h}
}
