package types

import (
	"math"
	"strconv"
)

// NumberValue represents an Ore number (IEEE-754 double)
type NumberValue struct {
	Val float64
}

// Type returns the type code for numbers
func (n NumberValue) Type() TypeCode {
	return TYPE_NUM
}

// String returns the Ore literal representation.
// Whole numbers print without a decimal point (42, not 42.0).
func (n NumberValue) String() string {
	if math.IsNaN(n.Val) {
		return "NaN"
	}
	if math.IsInf(n.Val, 1) {
		return "Inf"
	}
	if math.IsInf(n.Val, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(n.Val, 'g', -1, 64)
}

// Equal checks equality with IEEE semantics (NaN never equals NaN)
func (n NumberValue) Equal(other Value) bool {
	if other == nil {
		return false
	}
	otherNum, ok := other.(NumberValue)
	if !ok {
		return false
	}
	return n.Val == otherNum.Val
}

// Truthy returns the Ore truthiness; every number is truthy, including 0
func (n NumberValue) Truthy() bool {
	return true
}

// NewNumber creates a new NumberValue
func NewNumber(val float64) NumberValue {
	return NumberValue{Val: val}
}

// KeyString returns the decimal string form used when a number is a
// property key, so o[1] and o["1"] address the same slot.
func (n NumberValue) KeyString() string {
	return n.String()
}
