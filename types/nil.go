package types

// NilValue represents the absence of a value
type NilValue struct{}

// Type returns the type code for nil
func (n NilValue) Type() TypeCode {
	return TYPE_NIL
}

// String returns the Ore literal representation
func (n NilValue) String() string {
	return "nil"
}

// Equal checks equality; nil only equals nil
func (n NilValue) Equal(other Value) bool {
	if other == nil {
		return false
	}
	return other.Type() == TYPE_NIL
}

// Truthy returns the Ore truthiness; nil is always false
func (n NilValue) Truthy() bool {
	return false
}

// NewNil creates a new NilValue
func NewNil() NilValue {
	return NilValue{}
}
