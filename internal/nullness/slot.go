package nullness

// VarID names one inference variable. Fresh variables are allocated per
// expression during whole-module inference and resolved at the
// generalization boundary.
type VarID uint32

// NoVarID marks a slot that never needed inference.
const NoVarID VarID = 0

// IsValid reports whether the ID refers to an allocated variable.
func (id VarID) IsValid() bool {
	return id != NoVarID
}

// Slot is the nullability of a single reference position inside a
// type. A type carries one slot per reference position, outermost
// first in depth-first order; structural type identity never looks at
// slots.
type Slot struct {
	Null Value
	// Var is set while Null is Unresolved and names the inference
	// variable that will decide this position.
	Var VarID
	// Foreign marks a position whose nullability was defaulted from a
	// unit compiled without checking. The classifier attributes
	// mismatches on such positions to the oblivious axis.
	Foreign bool
}

// Concrete builds a committed slot.
func Concrete(v Value) Slot {
	return Slot{Null: v}
}

// Deferred builds a slot waiting on an inference variable.
func Deferred(id VarID) Slot {
	return Slot{Null: Unresolved, Var: id}
}
