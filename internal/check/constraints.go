package check

import (
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// InheritConstraints copies the base definition's constraint onto each
// shared type parameter of a derived definition. Constraints copy once
// at construction; there is no propagation pass to rerun and no
// override. Kind knowledge copies along: a parameter the base pinned
// to reference or value kind stays pinned in the derived definition.
func (c *Checker) InheritConstraints(base, derived []types.TypeID) {
	n := len(base)
	if len(derived) < n {
		n = len(derived)
	}
	for i := 0; i < n; i++ {
		bi, ok := c.in.TypeParamInfo(base[i])
		if !ok {
			continue
		}
		di, ok := c.in.TypeParamInfo(derived[i])
		if !ok {
			continue
		}
		di.Constraint = bi.Constraint
		if di.RefKind == types.ParamKindUnknown {
			di.RefKind = bi.RefKind
		}
	}
}

// Instantiate checks type arguments against their parameters'
// constraints and returns the effective argument refs the caller
// substitutes with. Constraint violations surface as
// GenericInstantiationMismatch findings anchored at the site.
func (c *Checker) Instantiate(params []types.TypeID, args []types.Ref, at source.Span) ([]types.Ref, []Finding) {
	var out []Finding
	eff := make([]types.Ref, len(args))
	for i, arg := range args {
		eff[i] = c.effectiveArg(arg)
		if i >= len(params) {
			continue
		}
		info, ok := c.in.TypeParamInfo(params[i])
		if !ok {
			continue
		}
		var expected nullness.Value
		switch info.Constraint {
		case types.RequiresNullable:
			expected = nullness.Nullable
		case types.RequiresNonNull:
			expected = nullness.NonNull
		default:
			continue
		}
		outer, ok := c.in.Outer(eff[i])
		if !ok {
			// Value-kind argument against a reference constraint is a
			// kind error the front end already owns.
			continue
		}
		actual := outer.Null
		if outer.Var.IsValid() {
			actual = nullness.Unresolved
		}
		if m, ok := nullness.Check(nullness.KindGenericMismatch, expected, actual); !ok {
			if outer.Foreign {
				m = m.WithForeignOrigin()
			}
			out = append(out, Finding{Mismatch: m, Span: at})
		}
	}
	return eff, out
}

// effectiveArg resolves the nullness assumed for a bare type-parameter
// argument. An unconstrained imported parameter defaults to nullable
// with foreign attribution: unknown foreign code may hand back null.
// Locally authored unconstrained parameters stay non-null, and an
// explicit marker or pending inference on the argument always wins.
func (c *Checker) effectiveArg(arg types.Ref) types.Ref {
	info, ok := c.in.TypeParamInfo(arg.Type)
	if !ok || info.Constraint != types.Unconstrained || !info.Imported {
		return arg
	}
	outer, ok := c.in.Outer(arg)
	if !ok {
		return arg
	}
	if outer.Null != nullness.NonNull || outer.Var.IsValid() || outer.Foreign {
		return arg
	}
	return c.in.WithOuter(arg, nullness.Slot{Null: nullness.Nullable, Foreign: true})
}
