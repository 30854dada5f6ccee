package check

import (
	"nihil/internal/diag"
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// ApplyNullable applies a source-level nullable marker to a declared
// type. The marker is valid only on types statically known to be
// references: a generic parameter must have its kind pinned before ?
// may attach, and value kinds take option, never a nullable reference.
// Invalid applications report and return the ref unchanged, keeping
// analysis going on the declared type.
func (c *Checker) ApplyNullable(r types.Ref, at source.Span, rep diag.Reporter) types.Ref {
	if info, ok := c.in.TypeParamInfo(r.Type); ok {
		switch info.RefKind {
		case types.ParamKindUnknown:
			diag.ReportError(rep, diag.NulParamKindUnknown, at,
				"cannot apply ? to "+c.in.Describe(r.Type)+" before its kind is known").Emit()
			return r
		case types.ParamKindValue:
			diag.ReportError(rep, diag.NulParamKindUnknown, at,
				"? on value parameter "+c.in.Describe(r.Type)+" needs option, not a nullable reference").Emit()
			return r
		}
	}
	if !c.in.HasOuter(r) {
		diag.ReportError(rep, diag.NulParamKindUnknown, at,
			"? applies only to reference types, not "+c.in.Describe(r.Type)).Emit()
		return r
	}
	// An explicit marker decides the position: any deferred variable
	// or foreign default on the outer slot is overruled.
	return c.in.WithOuter(r, nullness.Concrete(nullness.Nullable))
}
