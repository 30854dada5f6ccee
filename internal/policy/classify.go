package policy

import (
	"nihil/internal/diag"
	"nihil/internal/nullness"
	"nihil/internal/source"
)

// Classifier turns mismatches into diagnostics under one unit's
// table. Dropping is explicit: a finding classifies to nothing only
// when its axis is off.
type Classifier struct {
	Table Table
}

// Classify resolves one mismatch. The second result is false when the
// axis suppresses it.
func (c Classifier) Classify(m nullness.Mismatch, span source.Span) (diag.Diagnostic, bool) {
	level := c.Table.Resolve(m.Origin)
	if level == LevelOff {
		return diag.Diagnostic{}, false
	}
	sev := diag.SevWarning
	if level == LevelError {
		sev = diag.SevError
	}
	return diag.New(sev, codeFor(m.Kind), span, message(m)), true
}

func codeFor(k nullness.Kind) diag.Code {
	switch k {
	case nullness.KindAssignedNonNull:
		return diag.NulAssignedNonNull
	case nullness.KindNullableDeref:
		return diag.NulNullableDeref
	case nullness.KindUnsafeCast:
		return diag.NulUnsafeCast
	case nullness.KindGenericMismatch:
		return diag.NulGenericMismatch
	case nullness.KindIntentConflict:
		return diag.NulIntentConflict
	}
	return diag.NulInfo
}

func message(m nullness.Mismatch) string {
	var msg string
	switch m.Kind {
	case nullness.KindAssignedNonNull:
		msg = "possibly null value flows into a non-null target"
	case nullness.KindNullableDeref:
		msg = "dereference of a possibly null value"
	case nullness.KindUnsafeCast:
		msg = "cast narrows nullability without a check"
	case nullness.KindGenericMismatch:
		msg = "type argument violates the parameter's nullness constraint"
	case nullness.KindIntentConflict:
		msg = "nullability annotation contradicts the declared non-null type"
	default:
		msg = "nullability mismatch"
	}
	if m.Origin == nullness.OriginOblivious {
		msg += "; the nullability originates in unchecked code"
	}
	return msg
}
