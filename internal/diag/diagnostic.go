package diag

import (
	"nihil/internal/source"
)

// Note attaches a secondary location to a diagnostic, usually the
// declaration the primary finding speaks about.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is one replacement a suggested fix makes.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested edit set rendered behind --suggest.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding. Severity arrives resolved: the classifier
// maps each mismatch through the unit's policy before a Diagnostic
// exists, so a rendered finding never changes weight afterwards.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError builds a check-failing diagnostic. Infrastructure problems
// (unreadable imports, damaged bundles) use this directly; mismatch
// findings go through the classifier instead.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// WithNote returns a copy carrying one more secondary location.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns a copy carrying one more suggested edit set.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
