package cfg

import "nihil/internal/source"

// TermKind enumerates block terminators.
type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermIf
	TermMatch
	TermReturn
	TermUnreachable
)

// Terminator ends a block. Kind selects which payload field is live.
type Terminator struct {
	Kind TermKind

	Goto   GotoTerm
	If     IfTerm
	Match  MatchTerm
	Return ReturnTerm

	Span source.Span
}

type GotoTerm struct {
	Target BlockID
}

// IfTerm branches on a boolean local. Short-circuit operators arrive
// pre-lowered into chains of these, which is how left-operand
// narrowing dominates the right operand.
type IfTerm struct {
	Cond LocalID
	Then BlockID
	Else BlockID
}

// MatchTerm is a pattern match collapsed to what nullability cares
// about: whether the first clause is exactly the null literal, where
// the null clause goes, and where every later clause goes.
type MatchTerm struct {
	// Scrutinees lists the matched locals. More than one means a
	// multi-value match, which never narrows.
	Scrutinees []LocalID
	// NullFirst is set when the first clause is the null literal
	// pattern. Only then does the rest path narrow.
	NullFirst  bool
	NullTarget BlockID
	RestTarget BlockID
	// Bind is the rest-clause binding for the scrutinee, NoLocalID
	// when the clauses bind nothing.
	Bind LocalID
}

type ReturnTerm struct {
	HasValue bool
	Value    LocalID
}

// Succs appends the terminator's successor blocks to out.
func (t *Terminator) Succs(out []BlockID) []BlockID {
	switch t.Kind {
	case TermGoto:
		return append(out, t.Goto.Target)
	case TermIf:
		return append(out, t.If.Then, t.If.Else)
	case TermMatch:
		return append(out, t.Match.NullTarget, t.Match.RestTarget)
	}
	return out
}
