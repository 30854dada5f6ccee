package cfg

import (
	"nihil/internal/source"
	"nihil/internal/types"
)

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrAssign copies one local into another.
	InstrAssign InstrKind = iota
	// InstrNullConst stores the null literal into a local.
	InstrNullConst
	// InstrNewValue stores a freshly constructed value, known non-null.
	InstrNewValue
	// InstrCall invokes a signature and optionally binds its result.
	InstrCall
	// InstrDeref reads through a local: member access, indexing, any
	// use that faults on null.
	InstrDeref
	// InstrCast reinterprets a local at another reference type.
	InstrCast
	// InstrAssertNonNull is the unsafe escape: it suppresses the
	// diagnostic downstream by deferring the risk to runtime.
	InstrAssertNonNull
	// InstrNullTest stores the result of comparing a local against the
	// null literal into a boolean local.
	InstrNullTest
)

// Instr is one instruction. Kind selects which payload field is live.
type Instr struct {
	Kind InstrKind

	Assign   AssignInstr
	Null     NullConstInstr
	New      NewValueInstr
	Call     CallInstr
	Deref    DerefInstr
	Cast     CastInstr
	Assert   AssertInstr
	NullTest NullTestInstr

	Span source.Span
}

// AssignInstr copies Src into Dst.
type AssignInstr struct {
	Dst LocalID
	Src LocalID
}

// NullConstInstr stores null into Dst.
type NullConstInstr struct {
	Dst LocalID
}

// NewValueInstr stores a constructed value into Dst. Constructors,
// literals and arithmetic all produce values that cannot be null.
type NewValueInstr struct {
	Dst LocalID
}

// CallInstr invokes Sig with Args. TypeArgs instantiate the
// signature's type parameters at this site; the checker verifies them
// against declared constraints.
type CallInstr struct {
	HasDst   bool
	Dst      LocalID
	Sig      types.SigID
	Args     []LocalID
	TypeArgs []types.Ref
}

// DerefInstr reads through Src.
type DerefInstr struct {
	Src LocalID
}

// CastInstr stores Src viewed at type To into Dst.
type CastInstr struct {
	Dst LocalID
	Src LocalID
	To  types.Ref
}

// AssertInstr asserts Src non-null.
type AssertInstr struct {
	Src LocalID
}

// NullTestInstr stores (Src == null), or its negation, into Dst.
type NullTestInstr struct {
	Dst LocalID
	Src LocalID
	// Negated flips the polarity: Dst = (Src != null).
	Negated bool
}
