package flow

import (
	"nihil/internal/cfg"
	"nihil/internal/nullness"
	"nihil/internal/types"
)

// transfer runs one block's instructions over facts, mutating them in
// place. With a non-nil emit it also reports findings; the fixpoint
// runs it silent and the emit pass runs it once per reachable block.
func (a *analysis) transfer(b cfg.BlockID, facts []nullness.Value, emit func(Finding)) {
	blk := a.fn.Block(b)
	if blk == nil {
		return
	}
	for i := range blk.Instrs {
		ins := &blk.Instrs[i]
		switch ins.Kind {
		case cfg.InstrAssign:
			a.assign(ins, facts, emit)
		case cfg.InstrNullConst:
			a.nullConst(ins, facts, emit)
		case cfg.InstrNewValue:
			facts[ins.New.Dst] = nullness.NonNull
		case cfg.InstrCall:
			a.call(ins, facts, emit)
		case cfg.InstrDeref:
			a.deref(ins, facts, emit)
		case cfg.InstrCast:
			a.cast(ins, facts, emit)
		case cfg.InstrAssertNonNull:
			a.assert(ins, facts, emit)
		case cfg.InstrNullTest:
			// Provenance handled these up front; no ref fact changes.
		}
	}
	if blk.Term.Kind == cfg.TermReturn && blk.Term.Return.HasValue {
		a.ret(&blk.Term, facts, emit)
	}
}

// assign moves the source's fact into the destination. The fact is the
// value's truth, not the declared type: assigning a possibly null
// value to a non-null binding warns here and the binding stays
// possibly null afterwards, so a later dereference warns again.
func (a *analysis) assign(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	src := facts[ins.Assign.Src]
	if emit != nil {
		expected := a.staticOuter(ins.Assign.Dst)
		if m, ok := nullness.Check(nullness.KindAssignedNonNull, expected, src); !ok {
			emit(Finding{
				Mismatch: a.attribute(m, ins.Assign.Src),
				Span:     ins.Span,
				Local:    ins.Assign.Dst,
			})
		}
	}
	facts[ins.Assign.Dst] = src
}

func (a *analysis) nullConst(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	if emit != nil {
		expected := a.staticOuter(ins.Null.Dst)
		if m, ok := nullness.Check(nullness.KindAssignedNonNull, expected, nullness.Nullable); !ok {
			emit(Finding{Mismatch: m, Span: ins.Span, Local: ins.Null.Dst})
		}
	}
	facts[ins.Null.Dst] = nullness.Nullable
}

// call checks arguments against the callee's substituted parameters,
// binds the result fact, and applies behavioral post-conditions.
func (a *analysis) call(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	call := &ins.Call
	sig, ok := a.lookupSig(call.Sig)
	if !ok {
		if call.HasDst {
			facts[call.Dst] = a.staticOuter(call.Dst)
		}
		return
	}

	subst := a.substitution(sig, call.TypeArgs)

	for i, arg := range call.Args {
		if i >= len(sig.Params) {
			break
		}
		expected := a.expectedParam(sig, i, subst)
		if emit != nil {
			if m, ok := nullness.Check(nullness.KindAssignedNonNull, expected, facts[arg]); !ok {
				emit(Finding{
					Mismatch: a.attribute(m, arg),
					Span:     ins.Span,
					Local:    arg,
				})
			}
		}
	}

	if call.HasDst {
		facts[call.Dst] = a.resultFact(sig, subst)
	}

	// EnsuresNonNull holds regardless of path: the callee either
	// validated the argument or threw.
	for _, tag := range sig.Tags {
		if tag.Kind != types.BehaviorEnsuresNonNull {
			continue
		}
		if int(tag.Param) < len(call.Args) {
			facts[call.Args[tag.Param]] = nullness.NonNull
		}
	}
}

func (a *analysis) deref(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	src := ins.Deref.Src
	if emit != nil {
		if m, ok := nullness.Check(nullness.KindNullableDeref, nullness.NonNull, facts[src]); !ok {
			emit(Finding{Mismatch: a.attribute(m, src), Span: ins.Span, Local: src})
		}
	}
	// A dereference that did not fault proves non-null. Oblivious
	// stays oblivious: unchecked code earns no facts.
	if facts[src] == nullness.Nullable {
		facts[src] = nullness.NonNull
	}
}

// cast flags a top-position cast-down on a possibly null fact like a
// dereference, and container-position narrowing from the static slots
// alone. The value's fact passes through: a cast launders nothing.
func (a *analysis) cast(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	src := ins.Cast.Src
	if emit != nil {
		toOuter := nullness.NonNull
		if outer, ok := a.in.Outer(ins.Cast.To); ok {
			toOuter = slotValue(outer)
		}
		if toOuter == nullness.NonNull {
			if m, ok := nullness.Check(nullness.KindNullableDeref, nullness.NonNull, facts[src]); !ok {
				emit(Finding{Mismatch: a.attribute(m, src), Span: ins.Span, Local: src})
			}
		}
		a.castInner(ins, emit)
	}
	facts[ins.Cast.Dst] = facts[src]
}

// castInner compares the container positions of the source's static
// type against the cast target. Narrowing an inner position cannot be
// observed by flow, so it is flagged statically.
func (a *analysis) castInner(ins *cfg.Instr, emit func(Finding)) {
	srcLocal := a.fn.Local(ins.Cast.Src)
	if srcLocal == nil {
		return
	}
	srcInner := a.in.Inner(srcLocal.Type)
	toInner := a.in.Inner(ins.Cast.To)
	n := len(srcInner)
	if len(toInner) < n {
		n = len(toInner)
	}
	for i := 0; i < n; i++ {
		expected := slotValue(toInner[i])
		actual := slotValue(srcInner[i])
		if m, ok := nullness.Check(nullness.KindUnsafeCast, expected, actual); !ok {
			if srcInner[i].Foreign {
				m = m.WithForeignOrigin()
			}
			emit(Finding{Mismatch: m, Span: ins.Span, Local: ins.Cast.Src})
		}
	}
}

// assert is the unsafe escape: it flags a possibly null operand once,
// then forcibly narrows. The risk moves to runtime and is not
// re-flagged downstream.
func (a *analysis) assert(ins *cfg.Instr, facts []nullness.Value, emit func(Finding)) {
	src := ins.Assert.Src
	if emit != nil {
		if m, ok := nullness.Check(nullness.KindNullableDeref, nullness.NonNull, facts[src]); !ok {
			emit(Finding{Mismatch: a.attribute(m, src), Span: ins.Span, Local: src})
		}
	}
	facts[src] = nullness.NonNull
}

func (a *analysis) ret(t *cfg.Terminator, facts []nullness.Value, emit func(Finding)) {
	if emit == nil || !a.hasResult {
		return
	}
	val := t.Return.Value
	if m, ok := nullness.Check(nullness.KindAssignedNonNull, a.retNull, facts[val]); !ok {
		emit(Finding{Mismatch: a.attribute(m, val), Span: t.Span, Local: val})
	}
}

func (a *analysis) lookupSig(id types.SigID) (*types.Sig, bool) {
	if a.sigs == nil || !id.IsValid() {
		return nil, false
	}
	return a.sigs.Get(id)
}

// substitution maps the callee's type parameters to the call site's
// type arguments. Arity mismatches yield no substitution; the checker
// reported them in phase a.
func (a *analysis) substitution(sig *types.Sig, args []types.Ref) map[types.TypeID]types.Ref {
	if len(sig.TypeParams) == 0 || len(args) != len(sig.TypeParams) {
		return nil
	}
	m := make(map[types.TypeID]types.Ref, len(args))
	for i, tp := range sig.TypeParams {
		m[tp] = args[i]
	}
	return m
}

// expectedParam is the nullness a call site must satisfy for parameter
// i: the substituted outer position, loosened to Nullable by a
// may-be-null annotation.
func (a *analysis) expectedParam(sig *types.Sig, i int, subst map[types.TypeID]types.Ref) nullness.Value {
	if sig.ParamMaybeNull(i) {
		return nullness.Nullable
	}
	ref := sig.Params[i]
	if subst != nil {
		ref = a.in.SubstituteRef(ref, subst)
	}
	outer, ok := a.in.Outer(ref)
	if !ok {
		return nullness.Oblivious
	}
	return slotValue(outer)
}

// resultFact is the nullness a call's result carries into its
// destination.
func (a *analysis) resultFact(sig *types.Sig, subst map[types.TypeID]types.Ref) nullness.Value {
	if sig.ResultMaybeNull() {
		return nullness.Nullable
	}
	ref := sig.Result
	if subst != nil {
		ref = a.in.SubstituteRef(ref, subst)
	}
	outer, ok := a.in.Outer(ref)
	if !ok {
		return nullness.NonNull
	}
	return slotValue(outer)
}

func (a *analysis) attribute(m nullness.Mismatch, id cfg.LocalID) nullness.Mismatch {
	if a.foreignOuter(id) {
		return m.WithForeignOrigin()
	}
	return m
}
