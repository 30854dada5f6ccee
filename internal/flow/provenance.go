package flow

import (
	"nihil/internal/cfg"
	"nihil/internal/types"
)

// guard records what a boolean local proves about another local:
// when the boolean is whenTrue, arg is non-null.
type guard struct {
	arg      cfg.LocalID
	whenTrue bool
	ok       bool
}

// provenance computes, in one pass, which boolean locals hold null
// tests or behavioral guard results. A local qualifies only when it is
// written exactly once in the whole body and that write is the test:
// any other write could launder an unrelated value through it.
func provenance(f *cfg.Func, sigs *types.SigTable) []guard {
	writes := make([]uint8, len(f.Locals))
	cand := make([]guard, len(f.Locals))

	bump := func(id cfg.LocalID) {
		if id != cfg.NoLocalID && int(id) < len(writes) && writes[id] < 2 {
			writes[id]++
		}
	}

	for b := range f.Blocks {
		for i := range f.Blocks[b].Instrs {
			ins := &f.Blocks[b].Instrs[i]
			switch ins.Kind {
			case cfg.InstrAssign:
				bump(ins.Assign.Dst)
			case cfg.InstrNullConst:
				bump(ins.Null.Dst)
			case cfg.InstrNewValue:
				bump(ins.New.Dst)
			case cfg.InstrCast:
				bump(ins.Cast.Dst)
			case cfg.InstrNullTest:
				bump(ins.NullTest.Dst)
				if int(ins.NullTest.Dst) < len(cand) {
					cand[ins.NullTest.Dst] = guard{
						arg:      ins.NullTest.Src,
						whenTrue: ins.NullTest.Negated,
						ok:       true,
					}
				}
			case cfg.InstrCall:
				if !ins.Call.HasDst {
					continue
				}
				bump(ins.Call.Dst)
				if g, ok := callGuard(&ins.Call, sigs); ok && int(ins.Call.Dst) < len(cand) {
					cand[ins.Call.Dst] = g
				}
			}
		}
	}

	for i := range cand {
		if writes[i] != 1 {
			cand[i] = guard{}
		}
	}
	return cand
}

// callGuard extracts guard provenance from a callee's behavioral tags.
// Assertion variants behave like the when-true/when-false guards for
// narrowing: if the call returned the stated boolean, the argument
// was non-null (or the callee would have thrown).
func callGuard(call *cfg.CallInstr, sigs *types.SigTable) (guard, bool) {
	if sigs == nil || !call.Sig.IsValid() {
		return guard{}, false
	}
	sig, ok := sigs.Get(call.Sig)
	if !ok {
		return guard{}, false
	}
	for _, tag := range sig.Tags {
		var whenTrue bool
		switch tag.Kind {
		case types.BehaviorNonNullWhenTrue, types.BehaviorAssertsIfTrue:
			whenTrue = true
		case types.BehaviorNonNullWhenFalse, types.BehaviorAssertsIfFalse:
			whenTrue = false
		default:
			continue
		}
		if int(tag.Param) >= len(call.Args) {
			continue
		}
		return guard{arg: call.Args[tag.Param], whenTrue: whenTrue, ok: true}, true
	}
	return guard{}, false
}
