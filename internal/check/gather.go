package check

import (
	"nihil/internal/cfg"
	"nihil/internal/nullness"
)

// GatherFunc feeds the inference table from one function body. Every
// write into a position still waiting on a variable widens that
// variable: null literals contribute Nullable, copies and casts
// contribute the source's slot (a variable source becomes a
// constraint edge), call results contribute the callee's result slot.
// Call arguments widen the callee's parameter variables the same way,
// which is all the cross-function composition there is.
//
// Runs strictly before any commit the gathered variables appear in.
func (c *Checker) GatherFunc(f *cfg.Func) {
	if f == nil {
		return
	}
	var resultSlot nullness.Slot
	haveResultVar := false
	if sig, ok := c.tab.Get(f.Sig); ok && !sig.Imported {
		if outer, hasOuter := c.in.Outer(sig.Result); hasOuter && outer.Var.IsValid() {
			resultSlot = outer
			haveResultVar = true
		}
	}

	for bi := range f.Blocks {
		blk := &f.Blocks[bi]
		for ii := range blk.Instrs {
			ins := &blk.Instrs[ii]
			switch ins.Kind {
			case cfg.InstrNullConst:
				c.widenLocal(f, ins.Null.Dst, nullness.Concrete(nullness.Nullable))
			case cfg.InstrNewValue:
				// Construction is non-null; contributes no bound.
			case cfg.InstrAssign:
				c.widenLocal(f, ins.Assign.Dst, c.outerOf(f, ins.Assign.Src))
			case cfg.InstrCast:
				c.widenLocal(f, ins.Cast.Dst, c.outerOf(f, ins.Cast.Src))
			case cfg.InstrCall:
				c.gatherCall(f, &ins.Call)
			}
		}
		if haveResultVar && blk.Term.Kind == cfg.TermReturn && blk.Term.Return.HasValue {
			c.vars.WidenSlot(resultSlot.Var, c.outerOf(f, blk.Term.Return.Value))
		}
	}
}

func (c *Checker) gatherCall(f *cfg.Func, call *cfg.CallInstr) {
	sig, ok := c.tab.Get(call.Sig)
	if !ok {
		return
	}
	for i, arg := range call.Args {
		if i >= len(sig.Params) {
			break
		}
		outer, hasOuter := c.in.Outer(sig.Params[i])
		if !hasOuter || !outer.Var.IsValid() {
			continue
		}
		c.vars.WidenSlot(outer.Var, c.outerOf(f, arg))
	}
	if call.HasDst {
		outer, hasOuter := c.in.Outer(sig.Result)
		if !hasOuter {
			return
		}
		c.widenLocal(f, call.Dst, outer)
	}
}

// widenLocal widens the variable on dst's outer position, if it still
// has one, by the given slot.
func (c *Checker) widenLocal(f *cfg.Func, dst cfg.LocalID, by nullness.Slot) {
	l := f.Local(dst)
	if l == nil {
		return
	}
	outer, ok := c.in.Outer(l.Type)
	if !ok || !outer.Var.IsValid() {
		return
	}
	c.vars.WidenSlot(outer.Var, by)
}
