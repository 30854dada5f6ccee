// Package check is the module-level checker: generic constraint
// propagation and instantiation checks, signature and binding
// generalization (committing inference variables), declaration intent
// reconciliation, and constraint gathering from function bodies.
//
// It runs entirely in the inference phase. Narrowing starts only after
// every signature a function references has generalized, so the flow
// engine reads committed values exclusively.
package check

import (
	"nihil/internal/cfg"
	"nihil/internal/infer"
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// Finding is a mismatch discovered outside function bodies, at a
// declaration or instantiation site. The policy classifier resolves
// its severity together with the flow findings.
type Finding struct {
	Mismatch nullness.Mismatch
	Span     source.Span
}

// Checker carries the shared state of one compilation's inference
// phase. Not safe for concurrent use; the driver serializes phase a.
type Checker struct {
	in   *types.Interner
	tab  *types.SigTable
	vars *infer.Table
}

func New(in *types.Interner, tab *types.SigTable, vars *infer.Table) *Checker {
	return &Checker{in: in, tab: tab, vars: vars}
}

// commitRef resolves every deferred slot of a ref through the
// inference table. Foreign attribution survives the commit.
func (c *Checker) commitRef(r types.Ref) types.Ref {
	out := r
	cloned := false
	for i, s := range r.Slots {
		if !s.Var.IsValid() {
			continue
		}
		if !cloned {
			out = r.Clone()
			cloned = true
		}
		out.Slots[i] = nullness.Slot{Null: c.vars.Commit(s.Var), Foreign: s.Foreign}
	}
	return out
}

// outerOf reads the current outer slot of a local. Value-typed locals
// read as non-null.
func (c *Checker) outerOf(f *cfg.Func, id cfg.LocalID) nullness.Slot {
	l := f.Local(id)
	if l == nil {
		return nullness.Concrete(nullness.NonNull)
	}
	outer, ok := c.in.Outer(l.Type)
	if !ok {
		return nullness.Concrete(nullness.NonNull)
	}
	return outer
}
