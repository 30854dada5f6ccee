// Package flow is the narrowing engine. It runs one function at a
// time: facts seeded from parameter refs, a worklist fixpoint over the
// blocks, then a single emit pass over the stabilized facts. Running
// it twice on the same function yields the same findings, and every
// finding is emitted exactly once.
//
// Facts track the outer reference position of each local. Inner
// positions never change through flow; casts that narrow them are
// flagged from the static slots alone.
package flow

import (
	"slices"

	"nihil/internal/cfg"
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// Finding is one mismatch with its location. The policy classifier
// turns findings into diagnostics; flow itself assigns no severity.
type Finding struct {
	Mismatch nullness.Mismatch
	Span     source.Span
	// Local is the binding the finding speaks about, for rendering.
	Local cfg.LocalID
}

type analysis struct {
	fn   *cfg.Func
	in   *types.Interner
	sigs *types.SigTable
	prov []guard

	// expected return nullness, from the function's signature
	retNull   nullness.Value
	hasResult bool
}

// Analyze narrows one function and returns its findings in block
// order. The signature table is read-only here; the caller guarantees
// every referenced signature committed before phase b started.
func Analyze(f *cfg.Func, in *types.Interner, sigs *types.SigTable) []Finding {
	if f == nil || len(f.Blocks) == 0 {
		return nil
	}
	a := &analysis{fn: f, in: in, sigs: sigs}
	a.prov = provenance(f, sigs)
	a.seedReturn()

	inFacts := a.fixpoint()

	var out []Finding
	for b := range f.Blocks {
		if inFacts[b] == nil {
			continue // unreachable
		}
		facts := slices.Clone(inFacts[b])
		a.transfer(cfg.BlockID(b), facts, func(fd Finding) {
			out = append(out, fd)
		})
	}
	return out
}

func (a *analysis) seedReturn() {
	if a.sigs == nil || !a.fn.Sig.IsValid() {
		return
	}
	sig, ok := a.sigs.Get(a.fn.Sig)
	if !ok {
		return
	}
	outer, ok := a.in.Outer(sig.Result)
	if !ok {
		return
	}
	a.hasResult = true
	a.retNull = slotValue(outer)
	if sig.ResultMaybeNull() {
		a.retNull = nullness.Nullable
	}
}

// fixpoint computes stabilized entry facts per block. A nil slice
// marks a block never reached. The lattice has height 4, so any fact
// moves at most 3 times; the step bound is a hard stop on top of
// stabilization, never the usual exit.
func (a *analysis) fixpoint() [][]nullness.Value {
	f := a.fn
	inFacts := make([][]nullness.Value, len(f.Blocks))
	inFacts[f.Entry] = a.seedEntry()

	work := []cfg.BlockID{f.Entry}
	queued := make([]bool, len(f.Blocks))
	queued[f.Entry] = true

	bound := 3*len(f.Blocks)*(len(f.Locals)+1) + len(f.Blocks)
	var succs []cfg.BlockID
	for steps := 0; len(work) > 0 && steps < bound; steps++ {
		b := work[0]
		work = work[1:]
		queued[b] = false

		out := slices.Clone(inFacts[b])
		a.transfer(b, out, nil)

		blk := f.Block(b)
		succs = blk.Term.Succs(succs[:0])
		for _, s := range succs {
			edge := slices.Clone(out)
			a.refineEdge(&blk.Term, s, edge)
			if changed := mergeInto(&inFacts[s], edge); changed && !queued[s] {
				queued[s] = true
				work = append(work, s)
			}
		}
	}
	return inFacts
}

// seedEntry builds the entry fact vector from the static refs of the
// locals. Parameters carry their declared or committed nullness; other
// locals hold their declared top until the first write.
func (a *analysis) seedEntry() []nullness.Value {
	facts := make([]nullness.Value, len(a.fn.Locals))
	for i := range a.fn.Locals {
		facts[i] = a.staticOuter(cfg.LocalID(i))
	}
	return facts
}

// staticOuter is the declared or committed nullness of a local's outer
// position. Value-kind locals read as NonNull; nothing consults them.
func (a *analysis) staticOuter(id cfg.LocalID) nullness.Value {
	l := a.fn.Local(id)
	if l == nil {
		return nullness.NonNull
	}
	outer, ok := a.in.Outer(l.Type)
	if !ok {
		return nullness.NonNull
	}
	return slotValue(outer)
}

// foreignOuter reports whether the local's outer slot was defaulted
// from a foreign unit; mismatches about it reattribute to the
// oblivious axis.
func (a *analysis) foreignOuter(id cfg.LocalID) bool {
	l := a.fn.Local(id)
	if l == nil {
		return false
	}
	outer, ok := a.in.Outer(l.Type)
	return ok && outer.Foreign
}

func slotValue(s nullness.Slot) nullness.Value {
	if s.Var.IsValid() {
		return nullness.Unresolved
	}
	return s.Null
}

// mergeInto joins edge facts into the accumulated entry facts of a
// block. First arrival copies; later arrivals join pointwise. A fact
// survives the merge only when every incoming edge carries it.
func mergeInto(acc *[]nullness.Value, edge []nullness.Value) bool {
	if *acc == nil {
		*acc = slices.Clone(edge)
		return true
	}
	changed := false
	for i, v := range edge {
		j := nullness.Join((*acc)[i], v)
		if j != (*acc)[i] {
			(*acc)[i] = j
			changed = true
		}
	}
	return changed
}

// refineEdge narrows facts on one CFG edge using test provenance.
// Only immutable locals refine: an intervening write through another
// path could invalidate the fact.
func (a *analysis) refineEdge(t *cfg.Terminator, target cfg.BlockID, facts []nullness.Value) {
	switch t.Kind {
	case cfg.TermIf:
		if t.If.Then == t.If.Else {
			return
		}
		g := a.guardFor(t.If.Cond)
		if !g.ok || !a.narrowable(g.arg) {
			return
		}
		onTrue := target == t.If.Then
		if g.whenTrue == onTrue {
			facts[g.arg] = nullness.Meet(facts[g.arg], nullness.NonNull)
		}
	case cfg.TermMatch:
		m := &t.Match
		if !m.NullFirst || len(m.Scrutinees) != 1 || m.NullTarget == m.RestTarget {
			return
		}
		scrut := m.Scrutinees[0]
		switch target {
		case m.RestTarget:
			if a.narrowable(scrut) {
				facts[scrut] = nullness.Meet(facts[scrut], nullness.NonNull)
			}
			if m.Bind != cfg.NoLocalID {
				facts[m.Bind] = nullness.NonNull
			}
		case m.NullTarget:
			if a.narrowable(scrut) {
				facts[scrut] = nullness.Nullable
			}
		}
	}
}

// narrowable reports whether edge refinement may touch the local:
// it must exist, be immutable, and have an outer reference position.
func (a *analysis) narrowable(id cfg.LocalID) bool {
	l := a.fn.Local(id)
	if l == nil || l.Mutable {
		return false
	}
	_, ok := a.in.Outer(l.Type)
	return ok
}

func (a *analysis) guardFor(id cfg.LocalID) guard {
	if id == cfg.NoLocalID || int(id) >= len(a.prov) {
		return guard{}
	}
	return a.prov[id]
}
