// Package infer accumulates nullness constraints on inference
// variables and resolves them at generalization boundaries.
//
// Constraints are lower bounds: Widen(v, observed) records that v must
// admit at least the observed nullness. Bounds accumulate
// non-destructively under a per-variable mutex; there is no global
// lock because variables are independent. Commit resolves a variable
// to Nullable when any accumulated bound was Nullable or Oblivious and
// to NonNull otherwise. Resolution never fails.
//
// Callers stop widening a variable before committing it; the driver's
// phase split enforces this. A Widen that arrives after commit gets
// the committed value back and routes the observation through the
// compatibility check instead.
package infer

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"nihil/internal/nullness"
)

const (
	boundNullable uint8 = 1 << iota
	boundOblivious
)

type varState struct {
	mu        sync.Mutex
	bounds    uint8
	deps      []nullness.VarID
	committed bool
	value     nullness.Value
}

// Table owns every inference variable of one compilation.
type Table struct {
	mu   sync.Mutex
	vars []*varState
}

func NewTable() *Table {
	return &Table{}
}

// Fresh allocates an undetermined variable.
func (t *Table) Fresh() nullness.VarID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vars = append(t.vars, &varState{})
	n, err := safecast.Conv[uint32](len(t.vars))
	if err != nil {
		panic(fmt.Errorf("inference variable overflow: %w", err))
	}
	return nullness.VarID(n)
}

// Len returns the number of allocated variables.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.vars)
}

func (t *Table) state(id nullness.VarID) *varState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !id.IsValid() || int(id) > len(t.vars) {
		return nil
	}
	return t.vars[id-1]
}

// Widen records a concrete lower bound on id. Before commit it
// returns (Unresolved, false). After commit it returns the committed
// value and true; the caller decides whether the late observation
// conflicts with it.
func (t *Table) Widen(id nullness.VarID, observed nullness.Value) (nullness.Value, bool) {
	v := t.state(id)
	if v == nil {
		return nullness.Unresolved, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.committed {
		return v.value, true
	}
	switch observed {
	case nullness.Nullable:
		v.bounds |= boundNullable
	case nullness.Oblivious:
		v.bounds |= boundOblivious
	}
	return nullness.Unresolved, false
}

// WidenVar records that id admits at least whatever dep resolves to.
// Chained bindings and composed calls produce these; they are plain
// constraint edges, not unification.
func (t *Table) WidenVar(id, dep nullness.VarID) (nullness.Value, bool) {
	if id == dep {
		return nullness.Unresolved, false
	}
	v := t.state(id)
	if v == nil {
		return nullness.Unresolved, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.committed {
		return v.value, true
	}
	v.deps = append(v.deps, dep)
	return nullness.Unresolved, false
}

// WidenSlot widens id by a slot: a deferred slot contributes its
// variable, a concrete slot its value.
func (t *Table) WidenSlot(id nullness.VarID, s nullness.Slot) (nullness.Value, bool) {
	if s.Var.IsValid() {
		if resolved, ok := t.Resolved(s.Var); ok {
			return t.Widen(id, resolved)
		}
		return t.WidenVar(id, s.Var)
	}
	return t.Widen(id, s.Null)
}

// Resolved returns the committed value of id, if committed.
func (t *Table) Resolved(id nullness.VarID) (nullness.Value, bool) {
	v := t.state(id)
	if v == nil {
		return nullness.Unresolved, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.committed {
		return nullness.Unresolved, false
	}
	return v.value, true
}
