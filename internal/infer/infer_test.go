package infer

import (
	"sync"
	"testing"

	"nihil/internal/nullness"
)

func TestFreshAllocatesDistinctVars(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	if !a.IsValid() || !b.IsValid() {
		t.Fatalf("fresh vars should be valid, got %d and %d", a, b)
	}
	if a == b {
		t.Fatalf("fresh vars should be distinct, both %d", a)
	}
	if tab.Len() != 2 {
		t.Errorf("Len = %d, want 2", tab.Len())
	}
}

func TestCommitResolution(t *testing.T) {
	tests := []struct {
		name   string
		bounds []nullness.Value
		want   nullness.Value
	}{
		{"no bounds", nil, nullness.NonNull},
		{"nonnull bounds only", []nullness.Value{nullness.NonNull, nullness.NonNull}, nullness.NonNull},
		{"nullable bound", []nullness.Value{nullness.NonNull, nullness.Nullable}, nullness.Nullable},
		{"oblivious bound", []nullness.Value{nullness.Oblivious}, nullness.Nullable},
		{"unresolved contributes nothing", []nullness.Value{nullness.Unresolved}, nullness.NonNull},
	}
	for _, tt := range tests {
		tab := NewTable()
		v := tab.Fresh()
		for _, b := range tt.bounds {
			if val, committed := tab.Widen(v, b); committed {
				t.Fatalf("%s: widen reported commit early (%s)", tt.name, val)
			}
		}
		if got := tab.Commit(v); got != tt.want {
			t.Errorf("%s: commit = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCommitIdempotentAndFreezes(t *testing.T) {
	tab := NewTable()
	v := tab.Fresh()
	tab.Widen(v, nullness.Nullable)

	if got := tab.Commit(v); got != nullness.Nullable {
		t.Fatalf("first commit = %s, want nullable", got)
	}
	if got := tab.Commit(v); got != nullness.Nullable {
		t.Fatalf("second commit = %s, want nullable", got)
	}

	// Bounds arriving after commit do not change the value; the caller
	// gets it back to route through the compatibility check.
	val, committed := tab.Widen(v, nullness.NonNull)
	if !committed || val != nullness.Nullable {
		t.Errorf("late widen = (%s, %v), want (nullable, true)", val, committed)
	}
	if got := tab.Commit(v); got != nullness.Nullable {
		t.Errorf("commit after late widen = %s, want nullable", got)
	}
}

func TestCommitFollowsDependencies(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	tab.WidenVar(a, b) // a admits whatever b resolves to
	tab.Widen(b, nullness.Nullable)

	if got := tab.Commit(a); got != nullness.Nullable {
		t.Errorf("a = %s, want nullable through dependency", got)
	}
	if got, ok := tab.Resolved(b); !ok || got != nullness.Nullable {
		t.Errorf("b = (%s, %v), want committed nullable", got, ok)
	}
}

func TestCommitDependenciesAreDirectional(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	tab.WidenVar(a, b)
	tab.Widen(a, nullness.Nullable)

	if got := tab.Commit(a); got != nullness.Nullable {
		t.Fatalf("a = %s, want nullable", got)
	}
	// b feeds a, not the other way around.
	if got := tab.Commit(b); got != nullness.NonNull {
		t.Errorf("b = %s, want nonnull", got)
	}
}

func TestCommitCycle(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	tab.WidenVar(a, b)
	tab.WidenVar(b, a)
	tab.Widen(b, nullness.Nullable)

	// Mutual flow: the group shares one verdict.
	if got := tab.Commit(a); got != nullness.Nullable {
		t.Errorf("a = %s, want nullable", got)
	}
	if got := tab.Commit(b); got != nullness.Nullable {
		t.Errorf("b = %s, want nullable", got)
	}
}

func TestCommitCleanCycle(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	c := tab.Fresh()
	tab.WidenVar(a, b)
	tab.WidenVar(b, c)
	tab.WidenVar(c, a)

	if got := tab.Commit(b); got != nullness.NonNull {
		t.Errorf("clean cycle = %s, want nonnull", got)
	}
	for _, v := range []nullness.VarID{a, b, c} {
		if got, ok := tab.Resolved(v); !ok || got != nullness.NonNull {
			t.Errorf("var %d = (%s, %v), want committed nonnull", v, got, ok)
		}
	}
}

func TestCommitDiamond(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()
	c := tab.Fresh()
	d := tab.Fresh()
	tab.WidenVar(d, b)
	tab.WidenVar(d, c)
	tab.WidenVar(b, a)
	tab.WidenVar(c, a)
	tab.Widen(a, nullness.Oblivious)

	if got := tab.Commit(d); got != nullness.Nullable {
		t.Errorf("d = %s, want nullable through the diamond", got)
	}
}

func TestWidenSlot(t *testing.T) {
	tab := NewTable()
	a := tab.Fresh()
	b := tab.Fresh()

	// Concrete slot contributes its value.
	tab.WidenSlot(a, nullness.Concrete(nullness.Nullable))
	if got := tab.Commit(a); got != nullness.Nullable {
		t.Fatalf("a = %s, want nullable", got)
	}

	// Deferred slot whose var is already committed contributes the
	// committed value immediately.
	c := tab.Fresh()
	tab.WidenSlot(c, nullness.Deferred(a))
	if got := tab.Commit(c); got != nullness.Nullable {
		t.Errorf("c = %s, want nullable from committed dependency", got)
	}

	// Deferred slot with a pending var records an edge.
	d := tab.Fresh()
	tab.WidenSlot(d, nullness.Deferred(b))
	tab.Widen(b, nullness.Nullable)
	if got := tab.Commit(d); got != nullness.Nullable {
		t.Errorf("d = %s, want nullable through pending dependency", got)
	}
}

func TestWidenConcurrent(t *testing.T) {
	tab := NewTable()
	v := tab.Fresh()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		val := nullness.NonNull
		if i == 7 {
			val = nullness.Nullable
		}
		go func(obs nullness.Value) {
			defer wg.Done()
			tab.Widen(v, obs)
		}(val)
	}
	wg.Wait()

	if got := tab.Commit(v); got != nullness.Nullable {
		t.Errorf("commit = %s, want nullable", got)
	}
}

func TestInvalidVarIsInert(t *testing.T) {
	tab := NewTable()
	if val, committed := tab.Widen(nullness.NoVarID, nullness.Nullable); committed {
		t.Errorf("widen on invalid var = (%s, %v)", val, committed)
	}
	if got := tab.Commit(nullness.NoVarID); got != nullness.NonNull {
		t.Errorf("commit on invalid var = %s, want nonnull", got)
	}
	if _, ok := tab.Resolved(nullness.VarID(99)); ok {
		t.Error("out-of-range var should not resolve")
	}
}
