package types

import (
	"testing"

	"nihil/internal/nullness"
	"nihil/internal/source"
)

func TestRefPositionsDepthFirstOuterFirst(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	b := in.Builtins()

	// Map<string, List<string>> as a reference type:
	// positions are Map itself, the key string, List, the inner string.
	list := in.RegisterNamed(names.Intern("List"), []TypeID{b.String}, true)
	m := in.RegisterNamed(names.Intern("Map"), []TypeID{b.String, list}, true)

	pos := in.RefPositions(m)
	want := []TypeID{m, b.String, list, b.String}
	if len(pos) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(pos))
	}
	for i := range want {
		if pos[i] != want[i] {
			t.Errorf("position %d = %d, want %d", i, pos[i], want[i])
		}
	}
}

func TestRefPositionsSkipValueKinds(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	if n := in.RefPositionCount(b.Int); n != 0 {
		t.Errorf("int has %d positions, want 0", n)
	}
	if n := in.RefPositionCount(b.String); n != 1 {
		t.Errorf("string has %d positions, want 1", n)
	}

	// option<int> has no reference positions; option<string> has one
	// for the payload, none for the wrapper.
	optInt := in.Intern(MakeOption(b.Int))
	if n := in.RefPositionCount(optInt); n != 0 {
		t.Errorf("option<int> has %d positions, want 0", n)
	}
	optStr := in.Intern(MakeOption(b.String))
	if n := in.RefPositionCount(optStr); n != 1 {
		t.Errorf("option<string> has %d positions, want 1", n)
	}
}

func TestRefPositionsFnType(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	// fn(string, int) -> string: the fn itself, param string, result string.
	fn := in.RegisterFn([]TypeID{b.String, b.Int}, b.String)
	if n := in.RefPositionCount(fn); n != 3 {
		t.Errorf("fn type has %d positions, want 3", n)
	}
}

func TestUnknownParamHasNoPosition(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()

	unknown := in.RegisterTypeParam(ParamInfo{Name: names.Intern("T"), RefKind: ParamKindUnknown})
	if in.IsReference(unknown) {
		t.Error("unknown-kind parameter must not count as a reference")
	}
	if n := in.RefPositionCount(unknown); n != 0 {
		t.Errorf("unknown-kind parameter has %d positions, want 0", n)
	}

	ref := in.RegisterTypeParam(ParamInfo{Name: names.Intern("U"), RefKind: ParamKindReference})
	if n := in.RefPositionCount(ref); n != 1 {
		t.Errorf("reference-kind parameter has %d positions, want 1", n)
	}
}

func TestNewRefDefaults(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	b := in.Builtins()

	list := in.RegisterNamed(names.Intern("List"), []TypeID{b.String}, true)
	r := in.NewRef(list, nullness.Oblivious)

	if len(r.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(r.Slots))
	}
	for i, s := range r.Slots {
		if s.Null != nullness.Oblivious {
			t.Errorf("slot %d = %s, want oblivious", i, s.Null)
		}
	}
}

func TestOuterAndInner(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	b := in.Builtins()

	list := in.RegisterNamed(names.Intern("List"), []TypeID{b.String}, true)
	r := in.NewRef(list, nullness.NonNull)
	r = in.WithOuter(r, nullness.Concrete(nullness.Nullable))

	outer, ok := in.Outer(r)
	if !ok || outer.Null != nullness.Nullable {
		t.Fatalf("outer = %+v, ok=%v", outer, ok)
	}

	inner := in.Inner(r)
	if len(inner) != 1 || inner[0].Null != nullness.NonNull {
		t.Fatalf("inner = %+v", inner)
	}

	// A value type has no outer position and WithOuter is a no-op.
	vi := in.NewRef(b.Int, nullness.NonNull)
	if _, ok := in.Outer(vi); ok {
		t.Error("int must have no outer position")
	}
	if got := in.WithOuter(vi, nullness.Concrete(nullness.Nullable)); len(got.Slots) != 0 {
		t.Error("WithOuter on a value type must not invent slots")
	}
}

func TestDescribeRef(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	b := in.Builtins()

	list := in.RegisterNamed(names.Intern("List"), []TypeID{b.String}, true)
	r := in.NewRef(list, nullness.NonNull)
	r.Slots[1].Null = nullness.Nullable

	if got := in.DescribeRef(r); got != "List<string?>" {
		t.Errorf("DescribeRef = %q, want %q", got, "List<string?>")
	}

	r.Slots[0].Null = nullness.Nullable
	if got := in.DescribeRef(r); got != "List<string?>?" {
		t.Errorf("DescribeRef = %q, want %q", got, "List<string?>?")
	}

	if got := in.Describe(b.Int); got != "int" {
		t.Errorf("Describe(int) = %q", got)
	}
}
