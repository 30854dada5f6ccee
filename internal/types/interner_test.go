package types

import (
	"testing"

	"nihil/internal/source"
)

func TestInternerDedupesStructuralTypes(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	arr1 := in.Intern(MakeArray(b.String))
	arr2 := in.Intern(MakeArray(b.String))
	if arr1 != arr2 {
		t.Errorf("same array type got two IDs: %d, %d", arr1, arr2)
	}

	other := in.Intern(MakeArray(b.Int))
	if other == arr1 {
		t.Error("different element types must not share an ID")
	}
}

func TestBuiltinsAreDistinct(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	seen := map[TypeID]string{}
	for name, id := range map[string]TypeID{
		"unit": b.Unit, "bool": b.Bool, "int": b.Int,
		"float": b.Float, "string": b.String,
	} {
		if prev, dup := seen[id]; dup {
			t.Errorf("builtin %s collides with %s", name, prev)
		}
		seen[id] = name
		if id == NoTypeID {
			t.Errorf("builtin %s has the invalid ID", name)
		}
	}
}

func TestRegisterNamedDedupe(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	b := in.Builtins()

	listName := names.Intern("List")
	l1 := in.RegisterNamed(listName, []TypeID{b.String}, true)
	l2 := in.RegisterNamed(listName, []TypeID{b.String}, true)
	if l1 != l2 {
		t.Errorf("identical instantiations got two IDs: %d, %d", l1, l2)
	}

	l3 := in.RegisterNamed(listName, []TypeID{b.Int}, true)
	if l3 == l1 {
		t.Error("different type arguments must not unify")
	}

	info, ok := in.NamedInfo(l1)
	if !ok {
		t.Fatal("NamedInfo lookup failed")
	}
	if info.Name != listName || len(info.Args) != 1 || info.Args[0] != b.String || !info.IsRef {
		t.Errorf("unexpected named info: %+v", info)
	}
}

func TestRegisterFnDedupe(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	f1 := in.RegisterFn([]TypeID{b.String}, b.Bool)
	f2 := in.RegisterFn([]TypeID{b.String}, b.Bool)
	if f1 != f2 {
		t.Errorf("identical fn types got two IDs: %d, %d", f1, f2)
	}

	f3 := in.RegisterFn([]TypeID{b.String, b.String}, b.Bool)
	if f3 == f1 {
		t.Error("different arities must not unify")
	}

	info, ok := in.FnInfo(f1)
	if !ok {
		t.Fatal("FnInfo lookup failed")
	}
	if info.Result != b.Bool || len(info.Params) != 1 {
		t.Errorf("unexpected fn info: %+v", info)
	}
}

func TestTypeParamsNeverUnify(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()

	tName := names.Intern("T")
	p1 := in.RegisterTypeParam(ParamInfo{Name: tName, Owner: 1, Index: 0, RefKind: ParamKindReference})
	p2 := in.RegisterTypeParam(ParamInfo{Name: tName, Owner: 1, Index: 0, RefKind: ParamKindReference})
	if p1 == p2 {
		t.Error("param registrations are nominal and must not dedupe")
	}

	info, ok := in.TypeParamInfo(p1)
	if !ok {
		t.Fatal("TypeParamInfo lookup failed")
	}
	if info.RefKind != ParamKindReference || info.Constraint != Unconstrained {
		t.Errorf("unexpected param info: %+v", info)
	}
}

func TestLookupInvalid(t *testing.T) {
	in := NewInterner()

	if _, ok := in.Lookup(NoTypeID); ok {
		t.Error("NoTypeID must not resolve")
	}
	if _, ok := in.Lookup(TypeID(10_000)); ok {
		t.Error("out-of-range ID must not resolve")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic on NoTypeID")
		}
	}()
	in.MustLookup(NoTypeID)
}
