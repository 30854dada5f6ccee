package meta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nihil/internal/diag"
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// buildSampleUnit registers one committed signature owned by unit:
//
//	fn lookup(key string, fallback string?) -> string?
func buildSampleUnit(t *testing.T, in *types.Interner, names *source.Interner, tab *types.SigTable, unit source.StringID) types.SigID {
	t.Helper()
	b := in.Builtins()

	key := in.NewRef(b.String, nullness.NonNull)
	fallback := in.NewRef(b.String, nullness.Nullable)
	result := in.NewRef(b.String, nullness.Nullable)

	id, ok := tab.Add(types.Sig{
		Name:   names.Intern("lookup"),
		Unit:   unit,
		Params: []types.Ref{key, fallback},
		Result: result,
		Tags:   []types.BehaviorTag{{Kind: types.BehaviorNonNullWhenTrue, Param: 1}},
	})
	if !ok {
		t.Fatalf("duplicate signature in fresh table")
	}
	return id
}

func TestBuildModuleSkipsForeignSigs(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	tab := types.NewSigTable()
	unit := names.Intern("core")

	buildSampleUnit(t, in, names, tab, unit)
	if _, ok := tab.Add(types.Sig{
		Name:     names.Intern("other"),
		Unit:     names.Intern("dep"),
		Result:   types.Ref{Type: in.Builtins().Unit},
		Imported: true,
	}); !ok {
		t.Fatalf("failed to add foreign signature")
	}

	mod, err := BuildModule(in, tab, names, unit, ScopeEnabled)
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	if len(mod.Sigs) != 1 {
		t.Fatalf("exported %d sigs, want 1", len(mod.Sigs))
	}
	if mod.Sigs[0].Name != "lookup" {
		t.Errorf("exported %q, want lookup", mod.Sigs[0].Name)
	}
	if len(mod.Sigs[0].Tags) != 1 || mod.Sigs[0].Tags[0].Kind != tagNonNullWhenTrue {
		t.Errorf("tags = %+v, want one nonnull_when_true", mod.Sigs[0].Tags)
	}
}

func TestBuildModuleRejectsUncommitted(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	tab := types.NewSigTable()
	unit := names.Intern("core")

	pending := in.NewRef(in.Builtins().String, nullness.NonNull)
	pending.Slots[0] = nullness.Deferred(nullness.VarID(1))
	if _, ok := tab.Add(types.Sig{
		Name:   names.Intern("leaky"),
		Unit:   unit,
		Result: pending,
	}); !ok {
		t.Fatalf("failed to add signature")
	}

	if _, err := BuildModule(in, tab, names, unit, ScopeEnabled); !errors.Is(err, ErrUnresolvedExport) {
		t.Fatalf("err = %v, want ErrUnresolvedExport", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	tab := types.NewSigTable()
	unit := names.Intern("core")
	buildSampleUnit(t, in, names, tab, unit)

	mod, err := BuildModule(in, tab, names, unit, ScopeEnabled)
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}

	path := filepath.Join(t.TempDir(), "core.nmi")
	if err := Export(path, mod); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// No temp leftovers next to the file.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("export left %d entries in the directory, want 1", len(entries))
	}

	got, err := ReadModule(path)
	if err != nil {
		t.Fatalf("ReadModule: %v", err)
	}
	if got.Unit != "core" || got.Scope != ScopeEnabled || len(got.Sigs) != 1 {
		t.Fatalf("round trip gave %+v", got)
	}

	// Resolve into a fresh compilation and compare slots.
	in2 := types.NewInterner()
	names2 := source.NewInterner()
	in2.SetNames(names2)
	tab2 := types.NewSigTable()
	bag := diag.NewBag(16)
	Resolve(got, in2, names2, tab2, diag.BagReporter{Bag: bag}, source.Span{})
	if bag.Len() != 0 {
		t.Fatalf("resolve produced diagnostics: %v", bag.Items())
	}

	id, ok := tab2.ByName(names2.Intern("core"), names2.Intern("lookup"))
	if !ok {
		t.Fatalf("lookup not registered after resolve")
	}
	sig := tab2.MustGet(id)
	if !sig.Imported {
		t.Error("resolved signature should be marked imported")
	}
	if got := sig.Params[0].Slots[0].Null; got != nullness.NonNull {
		t.Errorf("param 0 = %s, want nonnull", got)
	}
	if got := sig.Params[1].Slots[0].Null; got != nullness.Nullable {
		t.Errorf("param 1 = %s, want nullable", got)
	}
	if got := sig.Result.Slots[0].Null; got != nullness.Nullable {
		t.Errorf("result = %s, want nullable", got)
	}
	if tag, ok := sig.TagFor(types.BehaviorNonNullWhenTrue); !ok || tag.Param != 1 {
		t.Errorf("behavior tag lost in round trip: %+v ok=%v", tag, ok)
	}
}

func TestReadModuleRejectsSchemaDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.nmi")
	if err := Export(path, &Module{Schema: SchemaVersion + 1, Unit: "old"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := ReadModule(path); !errors.Is(err, ErrBadSchema) {
		t.Fatalf("err = %v, want ErrBadSchema", err)
	}
}

func TestResolveReportsDamage(t *testing.T) {
	base := &Module{
		Schema: SchemaVersion,
		Unit:   "dep",
		Scope:  ScopeDisabled,
	}

	tests := []struct {
		name string
		sig  SigEnc
		code diag.Code
	}{
		{
			"unknown behavior",
			SigEnc{Name: "f", Result: RefEnc{Type: TypeNode{Kind: NodeUnit}},
				Tags: []TagEnc{{Kind: "saturates_rainbows"}}},
			diag.MetaUnknownBehavior,
		},
		{
			"marker count mismatch",
			SigEnc{Name: "g", Result: RefEnc{Type: TypeNode{Kind: NodeString}, Markers: []bool{true, false}}},
			diag.MetaBadMarkerCount,
		},
		{
			"bad type node",
			SigEnc{Name: "h", Result: RefEnc{Type: TypeNode{Kind: NodeArray}}},
			diag.MetaBadTypeNode,
		},
		{
			"unresolved escape",
			SigEnc{Name: "k", Result: RefEnc{Type: TypeNode{Kind: NodeString}, Infer: []uint32{0}}},
			diag.NulUnresolvedEscape,
		},
	}
	for _, tt := range tests {
		in := types.NewInterner()
		names := source.NewInterner()
		in.SetNames(names)
		tab := types.NewSigTable()
		mod := *base
		mod.Sigs = []SigEnc{tt.sig}

		bag := diag.NewBag(16)
		Resolve(&mod, in, names, tab, diag.BagReporter{Bag: bag}, source.Span{})
		found := false
		for _, d := range bag.Items() {
			if d.Code == tt.code {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: no %s diagnostic, got %v", tt.name, tt.code.ID(), bag.Items())
		}
	}
}

func TestResolveReportsDuplicates(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	tab := types.NewSigTable()

	sig := SigEnc{Name: "f", Result: RefEnc{Type: TypeNode{Kind: NodeUnit}}}
	mod := &Module{Schema: SchemaVersion, Unit: "dep", Scope: ScopeEnabled,
		Sigs: []SigEnc{sig, sig}}

	bag := diag.NewBag(16)
	Resolve(mod, in, names, tab, diag.BagReporter{Bag: bag}, source.Span{})
	if bag.Len() != 1 {
		t.Fatalf("want exactly one diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != diag.MetaDuplicateEntry {
		t.Errorf("code = %s, want %s", bag.Items()[0].Code.ID(), diag.MetaDuplicateEntry.ID())
	}
}

func TestResolveNormalizesNames(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	in.SetNames(names)
	tab := types.NewSigTable()

	// "é" as combining sequence on the wire, precomposed locally.
	mod := &Module{Schema: SchemaVersion, Unit: "café", Scope: ScopeEnabled,
		Sigs: []SigEnc{{Name: "f", Result: RefEnc{Type: TypeNode{Kind: NodeUnit}}}}}

	bag := diag.NewBag(16)
	Resolve(mod, in, names, tab, diag.BagReporter{Bag: bag}, source.Span{})
	if bag.Len() != 0 {
		t.Fatalf("resolve produced diagnostics: %v", bag.Items())
	}
	if _, ok := tab.ByName(names.Intern("café"), names.Intern("f")); !ok {
		t.Error("combining-sequence unit name should resolve to precomposed form")
	}
}

func TestLoaderCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dep.nmi")
	if err := Export(path, &Module{Schema: SchemaVersion, Unit: "dep"}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	l := NewLoader()
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Corrupt the file; the cached document must keep serving.
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if first != second {
		t.Error("loader re-read the file instead of serving the cache")
	}
	if l.Len() != 1 {
		t.Errorf("cache size = %d, want 1", l.Len())
	}
}
