package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nihil/internal/meta"
	"nihil/internal/nullness"
	"nihil/internal/policy"
	"nihil/internal/source"
	"nihil/internal/types"
	"nihil/internal/unit"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
	}{
		{"", uiModeAuto},
		{"auto", uiModeAuto},
		{"AUTO", uiModeAuto},
		{"on", uiModeOn},
		{" off ", uiModeOff},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("readUIMode(sometimes) should fail")
	}
}

func TestDefaultExportPath(t *testing.T) {
	got := defaultExportPath(filepath.Join("build", "app.nmb"))
	want := filepath.Join("build", "app.nmi")
	if got != want {
		t.Fatalf("defaultExportPath = %q, want %q", got, want)
	}
}

func TestInitManifestParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, unit.ManifestName)
	if err := os.WriteFile(path, []byte(buildDefaultManifest("demo")), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	man, err := unit.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if man.Unit.Name != "demo" {
		t.Fatalf("unit name = %q, want demo", man.Unit.Name)
	}
	if man.Mode() != meta.ScopeEnabled {
		t.Fatalf("mode = %v, want enabled", man.Mode())
	}
	tab := man.Policy()
	if tab.Nullable != policy.LevelWarn || tab.NonNull != policy.LevelWarn || tab.Oblivious != policy.LevelWarn {
		t.Fatalf("policy = %+v, want all warn", tab)
	}
}

func TestDescribeSig(t *testing.T) {
	names := source.NewInterner()
	in := types.NewInterner()
	in.SetNames(names)
	b := in.Builtins()

	list := in.RegisterNamed(names.Intern("List"), []types.TypeID{b.String}, true)
	param := in.NewRef(list, nullness.NonNull)
	param.Slots[1].Null = nullness.Nullable
	result := in.NewRef(b.String, nullness.Nullable)

	sig := &types.Sig{
		Name:      names.Intern("head"),
		Params:    []types.Ref{param},
		Result:    result,
		Tags:      []types.BehaviorTag{{Kind: types.BehaviorEnsuresNonNull, Param: 0}},
		MaybeNull: []uint8{0},
	}

	if got := describeSig(in, sig); got != "fn(List<string?>) -> string?" {
		t.Fatalf("describeSig = %q", got)
	}
	if got := annotatedPositions(sig); got != "result" {
		t.Fatalf("annotatedPositions = %q", got)
	}
	if got := behaviorTags(sig); got != "ensures-nonnull(p1)" {
		t.Fatalf("behaviorTags = %q", got)
	}
}

func TestRenderPolicyAxes(t *testing.T) {
	var buf bytes.Buffer
	renderPolicyAxes(&buf, policy.Table{Nullable: policy.LevelWarn, Oblivious: policy.LevelError})
	out := buf.String()
	for _, want := range []string{"nullable", "nonnull", "oblivious", "warn", "off", "error"} {
		if !strings.Contains(out, want) {
			t.Fatalf("policy table missing %q:\n%s", want, out)
		}
	}
}
