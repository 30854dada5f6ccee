package fuzztests

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"nihil/internal/meta"
	"nihil/internal/unit"
)

const (
	maxSeedBytes = 64 << 10 // clamp for the seed corpus
)

// addBundleSeeds feeds the fuzzer a valid bundle encoding plus the
// degenerate shapes every decoder meets in the wild: empty input,
// truncated input, and a wrong-schema file.
func addBundleSeeds(f *testing.F) {
	valid := mustEncode(f, &unit.Bundle{
		Schema: unit.BundleSchema,
		Name:   "seed",
		Scope:  meta.ScopeEnabled,
		Files: []unit.FileEnc{
			{Path: "seed.ni", Content: []byte("fn head(xs: List<string?>) -> string? {}\n")},
		},
		Sigs: []unit.SigDecl{
			{Sig: seedSig()},
		},
	})
	f.Add(clampSeed(valid))
	f.Add(clampSeed(valid[:len(valid)/2]))
	f.Add(mustEncode(f, &unit.Bundle{Schema: unit.BundleSchema + 1, Name: "future"}))
	f.Add([]byte{})
	f.Add([]byte("not msgpack at all"))
}

func addModuleSeeds(f *testing.F) {
	valid := mustEncode(f, &meta.Module{
		Schema: meta.SchemaVersion,
		Unit:   "seed",
		Scope:  meta.ScopeEnabled,
		Sigs:   []meta.SigEnc{seedSig()},
	})
	f.Add(clampSeed(valid))
	f.Add(clampSeed(valid[:len(valid)/2]))
	f.Add(mustEncode(f, &meta.Module{Schema: meta.SchemaVersion + 1, Unit: "future"}))
	f.Add([]byte{})
	f.Add([]byte{0xc1}) // reserved msgpack byte
}

func addManifestSeeds(f *testing.F) {
	f.Add([]byte("[unit]\nname = \"seed\"\nmode = \"enabled\"\n\n[nullness]\nnullable = \"warn\"\nnonnull = \"error\"\noblivious = \"off\"\n"))
	f.Add([]byte("[unit]\nname = \"bare\"\n"))
	f.Add([]byte(""))
	f.Add([]byte("[unit\nname = broken"))
	f.Add([]byte("[nullness]\nnullable = 42\n"))
}

// seedSig is a representative annotated signature: one nullable string
// parameter and a nullable result.
func seedSig() meta.SigEnc {
	strRef := meta.RefEnc{
		Type:    meta.TypeNode{Kind: meta.NodeString, IsRef: true},
		Markers: []bool{true},
	}
	return meta.SigEnc{
		Name:      "head",
		Params:    []meta.RefEnc{strRef},
		Result:    strRef,
		MaybeNull: []uint8{0, 1},
	}
}

func mustEncode(f *testing.F, v any) []byte {
	f.Helper()
	data, err := msgpack.Marshal(v)
	if err != nil {
		f.Fatalf("encode seed: %v", err)
	}
	return data
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
