package meta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"nihil/internal/source"
	"nihil/internal/types"
)

var (
	// ErrBadSchema marks an interface file written under a different
	// format version.
	ErrBadSchema = errors.New("meta: unsupported schema version")
	// ErrUnresolvedExport marks a signature whose nullness was never
	// committed. Inference variables stay inside the compilation that
	// created them; a signature reaching export with one is a bug in
	// the caller's commit ordering.
	ErrUnresolvedExport = errors.New("meta: signature exported before commit")
)

// BuildModule collects every local signature of unit into a metadata
// document. Imported signatures are skipped: re-exporting them would
// make nullability facts travel transitively and drift from their
// owning unit.
func BuildModule(in *types.Interner, tab *types.SigTable, names *source.Interner, unit source.StringID, scope ScopeState) (*Module, error) {
	mod := &Module{
		Schema: SchemaVersion,
		Unit:   names.MustLookup(unit),
		Scope:  scope,
	}
	for id := types.SigID(1); int(id) < tab.Len(); id++ {
		sig := tab.MustGet(id)
		if sig.Imported || sig.Unit != unit {
			continue
		}
		enc, err := encodeSig(in, names, sig)
		if err != nil {
			return nil, err
		}
		mod.Sigs = append(mod.Sigs, enc)
	}
	return mod, nil
}

func encodeSig(in *types.Interner, names *source.Interner, sig *types.Sig) (SigEnc, error) {
	name := names.MustLookup(sig.Name)
	enc := SigEnc{
		Name:      name,
		Scope:     ScopeInherit,
		MaybeNull: append([]uint8(nil), sig.MaybeNull...),
	}
	for _, tp := range sig.TypeParams {
		node, err := EncodeType(in, tp)
		if err != nil {
			return SigEnc{}, fmt.Errorf("signature %q: %w", name, err)
		}
		enc.TypeParams = append(enc.TypeParams, node)
	}
	for i, p := range sig.Params {
		re, err := encodeCommittedRef(in, p)
		if err != nil {
			return SigEnc{}, fmt.Errorf("signature %q parameter %d: %w", name, i, err)
		}
		enc.Params = append(enc.Params, re)
	}
	re, err := encodeCommittedRef(in, sig.Result)
	if err != nil {
		return SigEnc{}, fmt.Errorf("signature %q result: %w", name, err)
	}
	enc.Result = re
	for _, tag := range sig.Tags {
		wire, ok := tagName(tag.Kind)
		if !ok {
			continue
		}
		enc.Tags = append(enc.Tags, TagEnc{Kind: wire, Param: tag.Param})
	}
	return enc, nil
}

// encodeCommittedRef refuses references still carrying inference
// variables or unresolved slots.
func encodeCommittedRef(in *types.Interner, r types.Ref) (RefEnc, error) {
	enc, err := EncodeRef(in, r)
	if err != nil {
		return RefEnc{}, err
	}
	if len(enc.Infer) > 0 {
		return RefEnc{}, fmt.Errorf("%w: %s", ErrUnresolvedExport, in.DescribeRef(r))
	}
	for _, s := range r.Slots {
		if !s.Null.IsConcrete() {
			return RefEnc{}, fmt.Errorf("%w: %s", ErrUnresolvedExport, in.DescribeRef(r))
		}
	}
	return enc, nil
}

func tagName(kind types.BehaviorKind) (string, bool) {
	switch kind {
	case types.BehaviorNonNullWhenTrue:
		return tagNonNullWhenTrue, true
	case types.BehaviorNonNullWhenFalse:
		return tagNonNullWhenFalse, true
	case types.BehaviorEnsuresNonNull:
		return tagEnsuresNonNull, true
	case types.BehaviorAssertsIfTrue:
		return tagAssertsIfTrue, true
	case types.BehaviorAssertsIfFalse:
		return tagAssertsIfFalse, true
	default:
		return "", false
	}
}

func tagKind(wire string) (types.BehaviorKind, bool) {
	switch wire {
	case tagNonNullWhenTrue:
		return types.BehaviorNonNullWhenTrue, true
	case tagNonNullWhenFalse:
		return types.BehaviorNonNullWhenFalse, true
	case tagEnsuresNonNull:
		return types.BehaviorEnsuresNonNull, true
	case tagAssertsIfTrue:
		return types.BehaviorAssertsIfTrue, true
	case tagAssertsIfFalse:
		return types.BehaviorAssertsIfFalse, true
	default:
		return types.BehaviorNone, false
	}
}

// Export writes mod to path atomically: encode into a temp file in
// the target directory, then rename over the destination. Readers
// never observe a half-written file.
func Export(path string, mod *Module) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(mod); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}

// ReadModule loads and schema-checks an interface file.
func ReadModule(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var mod Module
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&mod); err != nil {
		return nil, fmt.Errorf("meta: decode %s: %w", path, err)
	}
	if mod.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadSchema, mod.Schema, SchemaVersion)
	}
	return &mod, nil
}
