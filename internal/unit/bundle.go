// Package unit turns front-end bundles into analyzable compilation
// units: declared signatures resolved into the shared tables, bodies
// decoded into control-flow form, and the severity policy taken from
// the manifest next to the bundle.
package unit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"nihil/internal/meta"
	"nihil/internal/source"
)

// BundleSchema is the bundle format version. Readers reject files
// written under any other version instead of guessing.
const BundleSchema uint16 = 1

// BundleExt is the extension bundle files carry.
const BundleExt = ".nmb"

// ErrBadSchema marks a bundle written under a different format version.
var ErrBadSchema = errors.New("unit: unsupported bundle schema")

// Bundle is the serialized form of one compilation unit as a front
// end hands it over: declarations plus lowered bodies. Unlike an
// interface file it carries spans, so diagnostics land on the
// declarations that caused them.
type Bundle struct {
	Schema uint16
	Name   string
	Scope  meta.ScopeState
	// Imports lists interface file paths the unit compiled against.
	Imports []string
	// Files embeds the source text the spans point into. Span file
	// indices count into this slice.
	Files []FileEnc
	Sigs  []SigDecl
	Funcs []FuncEnc
}

// FileEnc is one embedded source file. Carrying the text inside the
// bundle lets diagnostics show source context far from the front end
// that produced it.
type FileEnc struct {
	Path    string
	Content []byte
}

// SigDecl is one declared signature with its source anchor.
type SigDecl struct {
	Sig  meta.SigEnc
	Span source.Span
}

// FuncEnc is one lowered function body on the wire.
type FuncEnc struct {
	// Sig names the local signature this body implements, empty for
	// a body without a declaration.
	Sig    string
	Name   string
	Span   source.Span
	Locals []LocalEnc
	Blocks []BlockEnc
	Entry  int32
}

// LocalEnc is one binding.
type LocalEnc struct {
	Name    string
	Type    meta.RefEnc
	Mutable bool
	Param   bool
	Span    source.Span
}

// BlockEnc is one basic block.
type BlockEnc struct {
	Instrs []InstrEnc
	Term   TermEnc
}

// Wire instruction kinds. Part of the bundle format; the values must
// not be renumbered.
const (
	OpInvalid uint8 = iota
	OpAssign
	OpNullConst
	OpNewValue
	OpCall
	OpDeref
	OpCast
	OpAssert
	OpNullTest
)

// InstrEnc is one instruction, flattened: Kind selects which fields
// are read. Dst and Src are local indices; -1 means absent.
type InstrEnc struct {
	Kind uint8
	Dst  int32
	Src  int32
	// Negated flips a null test to src != null.
	Negated bool
	// Unit and Callee address a call target; an empty Unit means the
	// bundle's own.
	Unit     string
	Callee   string
	Args     []int32
	TypeArgs []meta.RefEnc
	To       *meta.RefEnc
	Span     source.Span
}

// Wire terminator kinds. Part of the bundle format; the values must
// not be renumbered.
const (
	EndInvalid uint8 = iota
	EndGoto
	EndIf
	EndMatch
	EndReturn
	EndUnreachable
)

// TermEnc is one terminator, flattened like InstrEnc.
type TermEnc struct {
	Kind       uint8
	Target     int32
	Cond       int32
	Then       int32
	Else       int32
	Scrutinees []int32
	NullFirst  bool
	NullTarget int32
	RestTarget int32
	// Bind is the rest-path binding local, -1 for none.
	Bind     int32
	HasValue bool
	Value    int32
	Span     source.Span
}

// WriteBundle writes b to path atomically: encode into a temp file in
// the target directory, then rename over the destination. Readers
// never observe a half-written file.
func WriteBundle(path string, b *Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(b); err != nil {
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

// ReadBundle loads and schema-checks a bundle file.
func ReadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var b Bundle
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("unit: decode %s: %w", path, err)
	}
	if b.Schema != BundleSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadSchema, b.Schema, BundleSchema)
	}
	return &b, nil
}
