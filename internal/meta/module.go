package meta

// SchemaVersion is the interface-file format version. Readers reject
// files written under any other version instead of guessing.
const SchemaVersion uint16 = 1

// InterfaceExt is the extension interface files carry.
const InterfaceExt = ".nmi"

// Module is the serialized nullability surface of one unit: its root
// checking scope and every exported signature with committed nullness.
// It is what a dependent compilation sees instead of the unit's source.
type Module struct {
	Schema uint16
	Unit   string
	Scope  ScopeState
	Sigs   []SigEnc
}

// SigEnc is one exported signature on the wire.
type SigEnc struct {
	Name string
	// Scope overrides the module scope for this declaration.
	// ScopeInherit keeps the module default.
	Scope      ScopeState
	TypeParams []TypeNode
	Params     []RefEnc
	Result     RefEnc
	Tags       []TagEnc
	// MaybeNull lists annotated positions: 0 is the result, i is
	// parameter i-1.
	MaybeNull []uint8
}

// TagEnc carries a behavioral annotation by name. Names keep old
// readers working when new behaviors appear: unknown names degrade to
// a warning instead of a decode failure.
type TagEnc struct {
	Kind  string
	Param uint8
}

// Wire names for behavioral annotations.
const (
	tagNonNullWhenTrue  = "nonnull_when_true"
	tagNonNullWhenFalse = "nonnull_when_false"
	tagEnsuresNonNull   = "ensures_nonnull"
	tagAssertsIfTrue    = "asserts_if_true"
	tagAssertsIfFalse   = "asserts_if_false"
)
