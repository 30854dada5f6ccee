package types

import (
	"nihil/internal/source"
)

// SigID identifies a function signature within a SigTable.
type SigID uint32

// NoSigID marks the absence of a signature.
const NoSigID SigID = 0

// IsValid reports whether the ID refers to a registered signature.
func (id SigID) IsValid() bool {
	return id != NoSigID
}

// BehaviorKind enumerates the behavioral annotations a signature may
// carry about its null contract. The flow analysis turns them into
// call-site transfer rules; they are trusted, never verified against
// the callee body.
type BehaviorKind uint8

const (
	BehaviorNone BehaviorKind = iota
	// BehaviorNonNullWhenTrue: when the boolean result is true, the
	// tagged argument is non-null.
	BehaviorNonNullWhenTrue
	// BehaviorNonNullWhenFalse: when the boolean result is false, the
	// tagged argument is non-null.
	BehaviorNonNullWhenFalse
	// BehaviorEnsuresNonNull: after the call returns, the tagged
	// argument is non-null unconditionally.
	BehaviorEnsuresNonNull
	// BehaviorAssertsIfTrue: the callee throws unless the tagged
	// argument is non-null when the result is true.
	BehaviorAssertsIfTrue
	// BehaviorAssertsIfFalse: mirror of BehaviorAssertsIfTrue.
	BehaviorAssertsIfFalse
)

func (k BehaviorKind) String() string {
	switch k {
	case BehaviorNone:
		return "none"
	case BehaviorNonNullWhenTrue:
		return "nonnull-when-true"
	case BehaviorNonNullWhenFalse:
		return "nonnull-when-false"
	case BehaviorEnsuresNonNull:
		return "ensures-nonnull"
	case BehaviorAssertsIfTrue:
		return "asserts-if-true"
	case BehaviorAssertsIfFalse:
		return "asserts-if-false"
	}
	return "invalid"
}

// BehaviorTag attaches a BehaviorKind to one parameter of a signature.
type BehaviorTag struct {
	Kind  BehaviorKind
	Param uint8 // 0-based parameter index the tag speaks about
}

// Sig describes one function signature with full nullability
// information. Signatures are the unit of exchange between
// compilations: imported ones arrive through metadata, local ones are
// committed by inference before any body is analyzed.
type Sig struct {
	Name       source.StringID
	Unit       source.StringID
	Params     []Ref
	Result     Ref
	TypeParams []TypeID // KindParam entries owned by this signature
	Tags       []BehaviorTag
	// MaybeNull lists declaration positions annotated "may be null":
	// 0 is the result, i addresses parameter i-1. A position whose
	// declared type is non-null conflicts with the annotation.
	MaybeNull []uint8
	Imported  bool
	Span      source.Span
}

// TagFor returns the first tag of the given kind, if any.
func (s *Sig) TagFor(kind BehaviorKind) (BehaviorTag, bool) {
	for _, tag := range s.Tags {
		if tag.Kind == kind {
			return tag, true
		}
	}
	return BehaviorTag{}, false
}

// ResultMaybeNull reports whether the result carries a may-be-null
// annotation.
func (s *Sig) ResultMaybeNull() bool {
	for _, pos := range s.MaybeNull {
		if pos == 0 {
			return true
		}
	}
	return false
}

// ParamMaybeNull reports whether parameter i carries a may-be-null
// annotation.
func (s *Sig) ParamMaybeNull(i int) bool {
	for _, pos := range s.MaybeNull {
		if int(pos) == i+1 {
			return true
		}
	}
	return false
}

type sigKey struct {
	unit source.StringID
	name source.StringID
}

// SigTable stores every signature visible to a compilation: local
// declarations plus everything imported metadata contributed.
type SigTable struct {
	sigs  []Sig
	index map[sigKey]SigID
}

func NewSigTable() *SigTable {
	return &SigTable{
		sigs:  make([]Sig, 1), // reserve 0 for NoSigID
		index: make(map[sigKey]SigID),
	}
}

// Add registers a signature. Returns false when the (unit, name) pair
// is already taken; the caller reports the duplicate.
func (t *SigTable) Add(s Sig) (SigID, bool) {
	key := sigKey{unit: s.Unit, name: s.Name}
	if _, exists := t.index[key]; exists {
		return NoSigID, false
	}
	id := SigID(len(t.sigs))
	t.sigs = append(t.sigs, s)
	t.index[key] = id
	return id, true
}

// Get returns the signature for an ID.
func (t *SigTable) Get(id SigID) (*Sig, bool) {
	if !id.IsValid() || int(id) >= len(t.sigs) {
		return nil, false
	}
	return &t.sigs[id], true
}

// MustGet panics on an invalid ID.
func (t *SigTable) MustGet(id SigID) *Sig {
	s, ok := t.Get(id)
	if !ok {
		panic("types: invalid SigID")
	}
	return s
}

// ByName resolves a signature by owning unit and name.
func (t *SigTable) ByName(unit, name source.StringID) (SigID, bool) {
	id, ok := t.index[sigKey{unit: unit, name: name}]
	return id, ok
}

// Len returns the number of registered signatures plus the sentinel.
func (t *SigTable) Len() int {
	return len(t.sigs)
}
