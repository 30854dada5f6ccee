package source

import (
	"slices"
	"strings"
)

// StringID is an index into an Interner. Identifiers, type names and
// unit names all go through one interner so the rest of the engine can
// compare names as integers.
type StringID uint32

const NoStringID StringID = 0

type Interner struct {
	byID  []string // byID[0] = "" for NoStringID
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern stores s and returns its ID. Interning the same string twice
// returns the same ID. The interner keeps its own copy, so callers may
// hand in substrings of large buffers without pinning them.
func (in *Interner) Intern(s string) StringID {
	if id, ok := in.index[s]; ok {
		return id
	}
	return in.add(strings.Clone(s))
}

// InternBytes is Intern for a byte slice. The lookup on the hit path
// does not allocate.
func (in *Interner) InternBytes(b []byte) StringID {
	if id, ok := in.index[string(b)]; ok {
		return id
	}
	return in.add(string(b))
}

// add records a string the interner now owns.
func (in *Interner) add(s string) StringID {
	id := StringID(len(in.byID))
	in.byID = append(in.byID, s)
	in.index[s] = id
	return id
}

// Lookup returns the string for an ID, or "" and false when the ID is
// out of range.
func (in *Interner) Lookup(id StringID) (string, bool) {
	if !in.Has(id) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup returns the string for an ID and panics when it is invalid.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Has reports whether the ID is valid for this interner.
func (in *Interner) Has(id StringID) bool {
	return int(id) < len(in.byID)
}

// Len returns the number of interned strings, counting NoStringID.
func (in *Interner) Len() int {
	return len(in.byID)
}

// Snapshot returns a copy of every interned string.
func (in *Interner) Snapshot() []string {
	return slices.Clone(in.byID)
}
