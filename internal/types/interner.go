package types

import (
	"fmt"

	"fortio.org/safecast"

	"nihil/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// One interner serves a whole compilation; imported metadata decodes
// into the same instance so foreign and local types compare by ID.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	named    []NamedInfo
	fns      []FnTypeInfo
	params   []ParamInfo

	// refCount memoizes RefPositionCount per TypeID.
	refCount map[TypeID]int

	// names resolves interned identifiers when rendering types for
	// diagnostics. Optional; unnamed interners render parameters as T.
	names *source.Interner
}

// SetNames wires the string interner used to render named types.
func (in *Interner) SetNames(names *source.Interner) {
	in.names = names
}

// NameOf resolves an interned identifier, or returns the empty string
// when no name table is wired or the id is unknown.
func (in *Interner) NameOf(id source.StringID) string {
	if in.names == nil {
		return ""
	}
	s, _ := in.names.Lookup(id)
	return s
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		refCount: make(map[TypeID]int, 64),
	}
	in.named = append(in.named, NamedInfo{})   // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnTypeInfo{})
	in.params = append(in.params, ParamInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
// Param descriptors never dedupe; use RegisterTypeParam.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey{Kind: t.Kind, Elem: t.Elem, Payload: t.Payload}
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey{Kind: t.Kind, Elem: t.Elem, Payload: t.Payload}
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len returns the number of interned descriptors, sentinel included.
func (in *Interner) Len() int {
	return len(in.types)
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}
