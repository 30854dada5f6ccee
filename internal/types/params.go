package types

import (
	"fmt"

	"fortio.org/safecast"

	"nihil/internal/source"
)

// ParamRefKind records whether a generic parameter is statically known
// to be a reference or a value kind. A nullable marker may only apply
// to a parameter once it is known to be a reference.
type ParamRefKind uint8

const (
	ParamKindUnknown ParamRefKind = iota
	ParamKindReference
	ParamKindValue
)

func (k ParamRefKind) String() string {
	switch k {
	case ParamKindUnknown:
		return "unknown"
	case ParamKindReference:
		return "reference"
	case ParamKindValue:
		return "value"
	}
	return "invalid"
}

// Constraint is the nullness demand a generic parameter places on its
// arguments. Declared constraints copy down to derived declarations at
// construction time; there is no propagation pass to rerun later.
type Constraint uint8

const (
	Unconstrained Constraint = iota
	RequiresNullable
	RequiresNonNull
)

func (c Constraint) String() string {
	switch c {
	case Unconstrained:
		return "unconstrained"
	case RequiresNullable:
		return "requires-nullable"
	case RequiresNonNull:
		return "requires-nonnull"
	}
	return "invalid"
}

// ParamInfo stores metadata about a generic type parameter.
type ParamInfo struct {
	Name       source.StringID
	Owner      uint32 // signature or type declaration that owns the parameter
	Index      uint32
	RefKind    ParamRefKind
	Constraint Constraint
	// Imported marks parameters declared in another unit. An
	// unconstrained imported parameter instantiating a local one
	// defaults to nullable with foreign attribution.
	Imported bool
}

// RegisterTypeParam allocates a new generic parameter descriptor.
// Parameters are nominal: two registrations never unify, so this
// bypasses the dedupe index.
func (in *Interner) RegisterTypeParam(info ParamInfo) TypeID {
	slot := in.appendParamInfo(info)
	return in.internRaw(Type{
		Kind:    KindParam,
		Payload: slot,
	})
}

// TypeParamInfo returns metadata for the provided generic parameter.
func (in *Interner) TypeParamInfo(id TypeID) (*ParamInfo, bool) {
	if id == NoTypeID {
		return nil, false
	}
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

func (in *Interner) appendParamInfo(info ParamInfo) uint32 {
	in.params = append(in.params, info)
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	return slot
}
