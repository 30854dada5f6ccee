package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"nihil/internal/source"
)

// NamedInfo stores metadata for a nominal type, possibly instantiated
// with type arguments.
type NamedInfo struct {
	Name  source.StringID
	Args  []TypeID
	IsRef bool // reference kind; false for value records
}

// RegisterNamed creates or finds a nominal type instantiation.
// Identity is the (name, args, isRef) triple.
func (in *Interner) RegisterNamed(name source.StringID, args []TypeID, isRef bool) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindNamed {
			continue
		}
		if int(tt.Payload) >= len(in.named) {
			continue
		}
		info := in.named[tt.Payload]
		if info.Name == name && info.IsRef == isRef && slices.Equal(info.Args, args) {
			return id
		}
	}
	slot := in.appendNamedInfo(NamedInfo{
		Name:  name,
		Args:  slices.Clone(args),
		IsRef: isRef,
	})
	return in.internRaw(Type{Kind: KindNamed, Payload: slot})
}

// NamedInfo retrieves nominal type metadata by TypeID.
func (in *Interner) NamedInfo(id TypeID) (*NamedInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.named) {
		return nil, false
	}
	return &in.named[tt.Payload], true
}

func (in *Interner) appendNamedInfo(info NamedInfo) uint32 {
	in.named = append(in.named, info)
	slot, err := safecast.Conv[uint32](len(in.named) - 1)
	if err != nil {
		panic(fmt.Errorf("named info overflow: %w", err))
	}
	return slot
}
