package types

import (
	"slices"
	"strings"

	"nihil/internal/nullness"
	"nihil/internal/source"
)

// Ref pairs a structural type with the nullability of each of its
// reference positions. Slots align with Interner.RefPositions: one
// entry per position, outermost first. Two Refs over the same TypeID
// are the same type; slots never enter identity or equality decisions.
type Ref struct {
	Type  TypeID
	Slots []nullness.Slot
}

// NewRef builds a Ref with every position set to def.
func (in *Interner) NewRef(id TypeID, def nullness.Value) Ref {
	n := in.RefPositionCount(id)
	slots := make([]nullness.Slot, n)
	for i := range slots {
		slots[i] = nullness.Concrete(def)
	}
	return Ref{Type: id, Slots: slots}
}

// NewRefSlots builds a Ref from an explicit slot vector. The caller
// guarantees the vector length matches the position count.
func NewRefSlots(id TypeID, slots []nullness.Slot) Ref {
	return Ref{Type: id, Slots: slots}
}

// Clone returns a Ref with its own slot storage.
func (r Ref) Clone() Ref {
	return Ref{Type: r.Type, Slots: slices.Clone(r.Slots)}
}

// HasOuter reports whether the type itself is a reference, i.e. slot 0
// addresses the whole value.
func (in *Interner) HasOuter(r Ref) bool {
	return in.IsReference(r.Type) && len(r.Slots) > 0
}

// Outer returns the nullability of the outermost position. For
// non-reference types it returns NonNull and false: such values cannot
// be null at all.
func (in *Interner) Outer(r Ref) (nullness.Slot, bool) {
	if !in.HasOuter(r) {
		return nullness.Concrete(nullness.NonNull), false
	}
	return r.Slots[0], true
}

// WithOuter returns a copy of r whose outermost slot is replaced.
// No-op for non-reference types.
func (in *Interner) WithOuter(r Ref, slot nullness.Slot) Ref {
	if !in.HasOuter(r) {
		return r
	}
	out := r.Clone()
	out.Slots[0] = slot
	return out
}

// Inner returns the slots past the outermost position: the container
// payload positions an unchecked cast may narrow.
func (in *Interner) Inner(r Ref) []nullness.Slot {
	if !in.HasOuter(r) {
		return r.Slots
	}
	return r.Slots[1:]
}

// DescribeRef renders the type with nullable markers for diagnostics:
// "string?", "List<string?>", "fn(string) -> string?".
func (in *Interner) DescribeRef(r Ref) string {
	var b strings.Builder
	cursor := 0
	in.describe(&b, r.Type, r.Slots, &cursor)
	return b.String()
}

// Describe renders the bare structural type.
func (in *Interner) Describe(id TypeID) string {
	var b strings.Builder
	cursor := 0
	in.describe(&b, id, nil, &cursor)
	return b.String()
}

func (in *Interner) describe(b *strings.Builder, id TypeID, slots []nullness.Slot, cursor *int) {
	t, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}

	var suffix string
	if in.IsReference(id) {
		if *cursor < len(slots) && slots[*cursor].Null == nullness.Nullable {
			suffix = "?"
		}
		*cursor++
	}

	switch t.Kind {
	case KindUnit:
		b.WriteString("unit")
	case KindBool:
		b.WriteString("bool")
	case KindInt:
		b.WriteString("int")
	case KindFloat:
		b.WriteString("float")
	case KindString:
		b.WriteString("string")
	case KindArray:
		in.describe(b, t.Elem, slots, cursor)
		b.WriteString("[]")
	case KindOption:
		b.WriteString("option<")
		in.describe(b, t.Elem, slots, cursor)
		b.WriteString(">")
	case KindNamed:
		info, _ := in.NamedInfo(id)
		if info == nil {
			b.WriteString("<named>")
			break
		}
		b.WriteString(in.paramName(info.Name))
		if len(info.Args) > 0 {
			b.WriteString("<")
			for i, arg := range info.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				in.describe(b, arg, slots, cursor)
			}
			b.WriteString(">")
		}
	case KindFn:
		info, _ := in.FnInfo(id)
		if info == nil {
			b.WriteString("<fn>")
			break
		}
		b.WriteString("fn(")
		for i, p := range info.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			in.describe(b, p, slots, cursor)
		}
		b.WriteString(") -> ")
		in.describe(b, info.Result, slots, cursor)
	case KindParam:
		info, _ := in.TypeParamInfo(id)
		if info == nil {
			b.WriteString("<param>")
			break
		}
		b.WriteString(in.paramName(info.Name))
	default:
		b.WriteString("<invalid>")
	}
	b.WriteString(suffix)
}

func (in *Interner) paramName(id source.StringID) string {
	if in.names != nil {
		if s, ok := in.names.Lookup(id); ok && s != "" {
			return s
		}
	}
	return "T"
}
