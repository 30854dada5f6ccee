package types

import (
	"slices"

	"nihil/internal/nullness"
)

// SubstituteRef instantiates a generic type reference. args maps
// parameter TypeIDs to the argument Refs replacing them. The result
// carries a rebuilt slot vector: positions belonging to substituted
// parameters take the argument's slots, everything else keeps the
// generic declaration's slot. A nullable marker written on a parameter
// position survives substitution and forces the argument's outer
// position nullable.
func (in *Interner) SubstituteRef(r Ref, args map[TypeID]Ref) Ref {
	cursor := 0
	id, slots := in.substRef(r.Type, r.Slots, &cursor, args, nil)
	return Ref{Type: id, Slots: slots}
}

func (in *Interner) substRef(id TypeID, gen []nullness.Slot, cursor *int, args map[TypeID]Ref, out []nullness.Slot) (TypeID, []nullness.Slot) {
	t, ok := in.Lookup(id)
	if !ok {
		return id, out
	}

	if t.Kind == KindParam {
		if arg, ok := args[id]; ok {
			var marked bool
			if in.IsReference(id) && *cursor < len(gen) {
				marked = gen[*cursor].Null == nullness.Nullable
				*cursor++
			}
			start := len(out)
			out = append(out, slices.Clone(arg.Slots)...)
			if marked && in.IsReference(arg.Type) && len(out) > start {
				out[start].Null = nullness.Nullable
			}
			return arg.Type, out
		}
		// Unsubstituted parameter passes through with its own slot.
		if in.IsReference(id) && *cursor < len(gen) {
			out = append(out, gen[*cursor])
			*cursor++
		}
		return id, out
	}

	if in.IsReference(id) {
		if *cursor < len(gen) {
			out = append(out, gen[*cursor])
			*cursor++
		} else {
			out = append(out, nullness.Concrete(nullness.NonNull))
		}
	}

	switch t.Kind {
	case KindArray:
		elem, o := in.substRef(t.Elem, gen, cursor, args, out)
		return in.Intern(MakeArray(elem)), o
	case KindOption:
		elem, o := in.substRef(t.Elem, gen, cursor, args, out)
		return in.Intern(MakeOption(elem)), o
	case KindNamed:
		info, infoOK := in.NamedInfo(id)
		if !infoOK {
			return id, out
		}
		newArgs := make([]TypeID, len(info.Args))
		o := out
		for i, a := range info.Args {
			newArgs[i], o = in.substRef(a, gen, cursor, args, o)
		}
		return in.RegisterNamed(info.Name, newArgs, info.IsRef), o
	case KindFn:
		info, infoOK := in.FnInfo(id)
		if !infoOK {
			return id, out
		}
		newParams := make([]TypeID, len(info.Params))
		o := out
		for i, p := range info.Params {
			newParams[i], o = in.substRef(p, gen, cursor, args, o)
		}
		var res TypeID
		res, o = in.substRef(info.Result, gen, cursor, args, o)
		return in.RegisterFn(newParams, res), o
	default:
		return id, out
	}
}
