package types

// IsReference reports whether values of this type live behind a
// reference and therefore occupy a nullability slot. Unknown-kind
// generic parameters do not: they gain positions only after
// instantiation resolves their kind.
func (in *Interner) IsReference(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindString, KindArray, KindFn:
		return true
	case KindNamed:
		if info, ok := in.NamedInfo(id); ok {
			return info.IsRef
		}
		return false
	case KindParam:
		if info, ok := in.TypeParamInfo(id); ok {
			return info.RefKind == ParamKindReference
		}
		return false
	}
	return false
}

// RefPositions returns the type of every reference position inside id,
// depth-first, outermost first. Interned types form a DAG (a
// descriptor can only mention already-interned IDs), so the walk
// terminates without a visited set.
func (in *Interner) RefPositions(id TypeID) []TypeID {
	return in.appendRefPositions(id, nil)
}

func (in *Interner) appendRefPositions(id TypeID, out []TypeID) []TypeID {
	t, ok := in.Lookup(id)
	if !ok {
		return out
	}
	if in.IsReference(id) {
		out = append(out, id)
	}
	switch t.Kind {
	case KindArray, KindOption:
		out = in.appendRefPositions(t.Elem, out)
	case KindNamed:
		if info, ok := in.NamedInfo(id); ok {
			for _, arg := range info.Args {
				out = in.appendRefPositions(arg, out)
			}
		}
	case KindFn:
		if info, ok := in.FnInfo(id); ok {
			for _, p := range info.Params {
				out = in.appendRefPositions(p, out)
			}
			out = in.appendRefPositions(info.Result, out)
		}
	}
	return out
}

// RefPositionCount returns the number of reference positions inside
// id. Memoized; the flow phase asks repeatedly for the same types.
func (in *Interner) RefPositionCount(id TypeID) int {
	if n, ok := in.refCount[id]; ok {
		return n
	}
	n := len(in.RefPositions(id))
	in.refCount[id] = n
	return n
}
