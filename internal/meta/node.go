package meta

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// NodeKind tags a TypeNode on the wire. The values are part of the
// metadata format and must not be renumbered.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeUnit
	NodeBool
	NodeInt
	NodeFloat
	NodeString
	NodeNamed
	NodeArray
	NodeOption
	NodeFn
	NodeParam
)

// TypeNode is the serialized structural form of a type. Named types
// travel by name and are re-registered on import; type parameters
// travel by owner-relative index so two occurrences of the same
// parameter decode to the same identity.
type TypeNode struct {
	Kind       NodeKind
	Name       string
	IsRef      bool
	Index      uint32
	RefKind    uint8
	Constraint uint8
	Elem       *TypeNode
	Args       []TypeNode
	Params     []TypeNode
	Result     *TypeNode
}

var (
	// ErrBadTypeNode marks a structurally invalid serialized type.
	ErrBadTypeNode = errors.New("meta: bad type node")
	// ErrBadMarkerCount marks a nullability marker sequence whose
	// length matches neither one nor the reference position count.
	ErrBadMarkerCount = errors.New("meta: marker count mismatch")
)

// EncodeType converts an interned type into its wire form.
func EncodeType(in *types.Interner, id types.TypeID) (TypeNode, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return TypeNode{}, fmt.Errorf("%w: unknown type %d", ErrBadTypeNode, id)
	}
	switch t.Kind {
	case types.KindUnit:
		return TypeNode{Kind: NodeUnit}, nil
	case types.KindBool:
		return TypeNode{Kind: NodeBool}, nil
	case types.KindInt:
		return TypeNode{Kind: NodeInt}, nil
	case types.KindFloat:
		return TypeNode{Kind: NodeFloat}, nil
	case types.KindString:
		return TypeNode{Kind: NodeString}, nil
	case types.KindArray:
		elem, err := EncodeType(in, t.Elem)
		if err != nil {
			return TypeNode{}, err
		}
		return TypeNode{Kind: NodeArray, Elem: &elem}, nil
	case types.KindOption:
		elem, err := EncodeType(in, t.Elem)
		if err != nil {
			return TypeNode{}, err
		}
		return TypeNode{Kind: NodeOption, Elem: &elem}, nil
	case types.KindNamed:
		info, ok := in.NamedInfo(id)
		if !ok {
			return TypeNode{}, fmt.Errorf("%w: named type %d has no payload", ErrBadTypeNode, id)
		}
		node := TypeNode{Kind: NodeNamed, Name: in.NameOf(info.Name), IsRef: info.IsRef}
		for _, arg := range info.Args {
			enc, err := EncodeType(in, arg)
			if err != nil {
				return TypeNode{}, err
			}
			node.Args = append(node.Args, enc)
		}
		return node, nil
	case types.KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return TypeNode{}, fmt.Errorf("%w: fn type %d has no payload", ErrBadTypeNode, id)
		}
		node := TypeNode{Kind: NodeFn}
		for _, p := range info.Params {
			enc, err := EncodeType(in, p)
			if err != nil {
				return TypeNode{}, err
			}
			node.Params = append(node.Params, enc)
		}
		res, err := EncodeType(in, info.Result)
		if err != nil {
			return TypeNode{}, err
		}
		node.Result = &res
		return node, nil
	case types.KindParam:
		info, ok := in.TypeParamInfo(id)
		if !ok {
			return TypeNode{}, fmt.Errorf("%w: type param %d has no payload", ErrBadTypeNode, id)
		}
		return TypeNode{
			Kind:       NodeParam,
			Name:       in.NameOf(info.Name),
			Index:      info.Index,
			RefKind:    uint8(info.RefKind),
			Constraint: uint8(info.Constraint),
		}, nil
	default:
		return TypeNode{}, fmt.Errorf("%w: kind %d", ErrBadTypeNode, t.Kind)
	}
}

// decodeEnv threads the interner and the per-signature parameter
// registry through a decode. Parameters are nominal, so every index
// must map to exactly one interned identity within a signature.
type decodeEnv struct {
	in     *types.Interner
	names  *source.Interner
	owner  types.SigID
	params map[uint32]types.TypeID
	// imported marks decoded parameters as foreign; unit-local
	// declarations clear it.
	imported bool
}

func newDecodeEnv(in *types.Interner, names *source.Interner, owner types.SigID) *decodeEnv {
	return &decodeEnv{in: in, names: names, owner: owner, params: make(map[uint32]types.TypeID), imported: true}
}

// DecodeType re-registers a wire type into the interner. Type
// parameters referenced by the node must have been declared through
// the same env, either by an earlier call or by decodeParamDecl.
func (env *decodeEnv) decodeType(node TypeNode) (types.TypeID, error) {
	switch node.Kind {
	case NodeUnit:
		return env.in.Builtins().Unit, nil
	case NodeBool:
		return env.in.Builtins().Bool, nil
	case NodeInt:
		return env.in.Builtins().Int, nil
	case NodeFloat:
		return env.in.Builtins().Float, nil
	case NodeString:
		return env.in.Builtins().String, nil
	case NodeArray:
		if node.Elem == nil {
			return types.NoTypeID, fmt.Errorf("%w: array without element", ErrBadTypeNode)
		}
		elem, err := env.decodeType(*node.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return env.in.Intern(types.MakeArray(elem)), nil
	case NodeOption:
		if node.Elem == nil {
			return types.NoTypeID, fmt.Errorf("%w: option without element", ErrBadTypeNode)
		}
		elem, err := env.decodeType(*node.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return env.in.Intern(types.MakeOption(elem)), nil
	case NodeNamed:
		if node.Name == "" {
			return types.NoTypeID, fmt.Errorf("%w: named type without name", ErrBadTypeNode)
		}
		args := make([]types.TypeID, 0, len(node.Args))
		for _, a := range node.Args {
			id, err := env.decodeType(a)
			if err != nil {
				return types.NoTypeID, err
			}
			args = append(args, id)
		}
		name := env.names.Intern(NormalizeName(node.Name))
		return env.in.RegisterNamed(name, args, node.IsRef), nil
	case NodeFn:
		if node.Result == nil {
			return types.NoTypeID, fmt.Errorf("%w: fn without result", ErrBadTypeNode)
		}
		params := make([]types.TypeID, 0, len(node.Params))
		for _, p := range node.Params {
			id, err := env.decodeType(p)
			if err != nil {
				return types.NoTypeID, err
			}
			params = append(params, id)
		}
		result, err := env.decodeType(*node.Result)
		if err != nil {
			return types.NoTypeID, err
		}
		return env.in.RegisterFn(params, result), nil
	case NodeParam:
		if id, ok := env.params[node.Index]; ok {
			return id, nil
		}
		id, err := env.declareParam(node)
		if err != nil {
			return types.NoTypeID, err
		}
		return id, nil
	default:
		return types.NoTypeID, fmt.Errorf("%w: kind %d", ErrBadTypeNode, node.Kind)
	}
}

// declareParam registers a fresh type parameter identity for node and
// records it under its index.
func (env *decodeEnv) declareParam(node TypeNode) (types.TypeID, error) {
	if node.Kind != NodeParam {
		return types.NoTypeID, fmt.Errorf("%w: expected param node, got kind %d", ErrBadTypeNode, node.Kind)
	}
	if node.RefKind > uint8(types.ParamKindValue) {
		return types.NoTypeID, fmt.Errorf("%w: param ref kind %d", ErrBadTypeNode, node.RefKind)
	}
	if node.Constraint > uint8(types.RequiresNonNull) {
		return types.NoTypeID, fmt.Errorf("%w: param constraint %d", ErrBadTypeNode, node.Constraint)
	}
	id := env.in.RegisterTypeParam(types.ParamInfo{
		Name:       env.names.Intern(NormalizeName(node.Name)),
		Owner:      uint32(env.owner),
		Index:      node.Index,
		RefKind:    types.ParamRefKind(node.RefKind),
		Constraint: types.Constraint(node.Constraint),
		Imported:   env.imported,
	})
	env.params[node.Index] = id
	return id, nil
}

// RefEnc is the wire form of a nullability-carrying reference. The
// structural type travels as a tree; nullability travels as a marker
// sequence over the type's reference positions.
//
// Markers come in two shapes: a single boolean covering every
// position, or one boolean per position in depth-first outer-first
// order. An absent sequence means the positions take the enclosing
// scope's default. Infer lists positions whose nullness is left to
// inference; it only appears in unit bundles, never in interface
// files.
type RefEnc struct {
	Type    TypeNode
	Markers []bool
	Infer   []uint32
}

// EncodeRef converts a committed reference into wire form. Slots still
// carrying inference variables are recorded in Infer; oblivious slots
// encode as marker absence, which only round-trips exactly when every
// slot is oblivious.
func EncodeRef(in *types.Interner, r types.Ref) (RefEnc, error) {
	node, err := EncodeType(in, r.Type)
	if err != nil {
		return RefEnc{}, err
	}
	enc := RefEnc{Type: node}
	allOblivious := true
	for i, s := range r.Slots {
		switch {
		case s.Var.IsValid():
			idx, err := safecast.Conv[uint32](i)
			if err != nil {
				return RefEnc{}, fmt.Errorf("slot index overflow: %w", err)
			}
			enc.Infer = append(enc.Infer, idx)
			allOblivious = false
		case s.Null != nullness.Oblivious:
			allOblivious = false
		}
	}
	if allOblivious && len(r.Slots) > 0 {
		return enc, nil
	}
	enc.Markers = make([]bool, len(r.Slots))
	for i, s := range r.Slots {
		enc.Markers[i] = s.Null == nullness.Nullable
	}
	return enc, nil
}

// markerValue maps a wire marker to the nullness it declares under
// checking.
func markerValue(nullable bool) nullness.Value {
	if nullable {
		return nullness.Nullable
	}
	return nullness.NonNull
}

// DecodeRef rebuilds a reference from wire form, resolving unmarked
// positions against scope. Infer positions come back as unresolved
// slots with no variable attached; the checker allocates variables
// when it prepares a unit.
func (env *decodeEnv) decodeRef(enc RefEnc, scope Scope) (types.Ref, error) {
	id, err := env.decodeType(enc.Type)
	if err != nil {
		return types.Ref{}, err
	}
	count := env.in.RefPositionCount(id)
	slots := make([]nullness.Slot, count)
	def := scope.Default()
	for i := range slots {
		slots[i] = nullness.Slot{Null: def}
	}
	switch len(enc.Markers) {
	case 0:
	case 1:
		v := markerValue(enc.Markers[0])
		for i := range slots {
			slots[i].Null = v
		}
	case count:
		for i, m := range enc.Markers {
			slots[i].Null = markerValue(m)
		}
	default:
		return types.Ref{}, fmt.Errorf("%w: %d markers over %d positions", ErrBadMarkerCount, len(enc.Markers), count)
	}
	for _, idx := range enc.Infer {
		if int(idx) >= count {
			return types.Ref{}, fmt.Errorf("%w: infer position %d over %d positions", ErrBadMarkerCount, idx, count)
		}
		slots[idx].Null = nullness.Unresolved
	}
	return types.NewRefSlots(id, slots), nil
}
