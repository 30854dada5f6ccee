package meta

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"nihil/internal/diag"
	"nihil/internal/nullness"
	"nihil/internal/source"
	"nihil/internal/types"
)

// NormalizeName brings an identifier from metadata to NFC so that
// names written by different toolchains compare byte-for-byte.
func NormalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Resolve decodes mod into the compilation's shared tables. Structural
// damage in one signature is reported and that signature skipped; the
// rest of the module still resolves. The at span anchors diagnostics
// at the import site, since foreign metadata has no local source.
func Resolve(mod *Module, in *types.Interner, names *source.Interner, tab *types.SigTable, rep diag.Reporter, at source.Span) {
	modScope := mod.Scope
	if !modScope.Valid() {
		diag.ReportWarning(rep, diag.MetaBadScopeState, at,
			fmt.Sprintf("module %q declares scope %d, treating as disabled", mod.Unit, mod.Scope)).Emit()
		modScope = ScopeDisabled
	}
	root := RootScope(modScope)
	unit := names.Intern(NormalizeName(mod.Unit))

	for i := range mod.Sigs {
		resolveSig(&mod.Sigs[i], mod.Unit, root, unit, in, names, tab, rep, at, true)
	}
}

// SigDecoder resolves wire references in one signature's parameter
// context. Function bodies decode their local types through the
// decoder of the signature they implement, so a type parameter in a
// body maps to the identity the signature registered. The decoder
// also remembers the declaration's resolved scope: unmarked positions
// in the body default the same way they do in the signature.
type SigDecoder struct {
	env   *decodeEnv
	scope Scope
	id    types.SigID
}

// NewSigDecoder builds a decoder for references outside any
// signature, such as the body of a script-level function. owner
// scopes type parameter identities; bodies without a signature have
// none, so NoSigID serves.
func NewSigDecoder(in *types.Interner, names *source.Interner, owner types.SigID, scope Scope) *SigDecoder {
	env := newDecodeEnv(in, names, owner)
	env.imported = false
	return &SigDecoder{env: env, scope: scope, id: owner}
}

// Sig returns the signature the decoder resolves against.
func (d *SigDecoder) Sig() types.SigID {
	return d.id
}

// DecodeRef rebuilds a wire reference in the decoder's scope and
// parameter context.
func (d *SigDecoder) DecodeRef(enc RefEnc) (types.Ref, error) {
	return d.env.decodeRef(enc, d.scope)
}

// ResolveOwnSig decodes one signature declared by the unit being
// compiled. Unlike Resolve, the result is not marked imported, and it
// may carry unresolved inference positions: the checker commits those
// before narrowing starts, so they never reach an interface file. The
// returned decoder lets the declaration's body decode local types
// against the signature's type parameters.
func ResolveOwnSig(enc *SigEnc, unitName string, root Scope, unit source.StringID, in *types.Interner, names *source.Interner, tab *types.SigTable, rep diag.Reporter, at source.Span) (*SigDecoder, bool) {
	return resolveSig(enc, unitName, root, unit, in, names, tab, rep, at, false)
}

func resolveSig(enc *SigEnc, unitName string, root Scope, unit source.StringID, in *types.Interner, names *source.Interner, tab *types.SigTable, rep diag.Reporter, at source.Span, imported bool) (*SigDecoder, bool) {
	name := NormalizeName(enc.Name)
	sigScope := enc.Scope
	if !sigScope.Valid() {
		diag.ReportWarning(rep, diag.MetaBadScopeState, at,
			fmt.Sprintf("%s.%s declares scope %d, inheriting module scope", unitName, name, enc.Scope)).Emit()
		sigScope = ScopeInherit
	}
	scope := root.Child(sigScope)

	// The prospective ID doubles as the owner for this signature's
	// type parameters; SigTable assigns IDs in append order.
	owner := types.SigID(tab.Len())
	env := newDecodeEnv(in, names, owner)
	env.imported = imported

	sig := types.Sig{
		Name:     names.Intern(name),
		Unit:     unit,
		Imported: imported,
		Span:     at,
	}
	for _, tp := range enc.TypeParams {
		id, err := env.declareParam(tp)
		if err != nil {
			reportDecodeError(rep, at, unitName, name, err)
			return nil, false
		}
		sig.TypeParams = append(sig.TypeParams, id)
	}
	for i, p := range enc.Params {
		ref, err := env.decodeRef(p, scope)
		if err != nil {
			reportDecodeError(rep, at, unitName, name, fmt.Errorf("parameter %d: %w", i, err))
			return nil, false
		}
		if imported && len(p.Infer) > 0 {
			diag.ReportError(rep, diag.NulUnresolvedEscape, at,
				fmt.Sprintf("%s.%s: interface file carries unresolved nullness for parameter %d", unitName, name, i)).Emit()
			return nil, false
		}
		sig.Params = append(sig.Params, ref)
	}
	ref, err := env.decodeRef(enc.Result, scope)
	if err != nil {
		reportDecodeError(rep, at, unitName, name, fmt.Errorf("result: %w", err))
		return nil, false
	}
	if imported && len(enc.Result.Infer) > 0 {
		diag.ReportError(rep, diag.NulUnresolvedEscape, at,
			fmt.Sprintf("%s.%s: interface file carries unresolved nullness for the result", unitName, name)).Emit()
		return nil, false
	}
	sig.Result = ref

	for _, t := range enc.Tags {
		kind, ok := tagKind(t.Kind)
		if !ok {
			diag.ReportWarning(rep, diag.MetaUnknownBehavior, at,
				fmt.Sprintf("%s.%s: unknown behavior %q ignored", unitName, name, t.Kind)).Emit()
			continue
		}
		if int(t.Param) >= len(sig.Params) {
			diag.ReportWarning(rep, diag.MetaBadTypeNode, at,
				fmt.Sprintf("%s.%s: behavior %q addresses parameter %d of %d, ignored", unitName, name, t.Kind, t.Param, len(sig.Params))).Emit()
			continue
		}
		sig.Tags = append(sig.Tags, types.BehaviorTag{Kind: kind, Param: t.Param})
	}

	for _, pos := range enc.MaybeNull {
		if int(pos) > len(sig.Params) {
			diag.ReportWarning(rep, diag.MetaBadTypeNode, at,
				fmt.Sprintf("%s.%s: may-be-null position %d out of range, ignored", unitName, name, pos)).Emit()
			continue
		}
		sig.MaybeNull = append(sig.MaybeNull, pos)
	}

	id, ok := tab.Add(sig)
	if !ok {
		code, msg := diag.MetaDuplicateEntry, fmt.Sprintf("%s.%s: signature already registered", unitName, name)
		if !imported {
			code, msg = diag.UnitDuplicateSig, fmt.Sprintf("duplicate declaration of %s", name)
		}
		diag.ReportError(rep, code, at, msg).Emit()
		return nil, false
	}
	if id != owner {
		// Cannot happen while Add appends; guard the param owner link.
		panic("meta: signature ID drifted from prospective owner")
	}
	return &SigDecoder{env: env, scope: scope, id: id}, true
}

func reportDecodeError(rep diag.Reporter, at source.Span, unitName, name string, err error) {
	code := diag.MetaBadTypeNode
	if errors.Is(err, ErrBadMarkerCount) {
		code = diag.MetaBadMarkerCount
	}
	diag.ReportError(rep, code, at,
		fmt.Sprintf("%s.%s: %v", unitName, name, err)).Emit()
}

// ApplyNullableMarker narrows the outer position of ref to nullable,
// as written source does with a trailing marker. The position must be
// a reference: value kinds wrap in an option instead, and a generic
// parameter takes a marker only once it is known to be a reference.
func ApplyNullableMarker(in *types.Interner, r types.Ref) (types.Ref, error) {
	t, ok := in.Lookup(r.Type)
	if !ok {
		return types.Ref{}, fmt.Errorf("%w: unknown type", ErrBadTypeNode)
	}
	if t.Kind == types.KindParam {
		info, ok := in.TypeParamInfo(r.Type)
		if !ok || info.RefKind != types.ParamKindReference {
			return types.Ref{}, ErrParamKindUnknown
		}
	}
	if !in.IsReference(r.Type) {
		return types.Ref{}, ErrMarkerOnValue
	}
	out, ok := in.Outer(r)
	if !ok {
		return types.Ref{}, ErrMarkerOnValue
	}
	out.Null = nullness.Nullable
	out.Var = nullness.NoVarID
	return in.WithOuter(r, out), nil
}

var (
	// ErrParamKindUnknown rejects a nullable marker on a generic
	// parameter not yet known to be a reference.
	ErrParamKindUnknown = errors.New("meta: nullable marker on parameter of unknown kind")
	// ErrMarkerOnValue rejects a nullable marker on a value-kind type.
	ErrMarkerOnValue = errors.New("meta: nullable marker on value type")
)
