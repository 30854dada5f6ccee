package unit

import (
	"fmt"

	"nihil/internal/cfg"
	"nihil/internal/diag"
	"nihil/internal/infer"
	"nihil/internal/meta"
	"nihil/internal/nullness"
	"nihil/internal/policy"
	"nihil/internal/source"
	"nihil/internal/types"
)

// Unit is one compilation unit ready for analysis: its declared
// signatures resolved into the shared tables and its bodies in
// control-flow form.
type Unit struct {
	Name   string
	ID     source.StringID
	Scope  meta.ScopeState
	Policy policy.Table
	// Imports lists the interface files the unit compiled against.
	// They must be resolved before Decode runs, or calls into them
	// report unknown signatures.
	Imports []string
	// Sigs holds the unit's own signatures in declaration order.
	Sigs  []types.SigID
	Funcs []*cfg.Func
}

// Decode resolves a bundle against the compilation's shared tables.
// The manifest, when present, overrides the bundle's checking mode
// and supplies the severity policy. Embedded source files register in
// fs (when non-nil) and every span is rebased onto the ids fs hands
// out. Damage is reported through rep at item granularity: a bad
// signature or body is skipped and the rest of the unit still
// decodes. A nil result means no unit could be formed at all.
func Decode(b *Bundle, man *Manifest, fs *source.FileSet, in *types.Interner, names *source.Interner, tab *types.SigTable, vars *infer.Table, rep diag.Reporter) *Unit {
	name := b.Name
	if man != nil && man.Unit.Name != "" {
		if name == "" {
			name = man.Unit.Name
		} else if man.Unit.Name != name {
			diag.ReportWarning(rep, diag.UnitBadManifest, source.Span{},
				fmt.Sprintf("manifest names unit %q, bundle says %q; keeping the bundle's", man.Unit.Name, name)).Emit()
		}
	}
	if name == "" {
		diag.ReportError(rep, diag.UnitBadBundle, source.Span{}, "bundle names no unit").Emit()
		return nil
	}
	name = meta.NormalizeName(name)

	scope := b.Scope
	if !scope.Valid() {
		diag.ReportWarning(rep, diag.UnitBadBundle, source.Span{},
			fmt.Sprintf("bundle declares scope %d, treating as disabled", scope)).Emit()
		scope = meta.ScopeDisabled
	}
	if mode := man.Mode(); mode != meta.ScopeInherit {
		scope = mode
	}

	u := &Unit{
		Name:    name,
		ID:      names.Intern(name),
		Scope:   scope,
		Policy:  man.Policy(),
		Imports: append([]string(nil), b.Imports...),
	}
	d := &decoder{
		in:     in,
		names:  names,
		tab:    tab,
		vars:   vars,
		rep:    rep,
		unit:   u,
		root:   meta.RootScope(scope),
		decls:  make(map[string]*meta.SigDecoder, len(b.Sigs)),
		bodies: make(map[types.SigID]bool),
	}
	if fs != nil {
		for i := range b.Files {
			d.files = append(d.files, fs.AddVirtual(b.Files[i].Path, b.Files[i].Content))
		}
	}

	for i := range b.Sigs {
		d.declareSig(&b.Sigs[i])
	}
	for i := range b.Funcs {
		if f := d.decodeFunc(&b.Funcs[i]); f != nil {
			f.ID = cfg.FuncID(len(u.Funcs))
			u.Funcs = append(u.Funcs, f)
		}
	}
	return u
}

// decoder threads the shared tables through one bundle's decode.
type decoder struct {
	in    *types.Interner
	names *source.Interner
	tab   *types.SigTable
	vars  *infer.Table
	rep   diag.Reporter
	unit  *Unit
	root  meta.Scope
	// files maps bundle file indices to the FileSet ids the embedded
	// sources registered under.
	files []source.FileID
	// decls maps declared signature names to their decoders; bodies
	// resolve local types through them so type parameters keep the
	// identities the signature registered.
	decls map[string]*meta.SigDecoder
	// bodies tracks which signatures already have one.
	bodies map[types.SigID]bool
}

// span rebases an encoded span onto the FileSet. Spans into files the
// bundle did not embed pass through unchanged.
func (d *decoder) span(sp source.Span) source.Span {
	if int(sp.File) < len(d.files) {
		sp.File = d.files[sp.File]
	}
	return sp
}

func (d *decoder) declareSig(decl *SigDecl) {
	dec, ok := meta.ResolveOwnSig(&decl.Sig, d.unit.Name, d.root, d.unit.ID, d.in, d.names, d.tab, d.rep, d.span(decl.Span))
	if !ok {
		return
	}
	sig := d.tab.MustGet(dec.Sig())
	for i := range sig.Params {
		d.freshen(&sig.Params[i])
	}
	d.freshen(&sig.Result)
	d.decls[meta.NormalizeName(decl.Sig.Name)] = dec
	d.unit.Sigs = append(d.unit.Sigs, dec.Sig())
}

// freshen attaches inference variables to positions the front end
// left open. Interface files never carry these; bundles do, one per
// unannotated position under checking.
func (d *decoder) freshen(r *types.Ref) {
	for i := range r.Slots {
		s := &r.Slots[i]
		if !s.Null.IsConcrete() && !s.Var.IsValid() {
			*s = nullness.Deferred(d.vars.Fresh())
		}
	}
}

// badFunc reports body damage. Call sites hand over the encoded span;
// rebasing happens here so none of them double-map.
func (d *decoder) badFunc(at source.Span, msg string) {
	diag.ReportError(d.rep, diag.UnitBadFunc, d.span(at), msg).Emit()
}

func (d *decoder) decodeFunc(enc *FuncEnc) *cfg.Func {
	dec := d.declFor(enc)
	if dec == nil {
		return nil
	}

	f := &cfg.Func{
		ID:    cfg.NoFuncID,
		Sig:   dec.Sig(),
		Name:  d.names.Intern(enc.Name),
		Span:  d.span(enc.Span),
		Entry: cfg.BlockID(enc.Entry),
	}
	if !d.decodeLocals(f, enc, dec) {
		return nil
	}
	for bi := range enc.Blocks {
		blk, ok := d.decodeBlock(enc, bi, dec)
		if !ok {
			return nil
		}
		f.Blocks = append(f.Blocks, blk)
	}
	if err := cfg.Validate(f, d.in, d.tab); err != nil {
		d.badFunc(enc.Span, fmt.Sprintf("body of %s: %v", enc.Name, err))
		return nil
	}
	return f
}

// declFor resolves the signature a body implements. Bodies without a
// declaration get a standalone decoder under the root scope.
func (d *decoder) declFor(enc *FuncEnc) *meta.SigDecoder {
	if enc.Sig == "" {
		return meta.NewSigDecoder(d.in, d.names, types.NoSigID, d.root)
	}
	dec, ok := d.decls[meta.NormalizeName(enc.Sig)]
	if !ok {
		diag.ReportError(d.rep, diag.UnitUnknownSig, d.span(enc.Span),
			fmt.Sprintf("body of %s implements undeclared signature %q", enc.Name, enc.Sig)).Emit()
		return nil
	}
	if d.bodies[dec.Sig()] {
		d.badFunc(enc.Span, fmt.Sprintf("second body for %s", enc.Sig))
		return nil
	}
	d.bodies[dec.Sig()] = true
	return dec
}

func (d *decoder) decodeLocals(f *cfg.Func, enc *FuncEnc, dec *meta.SigDecoder) bool {
	for i := range enc.Locals {
		le := &enc.Locals[i]
		ref, err := dec.DecodeRef(le.Type)
		if err != nil {
			d.badFunc(le.Span, fmt.Sprintf("%s: local %d: %v", enc.Name, i, err))
			return false
		}
		d.freshen(&ref)
		f.Locals = append(f.Locals, cfg.Local{
			Name:    d.names.Intern(le.Name),
			Type:    ref,
			Mutable: le.Mutable,
			Param:   le.Param,
			Span:    d.span(le.Span),
		})
	}
	return d.adoptParamTypes(f, enc, dec)
}

// adoptParamTypes replaces parameter locals' types with the declared
// signature's, inference variables included. The body's writes and
// the callers' arguments then feed the same variables, and a
// committed signature seeds entry facts exactly as declared.
func (d *decoder) adoptParamTypes(f *cfg.Func, enc *FuncEnc, dec *meta.SigDecoder) bool {
	sig, ok := d.tab.Get(dec.Sig())
	if !ok {
		return true
	}
	params := f.Params()
	if len(params) != len(sig.Params) {
		d.badFunc(enc.Span, fmt.Sprintf("%s: %d parameter locals against %d declared parameters",
			enc.Name, len(params), len(sig.Params)))
		return false
	}
	for i, id := range params {
		f.Locals[id].Type = sig.Params[i].Clone()
	}
	return true
}

func (d *decoder) decodeBlock(enc *FuncEnc, bi int, dec *meta.SigDecoder) (cfg.Block, bool) {
	be := &enc.Blocks[bi]
	blk := cfg.Block{ID: cfg.BlockID(bi)}
	for ii := range be.Instrs {
		ins, ok := d.decodeInstr(enc, &be.Instrs[ii], dec)
		if !ok {
			return cfg.Block{}, false
		}
		blk.Instrs = append(blk.Instrs, ins)
	}
	term, ok := d.decodeTerm(enc, &be.Term)
	if !ok {
		return cfg.Block{}, false
	}
	blk.Term = term
	return blk, true
}

func (d *decoder) decodeInstr(enc *FuncEnc, ie *InstrEnc, dec *meta.SigDecoder) (cfg.Instr, bool) {
	ins := cfg.Instr{Span: d.span(ie.Span)}
	switch ie.Kind {
	case OpAssign:
		ins.Kind = cfg.InstrAssign
		ins.Assign = cfg.AssignInstr{Dst: cfg.LocalID(ie.Dst), Src: cfg.LocalID(ie.Src)}
	case OpNullConst:
		ins.Kind = cfg.InstrNullConst
		ins.Null = cfg.NullConstInstr{Dst: cfg.LocalID(ie.Dst)}
	case OpNewValue:
		ins.Kind = cfg.InstrNewValue
		ins.New = cfg.NewValueInstr{Dst: cfg.LocalID(ie.Dst)}
	case OpCall:
		return d.decodeCall(enc, ie, dec)
	case OpDeref:
		ins.Kind = cfg.InstrDeref
		ins.Deref = cfg.DerefInstr{Src: cfg.LocalID(ie.Src)}
	case OpCast:
		if ie.To == nil {
			d.badFunc(ie.Span, fmt.Sprintf("%s: cast without target type", enc.Name))
			return cfg.Instr{}, false
		}
		to, err := dec.DecodeRef(*ie.To)
		if err != nil {
			d.badFunc(ie.Span, fmt.Sprintf("%s: cast target: %v", enc.Name, err))
			return cfg.Instr{}, false
		}
		ins.Kind = cfg.InstrCast
		ins.Cast = cfg.CastInstr{Dst: cfg.LocalID(ie.Dst), Src: cfg.LocalID(ie.Src), To: to}
	case OpAssert:
		ins.Kind = cfg.InstrAssertNonNull
		ins.Assert = cfg.AssertInstr{Src: cfg.LocalID(ie.Src)}
	case OpNullTest:
		ins.Kind = cfg.InstrNullTest
		ins.NullTest = cfg.NullTestInstr{Dst: cfg.LocalID(ie.Dst), Src: cfg.LocalID(ie.Src), Negated: ie.Negated}
	default:
		d.badFunc(ie.Span, fmt.Sprintf("%s: instruction kind %d", enc.Name, ie.Kind))
		return cfg.Instr{}, false
	}
	return ins, true
}

func (d *decoder) decodeCall(enc *FuncEnc, ie *InstrEnc, dec *meta.SigDecoder) (cfg.Instr, bool) {
	unitName := d.unit.Name
	if ie.Unit != "" {
		unitName = meta.NormalizeName(ie.Unit)
	}
	callee := meta.NormalizeName(ie.Callee)
	sid, ok := d.tab.ByName(d.names.Intern(unitName), d.names.Intern(callee))
	if !ok {
		diag.ReportError(d.rep, diag.UnitUnknownSig, d.span(ie.Span),
			fmt.Sprintf("%s: call to unknown %s.%s", enc.Name, unitName, callee)).Emit()
		return cfg.Instr{}, false
	}
	call := cfg.CallInstr{Sig: sid}
	if ie.Dst >= 0 {
		call.HasDst = true
		call.Dst = cfg.LocalID(ie.Dst)
	}
	for _, a := range ie.Args {
		call.Args = append(call.Args, cfg.LocalID(a))
	}
	for i := range ie.TypeArgs {
		ref, err := dec.DecodeRef(ie.TypeArgs[i])
		if err != nil {
			d.badFunc(ie.Span, fmt.Sprintf("%s: type argument %d: %v", enc.Name, i, err))
			return cfg.Instr{}, false
		}
		call.TypeArgs = append(call.TypeArgs, ref)
	}
	return cfg.Instr{Kind: cfg.InstrCall, Call: call, Span: d.span(ie.Span)}, true
}

func (d *decoder) decodeTerm(enc *FuncEnc, te *TermEnc) (cfg.Terminator, bool) {
	t := cfg.Terminator{Span: d.span(te.Span)}
	switch te.Kind {
	case EndGoto:
		t.Kind = cfg.TermGoto
		t.Goto = cfg.GotoTerm{Target: cfg.BlockID(te.Target)}
	case EndIf:
		t.Kind = cfg.TermIf
		t.If = cfg.IfTerm{Cond: cfg.LocalID(te.Cond), Then: cfg.BlockID(te.Then), Else: cfg.BlockID(te.Else)}
	case EndMatch:
		m := cfg.MatchTerm{
			NullFirst:  te.NullFirst,
			NullTarget: cfg.BlockID(te.NullTarget),
			RestTarget: cfg.BlockID(te.RestTarget),
			Bind:       cfg.LocalID(te.Bind),
		}
		for _, s := range te.Scrutinees {
			m.Scrutinees = append(m.Scrutinees, cfg.LocalID(s))
		}
		t.Kind = cfg.TermMatch
		t.Match = m
	case EndReturn:
		t.Kind = cfg.TermReturn
		t.Return = cfg.ReturnTerm{HasValue: te.HasValue, Value: cfg.LocalID(te.Value)}
	case EndUnreachable:
		t.Kind = cfg.TermUnreachable
	default:
		d.badFunc(te.Span, fmt.Sprintf("%s: terminator kind %d", enc.Name, te.Kind))
		return cfg.Terminator{}, false
	}
	return t, true
}
