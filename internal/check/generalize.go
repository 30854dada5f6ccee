package check

import (
	"nihil/internal/cfg"
	"nihil/internal/nullness"
	"nihil/internal/types"
)

// GeneralizeSig commits every inference variable in a local
// signature's parameter and result positions, then reconciles
// may-be-null decorations against the committed types. The
// signature's refs are rewritten in place so later readers, including
// concurrent narrowing workers, see only concrete values.
//
// A decoration on a position whose declared type is non-null is an
// intent conflict: the declaration flags once here, and the position
// becomes nullable afterwards, so every use site answers to the
// decoration rather than the declared type.
func (c *Checker) GeneralizeSig(id types.SigID) []Finding {
	sig, ok := c.tab.Get(id)
	if !ok || sig.Imported {
		return nil
	}
	for i := range sig.Params {
		sig.Params[i] = c.commitRef(sig.Params[i])
	}
	sig.Result = c.commitRef(sig.Result)

	var out []Finding
	for _, pos := range sig.MaybeNull {
		ref := &sig.Result
		if pos > 0 {
			if int(pos) > len(sig.Params) {
				continue
			}
			ref = &sig.Params[pos-1]
		}
		outer, hasOuter := c.in.Outer(*ref)
		if !hasOuter {
			continue
		}
		if m, ok := nullness.Check(nullness.KindIntentConflict, nullness.Nullable, outer.Null); !ok {
			out = append(out, Finding{Mismatch: m, Span: sig.Span})
		}
		if outer.Null != nullness.Nullable {
			*ref = c.in.WithOuter(*ref, nullness.Concrete(nullness.Nullable))
		}
	}
	return out
}

// GeneralizeFunc commits the inference variables of a function's local
// bindings. Bindings are generalization boundaries: no Unresolved
// value survives into narrowing.
//
// Parameter bindings then re-adopt the signature's parameter types.
// GeneralizeSig has already committed those and reconciled may-be-null
// decorations, so this is where a decoration on a declaration reaches
// the body's entry facts. Call after the signature generalized.
func (c *Checker) GeneralizeFunc(f *cfg.Func) {
	if f == nil {
		return
	}
	for i := range f.Locals {
		f.Locals[i].Type = c.commitRef(f.Locals[i].Type)
	}
	sig, ok := c.tab.Get(f.Sig)
	if !ok {
		return
	}
	params := f.Params()
	if len(params) != len(sig.Params) {
		return
	}
	for i, id := range params {
		f.Locals[id].Type = sig.Params[i].Clone()
	}
}
