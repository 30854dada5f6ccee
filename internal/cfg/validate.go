package cfg

import (
	"errors"
	"fmt"

	"nihil/internal/types"
)

// Validate checks structural invariants of one function body. The
// narrowing engine assumes all of them; running it on an invalid Func
// is a front-end bug, so violations are errors, not diagnostics.
func Validate(f *Func, in *types.Interner, tab *types.SigTable) error {
	if f == nil {
		return nil
	}
	var errs []error

	if err := validateEntry(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocals(f, in); err != nil {
		errs = append(errs, err)
	}
	if err := validateInstrs(f, in, tab); err != nil {
		errs = append(errs, err)
	}
	if err := validateTerms(f, in); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateEntry(f *Func) error {
	if f.Block(f.Entry) == nil {
		return fmt.Errorf("entry bb%d out of range", f.Entry)
	}
	return nil
}

func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
		if f.Blocks[i].ID != BlockID(i) {
			errs = append(errs, fmt.Errorf("bb%d: carries ID %d", i, f.Blocks[i].ID))
		}
	}
	return errors.Join(errs...)
}

func validateTargets(f *Func) error {
	var errs []error
	var succs []BlockID
	for i := range f.Blocks {
		succs = f.Blocks[i].Term.Succs(succs[:0])
		for _, s := range succs {
			if f.Block(s) == nil {
				errs = append(errs, fmt.Errorf("bb%d: target bb%d out of range", i, s))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocals checks that every local's slot vector matches its
// type's reference positions. The flow engine indexes facts by slot,
// so a mismatch here corrupts everything downstream.
func validateLocals(f *Func, in *types.Interner) error {
	var errs []error
	for i := range f.Locals {
		l := &f.Locals[i]
		if l.Type.Type == types.NoTypeID {
			errs = append(errs, fmt.Errorf("local %d: no type", i))
			continue
		}
		want := in.RefPositionCount(l.Type.Type)
		if len(l.Type.Slots) != want {
			errs = append(errs, fmt.Errorf("local %d: %d slots over %d reference positions", i, len(l.Type.Slots), want))
		}
	}
	return errors.Join(errs...)
}

func validateInstrs(f *Func, in *types.Interner, tab *types.SigTable) error {
	var errs []error
	check := func(b, i int, id LocalID, role string) {
		if f.Local(id) == nil {
			errs = append(errs, fmt.Errorf("bb%d[%d]: %s local %d out of range", b, i, role, id))
		}
	}
	for b := range f.Blocks {
		for i := range f.Blocks[b].Instrs {
			ins := &f.Blocks[b].Instrs[i]
			switch ins.Kind {
			case InstrAssign:
				check(b, i, ins.Assign.Dst, "dst")
				check(b, i, ins.Assign.Src, "src")
			case InstrNullConst:
				check(b, i, ins.Null.Dst, "dst")
			case InstrNewValue:
				check(b, i, ins.New.Dst, "dst")
			case InstrCall:
				if ins.Call.HasDst {
					check(b, i, ins.Call.Dst, "dst")
				}
				for _, a := range ins.Call.Args {
					check(b, i, a, "arg")
				}
				if tab != nil {
					if _, ok := tab.Get(ins.Call.Sig); !ok {
						errs = append(errs, fmt.Errorf("bb%d[%d]: unknown signature %d", b, i, ins.Call.Sig))
					}
				}
			case InstrDeref:
				check(b, i, ins.Deref.Src, "src")
			case InstrCast:
				check(b, i, ins.Cast.Dst, "dst")
				check(b, i, ins.Cast.Src, "src")
				if ins.Cast.To.Type == types.NoTypeID {
					errs = append(errs, fmt.Errorf("bb%d[%d]: cast to no type", b, i))
				}
			case InstrAssertNonNull:
				check(b, i, ins.Assert.Src, "src")
			case InstrNullTest:
				check(b, i, ins.NullTest.Dst, "dst")
				check(b, i, ins.NullTest.Src, "src")
				if dst := f.Local(ins.NullTest.Dst); dst != nil && !isBool(in, dst.Type.Type) {
					errs = append(errs, fmt.Errorf("bb%d[%d]: null test into non-bool local %d", b, i, ins.NullTest.Dst))
				}
			default:
				errs = append(errs, fmt.Errorf("bb%d[%d]: unknown instruction kind %d", b, i, ins.Kind))
			}
		}
	}
	return errors.Join(errs...)
}

func validateTerms(f *Func, in *types.Interner) error {
	var errs []error
	for b := range f.Blocks {
		t := &f.Blocks[b].Term
		switch t.Kind {
		case TermIf:
			cond := f.Local(t.If.Cond)
			if cond == nil {
				errs = append(errs, fmt.Errorf("bb%d: if condition local %d out of range", b, t.If.Cond))
			} else if !isBool(in, cond.Type.Type) {
				errs = append(errs, fmt.Errorf("bb%d: if condition local %d is not bool", b, t.If.Cond))
			}
		case TermMatch:
			if len(t.Match.Scrutinees) == 0 {
				errs = append(errs, fmt.Errorf("bb%d: match without scrutinees", b))
			}
			for _, s := range t.Match.Scrutinees {
				if f.Local(s) == nil {
					errs = append(errs, fmt.Errorf("bb%d: match scrutinee local %d out of range", b, s))
				}
			}
			if t.Match.Bind != NoLocalID && f.Local(t.Match.Bind) == nil {
				errs = append(errs, fmt.Errorf("bb%d: match binding local %d out of range", b, t.Match.Bind))
			}
		case TermReturn:
			if t.Return.HasValue && f.Local(t.Return.Value) == nil {
				errs = append(errs, fmt.Errorf("bb%d: return value local %d out of range", b, t.Return.Value))
			}
		}
	}
	return errors.Join(errs...)
}

func isBool(in *types.Interner, id types.TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == types.KindBool
}
