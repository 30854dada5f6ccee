package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nihil/internal/cfg"
	"nihil/internal/check"
	"nihil/internal/flow"
	"nihil/internal/policy"
	"nihil/internal/unit"
)

// Analyze checks a unit a front end built in memory. The phases are
// the ones CheckBundle runs after decoding: module-wide inference,
// parallel narrowing, classification. The unit's signatures must
// already be registered in the session tables.
func Analyze(ctx context.Context, sess *Session, u *unit.Unit, opts Options) (*Result, error) {
	r := newRun(sess, opts)
	if err := r.analyze(ctx, u); err != nil {
		return nil, err
	}
	return r.finish(u), nil
}

func (r *run) analyze(ctx context.Context, u *unit.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := r.begin(PhaseInfer)
	findings := r.infer(u)
	m.end(fmt.Sprintf("findings=%d", len(findings)))

	if err := ctx.Err(); err != nil {
		return err
	}

	m = r.begin(PhaseNarrow)
	results, err := r.narrow(ctx, u)
	m.end(fmt.Sprintf("funcs=%d", len(u.Funcs)))
	if err != nil {
		return err
	}

	m = r.begin(PhaseClassify)
	r.classify(u, findings, results)
	m.end(fmt.Sprintf("diags=%d", r.bag.Len()))
	return nil
}

// infer is phase a, on the calling goroutine: bodies widen the
// inference table, signatures commit and reconcile their decorations,
// bindings commit and parameters re-adopt the reconciled signature
// types, and instantiation sites check their constraints. Nothing
// after this phase writes the shared tables, which is what lets the
// narrowing workers read them without locks.
func (r *run) infer(u *unit.Unit) []check.Finding {
	chk := check.New(r.sess.Types, r.sess.Sigs, r.sess.Vars)
	for _, f := range u.Funcs {
		chk.GatherFunc(f)
	}
	var out []check.Finding
	for _, id := range u.Sigs {
		out = append(out, chk.GeneralizeSig(id)...)
	}
	for _, f := range u.Funcs {
		chk.GeneralizeFunc(f)
	}
	for _, f := range u.Funcs {
		out = append(out, r.instantiate(chk, f)...)
	}
	return out
}

// instantiate rewrites every generic call in f with its effective
// type arguments, so narrowing substitutes with the same refs the
// constraint check judged.
func (r *run) instantiate(chk *check.Checker, f *cfg.Func) []check.Finding {
	var out []check.Finding
	for bi := range f.Blocks {
		blk := &f.Blocks[bi]
		for ii := range blk.Instrs {
			ins := &blk.Instrs[ii]
			if ins.Kind != cfg.InstrCall || len(ins.Call.TypeArgs) == 0 {
				continue
			}
			sig, ok := r.sess.Sigs.Get(ins.Call.Sig)
			if !ok {
				continue
			}
			eff, fs := chk.Instantiate(sig.TypeParams, ins.Call.TypeArgs, ins.Span)
			ins.Call.TypeArgs = eff
			out = append(out, fs...)
		}
	}
	return out
}

// narrow is phase b: one worker per function up to the job limit.
// Workers write disjoint result slots; a canceled context discards
// everything.
func (r *run) narrow(ctx context.Context, u *unit.Unit) ([][]flow.Finding, error) {
	results := make([][]flow.Finding, len(u.Funcs))
	if len(u.Funcs) == 0 {
		return results, nil
	}

	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(u.Funcs)))
	for i, f := range u.Funcs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = flow.Analyze(f, r.sess.Types, r.sess.Sigs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// classify resolves every finding through the unit's policy table.
// Findings about a named binding carry a note pointing back at its
// declaration.
func (r *run) classify(u *unit.Unit, sigFindings []check.Finding, flowFindings [][]flow.Finding) {
	cls := policy.Classifier{Table: u.Policy}
	for _, fd := range sigFindings {
		if d, ok := cls.Classify(fd.Mismatch, fd.Span); ok {
			r.bag.Add(d)
		}
	}
	for i, f := range u.Funcs {
		for _, fd := range flowFindings[i] {
			d, ok := cls.Classify(fd.Mismatch, fd.Span)
			if !ok {
				continue
			}
			if l := f.Local(fd.Local); l != nil {
				if name, known := r.sess.Names.Lookup(l.Name); known && name != "" {
					d = d.WithNote(l.Span, fmt.Sprintf("%s declared here", name))
				}
			}
			r.bag.Add(d)
		}
	}
}
