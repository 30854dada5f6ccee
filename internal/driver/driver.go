// Package driver orchestrates one compilation. It reads a unit
// bundle, resolves the interface files the unit imports, decodes the
// bundle against the compilation's shared tables, runs module-wide
// inference, narrows every function body on a bounded worker pool,
// classifies the findings under the unit's policy, and optionally
// writes the unit's own interface file for downstream units.
//
// The driver owns all sequencing. The analysis packages underneath it
// are ignorant of phases; the ordering guarantees they document
// (narrowing reads only committed refs) are established here.
package driver

import (
	"time"

	"nihil/internal/diag"
	"nihil/internal/infer"
	"nihil/internal/meta"
	"nihil/internal/observ"
	"nihil/internal/source"
	"nihil/internal/types"
	"nihil/internal/unit"
)

// DefaultMaxDiagnostics caps the bag when the caller does not.
const DefaultMaxDiagnostics = 256

// Phase names, in the order CheckBundle runs them. Observers and the
// progress UI key on these.
const (
	PhaseReadBundle     = "read_bundle"
	PhaseReadManifest   = "read_manifest"
	PhaseResolveImports = "resolve_imports"
	PhaseDecode         = "decode"
	PhaseInfer          = "infer"
	PhaseNarrow         = "narrow"
	PhaseClassify       = "classify"
	PhaseExport         = "export"
)

// PhaseNames lists the phases one CheckBundle call can emit, in
// order. The export phase only runs when an export path is set.
func PhaseNames(export bool) []string {
	names := []string{
		PhaseReadBundle, PhaseReadManifest, PhaseResolveImports,
		PhaseDecode, PhaseInfer, PhaseNarrow, PhaseClassify,
	}
	if export {
		names = append(names, PhaseExport)
	}
	return names
}

// PhaseStatus says which side of a phase an event marks.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent is one phase boundary. Elapsed is zero on start events.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events as the driver moves through the
// pipeline. Called on the driver goroutine; it must not block, or the
// whole check stalls behind it.
type PhaseObserver func(PhaseEvent)

// Session carries the tables shared by every unit of one compilation:
// interned names, the structural type interner, the signature table,
// the inference table, the interface-file cache, and the sources the
// bundles embed. Build one per compilation and check units against it
// in dependency order.
type Session struct {
	Names *source.Interner
	Types *types.Interner
	Sigs  *types.SigTable
	Vars  *infer.Table
	Meta  *meta.Loader
	Files *source.FileSet
}

func NewSession() *Session {
	names := source.NewInterner()
	in := types.NewInterner()
	in.SetNames(names)
	return &Session{
		Names: names,
		Types: in,
		Sigs:  types.NewSigTable(),
		Vars:  infer.NewTable(),
		Meta:  meta.NewLoader(),
		Files: source.NewFileSet(),
	}
}

// Options configures one CheckBundle or Analyze call.
type Options struct {
	// Jobs caps the narrowing workers. Zero or negative means one
	// worker per logical CPU.
	Jobs int
	// MaxDiagnostics bounds the diagnostic bag; zero means
	// DefaultMaxDiagnostics.
	MaxDiagnostics int
	// ManifestPath overrides the manifest lookup next to the bundle.
	ManifestPath string
	// ExportPath, when set, writes the unit's interface file after an
	// analysis with no error diagnostics.
	ExportPath string
	// EnableTimings collects per-phase timings into the result and
	// appends them to the bag as an info diagnostic.
	EnableTimings bool
	// Observer, when set, receives a start and an end event per
	// phase on the driver goroutine.
	Observer PhaseObserver
}

// Result is the outcome of checking one unit. Unit is nil when the
// bundle was too damaged to form one; the bag says why. Files is the
// session's file set, which diagnostic spans resolve against.
type Result struct {
	Unit   *unit.Unit
	Bag    *diag.Bag
	Files  *source.FileSet
	Timing *observ.Report
}

// Failed reports whether the unit failed its check. Only
// error-severity diagnostics fail a compilation.
func (r *Result) Failed() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// run holds the state threaded through one driver invocation. rep is
// the reporter the read and decode phases use; it drops exact repeats
// before they reach the bag, so a bundle that trips over the same
// import in many places cannot exhaust the diagnostic cap with copies.
type run struct {
	sess  *Session
	opts  Options
	bag   *diag.Bag
	rep   diag.Reporter
	timer *observ.Timer
}

func newRun(sess *Session, opts Options) *run {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	r := &run{sess: sess, opts: opts, bag: diag.NewBag(opts.MaxDiagnostics)}
	r.rep = diag.NewDedupReporter(diag.BagReporter{Bag: r.bag})
	if opts.EnableTimings {
		r.timer = observ.NewTimer()
	}
	return r
}

// phaseMark is one open phase; end closes it.
type phaseMark struct {
	r     *run
	name  string
	idx   int
	start time.Time
}

func (r *run) begin(name string) phaseMark {
	m := phaseMark{r: r, name: name, idx: -1, start: time.Now()}
	if r.timer != nil {
		m.idx = r.timer.Begin(name)
	}
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return m
}

func (m phaseMark) end(note string) {
	if m.r == nil {
		return
	}
	if m.idx >= 0 {
		m.r.timer.End(m.idx, note)
	}
	if m.r.opts.Observer != nil {
		m.r.opts.Observer(PhaseEvent{
			Name:    m.name,
			Status:  PhaseEnd,
			Elapsed: time.Since(m.start),
		})
	}
}

// finish seals the bag and builds the result. Sorting keeps output
// stable across worker counts; the timing entry is appended after the
// sort so it always renders last.
func (r *run) finish(u *unit.Unit) *Result {
	r.bag.Sort()
	r.bag.Dedup()
	res := &Result{Unit: u, Bag: r.bag, Files: r.sess.Files}
	if r.timer != nil {
		report := r.timer.Report()
		res.Timing = &report
		name := ""
		if u != nil {
			name = u.Name
		}
		appendTimingDiagnostic(r.bag, timingPayload{
			Kind:    "check",
			Unit:    name,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res
}
