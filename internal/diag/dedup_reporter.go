package diag

import "nihil/internal/source"

// repeatKey identifies a diagnostic up to its notes and fixes.
type repeatKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter forwards each distinct diagnostic once and swallows
// exact repeats. Decode complaints arrive with identical text and
// span when a bundle trips over the same problem from several
// references; one copy tells the reader everything, and the repeats
// would otherwise count against the bag's cap. Notes and fixes do not
// participate in the key; the first emission wins.
type DedupReporter struct {
	next Reporter
	seen map[repeatKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[repeatKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil || r.next == nil {
		return
	}
	key := repeatKey{code: code, sev: sev, span: primary, msg: msg}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.next.Report(code, sev, primary, msg, notes, fixes)
}
