// Package observ collects wall-clock timings of pipeline phases. The
// driver owns a Timer per invocation and attaches the report to its
// diagnostics; nothing here is concurrency-safe on its own.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records one timed span of work.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer accumulates phases in begin order.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. The note lands in the report verbatim;
// out-of-range indexes are ignored so callers can carry a -1 sentinel
// for phases that never began.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary renders the report for terminal output.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // ")
			b.WriteString(p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport is the serializable form of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates a timer run in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the phases recorded so far. Total is the sum of
// phase durations, not first start to last end; gaps between phases
// do not count.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	var (
		total  time.Duration
		phases = make([]PhaseReport, len(t.phases))
	)
	for i := range t.phases {
		p := &t.phases[i]
		total += p.Dur
		phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	return Report{TotalMS: millis(total), Phases: phases}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
