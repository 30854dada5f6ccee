package main

import (
	"fmt"
	"io"

	"nihil/internal/observ"
)

// printTimings renders the per-phase breakdown. The bag already
// carries the one-line total; this is the detail view behind
// --timings.
func printTimings(out io.Writer, report *observ.Report) {
	if out == nil || report == nil || len(report.Phases) == 0 {
		return
	}
	fmt.Fprintln(out, "timings:")
	for _, p := range report.Phases {
		fmt.Fprintf(out, "  %-18s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(out, "  %s", p.Note)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  %-18s %8.2f ms\n", "total", report.TotalMS)
}
