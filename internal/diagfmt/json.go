package diagfmt

import (
	"encoding/json"
	"io"

	"nihil/internal/diag"
	"nihil/internal/source"
)

// LocationJSON is a span resolved for JSON output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary-span note attached to a diagnostic.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is a single text edit of a suggested fix.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON is a suggested fix with its edits.
type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON form.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root structure of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// JSON writes diagnostics as an indented document with full location,
// note, and fix information.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

// BuildDiagnosticsOutput assembles the output structure without
// serializing it, so callers can aggregate several bags into one
// document.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}

	rendered := make([]DiagnosticJSON, len(items))
	for i := range items {
		rendered[i] = diagnosticJSON(&items[i], fs, opts)
	}
	return DiagnosticsOutput{Diagnostics: rendered, Count: len(rendered)}
}

func diagnosticJSON(d *diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: locationJSON(d.Primary, fs, opts),
	}

	// Timing payloads ride in notes; keep them even when notes are
	// otherwise trimmed from the output.
	if (opts.IncludeNotes || d.Code == diag.ObsTimings) && len(d.Notes) > 0 {
		out.Notes = make([]NoteJSON, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = NoteJSON{
				Message:  n.Msg,
				Location: locationJSON(n.Span, fs, opts),
			}
		}
	}

	if opts.IncludeFixes {
		for _, fx := range d.Fixes {
			out.Fixes = append(out.Fixes, fixJSON(fx, fs, opts))
		}
	}
	return out
}

func fixJSON(fx diag.Fix, fs *source.FileSet, opts JSONOpts) FixJSON {
	out := FixJSON{Title: fx.Title}
	if len(fx.Edits) == 0 {
		return out
	}
	out.Edits = make([]FixEditJSON, len(fx.Edits))
	for i, edit := range fx.Edits {
		ej := FixEditJSON{
			Location: locationJSON(edit.Span, fs, opts),
			NewText:  edit.NewText,
		}
		if opts.IncludePreviews {
			if preview, err := buildFixEditPreview(fs, edit); err == nil {
				ej.BeforeLines = append([]string(nil), preview.before...)
				ej.AfterLines = append([]string(nil), preview.after...)
			}
		}
		out.Edits[i] = ej
	}
	return out
}

// locationJSON resolves a span for output. Spans into files the bundle
// did not embed keep their byte offsets but carry no path or
// positions.
func locationJSON(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}

	f := safeFile(fs, span.File)
	if f == nil {
		return loc
	}
	loc.File = renderPath(f, fs, opts.PathMode)

	if opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.StartLine = start.Line
		loc.StartCol = start.Col
		loc.EndLine = end.Line
		loc.EndCol = end.Col
	}
	return loc
}
