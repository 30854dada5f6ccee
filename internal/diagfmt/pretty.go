package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"nihil/internal/diag"
	"nihil/internal/source"
)

// Pretty renders diagnostics for terminals. It walks bag.Items() in
// order (the driver sorts the bag before handing it over) and prints
// each diagnostic as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline covering the span,
// plus Context surrounding lines, then notes and fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	for _, d := range bag.Items() {
		writePretty(w, d, fs, opts)
	}
}

type prettyPalette struct {
	sev  func(format string, a ...any) string
	code func(format string, a ...any) string
	mark func(format string, a ...any) string
}

func palette(sev diag.Severity, enabled bool) prettyPalette {
	if !enabled {
		return prettyPalette{sev: fmt.Sprintf, code: fmt.Sprintf, mark: fmt.Sprintf}
	}
	var tone *color.Color
	switch sev {
	case diag.SevError:
		tone = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		tone = color.New(color.FgYellow, color.Bold)
	default:
		tone = color.New(color.FgCyan, color.Bold)
	}
	return prettyPalette{
		sev:  tone.Sprintf,
		code: color.New(color.Bold).Sprintf,
		mark: tone.Sprintf,
	}
}

func writePretty(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := palette(d.Severity, opts.Color)
	head := pal.sev("%s", d.Severity.String()) + " " + pal.code("%s", d.Code.ID())

	file := safeFile(fs, d.Primary.File)
	if file == nil {
		// A span into a file the bundle did not embed still renders,
		// just without a location or context.
		fmt.Fprintf(w, "%s: %s\n", head, d.Message)
	} else {
		start, end := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			renderPath(file, fs, opts.PathMode), start.Line, start.Col, head, d.Message)
		writeContext(w, file, start, end, opts, pal)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := safeFile(fs, n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "note: %s\n", n.Msg)
				continue
			}
			nstart, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "note: %s:%d:%d: %s\n",
				renderPath(nf, fs, opts.PathMode), nstart.Line, nstart.Col, n.Msg)
		}
	}

	if opts.ShowFixes {
		writeFixes(w, d.Fixes, fs, opts)
	}
}

func safeFile(fs *source.FileSet, id source.FileID) *source.File {
	if int(id) >= fs.Len() {
		return nil
	}
	return fs.Get(id)
}

// writeContext prints the primary line with the span underlined, plus
// opts.Context lines on each side. Columns are byte-based; tab bytes
// in the pad are preserved so the caret stays aligned.
func writeContext(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, pal prettyPalette) {
	if opts.Context < 0 || f == nil || len(f.Content) == 0 || start.Line == 0 {
		return
	}

	ctx := uint32(opts.Context)
	from := uint32(1)
	if start.Line > ctx {
		from = start.Line - ctx
	}
	to := start.Line + ctx
	if last := lineCount(f); to > last {
		to = last
	}
	if to < start.Line {
		to = start.Line
	}

	width := len(strconv.FormatUint(uint64(to), 10))
	for ln := from; ln <= to; ln++ {
		text := f.GetLine(ln)
		fmt.Fprintf(w, "%*d | %s\n", width, ln, text)
		if ln == start.Line {
			fmt.Fprintf(w, "%*s | %s\n", width, "", pal.mark("%s", underline(text, start, end)))
		}
	}
}

func lineCount(f *source.File) uint32 {
	n := uint32(len(f.LineIdx)) + 1
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] == '\n' {
		n--
	}
	return n
}

// underline builds the ^~~~ row for the first line of a span. Spans
// that continue onto later lines underline to the end of this one.
func underline(text string, start, end source.LineCol) string {
	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	stop := len(text) + 1
	if end.Line == start.Line && int(end.Col) <= stop {
		stop = int(end.Col)
	}
	n := stop - col
	if n < 1 {
		n = 1
	}

	var b strings.Builder
	for i := 0; i < col-1; i++ {
		if i < len(text) && text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", n-1))
	return b.String()
}

func writeFixes(w io.Writer, fixes []diag.Fix, fs *source.FileSet, opts PrettyOpts) {
	for i, fx := range fixes {
		fmt.Fprintf(w, "fix #%d: %s\n", i+1, fx.Title)
		for _, edit := range fx.Edits {
			ef := safeFile(fs, edit.Span.File)
			if ef == nil {
				fmt.Fprintf(w, "  apply=%q\n", edit.NewText)
				continue
			}
			estart, _ := fs.Resolve(edit.Span)
			fmt.Fprintf(w, "  apply=%q at %s:%d:%d\n",
				edit.NewText, renderPath(ef, fs, opts.PathMode), estart.Line, estart.Col)
			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixEditPreview(fs, edit)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "  preview:")
			for _, line := range preview.before {
				fmt.Fprintf(w, "  - %s\n", line)
			}
			for _, line := range preview.after {
				fmt.Fprintf(w, "  + %s\n", line)
			}
		}
	}
}
