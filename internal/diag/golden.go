package diag

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nihil/internal/source"
)

// goldenLine is one rendered diagnostic plus the fields its sort
// position depends on. Line and column stay numeric because their text
// forms do not order correctly past nine.
type goldenLine struct {
	path string
	line uint32
	col  uint32
	sev  string
	code string
	msg  string
}

func (g *goldenLine) before(o *goldenLine) bool {
	if g.path != o.path {
		return g.path < o.path
	}
	if g.line != o.line {
		return g.line < o.line
	}
	if g.col != o.col {
		return g.col < o.col
	}
	if g.sev != o.sev {
		return g.sev < o.sev
	}
	if g.code != o.code {
		return g.code < o.code
	}
	return g.msg < o.msg
}

// FormatGoldenDiagnostics renders diagnostics one line per entry, in a
// stable order, for golden files. Spans living in foreign units are
// dropped; the result is empty when nothing remains.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderLines(diags, fs, includeNotes, true)
}

// FormatShortDiagnostics renders the same one-line-per-entry shape for
// CLI short output, keeping foreign-unit spans.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderLines(diags, fs, includeNotes, false)
}

func renderLines(diags []Diagnostic, fs *source.FileSet, includeNotes, dropForeign bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	lines := make([]goldenLine, 0, len(diags))
	push := func(span source.Span, sev, code, msg string) {
		loc, ok := locate(fs, span)
		if !ok || (dropForeign && foreignUnitPath(loc.path)) {
			return
		}
		lines = append(lines, goldenLine{
			path: loc.path,
			line: loc.line,
			col:  loc.col,
			sev:  sev,
			code: code,
			msg:  flattenMessage(msg),
		})
	}
	for i := range diags {
		d := &diags[i]
		push(d.Primary, strings.ToLower(d.Severity.String()), d.Code.ID(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			push(n.Span, "note", d.Code.ID(), n.Msg)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].before(&lines[j])
	})

	var b strings.Builder
	for i := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		g := &lines[i]
		b.WriteString(g.sev)
		b.WriteByte(' ')
		b.WriteString(g.code)
		b.WriteByte(' ')
		b.WriteString(g.path)
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(g.line), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(g.col), 10))
		b.WriteByte(' ')
		b.WriteString(g.msg)
	}
	return b.String()
}

type goldenLoc struct {
	path string
	line uint32
	col  uint32
}

// locate resolves a span's start position and its display path relative
// to the file set root. Spans naming a file the set never loaded cannot
// be shown and report ok false.
func locate(fs *source.FileSet, span source.Span) (goldenLoc, bool) {
	if int(span.File) >= fs.Len() {
		return goldenLoc{}, false
	}
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return goldenLoc{
		path: cleanDisplayPath(file.FormatPath("relative", fs.BaseDir())),
		line: start.Line,
		col:  start.Col,
	}, true
}

func cleanDisplayPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// foreignRoots are the directories imported units unpack into. Their
// sources give pretty output its context lines but never belong in
// golden files.
var foreignRoots = []string{"ext/", "vendor/"}

func foreignUnitPath(path string) bool {
	if path == "" {
		return false
	}
	p := strings.TrimLeft(cleanDisplayPath(path), "/")
	for _, root := range foreignRoots {
		if strings.HasPrefix(p, root) || strings.Contains(p, "/"+root) {
			return true
		}
	}
	return false
}

// flattenMessage folds a multi-line message onto one line so every
// golden entry stays greppable.
func flattenMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
