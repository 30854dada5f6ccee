package diagfmt

import (
	"fmt"
	"io"

	"nihil/internal/diag"
	"nihil/internal/source"
)

// Short prints one stable line per diagnostic, the same form the
// scenario golden files use but without dropping foreign-unit spans.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	if bag == nil || fs == nil {
		return
	}
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out != "" {
		fmt.Fprintln(w, out)
	}
}
