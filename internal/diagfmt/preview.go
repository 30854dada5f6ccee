package diagfmt

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"nihil/internal/diag"
	"nihil/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the lines an edit touches, before and
// after the edit is applied, so callers can show a unified-diff style
// preview without mutating the file.
func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := safeFile(fs, edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	contentLen, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	lo := lineStart(file, startPos.Line, contentLen)
	hi := lineEnd(file, max(endPos.Line, startPos.Line), contentLen)
	hi = min(max(hi, lo), contentLen)

	before := slices.Clone(file.Content[lo:hi])

	relStart := int(edit.Span.Start) - int(lo)
	relEnd := int(edit.Span.End) - int(lo)
	if relStart < 0 || relStart > len(before) {
		return fixEditPreview{}, fmt.Errorf("edit span start %d out of range for preview block", relStart)
	}
	if relEnd < relStart || relEnd > len(before) {
		return fixEditPreview{}, fmt.Errorf("edit span end %d out of range for preview block", relEnd)
	}

	after := slices.Concat(before[:relStart], []byte(edit.NewText), before[relEnd:])

	return fixEditPreview{
		before: splitPreviewLines(before),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// Trailing newline would otherwise produce a phantom empty line.
	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}

// lineStart returns the offset of the first byte of the 1-based line,
// or contentLen when the line is past the end of the file.
func lineStart(f *source.File, line, contentLen uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if i := int(line) - 2; i < len(f.LineIdx) {
		return f.LineIdx[i] + 1
	}
	return contentLen
}

// lineEnd returns the offset one past the line's newline, which for the
// last line means the end of content.
func lineEnd(f *source.File, line, contentLen uint32) uint32 {
	if line == 0 {
		return 0
	}
	if i := int(line) - 1; i < len(f.LineIdx) {
		return f.LineIdx[i] + 1
	}
	return contentLen
}
