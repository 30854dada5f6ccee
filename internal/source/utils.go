package source

import (
	"bytes"
	"path/filepath"
	"slices"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	crlf    = []byte{'\r', '\n'}
	lf      = []byte{'\n'}
)

// normalizeCRLF folds every \r\n pair into \n. Lone \r bytes are data,
// not line endings, and pass through untouched. The second result
// reports whether anything was folded; untouched content is returned
// without copying.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, lf), true
}

// removeBOM strips a leading UTF-8 byte order mark.
func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], true
	}
	return content, false
}

// buildLineIndex records the byte offset of each \n in content. The
// resulting slice is ascending, which toLineCol relies on.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, lf))
	base := 0
	for {
		i := bytes.IndexByte(content[base:], '\n')
		if i < 0 {
			return out
		}
		out = append(out, uint32(base+i))
		base += i + 1
	}
}

// toLineCol maps a byte offset to a 1-based line and column. The line
// number is one more than the count of newlines ending strictly before
// off, so an offset pointing at a newline byte still belongs to the
// line that newline terminates. Offsets past the end of content land
// on the line the last newline opened.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	n, _ := slices.BinarySearch(lineIdx, off)
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	lineStart := lineIdx[n-1] + 1
	return LineCol{Line: uint32(n + 1), Col: off - lineStart + 1}
}

// normalizePath gives every path one canonical, slash-separated shape
// so lookups and diffs behave the same on every platform.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
