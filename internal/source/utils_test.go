package source

import (
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"no carriage returns", "a\nb\n", "a\nb\n", false},
		{"windows line endings", "a\r\nb\r\n", "a\nb\n", true},
		{"lone carriage return survives", "a\rb", "a\rb", false},
		{"mixed", "a\r\nb\rc\n", "a\nb\rc\n", true},
		{"trailing CR", "a\r", "a\r", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("normalizeCRLF(%q) = %q, want %q", tt.in, string(got), tt.want)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
		})
	}
}

func TestRemoveBOM(t *testing.T) {
	withBOM := []byte{0xEF, 0xBB, 0xBF, 'x'}
	got, had := removeBOM(withBOM)
	if !had {
		t.Error("BOM not detected")
	}
	if string(got) != "x" {
		t.Errorf("expected %q after BOM removal, got %q", "x", string(got))
	}

	plain := []byte("xy")
	got, had = removeBOM(plain)
	if had {
		t.Error("false BOM detection on short input")
	}
	if string(got) != "xy" {
		t.Errorf("content mangled: %q", string(got))
	}
}

func TestToLineColBoundaries(t *testing.T) {
	// "ab\ncd\n" -> newlines at offsets 2 and 5.
	idx := buildLineIndex([]byte("ab\ncd\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{1, LineCol{Line: 1, Col: 2}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline itself
		{3, LineCol{Line: 2, Col: 1}},
		{5, LineCol{Line: 2, Col: 3}},
		{6, LineCol{Line: 3, Col: 1}}, // one past the last newline
		{12, LineCol{Line: 3, Col: 7}},
	}

	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath("a//b/../c.ni"); got != "a/c.ni" {
		t.Errorf("normalizePath = %q, want %q", got, "a/c.ni")
	}
}
