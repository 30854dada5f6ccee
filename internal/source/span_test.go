package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		base     Span
		other    Span
		expected Span
	}{
		{
			name:     "other extends right",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 15, End: 30},
			expected: Span{File: 1, Start: 10, End: 30},
		},
		{
			name:     "other extends left",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 2, End: 12},
			expected: Span{File: 1, Start: 2, End: 20},
		},
		{
			name:     "other inside base",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 15},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "disjoint spans bridge the gap",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 40, End: 50},
			expected: Span{File: 1, Start: 10, End: 50},
		},
		{
			name:     "different file is ignored",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "empty other at start",
			base:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 10, End: 10},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.base.Cover(tt.other)
			if result != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestSpan_Before(t *testing.T) {
	tests := []struct {
		name string
		a    Span
		b    Span
		want bool
	}{
		{
			name: "earlier start wins",
			a:    Span{File: 1, Start: 5, End: 10},
			b:    Span{File: 1, Start: 8, End: 9},
			want: true,
		},
		{
			name: "same start shorter wins",
			a:    Span{File: 1, Start: 5, End: 7},
			b:    Span{File: 1, Start: 5, End: 10},
			want: true,
		},
		{
			name: "lower file wins",
			a:    Span{File: 0, Start: 100, End: 200},
			b:    Span{File: 1, Start: 0, End: 1},
			want: true,
		},
		{
			name: "identical spans are not before each other",
			a:    Span{File: 1, Start: 5, End: 10},
			b:    Span{File: 1, Start: 5, End: 10},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Errorf("Before() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpan_EmptyAndLen(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 10}
	if !s.Empty() {
		t.Error("zero-length span should be empty")
	}
	if s.Len() != 0 {
		t.Errorf("expected Len 0, got %d", s.Len())
	}

	s.End = 14
	if s.Empty() {
		t.Error("non-empty span reported empty")
	}
	if s.Len() != 4 {
		t.Errorf("expected Len 4, got %d", s.Len())
	}
}

func TestSpan_String(t *testing.T) {
	s := Span{File: 3, Start: 7, End: 21}
	if got := s.String(); got != "3:7-21" {
		t.Errorf("String() = %q, want %q", got, "3:7-21")
	}
}
