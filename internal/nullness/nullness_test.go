package nullness

import (
	"testing"
)

var allValues = []Value{NonNull, Nullable, Oblivious, Unresolved}

func TestMeetLaws(t *testing.T) {
	for _, a := range allValues {
		if Meet(a, a) != a {
			t.Errorf("meet not idempotent for %s", a)
		}
		for _, b := range allValues {
			if Meet(a, b) != Meet(b, a) {
				t.Errorf("meet not commutative for %s, %s", a, b)
			}
			for _, c := range allValues {
				if Meet(Meet(a, b), c) != Meet(a, Meet(b, c)) {
					t.Errorf("meet not associative for %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestMeetNonNullAbsorbs(t *testing.T) {
	for _, v := range allValues {
		if Meet(NonNull, v) != NonNull {
			t.Errorf("meet(NonNull, %s) = %s, want NonNull", v, Meet(NonNull, v))
		}
	}
}

func TestMeetPicksNullableOverOblivious(t *testing.T) {
	if got := Meet(Nullable, Oblivious); got != Nullable {
		t.Errorf("meet(Nullable, Oblivious) = %s, want Nullable", got)
	}
}

func TestJoinLaws(t *testing.T) {
	for _, a := range allValues {
		if Join(a, a) != a {
			t.Errorf("join not idempotent for %s", a)
		}
		for _, b := range allValues {
			if Join(a, b) != Join(b, a) {
				t.Errorf("join not commutative for %s, %s", a, b)
			}
			for _, c := range allValues {
				if Join(Join(a, b), c) != Join(a, Join(b, c)) {
					t.Errorf("join not associative for %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestJoinMergeTable(t *testing.T) {
	tests := []struct {
		a, b, want Value
	}{
		// A fact survives a merge only when both edges carry it.
		{NonNull, NonNull, NonNull},
		{NonNull, Nullable, Nullable},
		{NonNull, Oblivious, Oblivious},
		{Nullable, Oblivious, Nullable},
		{Nullable, Nullable, Nullable},
		{Oblivious, Oblivious, Oblivious},
	}
	for _, tt := range tests {
		if got := Join(tt.a, tt.b); got != tt.want {
			t.Errorf("join(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueStrings(t *testing.T) {
	want := map[Value]string{
		NonNull:    "nonnull",
		Nullable:   "nullable",
		Oblivious:  "oblivious",
		Unresolved: "unresolved",
	}
	for v, s := range want {
		if v.String() != s {
			t.Errorf("String(%d) = %q, want %q", v, v.String(), s)
		}
	}
	if Value(200).String() != "invalid" {
		t.Errorf("out-of-range value should stringify as invalid")
	}
}

func TestIsConcrete(t *testing.T) {
	for _, v := range []Value{NonNull, Nullable, Oblivious} {
		if !v.IsConcrete() {
			t.Errorf("%s should be concrete", v)
		}
	}
	if Unresolved.IsConcrete() {
		t.Error("Unresolved must not be concrete")
	}
}
