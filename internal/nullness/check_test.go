package nullness

import (
	"testing"
)

func TestCheckAssignment(t *testing.T) {
	tests := []struct {
		name       string
		expected   Value
		actual     Value
		ok         bool
		wantOrigin Origin
	}{
		{"nonnull into nonnull", NonNull, NonNull, true, 0},
		{"nullable into nonnull", NonNull, Nullable, false, OriginNullable},
		{"oblivious into nonnull", NonNull, Oblivious, false, OriginOblivious},
		{"nonnull into nullable", Nullable, NonNull, true, 0},
		{"nullable into nullable", Nullable, Nullable, true, 0},
		{"oblivious into nullable", Nullable, Oblivious, true, 0},
		{"anything into oblivious", Oblivious, Nullable, true, 0},
		{"unresolved actual passes", NonNull, Unresolved, true, 0},
		{"unresolved expected passes", Unresolved, Nullable, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Check(KindAssignedNonNull, tt.expected, tt.actual)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if m.Kind != KindAssignedNonNull {
					t.Errorf("kind = %s, want %s", m.Kind, KindAssignedNonNull)
				}
				if m.Origin != tt.wantOrigin {
					t.Errorf("origin = %s, want %s", m.Origin, tt.wantOrigin)
				}
			}
		})
	}
}

func TestCheckDerefSilentOnOblivious(t *testing.T) {
	if _, ok := Check(KindNullableDeref, NonNull, Oblivious); !ok {
		t.Fatal("oblivious dereference must never produce a mismatch")
	}
	if _, ok := Check(KindNullableDeref, NonNull, NonNull); !ok {
		t.Fatal("non-null dereference must be silent")
	}
	m, ok := Check(KindNullableDeref, NonNull, Nullable)
	if ok {
		t.Fatal("nullable dereference must produce a mismatch")
	}
	if m.Kind != KindNullableDeref || m.Origin != OriginNullable {
		t.Fatalf("unexpected mismatch %+v", m)
	}
}

func TestCheckConstraintDemand(t *testing.T) {
	// requires-nonnull rejects a nullable argument
	m, ok := Check(KindGenericMismatch, NonNull, Nullable)
	if ok || m.Origin != OriginNullable {
		t.Fatalf("requires-nonnull vs nullable: ok=%v origin=%s", ok, m.Origin)
	}

	// requires-nullable rejects a non-null argument, attributed to the
	// non-null axis
	m, ok = Check(KindGenericMismatch, Nullable, NonNull)
	if ok || m.Origin != OriginNonNull {
		t.Fatalf("requires-nullable vs nonnull: ok=%v origin=%s", ok, m.Origin)
	}

	// oblivious arguments satisfy both demands
	if _, ok := Check(KindGenericMismatch, NonNull, Oblivious); !ok {
		t.Error("oblivious must satisfy requires-nonnull")
	}
	if _, ok := Check(KindGenericMismatch, Nullable, Oblivious); !ok {
		t.Error("oblivious must satisfy requires-nullable")
	}
}

func TestCheckIntentConflict(t *testing.T) {
	m, ok := Check(KindIntentConflict, Nullable, NonNull)
	if ok {
		t.Fatal("nullable intent on a non-null type must conflict")
	}
	if m.Kind != KindIntentConflict || m.Origin != OriginNonNull {
		t.Fatalf("unexpected mismatch %+v", m)
	}

	if _, ok := Check(KindIntentConflict, Nullable, Nullable); !ok {
		t.Fatal("matching intent must be silent")
	}
}

func TestWithForeignOrigin(t *testing.T) {
	m, ok := Check(KindNullableDeref, NonNull, Nullable)
	if ok {
		t.Fatal("expected a mismatch")
	}
	if got := m.WithForeignOrigin().Origin; got != OriginOblivious {
		t.Fatalf("foreign attribution = %s, want oblivious", got)
	}
	// the original record is untouched
	if m.Origin != OriginNullable {
		t.Fatalf("receiver mutated: %s", m.Origin)
	}
}

func TestKindStrings(t *testing.T) {
	want := map[Kind]string{
		KindAssignedNonNull: "NullAssignedToNonNull",
		KindNullableDeref:   "NullableDereferenced",
		KindUnsafeCast:      "UnsafeNullableCast",
		KindGenericMismatch: "GenericInstantiationMismatch",
		KindIntentConflict:  "IntentConflict",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("String(%d) = %q, want %q", k, k.String(), s)
		}
	}
}
