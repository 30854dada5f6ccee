package policy

import (
	"errors"
	"testing"

	"nihil/internal/diag"
	"nihil/internal/nullness"
	"nihil/internal/source"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", 0, false},
		{"", 0, false},
		{"Warn", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrBadLevel) {
			t.Errorf("ParseLevel(%q) err = %v, want ErrBadLevel", tt.in, err)
		}
	}
}

func TestLevelTextRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelOff, LevelWarn, LevelError} {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", l, err)
		}
		var back Level
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != l {
			t.Errorf("round trip %v -> %q -> %v", l, text, back)
		}
	}
}

func TestDefaults(t *testing.T) {
	legacy := Legacy()
	if legacy.Nullable != LevelOff || legacy.NonNull != LevelOff || legacy.Oblivious != LevelOff {
		t.Errorf("legacy table = %+v, want all off", legacy)
	}
	fresh := Fresh()
	if fresh.Nullable != LevelWarn || fresh.NonNull != LevelWarn || fresh.Oblivious != LevelWarn {
		t.Errorf("fresh table = %+v, want all warn", fresh)
	}
}

func TestResolvePicksAxis(t *testing.T) {
	tab := Table{Nullable: LevelError, NonNull: LevelWarn, Oblivious: LevelOff}
	if got := tab.Resolve(nullness.OriginNullable); got != LevelError {
		t.Errorf("nullable axis = %v", got)
	}
	if got := tab.Resolve(nullness.OriginNonNull); got != LevelWarn {
		t.Errorf("nonnull axis = %v", got)
	}
	if got := tab.Resolve(nullness.OriginOblivious); got != LevelOff {
		t.Errorf("oblivious axis = %v", got)
	}
}

func TestClassifySeverityAndCode(t *testing.T) {
	span := source.Span{File: 1, Start: 4, End: 8}
	cls := Classifier{Table: Table{Nullable: LevelWarn, NonNull: LevelError, Oblivious: LevelOff}}

	d, ok := cls.Classify(nullness.Mismatch{
		Kind: nullness.KindNullableDeref, Origin: nullness.OriginNullable,
	}, span)
	if !ok {
		t.Fatal("nullable axis dropped a warn-level finding")
	}
	if d.Severity != diag.SevWarning || d.Code != diag.NulNullableDeref {
		t.Errorf("got %v/%v", d.Severity, d.Code)
	}
	if d.Primary != span {
		t.Errorf("span = %v", d.Primary)
	}

	d, ok = cls.Classify(nullness.Mismatch{
		Kind: nullness.KindIntentConflict, Origin: nullness.OriginNonNull,
	}, span)
	if !ok || d.Severity != diag.SevError || d.Code != diag.NulIntentConflict {
		t.Errorf("nonnull axis: got %v ok=%v", d, ok)
	}

	if _, ok := cls.Classify(nullness.Mismatch{
		Kind: nullness.KindNullableDeref, Origin: nullness.OriginOblivious,
	}, span); ok {
		t.Error("off axis leaked a diagnostic")
	}
}

func TestClassifyKindCodes(t *testing.T) {
	cls := Classifier{Table: Fresh()}
	tests := []struct {
		kind nullness.Kind
		code diag.Code
	}{
		{nullness.KindAssignedNonNull, diag.NulAssignedNonNull},
		{nullness.KindNullableDeref, diag.NulNullableDeref},
		{nullness.KindUnsafeCast, diag.NulUnsafeCast},
		{nullness.KindGenericMismatch, diag.NulGenericMismatch},
		{nullness.KindIntentConflict, diag.NulIntentConflict},
	}
	for _, tt := range tests {
		d, ok := cls.Classify(nullness.Mismatch{Kind: tt.kind}, source.Span{})
		if !ok || d.Code != tt.code {
			t.Errorf("kind %v -> %v (ok=%v), want %v", tt.kind, d.Code, ok, tt.code)
		}
	}
}

func TestObliviousOriginAnnotatesMessage(t *testing.T) {
	cls := Classifier{Table: Fresh()}
	d, ok := cls.Classify(nullness.Mismatch{
		Kind: nullness.KindAssignedNonNull, Origin: nullness.OriginOblivious,
	}, source.Span{})
	if !ok {
		t.Fatal("dropped")
	}
	plain, _ := cls.Classify(nullness.Mismatch{
		Kind: nullness.KindAssignedNonNull, Origin: nullness.OriginNullable,
	}, source.Span{})
	if d.Message == plain.Message {
		t.Error("oblivious origin should be visible in the message")
	}
}
