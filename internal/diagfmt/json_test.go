package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"nihil/internal/diag"
	"nihil/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("fn relay(box: Item?) {\n    send(box.wire)\n}\n")
	fileID := fs.AddVirtual("relay.ni", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.NulNullableDeref,
		source.Span{File: fileID, Start: 32, End: 35},
		"dereference of a possibly null value",
	))

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\noutput: %s", err, buf.String())
	}

	if output.Count != 1 {
		t.Errorf("expected count=1, got %d", output.Count)
	}
	if len(output.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "WARNING" {
		t.Errorf("expected severity=WARNING, got %s", d.Severity)
	}
	if d.Code != "NUL3002" {
		t.Errorf("expected code=NUL3002, got %s", d.Code)
	}
	if d.Message != "dereference of a possibly null value" {
		t.Errorf("unexpected message %q", d.Message)
	}
	if d.Location.File != "relay.ni" {
		t.Errorf("expected file=relay.ni, got %s", d.Location.File)
	}
	if d.Location.StartByte != 32 || d.Location.EndByte != 35 {
		t.Errorf("expected bytes 32..35, got %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 10 {
		t.Errorf("expected position 2:10, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if d.Location.EndLine != 2 || d.Location.EndCol != 13 {
		t.Errorf("expected end position 2:13, got %d:%d", d.Location.EndLine, d.Location.EndCol)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("relay.ni", []byte("send(box)\n"))

	bag := diag.NewBag(4)
	bag.Add(diag.New(
		diag.SevError,
		diag.NulAssignedNonNull,
		source.Span{File: fileID, Start: 5, End: 8},
		"possible null assigned to a non-null target",
	))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	loc := output.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions must be omitted, got %d:%d", loc.StartLine, loc.StartCol)
	}
	if loc.StartByte != 5 || loc.EndByte != 8 {
		t.Errorf("byte offsets always present, got %d..%d", loc.StartByte, loc.EndByte)
	}
}

func TestJSONNotesGating(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("relay.ni", []byte("send(box)\n"))
	span := source.Span{File: fileID, Start: 5, End: 8}

	warn := diag.New(diag.SevWarning, diag.NulNullableDeref, span, "dereference of a possibly null value")
	warn = warn.WithNote(span, "box declared here")

	timing := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings (check app): total 1.00 ms")
	timing = timing.WithNote(source.Span{}, `{"total_ms":1}`)

	bag := diag.NewBag(4)
	bag.Add(warn)
	bag.Add(timing)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: false}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(output.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(output.Diagnostics))
	}

	for _, d := range output.Diagnostics {
		switch d.Code {
		case "NUL3002":
			if len(d.Notes) != 0 {
				t.Errorf("notes must be trimmed when IncludeNotes is off, got %v", d.Notes)
			}
		case "OBS5001":
			// Timing payloads survive the notes switch.
			if len(d.Notes) != 1 {
				t.Fatalf("timing note must be kept, got %v", d.Notes)
			}
			if d.Notes[0].Message != `{"total_ms":1}` {
				t.Errorf("unexpected timing payload %q", d.Notes[0].Message)
			}
		default:
			t.Errorf("unexpected code %s", d.Code)
		}
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("relay.ni", []byte("a\nb\nc\n"))

	bag := diag.NewBag(10)
	for i := uint32(0); i < 3; i++ {
		bag.Add(diag.New(
			diag.SevWarning,
			diag.NulNullableDeref,
			source.Span{File: fileID, Start: 2 * i, End: 2*i + 1},
			"dereference of a possibly null value",
		))
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, Max: 2}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("expected truncation to 2, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}
}

func TestJSONFixesWithPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("ret load(src)\n")
	fileID := fs.AddVirtual("relay.ni", content)

	d := diag.New(
		diag.SevWarning,
		diag.NulAssignedNonNull,
		source.Span{File: fileID, Start: 4, End: 13},
		"possible null assigned to a non-null target",
	)
	d = d.WithFix("assert the result non-null", diag.FixEdit{
		Span:    source.Span{File: fileID, Start: 13, End: 13},
		NewText: "!!",
	})

	bag := diag.NewBag(4)
	bag.Add(d)

	var buf bytes.Buffer
	opts := JSONOpts{
		PathMode:        PathModeBasename,
		IncludeFixes:    true,
		IncludePreviews: true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	fixes := output.Diagnostics[0].Fixes
	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %d", len(fixes))
	}
	if fixes[0].Title != "assert the result non-null" {
		t.Errorf("unexpected fix title %q", fixes[0].Title)
	}
	if len(fixes[0].Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(fixes[0].Edits))
	}
	edit := fixes[0].Edits[0]
	if edit.NewText != "!!" {
		t.Errorf("unexpected edit text %q", edit.NewText)
	}
	if len(edit.BeforeLines) != 1 || edit.BeforeLines[0] != "ret load(src)" {
		t.Errorf("unexpected before lines %v", edit.BeforeLines)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "ret load(src)!!" {
		t.Errorf("unexpected after lines %v", edit.AfterLines)
	}

	// Fixes disappear entirely when the switch is off.
	var trimmed bytes.Buffer
	if err := JSON(&trimmed, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var plain DiagnosticsOutput
	if err := json.Unmarshal(trimmed.Bytes(), &plain); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(plain.Diagnostics[0].Fixes) != 0 {
		t.Errorf("fixes must be trimmed when IncludeFixes is off, got %v", plain.Diagnostics[0].Fixes)
	}
}

func TestJSONEmptyBag(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(4)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if output.Count != 0 {
		t.Errorf("expected count=0, got %d", output.Count)
	}
	if output.Diagnostics == nil {
		t.Error("diagnostics must encode as an empty array, not null")
	}
}
