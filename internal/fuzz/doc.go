// Package fuzztests houses Go fuzz harnesses that exercise the wire
// surface of the checker (bundle, interface and manifest decoding). Its
// goal is to smoke test robustness and guard against panics on arbitrary
// inputs: every byte sequence must either decode cleanly or come back as
// an error.
//
// Does not: generate corpora, write repository files, run the CLI.
//
// Depends on: internal/unit, internal/meta.

package fuzztests
