// Package diag defines the diagnostic model shared by all analysis phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     metadata loading, inference and the flow analysis.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting layers.
//
// # Data model
//
// Diagnostic is the central record: Severity (severity.go), a stable numeric
// Code (codes.go), a short message, the primary source.Span, plus optional
// Notes and Fix suggestions. Notes must add context ("declared non-null here")
// rather than restate the message.
//
// # Emitting diagnostics
//
// Phases report through a diag.Reporter. BagReporter aggregates into a Bag,
// which supports sorting, merging and deduplication; DedupReporter filters
// repeats before they reach storage. The severity of nullability findings is
// not fixed here: the classifier in internal/policy picks it per code group
// before the diagnostic is built.
//
// # Consumers
//
//   - internal/diagfmt renders Diagnostics as pretty terminal output or JSON.
//   - internal/driver collects per-function bags and merges them for the CLI.
//
// Keep the model data-only and deterministic so diagnostics can be serialised
// for golden tests and caching.
package diag
