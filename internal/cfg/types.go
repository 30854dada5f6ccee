// Package cfg defines the per-function body IR front ends hand to the
// narrowing engine. A Func is a flat list of locals plus basic blocks;
// instructions carry only what nullability analysis needs, nothing
// about evaluation.
package cfg

import (
	"nihil/internal/source"
	"nihil/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// Local is one binding in a function body. Parameters are locals with
// Param set; their refs seed the entry facts.
type Local struct {
	Name source.StringID
	Type types.Ref
	// Mutable bindings never narrow: an intervening write can
	// invalidate the fact.
	Mutable bool
	Param   bool
	Span    source.Span
}
