package cfg

import (
	"nihil/internal/source"
	"nihil/internal/types"
)

// Block is a straight-line run of instructions ending in a terminator.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator
}

// Terminated reports whether the block ends properly.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Func is one function body ready for narrowing analysis.
type Func struct {
	ID   FuncID
	Sig  types.SigID
	Name source.StringID
	Span source.Span

	Locals []Local
	Blocks []Block
	Entry  BlockID
}

// Local returns the binding for id, or nil when out of range.
func (f *Func) Local(id LocalID) *Local {
	if f == nil || id == NoLocalID || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}

// Block returns the block for id, or nil when out of range.
func (f *Func) Block(id BlockID) *Block {
	if f == nil || id == NoBlockID || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// Params returns the parameter locals in declaration order.
func (f *Func) Params() []LocalID {
	var out []LocalID
	for i := range f.Locals {
		if f.Locals[i].Param {
			out = append(out, LocalID(i))
		}
	}
	return out
}
