package cfg

import (
	"fmt"

	"fortio.org/safecast"

	"nihil/internal/source"
	"nihil/internal/types"
)

// Builder assembles a Func block by block. Front ends lower their AST
// through one of these; tests build fixtures the same way.
type Builder struct {
	f   *Func
	cur BlockID
}

func NewBuilder(sig types.SigID, name source.StringID, span source.Span) *Builder {
	b := &Builder{
		f: &Func{
			ID:    NoFuncID,
			Sig:   sig,
			Name:  name,
			Span:  span,
			Entry: NoBlockID,
		},
		cur: NoBlockID,
	}
	entry := b.NewBlock()
	b.f.Entry = entry
	b.StartBlock(entry)
	return b
}

// AddLocal appends a binding and returns its ID.
func (b *Builder) AddLocal(l Local) LocalID {
	raw, err := safecast.Conv[int32](len(b.f.Locals))
	if err != nil {
		panic(fmt.Errorf("cfg: local id overflow: %w", err))
	}
	b.f.Locals = append(b.f.Locals, l)
	return LocalID(raw)
}

// NewBlock appends an unterminated block and returns its ID without
// switching to it.
func (b *Builder) NewBlock() BlockID {
	raw, err := safecast.Conv[int32](len(b.f.Blocks))
	if err != nil {
		panic(fmt.Errorf("cfg: block id overflow: %w", err))
	}
	id := BlockID(raw)
	b.f.Blocks = append(b.f.Blocks, Block{ID: id, Term: Terminator{Kind: TermNone}})
	return id
}

// StartBlock makes id the emission target.
func (b *Builder) StartBlock(id BlockID) {
	b.cur = id
}

func (b *Builder) current() *Block {
	return b.f.Block(b.cur)
}

// Emit appends ins to the current block. Emission into a terminated
// block is dropped, mirroring unreachable code after a return.
func (b *Builder) Emit(ins Instr) {
	blk := b.current()
	if blk == nil || blk.Terminated() {
		return
	}
	blk.Instrs = append(blk.Instrs, ins)
}

// SetTerm terminates the current block. The first terminator wins.
func (b *Builder) SetTerm(t Terminator) {
	blk := b.current()
	if blk == nil || blk.Terminated() {
		return
	}
	blk.Term = t
}

// Finish returns the assembled function.
func (b *Builder) Finish() *Func {
	return b.f
}
