package tir

// BasicBlock is an ordered list of instructions with exactly one
// terminator (return or branch) as the last element once built (spec §3).
type BasicBlock struct {
	valueBase
	Instrs []*Instr
	parent *Function
}

// Parent returns the Function this block belongs to.
func (b *BasicBlock) Parent() *Function { return b.parent }

// Terminator returns the block's terminating instruction, or nil if the
// block is still being built.
func (b *BasicBlock) Terminator() *Instr {
	if n := len(b.Instrs); n > 0 && b.Instrs[n-1].IsTerminator() {
		return b.Instrs[n-1]
	}
	return nil
}

// Function is a named, typed, ordered sequence of basic blocks; the entry
// block is the first (spec §3).
type Function struct {
	valueBase
	FuncTy *FunctionType
	Args   []*Argument
	Blocks []*BasicBlock
}

// Entry returns the function's entry block, or nil if none has been
// created yet.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// CreateAlloca appends an alloca instruction to the function's entry block,
// matching the Code Generator's convention of emitting every local's
// storage at function entry (spec §4.9) regardless of where the
// IRBuilder's current insert point is.
func (f *Function) CreateAlloca(ctx *Context, allocTy Type) *Instr {
	entry := f.Entry()
	inst := &Instr{
		valueBase: valueBase{typ: ctx.PointerTy()},
		Op:        OpAlloca,
		AllocTy:   allocTy,
		parent:    entry,
	}
	entry.Instrs = append(entry.Instrs, inst)
	return inst
}
