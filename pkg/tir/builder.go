package tir

import "fmt"

// InsertPoint names where the next created instruction is appended: a
// basic block plus a position (an index into Block.Instrs, always equal to
// len(Block.Instrs) in this builder since instructions are only ever
// appended, never spliced mid-block).
type InsertPoint struct {
	Block *BasicBlock
}

// IRBuilder exposes an insert point and creation methods; every new
// instruction is appended there, and the insert point then advances (spec
// §4.8).
type IRBuilder struct {
	ctx *Context
	ip  InsertPoint
}

// NewIRBuilder returns a builder with no insert point set.
func NewIRBuilder(ctx *Context) *IRBuilder {
	return &IRBuilder{ctx: ctx}
}

// SetInsertPoint moves subsequent creation calls to append at the end of b.
func (bd *IRBuilder) SetInsertPoint(b *BasicBlock) {
	bd.ip = InsertPoint{Block: b}
}

// InsertBlock returns the block new instructions are currently appended to.
func (bd *IRBuilder) InsertBlock() *BasicBlock {
	return bd.ip.Block
}

// CreateBasicBlock appends a new, empty basic block to fn.
func (bd *IRBuilder) CreateBasicBlock(fn *Function) *BasicBlock {
	b := &BasicBlock{parent: fn}
	b.name = fmt.Sprintf("bb%d", len(fn.Blocks))
	fn.Blocks = append(fn.Blocks, b)
	return b
}

func (bd *IRBuilder) append(inst *Instr) *Instr {
	inst.parent = bd.ip.Block
	bd.ip.Block.Instrs = append(bd.ip.Block.Instrs, inst)
	return inst
}

// CreateAlloca creates a stack allocation of allocTy at the current insert
// point (use Function.CreateAlloca instead for the entry-block convention
// spec §4.9 mandates for locals).
func (bd *IRBuilder) CreateAlloca(allocTy Type) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.PointerTy()}, Op: OpAlloca, AllocTy: allocTy}
	return bd.append(inst)
}

// CreateLoad loads through ptr.
func (bd *IRBuilder) CreateLoad(resultTy Type, ptr Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: resultTy}, Op: OpLoad}
	inst.appendOperand(ptr)
	return bd.append(inst)
}

// CreateStoreInstr stores val through ptr.
func (bd *IRBuilder) CreateStoreInstr(val, ptr Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.VoidTy()}, Op: OpStore}
	inst.appendOperand(val)
	inst.appendOperand(ptr)
	return bd.append(inst)
}

// CreateReturnInstr returns val (or no value for a void return).
func (bd *IRBuilder) CreateReturnInstr(val Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.VoidTy()}, Op: OpRet}
	if val != nil {
		inst.appendOperand(val)
	}
	return bd.append(inst)
}

// CreateBr creates an unconditional branch to target.
func (bd *IRBuilder) CreateBr(target *BasicBlock) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.VoidTy()}, Op: OpBr, Successors: []*BasicBlock{target}}
	return bd.append(inst)
}

// CreateCondBr branches to thenBB if cond is nonzero, else elseBB.
func (bd *IRBuilder) CreateCondBr(cond Value, thenBB, elseBB *BasicBlock) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.VoidTy()}, Op: OpCondBr, Successors: []*BasicBlock{thenBB, elseBB}}
	inst.appendOperand(cond)
	return bd.append(inst)
}

// CreateBinOp creates an arithmetic instruction (op must be one of
// OpAdd/OpSub/OpMul/OpDiv/OpMod).
func (bd *IRBuilder) CreateBinOp(op Opcode, lhs, rhs Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: lhs.Type()}, Op: op}
	inst.appendOperand(lhs)
	inst.appendOperand(rhs)
	return bd.append(inst)
}

// CreateICmp creates an integer comparison producing i1.
func (bd *IRBuilder) CreateICmp(pred CmpPredicate, lhs, rhs Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.Int1Ty()}, Op: OpICmp, Pred: pred}
	inst.appendOperand(lhs)
	inst.appendOperand(rhs)
	return bd.append(inst)
}

// CreateCall creates a call to callee with the given arguments.
func (bd *IRBuilder) CreateCall(callee *Function, args []Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: callee.FuncTy.Ret}, Op: OpCall, Callee: callee}
	for _, a := range args {
		inst.appendOperand(a)
	}
	return bd.append(inst)
}

// CreateCast converts val to targetTy.
func (bd *IRBuilder) CreateCast(targetTy Type, val Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: targetTy}, Op: OpCast, TargetTy: targetTy}
	inst.appendOperand(val)
	return bd.append(inst)
}

// CreateGEP computes a pointer to field fieldIndex of the struct type
// structTy, based off ptr.
func (bd *IRBuilder) CreateGEP(structTy *StructType, ptr Value, fieldIndex int) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.PointerTy()}, Op: OpGEP, AllocTy: structTy, FieldIndex: fieldIndex}
	inst.appendOperand(ptr)
	return bd.append(inst)
}

// CreateDynamicGEP computes a pointer to the index'th element addressed by
// ptr (array-element access, as opposed to CreateGEP's static struct-field
// access). FieldIndex is set to -1 to mark the dynamic form.
func (bd *IRBuilder) CreateDynamicGEP(ptr, index Value) *Instr {
	inst := &Instr{valueBase: valueBase{typ: bd.ctx.PointerTy()}, Op: OpGEP, FieldIndex: -1}
	inst.appendOperand(ptr)
	inst.appendOperand(index)
	return bd.append(inst)
}
