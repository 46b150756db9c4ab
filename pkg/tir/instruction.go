package tir

// Instruction is a Value that also has an ordered operand list and sits
// inside a BasicBlock. Operand mutation maintains user-set invariants:
// SetOperand(i, v) removes this instruction from the old operand's users
// and inserts it into the new operand's users (spec §4.8).
type Instruction interface {
	Value
	NumOperands() int
	Operand(i int) Value
	SetOperand(i int, v Value)
	Parent() *BasicBlock
}

// Opcode discriminates Instr's behavior. Each constant's doc comment
// follows the teacher's internal/bytecode/instruction.go convention: one
// line of purpose plus the operand/result shape, adapted from that
// package's stack-machine "Stack: [before] -> [after]" diagrams to this
// IR's operand-list shape.
type Opcode int

const (
	// OpAlloca reserves stack storage for AllocTy and produces a pointer
	// to it. Operands: none. Result type: Pointer.
	OpAlloca Opcode = iota
	// OpLoad reads through a pointer operand. Operands: [0]=pointer.
	// Result type: the loaded value's type.
	OpLoad
	// OpStore writes a value through a pointer operand. Operands:
	// [0]=value, [1]=pointer. Result type: Void.
	OpStore
	// OpRet returns from the enclosing function. Operands: [0]=value, or
	// none for a void return. Terminator.
	OpRet
	// OpBr is an unconditional branch. Successors: [0]=target. Terminator.
	OpBr
	// OpCondBr branches to Successors[0] if Operand(0) is nonzero,
	// otherwise Successors[1]. Terminator.
	OpCondBr
	// OpAdd/OpSub/OpMul/OpDiv/OpMod are binary integer arithmetic.
	// Operands: [0]=lhs, [1]=rhs. Result type: same as operands'.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	// OpAnd/OpOr are bitwise/logical binary ops over i1 or integer
	// operands (the subset language's &&/|| operators). Operands:
	// [0]=lhs, [1]=rhs. Result type: same as operands'.
	OpAnd
	OpOr
	// OpICmp compares two integers per Pred. Operands: [0]=lhs, [1]=rhs.
	// Result type: i1.
	OpICmp
	// OpCall invokes Callee. Operands: the call's arguments in order.
	// Result type: Callee's return type.
	OpCall
	// OpCast converts Operand(0) to TargetTy (truncation/extension between
	// integer widths, or a pointer bitcast). Result type: TargetTy.
	OpCast
	// OpGEP computes a pointer to a struct field, or, when FieldIndex is
	// -1, a dynamically indexed element (array access): Operands:
	// [0]=base pointer, and for the dynamic form [1]=index. FieldIndex
	// selects the field within AllocTy's struct layout in the static
	// form. Result type: Pointer.
	OpGEP
)

// CmpPredicate is OpICmp's comparison kind.
type CmpPredicate int

const (
	CmpEQ CmpPredicate = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

// Instr is the single concrete Instruction type; Opcode plus the auxiliary
// fields below (only the ones relevant to a given Opcode are populated)
// together describe every instruction kind spec §3 lists (alloca, load,
// store, return, branch, arithmetic, compare, call, cast,
// GEP-equivalent). A single tagged struct, rather than one Go type per
// opcode, mirrors the teacher's own single OpCode-tagged instruction
// encoding in internal/bytecode/instruction.go, adapted from a stack
// machine's flat byte encoding to this IR's operand-list shape.
type Instr struct {
	valueBase
	Op         Opcode
	operands   []Value
	parent     *BasicBlock
	Pred       CmpPredicate  // OpICmp
	Callee     *Function     // OpCall
	TargetTy   Type          // OpCast
	AllocTy    Type          // OpAlloca, OpGEP (the struct type being indexed)
	FieldIndex int           // OpGEP
	Successors []*BasicBlock // OpBr, OpCondBr
}

func (i *Instr) NumOperands() int   { return len(i.operands) }
func (i *Instr) Operand(idx int) Value { return i.operands[idx] }
func (i *Instr) Parent() *BasicBlock { return i.parent }

// SetOperand replaces operand idx, detaching this instruction from the old
// value's user set and attaching it to the new value's.
func (i *Instr) SetOperand(idx int, v Value) {
	old := i.operands[idx]
	if old != nil {
		if u, ok := old.(user); ok {
			u.removeUse(i, idx)
		}
	}
	i.operands[idx] = v
	if v != nil {
		if u, ok := v.(user); ok {
			u.addUse(i, idx)
		}
	}
}

// appendOperand adds v as the next operand, attaching the user back-edge.
func (i *Instr) appendOperand(v Value) {
	idx := len(i.operands)
	i.operands = append(i.operands, v)
	if v != nil {
		if u, ok := v.(user); ok {
			u.addUse(i, idx)
		}
	}
}

// IsTerminator reports whether i must be the last instruction of its block
// (spec §3: "exactly one terminator as the last element once built").
func (i *Instr) IsTerminator() bool {
	return i.Op == OpRet || i.Op == OpBr || i.Op == OpCondBr
}
