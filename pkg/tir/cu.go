package tir

import (
	"fmt"
	"strings"
)

// CompilationUnit is the TIR output of the core's code generation pass: an
// ordered list of global variables and functions (spec §3).
type CompilationUnit struct {
	ctx       *Context
	Name      string
	Globals   []*GlobalVariable
	Functions []*Function
}

// NewCompilationUnit returns an empty TIR compilation unit backed by ctx.
func NewCompilationUnit(ctx *Context, name string) *CompilationUnit {
	return &CompilationUnit{ctx: ctx, Name: name}
}

// CreateGlobalVariable allocates a new global of type ty (a PointerType to
// the variable's declared type) named name.
func (cu *CompilationUnit) CreateGlobalVariable(ty Type, name string) *GlobalVariable {
	gv := &GlobalVariable{valueBase: valueBase{typ: cu.ctx.PointerTy(), name: name}}
	_ = ty // declared type is carried by the caller's typeMap; the global's own Type() is always Pointer
	cu.Globals = append(cu.Globals, gv)
	return gv
}

// CreateFunction declares a new function of type funcTy named name, with
// one Argument value per parameter.
func (cu *CompilationUnit) CreateFunction(funcTy *FunctionType, name string) *Function {
	fn := &Function{valueBase: valueBase{typ: cu.ctx.PointerTy(), name: name}, FuncTy: funcTy}
	fn.Args = make([]*Argument, len(funcTy.Params))
	for i, pt := range funcTy.Params {
		fn.Args[i] = &Argument{valueBase: valueBase{typ: pt}, Index: i, Parent: fn}
	}
	cu.Functions = append(cu.Functions, fn)
	return fn
}

// FindFunction returns the function named name, or nil.
func (cu *CompilationUnit) FindFunction(name string) *Function {
	for _, f := range cu.Functions {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// String renders cu as human-readable assembly-like text — the asm-writer
// pass's output format (spec §6: "serialized as a human-readable
// assembly-like text when the asm-writer pass is enabled"; the exact format
// is explicitly not part of the core's contract, so this is one reasonable
// rendering, not a stable wire format).
func (cu *CompilationUnit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; compilation unit %s\n", cu.Name)
	for _, g := range cu.Globals {
		fmt.Fprintf(&b, "@%s = global ptr\n", g.Name())
	}
	for _, fn := range cu.Functions {
		writeFunction(&b, fn)
	}
	return b.String()
}

func writeFunction(b *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		params[i] = fmt.Sprintf("%s %%%d", a.Type(), a.Index)
	}
	fmt.Fprintf(b, "define %s @%s(%s) {\n", fn.FuncTy.Ret, fn.Name(), strings.Join(params, ", "))
	for i, blk := range fn.Blocks {
		fmt.Fprintf(b, "bb%d:\n", i)
		for _, inst := range blk.Instrs {
			fmt.Fprintf(b, "  %s\n", renderInstr(inst))
		}
	}
	fmt.Fprintf(b, "}\n")
}

func renderInstr(i *Instr) string {
	name := i.Name()
	if name == "" {
		name = "%v"
	}
	switch i.Op {
	case OpAlloca:
		return fmt.Sprintf("%s = alloca %s", name, i.AllocTy)
	case OpLoad:
		return fmt.Sprintf("%s = load %s, %s", name, i.Type(), operandRef(i.Operand(0)))
	case OpStore:
		return fmt.Sprintf("store %s, %s", operandRef(i.Operand(0)), operandRef(i.Operand(1)))
	case OpRet:
		if i.NumOperands() == 0 {
			return "ret void"
		}
		return fmt.Sprintf("ret %s", operandRef(i.Operand(0)))
	case OpBr:
		return fmt.Sprintf("br label %%%s", i.Successors[0].Name())
	case OpCondBr:
		return fmt.Sprintf("br %s, label %%%s, label %%%s", operandRef(i.Operand(0)), i.Successors[0].Name(), i.Successors[1].Name())
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpAnd, OpOr:
		return fmt.Sprintf("%s = %s %s, %s", name, opcodeMnemonic(i.Op), operandRef(i.Operand(0)), operandRef(i.Operand(1)))
	case OpICmp:
		return fmt.Sprintf("%s = icmp %s %s, %s", name, predMnemonic(i.Pred), operandRef(i.Operand(0)), operandRef(i.Operand(1)))
	case OpCall:
		args := make([]string, i.NumOperands())
		for j := range args {
			args[j] = operandRef(i.Operand(j))
		}
		return fmt.Sprintf("%s = call %s @%s(%s)", name, i.Type(), i.Callee.Name(), strings.Join(args, ", "))
	case OpCast:
		return fmt.Sprintf("%s = cast %s to %s", name, operandRef(i.Operand(0)), i.TargetTy)
	case OpGEP:
		if i.FieldIndex == -1 {
			return fmt.Sprintf("%s = gep %s, %s", name, operandRef(i.Operand(0)), operandRef(i.Operand(1)))
		}
		return fmt.Sprintf("%s = gep %s, %s, %d", name, i.AllocTy, operandRef(i.Operand(0)), i.FieldIndex)
	default:
		return "unknown"
	}
}

func operandRef(v Value) string {
	if v == nil {
		return "<nil>"
	}
	if v.Name() != "" {
		return fmt.Sprintf("%s %%%s", v.Type(), v.Name())
	}
	if c, ok := v.(*Constant); ok {
		return fmt.Sprintf("%s %d", c.Type(), c.IntVal)
	}
	return v.Type().String()
}

func opcodeMnemonic(op Opcode) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "sdiv"
	case OpMod:
		return "srem"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

func predMnemonic(p CmpPredicate) string {
	switch p {
	case CmpEQ:
		return "eq"
	case CmpNE:
		return "ne"
	case CmpLT:
		return "slt"
	case CmpLE:
		return "sle"
	case CmpGT:
		return "sgt"
	case CmpGE:
		return "sge"
	default:
		return "?"
	}
}
