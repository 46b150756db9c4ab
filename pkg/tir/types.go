// Package tir implements the Typed Intermediate Representation (C8): a
// value-centric, SSA-ish IR with def/use tracking, function/basic-block
// structure, and a Context that interns types. It is grounded on
// original_source/lib/tir/{Types,Value}.cc for the conceptual shape (type
// interning, user back-references) since the teacher's own internal/bytecode
// package is a stack-based VM rather than a def/use IR; its doc-comment
// texture (one-line "does X" + Format/Stack diagrams on internal/bytecode's
// OpCode constants) is borrowed for the Instr opcode documentation in
// instruction.go.
package tir

import (
	"fmt"
	"strings"
)

// Type is the common interface for every TIR type variant: Void,
// Integer(bits), Pointer, Array{len,elem}, Struct{fields}, Function{ret,
// params}. All instances are owned and interned by a Context; two types
// obtained from the same Context are pointer-equal iff they are
// structurally equal (spec §8: "Type::getInt32Ty(ctx) == Type::getInt32Ty(ctx)").
type Type interface {
	fmt.Stringer
	typeNode()
}

// VoidType is the type of a function with no return value.
type VoidType struct{}

func (*VoidType) typeNode()      {}
func (*VoidType) String() string { return "void" }

// IntegerType is uniqued by bit width alone.
type IntegerType struct{ Bits int }

func (*IntegerType) typeNode()      {}
func (t *IntegerType) String() string { return fmt.Sprintf("i%d", t.Bits) }

// PointerType is an opaque pointer (the core does not track pointee types
// beyond what StructType/ArrayType lowering already encodes structurally).
type PointerType struct{}

func (*PointerType) typeNode()      {}
func (*PointerType) String() string { return "ptr" }

// ArrayType is a fixed-length array of Elem, used by the Code Generator's
// array lowering: Struct{i32 length, Pointer data} is built separately
// (see codegen); this ArrayType exists for TIR-level constant arrays.
type ArrayType struct {
	Len  int
	Elem Type
}

func (*ArrayType) typeNode() {}
func (t *ArrayType) String() string {
	return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
}

// StructType is an ordered tuple of field types, structurally uniqued.
type StructType struct {
	Fields []Type
}

func (*StructType) typeNode() {}
func (t *StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionType is a function signature: return type plus ordered parameter
// types.
type FunctionType struct {
	Ret    Type
	Params []Type
}

func (*FunctionType) typeNode() {}
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s (%s)", t.Ret, strings.Join(parts, ", "))
}

// Context owns every interned Type for a single compiler run. It is
// process-wide within that run (spec §5); mutation is confined to the code
// generation pass.
type Context struct {
	voidTy    *VoidType
	intTys    map[int]*IntegerType
	ptrTy     *PointerType
	arrayTys  []*ArrayType
	structTys []*StructType
	funcTys   []*FunctionType
}

// NewContext returns a fresh, empty type-interning context.
func NewContext() *Context {
	return &Context{intTys: make(map[int]*IntegerType)}
}

// VoidTy returns the (unique) void type.
func (c *Context) VoidTy() *VoidType {
	if c.voidTy == nil {
		c.voidTy = &VoidType{}
	}
	return c.voidTy
}

// IntTy returns the integer type of the given bit width, uniqued by width.
func (c *Context) IntTy(bits int) *IntegerType {
	if t, ok := c.intTys[bits]; ok {
		return t
	}
	t := &IntegerType{Bits: bits}
	c.intTys[bits] = t
	return t
}

func (c *Context) Int1Ty() *IntegerType  { return c.IntTy(1) }
func (c *Context) Int8Ty() *IntegerType  { return c.IntTy(8) }
func (c *Context) Int16Ty() *IntegerType { return c.IntTy(16) }
func (c *Context) Int32Ty() *IntegerType { return c.IntTy(32) }

// PointerTy returns the (unique) opaque pointer type.
func (c *Context) PointerTy() *PointerType {
	if c.ptrTy == nil {
		c.ptrTy = &PointerType{}
	}
	return c.ptrTy
}

// ArrayTy returns the array type {len, elem}, uniqued structurally.
func (c *Context) ArrayTy(length int, elem Type) *ArrayType {
	for _, t := range c.arrayTys {
		if t.Len == length && t.Elem == elem {
			return t
		}
	}
	t := &ArrayType{Len: length, Elem: elem}
	c.arrayTys = append(c.arrayTys, t)
	return t
}

// StructTy returns the struct type over fields, uniqued structurally (field
// slice contents compared by interned-pointer equality).
func (c *Context) StructTy(fields []Type) *StructType {
outer:
	for _, t := range c.structTys {
		if len(t.Fields) != len(fields) {
			continue
		}
		for i := range fields {
			if t.Fields[i] != fields[i] {
				continue outer
			}
		}
		return t
	}
	cp := append([]Type(nil), fields...)
	t := &StructType{Fields: cp}
	c.structTys = append(c.structTys, t)
	return t
}

// FunctionTy returns the function type (ret, params), uniqued structurally.
func (c *Context) FunctionTy(ret Type, params []Type) *FunctionType {
outer:
	for _, t := range c.funcTys {
		if t.Ret != ret || len(t.Params) != len(params) {
			continue
		}
		for i := range params {
			if t.Params[i] != params[i] {
				continue outer
			}
		}
		return t
	}
	cp := append([]Type(nil), params...)
	t := &FunctionType{Ret: ret, Params: cp}
	c.funcTys = append(c.funcTys, t)
	return t
}
