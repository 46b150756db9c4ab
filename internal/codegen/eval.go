package codegen

import (
	"github.com/joos1w/joosc/pkg/ast"
	"github.com/joos1w/joosc/pkg/tir"
)

// arrayStructTy is the {length, data} layout every array reference lowers
// to (spec §12 item 2: arrays have no dedicated TIR type, so the Code
// Generator builds this struct shape itself, the same way it builds a
// class's instance struct).
func (g *Generator) arrayStructTy() *tir.StructType {
	return g.ctx.StructTy([]tir.Type{g.ctx.Int32Ty(), g.ctx.PointerTy()})
}

// materialize turns a deferred sentinel (fieldRef, arrayRef) into the plain
// tir.Value a real operand position needs: a fieldRef loads through the
// implicit receiver (this, or no receiver at all for a static field) since
// reaching here means it was never consumed by EvalMemberAccess; an
// arrayRef unwraps to its backing pointer. Any other value passes through
// unchanged.
func (g *Generator) materialize(v tir.Value) tir.Value {
	switch sv := v.(type) {
	case fieldRef:
		return g.loadField(sv.decl, nil)
	case arrayRef:
		return sv.ptr
	default:
		return v
	}
}

// lowerType maps an ast.Type to its TIR representation (spec §4.9's type
// lowering table): primitives to fixed-width integers, String/array/
// reference types to an opaque pointer (their real shape, Struct{length,
// data} or a class's field struct, only matters at the allocation/access
// sites the Code Generator itself controls).
func (g *Generator) lowerType(t ast.Type) tir.Type {
	switch v := t.(type) {
	case nil:
		return g.ctx.VoidTy()
	case *ast.BuiltInType:
		switch v.Kind {
		case ast.BuiltInBoolean:
			return g.ctx.Int1Ty()
		case ast.BuiltInByte:
			return g.ctx.Int8Ty()
		case ast.BuiltInChar, ast.BuiltInShort:
			return g.ctx.Int16Ty()
		case ast.BuiltInInt:
			return g.ctx.Int32Ty()
		case ast.BuiltInString:
			return g.ctx.PointerTy()
		default:
			return g.ctx.VoidTy()
		}
	case *ast.ArrayType, *ast.ReferenceType, *ast.UnresolvedType:
		return g.ctx.PointerTy()
	default:
		return g.ctx.PointerTy()
	}
}

func (g *Generator) lowerLiteral(n *ast.LiteralNode) tir.Value {
	switch n.LiteralKind {
	case ast.LiteralInt:
		val, _ := n.Value.(int64)
		return tir.NewIntConstant(g.ctx.Int32Ty(), val)
	case ast.LiteralBoolean:
		b, _ := n.Value.(bool)
		var iv int64
		if b {
			iv = 1
		}
		return tir.NewIntConstant(g.ctx.Int1Ty(), iv)
	case ast.LiteralChar:
		cv, _ := n.Value.(int64)
		return tir.NewIntConstant(g.ctx.Int16Ty(), cv)
	default:
		// String and null literals carry no backing storage in core scope
		// (spec §12 item 2); both lower to a null pointer.
		return tir.NewNullConstant(g.ctx)
	}
}

// valueThroughPointer loads t's value from ptr, wrapping the result as an
// arrayRef (rather than a bare pointer) when t is an array type, so a later
// EvalArrayAccess still has the element type it needs.
func (g *Generator) valueThroughPointer(t ast.Type, ptr tir.Value) tir.Value {
	if at, ok := t.(*ast.ArrayType); ok {
		loaded := g.bld.CreateLoad(g.ctx.PointerTy(), ptr)
		return arrayRef{ptr: loaded, elemTy: at.Element}
	}
	return g.bld.CreateLoad(g.lowerType(t), ptr)
}

// loadField reads fd's current value. recv is the already-materialized
// receiver pointer for an instance field, or nil to mean "use this
// implicitly" (a bare field reference that was never a MemberAccess's
// field operand); recv is also ignored for a static field.
func (g *Generator) loadField(fd *ast.FieldDecl, recv tir.Value) tir.Value {
	if fd.Modifiers.Static {
		gv := g.gvMap[fd].(*tir.GlobalVariable)
		return g.valueThroughPointer(fd.Type, gv)
	}
	base := recv
	if base == nil {
		base = g.thisVal
	}
	cls, _ := fd.Parent().(*ast.ClassDecl)
	idx, ok := g.fieldIndex[fd]
	if !ok || cls == nil {
		return tir.NewNullConstant(g.ctx)
	}
	gep := g.bld.CreateGEP(g.typeMap[cls], base, idx)
	return g.valueThroughPointer(fd.Type, gep)
}

// mapValue is the Code Generator's MapValue hook (spec §4.9's
// Evaluator[Value] leaf case): literals lower immediately, a MemberName
// resolves to its runtime value (or is deferred as a fieldRef when it is an
// instance field, since the eventual receiver might be an explicit
// qualifier EvalMemberAccess hasn't combined yet), `this` is the current
// receiver, a MethodName/TypeNode defer entirely to the hook that consumes
// them.
func (g *Generator) mapValue(node ast.ExprNode) tir.Value {
	switch n := node.(type) {
	case *ast.LiteralNode:
		return g.lowerLiteral(n)
	case *ast.MemberName:
		switch d := n.Resolved.(type) {
		case *ast.Parameter:
			return g.valueThroughPointer(d.Type, g.valueMap[d])
		case *ast.VarDecl:
			return g.valueThroughPointer(d.Type, g.valueMap[d])
		case *ast.FieldDecl:
			if d.Modifiers.Static {
				return g.loadField(d, nil)
			}
			return fieldRef{decl: d}
		case *ast.ClassDecl:
			return g.thisVal
		default:
			return tir.NewNullConstant(g.ctx)
		}
	case *ast.MethodName:
		return methodRef{node: n}
	case *ast.ThisNode:
		return g.thisVal
	case *ast.TypeNode:
		return typeRef{t: n.Typ}
	default:
		return tir.NewNullConstant(g.ctx)
	}
}

func (g *Generator) evalUnary(op ast.UnaryOperator, x tir.Value) tir.Value {
	v := g.materialize(x)
	switch op {
	case ast.OpNeg:
		zero := tir.NewIntConstant(intTypeOf(v, g.ctx), 0)
		return g.bld.CreateBinOp(tir.OpSub, zero, v)
	case ast.OpNot:
		zero := tir.NewIntConstant(g.ctx.Int1Ty(), 0)
		return g.bld.CreateICmp(tir.CmpEQ, v, zero)
	default:
		return v
	}
}

func intTypeOf(v tir.Value, ctx *tir.Context) *tir.IntegerType {
	if it, ok := v.Type().(*tir.IntegerType); ok {
		return it
	}
	return ctx.Int32Ty()
}

func (g *Generator) evalBinary(op ast.BinaryOperator, lhs, rhs tir.Value) tir.Value {
	l := g.materialize(lhs)
	r := g.materialize(rhs)
	switch op {
	case ast.OpAdd:
		return g.bld.CreateBinOp(tir.OpAdd, l, r)
	case ast.OpSub:
		return g.bld.CreateBinOp(tir.OpSub, l, r)
	case ast.OpMul:
		return g.bld.CreateBinOp(tir.OpMul, l, r)
	case ast.OpDiv:
		return g.bld.CreateBinOp(tir.OpDiv, l, r)
	case ast.OpMod:
		return g.bld.CreateBinOp(tir.OpMod, l, r)
	case ast.OpLogicalAnd:
		return g.bld.CreateBinOp(tir.OpAnd, l, r)
	case ast.OpLogicalOr:
		return g.bld.CreateBinOp(tir.OpOr, l, r)
	case ast.OpEq:
		return g.bld.CreateICmp(tir.CmpEQ, l, r)
	case ast.OpNe:
		return g.bld.CreateICmp(tir.CmpNE, l, r)
	case ast.OpLt:
		return g.bld.CreateICmp(tir.CmpLT, l, r)
	case ast.OpLe:
		return g.bld.CreateICmp(tir.CmpLE, l, r)
	case ast.OpGt:
		return g.bld.CreateICmp(tir.CmpGT, l, r)
	case ast.OpGe:
		return g.bld.CreateICmp(tir.CmpGE, l, r)
	default:
		return l
	}
}

// evalMemberAccess combines an already-resolved receiver with a deferred
// field reference, per spec §4.9's member-access lowering.
func (g *Generator) evalMemberAccess(recv, field tir.Value) tir.Value {
	fr, ok := field.(fieldRef)
	if !ok {
		g.diag.ReportError(g.curPos, "malformed member access in lowered expression")
		return tir.NewNullConstant(g.ctx)
	}
	base := g.materialize(recv)
	return g.loadField(fr.decl, base)
}

// selectMethod looks up the method named name reachable from cls (own
// members first, then inherited), the simplified single-candidate
// resolution this core performs in place of full overload resolution
// (spec §12 item 1 leaves method-call lowering to be implemented; this
// core's Expression Resolver performs no overload resolution, see
// exprresolve.MethodName.Resolved, so the Code Generator matches purely by
// simple name).
func (g *Generator) selectMethod(cls ast.Decl, name string) *ast.MethodDecl {
	if cls == nil {
		return nil
	}
	ctx, ok := cls.(ast.DeclContext)
	if !ok {
		return nil
	}
	if d := ctx.LookupDecl(name); d != nil {
		if md, ok := d.(*ast.MethodDecl); ok {
			return md
		}
	}
	if d := g.hier.LookupInherited(cls, name); d != nil {
		if md, ok := d.(*ast.MethodDecl); ok {
			return md
		}
	}
	return nil
}

func declaredTypeOf(decl ast.Decl) ast.Type {
	switch d := decl.(type) {
	case *ast.VarDecl:
		return d.Type
	case *ast.Parameter:
		return d.Type
	case *ast.FieldDecl:
		return d.Type
	default:
		return nil
	}
}

// evalMethodCall resolves the callee and receiver a deferred methodRef
// names, then emits the call (spec §4.9's method-invocation lowering).
func (g *Generator) evalMethodCall(method tir.Value, args []tir.Value) tir.Value {
	mr, ok := method.(methodRef)
	if !ok {
		g.diag.ReportError(g.curPos, "malformed method call in lowered expression")
		return tir.NewNullConstant(g.ctx)
	}
	mn := mr.node

	var recvClass ast.Decl
	var recvVal tir.Value
	switch {
	case mn.Receiver == nil:
		recvClass = g.curClass
		recvVal = g.thisVal
	default:
		rcv := mn.Receiver
		if cls, ok := rcv.Resolved.(*ast.ClassDecl); ok {
			recvClass = cls
			if rcv.Class == ast.NameExpression {
				recvVal = g.thisVal // `this` used as an explicit qualifier
			}
		} else {
			recvClass = g.resolver.GetTypeAsClass(declaredTypeOf(rcv.Resolved))
			recvVal = g.materialize(g.mapValue(rcv))
		}
	}

	md := g.selectMethod(recvClass, mn.Name)
	if md == nil {
		g.diag.ReportError(g.curPos, "cannot resolve method %s for call lowering", mn.Name)
		return tir.NewNullConstant(g.ctx)
	}
	fn, ok := g.gvMap[md].(*tir.Function)
	if !ok {
		g.diag.ReportError(g.curPos, "method %s has no compiled body reachable for this call", mn.Name)
		return tir.NewNullConstant(g.ctx)
	}

	var callArgs []tir.Value
	if !md.Modifiers.Static {
		callArgs = append(callArgs, recvVal)
	}
	for _, a := range args {
		callArgs = append(callArgs, g.materialize(a))
	}
	return g.bld.CreateCall(fn, callArgs)
}

// selectConstructor picks decl's constructor with nargs parameters,
// falling back to its first declared constructor (every class has at
// least one, per the hierarchy checker's checkClassConstructors) when no
// arity matches — a type-correct program never takes that fallback.
func (g *Generator) selectConstructor(decl *ast.ClassDecl, nargs int) *ast.MethodDecl {
	for _, c := range decl.Constructors {
		if len(c.Parameters) == nargs {
			return c
		}
	}
	if len(decl.Constructors) > 0 {
		return decl.Constructors[0]
	}
	return nil
}

// evalNewObject allocates instance storage and calls the matching
// constructor (spec §4.9/§12 item 2: object creation has no heap in core
// scope, so an instance's storage is a stack allocation in the
// constructing function, sized to its class's field struct, or a single
// opaque byte for a fieldless class).
func (g *Generator) evalNewObject(typ tir.Value, args []tir.Value) tir.Value {
	tr, ok := typ.(typeRef)
	if !ok {
		return tir.NewNullConstant(g.ctx)
	}
	ref, ok := tr.t.(*ast.ReferenceType)
	if !ok {
		g.diag.ReportError(g.curPos, "new expression names a non-reference type")
		return tir.NewNullConstant(g.ctx)
	}
	cls, ok := ref.Resolved.(*ast.ClassDecl)
	if !ok {
		g.diag.ReportError(g.curPos, "new expression names a non-class type")
		return tir.NewNullConstant(g.ctx)
	}

	st := g.buildClassType(cls)
	var allocTy tir.Type = st
	if allocTy == nil {
		allocTy = g.ctx.Int8Ty()
	}
	objPtr := g.curFn.CreateAlloca(g.ctx, allocTy)

	ctor := g.selectConstructor(cls, len(args))
	if ctor == nil {
		return objPtr
	}
	fn, ok := g.gvMap[ctor].(*tir.Function)
	if !ok {
		return objPtr
	}
	callArgs := append([]tir.Value{objPtr}, materializeAll(g, args)...)
	g.bld.CreateCall(fn, callArgs)
	return objPtr
}

func materializeAll(g *Generator, vals []tir.Value) []tir.Value {
	out := make([]tir.Value, len(vals))
	for i, v := range vals {
		out[i] = g.materialize(v)
	}
	return out
}

// evalNewArray builds a {length, data} array instance (spec §12 item 2: no
// backing element-storage allocator in core scope, so data is stored as a
// null pointer placeholder — a type-correct program that only declares and
// passes arrays around, without the parser/allocator support this core
// doesn't build, never dereferences it).
func (g *Generator) evalNewArray(elemType, size tir.Value) tir.Value {
	tr, ok := elemType.(typeRef)
	if !ok {
		return tir.NewNullConstant(g.ctx)
	}
	sizeVal := g.materialize(size)

	arrTy := g.arrayStructTy()
	arrPtr := g.curFn.CreateAlloca(g.ctx, arrTy)
	lenPtr := g.bld.CreateGEP(arrTy, arrPtr, 0)
	g.bld.CreateStoreInstr(sizeVal, lenPtr)
	dataPtr := g.bld.CreateGEP(arrTy, arrPtr, 1)
	g.bld.CreateStoreInstr(tir.NewNullConstant(g.ctx), dataPtr)

	return arrayRef{ptr: arrPtr, elemTy: tr.t}
}

// evalArrayAccess indexes into an array's data pointer (spec §4.9's array
// access lowering), using CreateDynamicGEP's runtime-index form.
func (g *Generator) evalArrayAccess(array, index tir.Value) tir.Value {
	ar, ok := array.(arrayRef)
	if !ok {
		g.diag.ReportError(g.curPos, "array access on a non-array lowered value")
		return tir.NewNullConstant(g.ctx)
	}
	idx := g.materialize(index)

	arrTy := g.arrayStructTy()
	dataPtrSlot := g.bld.CreateGEP(arrTy, ar.ptr, 1)
	dataPtr := g.bld.CreateLoad(g.ctx.PointerTy(), dataPtrSlot)
	elemPtr := g.bld.CreateDynamicGEP(dataPtr, idx)
	return g.valueThroughPointer(ar.elemTy, elemPtr)
}

// evalCast converts value to typ's lowered representation (spec §4.9's
// cast lowering; the core performs no runtime class-cast check, matching
// its single-pass, no-exceptions execution model, spec §5).
func (g *Generator) evalCast(typ, value tir.Value) tir.Value {
	tr, ok := typ.(typeRef)
	if !ok {
		return g.materialize(value)
	}
	v := g.materialize(value)
	return g.bld.CreateCast(g.lowerType(tr.t), v)
}
