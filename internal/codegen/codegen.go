// Package codegen implements the Code Generator (C9): a two-phase AST → TIR
// lowering over the linking unit (declaration phase, then definition
// phase), driven through the same generic ast.Evaluator[T] the Expression
// Resolver uses, here instantiated with T = tir.Value (spec §4.9: "Expression
// lowering uses the same RPN evaluator with output type TIR Value*"). It is
// grounded on original_source/lib/codegen/{CGClass,CGFunction,CodeGen}.cc
// for the declaration/definition split and statement-lowering shape, and on
// spec §12 items 1-2 for the instance-method and reference/String lowering
// this core adds beyond the original's static-only, TODO-stubbed version.
package codegen

import (
	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/mangle"
	"github.com/joos1w/joosc/internal/sema/hierarchy"
	"github.com/joos1w/joosc/internal/sema/resolve"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
	"github.com/joos1w/joosc/pkg/tir"
)

// sentinelValue is embedded by every evaluator-internal stand-in value
// (methodRef, fieldRef, typeRef, arrayRef) so each satisfies tir.Value
// without participating in any instruction's real operand/user graph; each
// is consumed by its paired EvalX hook before a genuine tir.Value is ever
// produced in its place.
type sentinelValue struct{}

func (sentinelValue) Type() tir.Type               { return nil }
func (sentinelValue) Name() string                 { return "" }
func (sentinelValue) SetName(string)               {}
func (sentinelValue) Uses() []tir.Use              { return nil }
func (sentinelValue) ReplaceAllUsesWith(tir.Value) {}

// methodRef is what MapValue produces for a *ast.MethodName leaf: the
// generic evaluator pops it whole into EvalMethodCall, which resolves the
// real callee and receiver from it.
type methodRef struct {
	sentinelValue
	node *ast.MethodName
}

// fieldRef is what MapValue produces for a MemberName bound to a
// non-static FieldDecl: the field itself cannot be loaded until
// EvalMemberAccess supplies the receiver pointer.
type fieldRef struct {
	sentinelValue
	decl *ast.FieldDecl
}

// typeRef is what MapValue produces for a *ast.TypeNode: a type operand
// destined for EvalCast/EvalNewObject/EvalNewArray.
type typeRef struct {
	sentinelValue
	t ast.Type
}

// arrayRef is what MapValue produces for an array-typed name: the pointer
// to the array's Struct{length,data} storage, plus the element type
// EvalArrayAccess needs to size its load.
type arrayRef struct {
	sentinelValue
	ptr    tir.Value
	elemTy ast.Type
}

// Generator is the Code Generator. One Generator lowers an entire linking
// unit (every compilation unit the Name Resolver has accumulated) into one
// tir.CompilationUnit.
type Generator struct {
	ctx      *tir.Context
	resolver *resolve.Resolver
	hier     *hierarchy.Checker
	diag     *diag.Engine
	jl       mangle.JavaLang

	tirCU *tir.CompilationUnit
	bld   *tir.IRBuilder

	gvMap      map[ast.Decl]tir.Value        // FieldDecl(static) -> *GlobalVariable, MethodDecl -> *Function
	typeMap    map[*ast.ClassDecl]*tir.StructType
	fieldIndex map[*ast.FieldDecl]int
	valueMap   map[ast.Decl]tir.Value // locals/params -> alloca pointer, within the method currently being defined

	curFn    *tir.Function
	curClass *ast.ClassDecl // enclosing class of the method currently being defined
	curPos   source.Range   // position used for diagnostics raised mid-lowering
	thisVal  tir.Value      // current method's implicit receiver, nil in a static method

	eval ast.Evaluator[tir.Value]
}

// New returns a Generator backed by ctx's type interning and resolver's/
// hier's already-resolved, hierarchy-checked compilation units.
func New(diagEngine *diag.Engine, resolver *resolve.Resolver, hier *hierarchy.Checker, ctx *tir.Context) *Generator {
	g := &Generator{
		ctx:        ctx,
		resolver:   resolver,
		hier:       hier,
		diag:       diagEngine,
		gvMap:      make(map[ast.Decl]tir.Value),
		typeMap:    make(map[*ast.ClassDecl]*tir.StructType),
		fieldIndex: make(map[*ast.FieldDecl]int),
		bld:        tir.NewIRBuilder(ctx),
	}
	jl := resolver.GetJavaLang()
	if jl.Object != nil {
		g.jl.ObjectCanonical = jl.Object.CanonicalName()
	}
	if jl.String != nil {
		g.jl.StringCanonical = jl.String.CanonicalName()
	}
	g.eval = ast.Evaluator[tir.Value]{
		MapValue:         g.mapValue,
		EvalUnary:        g.evalUnary,
		EvalBinary:       g.evalBinary,
		EvalMemberAccess: g.evalMemberAccess,
		EvalMethodCall:   g.evalMethodCall,
		EvalNewObject:    g.evalNewObject,
		EvalNewArray:     g.evalNewArray,
		EvalArrayAccess:  g.evalArrayAccess,
		EvalCast:         g.evalCast,
	}
	return g
}

// Generate lowers every compilation unit the resolver has accumulated into
// a TIR CompilationUnit named unitName (spec §4.9's declaration phase then
// definition phase, each a single pass over every class).
func (g *Generator) Generate(unitName string) *tir.CompilationUnit {
	g.tirCU = tir.NewCompilationUnit(g.ctx, unitName)
	cus := g.resolver.CompilationUnits()

	for _, cu := range cus {
		if cls, ok := cu.Body.(*ast.ClassDecl); ok {
			g.buildClassType(cls)
		}
	}
	for _, cu := range cus {
		g.declarePhase(cu)
	}
	for _, cu := range cus {
		g.definePhase(cu)
	}
	return g.tirCU
}

// buildClassType assembles decl's struct type as the superclass chain's
// fields followed by decl's own non-static fields, in declared order
// (single-inheritance field layout: a subclass struct is its superclass
// struct's fields as a prefix, so a value statically typed as an ancestor
// can GEP into it using the ancestor's own field indices). Per spec §4.9,
// the struct is only created "if non-empty" — a fieldless class keeps no
// typeMap entry and its instances lower to an opaque byte allocation (spec
// §12 item 2).
func (g *Generator) buildClassType(decl *ast.ClassDecl) *tir.StructType {
	if st, done := g.typeMap[decl]; done {
		return st
	}
	g.typeMap[decl] = nil // break cycles defensively; the hierarchy checker already rejects real ones

	var fieldTys []tir.Type
	if decl.SuperClass != nil {
		if super, ok := decl.SuperClass.Resolved.(*ast.ClassDecl); ok {
			if superSt := g.buildClassType(super); superSt != nil {
				fieldTys = append(fieldTys, superSt.Fields...)
			}
		}
	}
	for _, f := range decl.Fields {
		if f.Modifiers.Static {
			continue
		}
		g.fieldIndex[f] = len(fieldTys)
		fieldTys = append(fieldTys, g.lowerType(f.Type))
	}
	if len(fieldTys) == 0 {
		return nil
	}
	st := g.ctx.StructTy(fieldTys)
	g.typeMap[decl] = st
	return st
}

// declarePhase emits function declarations for every method (static and
// instance alike, per spec §12 item 1) and allocates globals for static
// fields.
func (g *Generator) declarePhase(cu *ast.CompilationUnit) {
	decl, ok := cu.Body.(*ast.ClassDecl)
	if !ok {
		return
	}
	for _, f := range decl.Fields {
		if !f.Modifiers.Static {
			continue
		}
		gv := g.tirCU.CreateGlobalVariable(g.lowerType(f.Type), mangle.CanonicalName(f.CanonicalName()))
		g.gvMap[f] = gv
	}
	for _, m := range decl.AllMethods() {
		g.declareFunction(m)
	}
}

func (g *Generator) declareFunction(m *ast.MethodDecl) {
	retTy := g.lowerType(m.ReturnType)
	var params []tir.Type
	if !m.Modifiers.Static {
		params = append(params, g.ctx.PointerTy()) // implicit `this`, spec §12 item 1
	}
	for _, p := range m.Parameters {
		params = append(params, g.lowerType(p.Type))
	}
	fnTy := g.ctx.FunctionTy(retTy, params)
	fn := g.tirCU.CreateFunction(fnTy, mangle.FunctionName(m, g.jl))
	g.gvMap[m] = fn
}

// definePhase lowers every method with a real body (spec §3: "body
// (absent iff abstract or native)").
func (g *Generator) definePhase(cu *ast.CompilationUnit) {
	decl, ok := cu.Body.(*ast.ClassDecl)
	if !ok {
		return
	}
	for _, m := range decl.AllMethods() {
		if !m.HasBody() {
			continue
		}
		g.defineMethod(m)
	}
}

func (g *Generator) defineMethod(m *ast.MethodDecl) {
	fn := g.gvMap[m].(*tir.Function)
	g.curFn = fn
	g.curClass, _ = m.Parent().(*ast.ClassDecl)
	g.curPos = m.Pos()
	g.valueMap = make(map[ast.Decl]tir.Value)

	entry := g.bld.CreateBasicBlock(fn)
	g.bld.SetInsertPoint(entry)

	argIdx := 0
	if !m.Modifiers.Static {
		g.thisVal = fn.Args[0]
		argIdx = 1
	} else {
		g.thisVal = nil
	}
	for i, p := range m.Parameters {
		alloca := fn.CreateAlloca(g.ctx, g.lowerType(p.Type))
		g.bld.CreateStoreInstr(fn.Args[argIdx+i], alloca)
		g.valueMap[p] = alloca
	}
	// Every local's storage is allocated at function entry (spec §4.9);
	// its initializer, if any, is evaluated and stored when the DeclStmt
	// that declares it is lowered, not hoisted here.
	for _, local := range m.Locals {
		g.valueMap[local] = fn.CreateAlloca(g.ctx, g.lowerType(local.Type))
	}

	if m.Body != nil {
		g.lowerStmt(m.Body)
	}
	if g.bld.InsertBlock().Terminator() == nil {
		g.bld.CreateReturnInstr(nil)
	}
}

// lowerStmt lowers one statement, following spec §4.9's per-kind rules.
func (g *Generator) lowerStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		for _, inner := range st.Statements {
			g.lowerStmt(inner)
		}
	case *ast.DeclStmt:
		if st.Var.Init != nil {
			val := g.materialize(g.eval.Evaluate(st.Var.Init))
			g.bld.CreateStoreInstr(val, g.valueMap[st.Var])
		}
	case *ast.ExprStmt:
		g.eval.Evaluate(st.Expr)
	case *ast.IfStmt:
		g.lowerIf(st)
	case *ast.WhileStmt:
		g.lowerWhile(st)
	case *ast.ForStmt:
		g.lowerFor(st)
	case *ast.ReturnStmt:
		if st.Value != nil {
			g.bld.CreateReturnInstr(g.materialize(g.eval.Evaluate(st.Value)))
		} else {
			g.bld.CreateReturnInstr(nil)
		}
	case *ast.NullStmt:
		// no-op
	}
}

func (g *Generator) lowerIf(st *ast.IfStmt) {
	cond := g.materialize(g.eval.Evaluate(st.Cond))
	thenBB := g.bld.CreateBasicBlock(g.curFn)
	mergeBB := g.bld.CreateBasicBlock(g.curFn)
	elseBB := mergeBB
	if st.Else != nil {
		elseBB = g.bld.CreateBasicBlock(g.curFn)
	}
	g.bld.CreateCondBr(cond, thenBB, elseBB)

	g.bld.SetInsertPoint(thenBB)
	g.lowerStmt(st.Then)
	if g.bld.InsertBlock().Terminator() == nil {
		g.bld.CreateBr(mergeBB)
	}
	if st.Else != nil {
		g.bld.SetInsertPoint(elseBB)
		g.lowerStmt(st.Else)
		if g.bld.InsertBlock().Terminator() == nil {
			g.bld.CreateBr(mergeBB)
		}
	}
	g.bld.SetInsertPoint(mergeBB)
}

func (g *Generator) lowerWhile(st *ast.WhileStmt) {
	condBB := g.bld.CreateBasicBlock(g.curFn)
	bodyBB := g.bld.CreateBasicBlock(g.curFn)
	mergeBB := g.bld.CreateBasicBlock(g.curFn)

	g.bld.CreateBr(condBB)
	g.bld.SetInsertPoint(condBB)
	cond := g.materialize(g.eval.Evaluate(st.Cond))
	g.bld.CreateCondBr(cond, bodyBB, mergeBB)

	g.bld.SetInsertPoint(bodyBB)
	g.lowerStmt(st.Body)
	if g.bld.InsertBlock().Terminator() == nil {
		g.bld.CreateBr(condBB)
	}
	g.bld.SetInsertPoint(mergeBB)
}

// lowerFor follows spec §4.9's explicit ordering: init -> condition-block
// -> body -> update -> back-edge.
func (g *Generator) lowerFor(st *ast.ForStmt) {
	if st.Init != nil {
		g.lowerStmt(st.Init)
	}
	condBB := g.bld.CreateBasicBlock(g.curFn)
	bodyBB := g.bld.CreateBasicBlock(g.curFn)
	updateBB := g.bld.CreateBasicBlock(g.curFn)
	mergeBB := g.bld.CreateBasicBlock(g.curFn)

	g.bld.CreateBr(condBB)
	g.bld.SetInsertPoint(condBB)
	if st.Cond != nil {
		cond := g.materialize(g.eval.Evaluate(st.Cond))
		g.bld.CreateCondBr(cond, bodyBB, mergeBB)
	} else {
		g.bld.CreateBr(bodyBB)
	}

	g.bld.SetInsertPoint(bodyBB)
	g.lowerStmt(st.Body)
	if g.bld.InsertBlock().Terminator() == nil {
		g.bld.CreateBr(updateBB)
	}

	g.bld.SetInsertPoint(updateBB)
	if st.Update != nil {
		g.eval.Evaluate(st.Update)
	}
	g.bld.CreateBr(condBB)

	g.bld.SetInsertPoint(mergeBB)
}
