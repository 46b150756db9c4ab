package codegen

import (
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/sema/hierarchy"
	"github.com/joos1w/joosc/internal/sema/resolve"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
	"github.com/joos1w/joosc/pkg/tir"
)

func intType() ast.Type { return &ast.BuiltInType{Kind: ast.BuiltInInt} }

func cuFor(decl ast.Decl) *ast.CompilationUnit {
	return ast.NewCompilationUnit(source.FileId{}, nil, nil, decl, source.Range{})
}

func ctor(parent ast.DeclContext) *ast.MethodDecl {
	m := ast.NewMethodDecl("<init>", "init", parent, source.Range{})
	m.IsConstructor = true
	m.Body = &ast.BlockStmt{}
	return m
}

// newGenerator wires a Generator the way a real pipeline would: resolve
// types, check the hierarchy, then hand both to the Code Generator, mirroring
// the pass ordering spec §2 mandates (Name Resolver -> Hierarchy Checker ->
// Code Generator).
func newGenerator(cus ...*ast.CompilationUnit) (*Generator, *diag.Engine) {
	d := diag.New()
	nr := resolve.New(d)
	for _, cu := range cus {
		nr.AddCompilationUnit(cu)
	}
	for _, cu := range cus {
		nr.ResolveTypes(cu)
	}
	hc := hierarchy.New(d, nr)
	hc.Check()
	return New(d, nr, hc, tir.NewContext()), d
}

func TestGenerateEmitsFunctionForEachMethod(t *testing.T) {
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}
	m := ast.NewMethodDecl("bar", "Foo.bar", cls, source.Range{})
	m.ReturnType = intType()
	m.Body = &ast.BlockStmt{
		Statements: []ast.Statement{
			&ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{&ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(42)}})},
		},
	}
	cls.Methods = []*ast.MethodDecl{m}

	g, d := newGenerator(cuFor(cls))
	tirCU := g.Generate("unit")

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if len(tirCU.Functions) != 2 {
		t.Fatalf("got %d functions, want 2 (ctor + bar)", len(tirCU.Functions))
	}
	fn := tirCU.FindFunction("_JFC3FooE3barEi")
	if fn == nil {
		for _, f := range tirCU.Functions {
			t.Logf("declared: %s", f.Name())
		}
		t.Fatalf("no function found for Foo.bar")
	}
	if len(fn.Blocks) == 0 {
		t.Fatalf("bar has no basic blocks")
	}
	last := fn.Blocks[len(fn.Blocks)-1]
	if term := last.Terminator(); term == nil || term.Op != tir.OpRet {
		t.Fatalf("bar's last block is not ret-terminated: %+v", last.Instrs)
	}
}

func TestGenerateFieldAccessLoadsAndAdds(t *testing.T) {
	cls := ast.NewClassDecl("Counter", "Counter", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}
	field := ast.NewFieldDecl("value", "Counter.value", intType(), cls, source.Range{})
	cls.Fields = []*ast.FieldDecl{field}

	m := ast.NewMethodDecl("bump", "Counter.bump", cls, source.Range{})
	fieldRefName := &ast.MemberName{Name: "value", Class: ast.NameExpression, Resolved: field}
	lit := &ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(1)}
	assign := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{fieldRefName, lit, &ast.BinaryOp{Op: ast.OpAdd}})}
	m.Body = &ast.BlockStmt{Statements: []ast.Statement{assign}}
	cls.Methods = []*ast.MethodDecl{m}

	g, d := newGenerator(cuFor(cls))
	tirCU := g.Generate("unit")

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	fn := tirCU.FindFunction("_JFC7CounterE4bumpEv")
	if fn == nil {
		t.Fatalf("no function found for Counter.bump")
	}
	var sawGEP, sawAdd bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == tir.OpGEP {
				sawGEP = true
			}
			if instr.Op == tir.OpAdd {
				sawAdd = true
			}
		}
	}
	if !sawGEP {
		t.Fatalf("expected a GEP addressing the instance field")
	}
	if !sawAdd {
		t.Fatalf("expected an add combining the field load with the literal")
	}
}

func TestGenerateNewObjectAllocatesAndCallsConstructor(t *testing.T) {
	callee := ast.NewClassDecl("Widget", "Widget", nil, source.Range{})
	calleeCtor := ctor(callee)
	callee.Constructors = []*ast.MethodDecl{calleeCtor}
	f := ast.NewFieldDecl("id", "Widget.id", intType(), callee, source.Range{})
	callee.Fields = []*ast.FieldDecl{f}

	user := ast.NewClassDecl("Factory", "Factory", nil, source.Range{})
	user.Constructors = []*ast.MethodDecl{ctor(user)}
	m := ast.NewMethodDecl("make", "Factory.make", user, source.Range{})
	m.ReturnType = &ast.ReferenceType{Resolved: callee}
	typeNode := &ast.TypeNode{Typ: &ast.ReferenceType{Resolved: callee}}
	create := &ast.ClassInstanceCreation{Nargs: 0}
	m.Body = &ast.BlockStmt{
		Statements: []ast.Statement{
			&ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{typeNode, create})},
		},
	}
	user.Methods = []*ast.MethodDecl{m}

	g, d := newGenerator(cuFor(callee), cuFor(user))
	tirCU := g.Generate("unit")

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	fn := tirCU.FindFunction("_JFC7FactoryE4makeER6WidgetE")
	if fn == nil {
		t.Fatalf("no function found for Factory.make")
	}
	var sawAlloca, sawCall bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == tir.OpAlloca {
				sawAlloca = true
			}
			if instr.Op == tir.OpCall && instr.Callee == g.gvMap[calleeCtor] {
				sawCall = true
			}
		}
	}
	if !sawAlloca {
		t.Fatalf("expected a stack allocation for the new instance")
	}
	if !sawCall {
		t.Fatalf("expected a call to Widget's constructor")
	}
}

func TestGenerateMethodCallOnLocalReceiver(t *testing.T) {
	callee := ast.NewClassDecl("Callee", "Callee", nil, source.Range{})
	callee.Constructors = []*ast.MethodDecl{ctor(callee)}
	greet := ast.NewMethodDecl("greet", "Callee.greet", callee, source.Range{})
	greet.ReturnType = intType()
	greet.Body = &ast.BlockStmt{
		Statements: []ast.Statement{
			&ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{&ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(7)}})},
		},
	}
	callee.Methods = []*ast.MethodDecl{greet}

	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	user.Constructors = []*ast.MethodDecl{ctor(user)}
	m := ast.NewMethodDecl("bar", "User.bar", user, source.Range{})
	param := ast.NewParameter("c", &ast.ReferenceType{Resolved: callee}, m, source.Range{})
	m.Parameters = []*ast.Parameter{param}

	recvName := &ast.MemberName{Name: "c", Class: ast.NameExpression, Resolved: param}
	methodName := &ast.MethodName{Name: "greet", Receiver: recvName}
	call := &ast.MethodInvocation{Nargs: 1}
	m.Body = &ast.BlockStmt{
		Statements: []ast.Statement{
			&ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{methodName, call})},
		},
	}
	user.Methods = []*ast.MethodDecl{m}

	g, d := newGenerator(cuFor(callee), cuFor(user))
	tirCU := g.Generate("unit")

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	fn := tirCU.FindFunction("_JFC4UserE3barEvR6CalleeE")
	if fn == nil {
		t.Fatalf("no function found for User.bar")
	}
	var call_ *tir.Instr
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == tir.OpCall {
				call_ = instr
			}
		}
	}
	if call_ == nil {
		t.Fatalf("expected a call instruction lowering greet()")
	}
	if call_.Callee != tirCU.FindFunction("_JFC6CalleeE5greetEi") {
		t.Fatalf("call targets %v, want Callee.greet", call_.Callee)
	}
	if call_.NumOperands() != 1 {
		t.Fatalf("got %d call operands, want 1 (the receiver)", call_.NumOperands())
	}
}

func TestGenerateIfLoweringProducesFourBlocks(t *testing.T) {
	cls := ast.NewClassDecl("Branchy", "Branchy", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}
	m := ast.NewMethodDecl("pick", "Branchy.pick", cls, source.Range{})
	m.ReturnType = intType()
	cond := &ast.LiteralNode{LiteralKind: ast.LiteralBoolean, Value: true}
	thenRet := &ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{&ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(1)}})}
	elseRet := &ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{&ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(2)}})}
	ifStmt := &ast.IfStmt{Cond: ast.NewExprNodeList([]ast.ExprNode{cond}), Then: thenRet, Else: elseRet}
	m.Body = &ast.BlockStmt{Statements: []ast.Statement{ifStmt}}
	cls.Methods = []*ast.MethodDecl{m}

	g, d := newGenerator(cuFor(cls))
	tirCU := g.Generate("unit")

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	fn := tirCU.FindFunction("_JFC7BranchyE4pickEi")
	if fn == nil {
		t.Fatalf("no function found for Branchy.pick")
	}
	// entry, then, else, merge
	if len(fn.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4 (entry/then/else/merge)", len(fn.Blocks))
	}
	entryTerm := fn.Blocks[0].Terminator()
	if entryTerm == nil || entryTerm.Op != tir.OpCondBr {
		t.Fatalf("entry block should end in a conditional branch, got %+v", entryTerm)
	}
}
