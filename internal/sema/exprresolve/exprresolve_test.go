package exprresolve

import (
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/sema/resolve"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

func intType() ast.Type { return &ast.BuiltInType{Kind: ast.BuiltInInt} }

func newResolverFor(cus ...*ast.CompilationUnit) (*Resolver, *resolve.Resolver, *diag.Engine) {
	d := diag.New()
	nr := resolve.New(d)
	for _, cu := range cus {
		nr.AddCompilationUnit(cu)
	}
	return New(d, nr), nr, d
}

func cuFor(pkg []string, body ast.Decl) *ast.CompilationUnit {
	return ast.NewCompilationUnit(source.FileId{}, pkg, nil, body, source.Range{})
}

func TestResolveLocalVariableReference(t *testing.T) {
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", cls, source.Range{})}
	m := ast.NewMethodDecl("bar", "Foo.bar", cls, source.Range{})
	local := ast.NewVarDecl("x", intType(), m, source.Range{})
	m.Locals = []*ast.VarDecl{local}
	ref := &ast.MemberName{Name: "x"}
	m.Body = &ast.BlockStmt{}
	_ = m.Body
	m.Locals[0].Init = nil
	exprStmt := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{ref})}
	body := ast.NewBlockStmt(m, source.Range{})
	body.Statements = []ast.Statement{exprStmt}
	m.Body = body
	cls.Methods = []*ast.MethodDecl{m}

	cu := cuFor(nil, cls)
	r, _, d := newResolverFor(cu)
	r.ResolveCompilationUnit(cu)

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if ref.Class != ast.NameExpression || ref.Resolved != local {
		t.Fatalf("ref = %+v, want resolved to local %v", ref, local)
	}
}

func TestResolveFieldAccessChain(t *testing.T) {
	inner := ast.NewClassDecl("Inner", "Inner", nil, source.Range{})
	inner.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", inner, source.Range{})}
	valueField := ast.NewFieldDecl("value", "Inner.value", intType(), inner, source.Range{})
	inner.Fields = []*ast.FieldDecl{valueField}

	innerRef := &ast.ReferenceType{Resolved: inner}
	outer := ast.NewClassDecl("Outer", "Outer", nil, source.Range{})
	outer.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", outer, source.Range{})}
	innerField := ast.NewFieldDecl("inner", "Outer.inner", innerRef, outer, source.Range{})
	outer.Fields = []*ast.FieldDecl{innerField}

	m := ast.NewMethodDecl("bar", "Outer.bar", outer, source.Range{})
	outerName := &ast.MemberName{Name: "inner"}
	fieldName := &ast.MemberName{Name: "value"}
	access := &ast.MemberAccess{}
	exprStmt := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{outerName, fieldName, access})}
	body := ast.NewBlockStmt(m, source.Range{})
	body.Statements = []ast.Statement{exprStmt}
	m.Body = body
	outer.Methods = []*ast.MethodDecl{m}

	cu := cuFor(nil, outer)
	r, _, d := newResolverFor(cu)
	r.ResolveCompilationUnit(cu)

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if outerName.Resolved != innerField {
		t.Fatalf("outerName.Resolved = %v, want %v", outerName.Resolved, innerField)
	}
	if fieldName.Resolved != valueField {
		t.Fatalf("fieldName.Resolved = %v, want %v", fieldName.Resolved, valueField)
	}
}

func TestResolveStaticFieldAccessCutsQualifier(t *testing.T) {
	util := ast.NewClassDecl("Util", "Util", nil, source.Range{})
	util.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", util, source.Range{})}
	staticField := ast.NewFieldDecl("COUNT", "Util.COUNT", intType(), util, source.Range{})
	staticField.Modifiers.Static = true
	util.Fields = []*ast.FieldDecl{staticField}

	utilCU := cuFor(nil, util)

	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	user.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", user, source.Range{})}
	m := ast.NewMethodDecl("bar", "User.bar", user, source.Range{})
	typeName := &ast.MemberName{Name: "Util"}
	fieldName := &ast.MemberName{Name: "COUNT"}
	access := &ast.MemberAccess{}
	exprStmt := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{typeName, fieldName, access})}
	m.Body = &ast.BlockStmt{Statements: []ast.Statement{exprStmt}}
	user.Methods = []*ast.MethodDecl{m}
	userCU := cuFor(nil, user)

	r, _, d := newResolverFor(utilCU, userCU)
	r.ResolveCompilationUnit(userCU)

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if fieldName.Resolved != staticField {
		t.Fatalf("fieldName.Resolved = %v, want %v", fieldName.Resolved, staticField)
	}
}

func TestResolveUnknownNameReportsError(t *testing.T) {
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", cls, source.Range{})}
	m := ast.NewMethodDecl("bar", "Foo.bar", cls, source.Range{})
	ref := &ast.MemberName{Name: "nope"}
	exprStmt := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{ref})}
	m.Body = &ast.BlockStmt{Statements: []ast.Statement{exprStmt}}
	cls.Methods = []*ast.MethodDecl{m}

	cu := cuFor(nil, cls)
	r, _, d := newResolverFor(cu)
	r.ResolveCompilationUnit(cu)

	if !d.HasErrors() {
		t.Fatalf("expected an unresolved-name diagnostic")
	}
}

func TestResolveMethodCallSetsReceiver(t *testing.T) {
	callee := ast.NewClassDecl("Callee", "Callee", nil, source.Range{})
	callee.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", callee, source.Range{})}
	greet := ast.NewMethodDecl("greet", "Callee.greet", callee, source.Range{})
	callee.Methods = []*ast.MethodDecl{greet}
	calleeCU := cuFor(nil, callee)

	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	user.Constructors = []*ast.MethodDecl{ast.NewMethodDecl("<init>", "init", user, source.Range{})}
	m := ast.NewMethodDecl("bar", "User.bar", user, source.Range{})
	local := ast.NewVarDecl("c", &ast.ReferenceType{Resolved: callee}, m, source.Range{})
	m.Locals = []*ast.VarDecl{local}

	recvName := &ast.MemberName{Name: "c"}
	methodName := &ast.MethodName{Name: "greet"}
	access := &ast.MemberAccess{}
	call := &ast.MethodInvocation{Nargs: 1}
	exprStmt := &ast.ExprStmt{Expr: ast.NewExprNodeList([]ast.ExprNode{recvName, methodName, access, call})}
	body := ast.NewBlockStmt(m, source.Range{})
	body.Statements = []ast.Statement{exprStmt}
	m.Body = body
	user.Methods = []*ast.MethodDecl{m}
	userCU := cuFor(nil, user)

	r, _, d := newResolverFor(calleeCU, userCU)
	r.ResolveCompilationUnit(userCU)

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if methodName.Receiver == nil || methodName.Receiver.Resolved != local {
		t.Fatalf("methodName.Receiver = %+v, want resolved to local %v", methodName.Receiver, local)
	}
}
