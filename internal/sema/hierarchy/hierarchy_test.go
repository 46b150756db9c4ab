package hierarchy

import (
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/sema/resolve"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

func method(name, canonical string, parent ast.DeclContext, mods ast.Modifiers, ret ast.Type, params ...*ast.Parameter) *ast.MethodDecl {
	m := ast.NewMethodDecl(name, canonical, parent, source.Range{})
	m.Modifiers = mods
	m.ReturnType = ret
	m.Parameters = params
	return m
}

func ctor(parent ast.DeclContext) *ast.MethodDecl {
	m := ast.NewMethodDecl("<init>", "init", parent, source.Range{})
	m.IsConstructor = true
	return m
}

func intType() ast.Type { return &ast.BuiltInType{Kind: ast.BuiltInInt} }

func newCheckerWith(cus ...*ast.CompilationUnit) (*Checker, *diag.Engine) {
	d := diag.New()
	r := resolve.New(d)
	for _, cu := range cus {
		r.AddCompilationUnit(cu)
	}
	return New(d, r), d
}

func cuFor(decl ast.Decl) *ast.CompilationUnit {
	return ast.NewCompilationUnit(source.FileId{}, nil, nil, decl, source.Range{})
}

func TestCheckDetectsInheritanceCycle(t *testing.T) {
	a := ast.NewClassDecl("A", "A", nil, source.Range{})
	b := ast.NewClassDecl("B", "B", nil, source.Range{})
	a.Constructors = []*ast.MethodDecl{ctor(a)}
	b.Constructors = []*ast.MethodDecl{ctor(b)}
	a.SuperClass = &ast.ReferenceType{Resolved: b}
	b.SuperClass = &ast.ReferenceType{Resolved: a}

	c, d := newCheckerWith(cuFor(a), cuFor(b))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected a cycle diagnostic")
	}
}

func TestCheckFlagsMissingConstructor(t *testing.T) {
	a := ast.NewClassDecl("A", "A", nil, source.Range{})
	c, d := newCheckerWith(cuFor(a))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected a missing-constructor diagnostic")
	}
}

func TestCheckFlagsFinalOverride(t *testing.T) {
	base := ast.NewClassDecl("Base", "Base", nil, source.Range{})
	base.Constructors = []*ast.MethodDecl{ctor(base)}
	finalMethod := method("foo", "Base.foo", base, ast.Modifiers{Final: true}, nil)
	base.Methods = []*ast.MethodDecl{finalMethod}

	sub := ast.NewClassDecl("Sub", "Sub", nil, source.Range{})
	sub.Constructors = []*ast.MethodDecl{ctor(sub)}
	sub.SuperClass = &ast.ReferenceType{Resolved: base}
	sub.Methods = []*ast.MethodDecl{method("foo", "Sub.foo", sub, ast.Modifiers{}, nil)}

	c, d := newCheckerWith(cuFor(base), cuFor(sub))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected a final-override diagnostic")
	}
}

func TestCheckFlagsVisibilityNarrowing(t *testing.T) {
	base := ast.NewClassDecl("Base", "Base", nil, source.Range{})
	base.Constructors = []*ast.MethodDecl{ctor(base)}
	base.Methods = []*ast.MethodDecl{method("foo", "Base.foo", base, ast.Modifiers{Visibility: ast.VisibilityPublic}, nil)}

	sub := ast.NewClassDecl("Sub", "Sub", nil, source.Range{})
	sub.Constructors = []*ast.MethodDecl{ctor(sub)}
	sub.SuperClass = &ast.ReferenceType{Resolved: base}
	sub.Methods = []*ast.MethodDecl{method("foo", "Sub.foo", sub, ast.Modifiers{Visibility: ast.VisibilityProtected}, nil)}

	c, d := newCheckerWith(cuFor(base), cuFor(sub))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected a visibility-narrowing diagnostic")
	}
}

func TestCheckFlagsUnimplementedAbstractMethod(t *testing.T) {
	base := ast.NewClassDecl("Base", "Base", nil, source.Range{})
	base.Modifiers.Abstract = true
	base.Constructors = []*ast.MethodDecl{ctor(base)}
	base.Methods = []*ast.MethodDecl{method("foo", "Base.foo", base, ast.Modifiers{Abstract: true}, nil)}

	sub := ast.NewClassDecl("Sub", "Sub", nil, source.Range{})
	sub.Constructors = []*ast.MethodDecl{ctor(sub)}
	sub.SuperClass = &ast.ReferenceType{Resolved: base}

	c, d := newCheckerWith(cuFor(base), cuFor(sub))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected an unimplemented-abstract-method diagnostic")
	}
}

func TestCheckAcceptsValidOverride(t *testing.T) {
	base := ast.NewClassDecl("Base", "Base", nil, source.Range{})
	base.Modifiers.Abstract = true
	base.Constructors = []*ast.MethodDecl{ctor(base)}
	base.Methods = []*ast.MethodDecl{method("foo", "Base.foo", base, ast.Modifiers{Abstract: true, Visibility: ast.VisibilityProtected}, intType())}

	sub := ast.NewClassDecl("Sub", "Sub", nil, source.Range{})
	sub.Constructors = []*ast.MethodDecl{ctor(sub)}
	sub.SuperClass = &ast.ReferenceType{Resolved: base}
	sub.Methods = []*ast.MethodDecl{method("foo", "Sub.foo", sub, ast.Modifiers{Visibility: ast.VisibilityPublic}, intType())}

	c, d := newCheckerWith(cuFor(base), cuFor(sub))
	c.Check()

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
}

func TestCheckFlagsConflictingInterfaceSignatures(t *testing.T) {
	iface := ast.NewInterfaceDecl("I", "I", nil, source.Range{})
	iface.Methods = []*ast.MethodDecl{
		method("foo", "I.foo", iface, ast.Modifiers{}, intType()),
		method("foo", "I.foo2", iface, ast.Modifiers{}, &ast.BuiltInType{Kind: ast.BuiltInBoolean}),
	}

	c, d := newCheckerWith(cuFor(iface))
	c.Check()

	if !d.HasErrors() {
		t.Fatalf("expected a conflicting-signature diagnostic")
	}
}

func TestLookupInheritedFindsAncestorField(t *testing.T) {
	base := ast.NewClassDecl("Base", "Base", nil, source.Range{})
	base.Constructors = []*ast.MethodDecl{ctor(base)}
	field := ast.NewFieldDecl("x", "Base.x", intType(), base, source.Range{})
	base.Fields = []*ast.FieldDecl{field}

	sub := ast.NewClassDecl("Sub", "Sub", nil, source.Range{})
	sub.Constructors = []*ast.MethodDecl{ctor(sub)}
	sub.SuperClass = &ast.ReferenceType{Resolved: base}

	c, _ := newCheckerWith(cuFor(base), cuFor(sub))
	c.Check()

	if got := c.LookupInherited(sub, "x"); got != field {
		t.Fatalf("LookupInherited(x) = %v, want %v", got, field)
	}
}
