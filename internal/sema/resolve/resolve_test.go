package resolve

import (
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

func newCU(pkg []string, imports []ast.Import, body ast.Decl) *ast.CompilationUnit {
	return ast.NewCompilationUnit(source.FileId{}, pkg, imports, body, source.Range{})
}

func TestGetImportFindsOwnTopLevelType(t *testing.T) {
	r := New(diag.New())
	foo := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cu := newCU(nil, nil, foo)
	r.AddCompilationUnit(cu)

	imp := r.GetImport(cu, "Foo")
	if imp.Decl != foo {
		t.Fatalf("GetImport(Foo) = %+v, want own type", imp)
	}
}

func TestGetImportSingleTypeImport(t *testing.T) {
	r := New(diag.New())
	widget := ast.NewClassDecl("Widget", "org.example.Widget", nil, source.Range{})
	widgetCU := newCU([]string{"org", "example"}, nil, widget)
	r.AddCompilationUnit(widgetCU)

	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	userCU := newCU(nil, []ast.Import{{Qualified: []string{"org", "example", "Widget"}}}, user)
	r.AddCompilationUnit(userCU)

	imp := r.GetImport(userCU, "Widget")
	if imp.Decl != widget {
		t.Fatalf("GetImport(Widget) = %+v, want widget decl", imp)
	}
}

func TestGetImportSamePackage(t *testing.T) {
	r := New(diag.New())
	a := ast.NewClassDecl("A", "p.A", nil, source.Range{})
	b := ast.NewClassDecl("B", "p.B", nil, source.Range{})
	r.AddCompilationUnit(newCU([]string{"p"}, nil, a))
	bCU := newCU([]string{"p"}, nil, b)
	r.AddCompilationUnit(bCU)

	imp := r.GetImport(bCU, "A")
	if imp.Decl != a {
		t.Fatalf("GetImport(A) = %+v, want same-package sibling", imp)
	}
}

func TestGetImportOnDemandAmbiguous(t *testing.T) {
	r := New(diag.New())
	w1 := ast.NewClassDecl("Widget", "p1.Widget", nil, source.Range{})
	w2 := ast.NewClassDecl("Widget", "p2.Widget", nil, source.Range{})
	r.AddCompilationUnit(newCU([]string{"p1"}, nil, w1))
	r.AddCompilationUnit(newCU([]string{"p2"}, nil, w2))

	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	userCU := newCU(nil, []ast.Import{
		{Qualified: []string{"p1"}, OnDemand: true},
		{Qualified: []string{"p2"}, OnDemand: true},
	}, user)
	r.AddCompilationUnit(userCU)

	imp := r.GetImport(userCU, "Widget")
	if !imp.Ambiguous {
		t.Fatalf("GetImport(Widget) = %+v, want ambiguous", imp)
	}
}

func TestGetImportNotFound(t *testing.T) {
	r := New(diag.New())
	user := ast.NewClassDecl("User", "User", nil, source.Range{})
	userCU := newCU(nil, nil, user)
	r.AddCompilationUnit(userCU)

	if imp := r.GetImport(userCU, "Nope"); imp.Found() {
		t.Fatalf("GetImport(Nope) = %+v, want not found", imp)
	}
}

func TestGetTypeAsClassUnwrapsArrays(t *testing.T) {
	r := New(diag.New())
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	ref := &ast.ReferenceType{Resolved: cls}
	arr := &ast.ArrayType{Element: ref}

	if got := r.GetTypeAsClass(arr); got != cls {
		t.Fatalf("GetTypeAsClass(array) = %v, want %v", got, cls)
	}
	if got := r.GetTypeAsClass(&ast.BuiltInType{Kind: ast.BuiltInInt}); got != nil {
		t.Fatalf("GetTypeAsClass(int) = %v, want nil", got)
	}
}

func TestResolveTypesReportsUnresolvedSuperclass(t *testing.T) {
	d := diag.New()
	r := New(d)
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cls.SuperClass = &ast.ReferenceType{Identifier: []string{"Missing"}}
	cu := newCU(nil, nil, cls)
	r.AddCompilationUnit(cu)

	r.ResolveTypes(cu)

	if !d.HasErrors() {
		t.Fatalf("expected an unresolved-superclass diagnostic")
	}
}

func TestResolveTypesFillsFieldType(t *testing.T) {
	d := diag.New()
	r := New(d)
	widget := ast.NewClassDecl("Widget", "Widget", nil, source.Range{})
	widgetCU := newCU(nil, nil, widget)
	r.AddCompilationUnit(widgetCU)

	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	fieldType := &ast.ReferenceType{Identifier: []string{"Widget"}}
	cls.Fields = []*ast.FieldDecl{ast.NewFieldDecl("w", "Foo.w", fieldType, cls, source.Range{})}
	cu := newCU(nil, nil, cls)
	r.AddCompilationUnit(cu)

	r.ResolveTypes(cu)

	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}
	if fieldType.Resolved != widget {
		t.Fatalf("field type Resolved = %v, want %v", fieldType.Resolved, widget)
	}
}
