package mangle

import (
	"testing"

	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

// TestFunctionNameSpecExample reproduces spec §8 scenario 5: static int
// Foo.bar(int, String) with canonical name "Foo.bar" mangles to
// "_JF3FooE3barEiiS".
func TestFunctionNameSpecExample(t *testing.T) {
	rng := source.Range{}
	parent := ast.NewClassDecl("Foo", "Foo", nil, rng)
	decl := ast.NewMethodDecl("bar", "Foo.bar", parent, rng)
	decl.Modifiers = ast.Modifiers{Visibility: ast.VisibilityPublic, Static: true}
	decl.ReturnType = &ast.BuiltInType{Kind: ast.BuiltInInt}
	decl.Parameters = []*ast.Parameter{
		ast.NewParameter("x", &ast.BuiltInType{Kind: ast.BuiltInInt}, decl, rng),
		ast.NewParameter("s", &ast.BuiltInType{Kind: ast.BuiltInString}, decl, rng),
	}

	got := FunctionName(decl, JavaLang{})
	want := "_JF3FooE3barEiiS"
	if got != want {
		t.Fatalf("FunctionName() = %q, want %q", got, want)
	}
}

func TestFunctionNameInstanceMethodGetsCPrefix(t *testing.T) {
	rng := source.Range{}
	parent := ast.NewClassDecl("Foo", "Foo", nil, rng)
	decl := ast.NewMethodDecl("baz", "Foo.baz", parent, rng)
	decl.Modifiers = ast.Modifiers{Visibility: ast.VisibilityPublic}
	decl.ReturnType = &ast.BuiltInType{Kind: ast.BuiltInVoid}

	got := FunctionName(decl, JavaLang{})
	want := "_JFC3FooE3bazEv"
	if got != want {
		t.Fatalf("FunctionName() = %q, want %q", got, want)
	}
}

func TestCanonicalNameSegmentsEachTerminated(t *testing.T) {
	if got, want := CanonicalName("Foo.bar"), "3FooE3barE"; got != want {
		t.Fatalf("CanonicalName() = %q, want %q", got, want)
	}
	if got, want := CanonicalName("org.example.MyClass"), "3orgE7exampleE7MyClassE"; got != want {
		t.Fatalf("CanonicalName() = %q, want %q", got, want)
	}
}

func TestTypeReferenceUsesJavaLangShortcuts(t *testing.T) {
	objDecl := ast.NewClassDecl("Object", "java.lang.Object", nil, source.Range{})
	jl := JavaLang{ObjectCanonical: "java.lang.Object", StringCanonical: "java.lang.String"}

	ref := &ast.ReferenceType{Resolved: objDecl}
	if got := Type(ref, jl); got != "O" {
		t.Fatalf("Type(Object ref) = %q, want %q", got, "O")
	}

	other := ast.NewClassDecl("Widget", "org.example.Widget", nil, source.Range{})
	ref2 := &ast.ReferenceType{Resolved: other}
	if got, want := Type(ref2, jl), "R3orgE7exampleE6WidgetE"; got != want {
		t.Fatalf("Type(other ref) = %q, want %q", got, want)
	}
}
