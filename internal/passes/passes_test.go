package passes

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/passmgr"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
	"github.com/joos1w/joosc/pkg/tir"
)

// fixedProvider is the test double for ASTProvider: a canned list of
// compilation units, standing in for the external parse-tree producer.
type fixedProvider struct{ cus []*ast.CompilationUnit }

func (f fixedProvider) CompilationUnits() ([]*ast.CompilationUnit, error) { return f.cus, nil }

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

// buildPipeline wires every pass spec §2's data flow lists in dependency
// order and returns the manager along with the passes a test wants to
// inspect afterward.
func buildPipeline(t *testing.T, cus []*ast.CompilationUnit) (*passmgr.Manager, *diag.Engine, *CodeGen, *AsmWriter, *bytes.Buffer) {
	t.Helper()
	d := diag.New()
	pm := passmgr.NewManager(d)

	linker := NewLinker(fixedProvider{cus: cus})
	resolvePass := NewResolve()
	hierarchyPass := NewHierarchy()
	exprResolvePass := NewExprResolve()
	ctx := tir.NewContext()
	codeGenPass := NewCodeGen(ctx, "test-unit")
	var out bytes.Buffer
	asmPass := NewAsmWriter(&out)

	pm.AddPass(linker)
	pm.AddPass(resolvePass)
	pm.AddPass(hierarchyPass)
	pm.AddPass(exprResolvePass)
	pm.AddPass(codeGenPass)
	pm.AddPass(asmPass)

	pm.Enable(asmPass.Name())
	return pm, d, codeGenPass, asmPass, &out
}

func TestPipelineRunsEveryPassInDependencyOrder(t *testing.T) {
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

	pm, d, codeGenPass, _, out := buildPipeline(t, []*ast.CompilationUnit{cuFor(cls)})

	if err := pm.Run(); err != nil {
		t.Fatalf("Run() returned error: %v (diagnostics: %+v)", err, d.Records())
	}
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}

	unit := codeGenPass.Unit()
	if unit == nil {
		t.Fatal("codegen pass produced no TIR compilation unit")
	}
	if unit.FindFunction("_JFC3FooE3barEi") == nil {
		t.Fatalf("expected a lowered Foo.bar function, got: %s", unit.String())
	}
	if !strings.Contains(out.String(), "_JFC3FooE3barEi") {
		t.Fatalf("asm-writer output missing Foo.bar:\n%s", out.String())
	}
}

func TestPipelineEnableOnlyAsmWriterPropagatesEveryDependency(t *testing.T) {
	cls := ast.NewClassDecl("Empty", "Empty", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}

	pm, d, _, asmPass, _ := buildPipeline(t, []*ast.CompilationUnit{cuFor(cls)})
	_ = asmPass

	if err := pm.Run(); err != nil {
		t.Fatalf("Run() returned error: %v (diagnostics: %+v)", err, d.Records())
	}
}

func TestMangleNamesTablePopulatedAfterHierarchy(t *testing.T) {
	cls := ast.NewClassDecl("Foo", "Foo", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}
	m := ast.NewMethodDecl("bar", "Foo.bar", cls, source.Range{})
	m.ReturnType = intType()
	m.Body = &ast.BlockStmt{}
	cls.Methods = []*ast.MethodDecl{m}

	d := diag.New()
	pm := passmgr.NewManager(d)
	linker := NewLinker(fixedProvider{cus: []*ast.CompilationUnit{cuFor(cls)}})
	resolvePass := NewResolve()
	hierarchyPass := NewHierarchy()
	manglePass := NewMangleNames()

	pm.AddPass(linker)
	pm.AddPass(resolvePass)
	pm.AddPass(hierarchyPass)
	pm.AddPass(manglePass)
	pm.Enable(manglePass.Name())

	if err := pm.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	table := manglePass.Table()
	if got := table[m]; got != "_JFC3FooE3barEi" {
		t.Fatalf("mangled name = %q, want _JFC3FooE3barEi", got)
	}
}
