package passes

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

// TestAsmWriterSnapshot pins the asm-writer's TIR assembly text for a small
// fixed class, the same way the teacher snapshots interpreter output with
// go-snaps rather than hand-written golden strings.
func TestAsmWriterSnapshot(t *testing.T) {
	cls := ast.NewClassDecl("Counter", "Counter", nil, source.Range{})
	cls.Constructors = []*ast.MethodDecl{ctor(cls)}
	m := ast.NewMethodDecl("next", "Counter.next", cls, source.Range{})
	m.ReturnType = intType()
	m.Body = &ast.BlockStmt{
		Statements: []ast.Statement{
			&ast.ReturnStmt{Value: ast.NewExprNodeList([]ast.ExprNode{&ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(1)}})},
		},
	}
	cls.Methods = []*ast.MethodDecl{m}

	pm, d, _, _, out := buildPipeline(t, []*ast.CompilationUnit{cuFor(cls)})

	if err := pm.Run(); err != nil {
		t.Fatalf("Run() returned error: %v (diagnostics: %+v)", err, d.Records())
	}
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", d.Records())
	}

	snaps.MatchSnapshot(t, out.String())
}
