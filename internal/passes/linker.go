// Package passes provides the concrete passmgr.Pass wiring that drives the
// semantic pipeline and code generator through the Pass Manager (C2): a
// Linker pass that seeds the global Name Resolver from externally-produced
// ASTs, then Resolve/Hierarchy/ExprResolve/CodeGen/AsmWriter passes that
// each declare a dependency on the one before. This mirrors the data flow
// spec §2 describes: "Pass Manager schedules {Linker -> Name Resolver ->
// Hierarchy Checker -> Expression Resolver -> Dataflow -> Code Generator}".
// It is grounded on the teacher's internal/semantic/passes package (one
// small struct per pass, a Name()/Run() pair, doc comments stating
// Purpose/Dependencies/Outputs) adapted to the core's passmgr.Pass
// interface (Init/ComputeDependency/Run) instead of the teacher's simpler
// Run(program, ctx) signature, since the core's Pass Manager owns
// dependency declaration and heap lifetime rather than a flat PassContext.
package passes

import (
	"github.com/joos1w/joosc/internal/codegen"
	"github.com/joos1w/joosc/internal/mangle"
	"github.com/joos1w/joosc/internal/passmgr"
	"github.com/joos1w/joosc/internal/sema/exprresolve"
	"github.com/joos1w/joosc/internal/sema/hierarchy"
	"github.com/joos1w/joosc/internal/sema/resolve"
	"github.com/joos1w/joosc/pkg/ast"
	"github.com/joos1w/joosc/pkg/tir"
)

// ASTProvider supplies the compilation units a Linker pass registers. In a
// full toolchain this is satisfied by the external parse-tree producer
// (spec §1/§6); cmd/joosc's own internal/frontend implements it directly
// over parsed source files.
type ASTProvider interface {
	CompilationUnits() ([]*ast.CompilationUnit, error)
}

// Linker is the first scheduled pass (spec §2's data flow). It has no
// dependencies: it owns the heap the AST lives in (conceptually; the AST
// itself is produced outside the core) and builds the global Name Resolver
// that every later pass reads from.
//
// Dependencies: none.
// Outputs: a populated resolve.Resolver (package tree + per-CU import
// scopes), retrievable via passmgr.GetPass[*Linker].
type Linker struct {
	provider ASTProvider
	resolver *resolve.Resolver
}

// NewLinker returns a Linker that will source its compilation units from
// provider when run.
func NewLinker(provider ASTProvider) *Linker {
	return &Linker{provider: provider}
}

func (p *Linker) Name() string { return "linker" }
func (p *Linker) Desc() string { return "build the package tree from every compilation unit" }

func (p *Linker) Init(pm *passmgr.Manager) {
	p.resolver = resolve.New(pm.Diag())
}

func (p *Linker) ComputeDependency() {}

func (p *Linker) Run() error {
	cus, err := p.provider.CompilationUnits()
	if err != nil {
		return err
	}
	for _, cu := range cus {
		p.resolver.AddCompilationUnit(cu)
	}
	return nil
}

// Resolver returns the Name Resolver this pass built, once Valid.
func (p *Linker) Resolver() *resolve.Resolver { return p.resolver }

// Resolve is the Name Resolver pass (C5): resolves every ReferenceType
// reachable from every compilation unit's body (superclass, interfaces,
// field types, method signatures) per spec §4.5/§12 item 3.
//
// Dependencies: Linker.
// Outputs: every ast.ReferenceType in the linking unit has Resolved set (or
// a diagnostic was reported).
type Resolve struct {
	pm     *passmgr.Manager
	linker *Linker
}

func NewResolve() *Resolve { return &Resolve{} }

func (p *Resolve) Name() string { return "resolve" }
func (p *Resolve) Desc() string { return "resolve reference types against the package tree" }

func (p *Resolve) Init(pm *passmgr.Manager) { p.pm = pm }

func (p *Resolve) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*Linker](p.pm))
}

func (p *Resolve) Run() error {
	p.linker = passmgr.GetPass[*Linker](p.pm)
	for _, cu := range p.linker.Resolver().CompilationUnits() {
		p.linker.Resolver().ResolveTypes(cu)
	}
	return nil
}

// Resolver exposes the resolver the Linker built, once this pass is Valid.
func (p *Resolve) Resolver() *resolve.Resolver { return p.linker.Resolver() }

// Hierarchy is the Hierarchy Checker pass (C7): inheritance-cycle
// detection, override rules, abstract-method coverage (spec §4.7).
//
// Dependencies: Resolve.
// Outputs: the Checker, whose LookupInherited answers inherited-member
// lookups; the Code Generator uses it to find inherited methods.
type Hierarchy struct {
	pm      *passmgr.Manager
	checker *hierarchy.Checker
}

func NewHierarchy() *Hierarchy { return &Hierarchy{} }

func (p *Hierarchy) Name() string { return "hierarchy" }
func (p *Hierarchy) Desc() string { return "check inheritance, overrides, and abstract coverage" }

func (p *Hierarchy) Init(pm *passmgr.Manager) { p.pm = pm }

func (p *Hierarchy) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*Resolve](p.pm))
}

func (p *Hierarchy) Run() error {
	resolver := passmgr.GetPass[*Resolve](p.pm).Resolver()
	p.checker = hierarchy.New(p.pm.Diag(), resolver)
	p.checker.Check()
	return nil
}

// Checker returns the Hierarchy Checker this pass built, once Valid.
func (p *Hierarchy) Checker() *hierarchy.Checker { return p.checker }

// ExprResolve is the Expression Resolver pass (C6): the hardest subsystem,
// classifying ambiguous names per JLS 6.5.2 over every statement's
// expressions (spec §4.6).
//
// Dependencies: Hierarchy (runs after the hierarchy checks). Field lookup
// for a qualified access searches only the named class's own members; an
// inherited field is not found.
// Outputs: every MemberName/MethodName in the linking unit is classified
// and bound to its Decl.
type ExprResolve struct {
	pm       *passmgr.Manager
	resolver *exprresolve.Resolver
}

func NewExprResolve() *ExprResolve { return &ExprResolve{} }

func (p *ExprResolve) Name() string { return "expr-resolve" }
func (p *ExprResolve) Desc() string { return "classify ambiguous names and bind expression references" }

func (p *ExprResolve) Init(pm *passmgr.Manager) { p.pm = pm }

func (p *ExprResolve) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*Hierarchy](p.pm))
}

func (p *ExprResolve) Run() error {
	nameResolver := passmgr.GetPass[*Resolve](p.pm).Resolver()
	p.resolver = exprresolve.New(p.pm.Diag(), nameResolver)
	p.resolver.ResolveAll()
	return nil
}

// CodeGen is the Code Generator pass (C9): AST -> TIR lowering over the
// whole linking unit (spec §4.9).
//
// Dependencies: ExprResolve.
// Outputs: a *tir.CompilationUnit, retrievable via Unit() once Valid.
type CodeGen struct {
	pm   *passmgr.Manager
	ctx  *tir.Context
	unit *tir.CompilationUnit
	name string
}

// NewCodeGen returns a CodeGen pass that will name its output TIR
// compilation unit unitName and intern types into ctx.
func NewCodeGen(ctx *tir.Context, unitName string) *CodeGen {
	return &CodeGen{ctx: ctx, name: unitName}
}

func (p *CodeGen) Name() string { return "codegen" }
func (p *CodeGen) Desc() string { return "lower the resolved AST to TIR" }

func (p *CodeGen) Init(pm *passmgr.Manager) { p.pm = pm }

func (p *CodeGen) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*ExprResolve](p.pm))
}

func (p *CodeGen) Run() error {
	resolver := passmgr.GetPass[*Resolve](p.pm).Resolver()
	hier := passmgr.GetPass[*Hierarchy](p.pm).Checker()
	gen := codegen.New(p.pm.Diag(), resolver, hier, p.ctx)
	p.unit = gen.Generate(p.name)
	return nil
}

// Unit returns the lowered TIR compilation unit, once this pass is Valid.
func (p *CodeGen) Unit() *tir.CompilationUnit { return p.unit }

// MangleNames is an optional pass clients may enable alongside CodeGen to
// populate a stable symbol table via the Name Mangler (C10), e.g. for an
// asm-writer pass that wants to print mangled names instead of the TIR's
// own value names.
type MangleNames struct {
	pm    *passmgr.Manager
	table map[*ast.MethodDecl]string
}

func NewMangleNames() *MangleNames { return &MangleNames{} }

func (p *MangleNames) Name() string { return "mangle" }
func (p *MangleNames) Desc() string { return "compute the deterministic symbol-name table" }

func (p *MangleNames) Init(pm *passmgr.Manager) { p.pm = pm }

func (p *MangleNames) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*Hierarchy](p.pm))
}

func (p *MangleNames) Run() error {
	resolver := passmgr.GetPass[*Resolve](p.pm).Resolver()
	jl := resolver.GetJavaLang()
	var mjl mangle.JavaLang
	if jl.Object != nil {
		mjl.ObjectCanonical = jl.Object.CanonicalName()
	}
	if jl.String != nil {
		mjl.StringCanonical = jl.String.CanonicalName()
	}
	p.table = make(map[*ast.MethodDecl]string)
	for _, cu := range resolver.CompilationUnits() {
		cls, ok := cu.Body.(*ast.ClassDecl)
		if !ok {
			continue
		}
		for _, m := range cls.AllMethods() {
			p.table[m] = mangle.FunctionName(m, mjl)
		}
	}
	return nil
}

// Table returns the method -> mangled-name table this pass computed, once
// Valid.
func (p *MangleNames) Table() map[*ast.MethodDecl]string { return p.table }
