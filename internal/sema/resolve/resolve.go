// Package resolve implements the Name Resolver (C5): the global package
// tree built from every compilation unit's package declaration and
// top-level type, single-type/import-on-demand resolution following
// JLS 6.5.2 order, and the GetTypeAsClass/GetJavaLang helpers the
// Expression Resolver and Code Generator depend on. It is grounded on
// original_source/lib/semantic/ExprResolver.cc's NameResolver call sites
// (GetImport, GetTypeAsClass, GetJavaLang) even though the original's own
// NameResolver.{h,cc} were filtered out of the retrieval pack; the contract
// those call sites imply is reconstructed directly from spec §4.5.
package resolve

import (
	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/pkg/ast"
)

// Import is the result of GetImport: exactly one of Decl, Pkg, or Ambiguous
// is meaningful. A zero Import (all fields empty/false) means "not found",
// which the caller (the Expression Resolver) turns into a "cannot resolve
// name" diagnostic per spec §4.6.
type Import struct {
	Decl      ast.Decl
	Pkg       *ast.Package
	Ambiguous bool
}

// Found reports whether GetImport actually resolved to something.
func (i Import) Found() bool { return i.Decl != nil || i.Pkg != nil || i.Ambiguous }

// JavaLang caches the built-in Object/String declarations, spec §4.5's
// GetJavaLang().
type JavaLang struct {
	Object ast.Decl
	String ast.Decl
}

// Resolver is the Name Resolver. One Resolver serves an entire compiler
// run (spec §5: no incremental re-compilation, one pass over every CU).
type Resolver struct {
	root *ast.Package
	cus  []*ast.CompilationUnit
	diag *diag.Engine

	javaLang     JavaLang
	javaLangBuilt bool
}

// New returns a Resolver with an empty package tree.
func New(diagEngine *diag.Engine) *Resolver {
	return &Resolver{root: ast.NewPackage(""), diag: diagEngine}
}

// Root returns the whole compilation's package tree.
func (r *Resolver) Root() *ast.Package { return r.root }

// AddCompilationUnit registers cu's top-level body declaration into the
// package tree at cu's declared package path (the default/unnamed package
// if cu.Package is empty), and remembers cu for ResolveTypes/ResolveAll.
func (r *Resolver) AddCompilationUnit(cu *ast.CompilationUnit) {
	r.cus = append(r.cus, cu)
	if cu.Body == nil {
		return
	}
	pkg := r.root
	for _, seg := range cu.Package {
		pkg = pkg.EnsureSubpackage(seg)
	}
	pkg.Declare(cu.Body.SimpleName(), cu.Body)
}

// CompilationUnits returns every compilation unit added so far, in add
// order.
func (r *Resolver) CompilationUnits() []*ast.CompilationUnit { return r.cus }

// GetImport resolves name in cu's imported scope following the JLS 6.5.2
// order spec §4.5 lists: the CU's own top-level type, single-type imports,
// the same package, then type-import-on-demand (ambiguous if more than one
// on-demand import provides a distinct matching type). If no type matches,
// a top-level package named name is returned as Pkg.
func (r *Resolver) GetImport(cu *ast.CompilationUnit, name string) Import {
	if cu.Body != nil && cu.Body.SimpleName() == name {
		return Import{Decl: cu.Body}
	}

	for _, imp := range cu.Imports {
		if imp.OnDemand {
			continue
		}
		if len(imp.Qualified) == 0 || imp.Qualified[len(imp.Qualified)-1] != name {
			continue
		}
		if m := r.root.Resolve(imp.Qualified); m.Decl != nil {
			return Import{Decl: m.Decl}
		}
	}

	pkgPath := cu.Package
	samePkg := r.root
	for _, seg := range pkgPath {
		m := samePkg.Lookup(seg)
		if m.Pkg == nil {
			samePkg = nil
			break
		}
		samePkg = m.Pkg
	}
	if samePkg != nil {
		if m := samePkg.Lookup(name); m.Decl != nil {
			return Import{Decl: m.Decl}
		}
	}

	var candidates []ast.Decl
	for _, imp := range cu.Imports {
		if !imp.OnDemand {
			continue
		}
		m := r.root.Resolve(imp.Qualified)
		if m.Pkg == nil {
			continue
		}
		if sub := m.Pkg.Lookup(name); sub.Decl != nil {
			candidates = appendUnique(candidates, sub.Decl)
		}
	}
	switch len(candidates) {
	case 0:
		if m := r.root.Lookup(name); m.Pkg != nil {
			return Import{Pkg: m.Pkg}
		}
		return Import{}
	case 1:
		return Import{Decl: candidates[0]}
	default:
		return Import{Ambiguous: true}
	}
}

func appendUnique(decls []ast.Decl, d ast.Decl) []ast.Decl {
	for _, existing := range decls {
		if existing == d {
			return decls
		}
	}
	return append(decls, d)
}

// GetTypeAsClass returns the ClassDecl/InterfaceDecl a reference or
// array-of-reference type ultimately refers to, or nil for primitives
// (spec §4.5).
func (r *Resolver) GetTypeAsClass(t ast.Type) ast.Decl {
	for {
		switch v := t.(type) {
		case *ast.ArrayType:
			t = v.Element
		case *ast.ReferenceType:
			return v.Resolved
		default:
			return nil
		}
	}
}

// GetJavaLang returns the cached java.lang.Object/java.lang.String handles,
// resolving them from the package tree on first use. Either field is nil
// if the compilation has no such class in scope — a minimal test fixture
// without a java.lang package is a valid, if incomplete, input.
func (r *Resolver) GetJavaLang() JavaLang {
	if !r.javaLangBuilt {
		r.javaLangBuilt = true
		if m := r.root.Resolve([]string{"java", "lang", "Object"}); m.Decl != nil {
			r.javaLang.Object = m.Decl
		}
		if m := r.root.Resolve([]string{"java", "lang", "String"}); m.Decl != nil {
			r.javaLang.String = m.Decl
		}
	}
	return r.javaLang
}

// ResolveTypes resolves every ReferenceType reachable from cu's body: the
// superclass, implemented/extended interfaces, every field's type, and
// every method's parameter/return types (spec §12 item 3 — the Name
// Resolver responsibility the teacher's own type-resolution pass left
// stubbed). Unresolved references are reported through the diagnostic
// engine with cu's location; resolution never silently succeeds on
// failure (spec §4.5).
func (r *Resolver) ResolveTypes(cu *ast.CompilationUnit) {
	switch decl := cu.Body.(type) {
	case *ast.ClassDecl:
		if decl.SuperClass != nil {
			r.resolveReferenceType(cu, decl.SuperClass)
		}
		for _, iface := range decl.Interfaces {
			r.resolveReferenceType(cu, iface)
		}
		for _, f := range decl.Fields {
			r.resolveType(cu, f.Type)
		}
		for _, m := range decl.AllMethods() {
			r.resolveMethodSignature(cu, m)
		}
	case *ast.InterfaceDecl:
		for _, iface := range decl.Extends {
			r.resolveReferenceType(cu, iface)
		}
		for _, m := range decl.Methods {
			r.resolveMethodSignature(cu, m)
		}
	}
}

// ResolveExprType resolves t in cu's scope, the same way a field or
// parameter's declared type is resolved (spec §4.5). The Expression
// Resolver calls this for the Type embedded in an ast.TypeNode, since a
// type appearing as an expression-position operand (the operand of Cast,
// ClassInstanceCreation, or ArrayInstanceCreation) never passes through
// ResolveTypes's declaration walk.
func (r *Resolver) ResolveExprType(cu *ast.CompilationUnit, t ast.Type) {
	r.resolveType(cu, t)
}

func (r *Resolver) resolveMethodSignature(cu *ast.CompilationUnit, m *ast.MethodDecl) {
	if m.ReturnType != nil {
		r.resolveType(cu, m.ReturnType)
	}
	for _, p := range m.Parameters {
		r.resolveType(cu, p.Type)
	}
}

func (r *Resolver) resolveType(cu *ast.CompilationUnit, t ast.Type) {
	switch v := t.(type) {
	case *ast.ReferenceType:
		r.resolveReferenceType(cu, v)
	case *ast.ArrayType:
		r.resolveType(cu, v.Element)
	}
}

func (r *Resolver) resolveReferenceType(cu *ast.CompilationUnit, ref *ast.ReferenceType) {
	if ref.Resolved != nil || len(ref.Identifier) == 0 {
		return
	}
	if len(ref.Identifier) == 1 {
		imp := r.GetImport(cu, ref.Identifier[0])
		switch {
		case imp.Ambiguous:
			r.diag.ReportError(cu.Pos(), "ambiguous import-on-demand conflict")
		case imp.Decl != nil:
			ref.Resolved = imp.Decl
		default:
			r.diag.ReportError(cu.Pos(), "cannot resolve name: %s", ref.Identifier[0])
		}
		return
	}
	if m := r.root.Resolve(ref.Identifier); m.Decl != nil {
		ref.Resolved = m.Decl
		return
	}
	r.diag.ReportError(cu.Pos(), "cannot resolve type: %s", joinDotted(ref.Identifier))
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
