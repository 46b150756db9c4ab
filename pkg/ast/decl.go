package ast

import (
	"strings"

	"github.com/joos1w/joosc/internal/source"
)

// DeclContext is implemented by any node that can own declarations looked
// up by simple name: CompilationUnit, ClassDecl, InterfaceDecl, MethodDecl
// (for locals/parameters), and BlockStmt. Spec §4.4: "DeclContext.
// lookupDecl(name) returns the Decl whose simple name matches, or null. For
// ClassDecl, lookup considers fields, methods, and (per language rules)
// inherited members after the Hierarchy Checker succeeds."
type DeclContext interface {
	Node
	// LookupDecl searches this context's own members only; it does not
	// walk Parent(). Inherited-member lookup for ClassDecl is layered on
	// top by the hierarchy checker (internal/sema/hierarchy) once it has
	// computed the inheritance map, via LookupInherited.
	LookupDecl(name string) Decl
	// Parent returns the enclosing DeclContext, or nil at the top.
	Parent() DeclContext
}

// declBase is embedded by every Decl implementation to share the common
// fields spec §3 lists: name, canonical name, parent context, source range.
type declBase struct {
	name      string
	canonical string
	parent    DeclContext
	rng       source.Range
}

func (d *declBase) SimpleName() string      { return d.name }
func (d *declBase) CanonicalName() string   { return d.canonical }
func (d *declBase) Parent() DeclContext     { return d.parent }
func (d *declBase) Pos() source.Range       { return d.rng }
func (d *declBase) declNode()               {}

// Import is one entry of a CompilationUnit's import list: a qualified
// identifier and whether it is an on-demand (wildcard) import.
type Import struct {
	Qualified []string
	OnDemand  bool
}

func (im Import) String() string {
	s := strings.Join(im.Qualified, ".")
	if im.OnDemand {
		s += ".*"
	}
	return s
}

// CompilationUnit is the content of a single source file: an optional
// package declaration, an ordered import list, and exactly one top-level
// body declaration.
type CompilationUnit struct {
	declBase
	Package []string // nil/empty if unqualified (default package)
	Imports []Import
	Body    Decl // ClassDecl or InterfaceDecl
	File    source.FileId
}

func NewCompilationUnit(file source.FileId, pkg []string, imports []Import, body Decl, rng source.Range) *CompilationUnit {
	cu := &CompilationUnit{Package: pkg, Imports: imports, Body: body, File: file}
	cu.rng = rng
	if body != nil {
		cu.name = body.SimpleName()
		cu.canonical = body.CanonicalName()
	}
	return cu
}

func (cu *CompilationUnit) String() string { return "compilation-unit:" + cu.canonical }
func (cu *CompilationUnit) Children() []Node {
	if cu.Body == nil {
		return nil
	}
	return []Node{cu.Body}
}
func (cu *CompilationUnit) LookupDecl(name string) Decl {
	if cu.Body != nil && cu.Body.SimpleName() == name {
		return cu.Body
	}
	return nil
}

// PackageQualifiedName renders cu's package declaration as a dotted string,
// or "" for the default package.
func (cu *CompilationUnit) PackageQualifiedName() string {
	return strings.Join(cu.Package, ".")
}

// ClassDecl is a class declaration: modifiers, optional superclass
// reference, implemented interfaces, and fields/methods/constructors
// partitioned by construction (spec §3).
type ClassDecl struct {
	declBase
	Modifiers    Modifiers
	SuperClass   *ReferenceType // nil means implicit Object superclass
	Interfaces   []*ReferenceType
	Fields       []*FieldDecl
	Methods      []*MethodDecl
	Constructors []*MethodDecl
}

func NewClassDecl(name, canonical string, parent DeclContext, rng source.Range) *ClassDecl {
	c := &ClassDecl{}
	c.name, c.canonical, c.parent, c.rng = name, canonical, parent, rng
	return c
}

func (c *ClassDecl) String() string { return "class " + c.canonical }
func (c *ClassDecl) Children() []Node {
	out := make([]Node, 0, len(c.Fields)+len(c.Methods)+len(c.Constructors))
	for _, f := range c.Fields {
		out = append(out, f)
	}
	for _, m := range c.Methods {
		out = append(out, m)
	}
	for _, m := range c.Constructors {
		out = append(out, m)
	}
	return out
}
func (c *ClassDecl) LookupDecl(name string) Decl {
	for _, f := range c.Fields {
		if f.name == name {
			return f
		}
	}
	for _, m := range c.Methods {
		if m.name == name {
			return m
		}
	}
	return nil
}

// AllMethods returns methods plus constructors, in declared order, matching
// the AST-build-time invariant that every class has at least one
// constructor (spec §8's boundary behavior).
func (c *ClassDecl) AllMethods() []*MethodDecl {
	out := make([]*MethodDecl, 0, len(c.Methods)+len(c.Constructors))
	out = append(out, c.Constructors...)
	out = append(out, c.Methods...)
	return out
}

// InterfaceDecl is an interface declaration: modifiers, extended
// interfaces, and abstract method signatures (spec §3).
type InterfaceDecl struct {
	declBase
	Modifiers Modifiers
	Extends   []*ReferenceType
	Methods   []*MethodDecl
}

func NewInterfaceDecl(name, canonical string, parent DeclContext, rng source.Range) *InterfaceDecl {
	i := &InterfaceDecl{}
	i.name, i.canonical, i.parent, i.rng = name, canonical, parent, rng
	return i
}

func (i *InterfaceDecl) String() string { return "interface " + i.canonical }
func (i *InterfaceDecl) Children() []Node {
	out := make([]Node, 0, len(i.Methods))
	for _, m := range i.Methods {
		out = append(out, m)
	}
	return out
}
func (i *InterfaceDecl) LookupDecl(name string) Decl {
	for _, m := range i.Methods {
		if m.name == name {
			return m
		}
	}
	return nil
}

// Parameter is one formal parameter of a MethodDecl.
type Parameter struct {
	declBase
	Type Type
}

func NewParameter(name string, typ Type, parent DeclContext, rng source.Range) *Parameter {
	p := &Parameter{Type: typ}
	p.name, p.canonical, p.parent, p.rng = name, name, parent, rng
	return p
}

func (p *Parameter) String() string   { return p.Type.String() + " " + p.name }
func (p *Parameter) Children() []Node { return nil }

// MethodDecl is a method or constructor declaration: modifiers, return type
// (nil for constructors and void methods), ordered parameters, and body
// (nil iff abstract or native). IsConstructor distinguishes the two; the
// AST builder partitions a ClassDecl's constructors out of its body decls,
// mirroring original_source/lib/ast/DeclContext.cc's ClassDecl constructor
// sorting fields_/methods_/constructors_.
type MethodDecl struct {
	declBase
	Modifiers     Modifiers
	ReturnType    Type // nil for constructors and void
	Parameters    []*Parameter
	Body          Statement // nil iff abstract or native
	IsConstructor bool
	// Locals accumulates every local VarDecl declared in the body,
	// populated by the declaration walk so the Code Generator can emit one
	// alloca per local at function entry (spec §4.9).
	Locals []*VarDecl
}

func NewMethodDecl(name, canonical string, parent DeclContext, rng source.Range) *MethodDecl {
	m := &MethodDecl{}
	m.name, m.canonical, m.parent, m.rng = name, canonical, parent, rng
	return m
}

func (m *MethodDecl) String() string { return "method " + m.canonical }
func (m *MethodDecl) Children() []Node {
	out := make([]Node, 0, len(m.Parameters)+1)
	for _, p := range m.Parameters {
		out = append(out, p)
	}
	if m.Body != nil {
		out = append(out, m.Body)
	}
	return out
}
func (m *MethodDecl) LookupDecl(name string) Decl {
	for _, p := range m.Parameters {
		if p.name == name {
			return p
		}
	}
	for _, l := range m.Locals {
		if l.name == name {
			return l
		}
	}
	return nil
}

// HasBody reports whether m has a real body, i.e. is neither abstract nor
// native (spec §3's modifier invariant).
func (m *MethodDecl) HasBody() bool { return m.Body != nil }

// FieldDecl is a class/interface field: visibility-qualified, and never
// final, abstract, or native (spec §3).
type FieldDecl struct {
	declBase
	Modifiers Modifiers
	Type      Type
	Init      *ExprNodeList // nil if uninitialized
}

func NewFieldDecl(name, canonical string, typ Type, parent DeclContext, rng source.Range) *FieldDecl {
	f := &FieldDecl{Type: typ}
	f.name, f.canonical, f.parent, f.rng = name, canonical, parent, rng
	return f
}

func (f *FieldDecl) String() string   { return f.Type.String() + " " + f.canonical }
func (f *FieldDecl) Children() []Node { return nil }
func (f *FieldDecl) LookupDecl(string) Decl { return nil }

// VarDecl is a local variable or parameter. Parameter reuses this shape via
// the Parameter type above; VarDecl itself is used for locals declared by a
// DeclStmt.
type VarDecl struct {
	declBase
	Type Type
	Init *ExprNodeList // nil if uninitialized
}

func NewVarDecl(name string, typ Type, parent DeclContext, rng source.Range) *VarDecl {
	v := &VarDecl{Type: typ}
	v.name, v.canonical, v.parent, v.rng = name, name, parent, rng
	return v
}

func (v *VarDecl) String() string      { return v.Type.String() + " " + v.name }
func (v *VarDecl) Children() []Node    { return nil }
func (v *VarDecl) LookupDecl(string) Decl { return nil }
