package ast

import "fmt"

// Package is a mapping from simple name to either a nested Package or a
// Decl — never both; a conflict is detectable (spec §3). The top-level
// Package (with no name of its own) is the root of the whole compilation's
// package tree, built by the Name Resolver (C5) from every compilation
// unit's package declaration and top-level type.
type Package struct {
	Name     string
	packages map[string]*Package
	decls    map[string]Decl
}

// NewPackage returns an empty package named name ("" for the root).
func NewPackage(name string) *Package {
	return &Package{Name: name, packages: make(map[string]*Package), decls: make(map[string]Decl)}
}

// Member is the result of Package.Lookup: exactly one of Pkg or Decl is
// non-nil, or both are nil if name is unbound.
type Member struct {
	Pkg  *Package
	Decl Decl
}

// Found reports whether Lookup actually matched something.
func (m Member) Found() bool { return m.Pkg != nil || m.Decl != nil }

// Lookup returns the member of p named name: a nested package or a decl.
func (p *Package) Lookup(name string) Member {
	if sub, ok := p.packages[name]; ok {
		return Member{Pkg: sub}
	}
	if d, ok := p.decls[name]; ok {
		return Member{Decl: d}
	}
	return Member{}
}

// EnsureSubpackage returns the nested package named name, creating it if
// absent. It panics if name is already bound to a Decl — package/decl
// conflicts are a Fatal error in this core since they indicate a malformed
// package tree the Name Resolver itself should never construct.
func (p *Package) EnsureSubpackage(name string) *Package {
	if _, ok := p.decls[name]; ok {
		panic(fmt.Sprintf("package tree conflict: %q is already bound to a declaration", name))
	}
	sub, ok := p.packages[name]
	if !ok {
		sub = NewPackage(name)
		p.packages[name] = sub
	}
	return sub
}

// Declare binds name to decl within p. It panics on a package/decl
// conflict, for the same reason as EnsureSubpackage.
func (p *Package) Declare(name string, decl Decl) {
	if _, ok := p.packages[name]; ok {
		panic(fmt.Sprintf("package tree conflict: %q is already bound to a subpackage", name))
	}
	if existing, ok := p.decls[name]; ok && existing != decl {
		panic(fmt.Sprintf("package tree conflict: %q already declared", name))
	}
	p.decls[name] = decl
}

// Resolve walks a dotted path from the root, returning the final Member (or
// a not-found Member if any segment fails to resolve).
func (p *Package) Resolve(path []string) Member {
	cur := p
	for i, seg := range path {
		m := cur.Lookup(seg)
		if i == len(path)-1 {
			return m
		}
		if m.Pkg == nil {
			return Member{}
		}
		cur = m.Pkg
	}
	return Member{Pkg: cur}
}
