package ast

import "fmt"

// BuiltIn enumerates the primitive/void type kinds (spec §3).
type BuiltIn int

const (
	BuiltInVoid BuiltIn = iota
	BuiltInBoolean
	BuiltInByte
	BuiltInChar
	BuiltInShort
	BuiltInInt
	BuiltInString
	BuiltInNone // absence of a declared type, e.g. an unresolved return type
)

func (b BuiltIn) String() string {
	switch b {
	case BuiltInVoid:
		return "void"
	case BuiltInBoolean:
		return "boolean"
	case BuiltInByte:
		return "byte"
	case BuiltInChar:
		return "char"
	case BuiltInShort:
		return "short"
	case BuiltInInt:
		return "int"
	case BuiltInString:
		return "String"
	default:
		return "<none>"
	}
}

// Type is the common interface for every AST type variant: BuiltInType,
// ArrayType, ReferenceType, UnresolvedType (spec §3).
type Type interface {
	fmt.Stringer
	typeNode()
	// IsPrimitive reports whether the type is a BuiltInType other than
	// String and None.
	IsPrimitive() bool
}

// BuiltInType is a primitive or void type.
type BuiltInType struct {
	Kind BuiltIn
}

func (t *BuiltInType) typeNode() {}
func (t *BuiltInType) String() string { return t.Kind.String() }
func (t *BuiltInType) IsPrimitive() bool {
	return t.Kind != BuiltInString && t.Kind != BuiltInNone && t.Kind != BuiltInVoid
}

// ArrayType is an array of Element.
type ArrayType struct {
	Element Type
}

func (t *ArrayType) typeNode()        {}
func (t *ArrayType) String() string   { return t.Element.String() + "[]" }
func (t *ArrayType) IsPrimitive() bool { return false }

// ReferenceType names a class or interface, resolved to Decl by the Name
// Resolver (C5). Before resolution, Resolved is nil and Identifier holds
// the dotted name chain as written in source.
type ReferenceType struct {
	Identifier []string // dotted name chain, e.g. ["java","lang","String"]
	Resolved   Decl      // filled in by the Name Resolver; nil until then
}

func (t *ReferenceType) typeNode() {}
func (t *ReferenceType) String() string {
	if t.Resolved != nil {
		return t.Resolved.CanonicalName()
	}
	s := ""
	for i, p := range t.Identifier {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
func (t *ReferenceType) IsPrimitive() bool { return false }

// UnresolvedType is a placeholder for a type the parser could not classify
// (grammar ambiguity); the Name Resolver must replace it with a concrete
// Type or report an error.
type UnresolvedType struct {
	Identifier []string
}

func (t *UnresolvedType) typeNode()        {}
func (t *UnresolvedType) String() string   { return "<unresolved>" }
func (t *UnresolvedType) IsPrimitive() bool { return false }

// SameType reports structural equality between two resolved types, used by
// the Hierarchy Checker's exact-return-type-match rule (spec §4.7) and by
// assignment-compatibility checks.
func SameType(a, b Type) bool {
	switch av := a.(type) {
	case *BuiltInType:
		bv, ok := b.(*BuiltInType)
		return ok && av.Kind == bv.Kind
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		return ok && SameType(av.Element, bv.Element)
	case *ReferenceType:
		bv, ok := b.(*ReferenceType)
		return ok && av.Resolved != nil && av.Resolved == bv.Resolved
	default:
		return false
	}
}
