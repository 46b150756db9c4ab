// Package mangle implements the deterministic name-mangling scheme (C10)
// used to encode function symbol names. It is grounded on
// original_source/lib/codegen/Mangling.cc's Mangler class: a single
// ostringstream of emitted segments becomes a strings.Builder here, and the
// three methods (MangleCanonicalName, MangleType, MangleFunctionName)
// translate directly, one Go function per C++ method.
package mangle

import (
	"fmt"
	"strings"

	"github.com/joos1w/joosc/pkg/ast"
)

// JavaLang names the two built-in classes that get a one-letter mangled
// form instead of the generic R<canonical> reference encoding (spec §4.10).
// The zero value (both names empty) never matches a reference type, which
// is the correct behavior for a compilation that has no java.lang classes
// in scope.
type JavaLang struct {
	ObjectCanonical string
	StringCanonical string
}

// CanonicalName encodes name as repeated <length><chunk>E segments, one per
// dot-separated component — e.g. "Foo.bar" becomes "3FooE3barE" — matching
// Mangler::MangleCanonicalName exactly (each component gets its own "E"
// terminator, not one trailing terminator for the whole name).
func CanonicalName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, ".") {
		fmt.Fprintf(&b, "%d%sE", len(part), part)
	}
	return b.String()
}

// Type encodes a single ast.Type per spec §4.10's table: one-letter
// primitives, "A<elem>" for arrays, and "S"/"O"/"R<canonical>" for
// references depending on whether the reference names java.lang.String,
// java.lang.Object, or something else.
func Type(t ast.Type, jl JavaLang) string {
	switch v := t.(type) {
	case *ast.BuiltInType:
		switch v.Kind {
		case ast.BuiltInBoolean:
			return "B"
		case ast.BuiltInChar:
			return "c"
		case ast.BuiltInShort:
			return "s"
		case ast.BuiltInInt:
			return "i"
		case ast.BuiltInByte:
			return "b"
		case ast.BuiltInString:
			return "S"
		default:
			// Void / None: not in the primitive table (spec §4.10 only
			// lists the six value-carrying primitives); callers handling a
			// void return type use the "v" constructor/void-return
			// convention directly rather than calling Type.
			return "v"
		}
	case *ast.ArrayType:
		return "A" + Type(v.Element, jl)
	case *ast.ReferenceType:
		canonical := ""
		if v.Resolved != nil {
			canonical = v.Resolved.CanonicalName()
		}
		switch {
		case canonical != "" && canonical == jl.StringCanonical:
			return "S"
		case canonical != "" && canonical == jl.ObjectCanonical:
			return "O"
		default:
			return "R" + CanonicalName(canonical)
		}
	default:
		return "v"
	}
}

// FunctionName mangles decl per spec §4.10: "_JF" prefix, "C" if the method
// is an instance method, the mangled canonical name, the mangled return
// type (or "v" for a constructor), then each parameter type in order.
// Matches Mangler::MangleFunctionName.
func FunctionName(decl *ast.MethodDecl, jl JavaLang) string {
	var b strings.Builder
	b.WriteString("_JF")
	if !decl.Modifiers.Static {
		b.WriteString("C")
	}
	b.WriteString(CanonicalName(decl.CanonicalName()))
	if decl.IsConstructor || decl.ReturnType == nil {
		b.WriteString("v")
	} else {
		b.WriteString(Type(decl.ReturnType, jl))
	}
	for _, p := range decl.Parameters {
		b.WriteString(Type(p.Type, jl))
	}
	return b.String()
}
