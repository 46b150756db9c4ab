// Package ast defines the typed tree of declarations, statements, and
// RPN-encoded expressions that the core operates on (C4). It mirrors the
// teacher's internal/ast package in spirit — a Node interface with
// TokenLiteral()/String()/Pos(), Expression/Statement marker sub-interfaces
// — generalized from DWScript's Object-Pascal grammar to the Java-like
// subset language this core targets (classes, interfaces, single
// inheritance, primitive/reference/array types).
package ast

import "github.com/joos1w/joosc/internal/source"

// Node is the common interface implemented by every AST entity.
type Node interface {
	// String renders the node for diagnostics and test fixtures. It is not
	// a parser-round-trippable pretty-printer (that lives outside core
	// scope per spec §1).
	String() string
	// Pos returns the node's source range.
	Pos() source.Range
	// Children returns the node's ordered, non-owning children, used by
	// generic traversals (name resolution, expression resolution) per
	// spec §4.4.
	Children() []Node
}

// Expression is implemented by every node that can appear inside an
// ExprNodeList.
type Expression interface {
	Node
	expressionNode()
}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	statementNode()
}

// Decl is implemented by every declaration-level node: classes, interfaces,
// methods, fields, and local/parameter variables.
type Decl interface {
	Node
	declNode()
	// SimpleName is the declaration's unqualified name.
	SimpleName() string
	// CanonicalName is the fully qualified dotted name, unique within a
	// compilation (spec §3's uniqueness invariant).
	CanonicalName() string
}

// Visibility is one of the two visibility modifiers every visibility-
// qualified Decl must carry exactly one of (spec §3's modifier invariant).
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
)

func (v Visibility) String() string {
	if v == VisibilityProtected {
		return "protected"
	}
	return "public"
}

// Modifiers bundles the static modifier flags spec §3 requires every Decl
// to satisfy consistency rules over (abstract/final/static/native combined
// with visibility).
type Modifiers struct {
	Visibility Visibility
	Static     bool
	Abstract   bool
	Final      bool
	Native     bool
}

// Validate checks the modifier-combination invariants from spec §3, plus
// (when isMethod and m.Native) spec §8's native-method boundary shape. It
// returns a descriptive error instead of a bool so callers can surface it
// straight to the diagnostic engine. returnType/params are only consulted
// when isMethod && m.Native; pass nil for classes, interfaces, fields, and
// non-native methods.
func (m Modifiers) Validate(isClass, isInterface, isMethod bool, returnType Type, params []*Parameter) error {
	if isClass && m.Abstract && m.Final {
		return errf("a class may not be both abstract and final")
	}
	if isInterface && m.Final {
		return errf("an interface must not be final")
	}
	if isInterface && m.Visibility != VisibilityPublic {
		return errf("an interface must be public")
	}
	if m.Abstract && (m.Static || m.Final || m.Native) {
		return errf("abstract implies none of {static, final, native}")
	}
	if m.Native && !m.Static {
		return errf("native implies static")
	}
	if isMethod && m.Native {
		// Spec §8 boundary behavior: a native method is accepted iff it is
		// static, returns Int, and has exactly one Int parameter.
		// Static-ness is checked above.
		if !isInt(returnType) {
			return errf("a native method must return int")
		}
		if len(params) != 1 || !isInt(params[0].Type) {
			return errf("a native method must take exactly one int parameter")
		}
	}
	return nil
}

func isInt(t Type) bool {
	bt, ok := t.(*BuiltInType)
	return ok && bt.Kind == BuiltInInt
}

func errf(msg string) error { return modifierError(msg) }

type modifierError string

func (e modifierError) Error() string { return string(e) }
