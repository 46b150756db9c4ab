package ast

import "github.com/joos1w/joosc/internal/source"

// NodeKind discriminates the ExprNode variants spec §3 lists.
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodeMemberName
	NodeMethodName
	NodeThis
	NodeBinaryOp
	NodeUnaryOp
	NodeMemberAccess
	NodeMethodInvocation
	NodeClassInstanceCreation
	NodeArrayInstanceCreation
	NodeArrayAccess
	NodeCast
	NodeType
)

// ExprNode is one entry of an ExprNodeList's reverse-Polish sequence. Each
// op carries its arity: the number of stack slots (not necessarily
// "arguments" — see MethodInvocation) the generic Evaluator pops for it.
// Leaf/value nodes (Literal, MemberName, MethodName, This) have arity 0;
// they are pushed via Evaluator.mapValue rather than popped from.
type ExprNode interface {
	Node
	Kind() NodeKind
	Arity() int
}

type exprNodeBase struct {
	rng source.Range
}

func (e *exprNodeBase) Pos() source.Range { return e.rng }
func (e *exprNodeBase) expressionNode()   {}
func (e *exprNodeBase) Children() []Node  { return nil }

// LiteralKind is the literal's primitive kind.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralBoolean
	LiteralChar
	LiteralString
	LiteralNull
)

// LiteralNode is an integer, boolean, char, string, or null literal.
type LiteralNode struct {
	exprNodeBase
	LiteralKind LiteralKind
	Value       any
	// NegatedByUnaryMinus is set by the parser/AST builder when this
	// literal is the immediate operand of a unary minus token, per spec
	// §8: 2147483648 is rejected unless it is that operand, in which case
	// -2147483648 is accepted.
	NegatedByUnaryMinus bool
}

func (n *LiteralNode) String() string { return "literal" }
func (n *LiteralNode) Kind() NodeKind { return NodeLiteral }
func (n *LiteralNode) Arity() int     { return 0 }

// NameClass is the classification a name node settles into once the
// Expression Resolver (C6) has reduced it, per spec §4.6's JLS-6.5.2-style
// algorithm: {SingleAmbiguousName, ExpressionName, TypeName, PackageName,
// MethodName}. NameUnclassified is the zero value, the state every name
// node starts in before resolution.
type NameClass int

const (
	NameUnclassified NameClass = iota
	NameSingleAmbiguous
	NameExpression
	NameType
	NamePackage
	NameMethod
)

// MemberName is an unqualified or post-classification identifier reference:
// a SingleAmbiguousName before the Expression Resolver runs (§4.6), or a
// bound ExpressionName/TypeName/PackageName leaf afterward. Class and
// Resolved are written in place by the Expression Resolver ("writing the
// resolved decl onto each underlying node", §4.6); Package is populated
// instead of Resolved when Class is NamePackage.
type MemberName struct {
	exprNodeBase
	Name     string
	Class    NameClass
	Resolved Decl
	Package  *Package
}

func (n *MemberName) String() string { return n.Name }
func (n *MemberName) Kind() NodeKind { return NodeMemberName }
func (n *MemberName) Arity() int     { return 0 }

// MethodName is a deferred method-name node: emitted by the Expression
// Resolver for the Id half of Q.Id when Id turns out to name a method
// (§4.6's "deferred method names"), or used directly for an unqualified
// call's callee. Receiver is set when the call is qualified (Q.Id(...))
// and Q classified as ExpressionName (instance call) or TypeName (static
// call via a class name); it is nil for an unqualified call.
type MethodName struct {
	exprNodeBase
	Name     string
	Resolved *MethodDecl
	Receiver *MemberName
}

func (n *MethodName) String() string { return n.Name }
func (n *MethodName) Kind() NodeKind { return NodeMethodName }
func (n *MethodName) Arity() int     { return 0 }

// ThisNode is the `this` keyword, referring to the enclosing instance.
type ThisNode struct{ exprNodeBase }

func (n *ThisNode) String() string { return "this" }
func (n *ThisNode) Kind() NodeKind { return NodeThis }
func (n *ThisNode) Arity() int     { return 0 }

// BinaryOperator enumerates the binary operators the subset language
// supports.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogicalAnd
	OpLogicalOr
)

// BinaryOp pops rhs then lhs (reverse of push order, since rhs is pushed
// last and so sits on top of the stack) and combines them.
type BinaryOp struct {
	exprNodeBase
	Op BinaryOperator
}

func (n *BinaryOp) String() string { return "binop" }
func (n *BinaryOp) Kind() NodeKind { return NodeBinaryOp }
func (n *BinaryOp) Arity() int     { return 2 }

// UnaryOperator enumerates the unary operators the subset language
// supports.
type UnaryOperator int

const (
	OpNeg UnaryOperator = iota
	OpNot
)

type UnaryOp struct {
	exprNodeBase
	Op UnaryOperator
}

func (n *UnaryOp) String() string { return "unop" }
func (n *UnaryOp) Kind() NodeKind { return NodeUnaryOp }
func (n *UnaryOp) Arity() int     { return 1 }

// MemberAccess pops a field-name slot, then a receiver slot, per §4.4's
// "member access → pop field, then receiver".
type MemberAccess struct{ exprNodeBase }

func (n *MemberAccess) String() string { return "." }
func (n *MemberAccess) Kind() NodeKind { return NodeMemberAccess }
func (n *MemberAccess) Arity() int     { return 2 }

// MethodInvocation's Nargs is the total number of stack slots it consumes:
// the method-name slot plus (Nargs-1) argument slots. See §13's Open
// Question decision — a zero-argument call has Nargs=1, never Nargs=0.
type MethodInvocation struct {
	exprNodeBase
	Nargs int
}

func (n *MethodInvocation) String() string { return "call" }
func (n *MethodInvocation) Kind() NodeKind { return NodeMethodInvocation }
func (n *MethodInvocation) Arity() int     { return n.Nargs }

// ClassInstanceCreation mirrors MethodInvocation's arity convention: Nargs
// stack slots total, the last one being the type name.
type ClassInstanceCreation struct {
	exprNodeBase
	Nargs int
}

func (n *ClassInstanceCreation) String() string { return "new" }
func (n *ClassInstanceCreation) Kind() NodeKind { return NodeClassInstanceCreation }
func (n *ClassInstanceCreation) Arity() int     { return n.Nargs }

// ArrayInstanceCreation pops size, then element type.
type ArrayInstanceCreation struct{ exprNodeBase }

func (n *ArrayInstanceCreation) String() string { return "new[]" }
func (n *ArrayInstanceCreation) Kind() NodeKind { return NodeArrayInstanceCreation }
func (n *ArrayInstanceCreation) Arity() int     { return 2 }

// ArrayAccess pops index, then array.
type ArrayAccess struct{ exprNodeBase }

func (n *ArrayAccess) String() string { return "[]" }
func (n *ArrayAccess) Kind() NodeKind { return NodeArrayAccess }
func (n *ArrayAccess) Arity() int     { return 2 }

// Cast pops value, then the target type.
type Cast struct{ exprNodeBase }

func (n *Cast) String() string { return "cast" }
func (n *Cast) Kind() NodeKind { return NodeCast }
func (n *Cast) Arity() int     { return 2 }

// TypeNode is a leaf that carries a Type literally rather than a dotted
// identifier chain. It is how the "type" stack slot required by Cast,
// ClassInstanceCreation, and ArrayInstanceCreation (spec §4.4: "pop size,
// pop element type"; "pop value, pop type") is encoded when the type is
// primitive (there is no identifier for the Expression Resolver to
// reclassify) or already fully known from the grammar. A TypeNode naming a
// ReferenceType may still have an unresolved Identifier chain; the
// Expression Resolver resolves it the same way the Name Resolver resolves
// any other ReferenceType, since the grammar gives the Expression Resolver
// no other path to a class's Decl for an expression-position type operand.
type TypeNode struct {
	exprNodeBase
	Typ Type
}

func (n *TypeNode) String() string { return n.Typ.String() }
func (n *TypeNode) Kind() NodeKind { return NodeType }
func (n *TypeNode) Arity() int     { return 0 }

// NewTypeNode wraps t as an expression-position type operand.
func NewTypeNode(t Type, rng source.Range) *TypeNode {
	n := &TypeNode{Typ: t}
	n.rng = rng
	return n
}

// ExprNodeList is the reverse-Polish encoding of one expression: consuming
// operands left-to-right and applying operators in order yields exactly
// one value with no stack underflow and a terminal stack size of 1 (spec
// §3's RPN invariant).
//
// Every ExprNodeList carries a const-lock counter per node to detect
// concurrent mutation during evaluation (spec §4.4): Lock locks every node,
// Unlock is called by the evaluator as each node is consumed, and
// AssertUnlocked checks every lock reached zero. Because the core's
// execution model is strictly single-threaded (spec §5), this is an
// assertion mechanism, not real synchronization.
type ExprNodeList struct {
	Nodes []ExprNode
	locks []int
}

// NewExprNodeList wraps a postfix node sequence.
func NewExprNodeList(nodes []ExprNode) *ExprNodeList {
	return &ExprNodeList{Nodes: nodes}
}

// Lock increments every node's lock counter; called once at the start of an
// evaluation pass.
func (l *ExprNodeList) Lock() {
	if l.locks == nil {
		l.locks = make([]int, len(l.Nodes))
	}
	for i := range l.locks {
		l.locks[i]++
	}
}

// Unlock decrements node i's lock counter as it is consumed by the
// evaluator.
func (l *ExprNodeList) Unlock(i int) {
	l.locks[i]--
}

// AssertUnlocked panics (a Fatal error per spec §7) if any node's lock
// counter is nonzero, i.e. the evaluation did not consume every node
// exactly once.
func (l *ExprNodeList) AssertUnlocked() {
	for i, c := range l.locks {
		if c != 0 {
			panic(exprLockError{index: i, count: c})
		}
	}
}

type exprLockError struct {
	index int
	count int
}

func (e exprLockError) Error() string {
	return "expression node const-lock mismatch"
}
