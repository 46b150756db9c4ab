package tir

// Use records that User consumes Producer's value at operand position
// Operand. It is a back-reference only: the user set it belongs to does
// not own the producer (spec §3's Ownership note).
type Use struct {
	User    Instruction
	Operand int
}

// Value is a node with a Type, an optional name, and an ordered set of
// users. Producer nodes (Instruction) additionally carry an ordered list of
// operands; leaf values (Constant, Argument, GlobalVariable, Function,
// BasicBlock) do not.
type Value interface {
	Type() Type
	Name() string
	SetName(name string)
	Uses() []Use
	// ReplaceAllUsesWith rewrites every current user's matching operand to
	// newVal, in the same operand position, then clears this value's own
	// user set. See spec §8: "no user of v remains; every prior user now
	// has w as an operand in the same position."
	ReplaceAllUsesWith(newVal Value)
}

// user is the unexported half of the def/use contract: it lets Instruction
// attach/detach itself from an arbitrary Value's user set without every
// concrete Value type needing bespoke plumbing.
type user interface {
	addUse(u Instruction, operand int)
	removeUse(u Instruction, operand int)
}

// valueBase is embedded by every concrete Value implementation.
type valueBase struct {
	typ   Type
	name  string
	users []Use
}

func (v *valueBase) Type() Type      { return v.typ }
func (v *valueBase) Name() string    { return v.name }
func (v *valueBase) SetName(n string) { v.name = n }
func (v *valueBase) Uses() []Use     { return v.users }

func (v *valueBase) addUse(u Instruction, operand int) {
	v.users = append(v.users, Use{User: u, Operand: operand})
}

func (v *valueBase) removeUse(u Instruction, operand int) {
	for i, use := range v.users {
		if use.User == u && use.Operand == operand {
			v.users = append(v.users[:i], v.users[i+1:]...)
			return
		}
	}
}

// ReplaceAllUsesWith is implemented once on valueBase and promoted to every
// concrete Value type. It snapshots the user list before mutating it, since
// each SetOperand call below detaches v from its own user set as a side
// effect.
func (v *valueBase) ReplaceAllUsesWith(newVal Value) {
	uses := append([]Use(nil), v.users...)
	for _, u := range uses {
		u.User.SetOperand(u.Operand, newVal)
	}
}

// Constant is an immediate value of integer or null-pointer type.
type Constant struct {
	valueBase
	IntVal int64
}

// NewIntConstant returns an interned-type, freestanding integer constant.
// Constants are not themselves interned (unlike Type): spec §3 only
// requires Type interning, and distinct constant nodes with the same value
// are harmless since they're immutable leaves.
func NewIntConstant(ty *IntegerType, val int64) *Constant {
	return &Constant{valueBase: valueBase{typ: ty}, IntVal: val}
}

// NewNullConstant returns a null pointer constant, used by the Code
// Generator for string/null literals and as array-element storage
// placeholders (spec §12 item 2's String/array lowering has no backing
// allocator in core scope, so a null data pointer stands in for it).
func NewNullConstant(ctx *Context) *Constant {
	return &Constant{valueBase: valueBase{typ: ctx.PointerTy()}}
}

// Argument is one formal parameter of a Function, identified by its
// positional Index.
type Argument struct {
	valueBase
	Index  int
	Parent *Function
}

// GlobalVariable is a module-level storage location (used for static
// fields, spec §4.9). Its Type is always a PointerType to the variable's
// declared type.
type GlobalVariable struct {
	valueBase
}
