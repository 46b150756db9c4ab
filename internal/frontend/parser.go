package frontend

import (
	"fmt"
	"strconv"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/joos1w/joosc/internal/source"
	"github.com/joos1w/joosc/pkg/ast"
)

// maxInt32Abs is the sign-aware boundary spec §8 describes: 2147483647
// parses as an ordinary positive literal; 2147483648 parses only as the
// immediate operand of a unary minus, yielding -2147483648.
const maxInt32Abs = 2147483648

// Parser builds one ast.CompilationUnit from a fully tokenized source file.
// It is grounded on the teacher's internal/parser recursive-descent shape
// (a token cursor, parseX per grammar production) adapted to the
// Java-like subset grammar spec §3 describes and restricted to exactly what
// pkg/ast can represent.
type Parser struct {
	toks []Token
	pos  int
	file source.FileId
	diag *diag.Engine
	// pkg is the compilation unit's package path, set once parseCompilationUnit
	// reads the (optional) package declaration, ahead of parsing the body.
	pkg []string
}

// ParseFile tokenizes src and parses it into a single compilation unit.
// file is the FileId the resulting ranges and diagnostics are tagged with.
func ParseFile(file source.FileId, src []byte, diagEngine *diag.Engine) (*ast.CompilationUnit, error) {
	lex := New(src)
	var toks []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			break
		}
	}
	p := &Parser{toks: toks, file: file, diag: diagEngine}
	return p.parseCompilationUnit()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) save() int   { return p.pos }
func (p *Parser) restore(n int) { p.pos = n }

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) rng(start source.Position) source.Range {
	return source.NewRange(p.file, start, p.cur().Pos)
}

func (p *Parser) isPunct(lit string) bool {
	t := p.cur()
	return t.Type == TokPunct && t.Lit == lit
}

func (p *Parser) isKeyword(lit string) bool {
	t := p.cur()
	return t.Type == TokKeyword && t.Lit == lit
}

func (p *Parser) expectPunct(lit string) error {
	if !p.isPunct(lit) {
		return p.errf("expected %q, got %q", lit, p.cur().Lit)
	}
	p.advance()
	return nil
}

func (p *Parser) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	tok := p.cur()
	loc := source.NewRange(p.file, tok.Pos, tok.Pos)
	if p.diag != nil {
		p.diag.ReportError(loc, "%s", msg)
	}
	return fmt.Errorf("%s: %s", loc, msg)
}

// parseQualifiedName reads a dotted identifier chain: Ident ('.' Ident)*.
func (p *Parser) parseQualifiedName() ([]string, error) {
	if p.cur().Type != TokIdent && p.cur().Type != TokKeyword {
		return nil, p.errf("expected identifier, got %q", p.cur().Lit)
	}
	names := []string{p.advance().Lit}
	for p.isPunct(".") {
		p.advance()
		if p.isPunct("*") {
			break
		}
		names = append(names, p.advance().Lit)
	}
	return names, nil
}

// parseCompilationUnit parses: ('package' QualifiedName ';')? ImportDecl*
// TypeDecl, per spec §3's CompilationUnit shape.
func (p *Parser) parseCompilationUnit() (*ast.CompilationUnit, error) {
	start := p.cur().Pos
	var pkg []string
	if p.isKeyword("package") {
		p.advance()
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		pkg = name
		p.pkg = name
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}

	var imports []ast.Import
	for p.isKeyword("import") {
		p.advance()
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		onDemand := false
		if p.isPunct(".") {
			p.advance()
			if err := p.expectPunct("*"); err != nil {
				return nil, err
			}
			onDemand = true
		} else if p.isPunct("*") {
			// parseQualifiedName stopped right before the trailing ".*"
			p.advance()
			onDemand = true
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		imports = append(imports, ast.Import{Qualified: name, OnDemand: onDemand})
	}

	body, err := p.parseTypeDecl(nil)
	if err != nil {
		return nil, err
	}
	cu := ast.NewCompilationUnit(p.file, pkg, imports, body, p.rng(start))
	return cu, nil
}

func (p *Parser) canonicalName(pkg []string, simple string) string {
	if len(pkg) == 0 {
		return simple
	}
	out := ""
	for _, seg := range pkg {
		out += seg + "."
	}
	return out + simple
}

func (p *Parser) parseModifiers() ast.Modifiers {
	var m ast.Modifiers
	for {
		switch {
		case p.isKeyword("public"):
			m.Visibility = ast.VisibilityPublic
			p.advance()
		case p.isKeyword("protected"):
			m.Visibility = ast.VisibilityProtected
			p.advance()
		case p.isKeyword("static"):
			m.Static = true
			p.advance()
		case p.isKeyword("abstract"):
			m.Abstract = true
			p.advance()
		case p.isKeyword("final"):
			m.Final = true
			p.advance()
		case p.isKeyword("native"):
			m.Native = true
			p.advance()
		default:
			return m
		}
	}
}

// parseTypeDecl parses a ClassDecl or InterfaceDecl, the CompilationUnit's
// single required top-level body.
func (p *Parser) parseTypeDecl(parent ast.DeclContext) (ast.Decl, error) {
	start := p.cur().Pos
	mods := p.parseModifiers()

	switch {
	case p.isKeyword("class"):
		p.advance()
		return p.parseClassBody(start, mods, parent)
	case p.isKeyword("interface"):
		p.advance()
		return p.parseInterfaceBody(start, mods, parent)
	default:
		return nil, p.errf("expected 'class' or 'interface', got %q", p.cur().Lit)
	}
}

func (p *Parser) parseClassBody(start source.Position, mods ast.Modifiers, parent ast.DeclContext) (*ast.ClassDecl, error) {
	name := p.advance().Lit
	canonical := p.canonicalName(p.pkg, name)
	cls := ast.NewClassDecl(name, canonical, parent, source.Range{})
	cls.Modifiers = mods

	if p.isKeyword("extends") {
		p.advance()
		ref, err := p.parseReferenceType()
		if err != nil {
			return nil, err
		}
		cls.SuperClass = ref
	}
	if p.isKeyword("implements") {
		p.advance()
		for {
			ref, err := p.parseReferenceType()
			if err != nil {
				return nil, err
			}
			cls.Interfaces = append(cls.Interfaces, ref)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}

	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.isPunct("}") && p.cur().Type != TokEOF {
		if err := p.parseClassMember(cls); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if len(cls.Constructors) == 0 {
		return nil, p.errf("class %s has zero constructors", name)
	}
	if err := mods.Validate(true, false, false, nil, nil); err != nil {
		p.diag.ReportError(cls.Pos(), "class %s: %s", name, err)
	}
	return cls, nil
}

func (p *Parser) parseInterfaceBody(start source.Position, mods ast.Modifiers, parent ast.DeclContext) (*ast.InterfaceDecl, error) {
	name := p.advance().Lit
	canonical := p.canonicalName(p.pkg, name)
	iface := ast.NewInterfaceDecl(name, canonical, parent, source.Range{})
	iface.Modifiers = mods

	if p.isKeyword("extends") {
		p.advance()
		for {
			ref, err := p.parseReferenceType()
			if err != nil {
				return nil, err
			}
			iface.Extends = append(iface.Extends, ref)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}

	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.isPunct("}") && p.cur().Type != TokEOF {
		mstart := p.cur().Pos
		mmods := p.parseModifiers()
		typ, err := p.parseTypeOrVoid()
		if err != nil {
			return nil, err
		}
		mname := p.advance().Lit
		m := ast.NewMethodDecl(mname, canonical+"."+mname, iface, source.Range{})
		m.Modifiers = mmods
		if _, isVoid := typ.(*ast.BuiltInType); !isVoid || typ.(*ast.BuiltInType).Kind != ast.BuiltInVoid {
			m.ReturnType = typ
		}
		params, err := p.parseParams(m)
		if err != nil {
			return nil, err
		}
		m.Parameters = params
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		m.Modifiers.Abstract = true
		if err := m.Modifiers.Validate(false, false, true, m.ReturnType, m.Parameters); err != nil {
			p.diag.ReportError(m.Pos(), "method %s: %s", mname, err)
		}
		iface.Methods = append(iface.Methods, m)
		_ = mstart
	}
	if err := mods.Validate(false, true, false, nil, nil); err != nil {
		p.diag.ReportError(iface.Pos(), "interface %s: %s", name, err)
	}
	return iface, p.expectPunct("}")
}

func (p *Parser) parseClassMember(cls *ast.ClassDecl) error {
	mods := p.parseModifiers()

	// Constructor: Ident '(' immediately matching the class's own name.
	if p.cur().Type == TokIdent && p.cur().Lit == cls.SimpleName() && p.toks[p.pos+1].Type == TokPunct && p.toks[p.pos+1].Lit == "(" {
		name := p.advance().Lit
		m := ast.NewMethodDecl("<init>", cls.CanonicalName()+".<init>", cls, source.Range{})
		m.IsConstructor = true
		m.Modifiers = mods
		params, err := p.parseParams(m)
		if err != nil {
			return err
		}
		m.Parameters = params
		body, err := p.parseBlock(m)
		if err != nil {
			return err
		}
		m.Body = body
		_ = name
		cls.Constructors = append(cls.Constructors, m)
		return nil
	}

	typ, err := p.parseTypeOrVoid()
	if err != nil {
		return err
	}
	name := p.advance().Lit

	if p.isPunct("(") {
		m := ast.NewMethodDecl(name, cls.CanonicalName()+"."+name, cls, source.Range{})
		m.Modifiers = mods
		if bt, ok := typ.(*ast.BuiltInType); !ok || bt.Kind != ast.BuiltInVoid {
			m.ReturnType = typ
		}
		params, err := p.parseParams(m)
		if err != nil {
			return err
		}
		m.Parameters = params
		if m.Modifiers.Abstract || m.Modifiers.Native {
			if err := p.expectPunct(";"); err != nil {
				return err
			}
		} else {
			body, err := p.parseBlock(m)
			if err != nil {
				return err
			}
			m.Body = body
		}
		if err := m.Modifiers.Validate(false, false, true, m.ReturnType, m.Parameters); err != nil {
			p.diag.ReportError(m.Pos(), "method %s: %s", name, err)
		}
		cls.Methods = append(cls.Methods, m)
		return nil
	}

	// Field.
	field := ast.NewFieldDecl(name, cls.CanonicalName()+"."+name, typ, cls, source.Range{})
	field.Modifiers = mods
	if p.isPunct("=") {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return err
		}
		field.Init = init
	}
	if err := p.expectPunct(";"); err != nil {
		return err
	}
	cls.Fields = append(cls.Fields, field)
	return nil
}

func (p *Parser) parseParams(parent ast.DeclContext) ([]*ast.Parameter, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	for !p.isPunct(")") {
		start := p.cur().Pos
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name := p.advance().Lit
		params = append(params, ast.NewParameter(name, typ, parent, p.rng(start)))
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseTypeOrVoid parses a method's return type, where 'void' is valid and
// distinct from every reference/array/primitive type.
func (p *Parser) parseTypeOrVoid() (ast.Type, error) {
	if p.isKeyword("void") {
		p.advance()
		return &ast.BuiltInType{Kind: ast.BuiltInVoid}, nil
	}
	return p.parseType()
}

var primitiveKeywords = map[string]ast.BuiltIn{
	"boolean": ast.BuiltInBoolean,
	"byte":    ast.BuiltInByte,
	"char":    ast.BuiltInChar,
	"short":   ast.BuiltInShort,
	"int":     ast.BuiltInInt,
	"String":  ast.BuiltInString,
}

func (p *Parser) parseType() (ast.Type, error) {
	var base ast.Type
	if kind, ok := primitiveKeywords[p.cur().Lit]; ok && p.cur().Type == TokKeyword {
		p.advance()
		base = &ast.BuiltInType{Kind: kind}
	} else {
		ref, err := p.parseReferenceType()
		if err != nil {
			return nil, err
		}
		base = ref
	}
	if p.isPunct("[]") {
		p.advance()
		return &ast.ArrayType{Element: base}, nil
	}
	return base, nil
}

func (p *Parser) parseReferenceType() (*ast.ReferenceType, error) {
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	return &ast.ReferenceType{Identifier: name}, nil
}

// parseBlock parses a brace-delimited statement sequence, registering every
// local it finds into parent method's Locals per spec §4.9's "one alloca
// per local declaration" contract.
func (p *Parser) parseBlock(method *ast.MethodDecl) (*ast.BlockStmt, error) {
	start := p.cur().Pos
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	block := ast.NewBlockStmt(method, source.Range{})
	for !p.isPunct("}") && p.cur().Type != TokEOF {
		stmt, err := p.parseStatement(method, block)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	_ = start
	return block, nil
}

func (p *Parser) parseStatement(method *ast.MethodDecl, scope *ast.BlockStmt) (ast.Statement, error) {
	switch {
	case p.isPunct("{"):
		return p.parseBlock(method)
	case p.isPunct(";"):
		p.advance()
		return &ast.NullStmt{}, nil
	case p.isKeyword("if"):
		return p.parseIf(method, scope)
	case p.isKeyword("while"):
		return p.parseWhile(method, scope)
	case p.isKeyword("for"):
		return p.parseFor(method, scope)
	case p.isKeyword("return"):
		p.advance()
		var val *ast.ExprNodeList
		if !p.isPunct(";") {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			val = v
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: val}, nil
	default:
		if p.looksLikeLocalDecl() {
			return p.parseLocalDecl(method, scope)
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr}, nil
	}
}

// looksLikeLocalDecl peeks whether the upcoming tokens form `Type Ident`,
// the local-variable-declaration shape, without consuming them.
func (p *Parser) looksLikeLocalDecl() bool {
	if _, ok := primitiveKeywords[p.cur().Lit]; ok && p.cur().Type == TokKeyword {
		return true
	}
	if p.cur().Type != TokIdent {
		return false
	}
	mark := p.save()
	defer p.restore(mark)
	if _, err := p.parseType(); err != nil {
		return false
	}
	return p.cur().Type == TokIdent
}

func (p *Parser) parseLocalDecl(method *ast.MethodDecl, scope *ast.BlockStmt) (ast.Statement, error) {
	start := p.cur().Pos
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name := p.advance().Lit
	v := ast.NewVarDecl(name, typ, scope, p.rng(start))
	if p.isPunct("=") {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		v.Init = init
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	scope.Declare(v)
	method.Locals = append(method.Locals, v)
	return &ast.DeclStmt{Var: v}, nil
}

func (p *Parser) parseIf(method *ast.MethodDecl, scope *ast.BlockStmt) (ast.Statement, error) {
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement(method, scope)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	if p.isKeyword("else") {
		p.advance()
		els, err := p.parseStatement(method, scope)
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *Parser) parseWhile(method *ast.MethodDecl, scope *ast.BlockStmt) (ast.Statement, error) {
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement(method, scope)
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor(method *ast.MethodDecl, scope *ast.BlockStmt) (ast.Statement, error) {
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	stmt := &ast.ForStmt{}
	if !p.isPunct(";") {
		if p.looksLikeLocalDecl() {
			init, err := p.parseLocalDecl(method, scope)
			if err != nil {
				return nil, err
			}
			stmt.Init = init
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(";"); err != nil {
				return nil, err
			}
			stmt.Init = &ast.ExprStmt{Expr: expr}
		}
	} else {
		p.advance()
	}
	if !p.isPunct(";") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if !p.isPunct(")") {
		update, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement(method, scope)
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// --- Expressions: precedence-climbing, emitted directly in postfix order
// into an ast.ExprNodeList, per spec §3/§4.4's RPN encoding. ---

func (p *Parser) parseExpr() (*ast.ExprNodeList, error) {
	var nodes []ast.ExprNode
	if err := p.parseOr(&nodes); err != nil {
		return nil, err
	}
	return ast.NewExprNodeList(nodes), nil
}

func (p *Parser) parseOr(nodes *[]ast.ExprNode) error {
	if err := p.parseAnd(nodes); err != nil {
		return err
	}
	for p.isPunct("||") {
		p.advance()
		if err := p.parseAnd(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: ast.OpLogicalOr})
	}
	return nil
}

func (p *Parser) parseAnd(nodes *[]ast.ExprNode) error {
	if err := p.parseEquality(nodes); err != nil {
		return err
	}
	for p.isPunct("&&") {
		p.advance()
		if err := p.parseEquality(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: ast.OpLogicalAnd})
	}
	return nil
}

var equalityOps = map[string]ast.BinaryOperator{"==": ast.OpEq, "!=": ast.OpNe}

func (p *Parser) parseEquality(nodes *[]ast.ExprNode) error {
	if err := p.parseRelational(nodes); err != nil {
		return err
	}
	for {
		op, ok := equalityOps[p.cur().Lit]
		if !ok || p.cur().Type != TokPunct {
			return nil
		}
		p.advance()
		if err := p.parseRelational(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: op})
	}
}

var relationalOps = map[string]ast.BinaryOperator{"<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe}

func (p *Parser) parseRelational(nodes *[]ast.ExprNode) error {
	if err := p.parseAdditive(nodes); err != nil {
		return err
	}
	for {
		op, ok := relationalOps[p.cur().Lit]
		if !ok || p.cur().Type != TokPunct {
			return nil
		}
		p.advance()
		if err := p.parseAdditive(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: op})
	}
}

var additiveOps = map[string]ast.BinaryOperator{"+": ast.OpAdd, "-": ast.OpSub}

func (p *Parser) parseAdditive(nodes *[]ast.ExprNode) error {
	if err := p.parseMultiplicative(nodes); err != nil {
		return err
	}
	for {
		op, ok := additiveOps[p.cur().Lit]
		if !ok || p.cur().Type != TokPunct {
			return nil
		}
		p.advance()
		if err := p.parseMultiplicative(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: op})
	}
}

var multiplicativeOps = map[string]ast.BinaryOperator{"*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod}

func (p *Parser) parseMultiplicative(nodes *[]ast.ExprNode) error {
	if err := p.parseUnary(nodes); err != nil {
		return err
	}
	for {
		op, ok := multiplicativeOps[p.cur().Lit]
		if !ok || p.cur().Type != TokPunct {
			return nil
		}
		p.advance()
		if err := p.parseUnary(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.BinaryOp{Op: op})
	}
}

func (p *Parser) parseUnary(nodes *[]ast.ExprNode) error {
	if p.isPunct("-") {
		p.advance()
		if p.cur().Type == TokIntLit {
			lit, err := p.parseIntLiteralToken(true)
			if err != nil {
				return err
			}
			*nodes = append(*nodes, lit)
			return nil
		}
		if err := p.parseUnary(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.UnaryOp{Op: ast.OpNeg})
		return nil
	}
	if p.isPunct("!") {
		p.advance()
		if err := p.parseUnary(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.UnaryOp{Op: ast.OpNot})
		return nil
	}
	if p.isPunct("(") && p.castAhead() {
		p.advance()
		typ, err := p.parseType()
		if err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
		*nodes = append(*nodes, ast.NewTypeNode(typ, source.NewRange(p.file, p.cur().Pos, p.cur().Pos)))
		if err := p.parseUnary(nodes); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.Cast{})
		return nil
	}
	return p.parsePostfix(nodes)
}

// castAhead reports whether the parenthesized group starting at the
// current '(' is a cast, using the standard Java disambiguation: try to
// parse a Type followed by ')' followed by a token that can start a unary
// expression. Backtracks unconditionally; it never consumes input.
func (p *Parser) castAhead() bool {
	mark := p.save()
	defer p.restore(mark)
	p.advance() // '('
	if _, err := p.parseType(); err != nil {
		return false
	}
	if !p.isPunct(")") {
		return false
	}
	p.advance()
	switch p.cur().Type {
	case TokIdent, TokIntLit, TokStringLit, TokCharLit:
		return true
	case TokKeyword:
		return p.cur().Lit == "this" || p.cur().Lit == "new" || p.cur().Lit == "true" || p.cur().Lit == "false" || p.cur().Lit == "null"
	case TokPunct:
		return p.cur().Lit == "("
	default:
		return false
	}
}

func (p *Parser) parseIntLiteralToken(negated bool) (*ast.LiteralNode, error) {
	tok := p.advance()
	val, err := strconv.ParseInt(tok.Lit, 10, 64)
	if err != nil {
		return nil, p.errf("invalid integer literal %q", tok.Lit)
	}
	if negated {
		if val > maxInt32Abs {
			return nil, p.errf("integer literal %d out of 32-bit range", val)
		}
		return &ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: -val, NegatedByUnaryMinus: true}, nil
	}
	if val >= maxInt32Abs {
		return nil, p.errf("integer literal %d out of 32-bit range", val)
	}
	return &ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: val}, nil
}

// parsePostfix parses a primary expression followed by any chain of
// '.' Ident (field access or deferred method name), '(' args ')' (call),
// and '[' expr ']' (array access), emitting each in RPN order as it closes.
func (p *Parser) parsePostfix(nodes *[]ast.ExprNode) error {
	if err := p.parsePrimary(nodes); err != nil {
		return err
	}
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			name := p.advance().Lit
			if p.isPunct("(") {
				*nodes = append(*nodes, &ast.MethodName{Name: name})
				*nodes = append(*nodes, &ast.MemberAccess{})
				n, err := p.parseArgs(nodes)
				if err != nil {
					return err
				}
				*nodes = append(*nodes, &ast.MethodInvocation{Nargs: n + 1})
			} else {
				*nodes = append(*nodes, &ast.MemberName{Name: name})
				*nodes = append(*nodes, &ast.MemberAccess{})
			}
		case p.isPunct("["):
			p.advance()
			if err := p.parseOr(nodes); err != nil {
				return err
			}
			if err := p.expectPunct("]"); err != nil {
				return err
			}
			*nodes = append(*nodes, &ast.ArrayAccess{})
		default:
			return nil
		}
	}
}

// parseArgs parses '(' (Expr (',' Expr)*)? ')', appending each argument's
// nodes in order, and returns the argument count.
func (p *Parser) parseArgs(nodes *[]ast.ExprNode) (int, error) {
	if err := p.expectPunct("("); err != nil {
		return 0, err
	}
	n := 0
	for !p.isPunct(")") {
		if err := p.parseOr(nodes); err != nil {
			return 0, err
		}
		n++
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Parser) parsePrimary(nodes *[]ast.ExprNode) error {
	tok := p.cur()
	switch {
	case tok.Type == TokIntLit:
		lit, err := p.parseIntLiteralToken(false)
		if err != nil {
			return err
		}
		*nodes = append(*nodes, lit)
		return nil
	case tok.Type == TokStringLit:
		p.advance()
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralString, Value: tok.Lit})
		return nil
	case tok.Type == TokCharLit:
		p.advance()
		r := byte(0)
		if len(tok.Lit) > 0 {
			r = tok.Lit[0]
		}
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralChar, Value: r})
		return nil
	case p.isKeyword("true"):
		p.advance()
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralBoolean, Value: true})
		return nil
	case p.isKeyword("false"):
		p.advance()
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralBoolean, Value: false})
		return nil
	case p.isKeyword("null"):
		p.advance()
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralNull})
		return nil
	case p.isKeyword("this"):
		p.advance()
		*nodes = append(*nodes, &ast.ThisNode{})
		return nil
	case p.isKeyword("new"):
		return p.parseNew(nodes)
	case p.isPunct("("):
		p.advance()
		if err := p.parseOr(nodes); err != nil {
			return err
		}
		return p.expectPunct(")")
	case tok.Type == TokIdent:
		p.advance()
		if p.isPunct("(") {
			*nodes = append(*nodes, &ast.MethodName{Name: tok.Lit})
			n, err := p.parseArgs(nodes)
			if err != nil {
				return err
			}
			*nodes = append(*nodes, &ast.MethodInvocation{Nargs: n + 1})
			return nil
		}
		*nodes = append(*nodes, &ast.MemberName{Name: tok.Lit})
		return nil
	default:
		return p.errf("unexpected token %q in expression", tok.Lit)
	}
}

// parseNew handles both 'new' ReferenceType '(' args ')' (object creation)
// and 'new' PrimitiveOrReferenceType '[' expr ']' (array creation).
func (p *Parser) parseNew(nodes *[]ast.ExprNode) error {
	p.advance() // 'new'
	typ, err := p.parseTypeOrVoid()
	if err != nil {
		return err
	}
	// parseType already consumes a trailing '[]' as ArrayType, so 'new T[]'
	// with an empty bracket pair arrives here as an ArrayType and becomes an
	// array creation of size 0. A '[' left after a bare (non-array) type
	// starts the sized form, 'new T[expr]', handled below.
	if arr, ok := typ.(*ast.ArrayType); ok {
		*nodes = append(*nodes, ast.NewTypeNode(arr.Element, source.NewRange(p.file, p.cur().Pos, p.cur().Pos)))
		*nodes = append(*nodes, &ast.LiteralNode{LiteralKind: ast.LiteralInt, Value: int64(0)})
		*nodes = append(*nodes, &ast.ArrayInstanceCreation{})
		return nil
	}
	if p.isPunct("[") {
		p.advance()
		*nodes = append(*nodes, ast.NewTypeNode(typ, source.NewRange(p.file, p.cur().Pos, p.cur().Pos)))
		if err := p.parseOr(nodes); err != nil {
			return err
		}
		if err := p.expectPunct("]"); err != nil {
			return err
		}
		*nodes = append(*nodes, &ast.ArrayInstanceCreation{})
		return nil
	}
	*nodes = append(*nodes, ast.NewTypeNode(typ, source.NewRange(p.file, p.cur().Pos, p.cur().Pos)))
	n, err := p.parseArgs(nodes)
	if err != nil {
		return err
	}
	*nodes = append(*nodes, &ast.ClassInstanceCreation{Nargs: n + 1})
	return nil
}
