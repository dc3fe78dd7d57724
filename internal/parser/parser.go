// Package parser is a recursive-descent parser producing a typed ast.Lib
// directly from a token slice, folding in the original's separate semantic
// pass: every expression carries its resolved type and every implicit
// conversion or pointer scaling is applied as each node is built.
package parser

import (
	"github.com/gmofishsauce/tc/internal/ast"
	"github.com/gmofishsauce/tc/internal/diag"
	"github.com/gmofishsauce/tc/internal/symtab"
	"github.com/gmofishsauce/tc/internal/token"
	"github.com/gmofishsauce/tc/internal/types"
)

// Parser walks a fixed token slice with a single cursor, matching the
// original's vec-of-tokens-plus-index scheme rather than a streaming lexer
// hookup, since the whole file is lexed up front.
type Parser struct {
	file    string
	toks    []token.Token
	current int
}

// New creates a Parser over a complete, EOF-terminated token slice.
func New(file string, toks []token.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

func (p *Parser) errorAt(t token.Token, format string, args ...any) *diag.Error {
	return diag.At(p.file, t.Line, t.Column, format, args...)
}

func (p *Parser) peek() token.Token { return p.toks[p.current] }

func (p *Parser) lookahead(n int) token.Token {
	i := p.current + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) prev() token.Token { return p.toks[p.current-1] }

func (p *Parser) advance() token.Token {
	t := p.toks[p.current]
	p.current++
	return t
}

func (p *Parser) optional(tag token.Tag) bool {
	if p.peek().Tag == tag {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tag token.Tag) (token.Token, error) {
	t := p.advance()
	if t.Tag != tag {
		return t, p.tokenError(t, tag)
	}
	return t, nil
}

func (p *Parser) tokenError(t token.Token, expected token.Tag) *diag.Error {
	if expected != 0 {
		return p.errorAt(t, "expected '%s' (%d), got '%s' (%d).",
			token.Describe(expected), expected, token.Describe(t.Tag), t.Tag)
	}
	return p.errorAt(t, "invalid token '%s'.", token.Describe(t.Tag))
}

func (p *Parser) typeError(t token.Token, from, to types.Type) *diag.Error {
	return p.errorAt(t, "can't convert %s to %s.", types.String(from), types.String(to))
}

// Parse consumes the whole token stream and produces a Lib: the root scope
// (globals, externs, strings, function signatures) plus the ordered function
// bodies.
func Parse(file string, toks []token.Token) (*ast.Lib, error) {
	p := New(file, toks)
	lib := &ast.Lib{Root: symtab.New(nil)}
	for p.peek().Tag != token.EOF {
		lib.Preamble += p.peek().Asm
		switch p.peek().Tag {
		case token.Extern:
			if err := p.parseExternFunc(lib.Root); err != nil {
				return nil, err
			}
		case token.Var:
			if _, err := p.parseDeclStmt(lib.Root); err != nil {
				return nil, err
			}
		case token.Fn:
			fn, err := p.parseFunc(lib.Root)
			if err != nil {
				return nil, err
			}
			lib.Funcs = append(lib.Funcs, fn)
		default:
			return nil, p.tokenError(p.peek(), 0)
		}
	}
	lib.Preamble += p.peek().Asm
	return lib, nil
}

// parseType : TYPE '*'*
func (p *Parser) parseType() (types.Type, error) {
	t, err := p.expect(token.Type)
	if err != nil {
		return 0, err
	}
	typ := t.TypeVal
	for p.optional(token.Tag('*')) {
		typ = types.ToPtr(typ)
	}
	return typ, nil
}

var stringCount int

// exprScale wraps e in a synthesized `e * factor` Mul node, used both for
// pointer-arithmetic scaling and for index-expression scaling.
func exprScale(e ast.Expr, factor int64) ast.Expr {
	lit := ast.NewNumberExpr(e.Pos(), factor)
	m := &ast.BinaryExpr{Op: ast.Mul, Left: e, Right: lit}
	m.SetType(e.Type())
	e.SetParent(m)
	lit.SetParent(m)
	return m
}

// parsePrimaryExpr : NAME | NUMBER | STRING | '(' expr ')'
func (p *Parser) parsePrimaryExpr(scope *symtab.Scope) (ast.Expr, error) {
	switch p.peek().Tag {
	case token.Name:
		t, _ := p.expect(token.Name)
		sym := scope.Get(t.Name)
		if sym == nil {
			return nil, p.errorAt(p.prev(), "couldn't find variable '%s'.", t.Name)
		}
		e := &ast.NameExpr{Name: t.Name}
		e.SetType(sym.Type)
		return e, nil

	case token.Number:
		t, _ := p.expect(token.Number)
		return ast.NewNumberExpr(ast.NewPos(t.Line, t.Column), t.Number), nil

	case token.String:
		t, _ := p.expect(token.String)
		idx := stringCount
		stringCount++
		sym := &symtab.Symbol{Kind: symtab.String, Name: t.Name, Offset: idx}
		scope.Root().Put(sym)
		e := &ast.StringExpr{Index: idx, Text: t.Name}
		e.SetType(types.ToPtr(types.S8))
		return e, nil

	case token.Tag('('):
		p.advance()
		e, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(')')); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, p.tokenError(p.peek(), 0)
	}
}

// parsePostfixExpr : primary_expr | postfix_expr '[' expr ']' | postfix_expr '(' assign_expr? (',' assign_expr)* ')'
func (p *Parser) parsePostfixExpr(scope *symtab.Scope) (ast.Expr, error) {
	e, err := p.parsePrimaryExpr(scope)
	if err != nil {
		return nil, err
	}

	if p.optional(token.Tag('(')) {
		name, ok := e.(*ast.NameExpr)
		if !ok {
			return nil, p.tokenError(p.prev(), token.Name)
		}
		sym := scope.Get(name.Name)
		call := &ast.CallExpr{Callee: sym}
		call.SetType(sym.Type)
		for i := range sym.ParamTypes {
			arg, err := p.parseAssignExpr(scope)
			if err != nil {
				return nil, err
			}
			if !types.Fits(arg.Type(), sym.ParamTypes[i]) {
				return nil, p.typeError(p.prev(), arg.Type(), sym.ParamTypes[i])
			}
			arg.SetParent(call)
			call.Args = append(call.Args, arg)
			if i != len(sym.ParamTypes)-1 {
				if _, err := p.expect(token.Tag(',')); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.Tag(')')); err != nil {
			return nil, err
		}
		return call, nil
	}

	if p.optional(token.Tag('[')) {
		left, ok := e.(*ast.NameExpr)
		if !ok {
			return nil, p.tokenError(p.prev(), token.Name)
		}
		elemType, err := types.FromPtr(left.Type())
		if err != nil {
			return nil, p.errorAt(p.prev(), "%s", err.Error())
		}
		idx, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		add := &ast.BinaryExpr{Op: ast.Add}
		add.SetType(left.Type())
		add.Left = left
		left.SetParent(add)
		add.Right = exprScale(idx, int64(types.Size(elemType)))
		add.Right.SetParent(add)

		deref := &ast.DerefExpr{Operand: add}
		deref.SetType(elemType)
		add.SetParent(deref)

		if _, err := p.expect(token.Tag(']')); err != nil {
			return nil, err
		}
		return deref, nil
	}

	return e, nil
}

// parseUnaryExpr : postfix_expr | '*' cast_expr | 'sizeof' type
func (p *Parser) parseUnaryExpr(scope *symtab.Scope) (ast.Expr, error) {
	switch p.peek().Tag {
	case token.Tag('*'):
		p.advance()
		operand, err := p.parseCastExpr(scope)
		if err != nil {
			return nil, err
		}
		elemType, err := types.FromPtr(operand.Type())
		if err != nil {
			return nil, p.errorAt(p.prev(), "%s", err.Error())
		}
		e := &ast.DerefExpr{Operand: operand}
		e.SetType(elemType)
		operand.SetParent(e)
		return e, nil

	case token.Sizeof:
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		size := int64(types.Size(t))
		prev := p.prev()
		return ast.NewNumberExpr(ast.NewPos(prev.Line, prev.Column), size), nil

	default:
		return p.parsePostfixExpr(scope)
	}
}

// parseCastExpr : unary_expr | '(' type ')' cast_expr
func (p *Parser) parseCastExpr(scope *symtab.Scope) (ast.Expr, error) {
	if p.peek().Tag == token.Tag('(') && p.lookahead(1).Tag == token.Type {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(')')); err != nil {
			return nil, err
		}
		operand, err := p.parseCastExpr(scope)
		if err != nil {
			return nil, err
		}
		e := &ast.CastExpr{Operand: operand}
		e.SetType(t)
		operand.SetParent(e)
		return e, nil
	}
	return p.parseUnaryExpr(scope)
}

// binaryLevel parses a single left-associative precedence level: operand,
// then ((op operand))*, folding each match via build.
func (p *Parser) binaryLevel(
	scope *symtab.Scope,
	operand func(*symtab.Scope) (ast.Expr, error),
	match func(token.Tag) (ast.BinaryOp, bool),
	build func(left, right ast.Expr, op ast.BinaryOp) ast.Expr,
) (ast.Expr, error) {
	e, err := operand(scope)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := match(p.peek().Tag)
		if !ok {
			return e, nil
		}
		p.advance()
		right, err := operand(scope)
		if err != nil {
			return nil, err
		}
		e = build(e, right, op)
	}
}

// parseMulExpr : cast_expr (('*'|'/') cast_expr)*
func (p *Parser) parseMulExpr(scope *symtab.Scope) (ast.Expr, error) {
	return p.binaryLevel(scope, p.parseCastExpr,
		func(t token.Tag) (ast.BinaryOp, bool) {
			switch t {
			case token.Tag('*'):
				return ast.Mul, true
			case token.Tag('/'):
				return ast.Div, true
			}
			return 0, false
		},
		func(left, right ast.Expr, op ast.BinaryOp) ast.Expr {
			e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
			e.SetType(types.Bigger(left.Type(), right.Type()))
			left.SetParent(e)
			right.SetParent(e)
			return e
		})
}

// parseAddExpr : mul_expr (('+'|'-') mul_expr)*, with pointer-arithmetic
// scaling: adding an int to a pointer scales the int by the pointee size.
func (p *Parser) parseAddExpr(scope *symtab.Scope) (ast.Expr, error) {
	e, err := p.parseMulExpr(scope)
	if err != nil {
		return nil, err
	}
	for p.peek().Tag == token.Tag('+') || p.peek().Tag == token.Tag('-') {
		op := ast.Add
		if p.peek().Tag == token.Tag('-') {
			op = ast.Sub
		}
		opTok := p.advance()
		right, err := p.parseMulExpr(scope)
		if err != nil {
			return nil, err
		}
		b := &ast.BinaryExpr{Op: op, Left: e, Right: right}
		e.SetParent(b)
		right.SetParent(b)

		switch {
		case types.Depth(e.Type()) > 0:
			if types.Depth(right.Type()) > 0 {
				return nil, p.errorAt(opTok, "can't add two pointers.")
			}
			b.SetType(e.Type())
			pointee, err := types.FromPtr(b.Type())
			if err != nil {
				return nil, p.errorAt(opTok, "%s", err.Error())
			}
			b.Right = exprScale(right, int64(types.Size(pointee)))
			b.Right.SetParent(b)

		case types.Depth(right.Type()) > 0:
			b.SetType(right.Type())
			pointee, err := types.FromPtr(b.Type())
			if err != nil {
				return nil, p.errorAt(opTok, "%s", err.Error())
			}
			b.Left = exprScale(e, int64(types.Size(pointee)))
			b.Left.SetParent(b)

		default:
			b.SetType(types.Bigger(e.Type(), right.Type()))
		}
		e = b
	}
	return e, nil
}

// parseShiftExpr : add_expr (('<<'|'>>') add_expr)*. Result type is the
// left operand's type, not the wider of the two.
func (p *Parser) parseShiftExpr(scope *symtab.Scope) (ast.Expr, error) {
	return p.binaryLevel(scope, p.parseAddExpr,
		func(t token.Tag) (ast.BinaryOp, bool) {
			switch t {
			case token.Shl:
				return ast.Shl, true
			case token.Shr:
				return ast.Shr, true
			}
			return 0, false
		},
		func(left, right ast.Expr, op ast.BinaryOp) ast.Expr {
			e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
			e.SetType(left.Type())
			left.SetParent(e)
			right.SetParent(e)
			return e
		})
}

// parseRelExpr : shift_expr (('<'|'>'|'<='|'>=') shift_expr)*. Result is
// always a signed byte (boolean).
func (p *Parser) parseRelExpr(scope *symtab.Scope) (ast.Expr, error) {
	return p.binaryLevel(scope, p.parseShiftExpr,
		func(t token.Tag) (ast.BinaryOp, bool) {
			switch t {
			case token.Tag('<'):
				return ast.Lt, true
			case token.Tag('>'):
				return ast.Gt, true
			case token.Le:
				return ast.Lte, true
			case token.Ge:
				return ast.Gte, true
			}
			return 0, false
		},
		func(left, right ast.Expr, op ast.BinaryOp) ast.Expr {
			e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
			e.SetType(types.S8)
			left.SetParent(e)
			right.SetParent(e)
			return e
		})
}

// parseEqExpr : rel_expr (('=='|'!=') rel_expr)*. Result is a signed byte.
func (p *Parser) parseEqExpr(scope *symtab.Scope) (ast.Expr, error) {
	return p.binaryLevel(scope, p.parseRelExpr,
		func(t token.Tag) (ast.BinaryOp, bool) {
			switch t {
			case token.Eq:
				return ast.Eq, true
			case token.Ne:
				return ast.Neq, true
			}
			return 0, false
		},
		func(left, right ast.Expr, op ast.BinaryOp) ast.Expr {
			e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
			e.SetType(types.S8)
			left.SetParent(e)
			right.SetParent(e)
			return e
		})
}

// parseAndExpr : eq_expr ('&' eq_expr)*. Result is the left operand's type.
func (p *Parser) parseAndExpr(scope *symtab.Scope) (ast.Expr, error) {
	e, err := p.parseEqExpr(scope)
	if err != nil {
		return nil, err
	}
	for p.optional(token.Tag('&')) {
		right, err := p.parseEqExpr(scope)
		if err != nil {
			return nil, err
		}
		b := &ast.BinaryExpr{Op: ast.And, Left: e, Right: right}
		b.SetType(e.Type())
		e.SetParent(b)
		right.SetParent(b)
		e = b
	}
	return e, nil
}

// parseOrExpr : and_expr ('|' and_expr)*. Result is the left operand's type.
func (p *Parser) parseOrExpr(scope *symtab.Scope) (ast.Expr, error) {
	e, err := p.parseAndExpr(scope)
	if err != nil {
		return nil, err
	}
	for p.optional(token.Tag('|')) {
		right, err := p.parseAndExpr(scope)
		if err != nil {
			return nil, err
		}
		b := &ast.BinaryExpr{Op: ast.Or, Left: e, Right: right}
		b.SetType(e.Type())
		e.SetParent(b)
		right.SetParent(b)
		e = b
	}
	return e, nil
}

// parseAssignExpr : or_expr | unary_expr '=' assign_expr
func (p *Parser) parseAssignExpr(scope *symtab.Scope) (ast.Expr, error) {
	e, err := p.parseOrExpr(scope)
	if err != nil {
		return nil, err
	}
	_, isName := e.(*ast.NameExpr)
	_, isDeref := e.(*ast.DerefExpr)
	if (isName || isDeref) && p.optional(token.Tag('=')) {
		right, err := p.parseAssignExpr(scope)
		if err != nil {
			return nil, err
		}
		if !types.Fits(right.Type(), e.Type()) {
			return nil, p.typeError(p.prev(), right.Type(), e.Type())
		}
		a := &ast.AssignExpr{LHS: e, RHS: right}
		a.SetType(e.Type())
		e.SetParent(a)
		right.SetParent(a)
		return a, nil
	}
	return e, nil
}

func (p *Parser) parseExpr(scope *symtab.Scope) (ast.Expr, error) {
	return p.parseAssignExpr(scope)
}

// parseCompoundStmt : '{' stmt* '}'
func (p *Parser) parseCompoundStmt(scope *symtab.Scope) (ast.Stmt, error) {
	start, err := p.expect(token.Tag('{'))
	if err != nil {
		return nil, err
	}
	s := &ast.CompoundStmt{Scope: symtab.New(scope)}
	s.SetPos(ast.NewPos(start.Line, start.Column))
	for p.peek().Tag != token.Tag('}') {
		stmt, err := p.parseStmt(s.Scope)
		if err != nil {
			return nil, err
		}
		s.Stmts = append(s.Stmts, stmt)
	}
	closeAsm := p.peek().Asm
	if _, err := p.expect(token.Tag('}')); err != nil {
		return nil, err
	}
	s.TrailingAsm = closeAsm
	return s, nil
}

// parseSelStmt : 'if' expr stmt ('else' stmt)?
func (p *Parser) parseSelStmt(scope *symtab.Scope) (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	then, err := p.parseStmt(scope)
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.optional(token.Else) {
		els, err = p.parseStmt(scope)
		if err != nil {
			return nil, err
		}
	}
	s := &ast.IfStmt{Cond: cond, Then: then, Else: els}
	s.SetPos(ast.NewPos(start.Line, start.Column))
	return s, nil
}

// parseIterStmt : 'while' expr stmt
func (p *Parser) parseIterStmt(scope *symtab.Scope) (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt(scope)
	if err != nil {
		return nil, err
	}
	s := &ast.WhileStmt{Cond: cond, Body: body}
	s.SetPos(ast.NewPos(start.Line, start.Column))
	return s, nil
}

// parseJumpStmt : 'return' expr? ';'
func (p *Parser) parseJumpStmt(scope *symtab.Scope) (ast.Stmt, error) {
	start := p.advance()
	s := &ast.ReturnStmt{}
	s.SetPos(ast.NewPos(start.Line, start.Column))
	if !p.optional(token.Tag(';')) {
		v, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(';')); err != nil {
			return nil, err
		}
		s.Value = v
	}
	return s, nil
}

// parseDeclStmt : 'var' NAME ':' type ('=' assign_expr)? ';'
//
// A global declaration is recorded in the scope and yields a NoopStmt. A
// local declaration with an initializer is desugared into an assignment
// statement to the freshly-declared name, exactly as the original builds it
// by hand rather than reusing parseAssignExpr's NameExpr lookup.
func (p *Parser) parseDeclStmt(scope *symtab.Scope) (ast.Stmt, error) {
	isLocal := scope.Root() != scope
	start, err := p.expect(token.Var)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Tag(':')); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}

	sym := &symtab.Symbol{Name: name.Name, Type: t}
	if isLocal {
		sym.Kind = symtab.Local
		sym.Offset = scope.GetLastOffset() - types.Align(t)
	} else {
		sym.Kind = symtab.Global
	}

	var stmt ast.Stmt
	if isLocal && p.optional(token.Tag('=')) {
		lhs := &ast.NameExpr{Name: sym.Name}
		lhs.SetType(sym.Type)
		rhs, err := p.parseAssignExpr(scope)
		if err != nil {
			return nil, err
		}
		a := &ast.AssignExpr{LHS: lhs, RHS: rhs}
		a.SetType(sym.Type)
		lhs.SetParent(a)
		rhs.SetParent(a)
		es := &ast.ExprStmt{X: a}
		es.SetPos(ast.NewPos(start.Line, start.Column))
		stmt = es
	} else {
		ns := &ast.NoopStmt{}
		ns.SetPos(ast.NewPos(start.Line, start.Column))
		stmt = ns
	}
	if _, err := p.expect(token.Tag(';')); err != nil {
		return nil, err
	}

	scope.Put(sym)
	return stmt, nil
}

// parseExprStmt : ';' | expr ';'
func (p *Parser) parseExprStmt(scope *symtab.Scope) (ast.Stmt, error) {
	start := p.peek()
	if p.optional(token.Tag(';')) {
		s := &ast.NoopStmt{}
		s.SetPos(ast.NewPos(start.Line, start.Column))
		return s, nil
	}
	e, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Tag(';')); err != nil {
		return nil, err
	}
	s := &ast.ExprStmt{X: e}
	s.SetPos(ast.NewPos(start.Line, start.Column))
	return s, nil
}

// parseStmt : compound_stmt | sel_stmt | iter_stmt | jump_stmt | decl_stmt | expr_stmt
//
// Any asm text riding on the leading token is captured here, at the single
// dispatch point every statement passes through, and attached to the
// resulting node so the code generator can emit it first.
func (p *Parser) parseStmt(scope *symtab.Scope) (ast.Stmt, error) {
	asm := p.peek().Asm
	var s ast.Stmt
	var err error
	switch p.peek().Tag {
	case token.Tag('{'):
		s, err = p.parseCompoundStmt(scope)
	case token.If:
		s, err = p.parseSelStmt(scope)
	case token.While:
		s, err = p.parseIterStmt(scope)
	case token.Return:
		s, err = p.parseJumpStmt(scope)
	case token.Var:
		s, err = p.parseDeclStmt(scope)
	default:
		s, err = p.parseExprStmt(scope)
	}
	if err != nil {
		return nil, err
	}
	if asm != "" {
		s.SetAsm(asm)
	}
	return s, nil
}

// parseExternFunc : 'extern' 'fn' NAME '(' type? (',' type)* ')' (':' type)? ';'
func (p *Parser) parseExternFunc(scope *symtab.Scope) error {
	if _, err := p.expect(token.Extern); err != nil {
		return err
	}
	if _, err := p.expect(token.Fn); err != nil {
		return err
	}
	name, err := p.expect(token.Name)
	if err != nil {
		return err
	}
	sym := symtab.NewFuncSymbol(name.Name, types.U0)
	if _, err := p.expect(token.Tag('(')); err != nil {
		return err
	}
	for p.peek().Tag != token.Tag(')') {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		sym.AddParam(t)
		p.optional(token.Tag(','))
	}
	if _, err := p.expect(token.Tag(')')); err != nil {
		return err
	}
	if p.optional(token.Tag(':')) {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		sym.Type = t
	}
	if _, err := p.expect(token.Tag(';')); err != nil {
		return err
	}
	scope.Put(sym)
	return nil
}

// parseFunc : 'fn' NAME '(' (NAME ':' type)? (',' NAME ':' type)* ')' (':' type)? stmt
func (p *Parser) parseFunc(scope *symtab.Scope) (*ast.Func, error) {
	if _, err := p.expect(token.Fn); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Name)
	if err != nil {
		return nil, err
	}
	fnScope := symtab.New(scope)
	fnSym := symtab.NewFuncSymbol(name.Name, types.U0)

	if _, err := p.expect(token.Tag('(')); err != nil {
		return nil, err
	}
	for p.peek().Tag != token.Tag(')') {
		pname, err := p.expect(token.Name)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(':')); err != nil {
			return nil, err
		}
		pt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		psym := &symtab.Symbol{Kind: symtab.Local, Name: pname.Name, Type: pt}
		psym.Offset = fnScope.GetLastOffset() - types.Align(pt)
		fnScope.Put(psym)
		fnSym.AddParam(pt)
		p.optional(token.Tag(','))
	}
	if _, err := p.expect(token.Tag(')')); err != nil {
		return nil, err
	}

	if p.optional(token.Tag(':')) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fnSym.Type = t
	}
	scope.Put(fnSym)

	body, err := p.parseStmt(fnScope)
	if err != nil {
		return nil, err
	}
	return &ast.Func{Name: name.Name, Type: fnSym.Type, Scope: fnScope, Body: body}, nil
}
