// Package parser turns a token stream into an ast.Interpretable, via a
// one-token-lookahead (two-token where noted) recursive-descent parser.
//
// The dual REPL-friendly mode (spec §4.2) is implemented via the
// expression-first variant the spec's design notes explicitly sanction:
// try parsing the whole input as one expression, silently, first; only
// if that does not consume every token do we fall back to the normal,
// loudly-reported declaration* parse. This sidesteps ever reporting a
// spurious syntax error for input that turns out to parse fine as a bare
// expression.
package parser

import (
	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/cursor"
	"github.com/loxlang/lox/internal/token"
)

// Reporter receives a syntax error located at a token (or at an
// end-of-file marker when t.Type == token.EOF).
type Reporter func(t token.Token, message string)

// Parse converts tokens into an Interpretable, reporting syntax errors to
// report as they're found. Reported errors result in panic-mode recovery
// (Parser.synchronize) so later errors in the same input can also surface.
func Parse(tokens []token.Token, report Reporter) ast.Interpretable {
	p := &Parser{tokens: tokens, report: report}

	p.silent = true
	if expr, err := p.expression(); err == nil && p.check(token.EOF) {
		return ast.Interpretable{Expr: expr}
	}

	p.current = 0
	p.silent = false
	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return ast.Interpretable{Stmts: stmts}
}

// Parser holds the mutable cursor state of a single parse. Two passes
// (the silent expression probe and the loud statement parse) reuse the
// same Parser with its cursor reset between them.
type Parser struct {
	tokens  []token.Token
	current int
	report  Reporter
	silent  bool
}

// parseError is a sentinel signaling that a production failed; the actual
// diagnostic was already (conditionally) sent to report at the point of
// failure.
type parseError struct{}

func (parseError) Error() string { return "parse error" }

// --- declarations -------------------------------------------------------

// declaration parses one declaration, recovering via synchronize and
// returning nil on failure so callers (the top-level loop and block
// bodies) can keep collecting the rest of the input.
func (p *Parser) declaration() ast.Stmt {
	stmt, err := p.declarationInner()
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) declarationInner() (ast.Stmt, error) {
	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.checkFunDecl():
		p.advance()
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *ast.Variable
	if p.match(token.Less) {
		superName, err := p.consume(token.Identifier, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = &ast.Variable{Name: superName}
	}

	if _, err := p.consume(token.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.atEnd() {
		m, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}, nil
}

// function parses the shared "IDENT '(' params? ')' block" shape used
// both for a top-level function declaration and a class method. kind is
// used only in diagnostics ("function" / "method").
func (p *Parser) function(kind string) (*ast.Function, error) {
	name, err := p.consume(token.Identifier, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftParen, "Expect '(' after "+kind+" name."); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before "+kind+" body."); err != nil {
		return nil, err
	}
	body, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) paramList() ([]token.Token, error) {
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= 255 {
				p.warn(p.peek(), "Can't have more than 255 parameters.")
			}
			name, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, name)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	return params, nil
}

func (p *Parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Initializer: init}, nil
}

// --- statements ----------------------------------------------------------

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.LeftBrace):
		stmts, err := p.blockStmts()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	default:
		return p.exprStmt()
	}
}

// forStmt desugars the C-style loop into Block([init, While(cond,
// Block([body, inc]))]), dropping any omitted clause from the wrapping
// structure and defaulting an omitted condition to "true".
func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.Var):
		init, err = p.varDecl()
	default:
		init, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var inc ast.Expr
	if !p.check(token.RightParen) {
		inc, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if inc != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: inc}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	body = &ast.While{Cond: cond, Body: body}
	if init != nil {
		body = &ast.Block{Stmts: []ast.Stmt{init, body}}
	}
	return body, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(token.Else) {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) printStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: expr}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.Return{Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{Expr: expr}, nil
}

func (p *Parser) blockStmts() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

// --- expressions ---------------------------------------------------------

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment parses the left side as a general expression, then — if '='
// follows — reinterprets it as an assignment target (spec §4.2
// "Assignment targets"). An invalid target is reported but not treated as
// a recoverable parse failure: the originally-parsed left expression is
// returned unchanged.
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.or_()
	if err != nil {
		return nil, err
	}
	if p.match(token.Equal) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value}, nil
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}, nil
		default:
			p.warn(equals, "Invalid assignment target.")
			return expr, nil
		}
	}
	return expr, nil
}

func (p *Parser) or_() (ast.Expr, error) {
	expr, err := p.and_()
	if err != nil {
		return nil, err
	}
	for p.match(token.Or) {
		op := p.previous()
		right, err := p.and_()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) and_() (ast.Expr, error) {
	expr, err := p.lambda()
	if err != nil {
		return nil, err
	}
	for p.match(token.And) {
		op := p.previous()
		right, err := p.lambda()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

// lambda parses an anonymous function expression. In the statement pass a
// "fun IDENT" at the start of a declaration has already been claimed by
// declarationInner's funDecl lookahead; any "fun" that reaches this level
// (including in the silent expression probe) is parsed as a lambda, so a
// name after it fails the '(' check.
func (p *Parser) lambda() (ast.Expr, error) {
	if p.match(token.Fun) {
		if _, err := p.consume(token.LeftParen, "Expect '(' after 'fun'."); err != nil {
			return nil, err
		}
		params, err := p.paramList()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
			return nil, err
		}
		if _, err := p.consume(token.LeftBrace, "Expect '{' before lambda body."); err != nil {
			return nil, err
		}
		body, err := p.blockStmts()
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Params: params, Body: body}, nil
	}
	return p.equality()
}

func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(token.Minus, token.Plus) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(token.Slash, token.Star) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LeftParen):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(token.Dot):
			name, err := p.consume(token.Identifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= 255 {
				p.warn(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	if p.match(token.False) {
		return &ast.Literal{Value: false}, nil
	}
	if p.match(token.True) {
		return &ast.Literal{Value: true}, nil
	}
	if p.match(token.Nil) {
		return &ast.Literal{Value: nil}, nil
	}
	if p.match(token.Number) {
		return &ast.Literal{Value: p.previous().Literal}, nil
	}
	if p.match(token.String) {
		return &ast.Literal{Value: p.previous().Literal}, nil
	}
	if p.match(token.Super) {
		keyword := p.previous()
		if _, err := p.consume(token.Dot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(token.Identifier, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return &ast.Super{Keyword: keyword, Method: method}, nil
	}
	if p.match(token.This) {
		return &ast.This{Keyword: p.previous()}, nil
	}
	if p.match(token.Identifier) {
		return &ast.Variable{Name: p.previous()}, nil
	}
	if p.match(token.LeftParen) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expression: expr}, nil
	}
	return nil, p.error(p.peek(), "Expect expression.")
}

// --- recovery --------------------------------------------------------

// synchronize discards tokens until the one just consumed is a ';' or the
// next token plausibly starts a new statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- token stream primitives ---------------------------------------------

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	if p.atEnd() {
		return t == token.EOF
	}
	return p.peek().Type == t
}

// checkFunDecl implements the 2-token lookahead funDecl needs to
// distinguish a named function declaration from a lambda expression
// statement (spec §4.2's funDecl rule).
func (p *Parser) checkFunDecl() bool {
	return p.check(token.Fun) && p.checkNext(token.Identifier)
}

func (p *Parser) checkNext(t token.Type) bool {
	tok := cursor.Peek(p.tokens, p.current+1)
	return tok != nil && tok.Type == t
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.current++
	}
	return t
}

func (p *Parser) peek() token.Token {
	if tok := cursor.Peek(p.tokens, p.current); tok != nil {
		return *tok
	}
	return p.tokens[len(p.tokens)-1] // the trailing EOF token
}

func (p *Parser) previous() token.Token {
	return *cursor.Previous(p.tokens, p.current)
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) consume(t token.Type, message string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.error(p.peek(), message)
}

// error conditionally reports (statement-pass only) and always returns
// the sentinel that unwinds the current production to its nearest
// recovery point.
func (p *Parser) error(t token.Token, message string) error {
	p.warn(t, message)
	return parseError{}
}

// warn reports a diagnostic that does not itself abort the current
// production (used for the "keep parsing" over-limit cases).
func (p *Parser) warn(t token.Token, message string) {
	if !p.silent && p.report != nil {
		p.report(t, message)
	}
}
