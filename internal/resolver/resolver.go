// Package resolver performs the static pass between parsing and
// evaluation: it resolves every variable reference to a hop count (how
// many enclosing scopes separate the reference from its declaration) and
// catches the handful of errors that are cheaper to catch statically than
// at runtime (spec §4.3).
//
// The side-table produced here, a map[ast.Expr]int, is keyed by pointer
// identity. Because every ast.Expr is implemented only by a
// pointer-receiver type (see internal/ast), two expressions that look
// identical but were parsed at different source positions are distinct
// map keys automatically — no synthetic node IDs needed.
package resolver

import (
	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/token"
)

// Reporter receives a static error located at a token.
type Reporter func(t token.Token, message string)

type functionKind int

const (
	noFunction functionKind = iota
	inFunction
	inInitializer
	inMethod
)

type classKind int

const (
	noClass classKind = iota
	inClass
	inSubclass
)

// Resolve walks program, adding to locals (or a freshly made map, if nil)
// the side-table entries for every local reference program contains, and
// returns it. Passing the same map back in across multiple calls is how
// the interactive driver accumulates one growing side-table across lines
// (spec §2: "the Resolver's accumulated side-table" persists across REPL
// input). Errors are sent to report; resolution continues past an error
// so later ones can also surface, matching the parser's and scanner's
// recovery behavior.
func Resolve(program ast.Interpretable, locals map[ast.Expr]int, report Reporter) map[ast.Expr]int {
	if locals == nil {
		locals = make(map[ast.Expr]int)
	}
	r := &Resolver{
		locals: locals,
		report: report,
	}
	if program.IsExpression() {
		r.resolveExpr(program.Expr)
	} else {
		r.resolveStmts(program.Stmts)
	}
	return r.locals
}

// Resolver holds the mutable state of a single resolution pass.
type Resolver struct {
	scopes          []map[string]bool
	locals          map[ast.Expr]int
	report          Reporter
	currentFunction functionKind
	currentClass    classKind
}

func (r *Resolver) err(t token.Token, message string) {
	if r.report != nil {
		r.report(t, message)
	}
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.Class:
		r.resolveClass(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s.Params, s.Body, inFunction)
	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.currentFunction == noFunction {
			r.err(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == inInitializer {
				r.err(s.Keyword, "Can't return a non-this value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.While:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)
	}
}

func (r *Resolver) resolveClass(c *ast.Class) {
	r.declare(c.Name)
	r.define(c.Name)

	enclosingClass := r.currentClass
	r.currentClass = inClass

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.err(c.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = inSubclass
		r.resolveExpr(c.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range c.Methods {
		kind := inMethod
		if m.Name.Lexeme == "init" {
			kind = inInitializer
		}
		r.resolveFunction(m.Params, m.Body, kind)
	}

	r.endScope()
	if c.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(params []token.Token, body []ast.Stmt, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, p := range params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Lambda:
		r.resolveFunction(e.Params, e.Body, inFunction)
	case *ast.Literal:
		// no identifiers to resolve
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.Super:
		if r.currentClass == noClass {
			r.err(e.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != inSubclass {
			r.err(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.This:
		if r.currentClass == noClass {
			r.err(e.Keyword, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if ready, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !ready {
				r.err(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	}
}

// resolveLocal records the hop distance from expr to the scope declaring
// name, if any enclosing scope declares it. A name found in no scope is
// left unresolved here; the interpreter treats that as a reference to a
// global, resolved dynamically at call time.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks name as present but not yet initialized in the innermost
// scope, enabling the "own initializer" shadowing error.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.err(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}
