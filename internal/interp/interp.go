// Package interp walks an ast.Interpretable and produces its observable
// effects: Print output and, on failure, a *loxerr.RuntimeError (spec
// §4.4).
package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/loxerr"
	"github.com/loxlang/lox/internal/token"
)

// Interpreter holds the runtime state that survives across top-level
// inputs in interactive mode: the global environment and the growing
// resolver side-table.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int
	out     io.Writer
}

// New creates an Interpreter writing Print output to out, with the single
// required native, clock(), bound in globals.
func New(out io.Writer) *Interpreter {
	globals := NewEnvironment()
	globals.define("clock", &nativeFunction{
		name:  "clock",
		arity: 0,
		fn: func(args []any) (any, error) {
			return float64(time.Now().UnixNano()) / 1e9, nil
		},
	}, true)
	return &Interpreter{globals: globals, env: globals, out: out}
}

// Interpret runs program using locals as the resolver side-table,
// reporting a runtime error (if any) via a *loxerr.RuntimeError return.
// The caller is expected to pass the same, growing locals map across
// calls in interactive mode.
func (in *Interpreter) Interpret(program ast.Interpretable, locals map[ast.Expr]int) *loxerr.RuntimeError {
	in.locals = locals
	if program.IsExpression() {
		v, err := in.evaluate(program.Expr)
		if err != nil {
			return toRuntimeError(err)
		}
		fmt.Fprintln(in.out, stringify(v))
		return nil
	}
	for _, stmt := range program.Stmts {
		if err := in.execute(stmt); err != nil {
			return toRuntimeError(err)
		}
	}
	return nil
}

func toRuntimeError(err error) *loxerr.RuntimeError {
	if re, ok := err.(*loxerr.RuntimeError); ok {
		return re
	}
	// A returnSignal escaping every function call frame is a programmer
	// bug (top-level return is a static error, caught by the resolver),
	// not a condition callers should need to handle.
	panic(err)
}

// --- statements ----------------------------------------------------------

func (in *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return in.executeBlock(s.Stmts, in.env.child())
	case *ast.Class:
		return in.executeClass(s)
	case *ast.Expression:
		_, err := in.evaluate(s.Expr)
		return err
	case *ast.Function:
		fn := newFunction(s.Name.Lexeme, s.Params, s.Body, in.env, false)
		in.env.define(s.Name.Lexeme, fn, true)
		return nil
	case *ast.If:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return in.execute(s.Then)
		} else if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil
	case *ast.Print:
		v, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(in.out, stringify(v))
		return nil
	case *ast.Return:
		var value any
		if s.Value != nil {
			v, err := in.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return returnSignal{value: value}
	case *ast.Var:
		if s.Initializer != nil {
			v, err := in.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			in.env.define(s.Name.Lexeme, v, true)
		} else {
			in.env.define(s.Name.Lexeme, nil, false)
		}
		return nil
	case *ast.While:
		for {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return err
			}
			if !isTruthy(cond) {
				return nil
			}
			if err := in.execute(s.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeBlock runs stmts in env, always restoring the previous
// environment on the way out — including when a runtime error or a
// returnSignal propagates (spec §4.4, "Block").
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// executeClass implements the two-step class binding of spec §4.4: the
// class name is defined as nil first so methods may close over the
// class's own name, then rebound once construction is complete.
func (in *Interpreter) executeClass(s *ast.Class) error {
	var superclass *Class
	if s.Superclass != nil {
		v, err := in.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return loxerr.NewRuntimeError(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = sc
	}

	in.env.define(s.Name.Lexeme, nil, true)

	methodEnv := in.env
	if superclass != nil {
		methodEnv = in.env.child()
		methodEnv.define("super", superclass, true)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = newFunction(m.Name.Lexeme, m.Params, m.Body, methodEnv, m.Name.Lexeme == "init")
	}

	class := &Class{name: s.Name.Lexeme, superclass: superclass, methods: methods}
	return in.env.assign(s.Name, class)
}

// --- expressions ---------------------------------------------------------

func (in *Interpreter) evaluate(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.Assign:
		v, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := in.assignVar(e, e.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.Binary:
		return in.evalBinary(e)
	case *ast.Call:
		return in.evalCall(e)
	case *ast.Get:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, loxerr.NewRuntimeError(e.Name, "Only instances have properties.")
		}
		return instance.get(e.Name)
	case *ast.Grouping:
		return in.evaluate(e.Expression)
	case *ast.Lambda:
		return newFunction("", e.Params, e.Body, in.env, false), nil
	case *ast.Literal:
		return e.Value, nil
	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op.Type == token.Or {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)
	case *ast.Set:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, loxerr.NewRuntimeError(e.Name, "Only instances have fields.")
		}
		v, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		instance.set(e.Name, v)
		return v, nil
	case *ast.Super:
		return in.evalSuper(e)
	case *ast.This:
		return in.lookUpVar(e, e.Keyword)
	case *ast.Unary:
		return in.evalUnary(e)
	case *ast.Variable:
		return in.lookUpVar(e, e.Name)
	}
	return nil, nil
}

// lookUpVar implements spec §4.4's "Variable access": the side-table hop
// if present, else a lookup in the global-terminated chain.
func (in *Interpreter) lookUpVar(expr ast.Expr, name token.Token) (any, error) {
	if d, ok := in.locals[expr]; ok {
		return in.env.getVarAt(d, name)
	}
	return in.globals.get(name)
}

func (in *Interpreter) assignVar(expr ast.Expr, name token.Token, value any) error {
	if d, ok := in.locals[expr]; ok {
		in.env.assignAt(d, name.Lexeme, value)
		return nil
	}
	return in.globals.assign(name, value)
}

func (in *Interpreter) evalUnary(e *ast.Unary) (any, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.Minus:
		n, ok := right.(float64)
		if !ok {
			return nil, loxerr.NewRuntimeError(e.Op, "Operand must be a number.")
		}
		return -n, nil
	case token.Bang:
		return !isTruthy(right), nil
	}
	return nil, nil
}

func (in *Interpreter) evalBinary(e *ast.Binary) (any, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.Plus:
		if ln, lok := left.(float64); lok {
			if rn, rok := right.(float64); rok {
				return ln + rn, nil
			}
		}
		if _, lok := left.(string); lok {
			return stringify(left) + stringify(right), nil
		}
		if _, rok := right.(string); rok {
			return stringify(left) + stringify(right), nil
		}
		return nil, loxerr.NewRuntimeError(e.Op, "Operands must be two numbers or either operands must be a string.")
	case token.Minus:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil
	case token.Star:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil
	case token.Slash:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		if rn == 0 {
			return nil, loxerr.NewRuntimeError(e.Op, "Cannot divide by zero.")
		}
		return ln / rn, nil
	case token.Greater:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln > rn, nil
	case token.GreaterEqual:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln >= rn, nil
	case token.Less:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln < rn, nil
	case token.LessEqual:
		ln, rn, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln <= rn, nil
	case token.EqualEqual:
		return isEqual(left, right), nil
	case token.BangEqual:
		return !isEqual(left, right), nil
	}
	return nil, nil
}

func bothNumbers(op token.Token, left, right any) (float64, float64, error) {
	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, loxerr.NewRuntimeError(op, "Operands must be numbers.")
	}
	return ln, rn, nil
}

func (in *Interpreter) evalCall(e *ast.Call) (any, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		v, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, loxerr.NewRuntimeError(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, loxerr.NewRuntimeError(e.Paren, fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}
	return fn.Call(in, args)
}

// evalSuper implements spec §4.4's "super" rule: the hop to the captured
// "super" environment locates the superclass; the method it finds is
// bound to "this" found one environment closer than "super" itself.
func (in *Interpreter) evalSuper(e *ast.Super) (any, error) {
	d, ok := in.locals[e]
	if !ok {
		panic("resolver did not resolve a 'super' expression")
	}
	superclass := in.env.getAt(d, "super").(*Class)
	instance := in.env.getAt(d-1, "this").(*Instance)

	method := superclass.findMethod(e.Method.Lexeme)
	if method == nil {
		return nil, loxerr.NewRuntimeError(e.Method, "Undefined property '"+e.Method.Lexeme+"'.")
	}
	return method.bind(instance), nil
}

// --- value semantics -------------------------------------------------

func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// isEqual implements spec §4.4's equality rule: different tags are never
// equal; NaN follows the host's native float64 semantics (NaN != NaN),
// an explicitly open question per spec §9 resolved that way here.
func isEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	an, aIsNum := a.(float64)
	bn, bIsNum := b.(float64)
	if aIsNum && bIsNum {
		return an == bn
	}
	return a == b
}

// stringify implements spec §4.4's "Stringification" rule.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if math.Trunc(t) == t && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
