package interp

import (
	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/loxerr"
	"github.com/loxlang/lox/internal/token"
)

// Callable is any Value that can appear on the left of a call expression:
// a user-defined Function, a Class (construction), or a native function.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []any) (any, error)
	String() string
}

// Function is a runtime closure: a declaration plus the environment that
// was current when the declaration executed (spec §3, "Function
// (runtime)").
type Function struct {
	name          string // "" for a lambda
	params        []token.Token
	body          []ast.Stmt
	closure       *Environment
	isInitializer bool
}

func newFunction(name string, params []token.Token, body []ast.Stmt, closure *Environment, isInitializer bool) *Function {
	return &Function{name: name, params: params, body: body, closure: closure, isInitializer: isInitializer}
}

func (f *Function) Arity() int { return len(f.params) }

// bind returns a copy of f whose closure additionally binds "this" to
// instance — used both for unbound method lookup (spec §4.4 "Get") and
// for super-method dispatch.
func (f *Function) bind(instance *Instance) *Function {
	env := f.closure.child()
	env.define("this", instance, true)
	return newFunction(f.name, f.params, f.body, env, f.isInitializer)
}

func (f *Function) Call(in *Interpreter, args []any) (any, error) {
	env := f.closure.child()
	for i, p := range f.params {
		env.define(p.Lexeme, args[i], true)
	}

	err := in.executeBlock(f.body, env)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			if f.isInitializer {
				return f.closure.getAt(0, "this"), nil
			}
			return ret.value, nil
		}
		return nil, err
	}
	if f.isInitializer {
		return f.closure.getAt(0, "this"), nil
	}
	return nil, nil
}

func (f *Function) String() string {
	if f.name == "" {
		return "<fn>"
	}
	return "<fn " + f.name + ">"
}

// Class is a runtime class value: a name, an optional superclass, and a
// method table (spec §3, "Class (runtime)").
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*Function
}

// findMethod looks up name on c, falling through to the superclass chain.
func (c *Class) findMethod(name string) *Function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs an Instance, running its "init" method (if any) with
// the given arguments (spec §4.4, "Class call (construction)").
func (c *Class) Call(in *Interpreter, args []any) (any, error) {
	instance := &Instance{class: c, fields: make(map[string]any)}
	if init := c.findMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *Class) String() string { return c.name }

// Instance is a runtime object: a class plus its own field map (spec §3,
// "Instance").
type Instance struct {
	class  *Class
	fields map[string]any
}

// get implements spec §4.4's property-read rule: fields shadow methods; a
// found method is returned bound to this instance.
func (i *Instance) get(name token.Token) (any, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.class.findMethod(name.Lexeme); m != nil {
		return m.bind(i), nil
	}
	return nil, loxerr.NewRuntimeError(name, "Undefined property '"+name.Lexeme+"'.")
}

func (i *Instance) set(name token.Token, value any) {
	i.fields[name.Lexeme] = value
}

func (i *Instance) String() string { return i.class.name + " instance" }

// nativeFunction wraps a Go function as a Callable, the shape the single
// required native, clock(), uses (spec §4.4 "Native").
type nativeFunction struct {
	name  string
	arity int
	fn    func(args []any) (any, error)
}

func (n *nativeFunction) Arity() int { return n.arity }

func (n *nativeFunction) Call(in *Interpreter, args []any) (any, error) {
	return n.fn(args)
}

func (n *nativeFunction) String() string { return "<native fn>" }
