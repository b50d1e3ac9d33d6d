package interp

import (
	"github.com/loxlang/lox/internal/loxerr"
	"github.com/loxlang/lox/internal/token"
)

// Environment is a name→value scope chained to an enclosing one, forming
// a singly-linked chain that always terminates at the interpreter's
// globals (spec §3, §4.5).
type Environment struct {
	values        map[string]any
	uninitialized map[string]bool
	enclosing     *Environment
}

// NewEnvironment creates a top-level environment with no enclosing scope.
// Used once, for globals.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]any)}
}

// child creates a fresh environment enclosed by e, the shape every block,
// function call, and loop iteration that needs its own scope uses.
func (e *Environment) child() *Environment {
	return &Environment{values: make(map[string]any), enclosing: e}
}

// define unconditionally (re)binds name in this environment. A
// value-less define (the "var x;" case) instead marks name uninitialized,
// clearing any previous binding.
func (e *Environment) define(name string, value any, initialized bool) {
	if !initialized {
		delete(e.values, name)
		if e.uninitialized == nil {
			e.uninitialized = make(map[string]bool)
		}
		e.uninitialized[name] = true
		return
	}
	if e.uninitialized != nil {
		delete(e.uninitialized, name)
	}
	e.values[name] = value
}

// get implements spec §4.4's "Variable access" for the global fallback
// path: walk the enclosing chain looking for name.
func (e *Environment) get(name token.Token) (any, error) {
	for env := e; env != nil; env = env.enclosing {
		if env.uninitialized[name.Lexeme] {
			return nil, loxerr.NewRuntimeError(name, "Uninitialized variable '"+name.Lexeme+"'.")
		}
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, loxerr.NewRuntimeError(name, "Undefined variable '"+name.Lexeme+"'.")
}

// assign writes to the nearest environment in the chain that already
// binds name; it never creates a new binding.
func (e *Environment) assign(name token.Token, value any) error {
	for env := e; env != nil; env = env.enclosing {
		if env.uninitialized[name.Lexeme] {
			delete(env.uninitialized, name.Lexeme)
			env.values[name.Lexeme] = value
			return nil
		}
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return loxerr.NewRuntimeError(name, "Undefined variable '"+name.Lexeme+"'.")
}

// ancestor walks d hops up the enclosing chain; d=0 returns e itself.
// Trusts the resolver's hop count absolutely — a mismatch is a
// programmer bug, not a runtime error (spec §4.5).
func (e *Environment) ancestor(d int) *Environment {
	env := e
	for i := 0; i < d; i++ {
		env = env.enclosing
	}
	return env
}

// getAt/assignAt jump exactly d hops and then read/write the map
// directly, with no fallback search.
func (e *Environment) getAt(d int, name string) any {
	return e.ancestor(d).values[name]
}

// getVarAt is getAt for a resolved *ast.Variable/*ast.This reference: it
// additionally checks the uninitialized set at the resolved hop, so
// reading a declared-but-unassigned local errors the same way the global
// path (get, above) does.
func (e *Environment) getVarAt(d int, name token.Token) (any, error) {
	env := e.ancestor(d)
	if env.uninitialized[name.Lexeme] {
		return nil, loxerr.NewRuntimeError(name, "Uninitialized variable '"+name.Lexeme+"'.")
	}
	return env.values[name.Lexeme], nil
}

func (e *Environment) assignAt(d int, name string, value any) {
	env := e.ancestor(d)
	delete(env.uninitialized, name)
	env.values[name] = value
}
