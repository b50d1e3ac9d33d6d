package resolver

import (
	"testing"

	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/parser"
	"github.com/loxlang/lox/internal/scanner"
	"github.com/loxlang/lox/internal/token"
)

func resolveSource(t *testing.T, src string) (map[ast.Expr]int, []string) {
	t.Helper()
	toks := scanner.Scan(src, func(line int, message string) {
		t.Fatalf("unexpected scan error: %s", message)
	})
	var parseErrs []string
	program := parser.Parse(toks, func(tok token.Token, message string) {
		parseErrs = append(parseErrs, message)
	})
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, parseErrs)
	}
	var errs []string
	locals := Resolve(program, nil, func(tok token.Token, message string) {
		errs = append(errs, message)
	})
	return locals, errs
}

func TestResolveLocalVariableHop(t *testing.T) {
	locals, errs := resolveSource(t, `
		var a = "global";
		{
			var b = a;
			print b;
		}
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(locals) != 1 {
		t.Fatalf("expected exactly one local entry, got %d: %v", len(locals), locals)
	}
	for _, hop := range locals {
		if hop != 0 {
			t.Fatalf("got hop %d, want 0", hop)
		}
	}
}

func TestResolveOwnInitializerError(t *testing.T) {
	_, errs := resolveSource(t, "{ var a = a; }")
	if len(errs) != 1 || errs[0] != "Can't read local variable in its own initializer." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveRedeclarationInSameScopeError(t *testing.T) {
	_, errs := resolveSource(t, "{ var a = 1; var a = 2; }")
	if len(errs) != 1 || errs[0] != "Already a variable with this name in this scope." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveGlobalRedeclarationIsLegal(t *testing.T) {
	_, errs := resolveSource(t, "var a = 1; var a = 2;")
	if len(errs) != 0 {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveReturnAtTopLevelError(t *testing.T) {
	_, errs := resolveSource(t, "return 1;")
	if len(errs) != 1 || errs[0] != "Can't return from top-level code." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveReturnValueInInitializerError(t *testing.T) {
	_, errs := resolveSource(t, "class A { init() { return 1; } }")
	if len(errs) != 1 || errs[0] != "Can't return a non-this value from an initializer." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveThisOutsideClassError(t *testing.T) {
	_, errs := resolveSource(t, "print this;")
	if len(errs) != 1 || errs[0] != "Can't use 'this' outside of a class." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveSuperOutsideClassError(t *testing.T) {
	_, errs := resolveSource(t, "super.method();")
	if len(errs) != 1 || errs[0] != "Can't use 'super' outside of a class." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveSuperWithNoSuperclassError(t *testing.T) {
	_, errs := resolveSource(t, "class A { method() { super.method(); } }")
	if len(errs) != 1 || errs[0] != "Can't use 'super' in a class with no superclass." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveClassInheritingFromItselfError(t *testing.T) {
	_, errs := resolveSource(t, "class A < A {}")
	if len(errs) != 1 || errs[0] != "A class can't inherit from itself." {
		t.Fatalf("got %v", errs)
	}
}

func TestResolveAccumulatesAcrossCalls(t *testing.T) {
	var locals map[ast.Expr]int

	progA := parser.Parse(scanner.Scan("{ var a = 1; fun f() { print a; } f(); }", nil), nil)
	locals = Resolve(progA, locals, nil)
	firstLen := len(locals)
	if firstLen == 0 {
		t.Fatalf("expected at least one resolved local")
	}

	progB := parser.Parse(scanner.Scan("{ var c = 2; print c; }", nil), nil)
	locals = Resolve(progB, locals, nil)
	if len(locals) <= firstLen {
		t.Fatalf("expected the side-table to grow, got %d -> %d", firstLen, len(locals))
	}
}
