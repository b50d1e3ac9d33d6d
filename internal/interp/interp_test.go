package interp

import (
	"strings"
	"testing"

	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/loxerr"
	"github.com/loxlang/lox/internal/parser"
	"github.com/loxlang/lox/internal/resolver"
	"github.com/loxlang/lox/internal/scanner"
	"github.com/loxlang/lox/internal/token"
)

// runProgram scans, parses, resolves, and interprets src as a single
// top-level input and returns everything it printed plus any runtime
// error. It fails the test outright on a syntax or static error, since
// none of the programs below are meant to trigger those.
func runProgram(t *testing.T, src string) (string, *loxerr.RuntimeError) {
	t.Helper()
	var syntaxErrs []string
	report := func(tok token.Token, message string) { syntaxErrs = append(syntaxErrs, message) }

	toks := scanner.Scan(src, func(line int, message string) { syntaxErrs = append(syntaxErrs, message) })
	program := parser.Parse(toks, report)
	if len(syntaxErrs) != 0 {
		t.Fatalf("unexpected syntax errors for %q: %v", src, syntaxErrs)
	}

	locals := resolver.Resolve(program, nil, report)
	if len(syntaxErrs) != 0 {
		t.Fatalf("unexpected static errors for %q: %v", src, syntaxErrs)
	}

	var out strings.Builder
	in := New(&out)
	rtErr := in.Interpret(program, locals)
	return out.String(), rtErr
}

func TestClosuresShareACounter(t *testing.T) {
	out, rtErr := runProgram(t, `
		fun makeCounter() {
			var i = 0;
			fun count() {
				i = i + 1;
				print i;
			}
			return count;
		}
		var c = makeCounter();
		c();
		c();
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "1\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestLexicalNotDynamicScope(t *testing.T) {
	out, rtErr := runProgram(t, `
		var a = "global";
		{
			fun showA() { print a; }
			showA();
			var a = "block";
			showA();
		}
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "global\nglobal\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClassConstructorAndMethod(t *testing.T) {
	out, rtErr := runProgram(t, `
		class Cake {
			taste() {
				var adjective = "delicious";
				print "The " + this.flavor + " cake is " + adjective + "!";
			}
		}
		var cake = Cake();
		cake.flavor = "German chocolate";
		cake.taste();
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "The German chocolate cake is delicious!\n" {
		t.Fatalf("got %q", out)
	}
}

func TestSuperclassMethodViaSuper(t *testing.T) {
	out, rtErr := runProgram(t, `
		class A { method() { print "A"; } }
		class B < A { method() { print "B"; } test() { super.method(); } }
		class C < B {}
		C().test();
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "A\n" {
		t.Fatalf("got %q", out)
	}
}

func TestInitializerReturnsThis(t *testing.T) {
	out, rtErr := runProgram(t, `
		class Foo { init() { return; } }
		var f = Foo();
		print f;
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "Foo instance\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRuntimeErrorOnNonNumberArithmetic(t *testing.T) {
	out, rtErr := runProgram(t, `print 1 + true;`)
	if rtErr == nil {
		t.Fatalf("expected a runtime error, got none (output: %q)", out)
	}
	if rtErr.Message != "Operands must be two numbers or either operands must be a string." {
		t.Fatalf("got message %q", rtErr.Message)
	}
	if rtErr.Token.Line != 1 {
		t.Fatalf("got line %d", rtErr.Token.Line)
	}
}

func TestTruthinessLaw(t *testing.T) {
	cases := map[string]string{
		"nil":   "false",
		"false": "false",
		"true":  "true",
		"0":     "true",
		`""`:    "true",
	}
	for expr, want := range cases {
		out, rtErr := runProgram(t, "print !!("+expr+");")
		if rtErr != nil {
			t.Fatalf("unexpected runtime error for %s: %v", expr, rtErr)
		}
		if out != want+"\n" {
			t.Fatalf("!!(%s) = %q, want %q", expr, out, want+"\n")
		}
	}
}

func TestStringifyNeverEndsInDotZero(t *testing.T) {
	out, rtErr := runProgram(t, "print 1.0; print 2.5;")
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "1\n2.5\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAndOrReturnOperandValue(t *testing.T) {
	out, rtErr := runProgram(t, `
		print "hi" or "bye";
		print nil or "bye";
		print false and "bye";
		print "hi" and "bye";
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "hi\nbye\nfalse\nbye\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAssignmentEvaluatesToAssignedValue(t *testing.T) {
	out, rtErr := runProgram(t, `
		var x;
		print x = 5;
	`)
	if rtErr != nil {
		t.Fatalf("unexpected runtime error: %v", rtErr)
	}
	if out != "5\n" {
		t.Fatalf("got %q", out)
	}
}

func TestDivideByZeroIsRuntimeError(t *testing.T) {
	_, rtErr := runProgram(t, "print 1 / 0;")
	if rtErr == nil || rtErr.Message != "Cannot divide by zero." {
		t.Fatalf("got %v", rtErr)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, rtErr := runProgram(t, "print undeclared;")
	if rtErr == nil || rtErr.Message != "Undefined variable 'undeclared'." {
		t.Fatalf("got %v", rtErr)
	}
}

func TestUninitializedLocalIsRuntimeError(t *testing.T) {
	_, rtErr := runProgram(t, "{ var a; print a; }")
	if rtErr == nil || rtErr.Message != "Uninitialized variable 'a'." {
		t.Fatalf("got %v", rtErr)
	}
}

func TestSideTablePersistsAcrossInterpretCalls(t *testing.T) {
	var out strings.Builder
	in := New(&out)
	report := func(tok token.Token, message string) {}

	var sideTable map[ast.Expr]int
	// The closure's local references are resolved only while resolving
	// line 1, so line 2's calls depend on those side-table entries.
	line1 := parser.Parse(scanner.Scan("fun makeCounter() { var i = 0; fun count() { i = i + 1; print i; } return count; } var bump = makeCounter();", nil), report)
	sideTable = resolver.Resolve(line1, sideTable, report)
	if err := in.Interpret(line1, sideTable); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}

	line2 := parser.Parse(scanner.Scan("bump(); bump();", nil), report)
	sideTable = resolver.Resolve(line2, sideTable, report)
	if err := in.Interpret(line2, sideTable); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}

	if out.String() != "1\n2\n" {
		t.Fatalf("got %q", out.String())
	}
}
