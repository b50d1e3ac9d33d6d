// Command lox is the driver described in spec §6: it selects file or
// interactive mode, feeds source text through the Scanner → Parser →
// Resolver → Interpreter pipeline, and turns the result into an exit
// code. None of the language semantics live here — this package is
// pure wiring.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/loxlang/lox/internal/ast"
	"github.com/loxlang/lox/internal/interp"
	"github.com/loxlang/lox/internal/loxerr"
	"github.com/loxlang/lox/internal/parser"
	"github.com/loxlang/lox/internal/resolver"
	"github.com/loxlang/lox/internal/scanner"
)

const historyFile = ".lox_history"

func main() {
	args := os.Args[1:]
	debug := false
	if len(args) > 0 && args[0] == "-ast" {
		debug = true
		args = args[1:]
	}

	switch len(args) {
	case 0:
		runRepl(debug)
	case 1:
		os.Exit(runFile(args[0], debug))
	default:
		fmt.Fprintln(os.Stderr, "Usage: jlox [-ast] [script]")
		os.Exit(64)
	}
}

func runFile(path string, debug bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	reporter := &loxerr.Reporter{Out: os.Stderr}
	in := interp.New(os.Stdout)
	run(string(src), reporter, in, nil, debug)

	switch {
	case reporter.HadError:
		return 65
	case reporter.HadRuntimeError:
		return 70
	default:
		return 0
	}
}

// runRepl implements spec §6's interactive mode: one line of input per
// pipeline run, the error flags reset between lines, globals and the
// resolver side-table persisted across them.
func runRepl(debug bool) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	reporter := &loxerr.Reporter{Out: os.Stderr}
	in := interp.New(os.Stdout)
	var locals map[ast.Expr]int

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return
		}
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		reporter.Reset()
		locals = run(line, reporter, in, locals, debug)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

// run drives one top-level input through the pipeline, skipping later
// stages once an earlier one reports an error (spec §2). It returns the
// (possibly grown) resolver side-table for the caller to pass back in on
// the next input.
func run(src string, reporter *loxerr.Reporter, in *interp.Interpreter, locals map[ast.Expr]int, debug bool) map[ast.Expr]int {
	tokens := scanner.Scan(src, reporter.ScanError)

	program := parser.Parse(tokens, reporter.TokenError)
	if reporter.HadError {
		return locals
	}

	if debug {
		if program.IsExpression() {
			ast.PrintTree(program.Expr)
		} else {
			ast.PrintTree(program.Stmts)
		}
	}

	locals = resolver.Resolve(program, locals, reporter.TokenError)
	if reporter.HadError {
		return locals
	}

	if rtErr := in.Interpret(program, locals); rtErr != nil {
		reporter.Runtime(rtErr)
	}
	return locals
}
