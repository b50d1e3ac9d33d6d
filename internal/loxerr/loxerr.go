// Package loxerr defines the three error kinds the pipeline produces
// (syntax/lexical, static/resolver, runtime) and the exact sink text
// formats spec'd for each.
package loxerr

import (
	"fmt"
	"io"

	"github.com/loxlang/lox/internal/token"
)

// RuntimeError carries the token responsible for a failed runtime
// operation together with a message. It unwinds the current evaluation
// (via a normal Go error return) up to the top-level Interpret call; it
// is never used to implement "return" — that is a distinct, non-error
// control-flow signal (see interp.returnSignal).
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// NewRuntimeError builds a *RuntimeError from a token and message.
func NewRuntimeError(t token.Token, message string) *RuntimeError {
	return &RuntimeError{Token: t, Message: message}
}

// Reporter accumulates the "had an error" flags the driver checks between
// pipeline stages (spec §2: later stages are skipped when earlier ones
// reported errors) and formats every error kind to Out.
type Reporter struct {
	Out             io.Writer
	HadError        bool // syntax, lexical, or static (resolver) error
	HadRuntimeError bool
}

// ScanError reports a scan-time error with no associated token.
func (r *Reporter) ScanError(line int, message string) {
	r.report(line, "", message)
}

// TokenError reports a parse- or resolve-time error located at a token.
func (r *Reporter) TokenError(t token.Token, message string) {
	where := " at '" + t.Lexeme + "'"
	if t.Type == token.EOF {
		where = " at end"
	}
	r.report(t.Line, where, message)
}

func (r *Reporter) report(line int, where, message string) {
	fmt.Fprintf(r.Out, "[line %d] Error%s: %s\n", line, where, message)
	r.HadError = true
}

// Runtime reports a runtime error using the "<message>\n[line N]" format.
func (r *Reporter) Runtime(err *RuntimeError) {
	fmt.Fprintf(r.Out, "%s\n[line %d]\n", err.Message, err.Token.Line)
	r.HadRuntimeError = true
}

// Reset clears both flags, matching the interactive driver resetting
// error state between input lines while preserving interpreter state.
func (r *Reporter) Reset() {
	r.HadError = false
	r.HadRuntimeError = false
}
