package scanner

import (
	"reflect"
	"testing"

	"github.com/loxlang/lox/internal/token"
)

func scanNoErrors(t *testing.T, src string) []token.Token {
	t.Helper()
	var errs []string
	toks := Scan(src, func(line int, message string) {
		errs = append(errs, message)
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors for %q: %v", src, errs)
	}
	return toks
}

func typesWithoutEOF(toks []token.Token) []token.Type {
	out := make([]token.Type, 0, len(toks))
	for _, tok := range toks {
		if tok.Type == token.EOF {
			continue
		}
		out = append(out, tok.Type)
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanNoErrors(t, "(){},.-+;*!!====<=<>=>")
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon, token.Star,
		token.Bang, token.BangEqual, token.EqualEqual, token.Equal,
		token.LessEqual, token.Less, token.GreaterEqual, token.Greater,
	}
	got := typesWithoutEOF(toks)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanLineCommentDiscarded(t *testing.T) {
	toks := scanNoErrors(t, "1 // a comment\n2")
	got := typesWithoutEOF(toks)
	want := []token.Type{token.Number, token.Number}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanString(t *testing.T) {
	toks := scanNoErrors(t, `"hello world"`)
	if len(toks) != 2 || toks[0].Type != token.String {
		t.Fatalf("got %v", toks)
	}
	if toks[0].Literal != "hello world" {
		t.Fatalf("literal = %v, want %q", toks[0].Literal, "hello world")
	}
}

func TestScanMultilineStringTracksLine(t *testing.T) {
	toks := scanNoErrors(t, "\"a\nb\"\nprint")
	if toks[0].Type != token.String {
		t.Fatalf("got %v", toks)
	}
	// The print keyword starts on line 3, after the two lines consumed by
	// the string literal.
	if toks[1].Line != 3 {
		t.Fatalf("print token line = %d, want 3", toks[1].Line)
	}
}

func TestScanUnterminatedStringReportsAtStartLine(t *testing.T) {
	var gotLine int
	var gotMsg string
	Scan("\n\"abc", func(line int, message string) {
		gotLine = line
		gotMsg = message
	})
	if gotLine != 2 || gotMsg != "Unterminated string." {
		t.Fatalf("got line=%d msg=%q", gotLine, gotMsg)
	}
}

func TestScanNumber(t *testing.T) {
	toks := scanNoErrors(t, "123 45.67")
	if toks[0].Literal != 123.0 {
		t.Fatalf("got %v", toks[0].Literal)
	}
	if toks[1].Literal != 45.67 {
		t.Fatalf("got %v", toks[1].Literal)
	}
}

func TestScanNumberNoTrailingDot(t *testing.T) {
	toks := scanNoErrors(t, "123.")
	got := typesWithoutEOF(toks)
	want := []token.Type{token.Number, token.Dot}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanNoErrors(t, "and class orange")
	got := typesWithoutEOF(toks)
	want := []token.Type{token.And, token.Class, token.Identifier}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanUnexpectedCharacterContinues(t *testing.T) {
	var msgs []string
	toks := Scan("1 @ 2", func(line int, message string) {
		msgs = append(msgs, message)
	})
	if len(msgs) != 1 || msgs[0] != "Unexpected character." {
		t.Fatalf("got %v", msgs)
	}
	got := typesWithoutEOF(toks)
	want := []token.Type{token.Number, token.Number}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanAlwaysEndsInEOF(t *testing.T) {
	toks := Scan("", nil)
	if len(toks) != 1 || toks[0].Type != token.EOF {
		t.Fatalf("got %v", toks)
	}
}
