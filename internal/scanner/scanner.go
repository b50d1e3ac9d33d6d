// Package scanner turns Lox source text into a token stream.
//
// It is a single forward pass over the input with one character of
// lookahead (two for distinguishing a trailing "." in a number and for
// classifying an identifier run). Where two productions could both match,
// the one consuming more characters wins: "==" beats "=", "<=" beats "<",
// a line comment beats a bare "/".
package scanner

import (
	"strconv"
	"unicode"

	"github.com/loxlang/lox/internal/token"
)

// Reporter receives a lexical error for the given source line.
type Reporter func(line int, message string)

// Scanner holds the mutable state of a single scan.
type Scanner struct {
	src      []rune
	start    int
	current  int
	line     int
	tokens   []token.Token
	hadError bool
	report   Reporter
}

// Scan tokenizes src and returns the token stream, always ending in
// exactly one EOF token. Lexical errors are sent to report; scanning
// continues past them so later errors can also surface.
func Scan(src string, report Reporter) []token.Token {
	s := &Scanner{
		src:    []rune(src),
		line:   1,
		report: report,
	}
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.Token{Type: token.EOF, Lexeme: "", Line: s.line})
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)
	case '!':
		s.add(s.twoChar('=', token.BangEqual, token.Bang))
	case '=':
		s.add(s.twoChar('=', token.EqualEqual, token.Equal))
	case '<':
		s.add(s.twoChar('=', token.LessEqual, token.Less))
	case '>':
		s.add(s.twoChar('=', token.GreaterEqual, token.Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		} else {
			s.add(token.Slash)
		}
	case ' ', '\r', '\t':
		// whitespace, ignored
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			s.err("Unexpected character.")
		}
	}
}

func (s *Scanner) scanString() {
	startLine := s.line
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.line = startLine
		s.err("Unterminated string.")
		return
	}
	s.advance() // closing quote
	value := string(s.src[s.start+1 : s.current-1])
	s.addLiteral(token.String, value)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	text := string(s.src[s.start:s.current])
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.err("Invalid number literal.")
		return
	}
	s.addLiteral(token.Number, value)
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := string(s.src[s.start:s.current])
	if kw, ok := token.Keywords[text]; ok {
		s.add(kw)
		return
	}
	s.add(token.Identifier)
}

func (s *Scanner) add(t token.Type) {
	s.addLiteral(t, nil)
}

func (s *Scanner) addLiteral(t token.Type, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Type:    t,
		Lexeme:  string(s.src[s.start:s.current]),
		Literal: literal,
		Line:    s.line,
	})
}

func (s *Scanner) err(message string) {
	s.hadError = true
	if s.report != nil {
		s.report(s.line, message)
	}
}

// twoChar returns matched if the next rune equals expected (consuming it),
// else unmatched.
func (s *Scanner) twoChar(expected rune, matched, unmatched token.Type) token.Type {
	if s.match(expected) {
		return matched
	}
	return unmatched
}

func (s *Scanner) advance() rune {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected rune) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) atEnd() bool {
	return s.current >= len(s.src)
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isAlpha(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isAlphaNumeric(c rune) bool {
	return isAlpha(c) || isDigit(c)
}
