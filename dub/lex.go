package dub

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	typeUnknown tokenType = iota
	typeInt
	typeFloat
	typeIdentifier
	typeString
	typeSemicolon
	typeEOF
)

func (t tokenType) String() string {
	switch t {
	case typeInt:
		return "int"
	case typeFloat:
		return "float"
	case typeIdentifier:
		return "identifier"
	case typeString:
		return "string"
	case typeSemicolon:
		return "separator"
	case typeEOF:
		return "end of input"
	}
	return "unknown"
}

const eof = -1

type token struct {
	typ  tokenType
	pos  int
	text string
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	return l.lex()
}

type lexer struct {
	input string

	width int
	start int
	pos   int

	tokens []token
	err    error
}

func (l *lexer) lex() ([]token, error) {
	for {
		switch r := l.next(); {
		case r == eof:
			l.yieldToken(typeEOF)
			return l.tokens, l.err
		case r == '#':
			l.ignoreComment()
		case unicode.IsLetter(r):
			l.lexIdentifier()
		case l.isNumber(r):
			l.lexNumber()
		case r == '"':
			l.lexString()
		case r == ';' || r == '\n':
			l.yieldToken(typeSemicolon)
		case isSpace(r):
			l.ignoreSpace()
		default:
			l.invalidChar(r)
		}
		if l.err != nil {
			return l.tokens, l.err
		}
	}
}

func (l *lexer) next() rune {
	if len(l.input) == l.pos {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	return r
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) yieldToken(t tokenType) {
	s := l.input[l.start:l.pos]
	l.tokens = append(l.tokens, token{t, l.start, s})
	l.start = l.pos
	l.width = 0
}

func (l *lexer) errorf(format string, args ...interface{}) {
	l.err = fmt.Errorf(format, args...)
}

func (l *lexer) invalidChar(r rune) {
	if r == eof {
		l.errorf("unexpected end of input")
		return
	}
	l.errorf("unexpected character at position %d: %#U", l.pos-l.width, r)
}

func (l *lexer) ignoreSpace() {
	for isSpace(l.peek()) {
		l.next()
	}
	l.start = l.pos
}

// ignoreComment drops everything up to the end of the line.
func (l *lexer) ignoreComment() {
	for r := l.peek(); r != eof && r != '\n'; r = l.peek() {
		l.next()
	}
	l.start = l.pos
}

func (l *lexer) take(set string) int {
	var n int
	for strings.IndexRune(set, l.next()) >= 0 {
		n++
	}
	l.backup()
	return n
}

func (l *lexer) accept(set string) bool {
	if strings.IndexRune(set, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

// Identifiers may contain dots and dashes so that property names like
// env.attack and flags like bend-range lex as one token.
func (l *lexer) lexIdentifier() {
	for {
		switch r := l.next(); {
		case unicode.IsLetter(r) || isDigit(r) || r == '_' || r == '.' || r == '-':
		default:
			l.backup()
			if isDelimiter(r) {
				l.yieldToken(typeIdentifier)
			} else {
				l.invalidChar(r)
			}
			return
		}
	}
}

func (l *lexer) lexString() {
	for {
		switch r := l.next(); r {
		case '\\':
			l.next()
		case '"':
			l.yieldToken(typeString)
			return
		case eof, '\n':
			l.errorf("unterminated string at position %d", l.start)
			return
		}
	}
}

const (
	digits    = "0123456789"
	hexDigits = "0123456789abcdefABCDEF"
)

// lexNumber assumes input has been checked to contain at least one digit using isNumber
func (l *lexer) lexNumber() {
	// Back up to see a possible leading '.'
	l.backup()

	isFloat := false
	if l.accept("0") && l.accept("xX") {
		if l.take(hexDigits) == 0 {
			l.invalidChar(l.peek())
			return
		}
	} else {
		l.accept("-")
		l.take(digits)
		isFloat = l.accept(".")
		l.take(digits)
	}

	r := l.peek()
	if !isDelimiter(r) {
		l.invalidChar(r)
		return
	}
	if isFloat {
		l.yieldToken(typeFloat)
	} else {
		l.yieldToken(typeInt)
	}
}

func (l *lexer) isNumber(r rune) bool {
	if isDigit(r) {
		return true
	}
	peek := l.peek()
	if r == '-' {
		if isDigit(peek) {
			return true
		}
		if peek == '.' {
			l.next()
			defer l.backup()
			return isDigit(l.peek())
		}
	}
	return r == '.' && isDigit(peek)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func isDelimiter(r rune) bool {
	return r == eof || r == ';' || r == '\n' || r == '#' || isSpace(r)
}
