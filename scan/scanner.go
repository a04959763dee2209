// Package scan converts source text into a flat sequence of tokens.
package scan

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golox/ast"
)

var keywords = map[string]ast.TokenType{
	"and":    ast.TokenAnd,
	"class":  ast.TokenClass,
	"else":   ast.TokenElse,
	"false":  ast.TokenFalse,
	"for":    ast.TokenFor,
	"fun":    ast.TokenFun,
	"if":     ast.TokenIf,
	"nil":    ast.TokenNil,
	"or":     ast.TokenOr,
	"print":  ast.TokenPrint,
	"return": ast.TokenReturn,
	"super":  ast.TokenSuper,
	"this":   ast.TokenThis,
	"true":   ast.TokenTrue,
	"var":    ast.TokenVar,
	"while":  ast.TokenWhile,
}

// Scanner converts a source text into a slice of ast.Token-s in a single
// left-to-right pass. Lexical errors are reported to stdErr and scanning
// continues, so one run surfaces every lexical problem in the source.
type Scanner struct {
	start    int
	current  int
	line     int
	source   string
	tokens   []ast.Token
	stdErr   io.Writer
	hadError bool
}

// NewScanner returns a new Scanner that reports errors to stdErr
func NewScanner(source string, stdErr io.Writer) *Scanner {
	return &Scanner{source: source, line: 1, stdErr: stdErr}
}

// ScanTokens returns the tokens representing the source text and whether
// any lexical error was found
func (s *Scanner) ScanTokens() ([]ast.Token, bool) {
	for !s.isAtEnd() {
		// we're at the beginning of the next lexeme
		s.start = s.current
		s.scanToken()
	}

	s.tokens = append(s.tokens, ast.Token{TokenType: ast.TokenEof, Line: s.line})
	return s.tokens, s.hadError
}

func (s *Scanner) scanToken() {
	char := s.advance()
	switch char {
	case '(':
		s.addToken(ast.TokenLeftParen)
	case ')':
		s.addToken(ast.TokenRightParen)
	case '{':
		s.addToken(ast.TokenLeftBrace)
	case '}':
		s.addToken(ast.TokenRightBrace)
	case ',':
		s.addToken(ast.TokenComma)
	case '.':
		s.addToken(ast.TokenDot)
	case '-':
		s.addToken(ast.TokenMinus)
	case '+':
		s.addToken(ast.TokenPlus)
	case ';':
		s.addToken(ast.TokenSemicolon)
	case ':':
		s.addToken(ast.TokenColon)
	case '*':
		s.addToken(ast.TokenStar)
	case '?':
		s.addToken(ast.TokenQuestionMark)

	// with look-ahead
	case '!':
		if s.match('=') {
			s.addToken(ast.TokenBangEqual)
		} else {
			s.addToken(ast.TokenBang)
		}
	case '=':
		if s.match('=') {
			s.addToken(ast.TokenEqualEqual)
		} else {
			s.addToken(ast.TokenEqual)
		}
	case '<':
		if s.match('=') {
			s.addToken(ast.TokenLessEqual)
		} else {
			s.addToken(ast.TokenLess)
		}
	case '>':
		if s.match('=') {
			s.addToken(ast.TokenGreaterEqual)
		} else {
			s.addToken(ast.TokenGreater)
		}
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else if s.match('*') {
			s.blockComment()
		} else {
			s.addToken(ast.TokenSlash)
		}

	// whitespace
	case ' ', '\r', '\t':
	case '\n':
		s.line++

	case '"':
		s.string()

	default:
		switch {
		case s.isDigit(char):
			s.number()
		case s.isAlpha(char):
			s.identifier()
		default:
			// decode the full rune so a multi-byte character is reported
			// (and skipped) whole, not byte by byte
			r, size := utf8.DecodeRuneInString(s.source[s.start:])
			s.current = s.start + size
			s.error(s.line, fmt.Sprintf("Unexpected character '%c'.", r))
		}
	}
}

// blockComment consumes a /* */ comment. Block comments may nest.
func (s *Scanner) blockComment() {
	nesting := 1
	for nesting > 0 && !s.isAtEnd() {
		switch {
		case s.peek() == '*' && s.peekNext() == '/':
			nesting--
			s.advance()
			s.advance()
		case s.peek() == '/' && s.peekNext() == '*':
			nesting++
			s.advance()
			s.advance()
		default:
			if s.peek() == '\n' {
				s.line++
			}
			s.advance()
		}
	}

	if nesting > 0 {
		s.error(s.line, "Unterminated block comment.")
	}
}

// string consumes a string literal. Strings may span multiple lines and
// support the escape sequences \\, \", \n, \r and \t. Everything else is
// copied byte for byte, so multi-byte UTF-8 text survives verbatim. An
// unterminated string is reported at the line where the string began.
func (s *Scanner) string() {
	startLine := s.line
	var value strings.Builder

	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		if s.peek() == '\\' {
			s.advance() // the backslash
			if s.isAtEnd() {
				s.error(startLine, "Unterminated string.")
				return
			}
			switch escaped := s.advance(); escaped {
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			case 'n':
				value.WriteByte('\n')
			case 'r':
				value.WriteByte('\r')
			case 't':
				value.WriteByte('\t')
			default:
				s.error(s.line, "Invalid escape sequence.")
			}
			continue
		}
		value.WriteByte(s.advance())
	}

	if s.isAtEnd() {
		s.error(startLine, "Unterminated string.")
		return
	}

	s.advance() // the closing "
	s.addTokenWithLiteral(ast.TokenString, value.String())
}

func (s *Scanner) number() {
	for s.isDigit(s.peek()) {
		s.advance()
	}

	// look for a fractional part
	if s.peek() == '.' && s.isDigit(s.peekNext()) {
		s.advance()
		for s.isDigit(s.peek()) {
			s.advance()
		}
	}

	val, _ := strconv.ParseFloat(s.source[s.start:s.current], 64)
	s.addTokenWithLiteral(ast.TokenNumber, val)
}

func (s *Scanner) identifier() {
	for s.isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[s.start:s.current]
	tokenType, found := keywords[text]
	if !found {
		tokenType = ast.TokenIdentifier
	}
	s.addToken(tokenType)
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

// The cursor helpers work on raw bytes. Every lexeme-significant character
// is ASCII; multi-byte runes only appear inside strings and comments (copied
// or skipped byte for byte) or as unexpected characters (decoded whole at
// the error site).
func (s *Scanner) advance() byte {
	curr := s.source[s.current]
	s.current++
	return curr
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() {
		return false
	}
	if s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return s.source[s.current+1]
}

func (s *Scanner) addToken(tokenType ast.TokenType) {
	s.addTokenWithLiteral(tokenType, nil)
}

func (s *Scanner) addTokenWithLiteral(tokenType ast.TokenType, literal interface{}) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, ast.Token{TokenType: tokenType, Lexeme: text, Literal: literal, Line: s.line})
}

func (s *Scanner) isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}

func (s *Scanner) isAlpha(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == '_'
}

func (s *Scanner) isAlphaNumeric(char byte) bool {
	return s.isAlpha(char) || s.isDigit(char)
}

func (s *Scanner) error(line int, message string) {
	_, _ = fmt.Fprintf(s.stdErr, "[line %d] Error: %s\n", line, message)
	s.hadError = true
}
