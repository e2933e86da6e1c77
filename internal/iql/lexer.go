package iql

import (
	"fmt"
	"strings"
	"unicode"
)

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int // rune offset in the input
}

// TokenKind is the type of token.
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokComma
	TokDot
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokIdent:
		return "Ident"
	case TokComma:
		return "Comma"
	case TokDot:
		return "Dot"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

func (t Token) String() string {
	if t.Kind == TokIdent {
		return fmt.Sprintf("%q", t.Value)
	}
	return t.Kind.String()
}

// is reports whether t is the given keyword, ignoring case.
func (t Token) is(keyword string) bool {
	return t.Kind == TokIdent && strings.EqualFold(t.Value, keyword)
}

// Lexer tokenizes a query string.
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Lex tokenizes the entire input. The last token is always TokEOF.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case ',':
		l.pos++
		return Token{Kind: TokComma, Pos: start}, nil
	case '.':
		l.pos++
		return Token{Kind: TokDot, Pos: start}, nil
	}

	if isIdentStart(ch) {
		for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokIdent, Value: string(l.input[start:l.pos]), Pos: start}, nil
	}

	return Token{}, fmt.Errorf("unexpected character %q at offset %d", ch, start)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

// Identifiers are ASCII only: aliases become SQL identifiers and class
// and relation names are ASCII in every compiled model.
func isIdentStart(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}

var keywords = []string{"SELECT", "FROM", "AS", "WHERE", "AND", "CONTAINS", "ORDER", "BY"}

func isKeyword(t Token) bool {
	for _, kw := range keywords {
		if t.is(kw) {
			return true
		}
	}
	return false
}
