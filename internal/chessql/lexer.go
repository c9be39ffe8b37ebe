package chessql

import (
	"strings"

	"github.com/atinm/chesstactics/internal/chesserr"
)

// Lexer tokenizes a ChessQL query string.
type Lexer struct {
	input string
	pos   int // byte offset into input, 0-based
}

// NewLexer returns a Lexer over query.
func NewLexer(query string) *Lexer {
	return &Lexer{input: query}
}

// position1 converts the lexer's 0-based offset to the 1-based position
// spec §4.10 errors report.
func (l *Lexer) position1(offset int) int {
	return offset + 1
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() byte {
	c := l.peek()
	l.pos++
	return c
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func (l *Lexer) skipWhitespace() {
	for {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

// Next returns the next token, or a *chesserr.LexError if the input is
// malformed.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: EOF, Position: l.position1(start)}, nil
	}

	c := l.peek()

	switch {
	case c == '(':
		l.advance()
		return Token{Kind: LPAREN, Lexeme: "(", Position: l.position1(start)}, nil
	case c == ')':
		l.advance()
		return Token{Kind: RPAREN, Lexeme: ")", Position: l.position1(start)}, nil
	case c == '[':
		l.advance()
		return Token{Kind: LBRACKET, Lexeme: "[", Position: l.position1(start)}, nil
	case c == ']':
		l.advance()
		return Token{Kind: RBRACKET, Lexeme: "]", Position: l.position1(start)}, nil
	case c == ',':
		l.advance()
		return Token{Kind: COMMA, Lexeme: ",", Position: l.position1(start)}, nil
	case c == '=':
		l.advance()
		return Token{Kind: EQ, Lexeme: "=", Position: l.position1(start)}, nil
	case c == '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: NEQ, Lexeme: "!=", Position: l.position1(start)}, nil
		}
		return Token{Kind: ILLEGAL, Lexeme: "!", Position: l.position1(start)},
			&chesserr.LexError{Kind: chesserr.UnknownCharacter, Position: l.position1(start), Detail: "unexpected '!'"}
	case c == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: LTE, Lexeme: "<=", Position: l.position1(start)}, nil
		}
		return Token{Kind: LT, Lexeme: "<", Position: l.position1(start)}, nil
	case c == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: GTE, Lexeme: ">=", Position: l.position1(start)}, nil
		}
		return Token{Kind: GT, Lexeme: ">", Position: l.position1(start)}, nil
	case c == '"':
		return l.lexString(start)
	case c == '-' && isDigit(l.peekAt(1)):
		return l.lexInt(start)
	case isDigit(c):
		return l.lexInt(start)
	case isIdentStart(c):
		return l.lexIdent(start)
	default:
		l.advance()
		return Token{Kind: ILLEGAL, Lexeme: string(c), Position: l.position1(start)},
			&chesserr.LexError{Kind: chesserr.UnknownCharacter, Position: l.position1(start), Detail: "unexpected character " + string(c)}
	}
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) lexInt(start int) (Token, error) {
	if l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	return Token{Kind: INT, Lexeme: l.input[start:l.pos], Position: l.position1(start)}, nil
}

func (l *Lexer) lexIdent(start int) (Token, error) {
	l.advance()
	for isIdentContinue(l.peek()) || (l.peek() == '.' && isIdentStart(l.peekAt(1))) {
		l.advance()
	}
	lexeme := l.input[start:l.pos]
	if kw, ok := keywords[strings.ToUpper(lexeme)]; ok {
		return Token{Kind: kw, Lexeme: lexeme, Position: l.position1(start)}, nil
	}
	return Token{Kind: IDENT, Lexeme: lexeme, Position: l.position1(start)}, nil
}

func (l *Lexer) lexString(start int) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{Kind: ILLEGAL, Position: l.position1(start)},
				&chesserr.LexError{Kind: chesserr.UnterminatedString, Position: l.position1(start), Detail: "unterminated string literal"}
		}
		c := l.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if l.pos >= len(l.input) {
				return Token{Kind: ILLEGAL, Position: l.position1(start)},
					&chesserr.LexError{Kind: chesserr.UnterminatedString, Position: l.position1(start), Detail: "unterminated string literal"}
			}
			esc := l.advance()
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(c)
	}
	return Token{Kind: STRING, Lexeme: sb.String(), Position: l.position1(start)}, nil
}

// Tokenize drains the lexer into a slice, stopping at and including EOF,
// or returns the first error encountered.
func Tokenize(query string) ([]Token, error) {
	l := NewLexer(query)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}
