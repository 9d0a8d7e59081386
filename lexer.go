package bst

import (
	"strconv"
	"unicode"
)

// Lexer scans BST source one token at a time. The current token is kept in
// the Curr* fields; call NextToken repeatedly until CurrTokenType == EOF.
type Lexer struct {
	input []rune
	pos   int // current reading position in input
	line  int // line of input[pos]
	col   int // column of input[pos]

	CurrTokenType TokenType
	CurrLiteral   string
	CurrIntValue  int // only meaningful when CurrTokenType == INT
	CurrLine      int
	CurrCol       int

	Errors *ErrorCollection
}

// NewLexer returns a lexer positioned before the first token of src.
func NewLexer(src string) *Lexer {
	return &Lexer{
		input:  []rune(src),
		line:   1,
		col:    1,
		Errors: &ErrorCollection{},
	}
}

// Token returns the current token.
func (l *Lexer) Token() Token {
	return Token{
		Type:    l.CurrTokenType,
		Literal: l.CurrLiteral,
		Int:     l.CurrIntValue,
		Line:    l.CurrLine,
		Col:     l.CurrCol,
	}
}

// Tokenize scans all of src. The returned slice always ends with an EOF
// token; the error is an *ErrorCollection when src is malformed.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		l.NextToken()
		toks = append(toks, l.Token())
		if l.CurrTokenType == EOF {
			break
		}
	}
	if l.Errors.HasErrors() {
		return toks, l.Errors
	}
	return toks, nil
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) set(typ TokenType, lit string) {
	l.CurrTokenType = typ
	l.CurrLiteral = lit
}

// NextToken scans the next token and stores it in the Curr* fields.
func (l *Lexer) NextToken() {
	l.skipWhitespaceAndComments()

	l.CurrIntValue = 0
	l.CurrLine = l.line
	l.CurrCol = l.col

	if l.atEnd() {
		l.set(EOF, "")
		return
	}

	c := l.peek()
	switch {
	case c == '{':
		l.advance()
		l.set(LBRACE, "{")
	case c == '}':
		l.advance()
		l.set(RBRACE, "}")
	case c == '<':
		l.advance()
		l.set(LT, "<")
	case c == '>':
		l.advance()
		l.set(GT, ">")
	case c == '=':
		l.advance()
		l.set(EQ, "=")
	case c == '+':
		l.advance()
		l.set(PLUS, "+")
	case c == '-':
		l.advance()
		l.set(MINUS, "-")
	case c == '*':
		l.advance()
		l.set(ASTERISK, "*")
	case c == ':':
		if l.peekAt(1) == '=' {
			l.advance()
			l.advance()
			l.set(ASSIGN, ":=")
			return
		}
		l.illegal("unexpected ':' (did you mean ':='?)")
	case c == '"':
		l.readString()
	case c == '#':
		l.readInteger()
	case c == '\'':
		l.advance()
		if !isIdentStart(l.peek()) {
			l.Errors.Add(l.CurrLine, l.CurrCol, "expected identifier after '")
			l.set(ILLEGAL, "'")
			return
		}
		l.set(QUOTED, l.readIdentifier())
	case isIdentStart(c):
		ident := l.readIdentifier()
		l.set(lookupIdent(ident), ident)
	default:
		l.illegal("unexpected character %q", c)
	}
}

func (l *Lexer) illegal(format string, args ...any) {
	l.Errors.Add(l.CurrLine, l.CurrCol, format, args...)
	l.set(ILLEGAL, string(l.peek()))
	l.advance()
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case unicode.IsSpace(c):
			l.advance()
		case c == '%':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '.' || r == '$'
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.atEnd() && isIdentChar(l.peek()) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readString() {
	l.advance() // skip opening "
	start := l.pos
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}
	if l.atEnd() {
		l.Errors.Add(l.CurrLine, l.CurrCol, "unterminated string literal")
		l.set(ILLEGAL, string(l.input[start-1:]))
		return
	}
	lit := string(l.input[start:l.pos])
	l.advance() // skip closing "
	l.set(STRING, lit)
}

func (l *Lexer) readInteger() {
	l.advance() // skip #
	start := l.pos
	if c := l.peek(); c == '+' || c == '-' {
		l.advance()
	}
	digits := l.pos
	for !l.atEnd() && l.peek() >= '0' && l.peek() <= '9' {
		l.advance()
	}
	lit := string(l.input[start:l.pos])
	if l.pos == digits {
		l.Errors.Add(l.CurrLine, l.CurrCol, "expected digits after #")
		l.set(ILLEGAL, "#"+lit)
		return
	}
	n, err := strconv.Atoi(lit)
	if err != nil {
		l.Errors.Add(l.CurrLine, l.CurrCol, "integer literal #%s out of range", lit)
		l.set(ILLEGAL, "#"+lit)
		return
	}
	l.set(INT, lit)
	l.CurrIntValue = n
}
