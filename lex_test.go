package bst

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func lexInput(input string) *Lexer {
	l := NewLexer(input)
	l.NextToken()
	return l
}

func TestIntLiteral(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		value   int
	}{
		{"#12345", "12345", 12345},
		{"#0", "0", 0},
		{"#-1", "-1", -1},
		{"#+7", "+7", 7},
	}

	for _, tt := range tests {
		l := lexInput(tt.input)
		be.Equal(t, l.CurrTokenType, TokenType(INT))
		be.Equal(t, l.CurrLiteral, tt.literal)
		be.Equal(t, l.CurrIntValue, tt.value)
	}
}

func TestIdentifier(t *testing.T) {
	tests := []string{"format.names", "sort.key$", "$x", ".dot", "author2", "Gödel"}
	for _, input := range tests {
		l := lexInput(input)
		be.Equal(t, l.CurrTokenType, TokenType(IDENT))
		be.Equal(t, l.CurrLiteral, input)
	}
}

func TestStringLiteral(t *testing.T) {
	l := lexInput(`"hello {world} % not a comment"`)
	be.Equal(t, l.CurrTokenType, TokenType(STRING))
	be.Equal(t, l.CurrLiteral, "hello {world} % not a comment")

	l = lexInput(`""`)
	be.Equal(t, l.CurrTokenType, TokenType(STRING))
	be.Equal(t, l.CurrLiteral, "")
}

func TestQuotedIdentifier(t *testing.T) {
	l := lexInput("'skip$")
	be.Equal(t, l.CurrTokenType, TokenType(QUOTED))
	be.Equal(t, l.CurrLiteral, "skip$")
}

func TestDelimiters(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"{", LBRACE},
		{"}", RBRACE},
	}

	for _, tt := range tests {
		l := lexInput(tt.input)
		be.Equal(t, l.CurrTokenType, tt.typ)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"<", LT},
		{">", GT},
		{"=", EQ},
		{"+", PLUS},
		{"-", MINUS},
		{"*", ASTERISK},
		{":=", ASSIGN},
	}

	for _, tt := range tests {
		l := lexInput(tt.input)
		be.Equal(t, l.CurrTokenType, tt.expected)
		be.Equal(t, l.CurrLiteral, tt.input)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"ENTRY", ENTRY},
		{"EXECUTE", EXECUTE},
		{"FUNCTION", FUNCTION},
		{"INTEGERS", INTEGERS},
		{"ITERATE", ITERATE},
		{"MACRO", MACRO},
		{"READ", READ},
		{"REVERSE", REVERSE},
		{"SORT", SORT},
		{"STRINGS", STRINGS},
		{"read", READ},
		{"Sort", SORT},
		{"reader", IDENT},
	}

	for _, tt := range tests {
		l := lexInput(tt.input)
		be.Equal(t, l.CurrTokenType, tt.expected)
		be.Equal(t, l.CurrLiteral, tt.input)
	}
}

func TestCommentsAndPositions(t *testing.T) {
	src := "% a comment\n  READ % trailing\n\tSORT"
	toks, err := Tokenize(src)
	be.Err(t, err, nil)
	be.Equal(t, len(toks), 3)

	be.Equal(t, toks[0].Type, TokenType(READ))
	be.Equal(t, toks[0].Line, 2)
	be.Equal(t, toks[0].Col, 3)

	be.Equal(t, toks[1].Type, TokenType(SORT))
	be.Equal(t, toks[1].Line, 3)
	be.Equal(t, toks[1].Col, 2)

	be.Equal(t, toks[2].Type, TokenType(EOF))
}

func TestTokenizeFunction(t *testing.T) {
	toks, err := Tokenize(`FUNCTION {not} { { #0 } { #1 } if$ }`)
	be.Err(t, err, nil)

	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	be.Equal(t, types, []TokenType{
		FUNCTION, LBRACE, IDENT, RBRACE,
		LBRACE,
		LBRACE, INT, RBRACE,
		LBRACE, INT, RBRACE,
		IDENT,
		RBRACE,
		EOF,
	})
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unterminated string", `"never closed`, "1:1: unterminated string literal"},
		{"illegal character", "READ\n  @", "2:3: unexpected character '@'"},
		{"lone colon", ":", "1:1: unexpected ':' (did you mean ':='?)"},
		{"hash without digits", "#x", "1:1: expected digits after #"},
		{"quote without identifier", "' x", "1:1: expected identifier after '"},
		{"integer out of range", "#99999999999999999999", "1:1: integer literal #99999999999999999999 out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var errs *ErrorCollection
			be.True(t, errors.As(err, &errs))
			be.Equal(t, errs.Errors[0].Error(), tt.msg)
		})
	}
}

func TestLexerRecovers(t *testing.T) {
	toks, err := Tokenize("@ READ")
	be.True(t, err != nil)
	be.Equal(t, toks[0].Type, TokenType(ILLEGAL))
	be.Equal(t, toks[1].Type, TokenType(READ))
}
