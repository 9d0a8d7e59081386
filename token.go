package bst

import "strings"

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	// Special tokens
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // format.names, sort.key$
	QUOTED = "QUOTED" // 'skip$
	STRING = "STRING" // "text"
	INT    = "INT"    // #12, #-1

	// Operators
	LT       = "<"
	GT       = ">"
	EQ       = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	ASSIGN   = ":="

	// Delimiters
	LBRACE = "{"
	RBRACE = "}"

	// Commands
	ENTRY    = "ENTRY"
	EXECUTE  = "EXECUTE"
	FUNCTION = "FUNCTION"
	INTEGERS = "INTEGERS"
	ITERATE  = "ITERATE"
	MACRO    = "MACRO"
	READ     = "READ"
	REVERSE  = "REVERSE"
	SORT     = "SORT"
	STRINGS  = "STRINGS"
)

var keywords = map[string]TokenType{
	"ENTRY":    ENTRY,
	"EXECUTE":  EXECUTE,
	"FUNCTION": FUNCTION,
	"INTEGERS": INTEGERS,
	"ITERATE":  ITERATE,
	"MACRO":    MACRO,
	"READ":     READ,
	"REVERSE":  REVERSE,
	"SORT":     SORT,
	"STRINGS":  STRINGS,
}

// lookupIdent returns the command token type for a reserved word, or IDENT.
func lookupIdent(ident string) TokenType {
	if typ, ok := keywords[strings.ToUpper(ident)]; ok {
		return typ
	}
	return IDENT
}

// isKeyword reports whether typ is one of the command words.
func isKeyword(typ TokenType) bool {
	_, ok := keywords[string(typ)]
	return ok
}

// isOperator reports whether typ is an operator usable as a function name.
func isOperator(typ TokenType) bool {
	switch typ {
	case LT, GT, EQ, PLUS, MINUS, ASTERISK, ASSIGN:
		return true
	}
	return false
}

// Token is one lexeme together with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Int     int // only meaningful when Type == INT
	Line    int
	Col     int
}
