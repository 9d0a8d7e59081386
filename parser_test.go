package bst

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseSExpr(t *testing.T, src string) string {
	t.Helper()
	program, err := Parse(src)
	be.Err(t, err, nil)
	return ToSExpr(program)
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"READ", `(program (read))`},
		{"read sort", `(program (read) (sort))`},
		{
			"FUNCTION {init} { #0 'x := }",
			`(program (function "init" (block (integer 0) (quoted "x") (call ":="))))`,
		},
		{"FUNCTION {nothing} {}", `(program (function "nothing" (block)))`},
		{`MACRO {jan} {"January"}`, `(program (macro "jan" "January"))`},
		{
			"ENTRY {author title} {} {label}",
			`(program (entry (list "author" "title") (list) (list "label")))`,
		},
		{"STRINGS {s t}", `(program (strings "s" "t"))`},
		{"INTEGERS {n}", `(program (integers "n"))`},
		{"EXECUTE {begin.bib}", `(program (execute (call "begin.bib")))`},
		{"REVERSE {+}", `(program (reverse (call "+")))`},
		{
			"ITERATE { { cite$ write$ } }",
			`(program (iterate (block (call "cite$") (call "write$"))))`,
		},
	}

	for _, tt := range tests {
		be.Equal(t, parseSExpr(t, tt.input), tt.expected)
	}
}

func TestParseFunctionBody(t *testing.T) {
	src := `
FUNCTION {not}
{   { #0 }
    { #1 }
  if$
}`
	be.Equal(t, parseSExpr(t, src),
		`(program (function "not" (block (block (integer 0)) (block (integer 1)) (call "if$"))))`)

	// Command words are plain names inside a body.
	be.Equal(t, parseSExpr(t, "FUNCTION {f} { read 'sort }"),
		`(program (function "f" (block (call "read") (quoted "sort"))))`)

	be.Equal(t, parseSExpr(t, `FUNCTION {f} { "a\b" #-3 }`),
		`(program (function "f" (block (string "a\\b") (integer -3))))`)
}

func TestParsePositions(t *testing.T) {
	program, err := Parse("READ\n\nFUNCTION {f}\n  { skip$ }")
	be.Err(t, err, nil)

	fn := program.Children[1]
	be.Equal(t, fn.Kind, NodeFunction)
	be.Equal(t, fn.Line, 3)
	be.Equal(t, fn.Col, 1)

	call := fn.Children[0].Children[0]
	be.Equal(t, call.Kind, NodeCall)
	be.Equal(t, call.Line, 4)
	be.Equal(t, call.Col, 5)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty program", "", "1:1: empty program"},
		{"comment only", "% nothing here", "1:15: empty program"},
		{"unknown command", "FOO", `1:1: expected a command but got "FOO"`},
		{"empty strings", "STRINGS {}", "1:1: strings needs at least one identifier"},
		{"unterminated body", "FUNCTION {f} { #1", "1:18: unterminated function body starting at 1:14"},
		{"execute nothing", "EXECUTE {}", "1:10: execute needs a function"},
		{"execute string", `EXECUTE {"x"}`, "1:10: execute needs a function, not a string"},
		{"macro without string", "MACRO {m} {x}", `1:12: expected macro string but got "x"`},
		{"stray brace", "FUNCTION {f} { x } }", `1:20: expected a command but got "}"`},
		{"missing function name", "FUNCTION {#1}", `1:11: expected identifier but got integer #1`},
		{"lexer error first", "READ @", "1:6: unexpected character '@'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			be.True(t, err != nil)
			be.Equal(t, err.Error(), tt.msg)
		})
	}
}
