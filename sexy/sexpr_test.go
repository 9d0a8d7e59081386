package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"test_var", "test_var"},
		{"func-name", "func-name"},
		{"missing", "missing"},
		{"sort.key$", "sort.key$"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseSignSymbol(t *testing.T) {
	result, err := Parse("(+ - 1)")
	be.Err(t, err, nil)
	be.Equal(t, result.Items[0].Type, NodeSymbol)
	be.Equal(t, result.Items[1].Type, NodeSymbol)
	be.Equal(t, result.Items[2].Type, NodeInteger)
	be.Equal(t, result.String(), "(+ - 1)")
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
		{`"line\nbreak"`, "line\nbreak", `"line\nbreak"`},
		{`"Gödel"`, "Gödel", `"Gödel"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseInteger(t *testing.T) {
	tests := []string{"42", "0", "-123", "+456"}

	for _, input := range tests {
		result, err := Parse(input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeInteger)
		be.Equal(t, result.Text, input)
		be.Equal(t, result.String(), input)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"()", "()"},
		{"(a)", "(a)"},
		{`(call "x")`, `(call "x")`},
		{"(  a   b\n c )", "(a b c)"},
		{`(function "f" (block (integer 1) (call "+")))`, `(function "f" (block (integer 1) (call "+")))`},
		{"(a ; comment\n b)", "(a b)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)
		be.Equal(t, result.Type, NodeList)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"(",
		"(a",
		")",
		"a b",
		`"unterminated`,
		"[a]",
		"{a: 1}",
		"@",
	}

	for _, input := range tests {
		_, err := Parse(input)
		be.True(t, err != nil)
	}
}

func TestConstructors(t *testing.T) {
	n := NewList([]*Node{NewSymbol("quoted"), NewString(`a"b`), NewInteger("7")})
	be.Equal(t, n.String(), `(quoted "a\"b" 7)`)
	be.True(t, !n.IsAtom())
	be.True(t, n.Items[0].IsAtom())

	reparsed, err := Parse(n.String())
	be.Err(t, err, nil)
	be.Equal(t, reparsed.String(), n.String())
}
