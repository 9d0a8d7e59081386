package bibtext

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

// collect records warnings for later inspection.
type collect []string

func (c *collect) Warn(msg string) { *c = append(*c, msg) }

func TestCheckBraces(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"", true},
		{"abc", true},
		{"{a}{b}", true},
		{"{{a}b}", true},
		{"{a", false},
		{"a}", false},
		{"}{", false},
		{"{}}{", false},
	}
	for _, tt := range tests {
		var warnings collect
		be.Equal(t, CheckBraces(tt.input, &warnings), tt.ok)
		be.Equal(t, len(warnings) > 0, !tt.ok)
	}
}

// Every string over {, } and a warns exactly when a prefix closes more
// braces than it opened or braces remain open at the end.
func TestCheckBracesExhaustive(t *testing.T) {
	alphabet := []byte("{}a")
	var gen func(prefix []byte, n int)
	gen = func(prefix []byte, n int) {
		s := string(prefix)
		depth, underflow := 0, false
		for _, c := range prefix {
			switch c {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					underflow = true
				} else {
					depth--
				}
			}
		}
		want := !underflow && depth == 0
		var warnings collect
		be.Equal(t, CheckBraces(s, &warnings), want)
		be.True(t, len(warnings) <= 2)
		be.Equal(t, len(warnings) == 0, want)
		if n == 0 {
			return
		}
		for _, c := range alphabet {
			gen(append(prefix, c), n-1)
		}
	}
	gen(nil, 6)
}

func TestTextLength(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"Hello", 5},
		{"Hello {W}orld", 11},
		{"{A}{D}/{Cycle}", 8},
		{"{\\This is one character}", 1},
		{"{\\This {is} {one} {c{h}}aracter as well}", 1},
		{"{\\And this too", 1},
		{"These are {\\11}", 11},
		{"{\\'e}t{\\'e}", 3},
		{"naïve", 5},
	}
	for _, tt := range tests {
		be.Equal(t, TextLength(tt.input), tt.want)
	}
}

func TestTextPrefix(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"Hello world", 5, "Hello"},
		{"Hello world", 0, ""},
		{"Hello world", -3, ""},
		{"Hello", 50, "Hello"},
		{"Hello {Wo}rld", 7, "Hello {W}"},
		{"{\\'E}cole", 1, "{\\'E}"},
		{"{{ab}c}d", 1, "{{a}}"},
		{"{\\This is one character} and more", 1, "{\\This is one character}"},
	}
	for _, tt := range tests {
		be.Equal(t, TextPrefix(tt.input, tt.n), tt.want)
	}
}

func TestAddPeriod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"abc", "abc."},
		{"abc.", "abc."},
		{"abc?", "abc?"},
		{"abc!", "abc!"},
		{"{abc}", "{abc}."},
		{"{Is it?}", "{Is it?}"},
		{"{abc.}}", "{abc.}}"},
		{"}}", "}}."},
	}
	for _, tt := range tests {
		be.Equal(t, AddPeriod(tt.input), tt.want)
	}
}

func TestSubstring(t *testing.T) {
	tests := []struct {
		start, length int
		want          string
	}{
		{1, 9, "123456789"},
		{2, 1, "2"},
		{4, math.MaxInt32, "456789"},
		{9, 1, "9"},
		{10, 1, ""},
		{0, 3, ""},
		{3, 0, ""},
		{3, -1, ""},
		{-1, 1, "9"},
		{-1, 3, "789"},
		{-2, 2, "78"},
		{-7, 3, "123"},
		{-9, 5, "1"},
		{-10, 1, ""},
	}
	for _, tt := range tests {
		be.Equal(t, Substring("123456789", tt.start, tt.length), tt.want)
	}
	be.Equal(t, Substring("héllo", 2, 2), "él")
}

func TestPurify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "Hello World"},
		{"Hello-World~Foo", "Hello World Foo"},
		{"{\\oe}uvre", "uvre"},
		{"{\\'e}t{\\'e}", "ete"},
		{"M{\\\"u}ller", "Muller"},
		{"{T}he {B}ook, 2nd ed.", "The Book 2nd ed"},
		{"a\tb", "a b"},
		{"{\\em Foo} bar", "Foo bar"},
	}
	for _, tt := range tests {
		be.Equal(t, Purify(tt.input, nil), tt.want)
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 1500},
		{"Hello", 2250},
		{"{\\'e}", 444},
		{"{\\oe}", 778},
		{"{\\OE}", 1014},
		{"{\\ss}", 500},
		{"{\\o}", 500},
		{"{\\AA}", 750},
		{"{\\em x}", 528},
		{"{a}", 1500},
		{"é", 0},
	}
	for _, tt := range tests {
		be.Equal(t, Width(tt.input, nil), tt.want)
	}
}

func TestWidthWarnsOnUnbalanced(t *testing.T) {
	var warnings collect
	be.Equal(t, Width("a}", &warnings), 1000)
	be.Equal(t, len(warnings), 1)
}
