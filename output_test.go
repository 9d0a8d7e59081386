package bst

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestLineBuffer(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		writes   []string
		expected string
	}{
		{"short line", 79, []string{"hello", " world"}, "hello world\n"},
		{"break at space", 10, []string{"aaa bbb ccc ddd"}, "aaa bbb\n  ccc ddd\n"},
		{"break across writes", 10, []string{"aaa ", "bbb ", "ccc ", "ddd"}, "aaa bbb\n  ccc ddd\n"},
		{"long word hard break", 10, []string{"abcdefghijklmnop"}, "abcdefghi%\n  jklmnop\n"},
		{"long word then space", 10, []string{"abcdefghijkl mn"}, "abcdefghi%\n  jkl mn\n"},
		{"repeated hard breaks", 6, []string{"abcdefghijk"}, "abcde%\n  fgh%\n  ijk\n"},
		{"trailing space trimmed", 79, []string{"text   "}, "text\n"},
		{"only whitespace dropped", 79, []string{"   "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			emit := func(line string) { out.WriteString(line) }
			b := lineBuffer{width: tt.width}
			for _, s := range tt.writes {
				b.write(s, emit)
			}
			b.newline(emit)
			be.Equal(t, out.String(), tt.expected)
		})
	}
}

func TestLineBufferNewline(t *testing.T) {
	var out strings.Builder
	emit := func(line string) { out.WriteString(line) }
	b := lineBuffer{width: 79}

	b.newline(emit)
	b.write("a", emit)
	b.newline(emit)
	b.newline(emit)
	be.Equal(t, out.String(), "\na\n\n")
}

func TestLineBufferFlush(t *testing.T) {
	var out strings.Builder
	emit := func(line string) { out.WriteString(line) }
	b := lineBuffer{width: 79}

	b.flush(emit)
	be.Equal(t, out.String(), "")

	b.write("  ", emit)
	b.flush(emit)
	be.Equal(t, out.String(), "")

	b.write("end", emit)
	b.flush(emit)
	be.Equal(t, out.String(), "end\n")
}
