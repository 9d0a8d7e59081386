// Package bibtext implements the string operations of the BibTeX style
// language: case changing, purifying, width measurement, text length and
// prefixes, and splitting and formatting of person names.
//
// Braces group characters. A group that starts with a backslash at brace
// depth one is a special character such as {\"o} or {\ss} and is treated
// as a single letter by most operations.
package bibtext

import "fmt"

// Warner receives diagnostics about malformed input.
type Warner interface {
	Warn(msg string)
}

// WarnFunc adapts a function to the Warner interface.
type WarnFunc func(msg string)

func (f WarnFunc) Warn(msg string) { f(msg) }

func warnf(w Warner, format string, args ...any) {
	if w != nil {
		w.Warn(fmt.Sprintf(format, args...))
	}
}

// CheckBraces reports whether the braces of s are balanced. It warns at most
// once about a '}' with no matching '{' (the count then stays at zero) and
// once when '{'s remain open at the end of s.
func CheckBraces(s string, w Warner) bool {
	depth := 0
	ok := true
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				if ok {
					warnf(w, "unmatched '}' in %q", s)
				}
				ok = false
				continue
			}
			depth--
		}
	}
	if depth != 0 {
		warnf(w, "%d unclosed '{' in %q", depth, s)
		ok = false
	}
	return ok
}

// specialNames are the control sequences BibTeX knows as letters.
var specialNames = map[string]bool{
	"oe": true, "OE": true, "ae": true, "AE": true, "aa": true, "AA": true,
	"o": true, "O": true, "l": true, "L": true, "ss": true, "i": true, "j": true,
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

// controlName returns the letters of the control sequence starting at
// rs[i] (just after a backslash) and the index after them.
func controlName(rs []rune, i int) (string, int) {
	start := i
	for i < len(rs) && isASCIILetter(rs[i]) {
		i++
	}
	return string(rs[start:i]), i
}
