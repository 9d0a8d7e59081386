package bibtext

import (
	"strings"
	"unicode"
)

// Purify removes everything from s except letters, digits and spaces.
// Whitespace, '-' and '~' each become one space. In a special character
// the control sequence names are dropped and the remaining letters and
// digits are kept, so "{\'e}" purifies to "e".
func Purify(s string, w Warner) string {
	CheckBraces(s, w)
	rs := []rune(s)
	n := len(rs)
	var sb strings.Builder
	depth := 0
	for i := 0; i < n; i++ {
		r := rs[i]
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '~':
			sb.WriteByte(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == '{':
			depth++
			if depth == 1 && i+1 < n && rs[i+1] == '\\' {
				i = purifySpecial(rs, i+1, &depth, &sb) - 1
			}
		case r == '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return sb.String()
}

// purifySpecial handles the special character whose backslash is at rs[i]
// and returns the index after it.
func purifySpecial(rs []rune, i int, depth *int, sb *strings.Builder) int {
	n := len(rs)
	for i < n && *depth > 0 {
		_, i = controlName(rs, i+1)
		for i < n && *depth > 0 && rs[i] != '\\' {
			switch r := rs[i]; {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				sb.WriteRune(r)
			case r == '}':
				*depth--
			case r == '{':
				*depth++
			}
			i++
		}
	}
	return i
}
