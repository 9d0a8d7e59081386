package bibtext

import "strings"

// TextLength counts the text characters of s. Braces do not count, and a
// special character counts as one character however long it is.
func TextLength(s string) int {
	return textLength([]rune(s), -1)
}

// textLength is TextLength but stops counting at limit when limit >= 0.
func textLength(rs []rune, limit int) int {
	n := len(rs)
	count := 0
	depth := 0
	for i := 0; i < n && count != limit; {
		r := rs[i]
		i++
		switch r {
		case '{':
			depth++
			if depth == 1 && i < n && rs[i] == '\\' {
				i = skipSpecial(rs, i+1, &depth)
				count++
			}
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			count++
		}
	}
	return count
}

// skipSpecial moves past the rest of a special character, starting just
// after its backslash, and returns the index after its closing brace.
func skipSpecial(rs []rune, i int, depth *int) int {
	for i < len(rs) && *depth > 0 {
		switch rs[i] {
		case '}':
			*depth--
		case '{':
			*depth++
		}
		i++
	}
	return i
}

// TextPrefix returns the first n text characters of s, counted as in
// TextLength, and closes any braces left open by the cut.
func TextPrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	count := 0
	depth := 0
	i := 0
	for i < len(rs) && count < n {
		r := rs[i]
		i++
		switch r {
		case '{':
			depth++
			if depth == 1 && i < len(rs) && rs[i] == '\\' {
				i = skipSpecial(rs, i+1, &depth)
				count++
			}
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			count++
		}
	}
	return string(rs[:i]) + strings.Repeat("}", depth)
}

// AddPeriod appends a period to s unless its last character, ignoring
// closing braces, already ends a sentence. The empty string stays empty.
func AddPeriod(s string) string {
	if s == "" {
		return s
	}
	t := strings.TrimRight(s, "}")
	if t != "" {
		switch t[len(t)-1] {
		case '.', '?', '!':
			return s
		}
	}
	return s + "."
}

// Substring returns up to length characters of s starting at the 1-based
// position start. A negative start counts from the end of s, and the
// characters are then taken leftward from that position.
func Substring(s string, start, length int) string {
	rs := []rune(s)
	l := len(rs)
	if length <= 0 || start == 0 || start > l || start < -l {
		return ""
	}
	if start > 0 {
		length = min(length, l-start+1)
		return string(rs[start-1 : start-1+length])
	}
	end := l + start + 1
	length = min(length, end)
	return string(rs[end-length : end])
}
