package bibtext

import (
	"strings"
	"unicode"
)

// FormatName formats p with a format.name$ pattern such as "{vv~}{ll}{, f.}".
//
// Text outside braces is copied. Each brace group names one part with f, v,
// l or j: a single letter abbreviates the part's tokens to their first
// letters, a doubled letter keeps them whole. A brace group directly after
// the letters replaces the default separator between tokens. A group whose
// part is empty produces nothing at all.
func FormatName(p Person, format string, w Warner) string {
	CheckBraces(format, w)
	c := []rune(format)
	n := len(c)
	var sb []rune
	for i := 0; i < n; {
		switch c[i] {
		case '{':
			end := matchBrace(c, i)
			sb = formatGroup(sb, p, c[i+1:end], w)
			i = end + 1
		case '}':
			i++
		default:
			sb = append(sb, c[i])
			i++
		}
	}
	return string(sb)
}

// matchBrace returns the index of the '}' closing the '{' at c[i], or
// len(c) when there is none.
func matchBrace(c []rune, i int) int {
	depth := 0
	for ; i < len(c); i++ {
		switch c[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(c)
}

func partOf(p Person, letter rune) string {
	switch letter {
	case 'f':
		return p.First
	case 'v':
		return p.Von
	case 'l':
		return p.Last
	default:
		return p.Jr
	}
}

// formatGroup appends the expansion of the group body d to sb.
func formatGroup(sb []rune, p Person, d []rune, w Warner) []rune {
	var control []rune
	depth := 0
	for _, r := range d {
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
		case depth == 0 && unicode.IsLetter(r):
			lr := unicode.ToLower(r)
			if strings.ContainsRune("fvlj", lr) {
				control = append(control, lr)
			} else {
				warnf(w, "invalid name part letter %q in format group {%s}", r, string(d))
			}
		}
	}
	if len(control) == 0 {
		warnf(w, "format group {%s} names no part", string(d))
		return sb
	}
	part := partOf(p, control[0])
	if part == "" {
		return sb
	}
	abbreviate := true
	if len(control) >= 2 {
		if control[1] == control[0] {
			abbreviate = false
		}
		if len(control) > 2 || control[1] != control[0] {
			warnf(w, "format group {%s} names more than one part", string(d))
		}
	}
	tokens := splitPart(part)

	groupStart := len(sb)
	depth = 0
	done := false
	for j := 0; j < len(d); j++ {
		r := d[j]
		switch {
		case !done && depth == 0 && unicode.ToLower(r) == control[0]:
			done = true
			if !abbreviate && j+1 < len(d) && unicode.ToLower(d[j+1]) == control[0] {
				j++
			}
			var inter []rune
			hasInter := false
			if j+1 < len(d) && d[j+1] == '{' {
				end := matchBrace(d, j+1)
				if end == len(d) {
					warnf(w, "unterminated separator in format group {%s}", string(d))
					inter = d[j+2:]
				} else {
					inter = d[j+2 : end]
				}
				hasInter = true
				j = end
			}
			groupStart = len(sb)
			for k, tok := range tokens {
				if abbreviate {
					sb = append(sb, abbreviateToken(tok)...)
				} else {
					sb = append(sb, []rune(tok)...)
				}
				if k == len(tokens)-1 {
					continue
				}
				if hasInter {
					sb = append(sb, inter...)
					continue
				}
				if abbreviate {
					sb = append(sb, '.')
				}
				if k == len(tokens)-2 || textLength(sb[groupStart:], 3) < 3 {
					sb = append(sb, '~')
				} else {
					sb = append(sb, ' ')
				}
			}
		case r == '{':
			depth++
			sb = append(sb, r)
		case r == '}':
			depth--
			sb = append(sb, r)
		default:
			sb = append(sb, r)
		}
	}

	// A tie at the end of a long group becomes a space; after a brace it
	// is dropped.
	if l := len(sb); l > 0 && sb[l-1] == '~' {
		if textLength(sb[groupStart:], 4) >= 4 {
			sb[l-1] = ' '
		} else if l > 1 && sb[l-2] == '}' {
			sb = sb[:l-1]
		}
	}
	return sb
}

// splitPart splits a name part at spaces outside braces.
func splitPart(part string) []string {
	var toks []string
	depth := 0
	start := 0
	for i, r := range part {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case r == ' ' && depth == 0:
			if i > start {
				toks = append(toks, part[start:i])
			}
			start = i + 1
		}
	}
	if start < len(part) {
		toks = append(toks, part[start:])
	}
	return toks
}

// abbreviateToken shortens each hyphenated piece of tok to its first
// letter: "Jean-Paul" becomes "J.-P".
func abbreviateToken(tok string) []rune {
	var out []rune
	for i, piece := range strings.Split(tok, "-") {
		if i > 0 {
			out = append(out, '.', '-')
		}
		out = append(out, firstChar([]rune(piece))...)
	}
	return out
}

// firstChar returns the first letter of a token, or the whole brace group
// when a group comes first.
func firstChar(rs []rune) []rune {
	for i, r := range rs {
		if r == '{' {
			end := matchBrace(rs, i)
			if end == len(rs) {
				return rs[i:]
			}
			return rs[i : end+1]
		}
		if unicode.IsLetter(r) {
			return rs[i : i+1]
		}
	}
	return nil
}
