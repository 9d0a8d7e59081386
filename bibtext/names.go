package bibtext

import (
	"strings"
	"unicode"
)

// Person is a name split into its four parts. Tokens within a part are
// joined by the space or hyphen that separated them in the input.
type Person struct {
	First string
	Von   string
	Last  string
	Jr    string
}

// SplitNames splits a name list at the word "and" (in any case) and at
// ';', outside braces. Empty names are dropped.
func SplitNames(s string) []string {
	var names []string
	var words []string
	var word []rune
	depth := 0

	flushName := func() {
		if len(words) > 0 {
			names = append(names, strings.Join(words, " "))
			words = nil
		}
	}
	flushWord := func() {
		if len(word) == 0 {
			return
		}
		w := string(word)
		word = word[:0]
		if strings.EqualFold(w, "and") {
			flushName()
		} else {
			words = append(words, w)
		}
	}

	for _, r := range s {
		switch {
		case r == '{':
			depth++
			word = append(word, r)
		case r == '}':
			if depth > 0 {
				depth--
			}
			word = append(word, r)
		case depth == 0 && unicode.IsSpace(r):
			flushWord()
		case depth == 0 && r == ';':
			flushWord()
			flushName()
		default:
			word = append(word, r)
		}
	}
	flushWord()
	flushName()
	return names
}

// ParseNames splits s with SplitNames and parses each name.
func ParseNames(s string) []Person {
	names := SplitNames(s)
	people := make([]Person, len(names))
	for i, name := range names {
		people[i] = ParseName(name)
	}
	return people
}

type nameToken struct {
	text  string
	von   bool
	sep   rune // ' ' or '-': what followed the token
	comma bool
}

func tokenizeName(s string) []nameToken {
	rs := []rune(s)
	n := len(rs)
	var toks []nameToken
	i := 0
	for {
		for i < n && (unicode.IsSpace(rs[i]) || rs[i] == '~' || rs[i] == '-') {
			i++
		}
		if i >= n {
			return toks
		}
		if rs[i] == ',' {
			toks = append(toks, nameToken{comma: true})
			i++
			continue
		}
		start := i
		depth := 0
		for i < n {
			r := rs[i]
			if depth == 0 && (r == ',' || r == '~' || r == '-' || unicode.IsSpace(r)) {
				break
			}
			if r == '{' {
				depth++
			} else if r == '}' && depth > 0 {
				depth--
			}
			i++
		}
		tok := nameToken{text: string(rs[start:i]), von: isVonToken(rs[start:i]), sep: ' '}
		if i < n && rs[i] == '-' {
			tok.sep = '-'
		}
		toks = append(toks, tok)
	}
}

// isVonToken reports whether a name token starts with a lower-case letter.
// A brace group is skipped unless it is a special character, whose case is
// that of its foreign letter or of the first letter after its control
// sequence.
func isVonToken(rs []rune) bool {
	n := len(rs)
	for i := 0; i < n; {
		r := rs[i]
		switch {
		case unicode.IsUpper(r):
			return false
		case unicode.IsLower(r):
			return true
		case r == '{':
			depth := 1
			i++
			if i < n && rs[i] == '\\' {
				name, end := controlName(rs, i+1)
				if specialNames[name] {
					return unicode.IsLower(rune(name[0]))
				}
				for i = end; i < n && depth > 0; i++ {
					switch c := rs[i]; {
					case unicode.IsUpper(c):
						return false
					case unicode.IsLower(c):
						return true
					case c == '{':
						depth++
					case c == '}':
						depth--
					}
				}
				return false
			}
			i = skipSpecial(rs, i, &depth)
		default:
			i++
		}
	}
	return false
}

// ParseName splits one name into its parts. It accepts the three BibTeX
// forms "First von Last", "von Last, First" and "von Last, Jr, First".
func ParseName(s string) Person {
	var segs [][]nameToken
	var cur []nameToken
	for _, t := range tokenizeName(s) {
		if t.comma {
			segs = append(segs, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	segs = append(segs, cur)

	var first, von, last, jr []nameToken
	switch len(segs) {
	case 1:
		first, von, last = splitFirstVonLast(segs[0])
	case 2:
		von, last = splitVonLast(segs[0])
		first = segs[1]
	default:
		von, last = splitVonLast(segs[0])
		jr = segs[1]
		first = segs[2]
	}
	return Person{
		First: joinTokens(first),
		Von:   joinTokens(von),
		Last:  joinTokens(last),
		Jr:    joinTokens(jr),
	}
}

func splitFirstVonLast(toks []nameToken) (first, von, last []nameToken) {
	n := len(toks)
	if n == 0 {
		return nil, nil, nil
	}
	for i := 0; i < n-1; i++ {
		if toks[i].von {
			von, last = splitVonLast(toks[i:])
			return toks[:i], von, last
		}
	}
	// Without a von part, hyphenated words before the final one stay with
	// the last name.
	lastStart := n - 1
	for lastStart > 0 && toks[lastStart-1].sep == '-' {
		lastStart--
	}
	return toks[:lastStart], nil, toks[lastStart:]
}

// splitVonLast puts everything up to the last von token, but never the
// final token, into the von part.
func splitVonLast(toks []nameToken) (von, last []nameToken) {
	for i := len(toks) - 2; i >= 0; i-- {
		if toks[i].von {
			return toks[:i+1], toks[i+1:]
		}
	}
	return nil, toks
}

func joinTokens(toks []nameToken) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteRune(toks[i-1].sep)
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}
