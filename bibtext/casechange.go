package bibtext

import (
	"strings"
	"unicode"
)

// CaseMode selects a conversion for ChangeCase.
type CaseMode rune

const (
	// TitleLowers lowers every letter except the first one and those
	// following a colon and whitespace.
	TitleLowers CaseMode = 't'
	AllLowers   CaseMode = 'l'
	AllUppers   CaseMode = 'u'
)

// ParseCaseMode parses the specifier of change.case$: "t", "l" or "u" in
// either case.
func ParseCaseMode(spec string) (CaseMode, bool) {
	switch strings.ToLower(spec) {
	case "t":
		return TitleLowers, true
	case "l":
		return AllLowers, true
	case "u":
		return AllUppers, true
	}
	return 0, false
}

// ChangeCase converts s to mode. Text inside braces is left alone, except
// that a special character (a group starting with a backslash at depth
// one) has its letters converted while the names of its control sequences
// are kept, apart from the names of foreign letters such as \oe and \ss.
func ChangeCase(s string, mode CaseMode, w Warner) string {
	CheckBraces(s, w)
	c := caseChanger{mode: mode, in: []rune(s)}
	c.run()
	return string(c.out)
}

type caseChanger struct {
	mode      CaseMode
	in        []rune
	out       []rune
	depth     int
	prevColon bool
}

func (c *caseChanger) convert(rs []rune) {
	for _, r := range rs {
		if c.mode == AllUppers {
			c.out = append(c.out, unicode.ToUpper(r))
		} else {
			c.out = append(c.out, unicode.ToLower(r))
		}
	}
}

// titleStart reports whether position i keeps its case in title mode.
func (c *caseChanger) titleStart(i int) bool {
	return i == 0 || (c.prevColon && unicode.IsSpace(c.in[i-1]))
}

func (c *caseChanger) run() {
	s := c.in
	n := len(s)
	for i := 0; i < n; {
		r := s[i]
		switch {
		case r == '{':
			c.depth++
			special := c.depth == 1 && i+4 <= n && s[i+1] == '\\'
			if special && !(c.mode == TitleLowers && c.titleStart(i)) {
				i = c.special(i)
			} else {
				c.out = append(c.out, r)
				i++
			}
			c.prevColon = false
		case r == '}':
			if c.depth > 0 {
				c.depth--
			}
			c.out = append(c.out, r)
			c.prevColon = false
			i++
		case c.depth > 0:
			c.out = append(c.out, r)
			i++
		default:
			switch {
			case c.mode != TitleLowers:
				c.convert(s[i : i+1])
			case c.titleStart(i):
				c.out = append(c.out, r)
			default:
				c.out = append(c.out, unicode.ToLower(r))
			}
			if r == ':' {
				c.prevColon = true
			} else if !unicode.IsSpace(r) {
				c.prevColon = false
			}
			i++
		}
	}
}

// special converts the special character whose '{' is at s[i] and returns
// the index after it.
func (c *caseChanger) special(i int) int {
	s := c.in
	n := len(s)
	c.out = append(c.out, s[i])
	i++
	for i < n && c.depth > 0 {
		backslash := len(c.out)
		c.out = append(c.out, s[i])
		i++
		name, end := controlName(s, i)
		i = end
		if specialNames[name] {
			c.foreign(name, backslash)
			if c.mode == AllUppers && (name == "i" || name == "j" || name == "ss") {
				for i < n && unicode.IsSpace(s[i]) {
					i++
				}
			}
		} else {
			c.out = append(c.out, []rune(name)...)
		}
		start := i
		for i < n && c.depth > 0 && s[i] != '\\' {
			if s[i] == '}' {
				c.depth--
			} else if s[i] == '{' {
				c.depth++
			}
			i++
		}
		c.convert(s[start:i])
	}
	return i
}

// foreign writes the control sequence name of a foreign letter. Upper
// casing \i, \j and \ss drops the backslash written at out[backslash].
func (c *caseChanger) foreign(name string, backslash int) {
	switch c.mode {
	case TitleLowers, AllLowers:
		switch name {
		case "L", "O", "OE", "AE", "AA":
			name = strings.ToLower(name)
		}
	case AllUppers:
		switch name {
		case "l", "o", "oe", "ae", "aa":
			name = strings.ToUpper(name)
		case "i", "j", "ss":
			c.out = c.out[:backslash]
			name = strings.ToUpper(name)
		}
	}
	c.out = append(c.out, []rune(name)...)
}
