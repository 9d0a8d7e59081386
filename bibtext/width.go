package bibtext

import "unicode"

// charWidths holds the widths of the printable ASCII characters in
// hundredths of a point of the cmr10 font. Other characters count as zero.
var charWidths = [128]int{
	' ': 278, '!': 278, '"': 500, '#': 833, '$': 500, '%': 833, '&': 778, '\'': 278,
	'(': 389, ')': 389, '*': 500, '+': 778, ',': 278, '-': 333, '.': 278, '/': 500,
	'0': 500, '1': 500, '2': 500, '3': 500, '4': 500,
	'5': 500, '6': 500, '7': 500, '8': 500, '9': 500,
	':': 278, ';': 278, '<': 278, '=': 778, '>': 472, '?': 472, '@': 778,
	'A': 750, 'B': 708, 'C': 722, 'D': 764, 'E': 681, 'F': 653, 'G': 785,
	'H': 750, 'I': 361, 'J': 514, 'K': 778, 'L': 625, 'M': 917, 'N': 750,
	'O': 778, 'P': 681, 'Q': 778, 'R': 736, 'S': 556, 'T': 722, 'U': 750,
	'V': 750, 'W': 1028, 'X': 750, 'Y': 750, 'Z': 611,
	'[': 278, '\\': 500, ']': 278, '^': 500, '_': 278, '`': 278,
	'a': 500, 'b': 556, 'c': 444, 'd': 556, 'e': 444, 'f': 306, 'g': 500,
	'h': 556, 'i': 278, 'j': 306, 'k': 528, 'l': 278, 'm': 833, 'n': 556,
	'o': 500, 'p': 556, 'q': 528, 'r': 392, 's': 394, 't': 389, 'u': 556,
	'v': 528, 'w': 722, 'x': 528, 'y': 528, 'z': 444,
	'{': 500, '|': 1000, '}': 500, '~': 500,
}

// Foreign letters wider than the first letter of their name.
var foreignWidths = map[string]int{
	"ss": 500,
	"ae": 722,
	"oe": 778,
	"AE": 903,
	"OE": 1014,
}

func charWidth(r rune) int {
	if r < 0 || r >= rune(len(charWidths)) {
		return 0
	}
	return charWidths[r]
}

// Width returns the width of s in hundredths of a point, following the
// width$ rules: braces count, and a special character counts the width of
// the letter its control sequence stands for plus the letters after it.
func Width(s string, w Warner) int {
	CheckBraces(s, w)
	rs := []rune(s)
	n := len(rs)
	width := 0
	depth := 0
	for i := 0; i < n; i++ {
		r := rs[i]
		switch r {
		case '{':
			depth++
			if depth == 1 && i+1 < n && rs[i+1] == '\\' {
				i = specialWidth(rs, i+1, &depth, &width) - 1
				continue
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
		width += charWidth(r)
	}
	return width
}

func specialWidth(rs []rune, i int, depth, width *int) int {
	n := len(rs)
	for i < n && *depth > 0 {
		i++
		name, end := controlName(rs, i)
		if name == "" {
			// A one-character control sequence such as \' adds nothing.
			if end < n {
				end++
			}
		} else if fw, ok := foreignWidths[name]; ok {
			*width += fw
		} else if specialNames[name] {
			*width += charWidth(rune(name[0]))
		}
		i = end
		for i < n && unicode.IsSpace(rs[i]) {
			i++
		}
		for i < n && *depth > 0 && rs[i] != '\\' {
			switch rs[i] {
			case '}':
				*depth--
			case '{':
				*depth++
			default:
				*width += charWidth(rs[i])
			}
			i++
		}
	}
	return i
}
