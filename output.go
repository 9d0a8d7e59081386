package bst

import "bytes"

// minPrintLine is the shortest prefix a broken line may keep.
const minPrintLine = 3

// lineBuffer collects write$ output for the document and breaks it into
// lines of at most width bytes. A line is broken at the last whitespace
// within the limit; when there is none, it is cut one byte short of the
// limit and ends with a '%' so that TeX ignores the break. Continuation
// lines are indented by two spaces.
type lineBuffer struct {
	buf   []byte
	width int
}

func isBreakSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func (b *lineBuffer) write(s string, emit func(line string)) {
	b.buf = append(b.buf, s...)
	for len(b.buf) > b.width {
		i := b.width
		for i >= minPrintLine && !isBreakSpace(b.buf[i]) {
			i--
		}
		if i < minPrintLine {
			cut := b.width - 1
			emit(string(b.buf[:cut]) + "%\n")
			b.buf = append([]byte("  "), b.buf[cut:]...)
			continue
		}
		emit(string(bytes.TrimRight(b.buf[:i], " \t\n")) + "\n")
		b.buf = append([]byte("  "), b.buf[i+1:]...)
	}
}

// newline ends the current line. An empty buffer produces an empty line;
// a buffer holding only whitespace is discarded.
func (b *lineBuffer) newline(emit func(line string)) {
	if len(b.buf) == 0 {
		emit("\n")
		return
	}
	line := bytes.TrimRight(b.buf, " \t\n")
	b.buf = b.buf[:0]
	if len(line) == 0 {
		return
	}
	emit(string(line) + "\n")
}

// flush emits what is left when the run ends.
func (b *lineBuffer) flush(emit func(line string)) {
	if len(bytes.TrimSpace(b.buf)) > 0 {
		b.newline(emit)
	}
	b.buf = b.buf[:0]
}
