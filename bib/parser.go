package bib

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const (
	LPAREN rune = '('
	RPAREN rune = ')'
	LBRACE rune = '{'
	RBRACE rune = '}'
	COMMA  rune = ','
	EQUAL  rune = '='
	AT     rune = '@'
	HASH   rune = '#'
	QUOTE  rune = '"'
)

type Options struct {
	// Charset names the encoding of the input, e.g. "ISO-8859-1". Empty
	// means UTF-8.
	Charset string
}

// ParseError describes malformed input. Parsing resumes at the next '@'.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse parses a BibTeX database provided as io.Reader or the name of a
// file. The returned file holds every record that could be read even when
// the error is not nil.
func Parse(r io.Reader, fileName string, opts Options) (*File, error) {
	if r == nil {
		if fileName == "" {
			return nil, fmt.Errorf("nothing to parse")
		}
		f, err := os.Open(fileName)
		if err != nil {
			return nil, fmt.Errorf("can't process file %s: %w", fileName, err)
		}
		defer f.Close()
		r = f
	}
	r, err := Decode(r, opts.Charset)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", fileName, err)
	}
	return ParseString(string(src), fileName)
}

// Decode converts r from charset to UTF-8. The style reader of the command
// line uses it too.
func Decode(r io.Reader, charset string) (io.Reader, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ParseString parses a database held in memory.
func ParseString(src, fileName string) (*File, error) {
	p := &parser{in: []rune(src), line: 1, fileName: fileName}
	return p.parse()
}

// bailout unwinds the parser to the next '@' after an error.
type bailout struct{}

type parser struct {
	in       []rune
	pos      int
	line     int
	fileName string
	errs     []error
}

func (p *parser) fail(format string, args ...any) {
	p.errs = append(p.errs, &ParseError{File: p.fileName, Line: p.line, Msg: fmt.Sprintf(format, args...)})
	panic(bailout{})
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.in)
}

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) next() rune {
	r := p.in[p.pos]
	if r == '\n' {
		p.line++
	}
	p.pos++
	return r
}

func (p *parser) skipSpace() {
	for !p.atEnd() && unicode.IsSpace(p.peek()) {
		p.next()
	}
}

func (p *parser) expect(r rune) {
	p.skipSpace()
	if p.peek() != r {
		p.fail("expected %q but got %s", r, p.describe())
	}
	p.next()
}

func (p *parser) describe() string {
	if p.atEnd() {
		return "end of input"
	}
	return fmt.Sprintf("%q", p.peek())
}

func (p *parser) parse() (*File, error) {
	file := newFile(p.fileName)
	for {
		// Text between entries is a comment.
		for !p.atEnd() && p.peek() != AT {
			p.next()
		}
		if p.atEnd() {
			break
		}
		p.next()
		p.item(file)
	}
	return file, errors.Join(p.errs...)
}

// item parses what follows an '@', recovering from errors.
func (p *parser) item(file *File) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
	}()

	line := p.line
	typ := strings.ToLower(p.name())
	if typ == "" {
		p.fail("expected entry type after '@'")
	}
	p.skipSpace()
	var closing rune
	switch p.peek() {
	case LBRACE:
		closing = RBRACE
	case LPAREN:
		closing = RPAREN
	default:
		p.fail("expected '{' or '(' after @%s but got %s", typ, p.describe())
	}
	p.next()

	switch typ {
	case "comment":
		p.skipBalanced(closing)
	case "preamble":
		v := p.value()
		file.Preamble += file.expand(v, nil)
		p.expect(closing)
	case "string":
		p.skipSpace()
		name := strings.ToLower(p.name())
		if name == "" {
			p.fail("expected string name but got %s", p.describe())
		}
		p.expect(EQUAL)
		file.Strings[name] = p.value()
		p.expect(closing)
	default:
		rec := &Record{typ: typ, line: line}
		rec.key = p.key(closing)
		p.fields(rec, closing)
		file.addRecord(rec)
	}
}

func isNameRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case LBRACE, RBRACE, LPAREN, RPAREN, COMMA, EQUAL, HASH, QUOTE, AT, 0:
		return false
	}
	return true
}

// name reads an entry type, field name or macro name.
func (p *parser) name() string {
	start := p.pos
	for !p.atEnd() && isNameRune(p.peek()) {
		p.next()
	}
	return string(p.in[start:p.pos])
}

func (p *parser) key(closing rune) string {
	p.skipSpace()
	start := p.pos
	for !p.atEnd() && p.peek() != COMMA && p.peek() != closing && !unicode.IsSpace(p.peek()) {
		p.next()
	}
	key := string(p.in[start:p.pos])
	if key == "" {
		p.fail("expected citation key but got %s", p.describe())
	}
	return key
}

// fields parses `, name = value` pairs up to the closing delimiter. A
// trailing comma is allowed.
func (p *parser) fields(rec *Record, closing rune) {
	for {
		p.skipSpace()
		switch p.peek() {
		case closing:
			p.next()
			return
		case COMMA:
			p.next()
		default:
			p.fail("expected ',' or %q in entry %s but got %s", closing, rec.key, p.describe())
		}
		p.skipSpace()
		if p.peek() == closing {
			p.next()
			return
		}
		line := p.line
		name := strings.ToLower(p.name())
		if name == "" {
			p.fail("expected field name in entry %s but got %s", rec.key, p.describe())
		}
		p.expect(EQUAL)
		v := p.value()
		if _, dup := rec.lookupField(name); dup {
			continue
		}
		rec.fields = append(rec.fields, Field{Name: name, Value: v, Line: line})
	}
}

// value parses term ('#' term)*.
func (p *parser) value() Value {
	var v Value
	for {
		p.skipSpace()
		v = append(v, p.term())
		p.skipSpace()
		if p.peek() != HASH {
			return v
		}
		p.next()
	}
}

func (p *parser) term() Part {
	switch r := p.peek(); {
	case r == LBRACE:
		p.next()
		return Part{Text: p.braced(RBRACE)}
	case r == QUOTE:
		p.next()
		return Part{Text: p.braced(QUOTE)}
	case unicode.IsDigit(r):
		start := p.pos
		for !p.atEnd() && unicode.IsDigit(p.peek()) {
			p.next()
		}
		return Part{Text: string(p.in[start:p.pos])}
	default:
		name := p.name()
		if name == "" {
			p.fail("expected field value but got %s", p.describe())
		}
		return Part{Text: name, Macro: true}
	}
}

// braced reads text up to end at brace depth zero, keeping inner braces.
func (p *parser) braced(end rune) string {
	start := p.pos
	line := p.line
	depth := 0
	for !p.atEnd() {
		r := p.peek()
		switch {
		case r == end && depth == 0:
			s := string(p.in[start:p.pos])
			p.next()
			return s
		case r == LBRACE:
			depth++
		case r == RBRACE:
			if depth == 0 {
				p.fail("unbalanced '}' in value")
			}
			depth--
		}
		p.next()
	}
	p.line = line
	p.fail("unterminated value")
	return ""
}

func (p *parser) skipBalanced(closing rune) {
	depth := 0
	for !p.atEnd() {
		r := p.next()
		switch {
		case r == closing && depth == 0:
			return
		case r == LBRACE:
			depth++
		case r == RBRACE:
			depth--
		}
	}
	p.fail("unterminated @comment")
}
