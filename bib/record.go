// Package bib reads bibliography databases: BibTeX .bib files and the
// same data written as YAML.
package bib

import (
	"fmt"
	"strings"
)

// Part is one term of a field value: literal text or a macro name. The
// terms of a value were joined with '#' in the source.
type Part struct {
	Text  string
	Macro bool
}

// Value is a field value before macro expansion.
type Value []Part

// Literal returns a value made of one piece of text.
func Literal(s string) Value {
	return Value{{Text: s}}
}

type Field struct {
	Name  string // lower case
	Value Value
	Line  int
}

// Record is one @type{key, ...} entry of a database.
type Record struct {
	typ    string
	key    string
	fields []Field
	line   int
	file   *File
}

func (rec *Record) Line() int {
	return rec.line
}

func (rec *Record) Type() string {
	return rec.typ
}

func (rec *Record) Key() string {
	return rec.key
}

func (rec *Record) Fields() []Field {
	return rec.fields
}

// BibtexRepr returns the opening line of the record, "@type{key,".
func (rec *Record) BibtexRepr() string {
	return fmt.Sprintf("@%s{%s,", rec.typ, rec.key)
}

// BibtexRepr returns the field as "name = value".
func (fld Field) BibtexRepr() string {
	return fmt.Sprintf("%s = %s", fld.Name, fld.Value.BibtexRepr())
}

// BibtexRepr returns the value in .bib syntax. Literal text is always
// braced; macro names are written bare.
func (v Value) BibtexRepr() string {
	parts := make([]string, len(v))
	for i, p := range v {
		if p.Macro {
			parts[i] = p.Text
		} else {
			parts[i] = "{" + p.Text + "}"
		}
	}
	return strings.Join(parts, " # ")
}

func (rec *Record) lookupField(name string) (Field, bool) {
	name = strings.ToLower(name)
	for _, fld := range rec.fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// Field returns the expanded value of a field using only the @string
// definitions of the record's file.
func (rec *Record) Field(name string) (string, bool) {
	return rec.FieldWithMacros(name, nil)
}

// FieldWithMacros expands a field, resolving macro names first against
// the file's @string definitions and then with lookup. Unknown macros
// expand to nothing.
func (rec *Record) FieldWithMacros(name string, lookup func(string) (string, bool)) (string, bool) {
	fld, ok := rec.lookupField(name)
	if !ok {
		return "", false
	}
	return rec.file.expand(fld.Value, lookup), true
}

// File is a parsed database.
type File struct {
	Records  []*Record
	Preamble string
	// Strings holds the @string definitions by lower-cased name.
	Strings map[string]Value
	name    string
}

func newFile(name string) *File {
	return &File{name: name, Strings: make(map[string]Value)}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) RecordCount() int {
	return len(f.Records)
}

func (f *File) addRecord(rec *Record) {
	rec.file = f
	f.Records = append(f.Records, rec)
}

// maxExpansion bounds nested @string references.
const maxExpansion = 32

func (f *File) expand(v Value, lookup func(string) (string, bool)) string {
	var sb strings.Builder
	f.expandInto(&sb, v, lookup, 0)
	return compressSpace(sb.String())
}

func (f *File) expandInto(sb *strings.Builder, v Value, lookup func(string) (string, bool), depth int) {
	for _, p := range v {
		if !p.Macro {
			sb.WriteString(p.Text)
			continue
		}
		name := strings.ToLower(p.Text)
		if def, ok := f.Strings[name]; ok && depth < maxExpansion {
			f.expandInto(sb, def, lookup, depth+1)
			continue
		}
		if lookup != nil {
			if s, ok := lookup(name); ok {
				sb.WriteString(s)
			}
		}
	}
}

// compressSpace collapses runs of whitespace to one space and trims the
// ends, as BibTeX does for field values.
func compressSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
