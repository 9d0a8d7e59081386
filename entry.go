package bst

import "strings"

// Record is one bibliography entry as read from a database.
type Record interface {
	// Type is the entry type, e.g. "article".
	Type() string
	// Key is the citation key.
	Key() string
	// Field returns the value of a field. name is lower case.
	Field(name string) (string, bool)
}

// MacroRecord is a Record whose field values may refer to macros that are
// only known once the style has run its MACRO commands.
type MacroRecord interface {
	Record
	FieldWithMacros(name string, lookup func(name string) (string, bool)) (string, bool)
}

// Bibliography is the input of a run: the cited records in citation order
// and the concatenated @preamble text.
type Bibliography struct {
	Records  []Record
	Preamble string
}

// Entry is a record together with the per-entry variables a style
// declares with ENTRY.
type Entry struct {
	record Record
	typ    string
	key    string
	fields map[string]Value
	ints   map[string]int
	strs   map[string]string
	output strings.Builder
}

func newEntry(r Record) *Entry {
	return &Entry{
		record: r,
		typ:    strings.ToLower(r.Type()),
		key:    r.Key(),
		fields: make(map[string]Value),
		ints:   make(map[string]int),
		strs:   make(map[string]string),
	}
}

func (e *Entry) Record() Record { return e.record }

// Type returns the lower-cased entry type.
func (e *Entry) Type() string { return e.typ }

func (e *Entry) Key() string { return e.key }

// Field returns the value READ stored for a field; undeclared and absent
// fields are missing.
func (e *Entry) Field(name string) Value {
	if v, ok := e.fields[fold(name)]; ok {
		return v
	}
	return MissingValue()
}

// Int returns an entry integer variable.
func (e *Entry) Int(name string) int { return e.ints[fold(name)] }

// Str returns an entry string variable.
func (e *Entry) Str(name string) string { return e.strs[fold(name)] }

// SortKey returns the value of sort.key$.
func (e *Entry) SortKey() string { return e.strs[sortKeyVar] }

// Output returns the text written while this entry was current, with a
// "\n" for each newline$. It is not broken into lines.
func (e *Entry) Output() string { return e.output.String() }

// NewBibliography collects records of any concrete type, such as the
// *bib.Record values of a parsed database.
func NewBibliography[R Record](records []R, preamble string) Bibliography {
	b := Bibliography{Records: make([]Record, len(records)), Preamble: preamble}
	for i, r := range records {
		b.Records[i] = r
	}
	return b
}
