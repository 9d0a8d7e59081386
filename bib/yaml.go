package bib

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlFile is the YAML form of a database:
//
//	preamble: "\\newcommand{\\noopsort}[1]{}"
//	strings:
//	  acm: Association for Computing Machinery
//	entries:
//	  - type: book
//	    key: knuth84
//	    author: Donald E. Knuth
//	    year: 1984
type yamlFile struct {
	Preamble string              `yaml:"preamble"`
	Strings  map[string]string   `yaml:"strings"`
	Entries  []map[string]string `yaml:"entries"`
}

// ParseYAML reads a database written as YAML. Field values are literal
// text; they are not macro-expanded.
func ParseYAML(r io.Reader, fileName string) (*File, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("can't parse %s: %w", fileName, err)
	}

	file := newFile(fileName)
	file.Preamble = doc.Preamble
	for name, text := range doc.Strings {
		file.Strings[strings.ToLower(name)] = Literal(text)
	}
	for i, entry := range doc.Entries {
		rec := &Record{line: i + 1}
		for name, text := range entry {
			switch name = strings.ToLower(name); name {
			case "type":
				rec.typ = strings.ToLower(text)
			case "key":
				rec.key = text
			default:
				rec.fields = append(rec.fields, Field{Name: name, Value: Literal(text)})
			}
		}
		if rec.typ == "" || rec.key == "" {
			return file, fmt.Errorf("%s: entry %d needs a type and a key", fileName, i+1)
		}
		file.addRecord(rec)
	}
	return file, nil
}
