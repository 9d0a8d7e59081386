package bib

import (
	"fmt"
	"io"
	"slices"
)

// Print writes f back out in .bib syntax: the preamble, the @string
// definitions sorted by name and then every record. Values are printed
// unexpanded.
func Print(w io.Writer, f *File) error {
	if f.Preamble != "" {
		if _, err := fmt.Fprintf(w, "@preamble{{%s}}\n\n", f.Preamble); err != nil {
			return err
		}
	}
	names := make([]string, 0, len(f.Strings))
	for name := range f.Strings {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "@string{%s = %s}\n", name, f.Strings[name].BibtexRepr()); err != nil {
			return err
		}
	}
	if len(names) > 0 {
		fmt.Fprintln(w)
	}
	for i, rec := range f.Records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, rec.BibtexRepr())
		for _, fld := range rec.Fields() {
			fmt.Fprintf(w, "  %s,\n", fld.BibtexRepr())
		}
		if _, err := fmt.Fprintln(w, "}"); err != nil {
			return err
		}
	}
	return nil
}
