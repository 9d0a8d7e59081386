package bst

import (
	"fmt"
	"strings"
)

type symbolKind uint8

const (
	symBuiltin symbolKind = iota
	symFunction
	symMacro
	symGlobalString
	symGlobalInteger
	symField
	symEntryInteger
	symEntryString
)

func (k symbolKind) String() string {
	switch k {
	case symBuiltin:
		return "built-in function"
	case symFunction:
		return "function"
	case symMacro:
		return "macro"
	case symGlobalString:
		return "global string"
	case symGlobalInteger:
		return "global integer"
	case symField:
		return "field"
	case symEntryInteger:
		return "entry integer"
	case symEntryString:
		return "entry string"
	default:
		return "symbol"
	}
}

// symbol is a name in the single namespace of a style.
type symbol struct {
	kind    symbolKind
	name    string
	builtin builtinFunc
	body    *ASTNode // symFunction
	str     string   // symMacro, symGlobalString
	num     int      // symGlobalInteger
}

// sortKeyVar is the entry string SORT orders by.
const sortKeyVar = "sort.key$"

// fold canonicalizes a name; identifiers are case-insensitive.
func fold(name string) string {
	return strings.ToLower(name)
}

// declare adds a symbol of the given kind. Redefining a function or macro
// replaces it, and redeclaring a variable of the same kind resets it; any
// other clash is an error.
func (vm *VM) declare(kind symbolKind, name string) (*symbol, error) {
	key := fold(name)
	if old, ok := vm.symbols[key]; ok {
		if old.kind != kind || kind == symBuiltin {
			return nil, fmt.Errorf("%w: %s is already a %s", ErrRedeclared, name, old.kind)
		}
		old.body = nil
		old.str = ""
		old.num = 0
		return old, nil
	}
	sym := &symbol{kind: kind, name: key}
	vm.symbols[key] = sym
	return sym, nil
}

func (vm *VM) lookup(name string) *symbol {
	return vm.symbols[fold(name)]
}

// macro resolves a macro name for field values read from the database.
func (vm *VM) macro(name string) (string, bool) {
	if sym := vm.lookup(name); sym != nil && sym.kind == symMacro {
		return sym.str, true
	}
	return "", false
}
