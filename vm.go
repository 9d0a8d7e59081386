package bst

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// VM executes a parsed style against a bibliography.
type VM struct {
	program *ASTNode
	opts    Options
	log     zerolog.Logger

	symbols map[string]*symbol
	stack   []Value

	fields    []string // declared by ENTRY, plus crossref
	entryInts []string
	entryStrs []string

	entries       []*Entry
	byKey         map[string]*Entry
	preamble      string
	entryDeclared bool
	read          bool

	out      lineBuffer
	doc      strings.Builder
	warnings []Warning
	depth    int
}

// frame is the context of the item being executed.
type frame struct {
	ctx   context.Context
	entry *Entry   // nil outside ITERATE and REVERSE
	item  *ASTNode // for line numbers
}

func (f frame) at(n *ASTNode) frame {
	f.item = n
	return f
}

func (f frame) line() int {
	if f.item == nil {
		return 0
	}
	return f.item.Line
}

// New prepares a VM for program, which must come from a successful Parse.
func New(program *ASTNode, opts Options) *VM {
	opts = opts.withDefaults()
	return &VM{
		program: program,
		opts:    opts,
		log:     opts.Logger,
	}
}

// Stack returns the operand stack, bottom first.
func (vm *VM) Stack() []Value {
	return vm.stack
}

// Global returns the value of a global variable after a run.
func (vm *VM) Global(name string) (Value, bool) {
	sym := vm.lookup(name)
	if sym == nil {
		return Value{}, false
	}
	switch sym.kind {
	case symGlobalString:
		return StringValue(sym.str), true
	case symGlobalInteger:
		return IntValue(sym.num), true
	}
	return Value{}, false
}

func (vm *VM) reset() {
	vm.symbols = make(map[string]*symbol, len(builtins)+64)
	for name, fn := range builtins {
		vm.symbols[name] = &symbol{kind: symBuiltin, name: name, builtin: fn}
	}
	vm.stack = vm.stack[:0]
	vm.fields = nil
	vm.entryInts = nil
	vm.entryStrs = nil
	vm.entries = nil
	vm.byKey = nil
	vm.preamble = ""
	vm.entryDeclared = false
	vm.read = false
	vm.out = lineBuffer{width: vm.opts.LineWidth}
	vm.doc.Reset()
	vm.warnings = nil
	vm.depth = 0
}

// fail wraps err with the line of the current item.
func (vm *VM) fail(f frame, err error) error {
	return &RuntimeError{Line: f.line(), Err: err}
}

func (vm *VM) failf(f frame, sentinel error, format string, args ...any) error {
	return vm.fail(f, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

func (vm *VM) warn(f frame, format string, args ...any) {
	w := Warning{Line: f.line(), Message: fmt.Sprintf(format, args...)}
	vm.warnings = append(vm.warnings, w)
	ev := vm.log.Warn().Int("line", w.Line)
	if f.entry != nil {
		ev = ev.Str("entry", f.entry.key)
	}
	ev.Msg(w.Message)
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

// pop removes n values and returns them top first. Nothing is removed when
// the stack holds fewer than n values.
func (vm *VM) pop(f frame, name string, n int) ([]Value, error) {
	if len(vm.stack) < n {
		return nil, vm.failf(f, ErrStackUnderflow, "%s needs %d operands, stack has %d", name, n, len(vm.stack))
	}
	args := make([]Value, n)
	for i := range n {
		args[i] = vm.stack[len(vm.stack)-1-i]
	}
	vm.stack = vm.stack[:len(vm.stack)-n]
	return args, nil
}

// mismatch warns about an operand of the wrong kind.
func (vm *VM) mismatch(f frame, name string, want ValueKind, got Value) {
	vm.warn(f, "%s is %s, not %s, for %s", got, got.Kind.article(), want.article(), name)
}

func (vm *VM) execBlock(f frame, block *ASTNode) error {
	for _, item := range block.Children {
		if err := vm.execItem(f.at(item)); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) execItem(f frame) error {
	n := f.item
	switch n.Kind {
	case NodeString:
		vm.push(StringValue(n.String))
	case NodeInteger:
		vm.push(IntValue(n.Integer))
	case NodeQuoted:
		if vm.lookup(n.String) == nil {
			return vm.failf(f, ErrUndefined, "'%s", n.String)
		}
		vm.push(FuncValue(n.String))
	case NodeBlock:
		vm.push(BlockValue(n))
	case NodeCall:
		return vm.call(f, n.String)
	default:
		return vm.fail(f, fmt.Errorf("unexpected %s in function body", n.Kind))
	}
	return nil
}

// call executes the symbol name: built-ins and functions run, variables
// and fields push their value.
func (vm *VM) call(f frame, name string) error {
	sym := vm.lookup(name)
	if sym == nil {
		return vm.failf(f, ErrUndefined, "%s", name)
	}
	switch sym.kind {
	case symBuiltin:
		return sym.builtin(vm, f)
	case symFunction:
		return vm.runBody(f, sym.body)
	case symMacro, symGlobalString:
		vm.push(StringValue(sym.str))
	case symGlobalInteger:
		vm.push(IntValue(sym.num))
	case symField, symEntryInteger, symEntryString:
		if sym.kind == symField && !vm.read {
			return vm.failf(f, ErrNotRead, "field %s used before READ", name)
		}
		if f.entry == nil {
			return vm.failf(f, ErrNoEntry, "%s %s used outside of an entry", sym.kind, name)
		}
		switch sym.kind {
		case symField:
			vm.push(f.entry.Field(sym.name))
		case symEntryInteger:
			vm.push(IntValue(f.entry.ints[sym.name]))
		default:
			vm.push(StringValue(f.entry.strs[sym.name]))
		}
	}
	return nil
}

func (vm *VM) runBody(f frame, body *ASTNode) error {
	vm.depth++
	defer func() { vm.depth-- }()
	if vm.depth > vm.opts.MaxDepth {
		return vm.failf(f, ErrTooDeep, "more than %d nested calls", vm.opts.MaxDepth)
	}
	return vm.execBlock(f, body)
}

// execValue runs a function value popped by if$ or while$.
func (vm *VM) execValue(f frame, name string, v Value) error {
	if v.Kind != KindFunction {
		vm.mismatch(f, name, KindFunction, v)
		return nil
	}
	if v.Body != nil {
		return vm.runBody(f, v.Body)
	}
	return vm.call(f, v.Str)
}

// emitLine appends a finished line to the document.
func (vm *VM) emitLine(line string) {
	vm.doc.WriteString(line)
}
