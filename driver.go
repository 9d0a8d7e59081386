package bst

import (
	"context"
	"iter"
	"slices"
	"strings"
)

// Result is the outcome of a run.
type Result struct {
	// Output is the complete text written with write$ and newline$.
	Output string
	// Entries are the entries in their final order.
	Entries  []*Entry
	Warnings []Warning
}

// Run executes the program's commands in order against bib. On a fatal
// error Run returns the partial result together with the error. A VM can
// be run again; each run starts from a fresh state.
func (vm *VM) Run(ctx context.Context, bib Bibliography) (*Result, error) {
	vm.reset()
	vm.preamble = bib.Preamble
	vm.log.Debug().Int("commands", len(vm.program.Children)).Int("records", len(bib.Records)).Msg("run")

	var err error
	root := frame{ctx: ctx}
	for _, cmd := range vm.program.Children {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = vm.command(root.at(cmd), bib); err != nil {
			break
		}
	}
	vm.out.flush(vm.emitLine)
	return &Result{
		Output:   vm.doc.String(),
		Entries:  vm.entries,
		Warnings: vm.warnings,
	}, err
}

func (vm *VM) command(f frame, bib Bibliography) error {
	cmd := f.item
	switch cmd.Kind {
	case NodeStrings:
		return vm.declareAll(f, symGlobalString, cmd.Children)
	case NodeIntegers:
		return vm.declareAll(f, symGlobalInteger, cmd.Children)
	case NodeFunction:
		sym, err := vm.declare(symFunction, cmd.String)
		if err != nil {
			return vm.fail(f, err)
		}
		sym.body = cmd.Children[0]
	case NodeMacro:
		sym, err := vm.declare(symMacro, cmd.String)
		if err != nil {
			return vm.fail(f, err)
		}
		sym.str = cmd.Value
	case NodeEntry:
		return vm.entryCommand(f)
	case NodeRead:
		return vm.readCommand(f, bib)
	case NodeExecute:
		if err := vm.runItem(f, cmd.Children[0]); err != nil {
			return err
		}
		return vm.checkStack(f)
	case NodeIterate:
		return vm.iterate(f, slices.Values(vm.entries))
	case NodeReverse:
		return vm.iterate(f, func(yield func(*Entry) bool) {
			for _, e := range slices.Backward(vm.entries) {
				if !yield(e) {
					return
				}
			}
		})
	case NodeSort:
		vm.sortEntries()
	}
	return nil
}

func (vm *VM) declareAll(f frame, kind symbolKind, idents []*ASTNode) error {
	for _, id := range idents {
		if _, err := vm.declare(kind, id.String); err != nil {
			return vm.fail(f.at(id), err)
		}
	}
	return nil
}

func (vm *VM) entryCommand(f frame) error {
	if vm.entryDeclared {
		return vm.failf(f, ErrCommandOrder, "ENTRY appears twice")
	}
	if vm.read {
		return vm.failf(f, ErrCommandOrder, "ENTRY after READ")
	}
	vm.entryDeclared = true

	lists := f.item.Children
	add := func(kind symbolKind, names *[]string, name string, at *ASTNode) error {
		if _, err := vm.declare(kind, name); err != nil {
			return vm.fail(f.at(at), err)
		}
		if key := fold(name); !slices.Contains(*names, key) {
			*names = append(*names, key)
		}
		return nil
	}
	if err := add(symField, &vm.fields, "crossref", f.item); err != nil {
		return err
	}
	if err := add(symEntryString, &vm.entryStrs, sortKeyVar, f.item); err != nil {
		return err
	}
	for i, kind := range []symbolKind{symField, symEntryInteger, symEntryString} {
		names := []*[]string{&vm.fields, &vm.entryInts, &vm.entryStrs}[i]
		for _, id := range lists[i].Children {
			if err := add(kind, names, id.String, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (vm *VM) readCommand(f frame, bib Bibliography) error {
	if vm.read {
		return vm.failf(f, ErrCommandOrder, "READ appears twice")
	}
	vm.read = true

	vm.entries = make([]*Entry, 0, len(bib.Records))
	vm.byKey = make(map[string]*Entry, len(bib.Records))
	for _, r := range bib.Records {
		e := newEntry(r)
		key := strings.ToLower(e.key)
		if _, dup := vm.byKey[key]; dup {
			vm.warn(f, "repeated entry %s", e.key)
			continue
		}
		vm.byKey[key] = e
		vm.entries = append(vm.entries, e)
	}

	for _, e := range vm.entries {
		var parent *Entry
		if ref, ok := vm.recordField(e.record, "crossref"); ok && ref != "" {
			parent = vm.byKey[strings.ToLower(ref)]
			if parent == nil {
				vm.warn(f, "entry %s refers to missing entry %s", e.key, ref)
			}
		}
		for _, name := range vm.fields {
			s, ok := vm.recordField(e.record, name)
			if (!ok || s == "") && parent != nil && name != "crossref" {
				s, ok = vm.recordField(parent.record, name)
			}
			if ok && s != "" {
				e.fields[name] = StringValue(s)
			} else {
				e.fields[name] = MissingValue()
			}
		}
		for _, name := range vm.entryInts {
			e.ints[name] = 0
		}
		for _, name := range vm.entryStrs {
			e.strs[name] = ""
		}
	}
	vm.log.Debug().Int("entries", len(vm.entries)).Int("fields", len(vm.fields)).Msg("read")
	return nil
}

func (vm *VM) recordField(r Record, name string) (string, bool) {
	if mr, ok := r.(MacroRecord); ok {
		return mr.FieldWithMacros(name, vm.macro)
	}
	return r.Field(name)
}

// runItem runs the function named or given inline by EXECUTE, ITERATE or
// REVERSE.
func (vm *VM) runItem(f frame, item *ASTNode) error {
	f = f.at(item)
	if item.Kind == NodeBlock {
		return vm.runBody(f, item)
	}
	return vm.call(f, item.String)
}

func (vm *VM) iterate(f frame, entries iter.Seq[*Entry]) error {
	item := f.item.Children[0]
	for e := range entries {
		if err := f.ctx.Err(); err != nil {
			return err
		}
		ef := f
		ef.entry = e
		if err := vm.runItem(ef, item); err != nil {
			return err
		}
		if err := vm.checkStack(ef); err != nil {
			return err
		}
	}
	return nil
}

// checkStack reports values left over by a top-level call.
func (vm *VM) checkStack(f frame) error {
	if len(vm.stack) == 0 {
		return nil
	}
	left := StackSExpr(vm.stack)
	if vm.opts.Strict {
		return vm.failf(f, ErrStackNotEmpty, "%d values left on the stack: %s", len(vm.stack), left)
	}
	vm.warn(f, "%d values left on the stack: %s", len(vm.stack), left)
	return nil
}

func (vm *VM) sortEntries() {
	slices.SortStableFunc(vm.entries, func(a, b *Entry) int {
		return strings.Compare(a.SortKey(), b.SortKey())
	})
}
