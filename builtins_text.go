package bst

import (
	"strings"
	"unicode/utf8"

	"github.com/strager/bst/bibtext"
)

// warner reports bibtext diagnostics as run warnings of the builtin name.
func (vm *VM) warner(f frame, name string) bibtext.Warner {
	return bibtext.WarnFunc(func(msg string) {
		vm.warn(f, "%s: %s", name, msg)
	})
}

// popString pops one value and checks that it is a string. ok is false
// after a kind mismatch has been reported.
func (vm *VM) popString(f frame, name string) (s string, ok bool, err error) {
	args, err := vm.pop(f, name, 1)
	if err != nil {
		return "", false, err
	}
	if args[0].Kind != KindString {
		vm.mismatch(f, name, KindString, args[0])
		return "", false, nil
	}
	return args[0].Str, true, nil
}

// stringFunc adapts a string-to-value function into a builtin that pushes
// fallback when its operand is not a string.
func stringFunc(name string, fallback Value, fn func(vm *VM, f frame, s string) Value) builtinFunc {
	return func(vm *VM, f frame) error {
		s, ok, err := vm.popString(f, name)
		if err != nil {
			return err
		}
		if !ok {
			vm.push(fallback)
			return nil
		}
		vm.push(fn(vm, f, s))
		return nil
	}
}

var (
	biAddPeriod = stringFunc("add.period$", StringValue(""), func(vm *VM, f frame, s string) Value {
		return StringValue(bibtext.AddPeriod(s))
	})
	biPurify = stringFunc("purify$", StringValue(""), func(vm *VM, f frame, s string) Value {
		return StringValue(bibtext.Purify(s, vm.warner(f, "purify$")))
	})
	biTextLength = stringFunc("text.length$", IntValue(0), func(vm *VM, f frame, s string) Value {
		return IntValue(bibtext.TextLength(s))
	})
	biWidth = stringFunc("width$", IntValue(0), func(vm *VM, f frame, s string) Value {
		return IntValue(bibtext.Width(s, vm.warner(f, "width$")))
	})
	biNumNames = stringFunc("num.names$", IntValue(0), func(vm *VM, f frame, s string) Value {
		return IntValue(len(bibtext.SplitNames(s)))
	})
	biChrToInt = stringFunc("chr.to.int$", IntValue(0), func(vm *VM, f frame, s string) Value {
		if utf8.RuneCountInString(s) != 1 {
			vm.warn(f, "%q is not a single character, for chr.to.int$", s)
			return IntValue(0)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return IntValue(int(r))
	})
)

// biEmpty pushes 1 for a missing field or a string of only whitespace.
func biEmpty(vm *VM, f frame) error {
	args, err := vm.pop(f, "empty$", 1)
	if err != nil {
		return err
	}
	switch v := args[0]; v.Kind {
	case KindMissing:
		vm.push(IntValue(1))
	case KindString:
		vm.push(boolValue(strings.TrimSpace(v.Str) == ""))
	default:
		vm.mismatch(f, "empty$", KindString, v)
		vm.push(IntValue(0))
	}
	return nil
}

// biChangeCase pops the mode and then the string.
func biChangeCase(vm *VM, f frame) error {
	args, err := vm.pop(f, "change.case$", 2)
	if err != nil {
		return err
	}
	spec, s := args[0], args[1]
	if s.Kind != KindString {
		vm.mismatch(f, "change.case$", KindString, s)
		vm.push(StringValue(""))
		return nil
	}
	if spec.Kind != KindString {
		vm.mismatch(f, "change.case$", KindString, spec)
		vm.push(s)
		return nil
	}
	mode, ok := bibtext.ParseCaseMode(spec.Str)
	if !ok {
		vm.warn(f, "%s is an illegal case-conversion string, for change.case$", spec)
		vm.push(s)
		return nil
	}
	vm.push(StringValue(bibtext.ChangeCase(s.Str, mode, vm.warner(f, "change.case$"))))
	return nil
}

// biFormatName pops the format, the 1-based index and the name list.
func biFormatName(vm *VM, f frame) error {
	args, err := vm.pop(f, "format.name$", 3)
	if err != nil {
		return err
	}
	format, index, names := args[0], args[1], args[2]
	switch {
	case format.Kind != KindString:
		vm.mismatch(f, "format.name$", KindString, format)
		vm.push(StringValue(""))
		return nil
	case index.Kind != KindInteger:
		vm.mismatch(f, "format.name$", KindInteger, index)
		vm.push(StringValue(""))
		return nil
	case names.Kind != KindString:
		vm.mismatch(f, "format.name$", KindString, names)
		vm.push(StringValue(""))
		return nil
	}
	list := bibtext.SplitNames(names.Str)
	if index.Int < 1 || index.Int > len(list) {
		return vm.failf(f, ErrNameIndex, "name %d of %q (%d names)", index.Int, names.Str, len(list))
	}
	p := bibtext.ParseName(list[index.Int-1])
	vm.push(StringValue(bibtext.FormatName(p, format.Str, vm.warner(f, "format.name$"))))
	return nil
}

// biSubstring pops the length, the start and the string.
func biSubstring(vm *VM, f frame) error {
	args, err := vm.pop(f, "substring$", 3)
	if err != nil {
		return err
	}
	length, start, s := args[0], args[1], args[2]
	if length.Kind != KindInteger || start.Kind != KindInteger {
		bad := length
		if bad.Kind == KindInteger {
			bad = start
		}
		vm.mismatch(f, "substring$", KindInteger, bad)
		vm.push(StringValue(""))
		return nil
	}
	if s.Kind != KindString {
		vm.mismatch(f, "substring$", KindString, s)
		vm.push(StringValue(""))
		return nil
	}
	vm.push(StringValue(bibtext.Substring(s.Str, start.Int, length.Int)))
	return nil
}

// biTextPrefix pops the count and then the string.
func biTextPrefix(vm *VM, f frame) error {
	args, err := vm.pop(f, "text.prefix$", 2)
	if err != nil {
		return err
	}
	n, s := args[0], args[1]
	if n.Kind != KindInteger {
		vm.mismatch(f, "text.prefix$", KindInteger, n)
		vm.push(StringValue(""))
		return nil
	}
	if s.Kind != KindString {
		vm.mismatch(f, "text.prefix$", KindString, s)
		vm.push(StringValue(""))
		return nil
	}
	vm.push(StringValue(bibtext.TextPrefix(s.Str, n.Int)))
	return nil
}
