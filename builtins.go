package bst

import (
	"strconv"
)

type builtinFunc func(vm *VM, f frame) error

// builtins maps the predefined function names to their implementations.
var builtins = map[string]builtinFunc{
	"+":  biAdd,
	"-":  biSub,
	"<":  biLess,
	">":  biGreater,
	"=":  biEqual,
	"*":  biConcat,
	":=": biAssign,

	"call.type$":  biCallType,
	"cite$":       biCite,
	"duplicate$":  biDuplicate,
	"entry.max$":  biConst(entryMax),
	"global.max$": biConst(globalMax),
	"if$":         biIf,
	"int.to.chr$": biIntToChr,
	"int.to.str$": biIntToStr,
	"missing$":    biMissing,
	"newline$":    biNewline,
	"pop$":        biPop,
	"preamble$":   biPreamble,
	"quote$":      biQuote,
	"skip$":       biSkip,
	"stack$":      biStack,
	"str.to.int$": biStrToInt,
	"swap$":       biSwap,
	"top$":        biTop,
	"type$":       biType,
	"warning$":    biWarning,
	"while$":      biWhile,
	"write$":      biWrite,

	"add.period$":  biAddPeriod,
	"change.case$": biChangeCase,
	"chr.to.int$":  biChrToInt,
	"empty$":       biEmpty,
	"format.name$": biFormatName,
	"num.names$":   biNumNames,
	"purify$":      biPurify,
	"substring$":   biSubstring,
	"text.length$": biTextLength,
	"text.prefix$": biTextPrefix,
	"width$":       biWidth,
}

// intOp pops b then a and pushes op(a, b). A non-integer operand pushes 0.
func (vm *VM) intOp(f frame, name string, op func(a, b int) Value) error {
	args, err := vm.pop(f, name, 2)
	if err != nil {
		return err
	}
	b, a := args[0], args[1]
	for _, v := range []Value{a, b} {
		if v.Kind != KindInteger {
			vm.mismatch(f, name, KindInteger, v)
			vm.push(IntValue(0))
			return nil
		}
	}
	vm.push(op(a.Int, b.Int))
	return nil
}

func biAdd(vm *VM, f frame) error {
	return vm.intOp(f, "+", func(a, b int) Value { return IntValue(a + b) })
}

func biSub(vm *VM, f frame) error {
	return vm.intOp(f, "-", func(a, b int) Value { return IntValue(a - b) })
}

func biLess(vm *VM, f frame) error {
	return vm.intOp(f, "<", func(a, b int) Value { return boolValue(a < b) })
}

func biGreater(vm *VM, f frame) error {
	return vm.intOp(f, ">", func(a, b int) Value { return boolValue(a > b) })
}

func biEqual(vm *VM, f frame) error {
	args, err := vm.pop(f, "=", 2)
	if err != nil {
		return err
	}
	b, a := args[0], args[1]
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		vm.push(boolValue(a.Str == b.Str))
	case a.Kind == KindInteger && b.Kind == KindInteger:
		vm.push(boolValue(a.Int == b.Int))
	default:
		vm.warn(f, "%s and %s are of different kinds, for =", a, b)
		vm.push(IntValue(0))
	}
	return nil
}

func biConcat(vm *VM, f frame) error {
	args, err := vm.pop(f, "*", 2)
	if err != nil {
		return err
	}
	b, a := args[0], args[1]
	for _, v := range []Value{a, b} {
		if v.Kind != KindString {
			vm.mismatch(f, "*", KindString, v)
			vm.push(StringValue(""))
			return nil
		}
	}
	vm.push(StringValue(a.Str + b.Str))
	return nil
}

// biAssign pops a variable name and then a value, and stores the value.
func biAssign(vm *VM, f frame) error {
	args, err := vm.pop(f, ":=", 2)
	if err != nil {
		return err
	}
	ref, v := args[0], args[1]
	if ref.Kind != KindFunction || ref.Body != nil {
		vm.warn(f, "%s is not a variable name, for :=", ref)
		return nil
	}
	sym := vm.lookup(ref.Str)
	if sym == nil {
		return vm.failf(f, ErrUndefined, "%s", ref.Str)
	}

	var want ValueKind
	switch sym.kind {
	case symGlobalString, symEntryString:
		want = KindString
	case symGlobalInteger, symEntryInteger:
		want = KindInteger
	case symField:
		want = KindString
	default:
		vm.warn(f, "%s is a %s and cannot be assigned", ref.Str, sym.kind)
		return nil
	}
	if v.Kind != want && !(sym.kind == symField && v.Kind == KindMissing) {
		vm.mismatch(f, ":=", want, v)
		return nil
	}

	switch sym.kind {
	case symGlobalString:
		sym.str = v.Str
		return nil
	case symGlobalInteger:
		sym.num = v.Int
		return nil
	}
	if f.entry == nil {
		return vm.failf(f, ErrNoEntry, "assignment to %s %s outside of an entry", sym.kind, ref.Str)
	}
	switch sym.kind {
	case symEntryString:
		f.entry.strs[sym.name] = v.Str
	case symEntryInteger:
		f.entry.ints[sym.name] = v.Int
	case symField:
		f.entry.fields[sym.name] = v
	}
	return nil
}

func biCallType(vm *VM, f frame) error {
	if f.entry == nil {
		return vm.failf(f, ErrNoEntry, "call.type$ outside of an entry")
	}
	typ := f.entry.typ
	sym := vm.lookup(typ)
	if sym == nil || sym.kind != symFunction {
		sym = vm.lookup("default.type")
		if sym == nil || sym.kind != symFunction {
			return vm.failf(f, ErrNoTypeFunction, "no function %s or default.type for entry %s", typ, f.entry.key)
		}
		vm.warn(f, "entry type %s of %s is unknown, using default.type", typ, f.entry.key)
	}
	return vm.runBody(f, sym.body)
}

func biCite(vm *VM, f frame) error {
	if f.entry == nil {
		return vm.failf(f, ErrNoEntry, "cite$ outside of an entry")
	}
	vm.push(StringValue(f.entry.key))
	return nil
}

func biDuplicate(vm *VM, f frame) error {
	args, err := vm.pop(f, "duplicate$", 1)
	if err != nil {
		return err
	}
	vm.push(args[0])
	vm.push(args[0])
	return nil
}

func biConst(n int) builtinFunc {
	return func(vm *VM, f frame) error {
		vm.push(IntValue(n))
		return nil
	}
}

// biIf pops the else branch, the then branch and the condition.
func biIf(vm *VM, f frame) error {
	args, err := vm.pop(f, "if$", 3)
	if err != nil {
		return err
	}
	elseFn, thenFn, cond := args[0], args[1], args[2]
	if cond.Kind != KindInteger {
		vm.mismatch(f, "if$", KindInteger, cond)
		return nil
	}
	if cond.Int > 0 {
		return vm.execValue(f, "if$", thenFn)
	}
	return vm.execValue(f, "if$", elseFn)
}

func biIntToChr(vm *VM, f frame) error {
	args, err := vm.pop(f, "int.to.chr$", 1)
	if err != nil {
		return err
	}
	v := args[0]
	if v.Kind != KindInteger {
		vm.mismatch(f, "int.to.chr$", KindInteger, v)
		vm.push(StringValue(""))
		return nil
	}
	if v.Int < 0 || v.Int > 0x10FFFF || (v.Int >= 0xD800 && v.Int <= 0xDFFF) {
		vm.warn(f, "%d is not a character code, for int.to.chr$", v.Int)
		vm.push(StringValue(""))
		return nil
	}
	vm.push(StringValue(string(rune(v.Int))))
	return nil
}

func biIntToStr(vm *VM, f frame) error {
	args, err := vm.pop(f, "int.to.str$", 1)
	if err != nil {
		return err
	}
	v := args[0]
	if v.Kind != KindInteger {
		vm.mismatch(f, "int.to.str$", KindInteger, v)
		vm.push(StringValue(""))
		return nil
	}
	vm.push(StringValue(strconv.Itoa(v.Int)))
	return nil
}

func biStrToInt(vm *VM, f frame) error {
	args, err := vm.pop(f, "str.to.int$", 1)
	if err != nil {
		return err
	}
	v := args[0]
	if v.Kind != KindString {
		vm.mismatch(f, "str.to.int$", KindString, v)
		vm.push(IntValue(0))
		return nil
	}
	n, perr := strconv.Atoi(v.Str)
	if perr != nil {
		vm.warn(f, "%s is not a number, for str.to.int$", v)
		n = 0
	}
	vm.push(IntValue(n))
	return nil
}

func biMissing(vm *VM, f frame) error {
	args, err := vm.pop(f, "missing$", 1)
	if err != nil {
		return err
	}
	switch v := args[0]; v.Kind {
	case KindMissing:
		vm.push(IntValue(1))
	case KindString:
		vm.push(IntValue(0))
	default:
		vm.mismatch(f, "missing$", KindString, v)
		vm.push(IntValue(0))
	}
	return nil
}

func biNewline(vm *VM, f frame) error {
	if f.entry != nil {
		f.entry.output.WriteByte('\n')
	}
	vm.out.newline(vm.emitLine)
	return nil
}

func biPop(vm *VM, f frame) error {
	_, err := vm.pop(f, "pop$", 1)
	return err
}

func biPreamble(vm *VM, f frame) error {
	vm.push(StringValue(vm.preamble))
	return nil
}

func biQuote(vm *VM, f frame) error {
	vm.push(StringValue(`"`))
	return nil
}

func biSkip(vm *VM, f frame) error {
	return nil
}

// biStack logs the whole stack, bottom first, and leaves it alone.
func biStack(vm *VM, f frame) error {
	vm.log.Info().Int("line", f.line()).Str("stack", StackSExpr(vm.stack)).Msg("stack$")
	return nil
}

func biSwap(vm *VM, f frame) error {
	args, err := vm.pop(f, "swap$", 2)
	if err != nil {
		return err
	}
	vm.push(args[0])
	vm.push(args[1])
	return nil
}

func biTop(vm *VM, f frame) error {
	args, err := vm.pop(f, "top$", 1)
	if err != nil {
		return err
	}
	vm.log.Info().Int("line", f.line()).Str("value", args[0].String()).Msg("top$")
	return nil
}

func biType(vm *VM, f frame) error {
	if f.entry == nil {
		return vm.failf(f, ErrNoEntry, "type$ outside of an entry")
	}
	if f.entry.typ == "" {
		vm.warn(f, "entry %s has no type", f.entry.key)
	}
	vm.push(StringValue(f.entry.typ))
	return nil
}

func biWarning(vm *VM, f frame) error {
	args, err := vm.pop(f, "warning$", 1)
	if err != nil {
		return err
	}
	v := args[0]
	if v.Kind != KindString {
		vm.mismatch(f, "warning$", KindString, v)
		return nil
	}
	vm.warn(f, "Warning--%s", v.Str)
	return nil
}

// biWhile pops the body and then the condition, and runs the body as long
// as the condition leaves a positive integer.
func biWhile(vm *VM, f frame) error {
	args, err := vm.pop(f, "while$", 2)
	if err != nil {
		return err
	}
	body, cond := args[0], args[1]
	for {
		if err := f.ctx.Err(); err != nil {
			return err
		}
		if err := vm.execValue(f, "while$", cond); err != nil {
			return err
		}
		res, err := vm.pop(f, "while$", 1)
		if err != nil {
			return err
		}
		if res[0].Kind != KindInteger {
			vm.mismatch(f, "while$", KindInteger, res[0])
			return nil
		}
		if res[0].Int <= 0 {
			return nil
		}
		if err := vm.execValue(f, "while$", body); err != nil {
			return err
		}
	}
}

func biWrite(vm *VM, f frame) error {
	args, err := vm.pop(f, "write$", 1)
	if err != nil {
		return err
	}
	v := args[0]
	if v.Kind != KindString {
		vm.mismatch(f, "write$", KindString, v)
		return nil
	}
	if f.entry != nil {
		f.entry.output.WriteString(v.Str)
	}
	vm.out.write(v.Str, vm.emitLine)
	return nil
}
