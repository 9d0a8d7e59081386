package bst

import (
	"strconv"

	"github.com/strager/bst/sexy"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota + 1
	KindInteger
	KindFunction
	KindMissing
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFunction:
		return "function"
	case KindMissing:
		return "missing field"
	default:
		return "invalid"
	}
}

// article returns the kind name with "a" or "an" in front.
func (k ValueKind) article() string {
	if k == KindInteger {
		return "an " + k.String()
	}
	return "a " + k.String()
}

// Value is an element of the operand stack.
type Value struct {
	Kind ValueKind
	// KindString: the text. KindFunction: the function name when Body is nil.
	Str string
	// KindInteger:
	Int int
	// KindFunction: an inline block pushed by a nested {...} item.
	Body *ASTNode
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

func IntValue(n int) Value { return Value{Kind: KindInteger, Int: n} }

func MissingValue() Value { return Value{Kind: KindMissing} }

// FuncValue refers to a function by name, as pushed by 'name.
func FuncValue(name string) Value { return Value{Kind: KindFunction, Str: name} }

// BlockValue refers to an anonymous block.
func BlockValue(block *ASTNode) Value { return Value{Kind: KindFunction, Body: block} }

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

// Sexy renders v the way the test corpus spells stack contents:
// "text", 12, missing, (quoted "name") or (block ...).
func (v Value) Sexy() *sexy.Node {
	switch v.Kind {
	case KindString:
		return sexy.NewString(v.Str)
	case KindInteger:
		return sexy.NewInteger(strconv.Itoa(v.Int))
	case KindFunction:
		if v.Body != nil {
			return toSexy(v.Body)
		}
		return sexy.NewList([]*sexy.Node{sexy.NewSymbol("quoted"), sexy.NewString(v.Str)})
	case KindMissing:
		return sexy.NewSymbol("missing")
	default:
		return sexy.NewSymbol("invalid")
	}
}

func (v Value) String() string {
	return v.Sexy().String()
}

// StackSExpr renders a stack bottom to top as one list.
func StackSExpr(stack []Value) string {
	items := make([]*sexy.Node, len(stack))
	for i, v := range stack {
		items[i] = v.Sexy()
	}
	return sexy.NewList(items).String()
}
