package bst

import (
	"errors"
	"fmt"
	"strings"
)

// SyntaxError is a lexical or grammatical error in BST source.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// ErrorCollection accumulates syntax errors in source order.
type ErrorCollection struct {
	Errors []*SyntaxError
}

// Add records an error at the given position.
func (c *ErrorCollection) Add(line, col int, format string, args ...any) {
	c.Errors = append(c.Errors, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error was recorded.
func (c *ErrorCollection) HasErrors() bool {
	return c != nil && len(c.Errors) > 0
}

// String returns one error per line.
func (c *ErrorCollection) String() string {
	var b strings.Builder
	for i, err := range c.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

func (c *ErrorCollection) Error() string {
	return c.String()
}

// Fatal runtime conditions. A *RuntimeError wraps one of these.
var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUndefined      = errors.New("undefined identifier")
	ErrNotRead        = errors.New("field accessed before READ")
	ErrNoEntry        = errors.New("no current entry")
	ErrNameIndex      = errors.New("name index out of range")
	ErrRedeclared     = errors.New("name already declared")
	ErrCommandOrder   = errors.New("illegal command order")
	ErrNoTypeFunction = errors.New("no function for entry type")
	ErrTooDeep        = errors.New("function calls nested too deeply")
	ErrStackNotEmpty  = errors.New("stack not empty")
)

// RuntimeError is a fatal error raised while executing a program. It aborts
// the whole run.
type RuntimeError struct {
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Warning is a recoverable problem reported during a run.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}
