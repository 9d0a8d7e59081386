package bst

import (
	"math"

	"github.com/rs/zerolog"
)

const (
	DefaultLineWidth = 79
	DefaultMaxDepth  = 10000

	// entryMax and globalMax are the values of entry.max$ and global.max$.
	entryMax  = math.MaxInt32
	globalMax = math.MaxInt32
)

// Options configures a VM.
type Options struct {
	// LineWidth is the column after which output lines are broken.
	LineWidth int
	// Strict turns warnings that usually indicate a broken style, such as
	// values left on the stack, into errors.
	Strict bool
	// MaxDepth bounds the nesting of function calls.
	MaxDepth int
	// Logger receives warnings and the output of stack$ and top$. The zero
	// Logger discards everything.
	Logger zerolog.Logger
}

// DefaultOptions returns the options of a standard BibTeX run.
func DefaultOptions() Options {
	return Options{
		LineWidth: DefaultLineWidth,
		MaxDepth:  DefaultMaxDepth,
		Logger:    zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	if o.LineWidth <= minPrintLine {
		o.LineWidth = DefaultLineWidth
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}
