// Command bst runs BibTeX styles against bibliography databases.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/strager/bst"
	"github.com/strager/bst/bib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `bst - BibTeX style interpreter

Usage:
    bst <command> [arguments]

Commands:
    run <style.bst> <data>...     Run a style against one or more databases
    watch <style.bst> <data>...   Run again whenever the style or a database changes
    check <style.bst>             Parse a style and report syntax errors
    parse <style.bst | data>      Print the syntax tree of a style, or a database in .bib form
    help                          Show this help message

Databases are BibTeX .bib files or .yaml files.

Examples:
    bst run plain.bst refs.bib
    bst run -o refs.bbl -width 72 plain.bst refs.bib more.yaml
    bst check -v alpha.bst
    bst parse -dump alpha.bst

Use "bst <command> -h" for more information about a command.
`)
}

// runFlags declares the flags shared by run and watch. The returned
// function loads the configuration and applies the flags given on the
// command line on top of it.
func runFlags(fs *flag.FlagSet) func() (Config, error) {
	configPath := fs.String("config", "", "TOML configuration file")
	output := fs.String("o", "", "Output file (default: standard output)")
	strict := fs.Bool("strict", false, "Treat values left on the stack as errors")
	width := fs.Int("width", 0, "Break output lines after this column (default 79)")
	encoding := fs.String("encoding", "", "Encoding of the style and .bib files, e.g. ISO-8859-1")
	verbose := fs.Bool("v", false, "Log what the interpreter does")

	return func() (Config, error) {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return cfg, err
		}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "o":
				cfg.Output = *output
			case "strict":
				cfg.Strict = *strict
			case "width":
				cfg.LineWidth = *width
			case "encoding":
				cfg.Encoding = *encoding
			case "v":
				if *verbose {
					cfg.LogLevel = "debug"
				}
			}
		})
		return cfg, nil
	}
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	config := runFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bst run [flags] <style.bst> <data>...\n")
		fmt.Fprintf(os.Stderr, "Run a style against one or more databases\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Error: expected a style and at least one database\n")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, fs.Arg(0), fs.Args()[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print the syntax tree")
	encoding := fs.String("encoding", "", "Encoding of the style file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bst check [-v] [-encoding e] <style.bst>\n")
		fmt.Fprintf(os.Stderr, "Parse a style and report syntax errors\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)
	program, err := loadStyle(filename, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)

	if *verbose {
		fmt.Printf("AST: %s\n", bst.ToSExpr(program))
	}
}

func parseCommand(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the Go structures instead of an s-expression")
	encoding := fs.String("encoding", "", "Encoding of the style or .bib file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bst parse [-dump] [-encoding e] <style.bst | data>\n")
		fmt.Fprintf(os.Stderr, "Print the syntax tree of a style, or a .bib or .yaml database in .bib form\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	if isStyle(fs.Arg(0)) {
		parseStyle(fs.Arg(0), *encoding, *dump)
		return
	}

	f, err := loadFile(fs.Arg(0), *encoding)
	if f == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	if *dump {
		cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cs.Fdump(os.Stdout, f.Records)
		return
	}
	if err := bib.Print(os.Stdout, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isStyle(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bib", ".yaml", ".yml":
		return false
	}
	return true
}

func parseStyle(filename, encoding string, dump bool) {
	program, err := loadStyle(filename, encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if dump {
		cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cs.Fdump(os.Stdout, program)
		return
	}
	fmt.Println(bst.ToSExpr(program))
}

// loadStyle reads and parses a style file.
func loadStyle(filename, encoding string) (*bst.ASTNode, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", filename, err)
	}
	defer f.Close()

	r, err := bib.Decode(f, encoding)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", filename, err)
	}

	program, err := bst.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing errors in %s:\n%w", filename, err)
	}
	return program, nil
}

// loadFile reads a .bib or .yaml database. Malformed .bib entries are
// skipped; the returned error describes them while the file holds
// everything else.
func loadFile(filename, encoding string) (*bib.File, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		r, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return bib.ParseYAML(r, filename)
	default:
		return bib.Parse(nil, filename, bib.Options{Charset: encoding})
	}
}

func loadDatabase(filename, encoding string) (bst.Bibliography, error) {
	f, err := loadFile(filename, encoding)
	if f == nil {
		return bst.Bibliography{}, err
	}
	return bst.NewBibliography(f.Records, f.Preamble), err
}

// job is the run of the style against one database.
type job struct {
	data   string
	result *bst.Result
	dbErr  error
}

// runAll runs program against every database, one VM per database, and
// returns the jobs in argument order.
func runAll(ctx context.Context, program *bst.ASTNode, cfg Config, logger zerolog.Logger, data []string) ([]*job, error) {
	jobs := make([]*job, len(data))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range data {
		j := &job{data: path}
		jobs[i] = j
		g.Go(func() error {
			bibliography, err := loadDatabase(path, cfg.Encoding)
			if err != nil {
				var perr *bib.ParseError
				if !errors.As(err, &perr) {
					return err
				}
				j.dbErr = err
			}
			vm := bst.New(program, cfg.options(logger.With().Str("data", path).Logger()))
			res, err := vm.Run(ctx, bibliography)
			j.result = res
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return jobs, g.Wait()
}

// run executes style against data and writes the outputs in argument
// order. Warnings go to stderr.
func run(ctx context.Context, cfg Config, style string, data []string, stdout, stderr io.Writer) error {
	program, err := loadStyle(style, cfg.Encoding)
	if err != nil {
		return err
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	color := isTerminal(stderr)
	logger := newLogger(stderr, level, color)

	jobs, runErr := runAll(ctx, program, cfg, logger, data)
	for _, j := range jobs {
		if j.dbErr != nil {
			fmt.Fprintf(stderr, "%v\n", j.dbErr)
		}
		if j.result != nil {
			printWarnings(stderr, style, j.result.Warnings, color)
		}
	}
	if runErr != nil {
		return runErr
	}

	out := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for _, j := range jobs {
		if _, err := io.WriteString(out, j.result.Output); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger logs JSON lines to w, or readable lines without timestamps on
// a terminal.
func newLogger(w io.Writer, level zerolog.Level, terminal bool) zerolog.Logger {
	if terminal {
		out := zerolog.ConsoleWriter{Out: w, PartsExclude: []string{zerolog.TimestampFieldName}}
		return zerolog.New(out).Level(level)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func printWarnings(w io.Writer, style string, warnings []bst.Warning, color bool) {
	label := "warning:"
	if color {
		label = "\x1b[1;33mwarning:\x1b[0m"
	}
	for _, warning := range warnings {
		if warning.Line > 0 {
			fmt.Fprintf(w, "%s:%d: %s %s\n", style, warning.Line, label, warning.Message)
		} else {
			fmt.Fprintf(w, "%s: %s %s\n", style, label, warning.Message)
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		runCommand(args)
	case "watch":
		watchCommand(args)
	case "check":
		checkCommand(args)
	case "parse":
		parseCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
