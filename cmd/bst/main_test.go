package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"
	"github.com/strager/bst"
)

const style = `
ENTRY { title } {} {}
READ
ITERATE { { cite$ write$ ": " write$ title write$ newline$ } }
EXECUTE { { "done" warning$ } }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", style)
	first := writeFile(t, dir, "a.bib", `@misc{a, title = {Alpha}}`)
	second := writeFile(t, dir, "b.yaml", "entries:\n  - type: misc\n    key: b\n    title: Beta\n")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), defaultConfig(), stylePath, []string{first, second}, &stdout, &stderr)
	be.Err(t, err, nil)
	be.Equal(t, stdout.String(), "a: Alpha\nb: Beta\n")
	be.Equal(t, strings.Count(stderr.String(), "warning: Warning--done"), 2)
}

func TestRunOutputFile(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", style)
	data := writeFile(t, dir, "a.bib", `@misc{a, title = {Alpha}}`)

	cfg := defaultConfig()
	cfg.Output = filepath.Join(dir, "out.bbl")
	var stdout, stderr bytes.Buffer
	be.Err(t, run(context.Background(), cfg, stylePath, []string{data}, &stdout, &stderr), nil)
	be.Equal(t, stdout.String(), "")

	out, err := os.ReadFile(cfg.Output)
	be.Err(t, err, nil)
	be.Equal(t, string(out), "a: Alpha\n")
}

func TestRunReportsDatabaseErrors(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", style)
	data := writeFile(t, dir, "a.bib", "@misc{a, title = {Alpha}}\n@misc{broken, title = \"x\" \"y\"}\n")

	var stdout, stderr bytes.Buffer
	be.Err(t, run(context.Background(), defaultConfig(), stylePath, []string{data}, &stdout, &stderr), nil)
	be.Equal(t, stdout.String(), "a: Alpha\n")
	be.True(t, strings.Contains(stderr.String(), "a.bib:2:"))
}

func TestRunLogging(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", style)
	data := writeFile(t, dir, "a.bib", `@misc{a, title = {Alpha}}`)

	cfg := defaultConfig()
	cfg.LogLevel = "warn"
	var stdout, stderr bytes.Buffer
	be.Err(t, run(context.Background(), cfg, stylePath, []string{data}, &stdout, &stderr), nil)
	logged := stderr.String()
	be.True(t, strings.Contains(logged, `"level":"warn"`))
	be.True(t, strings.Contains(logged, `"data":"`+data+`"`))
	be.True(t, strings.Contains(logged, `"message":"Warning--done"`))
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("DEBUG")
	be.Err(t, err, nil)
	be.Equal(t, level, zerolog.DebugLevel)

	_, err = parseLevel("")
	be.True(t, err != nil)
}

func TestRunStrict(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", "EXECUTE { { #1 } }")
	data := writeFile(t, dir, "a.bib", "")

	cfg := defaultConfig()
	cfg.Strict = true
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), cfg, stylePath, []string{data}, &stdout, &stderr)
	be.True(t, errors.Is(err, bst.ErrStackNotEmpty))
}

func TestRunSyntaxError(t *testing.T) {
	dir := t.TempDir()
	stylePath := writeFile(t, dir, "s.bst", "READ\nPRINT")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), defaultConfig(), stylePath, []string{"none.bib"}, &stdout, &stderr)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), `2:1: expected a command but got "PRINT"`))
}

func TestLoadStyleEncoding(t *testing.T) {
	dir := t.TempDir()
	// "é" in ISO-8859-1.
	path := writeFile(t, dir, "latin1.bst", "MACRO {e} {\"caf\xe9\"}")

	program, err := loadStyle(path, "ISO-8859-1")
	be.Err(t, err, nil)
	be.Equal(t, bst.ToSExpr(program), `(program (macro "e" "café"))`)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bst.toml", `
line_width = 60
strict = true
encoding = "ISO-8859-1"
log_level = "warn"
`)

	cfg, err := loadConfig(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.LineWidth, 60)
	be.True(t, cfg.Strict)
	be.Equal(t, cfg.MaxDepth, bst.DefaultMaxDepth)
	be.Equal(t, cfg.Encoding, "ISO-8859-1")

	opts := cfg.options(zerolog.Nop())
	be.Equal(t, opts.LineWidth, 60)
	be.True(t, opts.Strict)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfig(writeFile(t, dir, "typo.toml", "line_widht = 60\n"))
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown keys line_widht"))

	_, err = loadConfig(writeFile(t, dir, "level.toml", "log_level = \"loud\"\n"))
	be.True(t, err != nil)

	_, err = loadConfig(filepath.Join(dir, "missing.toml"))
	be.True(t, err != nil)

	cfg, err := loadConfig("")
	be.Err(t, err, nil)
	be.Equal(t, cfg, defaultConfig())
}

func TestWatchReruns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.bst", "READ")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runs := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, []string{path}, func(context.Context) { runs <- struct{}{} }, &bytes.Buffer{})
	}()

	<-runs
	be.Err(t, os.WriteFile(path, []byte("READ SORT"), 0o644), nil)
	select {
	case <-runs:
	case <-ctx.Done():
		t.Fatal("no run after the file changed")
	}

	cancel()
	be.True(t, errors.Is(<-done, context.Canceled))
}
