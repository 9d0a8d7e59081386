package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is the quiet period after a change before watch runs again.
const settle = 100 * time.Millisecond

func watchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	config := runFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bst watch [flags] <style.bst> <data>...\n")
		fmt.Fprintf(os.Stderr, "Run a style again whenever it or a database changes\n\n")
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
	defer stop()
	err = watch(ctx, fs.Args(), func(ctx context.Context) {
		if err := run(ctx, cfg, fs.Arg(0), fs.Args()[1:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}, os.Stderr)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// watch calls rerun once and then after every change to one of files,
// until ctx is done. Changes are seen through the directories holding the
// files, which also catches files replaced by rename.
func watch(ctx context.Context, files []string, rerun func(context.Context), log io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("can't watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	rerun(ctx)

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(log, "watch: %v\n", err)
		case <-timer.C:
			fmt.Fprintf(log, "--- %s\n", time.Now().Format(time.TimeOnly))
			rerun(ctx)
		}
	}
}
