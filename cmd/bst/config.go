package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/strager/bst"
)

// Config holds the settings of a run. It is read from a TOML file and the
// command line flags override it:
//
//	line_width = 79
//	strict = true
//	max_depth = 10000
//	encoding = "ISO-8859-1"
//	log_level = "info"
type Config struct {
	LineWidth int    `toml:"line_width"`
	Strict    bool   `toml:"strict"`
	MaxDepth  int    `toml:"max_depth"`
	Encoding  string `toml:"encoding"`
	LogLevel  string `toml:"log_level"`
	Output    string `toml:"output"`
}

func defaultConfig() Config {
	opts := bst.DefaultOptions()
	return Config{
		LineWidth: opts.LineWidth,
		MaxDepth:  opts.MaxDepth,
		LogLevel:  "error",
	}
}

// loadConfig reads path on top of the defaults. Unknown keys are an error
// so that typos do not go unnoticed.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("can't read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return level, fmt.Errorf("bad log level %q", s)
	}
	return level, nil
}

// options converts the configuration for the VM.
func (c Config) options(logger zerolog.Logger) bst.Options {
	return bst.Options{
		LineWidth: c.LineWidth,
		Strict:    c.Strict,
		MaxDepth:  c.MaxDepth,
		Logger:    logger,
	}
}
