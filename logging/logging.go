// Package logging sets up the process-wide slog logger. Setup is called once
// from main; library packages only ever receive a *slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Canonical field keys, shared by every package that logs.
const (
	KeyLanguage  = "language"
	KeyIndex     = "index"
	KeyOutputDir = "output_dir"
	KeyRoot      = "root"
	KeyRunID     = "run_id"
	KeyDuration  = "duration_ms"
	KeyError     = "error"
)

func Language(lang string) slog.Attr { return slog.String(KeyLanguage, lang) }
func OutputDir(d string) slog.Attr   { return slog.String(KeyOutputDir, d) }
func RunID(id string) slog.Attr      { return slog.String(KeyRunID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Options describes logger construction parameters.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // auto, text, json
}

// ParseLevel maps a level name to a slog level. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level: unsupported value %q", s)
	}
}

// New builds a logger writing to w. With Format "auto", terminals get the
// text handler and everything else gets JSON.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" || format == "auto" {
		format = "json"
		if IsTerminal(w) {
			format = "text"
		}
	}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// Setup installs a stderr logger as the slog default and returns it.
func Setup(opts Options) (*slog.Logger, error) {
	logger, err := New(os.Stderr, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
