// Package logging configures slog for voxelfield and provides the failure
// reporter the scheduler hands errors to.
//
// Output goes to stderr by default: human-readable text when stderr is a
// terminal, JSON lines otherwise (piped into a collector or a file).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Config selects level, destination and format
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Output defaults to os.Stderr
	Output io.Writer
	// JSON forces JSON output even on a terminal
	JSON bool
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a logger from cfg. The returned LevelVar can raise or lower the
// level later (after a scene reload changes log_level).
func New(cfg Config) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(lvl)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: levelVar}
	var h slog.Handler
	if cfg.JSON || !isTerminal(out) {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h).With("service", "voxelfield"), levelVar, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Reporter logs failures at error level and remembers the last one.
// It satisfies game.Reporter.
type Reporter struct {
	logger *slog.Logger

	mu       sync.Mutex
	failures int
	last     error
}

// NewReporter returns a reporter writing to logger
func NewReporter(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger}
}

// Report logs msg with the underlying cause
func (r *Reporter) Report(msg string, err error) {
	r.mu.Lock()
	r.failures++
	r.last = err
	r.mu.Unlock()

	r.logger.Error(msg, "error", err)
}

// Failures returns how many reports were received
func (r *Reporter) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Last returns the most recent reported error
func (r *Reporter) Last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
