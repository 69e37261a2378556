// Package logging builds the slog logger used by the command line tool
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger
type Options struct {
	// Debug lowers the level from Info to Debug
	Debug bool
	// Writer receives human readable text logs, defaults to os.Stderr
	Writer io.Writer
	// File optionally receives JSON logs as well, rotated by size
	File string
	// MaxSize is the size in megabytes a log file is rotated at
	MaxSize int
	// MaxBackups is the number of rotated log files kept
	MaxBackups int
	// MaxAge is the number of days rotated log files are kept
	MaxAge int
}

// New returns a logger writing text to opts.Writer and, when opts.File is
// set, JSON to a rotating log file.  The returned function closes the log
// file
func New(opts Options) (*slog.Logger, func() error, error) {

	level := slog.LevelInfo

	if opts.Debug {
		level = slog.LevelDebug
	}

	w := opts.Writer

	if w == nil {
		w = os.Stderr
	}

	console := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	if opts.File == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	// lumberjack doesn't create directories
	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}

	if opts.MaxSize > 0 {
		logWriter.MaxSize = opts.MaxSize
	}

	if opts.MaxBackups > 0 {
		logWriter.MaxBackups = opts.MaxBackups
	}

	if opts.MaxAge > 0 {
		logWriter.MaxAge = opts.MaxAge
	}

	file := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level})

	return slog.New(teeHandler{console, file}), logWriter.Close, nil
}

// teeHandler passes each record to every handler that has the record level
// enabled
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {

	var errs []error

	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {

	out := make(teeHandler, len(t))

	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}

	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {

	out := make(teeHandler, len(t))

	for i, h := range t {
		out[i] = h.WithGroup(name)
	}

	return out
}
