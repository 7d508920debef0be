// Package jinlog provides the structured, leveled logging used by every
// other Jin component (§4.9, C9). It wraps log/slog, optionally backed
// by a rotating file writer so that long-lived CLI invocations against
// a large store don't leave unbounded log files behind.
package jinlog

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide logger.
type Options struct {
	// Level is the minimum level emitted. Defaults to slog.LevelInfo.
	Level slog.Level
	// FilePath, if set, routes log output through a rotating file
	// writer instead of stderr.
	FilePath string
	// MaxSizeMB bounds a single rotated log file. Defaults to 10.
	MaxSizeMB int
	// MaxBackups bounds how many rotated files are kept. Defaults to 3.
	MaxBackups int
}

// New builds a *slog.Logger per opts. With no FilePath, it logs text
// lines to stderr; with a FilePath, it rotates through lumberjack.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.FilePath != "" {
		maxSize := opts.MaxSizeMB
		if maxSize == 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups == 0 {
			maxBackups = 3
		}
		w = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler)
}

// Default is the logger used by components that were not constructed
// with an explicit logger (tests, or callers that don't care). It logs
// at Info level to stderr.
var Default = New(Options{Level: slog.LevelInfo})
