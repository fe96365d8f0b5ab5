// Package logger holds the process-wide logger used by heapctl.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It discards all output until Init enables it.
var L = slog.New(slog.DiscardHandler)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum log level
	Output  io.Writer  // Destination. Default: os.Stderr
	JSON    bool       // Emit JSON records instead of text
}

// Init configures logging. Call before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, hopts))
		return
	}
	L = slog.New(slog.NewTextHandler(out, hopts))
}
