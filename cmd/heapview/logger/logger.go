// Package logger writes heapview's debug log. The TUI owns the terminal, so
// records go to one file per session and only the newest sessions are kept.
package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// L discards everything until Init enables it.
var L = slog.New(slog.DiscardHandler)

var session *os.File

const (
	sessionGlob  = "heapview-*.log"
	stampLayout  = "20060102-150405"
	keepSessions = 10
)

// Options configures the session log.
type Options struct {
	Enabled bool
	Dir     string     // Default: <user cache dir>/heapview
	Level   slog.Level // Default: LevelInfo
}

// Init opens a new session log and returns its path. With Enabled false it
// closes any open session and discards records.
func Init(opts Options) (string, error) {
	if err := Close(); err != nil {
		return "", err
	}
	if !opts.Enabled {
		return "", nil
	}

	dir := opts.Dir
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(cache, "heapview")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	prune(dir, keepSessions-1)

	path := filepath.Join(dir, "heapview-"+time.Now().Format(stampLayout)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	session = f
	L = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: opts.Level})).
		With("pid", os.Getpid())
	return path, nil
}

// Close ends the session and goes back to discarding.
func Close() error {
	L = slog.New(slog.DiscardHandler)
	if session == nil {
		return nil
	}
	err := session.Close()
	session = nil
	return err
}

// prune removes all but the keep newest session logs in dir. The timestamp
// layout sorts lexically in time order.
func prune(dir string, keep int) {
	logs, err := filepath.Glob(filepath.Join(dir, sessionGlob))
	if err != nil || len(logs) <= keep {
		return
	}
	slices.Sort(logs)
	for _, p := range logs[:len(logs)-keep] {
		_ = os.Remove(p)
	}
}
