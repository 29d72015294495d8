// Package logger provides the process-wide structured logger.
//
// Nothing is written until Init is called; before that every logger
// returned from this package discards its output.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/workty/git-workty/internal/paths"
)

var (
	root     *slog.Logger
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	mu       sync.Mutex
	logPath  string
)

// DefaultLogPath returns the log file used when Init is given an empty path.
func DefaultLogPath() (string, error) {
	return paths.LogFilePath()
}

// SetDebug enables or disables debug level logging
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init opens the log file at path, or at DefaultLogPath when path is empty.
// Calling Init again is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if root != nil {
		return nil
	}

	if path == "" {
		p, err := DefaultLogPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f
	logPath = path
	root = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	root.Debug("logger initialized", "path", path, "pid", os.Getpid())
	return nil
}

// Path returns the active log file, or "" when logging is disabled.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Get returns the root logger.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		return discard
	}
	return root
}

// WithComponent returns a logger tagged with the component name.
//
//	log := logger.WithComponent("git")
//	log.Debug("worktree added", "path", path)
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// Close closes the log file and stops logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	root = nil
	logPath = ""
}

// Reset restores the initial state. Intended for tests.
func Reset() {
	Close()
	mu.Lock()
	defer mu.Unlock()
	levelVar = new(slog.LevelVar)
}
