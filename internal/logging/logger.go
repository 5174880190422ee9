package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger writes structured diagnostics to .claimdesk/logs/claimdesk.log so
// failures can be inspected after the TUI has taken over the terminal.
type Logger struct {
	*log.Logger
	file *os.File
}

// New opens (or reuses) the log file at path and logs at the given level.
func New(path, level string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := NewWriter(f, level)
	l.file = f
	return l, nil
}

// NewWriter logs to w without owning it.
func NewWriter(w io.Writer, level string) *Logger {
	return &Logger{Logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           ParseLevel(level),
	})}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard, "error")
}

// ParseLevel maps a config level onto a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single info line. It lets the logger stand in where only
// printf-style output is expected.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Component returns a logger whose lines carry the component prefix.
func (l *Logger) Component(name string) *Logger {
	if l == nil || l.Logger == nil {
		return Discard()
	}
	return &Logger{Logger: l.Logger.WithPrefix(name)}
}
