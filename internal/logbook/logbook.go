package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entry is one line of the system log.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// Logbook persists user-visible system activity to a tab separated text file.
type Logbook struct {
	path  string
	mu    sync.Mutex
	clock func() time.Time
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Logbook{path: path, clock: time.Now}, nil
}

// Append writes a single entry to the logbook and returns it.
func (l *Logbook) Append(level Level, source, message string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Level:     level,
		Source:    clean(source),
		Message:   clean(message),
		Timestamp: time.Now().UTC(),
	}
	if l == nil {
		return entry
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.clock != nil {
		entry.Timestamp = l.clock().UTC()
	}
	line := strings.Join([]string{
		entry.Timestamp.Format(time.RFC3339),
		string(entry.Level),
		entry.ID,
		entry.Source,
		entry.Message,
	}, "\t") + "\n"
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return entry
	}
	defer file.Close()
	_, _ = file.WriteString(line)
	return entry
}

// Tail returns up to maxEntries of the most recent entries, oldest first,
// along with the total number of entries in the file. Lines that do not
// parse are skipped.
func (l *Logbook) Tail(maxEntries int) ([]Entry, int) {
	if l == nil || maxEntries <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	total := len(entries)
	if total == 0 {
		return nil, 0
	}
	if total > maxEntries {
		entries = entries[total-maxEntries:]
	}
	return entries, total
}

// Info appends an informational entry.
func (l *Logbook) Info(source, format string, args ...any) Entry {
	return l.Append(LevelInfo, source, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(source, format string, args ...any) Entry {
	return l.Append(LevelWarning, source, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(source, format string, args ...any) Entry {
	return l.Append(LevelError, source, fmt.Sprintf(format, args...))
}

func parseLine(line string) (Entry, bool) {
	parts := strings.SplitN(line, "\t", 5)
	if len(parts) != 5 {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Timestamp: ts,
		Level:     Level(parts[1]),
		ID:        parts[2],
		Source:    parts[3],
		Message:   parts[4],
	}, true
}

func clean(value string) string {
	value = strings.TrimSpace(value)
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(value)
}
