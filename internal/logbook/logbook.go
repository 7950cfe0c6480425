// internal/logbook/logbook.go
//
// The logbook is the journey log: an append-only text file under
// .lodestar/logs that records phase transitions, bundle generation, and
// anything else worth reconstructing after the TUI closes. Writes never
// fail the caller; a journey log that cannot be written is dropped, not
// escalated.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook persists journey progress to a simple text file.
type Logbook struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// Option customizes a Logbook.
type Option func(*Logbook)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logbook) { l.now = now }
}

// New creates a logbook that writes to the provided path.
func New(path string, opts ...Option) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	l := &Logbook{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry to the logbook.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s\n",
		l.now().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent entries, plus the total
// number of entries on file.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

// PhaseEntered records a journey phase transition.
func (l *Logbook) PhaseEntered(phase string) {
	l.Info("phase entered: %s", phase)
}

// BundleGenerated records a successful instrument bundle generation.
func (l *Logbook) BundleGenerated(bundleID, selfID, teamID string) {
	l.Info("bundle %s generated: self=%s team=%s", bundleID, selfID, teamID)
}

// BundlePartial records an orphaned self document after a failed team write.
func (l *Logbook) BundlePartial(selfID string, err error) {
	l.Error("team document write failed, self document %s orphaned: %v", selfID, err)
}
