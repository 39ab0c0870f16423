// Package runlog provides the per-run append-only log.
//
// Each pipeline run gets its own log file plus console echo. The logger is an
// explicit handle passed into every stage — never a package-level global — so
// stages stay testable in isolation and concurrent runs (separate processes)
// never share log state.
package runlog

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger writes timestamped, level-tagged lines to one or more sinks.
//
// Line format: "2006-01-02 15:04:05 | LEVEL | message".
type Logger struct {
	w    io.Writer
	file *os.File
	now  func() time.Time
}

// New returns a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Open creates (or appends to) the run log at path and echoes every line to
// console as well.
func Open(path string, console io.Writer) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &Logger{w: io.MultiWriter(f, console), file: f, now: time.Now}, nil
}

// Discard returns a logger that drops everything (tests, default value).
func Discard() *Logger {
	return &Logger{w: io.Discard, now: time.Now}
}

// Close releases the underlying log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) line(level, format string, args ...any) {
	ts := l.now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.w, "%s | %s | %s\n", ts, level, fmt.Sprintf(format, args...))
}

// Infof logs at INFO.
func (l *Logger) Infof(format string, args ...any) { l.line("INFO", format, args...) }

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, args ...any) { l.line("WARN", format, args...) }

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, args ...any) { l.line("ERROR", format, args...) }
