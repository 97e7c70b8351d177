package logging

import (
	"fmt"
	"io"
	"sync"
)

// CaptureLogger copies every entry at or above a minimum level into a
// writer and forwards all entries to the wrapped logger. It replaces
// intercepting a process-wide error stream: the caller installs it for
// the duration of a scenario and the captured text ends up in that
// scenario's diagnostics.
type CaptureLogger struct {
	mu       *sync.Mutex
	next     Logger
	w        io.Writer
	minLevel LogLevel
	fields   map[string]any
}

// NewCaptureLogger creates a CaptureLogger writing Warn and Error
// entries to w. A nil next logger discards forwarded output.
func NewCaptureLogger(next Logger, w io.Writer) *CaptureLogger {
	if next == nil {
		next = NullLogger{}
	}
	return &CaptureLogger{
		mu:       &sync.Mutex{},
		next:     next,
		w:        w,
		minLevel: LevelWarn,
		fields:   make(map[string]any),
	}
}

// SetMinLevel changes the lowest level that is captured.
func (c *CaptureLogger) SetMinLevel(level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minLevel = level
}

func (c *CaptureLogger) capture(level LogLevel, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level < c.minLevel || c.w == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s", level.String(), msg)
	if f := formatFields(c.fields, fields); f != "" {
		line += " " + f
	}
	_, _ = fmt.Fprintln(c.w, line)
}

// Info logs an informational message.
func (c *CaptureLogger) Info(msg string, fields ...Field) {
	c.capture(LevelInfo, msg, fields)
	c.next.Info(msg, fields...)
}

// Warn logs a warning message.
func (c *CaptureLogger) Warn(msg string, fields ...Field) {
	c.capture(LevelWarn, msg, fields)
	c.next.Warn(msg, fields...)
}

// Error logs an error message.
func (c *CaptureLogger) Error(msg string, fields ...Field) {
	c.capture(LevelError, msg, fields)
	c.next.Error(msg, fields...)
}

// Debug logs a debug message.
func (c *CaptureLogger) Debug(msg string, fields ...Field) {
	c.capture(LevelDebug, msg, fields)
	c.next.Debug(msg, fields...)
}

// WithFields returns a CaptureLogger writing to the same destination
// with additional default fields.
func (c *CaptureLogger) WithFields(fields ...Field) Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &CaptureLogger{
		mu:       c.mu,
		next:     c.next.WithFields(fields...),
		w:        c.w,
		minLevel: c.minLevel,
		fields:   mergeFields(c.fields, fields),
	}
}

// Close closes the wrapped logger.
func (c *CaptureLogger) Close() error {
	return c.next.Close()
}
