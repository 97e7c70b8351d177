package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ConsoleLogger writes colored, human-readable lines.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
}

// ConsoleOption configures a ConsoleLogger.
type ConsoleOption func(*ConsoleLogger)

// WithOutput sets the destination writer. Defaults to os.Stderr.
func WithOutput(w io.Writer) ConsoleOption {
	return func(c *ConsoleLogger) {
		c.output = w
	}
}

// WithVerbose enables debug output.
func WithVerbose(v bool) ConsoleOption {
	return func(c *ConsoleLogger) {
		c.verbose = v
	}
}

// NewConsoleLogger creates a console logger.
func NewConsoleLogger(opts ...ConsoleOption) *ConsoleLogger {
	c := &ConsoleLogger{
		mu:     &sync.Mutex{},
		output: os.Stderr,
		fields: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleLogger) log(level LogLevel, paint *color.Color, msg string, fields ...Field) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gray := color.New(color.FgHiBlack).SprintFunc()

	line := fmt.Sprintf("%s [%s] %s",
		gray(time.Now().Format("15:04:05")),
		paint.Sprintf("%-5s", level.String()),
		msg,
	)
	if f := formatFields(c.fields, fields); f != "" {
		line += " " + gray(f)
	}
	fmt.Fprintln(c.output, line)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, color.New(color.FgBlue), msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, color.New(color.FgYellow), msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, color.New(color.FgRed), msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, color.New(color.FgHiBlack), msg, fields...)
	}
}

// WithFields returns a new Logger sharing the same output with
// additional default fields.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  mergeFields(c.fields, fields),
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
