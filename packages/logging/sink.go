package logging

import "sync"

// Sink is a Logger whose destination can be swapped for a bounded
// period. Components hold the Sink; a scenario installs its own logger
// with Intercept and restores the previous one when it ends.
type Sink struct {
	mu      sync.RWMutex
	current Logger
}

// NewSink creates a Sink forwarding to l. A nil l discards output.
func NewSink(l Logger) *Sink {
	if l == nil {
		l = NullLogger{}
	}
	return &Sink{current: l}
}

// Intercept routes all output to l until the returned restore function
// is called. Restore is idempotent and must be deferred by the caller.
// Interceptions nest: each restore reinstates the logger that was
// current when its Intercept was called.
func (s *Sink) Intercept(l Logger) (restore func()) {
	s.mu.Lock()
	prev := s.current
	s.current = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.current = prev
			s.mu.Unlock()
		})
	}
}

// Current returns the logger output is currently routed to.
func (s *Sink) Current() Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Info logs an informational message.
func (s *Sink) Info(msg string, fields ...Field) { s.Current().Info(msg, fields...) }

// Warn logs a warning message.
func (s *Sink) Warn(msg string, fields ...Field) { s.Current().Warn(msg, fields...) }

// Error logs an error message.
func (s *Sink) Error(msg string, fields ...Field) { s.Current().Error(msg, fields...) }

// Debug logs a debug message.
func (s *Sink) Debug(msg string, fields ...Field) { s.Current().Debug(msg, fields...) }

// WithFields binds fields to the logger that is current at call time.
func (s *Sink) WithFields(fields ...Field) Logger {
	return s.Current().WithFields(fields...)
}

// Close closes the current logger.
func (s *Sink) Close() error {
	return s.Current().Close()
}
