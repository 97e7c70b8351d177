package backend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Recorder is an assert.TestingT that records failures instead of
// failing a test.
type Recorder struct {
	messages []string
}

var _ assert.TestingT = (*Recorder)(nil)

// Errorf records a failure message.
func (r *Recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

// Helper satisfies testify's helper detection.
func (r *Recorder) Helper() {}

// Failed reports whether any failure was recorded.
func (r *Recorder) Failed() bool {
	return len(r.messages) > 0
}

// Message returns the recorded failures with testify's trace labels
// removed, keeping only the "Error:" sections.
func (r *Recorder) Message() string {
	parts := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		if cleaned := cleanMessage(m); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, "\n")
}

var (
	labelLine        = regexp.MustCompile(`^\t([A-Za-z ]+):\s*\t(.*)$`)
	continuationLine = regexp.MustCompile(`^\t +\t(.*)$`)
)

func cleanMessage(raw string) string {
	var out []string
	capturing, found := false, false

	for _, line := range strings.Split(raw, "\n") {
		if m := labelLine.FindStringSubmatch(line); m != nil {
			capturing = m[1] == "Error"
			if capturing {
				found = true
				out = append(out, strings.TrimSpace(m[2]))
			}
			continue
		}
		if !capturing {
			continue
		}
		if m := continuationLine.FindStringSubmatch(line); m != nil {
			out = append(out, strings.TrimRight(m[1], " \t"))
		}
	}

	if !found {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// run evaluates one testify check. A false return, or a panic inside the
// check, becomes a *BackendError.
func run(check string, fn func(t assert.TestingT) bool) (err error) {
	rec := &Recorder{}
	defer func() {
		if p := recover(); p != nil {
			err = &BackendError{Check: check, Reason: fmt.Sprintf("%s panicked: %v", check, p)}
		}
	}()

	if fn(rec) && !rec.Failed() {
		return nil
	}
	return &BackendError{Check: check, Reason: rec.Message()}
}
