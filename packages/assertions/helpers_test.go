package assertions

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

type textElement struct {
	text    string
	enabled bool
}

func (e *textElement) Text(context.Context) (string, error) { return e.text, nil }

func (e *textElement) Is(_ context.Context, st backend.State) (bool, error) {
	switch st {
	case backend.StateExisting:
		return true, nil
	case backend.StateEnabled:
		return e.enabled, nil
	}
	return false, nil
}

// pageElement is an element with explicit states that also serves as
// its own page.
type pageElement struct {
	html   string
	title  string
	url    string
	states map[backend.State]bool
}

func (e *pageElement) Is(_ context.Context, st backend.State) (bool, error) {
	if st == backend.StateExisting {
		return true, nil
	}
	return e.states[st], nil
}

func (e *pageElement) HTML(context.Context) (string, error)  { return e.html, nil }
func (e *pageElement) Title(context.Context) (string, error) { return e.title, nil }
func (e *pageElement) URL(context.Context) (string, error)   { return e.url, nil }

type awaitable struct{ v any }

func (a awaitable) Await(context.Context) (any, error) { return a.v, nil }

type failingReporter struct{ calls int }

func (r *failingReporter) Attach(string, string) error {
	r.calls++
	return errors.New("reporter down")
}

type panickingReporter struct{}

func (panickingReporter) Attach(string, string) error { panic("reporter exploded") }

func newDispatcher(opts ...Option) (*Dispatcher, *Accumulator) {
	acc := NewAccumulator(opts...)
	return NewDispatcher(backend.New(), acc, opts...), acc
}
