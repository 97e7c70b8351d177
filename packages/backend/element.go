package backend

import "context"

// Awaitable is an actual value that must be resolved before element
// checks apply, e.g. a lazy element lookup.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// State is an element state a Stateful actual can report.
type State string

const (
	StateExisting  State = "existing"
	StateEnabled   State = "enabled"
	StateDisplayed State = "displayed"
	StateSelected  State = "selected"
	StateChecked   State = "checked"
	StateFocused   State = "focused"
	StateClickable State = "clickable"
)

// Stateful reports element states.
type Stateful interface {
	Is(ctx context.Context, state State) (bool, error)
}

// TextRetriever exposes an element's visible text.
type TextRetriever interface {
	Text(ctx context.Context) (string, error)
}

// HTMLRetriever exposes an element's outer HTML.
type HTMLRetriever interface {
	HTML(ctx context.Context) (string, error)
}

// AttributeReader exposes element attributes. The bool reports whether
// the attribute is present.
type AttributeReader interface {
	Attribute(ctx context.Context, name string) (string, bool, error)
}

// Page exposes document-level properties.
type Page interface {
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
}

// Resolve awaits actual if it is Awaitable and returns it unchanged
// otherwise.
func Resolve(ctx context.Context, actual any) (any, error) {
	if a, ok := actual.(Awaitable); ok {
		return a.Await(ctx)
	}
	return actual, nil
}
