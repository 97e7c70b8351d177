package assertions

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

// AssertHasText checks text on two kinds of actual. A string must
// contain expected; a text retriever, awaited first when it is
// backend.Awaitable, must have exactly the expected text. An awaitable
// that resolves to nil is an element that does not exist. Any other
// actual returns ErrUnsupportedActualType.
func AssertHasText(ctx context.Context, actual any, expected string) error {
	if s, ok := actual.(string); ok {
		if !strings.Contains(s, expected) {
			return &backend.BackendError{
				Check:  "hasText",
				Reason: fmt.Sprintf("expected substring: %q\nreceived string: %q", expected, s),
			}
		}
		return nil
	}

	resolved, err := backend.Resolve(ctx, actual)
	if err != nil {
		return fmt.Errorf("hasText: resolve actual: %w", err)
	}
	if _, awaited := actual.(backend.Awaitable); awaited && resolved == nil {
		return &backend.BackendError{Check: "hasText", Reason: "element does not exist"}
	}
	tr, ok := resolved.(backend.TextRetriever)
	if !ok {
		return fmt.Errorf("%w: need a string or an element with text, got %T", ErrUnsupportedActualType, resolved)
	}
	text, err := tr.Text(ctx)
	if err != nil {
		return fmt.Errorf("hasText: %w", err)
	}
	if text != expected {
		return &backend.BackendError{
			Check:  "hasText",
			Reason: fmt.Sprintf("expected text: %q\nreceived text: %q", expected, text),
		}
	}
	return nil
}
