// Package backend is the assertion backend softspec dispatches to.
//
// It exposes two surfaces:
//   - a value surface of named checks (Equal, Contains, Len, MatchesSchema, ...)
//     evaluated by github.com/stretchr/testify/assert against a recording
//     TestingT, so a failed check becomes an error instead of a test failure
//   - a fluent element surface (Expect(actual).Not().ToBeEnabled(ctx)) over the
//     capability interfaces in element.go
//
// Element actuals follow an awaitable convention: anything implementing
// Awaitable is resolved before an element check applies.
package backend
