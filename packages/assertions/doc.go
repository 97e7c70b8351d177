// Package assertions provides soft assertions for softspec.
//
// A Dispatcher evaluates assertion requests without stopping at the first
// failure. Each failure is captured in the scenario's Accumulator and the
// scenario keeps going; Finalize turns everything captured into a single
// AggregateError.
//
// Operations are resolved in a fixed order:
//   - a caller-supplied predicate (Func)
//   - a check on the backend's value surface (Equal, Contains, Len, ...)
//   - a dotted path on the backend's fluent surface (toBeEnabled, not.toHaveText)
//   - a closed table of legacy names (equals, tobeenabled, isOK, ...)
//
// Anything else is captured as ErrUnsupportedOperation.
package assertions
