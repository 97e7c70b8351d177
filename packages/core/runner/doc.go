// Package runner executes softspec scenario files.
//
// Each scenario gets its own failure accumulator, backend and dispatcher.
// Steps are evaluated in order and never stop on a failed assertion; the
// scenario fails once, at the end, with every collected failure. Warnings
// logged while a scenario runs are captured into its failure report.
//
// Scenarios of a file run sequentially by default, or concurrently with a
// bounded number of workers in parallel mode.
package runner
