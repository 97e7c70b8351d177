// Package output renders runner results.
//
// Console output is written as each file finishes. The json, junit, tap
// and html formatters accumulate results and write everything on Flush.
// A scenario that failed only through collected assertions is reported
// as a failure; any other error, such as a failing hook, is reported as
// an error.
package output
