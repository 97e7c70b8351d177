// Package config handles configuration loading for softspec.
//
// Configuration lives in a JSON file (.softspec.config.json,
// softspec.config.json or .softspecrc) next to the scenario files. Missing
// files fall back to DefaultConfig; command-line flags are layered on top
// with Merge.
package config
