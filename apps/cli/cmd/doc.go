// Package cmd implements the softspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute scenario files
//   - validate: Check scenario files without executing them
//   - list: Display the scenarios defined in files
//   - ops: Print the assertion operations each adapter accepts
//   - diff: Compare two JSON run results
//   - init: Create a config file and an example scenario file
//   - version: Show softspec version information
//   - completion: Generate shell completion scripts
//
// The run command supports filtering, several output formats, parallel
// execution and a watch mode for development workflows.
package cmd
