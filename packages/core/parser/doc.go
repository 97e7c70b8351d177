// Package parser loads softspec scenario files.
//
// Scenario files are YAML documents with the extension .soft.yaml,
// .soft.yml or .softspec. A file declares variables, a fixture (page,
// elements, JSON documents, database) and one or more scenarios, each a
// list of assertion steps.
//
// The parser handles:
//   - strict decoding (unknown fields are rejected)
//   - actual-value sources: literal, element, page, json, sql, var
//   - validation with file, scenario, step and line in every error
package parser
