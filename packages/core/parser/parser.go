package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions are the scenario file extensions.
var Extensions = []string{".soft.yaml", ".soft.yml", ".softspec"}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(content, path)
}

// Parse decodes and validates a scenario file. Decoding problems return
// a *ParseError; validation problems return a *ValidationError.
func Parse(input []byte, filename string) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(input))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{File: filename, Message: "file is empty"}
		}
		return nil, &ParseError{File: filename, Line: yamlErrorLine(err), Message: err.Error()}
	}
	file.Path = filename

	var root yaml.Node
	if err := yaml.Unmarshal(input, &root); err == nil {
		annotateLines(&root, &file)
	}

	if errs := Validate(&file); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return &file, nil
}

// UnmarshalYAML decodes an actual value. A scalar or sequence is a
// literal; a mapping must have exactly one source key.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	s.Line = node.Line
	if node.Kind != yaml.MappingNode {
		s.Kind = SourceLiteral
		return node.Decode(&s.Value)
	}

	if len(node.Content) != 2 {
		s.err = fmt.Sprintf("actual must name exactly one source (%s)", sourceKeyList())
		return nil
	}
	key, value := node.Content[0].Value, node.Content[1]
	kind, ok := sourceKeys[key]
	if !ok {
		s.err = fmt.Sprintf("unknown actual source %q (want one of %s)", key, sourceKeyList())
		return nil
	}
	s.Kind = kind

	switch kind {
	case SourceLiteral:
		return value.Decode(&s.Value)
	case SourcePage:
		var enabled bool
		if err := value.Decode(&enabled); err != nil || !enabled {
			s.err = "page source must be {page: true}"
		}
		return nil
	default:
		if value.Kind != yaml.ScalarNode || strings.TrimSpace(value.Value) == "" {
			s.err = fmt.Sprintf("%s source needs a non-empty string", key)
			return nil
		}
		s.Ref = value.Value
		return nil
	}
}

// MarshalYAML writes a Source back in its file form.
func (s Source) MarshalYAML() (any, error) {
	switch s.Kind {
	case SourceLiteral:
		if _, isMap := s.Value.(map[string]any); isMap {
			return map[string]any{"value": s.Value}, nil
		}
		return s.Value, nil
	case SourcePage:
		return map[string]any{"page": true}, nil
	default:
		return map[string]any{s.Kind.String(): s.Ref}, nil
	}
}

func sourceKeyList() string {
	keys := make([]string, 0, len(sourceKeys))
	for k := range sourceKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// annotateLines copies scenario and step line numbers from the node tree.
func annotateLines(root *yaml.Node, f *File) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	scenarios := mappingValue(root.Content[0], "scenarios")
	if scenarios == nil || scenarios.Kind != yaml.SequenceNode {
		return
	}
	for i, sn := range scenarios.Content {
		if i >= len(f.Scenarios) || f.Scenarios[i] == nil {
			break
		}
		sc := f.Scenarios[i]
		sc.Line = sn.Line
		steps := mappingValue(sn, "steps")
		if steps == nil || steps.Kind != yaml.SequenceNode {
			continue
		}
		for j, stn := range steps.Content {
			if j < len(sc.Steps) && sc.Steps[j] != nil {
				sc.Steps[j].Line = stn.Line
			}
		}
	}
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// yamlErrorLine extracts the line from yaml.v3 messages such as
// "yaml: line 4: ...".
func yamlErrorLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		_, _ = fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}
