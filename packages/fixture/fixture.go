package fixture

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/abdul-hamid-achik/softspec/packages/capture"
)

// Spec is the fixture section of a scenario file.
type Spec struct {
	Page          PageSpec               `yaml:"page,omitempty"`
	Elements      map[string]ElementSpec `yaml:"elements,omitempty"`
	Documents     map[string]any         `yaml:"documents,omitempty"`
	DocumentFiles map[string]string      `yaml:"documentFiles,omitempty"`
	Database      string                 `yaml:"database,omitempty"`
	// Seed statements run against Database before any scenario.
	Seed []string `yaml:"seed,omitempty"`
}

type PageSpec struct {
	Title string `yaml:"title,omitempty"`
	URL   string `yaml:"url,omitempty"`
}

// ElementSpec describes one element. Unset states default to existing,
// enabled and displayed; clickable defaults to enabled and displayed.
type ElementSpec struct {
	Text       string            `yaml:"text,omitempty"`
	HTML       string            `yaml:"html,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	States     map[string]bool   `yaml:"states,omitempty"`
}

// Fixture is the built model of a Spec.
type Fixture struct {
	Page      *Page
	Documents *capture.Extractor
}

// New builds a Fixture. Document file paths are resolved against
// baseDir.
func New(spec Spec, baseDir string) (*Fixture, error) {
	page := NewPage(spec.Page.Title, spec.Page.URL)
	for selector, es := range spec.Elements {
		el, err := newElement(selector, es)
		if err != nil {
			return nil, err
		}
		page.Add(el)
	}

	docs := capture.NewExtractor()
	for _, name := range sortedKeys(spec.Documents) {
		if err := docs.Add(name, spec.Documents[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(spec.DocumentFiles) {
		path := spec.DocumentFiles[name]
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if err := docs.AddFile(name, path); err != nil {
			return nil, err
		}
	}

	return &Fixture{Page: page, Documents: docs}, nil
}

// Empty returns a fixture with a blank page and no documents.
func Empty() *Fixture {
	return &Fixture{Page: NewPage("", ""), Documents: capture.NewExtractor()}
}

var knownStates = map[string]bool{
	"existing": true, "enabled": true, "displayed": true, "selected": true,
	"checked": true, "focused": true, "clickable": true,
}

func newElement(selector string, es ElementSpec) (*Element, error) {
	for state := range es.States {
		if !knownStates[state] {
			return nil, fmt.Errorf("element %q: unknown state %q", selector, state)
		}
	}
	return &Element{
		Selector:   selector,
		text:       es.Text,
		html:       es.HTML,
		attributes: es.Attributes,
		states:     es.States,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
