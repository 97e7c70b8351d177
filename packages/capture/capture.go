package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

type Extractor struct {
	mu   sync.RWMutex
	docs map[string]gjson.Result
}

func NewExtractor() *Extractor {
	return &Extractor{docs: make(map[string]gjson.Result)}
}

// Add registers a document from a decoded value (maps, slices, scalars).
func (e *Extractor) Add(name string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}
	return e.AddJSON(name, data)
}

// AddJSON registers a document from raw JSON.
func (e *Extractor) AddJSON(name string, data []byte) error {
	if name == "" || strings.Contains(name, ".") {
		return fmt.Errorf("invalid document name %q", name)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("document %q is not valid JSON", name)
	}
	e.mu.Lock()
	e.docs[name] = gjson.ParseBytes(data)
	e.mu.Unlock()
	return nil
}

// AddFile registers a document read from a JSON file.
func (e *Extractor) AddFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}
	return e.AddJSON(name, data)
}

// Extract returns the value at path. A path naming only a document
// returns the whole document.
func (e *Extractor) Extract(path string) (any, bool) {
	name, rest, _ := strings.Cut(NormalizePath(path), ".")

	e.mu.RLock()
	doc, ok := e.docs[name]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if rest == "" {
		return doc.Value(), true
	}

	result := doc.Get(rest)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// Names lists the registered documents, sorted.
func (e *Extractor) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.docs))
	for n := range e.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// NormalizePath converts bracket indexes to gjson's dotted form:
// items[0].sku becomes items.0.sku.
func NormalizePath(path string) string {
	path = bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, ".")
}

// ExtractAll extracts every path in captures (variable name -> path) and
// returns the values that were found.
func ExtractAll(e *Extractor, captures map[string]string) map[string]any {
	results := make(map[string]any)
	for name, path := range captures {
		if value, ok := e.Extract(path); ok {
			results[name] = value
		}
	}
	return results
}
