package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validatePathWithinBase checks that the resolved path stays within the base directory
// to prevent path traversal attacks
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}

// schemaLoader builds a loader from an inline schema (map or JSON text)
// or from a schema file path relative to the backend's base directory.
func (b *Backend) schemaLoader(schema any) (gojsonschema.JSONLoader, error) {
	switch s := schema.(type) {
	case map[string]any:
		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal inline schema: %v", err)
		}
		return gojsonschema.NewBytesLoader(data), nil
	case string:
		if strings.HasPrefix(strings.TrimSpace(s), "{") {
			return gojsonschema.NewStringLoader(s), nil
		}
		path := s
		if !filepath.IsAbs(path) && b.baseDir != "" {
			path = filepath.Join(b.baseDir, path)
		}
		if err := validatePathWithinBase(path, b.baseDir); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %v", err)
		}
		return gojsonschema.NewBytesLoader(data), nil
	default:
		return nil, fmt.Errorf("schema must be a path, JSON text or object, got %T", schema)
	}
}

// validateSchema returns "" when actual satisfies schema, otherwise the
// joined validation errors.
func (b *Backend) validateSchema(actual, schema any) string {
	loader, err := b.schemaLoader(schema)
	if err != nil {
		return err.Error()
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		return fmt.Sprintf("failed to marshal actual value: %v", err)
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(actualJSON))
	if err != nil {
		return fmt.Sprintf("schema validation error: %v", err)
	}
	if result.Valid() {
		return ""
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(errs, "; "))
}
