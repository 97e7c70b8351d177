package logging

import (
	"fmt"
	"sort"
	"strings"
)

// String creates a Field with a string value.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates a Field with an integer value.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a Field with a boolean value.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Any creates a Field from an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err creates a Field for an error value. If err is nil,
// the value is set to the string "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// formatFields renders default fields followed by call fields as
// "{k=v, k=v}". Default fields are sorted by key so output is stable.
func formatFields(defaults map[string]any, fields []Field) string {
	if len(defaults) == 0 && len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(fields))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, defaults[k]))
	}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func mergeFields(base map[string]any, fields []Field) map[string]any {
	merged := make(map[string]any, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return merged
}
