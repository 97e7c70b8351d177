package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/softspec/packages/snapshot"
)

func TestValueChecks(t *testing.T) {
	b := New()
	ctx := context.Background()

	tests := []struct {
		name     string
		check    string
		actual   any
		expected any
		wantErr  bool
	}{
		{"equal match", "Equal", "foo", "foo", false},
		{"equal mismatch", "Equal", "foo", "bar", true},
		{"equal values across int types", "EqualValues", int64(3), 3, false},
		{"not equal", "NotEqual", 1, 2, false},
		{"contains substring", "Contains", "hello world", "world", false},
		{"contains slice element", "Contains", []any{"a", "b"}, "b", false},
		{"not contains", "NotContains", "hello", "z", false},
		{"true", "True", true, nil, false},
		{"true on non-bool", "True", "yes", nil, true},
		{"false", "False", false, nil, false},
		{"truthy string", "Truthy", "x", nil, false},
		{"truthy zero", "Truthy", 0, nil, true},
		{"falsy empty", "Falsy", "", nil, false},
		{"nil", "Nil", nil, nil, false},
		{"not nil", "NotNil", 1, nil, false},
		{"empty", "Empty", []any{}, nil, false},
		{"not empty", "NotEmpty", "x", nil, false},
		{"len", "Len", []any{1, 2, 3}, 3, false},
		{"len from float", "Len", "abcd", 4.0, false},
		{"len mismatch", "Len", "abc", 1, true},
		{"regexp", "Regexp", "order-42", `^order-\d+$`, false},
		{"regexp slash delimited", "Regexp", "abc", "/^a/", false},
		{"regexp invalid", "Regexp", "abc", "(", true},
		{"not regexp", "NotRegexp", "abc", "^z", false},
		{"greater mixed numbers", "Greater", 10, 9.5, false},
		{"greater fails", "Greater", 1, 2, true},
		{"less or equal", "LessOrEqual", 2, 2, false},
		{"positive", "Positive", 3, nil, false},
		{"negative on string", "Negative", "x", nil, true},
		{"elements match", "ElementsMatch", []any{1, 2}, []any{2, 1}, false},
		{"subset", "Subset", []any{1, 2, 3}, []any{1, 3}, false},
		{"json eq from map", "JSONEq", map[string]any{"a": 1}, `{"a": 1}`, false},
		{"yaml eq", "YAMLEq", "a: 1\nb: 2\n", map[string]any{"b": 2, "a": 1}, false},
		{"type of number", "TypeOf", 3, "number", false},
		{"type of array", "TypeOf", []any{}, "array", false},
		{"type of mismatch", "TypeOf", "s", "number", true},
		{"snapshot not configured", "MatchesSnapshot", 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := b.Value(tt.check)
			require.True(t, ok, "check %s should exist", tt.check)

			err := c.Call(ctx, tt.actual, tt.expected)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAssertionFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValue_Unknown(t *testing.T) {
	_, ok := New().Value("equals")
	assert.False(t, ok, "legacy names are not on the value surface")
}

func TestValueNames_Sorted(t *testing.T) {
	names := New().ValueNames()
	assert.Contains(t, names, "Equal")
	assert.Contains(t, names, "MatchesSchema")
	assert.IsIncreasing(t, names)
}

func TestValueCheck_Arity(t *testing.T) {
	b := New()
	c, _ := b.Value("Nil")
	assert.Equal(t, 1, c.Arity)
	c, _ = b.Value("Equal")
	assert.Equal(t, 2, c.Arity)
}

func TestBackendError_CleanMessage(t *testing.T) {
	c, _ := New().Value("Equal")
	err := c.Call(context.Background(), "foo", "bar")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "Equal", be.Check)
	assert.Contains(t, be.Reason, "Not equal")
	assert.NotContains(t, be.Reason, "Error Trace")
}

func TestMatchesSchema(t *testing.T) {
	dir := t.TempDir()
	schema := `{"type":"object","required":["id"],"properties":{"id":{"type":"number"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(schema), 0644))

	b := New(WithBaseDir(dir))
	c, _ := b.Value("MatchesSchema")
	ctx := context.Background()

	assert.NoError(t, c.Call(ctx, map[string]any{"id": 1}, "user.json"))
	assert.NoError(t, c.Call(ctx, map[string]any{"id": 1}, schema))
	assert.NoError(t, c.Call(ctx, map[string]any{"id": 1}, map[string]any{"type": "object"}))

	err := c.Call(ctx, map[string]any{"name": "x"}, "user.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	err = c.Call(ctx, map[string]any{"id": 1}, "../outside.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestMatchesSnapshot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cart.soft.yaml")
	ctx := context.Background()

	create := New(WithSnapshots(snapshot.NewManager(true), file, "cart"))
	c, _ := create.Value("MatchesSnapshot")
	require.NoError(t, c.Call(ctx, map[string]any{"total": 3}, "totals"))

	verify := New(WithSnapshots(snapshot.NewManager(false), file, "cart"))
	c, _ = verify.Value("MatchesSnapshot")
	assert.NoError(t, c.Call(ctx, map[string]any{"total": 3}, "totals"))
	assert.Error(t, c.Call(ctx, map[string]any{"total": 4}, "totals"))
}

func TestRun_RecoversPanics(t *testing.T) {
	err := run("Boom", func(t assert.TestingT) bool {
		panic("kaboom")
	})
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Contains(t, be.Reason, "kaboom")
}

func TestCleanMessage(t *testing.T) {
	raw := "\n\tError Trace:\tfile.go:10\n\tError:      \tNot equal: \n\t            \texpected: 1\n\t            \tactual  : 2\n\tTest:       \tTestX\n"
	assert.Equal(t, "Not equal:\nexpected: 1\nactual  : 2", cleanMessage(raw))
	assert.Equal(t, "plain", cleanMessage("  plain "))
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "boolean"},
		{1, "number"},
		{uint8(1), "number"},
		{1.5, "number"},
		{"s", "string"},
		{[]any{}, "array"},
		{[]string{}, "array"},
		{map[string]any{}, "object"},
		{struct{}{}, "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, typeName(tt.in), "%#v", tt.in)
	}
}
