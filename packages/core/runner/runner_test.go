package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/softspec/packages/assertions"
	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/abdul-hamid-achik/softspec/packages/db"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.soft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const checkoutFixture = `name: checkout
variables:
  user: alice
fixture:
  page: {title: "Checkout", url: "https://shop.test/checkout"}
  elements:
    "#submit": {text: "Pay now", states: {enabled: true}}
    "#coupon": {text: "", states: {enabled: false}}
  documents:
    cart: {items: [{sku: A1, qty: 2}], total: 19.5}
`

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.registry)
		assert.NotNil(t, r.logger)
	})

	t.Run("with custom config", func(t *testing.T) {
		r := NewRunner(&Config{Environment: "test", Parallel: true, Concurrency: 10})
		assert.Equal(t, "test", r.config.Environment)
		assert.True(t, r.config.Parallel)
	})
}

func TestRunner_RunFile_AllSourcesPass(t *testing.T) {
	path := writeScenarioFile(t, checkoutFixture+`scenarios:
  - name: pay button
    steps:
      - assert: tohavetext
        actual: {element: "#submit"}
        expected: "Pay now"
      - assert: toBeEnabled
        actual: {element: "#submit"}
      - assert: isdisabled
        actual: {element: "#coupon"}
      - assert: doesnotexist
        actual: {element: "#ghost"}
      - assert: Equal
        actual: {json: "cart.total"}
        expected: 19.5
      - assert: equals
        actual: {json: "cart.items[0].qty"}
        expected: 2
      - assert: toHaveTitle
        actual: {page: true}
        expected: Checkout
      - assert: Equal
        actual: {var: user}
        expected: "{{user}}"
      - assert: lengthOf
        actual: [1, 2, 3]
        expected: 3
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Results, 1)

	sc := result.Results[0]
	assert.True(t, sc.Passed, "unexpected error: %v", sc.Error)
	assert.NotEmpty(t, sc.ID)
	require.Len(t, sc.Steps, 9)
	for _, step := range sc.Steps {
		assert.True(t, step.Passed, "step %d (%s) failed: %s", step.Index, step.Assert, step.Message)
	}
	assert.Equal(t, assertions.AdapterLegacy, sc.Steps[0].Adapter)
	assert.Equal(t, assertions.AdapterFluent, sc.Steps[1].Adapter)
	assert.Equal(t, assertions.AdapterValue, sc.Steps[4].Adapter)

	require.NotEmpty(t, sc.Attachments)
	last := sc.Attachments[len(sc.Attachments)-1]
	assert.Contains(t, last.Data, "No assertion errors collected.")
}

func TestRunner_RunFile_SoftFailures(t *testing.T) {
	path := writeScenarioFile(t, checkoutFixture+`scenarios:
  - name: several failures
    steps:
      - assert: Equal
        actual: 1
        expected: 2
        message: first
      - assert: tohavetext
        actual: {element: "#submit"}
        expected: "Pay now"
      - assert: toBeShiny
        actual: <b>x</b>
      - assert: isTrue
        actual: false
        message: last
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	sc := result.Results[0]
	assert.False(t, sc.Passed)
	require.Len(t, sc.Steps, 4, "every step runs after a failure")
	assert.False(t, sc.Steps[0].Passed)
	assert.True(t, sc.Steps[1].Passed)
	assert.False(t, sc.Steps[2].Passed)
	assert.Equal(t, assertions.AdapterUnsupported, sc.Steps[2].Adapter)
	assert.False(t, sc.Steps[3].Passed)

	var agg *assertions.AggregateError
	require.True(t, errors.As(sc.Error, &agg))
	require.Len(t, agg.Failures, 3)
	assert.Equal(t, "first (Assertion failed: expected 1 to Equal 2)", agg.Failures[0].Message)
	assert.Equal(t, "Assertion failed: expected bx/b to toBeShiny", agg.Failures[1].Message)
	assert.True(t, strings.HasPrefix(agg.Failures[2].Message, "last ("))
	assert.True(t, errors.Is(sc.Error, assertions.ErrUnsupportedOperation))

	msg := sc.Error.Error()
	assert.True(t, strings.HasPrefix(msg, assertions.Banner))
	assert.Less(t, strings.Index(msg, "first"), strings.Index(msg, "toBeShiny"))
	assert.Less(t, strings.Index(msg, "toBeShiny"), strings.Index(msg, "last ("))
}

func TestRunner_RunFile_DiagnosticsCaptured(t *testing.T) {
	path := writeScenarioFile(t, `scenarios:
  - name: missing variable
    steps:
      - assert: Equal
        actual: "{{missing}}"
        expected: x
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)

	sc := result.Results[0]
	require.Error(t, sc.Error)
	assert.Contains(t, sc.Error.Error(), "unresolved variable")
	assert.NotContains(t, sc.Error.Error(), "\x1b[")
}

func TestRunner_RunFile_Capture(t *testing.T) {
	path := writeScenarioFile(t, checkoutFixture+`scenarios:
  - name: capture text
    steps:
      - assert: toBeExisting
        actual: {element: "#submit"}
        capture: label
      - assert: Equal
        actual: "{{label}}"
        expected: "Pay now"
      - assert: Equal
        actual: {var: label}
        expected: "Pay now"
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Results[0].Passed, "unexpected error: %v", result.Results[0].Error)
}

func TestRunner_RunFile_SQLSource(t *testing.T) {
	path := writeScenarioFile(t, `fixture:
  database: "sqlite::memory:"
  seed:
    - CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL)
    - INSERT INTO orders (total) VALUES (42)
scenarios:
  - name: order total
    steps:
      - assert: equals
        actual: {sql: "SELECT COUNT(*) FROM orders"}
        expected: 1
      - assert: Nil
        actual: {sql: "SELECT total FROM orders WHERE id = 99"}
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Results[0].Passed, "unexpected error: %v", result.Results[0].Error)
}

func TestRunner_RunFile_ConfigDatabase(t *testing.T) {
	ctx := context.Background()
	conn := "sqlite://" + filepath.Join(t.TempDir(), "orders.db")
	client, err := db.NewClient(ctx, conn)
	require.NoError(t, err)
	require.NoError(t, client.Exec(ctx, `CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL);
		INSERT INTO orders (total) VALUES (42), (7);`))
	require.NoError(t, client.Close())

	path := writeScenarioFile(t, `scenarios:
  - name: count
    steps:
      - assert: equals
        actual: {sql: "SELECT COUNT(*) FROM orders"}
        expected: 2
`)

	t.Run("database from config", func(t *testing.T) {
		result, err := NewRunner(&Config{Database: conn}).RunFile(ctx, path)
		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		sc := result.Results[0]
		assert.True(t, sc.Passed, "unexpected error: %v", sc.Error)
		require.Len(t, sc.Steps, 1)
		assert.True(t, sc.Steps[0].Passed)
	})

	t.Run("no database anywhere", func(t *testing.T) {
		result, err := NewRunner(nil).RunFile(ctx, path)
		require.NoError(t, err)
		sc := result.Results[0]
		assert.False(t, sc.Passed)
		assert.True(t, errors.Is(sc.Error, ErrNoDatabase))
	})
}

func TestRunner_Run_SourceErrorIsCaptured(t *testing.T) {
	file := &parser.File{
		Path: filepath.Join(t.TempDir(), "inline.soft.yaml"),
		Scenarios: []*parser.Scenario{{
			Name: "no database",
			Steps: []*parser.Step{
				{Assert: "equals", Actual: parser.Source{Kind: parser.SourceSQL, Ref: "SELECT 1"}, Expected: 1},
				{Assert: "equals", Actual: parser.Source{Kind: parser.SourceVar, Ref: "nope"}, Expected: 1},
				{Assert: "isTrue", Actual: parser.Source{Value: true}},
			},
		}},
	}

	result, err := NewRunner(nil).Run(context.Background(), file)
	require.NoError(t, err)

	sc := result.Results[0]
	assert.False(t, sc.Passed)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, assertions.AdapterPredicate, sc.Steps[0].Adapter)
	assert.True(t, sc.Steps[2].Passed)
	assert.True(t, errors.Is(sc.Error, ErrNoDatabase))
	assert.True(t, errors.Is(sc.Error, ErrUnknownVariable))
	assert.Contains(t, sc.Steps[0].Message, "to equals 1")
}

func TestRunner_RunFile_SkipAndOnly(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		path := writeScenarioFile(t, `scenarios:
  - name: later
    skip: not ready
  - name: now
    steps: [{assert: isTrue, actual: true}]
`)
		result, err := NewRunner(nil).RunFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.Passed)
		assert.Equal(t, "not ready", result.Results[0].SkipReason)
	})

	t.Run("only", func(t *testing.T) {
		path := writeScenarioFile(t, `scenarios:
  - name: a
    steps: [{assert: isTrue, actual: false}]
  - name: b
    only: true
    steps: [{assert: isTrue, actual: true}]
`)
		result, err := NewRunner(nil).RunFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.Passed)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, "filtered out", result.Results[0].SkipReason)
	})
}

func TestRunner_RunFile_Filters(t *testing.T) {
	path := writeScenarioFile(t, `scenarios:
  - name: login works
    tags: [auth]
    steps: [{assert: isTrue, actual: true}]
  - name: logout works
    tags: [auth, smoke]
    steps: [{assert: isTrue, actual: true}]
  - name: cart
    tags: [smoke]
    steps: [{assert: isTrue, actual: true}]
`)

	tests := []struct {
		name    string
		cfg     *Config
		passed  int
		skipped int
	}{
		{"name prefix", &Config{NameFilter: "log*"}, 2, 1},
		{"name suffix", &Config{NameFilter: "*works"}, 2, 1},
		{"exact name", &Config{NameFilter: "cart"}, 1, 2},
		{"tags", &Config{TagsFilter: []string{"smoke"}}, 2, 1},
		{"name and tags", &Config{NameFilter: "log*", TagsFilter: []string{"smoke"}}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewRunner(tt.cfg).RunFile(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.skipped, result.Skipped)
		})
	}
}

func TestRunner_RunFile_Bail(t *testing.T) {
	path := writeScenarioFile(t, `scenarios:
  - name: broken
    steps: [{assert: isTrue, actual: false}]
  - name: fine
    steps: [{assert: isTrue, actual: true}]
`)

	result, err := NewRunner(&Config{Bail: true}).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Passed)
	assert.Len(t, result.Results, 1)
}

func TestRunner_RunFile_ParallelIsolation(t *testing.T) {
	var b strings.Builder
	b.WriteString("scenarios:\n")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "  - name: s%d\n    steps:\n", i)
		fmt.Fprintf(&b, "      - {assert: isTrue, actual: %t, message: fail-s%d}\n", i%2 == 0, i)
		fmt.Fprintf(&b, "      - {assert: Equal, actual: %d, expected: %d}\n", i, i)
	}
	path := writeScenarioFile(t, b.String())

	r := NewRunner(&Config{Parallel: true, Concurrency: 3})
	result, err := r.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Passed)
	assert.Equal(t, 4, result.Failed)
	require.Len(t, result.Results, 8)

	for i, sc := range result.Results {
		assert.Equal(t, fmt.Sprintf("s%d", i), sc.Name)
		if i%2 == 0 {
			assert.True(t, sc.Passed)
			continue
		}
		require.Error(t, sc.Error)
		var agg *assertions.AggregateError
		require.True(t, errors.As(sc.Error, &agg))
		require.Len(t, agg.Failures, 1)
		assert.Contains(t, agg.Failures[0].Message, fmt.Sprintf("fail-s%d", i))
	}
	assert.Equal(t, 0, r.registry.Len())
}

func TestRunner_RunFile_Hooks(t *testing.T) {
	t.Run("after runs when before fails", func(t *testing.T) {
		path := writeScenarioFile(t, `scenarios:
  - name: hooks
    before: ["exit 3"]
    after: ["touch after.txt"]
    steps: [{assert: isTrue, actual: true}]
`)
		result, err := NewRunner(nil).RunFile(context.Background(), path)
		require.NoError(t, err)

		sc := result.Results[0]
		assert.False(t, sc.Passed)
		assert.Empty(t, sc.Steps)
		assert.ErrorContains(t, sc.Error, "before hook failed")
		assert.FileExists(t, filepath.Join(filepath.Dir(path), "after.txt"))
	})

	t.Run("ignored failure", func(t *testing.T) {
		path := writeScenarioFile(t, `variables:
  marker: ready.txt
scenarios:
  - name: hooks
    before: ["-exit 1", "touch {{marker}}"]
    steps: [{assert: isTrue, actual: true}]
`)
		result, err := NewRunner(nil).RunFile(context.Background(), path)
		require.NoError(t, err)
		assert.True(t, result.Results[0].Passed, "unexpected error: %v", result.Results[0].Error)
		assert.FileExists(t, filepath.Join(filepath.Dir(path), "ready.txt"))
	})
}

func TestRunner_RunFile_Variables(t *testing.T) {
	path := writeScenarioFile(t, `variables:
  greeting: hello
scenarios:
  - name: layered
    variables:
      target: "{{greeting}} {{name}}"
    steps:
      - {assert: Equal, actual: "{{target}}", expected: "hello world"}
`)

	r := NewRunner(&Config{Variables: map[string]any{"name": "world"}})
	result, err := r.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Results[0].Passed, "unexpected error: %v", result.Results[0].Error)
}

func TestRunner_RunFile_Environment(t *testing.T) {
	path := writeScenarioFile(t, `scenarios:
  - name: env
    steps:
      - {assert: Equal, actual: "{{host}}", expected: "staging.test"}
`)

	r := NewRunner(&Config{
		Environment:  "staging",
		Environments: map[string]map[string]any{"staging": {"host": "staging.test"}},
	})
	result, err := r.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Results[0].Passed, "unexpected error: %v", result.Results[0].Error)
}

func TestRunner_RunFile_ParseError(t *testing.T) {
	_, err := NewRunner(nil).RunFile(context.Background(), writeScenarioFile(t, "name: empty\n"))
	require.Error(t, err)
	var verr *parser.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = NewRunner(nil).RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.soft.yaml"))
	assert.Error(t, err)
}

func TestRunner_RunFile_CanceledContext(t *testing.T) {
	path := writeScenarioFile(t, `scenarios:
  - name: canceled
    steps: [{assert: isTrue, actual: true}]
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewRunner(nil).RunFile(ctx, path)
	require.NoError(t, err)
	assert.ErrorIs(t, result.Results[0].Error, context.Canceled)
	assert.Empty(t, result.Results[0].Steps)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"login", "", true},
		{"login", "*", true},
		{"login", "login", true},
		{"login", "log", false},
		{"login flow", "login*", true},
		{"user login", "*login", true},
		{"the login flow", "*login*", true},
		{"logout", "*login*", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.name, tt.pattern))
		})
	}
}
