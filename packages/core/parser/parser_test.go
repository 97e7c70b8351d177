package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const checkoutFile = `name: checkout page
variables:
  user: alice
fixture:
  page: {title: "Checkout", url: "https://shop.test/checkout"}
  elements:
    "#submit":
      text: "Pay now"
      states: {enabled: true}
  documents:
    cart: {items: [{sku: A1, qty: 2}], total: 19.5}
  database: "sqlite::memory:"
scenarios:
  - name: pay button
    tags: [smoke]
    steps:
      - assert: tohavetext
        actual: {element: "#submit"}
        expected: "Pay now"
      - assert: Equal
        actual: {json: "cart.total"}
        expected: 19.5
        message: cart total
        capture: total
  - name: literals
    only: true
    steps:
      - assert: isTrue
        actual: true
      - assert: Contains
        actual: {value: {a: 1}}
        expected: a
      - assert: toHaveTitle
        actual: {page: true}
        expected: Checkout
      - assert: Equal
        actual: {sql: "SELECT 1"}
        expected: 1
      - assert: equals
        actual: {var: user}
        expected: alice
`

func TestParse_Checkout(t *testing.T) {
	file, err := Parse([]byte(checkoutFile), "checkout.soft.yaml")
	require.NoError(t, err)

	assert.Equal(t, "checkout page", file.Name)
	assert.Equal(t, "checkout.soft.yaml", file.Path)
	assert.Equal(t, "alice", file.Variables["user"])
	assert.Equal(t, "Checkout", file.Fixture.Page.Title)
	assert.Equal(t, "Pay now", file.Fixture.Elements["#submit"].Text)
	require.Len(t, file.Scenarios, 2)

	pay := file.Scenarios[0]
	assert.Equal(t, []string{"smoke"}, pay.Tags)
	assert.Equal(t, 14, pay.Line)
	require.Len(t, pay.Steps, 2)

	first := pay.Steps[0]
	assert.Equal(t, "tohavetext", first.Assert)
	assert.Equal(t, SourceElement, first.Actual.Kind)
	assert.Equal(t, "#submit", first.Actual.Ref)
	assert.Equal(t, "Pay now", first.Expected)
	assert.Equal(t, 17, first.Line)

	second := pay.Steps[1]
	assert.Equal(t, SourceJSON, second.Actual.Kind)
	assert.Equal(t, "cart.total", second.Actual.Ref)
	assert.Equal(t, 19.5, second.Expected)
	assert.Equal(t, "cart total", second.Message)
	assert.Equal(t, "total", second.Capture)

	lit := file.Scenarios[1]
	assert.True(t, lit.Only)
	assert.Equal(t, SourceLiteral, lit.Steps[0].Actual.Kind)
	assert.Equal(t, true, lit.Steps[0].Actual.Value)
	assert.Nil(t, lit.Steps[0].Expected)
	assert.Equal(t, map[string]any{"a": 1}, lit.Steps[1].Actual.Value)
	assert.Equal(t, SourcePage, lit.Steps[2].Actual.Kind)
	assert.Equal(t, SourceSQL, lit.Steps[3].Actual.Kind)
	assert.Equal(t, SourceVar, lit.Steps[4].Actual.Kind)
	assert.Equal(t, "user", lit.Steps[4].Actual.Ref)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty file", "", "file is empty"},
		{"no scenarios", "name: x\n", "at least one scenario"},
		{"unknown field", "name: x\nscenarioz: []\n", "scenarioz"},
		{
			"missing assert",
			"scenarios:\n  - name: s\n    steps:\n      - actual: 1\n",
			`scenario "s": step 1: step needs an assert operation`,
		},
		{
			"two sources",
			"scenarios:\n  - name: s\n    steps:\n      - assert: Equal\n        actual: {json: a.b, var: c}\n",
			"exactly one source",
		},
		{
			"unknown source",
			"scenarios:\n  - name: s\n    steps:\n      - assert: Equal\n        actual: {cookie: a}\n",
			`unknown actual source "cookie"`,
		},
		{
			"bad page source",
			"scenarios:\n  - name: s\n    steps:\n      - assert: toHaveTitle\n        actual: {page: false}\n",
			"{page: true}",
		},
		{
			"duplicate scenario",
			"scenarios:\n  - name: s\n    steps: [{assert: isTrue}]\n  - name: s\n    steps: [{assert: isTrue}]\n",
			"duplicate scenario name",
		},
		{
			"no steps",
			"scenarios:\n  - name: s\n",
			"no steps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "bad.soft.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Contains(t, err.Error(), "bad.soft.yaml")
		})
	}
}

func TestParse_ValidationErrorCollectsAll(t *testing.T) {
	input := "scenarios:\n  - name: s\n    steps:\n      - actual: 1\n      - actual: 2\n"
	_, err := Parse([]byte(input), "f.softspec")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, 1, verr.Errors[0].Step)
	assert.Equal(t, 2, verr.Errors[1].Step)
	assert.Equal(t, 4, verr.Errors[0].Line)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestParse_SQLSourceWithoutFixtureDatabase(t *testing.T) {
	f, err := Parse([]byte("scenarios:\n  - name: s\n    steps:\n      - assert: Equal\n        actual: {sql: SELECT 1}\n"), "f.softspec")
	require.NoError(t, err)
	assert.Empty(t, f.Fixture.Database)
	assert.Equal(t, SourceSQL, f.Scenarios[0].Steps[0].Actual.Kind)
}

func TestParse_SkippedScenarioMayBeEmpty(t *testing.T) {
	_, err := Parse([]byte("scenarios:\n  - name: later\n    skip: not ready\n"), "f.softspec")
	assert.NoError(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout.soft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(checkoutFile), 0644))

	file, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, file.Path)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.soft.yaml"))
	assert.Error(t, err)
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a/checkout.soft.yaml"))
	assert.True(t, IsScenarioFile("checkout.soft.yml"))
	assert.True(t, IsScenarioFile("login.softspec"))
	assert.False(t, IsScenarioFile("config.yaml"))
	assert.False(t, IsScenarioFile("notes.md"))
}

func TestSource_MarshalYAML(t *testing.T) {
	steps := []Step{
		{Assert: "Equal", Actual: Source{Kind: SourceJSON, Ref: "cart.total"}},
		{Assert: "Equal", Actual: Source{Kind: SourceLiteral, Value: map[string]any{"a": 1}}},
		{Assert: "toHaveTitle", Actual: Source{Kind: SourcePage}},
	}
	data, err := yaml.Marshal(steps)
	require.NoError(t, err)

	var decoded []Step
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, SourceJSON, decoded[0].Actual.Kind)
	assert.Equal(t, "cart.total", decoded[0].Actual.Ref)
	assert.Equal(t, map[string]any{"a": 1}, decoded[1].Actual.Value)
	assert.Equal(t, SourcePage, decoded[2].Actual.Kind)
}

func TestParseError_Format(t *testing.T) {
	err := &ParseError{File: "f.softspec", Line: 3, Scenario: "s", Step: 2, Message: "bad"}
	assert.Equal(t, `f.softspec:3: scenario "s": step 2: bad`, err.Error())

	err = &ParseError{File: "f.softspec", Message: "bad"}
	assert.Equal(t, "f.softspec: bad", err.Error())
}
