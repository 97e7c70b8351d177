package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingFile = `name: passing
fixture:
  page: {title: Shop}
  elements:
    "#pay": {text: Pay now}
scenarios:
  - name: page
    tags: [smoke]
    steps:
      - assert: toHaveTitle
        actual: {page: true}
        expected: Shop
      - assert: tohavetext
        actual: {element: "#pay"}
        expected: Pay now
`

const failingFile = `name: failing
scenarios:
  - name: numbers
    steps:
      - assert: Equal
        actual: 1
        expected: 2
      - assert: isTrue
        actual: false
      - assert: isTrue
        actual: true
  - name: ok
    steps:
      - assert: isTrue
        actual: true
`

const brokenFile = `name: broken
scenarios:
  - name: no assert
    steps:
      - actual: 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores every flag of c to its default.
func resetFlags(t *testing.T, c interface{ Flags() *pflag.FlagSet }) {
	t.Helper()
	c.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t, runCmd)
	resetFlags(t, initCmd)
	resetFlags(t, diffCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExitCode(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error is usage", base, ExitUsageError},
		{"tagged", withExitCode(ExitParseError, base), ExitParseError},
		{"wrapped tag", fmt.Errorf("outer: %w", withExitCode(ExitConfigError, base)), ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}

	assert.Nil(t, withExitCode(ExitTestFailure, nil))
	assert.ErrorIs(t, withExitCode(ExitTestFailure, base), base)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.soft.yaml", passingFile)
	b := writeFile(t, dir, "nested/b.softspec", passingFile)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden/c.soft.yaml", passingFile)

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	files, err = collectFiles([]string{filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"smoke", "fast"}, splitList(" smoke, ,fast "))
	assert.Nil(t, splitList(""))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.soft.yaml", passingFile)

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Valid: "+good)

	bad := writeFile(t, dir, "bad.soft.yaml", brokenFile)
	_, stderr, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, stderr, "Error in "+bad)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestValidateCommand_NoFiles(t *testing.T) {
	_, _, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.soft.yaml", passingFile)

	stdout, _, err := execute(t, "list", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+":")
	assert.Contains(t, stdout, "- page (2 steps)")
	assert.Contains(t, stdout, "tags: smoke")
}

func TestOpsCommand(t *testing.T) {
	stdout, _, err := execute(t, "ops")
	require.NoError(t, err)
	assert.Contains(t, stdout, "value (")
	assert.Contains(t, stdout, "fluent (")
	assert.Contains(t, stdout, "legacy (")
	assert.Contains(t, stdout, "tohavetext")
	assert.Contains(t, stdout, "functions (")
	assert.Contains(t, stdout, "uuid")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "softspec project initialized!")
	assert.FileExists(t, filepath.Join(dir, "softspec.config.json"))
	assert.FileExists(t, filepath.Join(dir, "example.soft.yaml"))

	_, _, err = execute(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "init", dir, "--force")
	require.NoError(t, err)

	// The generated example passes against the generated config.
	stdout, _, err = execute(t, "run", filepath.Join(dir, "example.soft.yaml"),
		"--config", filepath.Join(dir, "softspec.config.json"), "-o", "json", "-q")
	require.NoError(t, err, stdout)
}

func decodeRun(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	return out
}

func TestRunCommand_Passing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shop.soft.yaml", passingFile)

	stdout, _, err := execute(t, "run", path, "-o", "json", "-q")
	require.NoError(t, err)

	out := decodeRun(t, stdout)
	summary := out["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["passed"])
	assert.Equal(t, float64(0), summary["failed"])
}

func TestRunCommand_Failing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "numbers.soft.yaml", failingFile)

	stdout, _, err := execute(t, "run", path, "-o", "json", "-q")
	require.Error(t, err)
	assert.Equal(t, ExitTestFailure, exitCode(err))

	out := decodeRun(t, stdout)
	summary := out["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["passed"])
	assert.Equal(t, float64(1), summary["failed"])

	scenarios := out["scenarios"].([]any)
	failed := scenarios[0].(map[string]any)
	assert.Equal(t, "numbers", failed["name"])
	assert.Contains(t, failed["error"], "Collected assertion errors:")
	assert.Len(t, failed["steps"], 3)
}

func TestRunCommand_ParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.soft.yaml", brokenFile)

	_, _, err := execute(t, "run", path, "-o", "json", "-q")
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(err))
}

func TestRunCommand_NameFilter(t *testing.T) {
	path := writeFile(t, t.TempDir(), "numbers.soft.yaml", failingFile)

	stdout, _, err := execute(t, "run", path, "-o", "json", "-q", "--name", "ok")
	require.NoError(t, err)

	summary := decodeRun(t, stdout)["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["passed"])
	assert.Equal(t, float64(1), summary["skipped"])
}

func TestRunCommand_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.soft.yaml", passingFile)
	report := filepath.Join(dir, "report.xml")

	stdout, _, err := execute(t, "run", path, "-o", "junit", "--output-file", report, "-q")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
}

func TestRunCommand_ConfigReporter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.soft.yaml", passingFile)
	cfg := writeFile(t, dir, "softspec.config.json", `{"reporters": ["tap"]}`)

	stdout, _, err := execute(t, "run", path, "--config", cfg, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TAP version 14")
}

func TestRunCommand_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.soft.yaml", passingFile)
	cfg := writeFile(t, dir, "softspec.config.json", `{not json`)

	_, _, err := execute(t, "run", path, "--config", cfg, "-q")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestRunCommand_UnknownFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shop.soft.yaml", passingFile)

	_, _, err := execute(t, "run", path, "-o", "yaml", "-q")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestRunCommand_DryRun(t *testing.T) {
	path := writeFile(t, t.TempDir(), "numbers.soft.yaml", failingFile)

	stdout, _, err := execute(t, "run", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Would run: "+path+" (2 scenarios)")
	assert.Contains(t, stdout, "- numbers (3 steps)")
}

func TestRunCommand_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "greet.soft.yaml", `name: greet
variables:
  greeting: hello
scenarios:
  - name: greeting
    steps:
      - assert: equals
        actual: {var: greeting}
        expected: howdy
`)
	envFile := writeFile(t, dir, "override.env", "greeting=howdy\n")

	_, _, err := execute(t, "run", path, "-o", "json", "-q")
	require.Error(t, err)

	_, _, err = execute(t, "run", path, "-o", "json", "-q", "--env-file", envFile)
	require.NoError(t, err)
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "top.soft.yaml", passingFile)
	writeFile(t, dir, "sub/inner.soft.yaml", passingFile)

	dirs := watchDirs([]string{dir, file, filepath.Join(dir, "missing")})
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "sub")}, dirs)
}

func TestCompletion(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "softspec")

	exts, directive := completeScenarioFiles(runCmd, nil, "")
	assert.Equal(t, []string{"yaml", "yml", "softspec"}, exts)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
}

func runJSON(t *testing.T, path string) string {
	t.Helper()
	stdout, _, _ := execute(t, "run", path, "-o", "json", "-q")
	out := filepath.Join(filepath.Dir(path), filepath.Base(path)+".json")
	require.NoError(t, os.WriteFile(out, []byte(stdout), 0644))
	return out
}

func TestDiffCommand(t *testing.T) {
	beforeDir, afterDir := t.TempDir(), t.TempDir()
	// The same file name in both runs so scenarios pair up.
	before := runJSON(t, writeFile(t, beforeDir, "numbers.soft.yaml", failingFile))
	after := runJSON(t, writeFile(t, afterDir, "numbers.soft.yaml", `name: failing
scenarios:
  - name: numbers
    steps:
      - assert: Equal
        actual: 1
        expected: 2
      - assert: isTrue
        actual: true
      - assert: isFalse
        actual: true
  - name: ok
    steps:
      - assert: isTrue
        actual: false
  - name: added
    steps:
      - assert: isTrue
        actual: true
`))

	beforeRes, err := loadResultsFile(before)
	require.NoError(t, err)
	afterRes, err := loadResultsFile(after)
	require.NoError(t, err)
	for i := range afterRes.Scenarios {
		afterRes.Scenarios[i].File = beforeRes.Scenarios[0].File
	}

	diff := compareResults(beforeRes, afterRes)
	assert.Equal(t, DiffSummary{Scenarios: 3, Regressed: 2, New: 1}, diff.Summary)

	byName := map[string]ScenarioComparison{}
	for _, c := range diff.Comparisons {
		byName[c.Name] = c
	}
	numbers := byName["numbers"]
	assert.Equal(t, changeRegressed, numbers.Change)
	assert.Equal(t, []string{"isFalse: Assertion failed: expected true to isFalse"}, numbers.NewFailures)
	assert.Equal(t, []string{"isTrue: Assertion failed: expected false to isTrue"}, numbers.Fixed)
	assert.Equal(t, "passed", byName["ok"].Before)
	assert.Equal(t, "failed", byName["ok"].After)
	assert.Equal(t, changeNew, byName["added"].Change)
}

func TestDiffCommand_CLI(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.soft.yaml", passingFile)
	results := runJSON(t, path)

	stdout, _, err := execute(t, "diff", results, results, "--fail-on-regression")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Scenarios:  1")
	assert.Contains(t, stdout, "Unchanged:  1")

	_, _, err = execute(t, "diff", results, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}
