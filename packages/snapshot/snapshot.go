// Package snapshot stores observed values next to scenario files and
// compares later runs against them.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

const (
	// Dir is the directory, next to the scenario file, holding snapshots.
	Dir = "__snapshots__"
	// Ext is the extension of snapshot files.
	Ext = ".snap.json"
)

// scenarioExts are stripped from scenario file names, longest first.
var scenarioExts = []string{".soft.yaml", ".soft.yml", ".softspec"}

// Manager loads, compares and updates snapshots. It is safe for
// concurrent use by scenarios running in parallel.
type Manager struct {
	mu         sync.Mutex
	updateMode bool
	cache      map[string]map[string]any // snapshot file -> key -> value
}

// NewManager creates a Manager. In update mode missing or mismatching
// snapshots are written instead of failing.
func NewManager(updateMode bool) *Manager {
	return &Manager{
		updateMode: updateMode,
		cache:      make(map[string]map[string]any),
	}
}

// Result is the outcome of one comparison.
type Result struct {
	Passed     bool
	Message    string
	Expected   any
	Actual     any
	IsNew      bool
	WasUpdated bool
}

// Compare checks actual against the snapshot stored for scenario/name in
// the snapshot file belonging to scenarioFile. An empty name falls back
// to a hash of the value.
func (m *Manager) Compare(scenarioFile, scenario, name string, actual any) *Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &Result{Actual: actual}
	path := FilePath(scenarioFile)
	key := Key(scenario, name, actual)

	snapshots, err := m.load(path)
	if err != nil {
		result.Message = fmt.Sprintf("failed to load snapshots: %v", err)
		return result
	}

	expected, exists := snapshots[key]
	if !exists {
		if !m.updateMode {
			result.Message = "snapshot does not exist (run with --update-snapshots to create)"
			return result
		}
		snapshots[key] = actual
		if err := m.save(path, snapshots); err != nil {
			result.Message = fmt.Sprintf("failed to save snapshot: %v", err)
			return result
		}
		result.Passed = true
		result.IsNew = true
		result.Expected = actual
		result.Message = "new snapshot created"
		return result
	}

	result.Expected = expected
	if jsonEqual(expected, actual) {
		result.Passed = true
		return result
	}

	if !m.updateMode {
		result.Message = fmt.Sprintf("snapshot mismatch: expected %v, got %v", expected, actual)
		return result
	}
	snapshots[key] = actual
	if err := m.save(path, snapshots); err != nil {
		result.Message = fmt.Sprintf("failed to update snapshot: %v", err)
		return result
	}
	result.Passed = true
	result.WasUpdated = true
	result.Message = "snapshot updated"
	return result
}

// FilePath returns the snapshot file for a scenario file.
func FilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)

	name := strings.TrimSuffix(base, filepath.Ext(base))
	for _, ext := range scenarioExts {
		if strings.HasSuffix(base, ext) {
			name = strings.TrimSuffix(base, ext)
			break
		}
	}
	return filepath.Join(dir, Dir, name+Ext)
}

// Key builds the snapshot key for a value.
func Key(scenario, name string, value any) string {
	if name != "" {
		return fmt.Sprintf("%s::%s", scenario, name)
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%v", value)))
	if scenario != "" {
		return scenario + "::anon_" + hex.EncodeToString(hash[:8])
	}
	return "anon_" + hex.EncodeToString(hash[:8])
}

func (m *Manager) load(path string) (map[string]any, error) {
	if cached, ok := m.cache[path]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			snapshots := make(map[string]any)
			m.cache[path] = snapshots
			return snapshots, nil
		}
		return nil, err
	}

	snapshots := make(map[string]any)
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	m.cache[path] = snapshots
	return snapshots, nil
}

func (m *Manager) save(path string, snapshots map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}

	m.cache[path] = snapshots
	return os.WriteFile(path, data, 0644)
}

// jsonEqual compares values after a JSON round trip so numbers decoded
// from different sources compare equal.
func jsonEqual(a, b any) bool {
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)

	var aVal, bVal any
	if err := json.Unmarshal(aJSON, &aVal); err == nil {
		a = aVal
	}
	if err := json.Unmarshal(bJSON, &bVal); err == nil {
		b = bVal
	}
	return reflect.DeepEqual(a, b)
}
