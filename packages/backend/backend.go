package backend

import (
	"sort"

	"github.com/abdul-hamid-achik/softspec/packages/snapshot"
)

// Backend evaluates value checks and fluent element checks. One Backend
// is built per scenario so snapshot keys and schema paths resolve
// against that scenario's file.
type Backend struct {
	baseDir string

	snapshots        *snapshot.Manager
	snapshotFile     string
	snapshotScenario string

	values map[string]ValueCheck
}

// Option configures a Backend.
type Option func(*Backend)

// WithBaseDir sets the directory schema file paths are resolved against.
// Paths escaping it are rejected.
func WithBaseDir(dir string) Option {
	return func(b *Backend) {
		b.baseDir = dir
	}
}

// WithSnapshots enables MatchesSnapshot, storing snapshots for scenario
// next to file.
func WithSnapshots(m *snapshot.Manager, file, scenario string) Option {
	return func(b *Backend) {
		b.snapshots = m
		b.snapshotFile = file
		b.snapshotScenario = scenario
	}
}

// New creates a Backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	b.values = b.valueChecks()
	return b
}

// Value looks up a check on the value surface by its exact name.
func (b *Backend) Value(name string) (ValueCheck, bool) {
	c, ok := b.values[name]
	return c, ok
}

// ValueNames lists the value surface, sorted.
func (b *Backend) ValueNames() []string {
	names := make([]string, 0, len(b.values))
	for name := range b.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
