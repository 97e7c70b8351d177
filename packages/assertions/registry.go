package assertions

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds one Accumulator per running scenario so scenarios
// running concurrently in one process never share failures.
type Registry struct {
	mu        sync.Mutex
	scenarios map[string]*Accumulator
	opts      []Option
}

// NewRegistry creates a Registry. opts apply to every Accumulator it
// opens.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		scenarios: make(map[string]*Accumulator),
		opts:      opts,
	}
}

// Open creates an Accumulator for a new scenario and returns its id.
// opts are applied after the registry's own options.
func (r *Registry) Open(opts ...Option) (string, *Accumulator) {
	all := make([]Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)

	id := uuid.NewString()
	acc := NewAccumulator(all...)

	r.mu.Lock()
	r.scenarios[id] = acc
	r.mu.Unlock()
	return id, acc
}

// Get returns the Accumulator of a scenario.
func (r *Registry) Get(id string) (*Accumulator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.scenarios[id]
	return acc, ok
}

// Close removes a scenario. Failures it still holds are finalized and
// returned; an unknown id returns nil.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	acc, ok := r.scenarios[id]
	delete(r.scenarios, id)
	r.mu.Unlock()

	if !ok || acc.Len() == 0 {
		return nil
	}
	return acc.Finalize()
}

// Len returns the number of open scenarios.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scenarios)
}
