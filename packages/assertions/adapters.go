package assertions

import (
	"context"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

// Handler runs a resolved operation. hasExpected is false when the
// request carried no expected value.
type Handler func(ctx context.Context, actual, expected any, hasExpected bool) error

// Adapter maps operation names onto one surface of the backend.
type Adapter interface {
	Name() string
	Lookup(op string) (Handler, bool)
	Operations() []string
}

type valueAdapter struct {
	b *backend.Backend
}

// NewValueAdapter resolves names on the backend's value surface.
func NewValueAdapter(b *backend.Backend) Adapter {
	return valueAdapter{b: b}
}

func (a valueAdapter) Name() string { return AdapterValue }

func (a valueAdapter) Lookup(op string) (Handler, bool) {
	check, ok := a.b.Value(op)
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, actual, expected any, _ bool) error {
		return check.Call(ctx, actual, expected)
	}, true
}

func (a valueAdapter) Operations() []string { return a.b.ValueNames() }

type fluentAdapter struct {
	b *backend.Backend
}

// NewFluentAdapter resolves dotted paths on the backend's fluent surface.
func NewFluentAdapter(b *backend.Backend) Adapter {
	return fluentAdapter{b: b}
}

func (a fluentAdapter) Name() string { return AdapterFluent }

func (a fluentAdapter) Lookup(op string) (Handler, bool) {
	call, ok := a.b.Fluent(op)
	if !ok {
		return nil, false
	}
	return Handler(call), true
}

func (a fluentAdapter) Operations() []string { return backend.FluentTerminals() }

// Resolver tries adapters in a fixed order and reports which one
// handled an operation.
type Resolver struct {
	adapters []Adapter
}

// NewResolver creates a Resolver over the value, fluent and legacy
// adapters of b, in that order.
func NewResolver(b *backend.Backend) *Resolver {
	return NewResolverWith(NewValueAdapter(b), NewFluentAdapter(b), NewLegacyAdapter(b))
}

// NewResolverWith creates a Resolver over the given adapters.
func NewResolverWith(adapters ...Adapter) *Resolver {
	return &Resolver{adapters: adapters}
}

// Resolve returns the handler for op and the name of the adapter that
// provided it.
func (r *Resolver) Resolve(op string) (Handler, string, bool) {
	for _, a := range r.adapters {
		if h, ok := a.Lookup(op); ok {
			return h, a.Name(), true
		}
	}
	return nil, AdapterUnsupported, false
}

// Adapters returns the adapters in resolution order.
func (r *Resolver) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}
