package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
	"github.com/abdul-hamid-achik/softspec/packages/core/env"
	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
)

var (
	ErrNoDatabase      = errors.New("no database configured")
	ErrUnknownVariable = errors.New("unknown variable")
)

// resolveSource produces a step's actual value. Element sources stay
// lazy so element checks await them; a missing JSON path is nil.
func (r *Runner) resolveSource(ctx context.Context, fc *fileContext, resolver *env.Resolver, src parser.Source) (any, error) {
	switch src.Kind {
	case parser.SourceElement:
		return fc.fixture.Page.Locate(resolver.Resolve(src.Ref)), nil
	case parser.SourcePage:
		return fc.fixture.Page, nil
	case parser.SourceJSON:
		v, _ := fc.fixture.Documents.Extract(resolver.Resolve(src.Ref))
		return v, nil
	case parser.SourceSQL:
		if fc.db == nil {
			return nil, ErrNoDatabase
		}
		return fc.db.QueryValue(ctx, resolver.Resolve(src.Ref))
	case parser.SourceVar:
		v, ok := resolver.GetVariable(src.Ref)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownVariable, src.Ref)
		}
		return v, nil
	default:
		return resolver.ResolveValue(src.Value), nil
	}
}

// captureValue is the value a step's capture stores: elements are
// awaited and contribute their text.
func captureValue(ctx context.Context, actual any) (any, error) {
	v, err := backend.Resolve(ctx, actual)
	if err != nil {
		return nil, err
	}
	if t, ok := v.(backend.TextRetriever); ok {
		return t.Text(ctx)
	}
	return v, nil
}
