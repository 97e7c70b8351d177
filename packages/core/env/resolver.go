package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/softspec/packages/builtin"
	"github.com/abdul-hamid-achik/softspec/packages/logging"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolver interpolates {{ }} expressions. Lookups check captures first,
// then variables. It is safe for concurrent use; scenarios running in
// parallel each work on a Clone.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	logger    logging.Logger
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
		logger:    logging.NullLogger{},
	}
}

// SetLogger sets where unresolved expressions are reported.
func (r *Resolver) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.NullLogger{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

func (r *Resolver) warn(msg string, fields ...logging.Field) {
	r.mu.RLock()
	l := r.logger
	r.mu.RUnlock()
	l.Warn(msg, fields...)
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture stores a value captured by a step, reachable as
// {{name}} and {{scope.name}}.
func (r *Resolver) SetCapture(scope, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope != "" {
		r.captures[scope+"."+name] = value
	}
	r.captures[name] = value
}

func (r *Resolver) lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	v, ok := r.variables[name]
	return v, ok
}

// eval evaluates the inside of one {{ }} expression.
func (r *Resolver) eval(expr string) (any, bool) {
	if strings.HasPrefix(expr, "$") {
		name := expr[1:]
		if val, ok := os.LookupEnv(name); ok {
			return val, true
		}
		r.warn("unresolved environment variable", logging.String("name", name))
		return nil, false
	}

	if strings.Contains(expr, "(") {
		result, ok, err := r.funcs.Call(expr)
		if !ok {
			r.warn("unresolved function call", logging.String("expr", expr))
			return nil, false
		}
		if err != nil {
			r.warn("function call failed", logging.String("expr", expr), logging.Err(err))
			return nil, false
		}
		return result, true
	}

	if v, ok := r.lookup(expr); ok {
		return v, true
	}
	r.warn("unresolved variable", logging.String("name", expr))
	return nil, false
}

// Resolve replaces every {{ }} expression in input. Unresolved
// expressions are left in place and reported as warnings.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := r.eval(expr); ok {
			return fmt.Sprintf("%v", v)
		}
		return match
	})
}

// ResolveValue interpolates strings inside v, walking maps and slices.
// A string that is exactly one expression keeps the expression's type,
// so {{count}} can resolve to a number.
func (r *Resolver) ResolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatchIndex(val); m != nil && m[0] == 0 && m[1] == len(val) {
			if resolved, ok := r.eval(strings.TrimSpace(val[m[2]:m[3]])); ok {
				return resolved
			}
			return val
		}
		return r.Resolve(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.ResolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.ResolveValue(item)
		}
		return out
	}
	return v
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// UnresolvedVariables lists the plain variable names in input that have
// no value. Environment lookups and function calls are not reported.
func (r *Resolver) UnresolvedVariables(input string) []string {
	var out []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if strings.HasPrefix(expr, "$") || strings.Contains(expr, "(") {
			continue
		}
		if !r.HasVariable(expr) {
			out = append(out, expr)
		}
	}
	return out
}

func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.UnresolvedVariables(input)) > 0
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	return r.lookup(name)
}

// Clone copies variables and captures. The clone shares the function
// registry and logger.
func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Resolver{
		variables: make(map[string]any, len(r.variables)),
		captures:  make(map[string]any, len(r.captures)),
		funcs:     r.funcs,
		logger:    r.logger,
	}
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	return clone
}
