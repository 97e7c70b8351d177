package fixture

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

// Page is a static document with a title, a URL and elements keyed by
// selector.
type Page struct {
	mu       sync.RWMutex
	title    string
	url      string
	elements map[string]*Element
}

var _ backend.Page = (*Page)(nil)

func NewPage(title, url string) *Page {
	return &Page{title: title, url: url, elements: make(map[string]*Element)}
}

func (p *Page) Title(context.Context) (string, error) { return p.title, nil }

func (p *Page) URL(context.Context) (string, error) { return p.url, nil }

// String keeps failure messages readable.
func (p *Page) String() string {
	return fmt.Sprintf("page %q", p.url)
}

// Add registers an element under its selector.
func (p *Page) Add(el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[el.Selector] = el
}

// Locate returns a lazy reference to the element matching selector.
func (p *Page) Locate(selector string) *Locator {
	return &Locator{page: p, selector: selector}
}

// Selectors lists the known selectors, sorted.
func (p *Page) Selectors() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.elements))
	for s := range p.elements {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (p *Page) lookup(selector string) (*Element, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	el, ok := p.elements[selector]
	return el, ok
}

// Locator is a lazy element lookup.
type Locator struct {
	page     *Page
	selector string
}

var _ backend.Awaitable = (*Locator)(nil)

// Await resolves the element, or nil when no element matches.
func (l *Locator) Await(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if el, ok := l.page.lookup(l.selector); ok {
		return el, nil
	}
	return nil, nil
}

func (l *Locator) String() string {
	return fmt.Sprintf("element(%s)", l.selector)
}

// Element is a static element.
type Element struct {
	Selector   string
	text       string
	html       string
	attributes map[string]string
	states     map[string]bool
}

var (
	_ backend.Stateful        = (*Element)(nil)
	_ backend.TextRetriever   = (*Element)(nil)
	_ backend.HTMLRetriever   = (*Element)(nil)
	_ backend.AttributeReader = (*Element)(nil)
)

func (e *Element) Is(_ context.Context, st backend.State) (bool, error) {
	if v, ok := e.states[string(st)]; ok {
		return v, nil
	}
	switch st {
	case backend.StateExisting, backend.StateEnabled, backend.StateDisplayed:
		return true, nil
	case backend.StateClickable:
		return e.flag(backend.StateEnabled, true) && e.flag(backend.StateDisplayed, true), nil
	}
	return false, nil
}

func (e *Element) flag(st backend.State, def bool) bool {
	if v, ok := e.states[string(st)]; ok {
		return v
	}
	return def
}

func (e *Element) Text(context.Context) (string, error) { return e.text, nil }

func (e *Element) HTML(context.Context) (string, error) { return e.html, nil }

func (e *Element) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.attributes[name]
	return v, ok, nil
}

func (e *Element) String() string {
	return fmt.Sprintf("element(%s)", e.Selector)
}
