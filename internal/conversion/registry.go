// Package conversion turns projects into other representations through named
// filters kept in an explicit registry.
package conversion

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pepkit/eido/internal/pep"
)

// ErrFilterNotFound is matched by every FilterError for an unknown name.
var ErrFilterNotFound = errors.New("filter not found")

// Func runs a filter. The result maps output names (such as "project" or
// "samples") to their text.
type Func func(p *pep.Project, params map[string]string) (map[string]string, error)

// Filter is a registered conversion.
type Filter struct {
	Name        string
	Description string
	Func        Func
}

// FilterError reports a filter that is not registered or that failed.
type FilterError struct {
	Name      string
	Available []string
	Err       error
}

func (e *FilterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filter %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("requested filter (%s) not found. Available: %s", e.Name, strings.Join(e.Available, ", "))
}

func (e *FilterError) Unwrap() error { return e.Err }

func (e *FilterError) Is(target error) bool {
	return target == ErrFilterNotFound && e.Err == nil
}

// Registry is a thread-safe set of filters keyed by name.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]Filter)}
}

// DefaultRegistry returns a registry holding the built-in filters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range builtins() {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a filter. Names must be unique and non-empty.
func (r *Registry) Register(f Filter) error {
	if f.Name == "" || f.Func == nil {
		return fmt.Errorf("filter needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[f.Name]; ok {
		return fmt.Errorf("filter %q already registered", f.Name)
	}
	r.filters[f.Name] = f
	return nil
}

// Get returns the filter registered under name.
func (r *Registry) Get(name string) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[name]
	return f, ok
}

// Names returns the registered filter names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filters returns the registered filters ordered by name.
func (r *Registry) Filters() []Filter {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Filter, 0, len(names))
	for _, name := range names {
		out = append(out, r.filters[name])
	}
	return out
}

// Run applies the named filter to p.
func Run(r *Registry, p *pep.Project, name string, params map[string]string) (map[string]string, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, &FilterError{Name: name, Available: r.Names()}
	}
	if params == nil {
		params = map[string]string{}
	}
	out, err := f.Func(p, params)
	if err != nil {
		return nil, &FilterError{Name: name, Err: err}
	}
	return out, nil
}
