package suite

import "fmt"

// Registry holds named suites in registration order. Suites are registered
// explicitly; there is no discovery.
type Registry struct {
	order  []string
	suites map[string]Suite
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{suites: map[string]Suite{}}
}

// Register adds a suite under its name.
func (r *Registry) Register(s Suite) error {
	name := s.Name()
	if _, ok := r.suites[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSuite, name)
	}
	r.suites[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get returns the suite registered under name.
func (r *Registry) Get(name string) (Suite, error) {
	s, ok := r.suites[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSuite, name)
	}
	return s, nil
}

// Names returns suite names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Select resolves the requested suite names, or all registered suites when
// names is empty.
func (r *Registry) Select(names []string) ([]Suite, error) {
	if len(names) == 0 {
		names = r.order
	}
	suites := make([]Suite, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// mustRegister adds a suite and panics on a duplicate name. Only for
// registries built from fixed suite lists.
func (r *Registry) mustRegister(s Suite) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// DefaultRegistry returns the registry covering the app's pages.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(NewPageSuite("login_page", "/login", "form", false))
	r.mustRegister(NewPageSuite("register_page", "/register", "form", false))
	r.mustRegister(NewPageSuite("orders_list", "/orders", "table", true))
	r.mustRegister(NewPageSuite("order_create", "/orders/create", "form", true))
	r.mustRegister(NewPageSuite("order_edit", "/orders/1/edit", "form", true))
	return r
}
