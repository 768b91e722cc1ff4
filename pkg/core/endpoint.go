package core

import (
	"errors"
	"fmt"
	"sort"
)

// Binding is a service published under a name.
type Binding struct {
	Name    string
	Keyed   bool
	Service *Service
}

// Endpoint maps service names to bindings. Bind everything before serving;
// lookups are not synchronized with Bind.
type Endpoint struct {
	bindings map[string]Binding
}

func NewEndpoint() *Endpoint {
	return &Endpoint{bindings: map[string]Binding{}}
}

// Bind publishes an unkeyed service.
func (e *Endpoint) Bind(name string, s *Service) error { return e.bind(name, s, false) }

// BindKeyed publishes a service whose calls must carry a key.
func (e *Endpoint) BindKeyed(name string, s *Service) error { return e.bind(name, s, true) }

func (e *Endpoint) bind(name string, s *Service, keyed bool) error {
	if err := checkName(name); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if s == nil {
		return errors.New("service " + name + " is nil")
	}
	if _, dup := e.bindings[name]; dup {
		return fmt.Errorf("service %q bound twice", name)
	}
	e.bindings[name] = Binding{Name: name, Keyed: keyed, Service: s}
	return nil
}

func (e *Endpoint) Lookup(service, handler string) (Binding, Handler, error) {
	b, ok := e.bindings[service]
	if !ok {
		return Binding{}, nil, fmt.Errorf("%w %q", ErrUnknownService, service)
	}
	h, ok := b.Service.Handler(handler)
	if !ok {
		return Binding{}, nil, fmt.Errorf("%w %q on %q", ErrUnknownHandler, handler, service)
	}
	return b, h, nil
}

// Services lists bindings ordered by name.
func (e *Endpoint) Services() []Binding {
	out := make([]Binding, 0, len(e.bindings))
	for _, b := range e.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
