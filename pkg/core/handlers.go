// core/handlers.go
package core

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
)

// Handler is one named operation of a service. 'in' is the raw JSON of the
// envelope's request field; the result is the raw JSON of the response.
type Handler interface {
	Name() string
	Invoke(ctx durable.Context, in []byte) ([]byte, error)
}

type typedHandler[I, O any] struct {
	name string
	fn   func(ctx durable.Context, in I) (O, error)
}

// NewHandler wraps a statically typed function as a Handler.
// A missing or null request decodes to the zero value of I.
func NewHandler[I, O any](name string, fn func(ctx durable.Context, in I) (O, error)) Handler {
	return &typedHandler[I, O]{name: name, fn: fn}
}

func (h *typedHandler[I, O]) Name() string { return h.name }

func (h *typedHandler[I, O]) Invoke(ctx durable.Context, in []byte) ([]byte, error) {
	var req I
	if trimmed := bytes.TrimSpace(in); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := codec.JSON.Unmarshal(trimmed, &req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadRequest, h.name, err)
		}
	}
	out, err := h.fn(ctx, req)
	if err != nil {
		return nil, err
	}
	b, err := codec.JSON.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s response: %w", h.name, err)
	}
	return b, nil
}

// Service is an immutable set of handlers, validated when built.
type Service struct {
	handlers map[string]Handler
}

func NewService(hs ...Handler) (*Service, error) {
	if len(hs) == 0 {
		return nil, errors.New("service needs at least one handler")
	}
	s := &Service{handlers: make(map[string]Handler, len(hs))}
	for i, h := range hs {
		if h == nil {
			return nil, fmt.Errorf("handler %d is nil", i)
		}
		name := h.Name()
		if err := checkName(name); err != nil {
			return nil, fmt.Errorf("handler %d: %w", i, err)
		}
		if _, dup := s.handlers[name]; dup {
			return nil, fmt.Errorf("handler %q registered twice", name)
		}
		s.handlers[name] = h
	}
	return s, nil
}

func MustService(hs ...Handler) *Service {
	s, err := NewService(hs...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Service) Handler(name string) (Handler, bool) {
	h, ok := s.handlers[name]
	return h, ok
}

// Names returns handler names in lexical order.
func (s *Service) Names() []string {
	out := make([]string, 0, len(s.handlers))
	for n := range s.handlers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func checkName(n string) error {
	if strings.TrimSpace(n) == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(n, "/ \t\r\n") {
		return fmt.Errorf("name %q must not contain '/' or whitespace", n)
	}
	return nil
}
