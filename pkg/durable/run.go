package durable

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
)

// Run is the typed form of Context.Run. The value is journaled as JSON.
func Run[T any](ctx Context, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := ctx.Run(name, func(c context.Context) ([]byte, error) {
		v, err := fn(c)
		if err != nil {
			return nil, err
		}
		b, err := codec.JSON.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return b, nil
	})
	if err != nil {
		return out, err
	}
	if err := codec.JSON.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s result: %w", name, err)
	}
	return out, nil
}
