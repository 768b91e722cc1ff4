// Package durable describes the capabilities a handler receives from the
// hosting runtime and provides a local, in-process implementation of them.
//
// Handlers only see the Context interface. How effects are recorded and
// replayed is up to whoever implements it.
package durable

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Context is handed to every handler invocation. It is also a context.Context
// scoped to the invocation, so it can be passed to outbound calls.
type Context interface {
	context.Context

	Service() string
	Handler() string
	InvocationID() string

	// Key is the partition key of a keyed call, empty for unkeyed services.
	Key() string

	// Log returns a logger scoped to this invocation. Output is best effort
	// and suppressed while journaled work is being replayed.
	Log() *zap.Logger

	// Run executes fn at most once per invocation lifetime. Once its result
	// is journaled, re-executions of the handler get the recorded bytes back
	// without calling fn. Errors are not journaled.
	Run(name string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error)

	// Sleep suspends the handler for d. The wake-up time is journaled first,
	// so a re-execution only waits for whatever is left.
	Sleep(d time.Duration) error
}
