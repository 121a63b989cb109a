// Package rtrole propagates which goroutine is "the realtime thread" so
// blocking or allocating primitives can refuse to run on it (spec §4.C's
// rt_not_allowed assertion). Go has no per-thread-local storage exposed to
// goroutines, so the role travels on the context.Context instead of a
// pthread key.
package rtrole

import (
	"context"

	"github.com/lodsb/turntable-core/internal/errs"
)

type roleKey struct{}

// WithRealtime marks ctx (and anything derived from it) as running on the
// realtime thread.
func WithRealtime(ctx context.Context) context.Context {
	return context.WithValue(ctx, roleKey{}, true)
}

// IsRealtime reports whether ctx was derived from WithRealtime.
func IsRealtime(ctx context.Context) bool {
	v, _ := ctx.Value(roleKey{}).(bool)
	return v
}

// AssertNotRealtime panics with a ProgrammerError if ctx carries the
// realtime role. Call at the top of anything that allocates or blocks:
// track allocation, pipe writes from the coordination thread, registry
// mutation.
func AssertNotRealtime(ctx context.Context) {
	if IsRealtime(ctx) {
		panic(errs.New(errs.ProgrammerError, "blocking/allocating primitive called from the realtime thread"))
	}
}
