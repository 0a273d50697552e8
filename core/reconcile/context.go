package reconcile

import (
	"context"
	"time"
)

type passKey struct{}

// WithPassID tags ctx with the id of the guild pass it belongs to.
func WithPassID(ctx context.Context, passID string) context.Context {
	return context.WithValue(ctx, passKey{}, passID)
}

// PassID returns the guild pass id carried by ctx. Single-member passes have none.
func PassID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(passKey{}).(string)
	return id, ok && id != ""
}

// withTimeout runs fn under a deadline of timeout. A zero timeout runs fn on ctx as is.
func withTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
