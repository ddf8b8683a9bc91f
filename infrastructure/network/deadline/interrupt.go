package deadline

import (
	"context"
	"time"
)

// past is any instant before now; setting it as a deadline fails pending I/O.
var past = time.Unix(1, 0)

// Interruptible runs op so that cancelling ctx aborts it. set is a deadline
// setter of the conn op blocks on (SetReadDeadline or SetWriteDeadline).
// When ctx caused the failure, ctx.Err() is returned instead of the timeout.
func Interruptible(ctx context.Context, set func(time.Time) error, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = set(past)
		close(fired)
	})
	err := op()
	if stop() {
		return err
	}
	<-fired
	// the conn stays usable for the next caller
	_ = set(time.Time{})
	if err != nil {
		return ctx.Err()
	}
	return nil
}
