package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext is canceled on SIGINT or SIGTERM. An interrupted scoring run
// stops after the batch in flight; committed batches stay.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
