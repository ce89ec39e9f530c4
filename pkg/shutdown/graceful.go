// Package shutdown ties service lifetime to process signals.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// WithSignals returns a context cancelled on SIGINT or SIGTERM. A second
// signal before the returned cancel is called exits the process.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return withSignals(ctx, func() { os.Exit(1) }, syscall.SIGINT, syscall.SIGTERM)
}

func withSignals(ctx context.Context, force func(), sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, sigs...)
	stop := make(chan struct{})

	go func() {
		select {
		case <-ch:
			cancel()
		case <-stop:
			return
		}
		select {
		case <-ch:
			force()
		case <-stop:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(ch)
			close(stop)
		})
		cancel()
	}
}
