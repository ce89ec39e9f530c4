package application

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

const defaultMaxTries = 8

// retryConflicts reruns op while it fails with domain.ErrConcurrentUpdate.
// Any other error ends the loop immediately.
func retryConflicts[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, domain.ErrConcurrentUpdate) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))
}
