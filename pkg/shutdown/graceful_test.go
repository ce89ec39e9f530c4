package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalCancelsContext(t *testing.T) {
	ctx, cancel := withSignals(context.Background(), func() {}, syscall.SIGUSR1)
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
}

func TestCancelStopsWatching(t *testing.T) {
	ctx, cancel := withSignals(context.Background(), func() {}, syscall.SIGUSR2)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
