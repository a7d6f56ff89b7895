package shutdown

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsHooksInReverse(t *testing.T) {
	t.Parallel()

	ctx, h := SetupHandler(t.Context())

	var order []int

	h.BeforeShutdown(func(context.Context) { order = append(order, 1) })
	h.BeforeShutdown(func(context.Context) { order = append(order, 2) })

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled before shutdown")
	default:
	}

	h.Shutdown()

	assert.Equal(t, []int{2, 1}, order)
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	_, h := SetupHandler(t.Context())

	var calls atomic.Int32

	h.BeforeShutdown(func(context.Context) { calls.Add(1) })

	h.Shutdown()
	h.Shutdown()

	assert.Equal(t, int32(1), calls.Load())
}

func TestShutdown_HookContextStaysAlive(t *testing.T) {
	t.Parallel()

	_, h := SetupHandler(t.Context())

	var hookErr atomic.Value

	h.BeforeShutdown(func(ctx context.Context) {
		if ctx.Err() != nil {
			hookErr.Store(ctx.Err())
		}
	})

	h.Shutdown()

	assert.Nil(t, hookErr.Load())
}

func TestShutdown_OnSignal(t *testing.T) {
	t.Parallel()

	ctx, h := SetupHandler(t.Context())

	var called atomic.Bool

	h.BeforeShutdown(func(context.Context) { called.Store(true) })

	h.signals <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled after signal")
	}

	assert.True(t, called.Load())
}
