// Package shutdown runs cleanup hooks (flushing telemetry, draining the async
// validation pool) when a program is interrupted or finishes normally.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/amp-editform/logger"
)

// Hook runs during shutdown. The context passed to it is not canceled.
type Hook func(ctx context.Context)

// Handler owns the hooks of one program run.
type Handler struct {
	mu    sync.Mutex
	hooks []Hook
	done  bool

	signals chan os.Signal
	cancel  context.CancelFunc
	base    context.Context //nolint:containedctx
}

// SetupHandler listens for SIGINT and SIGTERM. The returned context is
// canceled once the hooks have run, whether a signal arrived or Shutdown was
// called.
func SetupHandler(parent context.Context) (context.Context, *Handler) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		signals: make(chan os.Signal, 1),
		cancel:  cancel,
		base:    context.WithoutCancel(parent),
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig, ok := <-h.signals
		if !ok {
			return
		}

		logger.Get(h.base).Warn("Received " + sig.String() + ", shutting down...")
		h.Shutdown()
	}()

	return ctx, h
}

// BeforeShutdown registers h. Hooks run in reverse registration order.
func (h *Handler) BeforeShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks = append(h.hooks, hook)
}

// Shutdown runs the hooks once and cancels the handler's context. Later
// calls do nothing.
func (h *Handler) Shutdown() {
	h.mu.Lock()

	if h.done {
		h.mu.Unlock()

		return
	}

	h.done = true
	hooks := h.hooks
	h.hooks = nil

	signal.Stop(h.signals)
	close(h.signals)
	h.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](h.base)
	}

	h.cancel()
}
