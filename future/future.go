// Package future provides a minimal Future/Promise pair used to hand
// in-flight validation results between a validator and the code awaiting it.
package future

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/atomic"
)

// Future is a read-only handle to a value computed asynchronously.
// Awaiting is idempotent and safe from many goroutines.
type Future[T any] struct {
	resultReady chan struct{}
	once        sync.Once
	done        *atomic.Bool

	mu        sync.Mutex
	value     T
	err       error
	callbacks []func(T, error)
}

// New returns a pending future and the promise that completes it.
func New[T any]() (*Future[T], *Promise[T]) {
	fut := &Future[T]{
		resultReady: make(chan struct{}),
		done:        atomic.NewBool(false),
	}

	return fut, &Promise[T]{future: fut}
}

// Completed returns a future that already holds value.
func Completed[T any](value T) *Future[T] {
	fut, promise := New[T]()
	promise.Success(value)

	return fut
}

// Failed returns a future that already holds err.
func Failed[T any](err error) *Future[T] {
	fut, promise := New[T]()
	promise.Failure(err)

	return fut
}

// Go runs f on a new goroutine. Panics are recovered into ErrPanic.
func Go[T any](f func() (T, error)) *Future[T] {
	return Spawn(func(task func()) error {
		go task()

		return nil
	}, f)
}

// Spawn runs f through spawn, which lets callers route work onto a worker
// pool. If spawn refuses the task, the future fails with its error.
func Spawn[T any](spawn func(task func()) error, f func() (T, error)) *Future[T] {
	fut, promise := New[T]()

	err := spawn(func() {
		defer func() {
			if r := recover(); r != nil {
				promise.Failure(panicError(r, debug.Stack()))
			}
		}()

		promise.Complete(f())
	})
	if err != nil {
		promise.Failure(err)
	}

	return fut
}

// IsDone reports whether the future has been completed.
func (f *Future[T]) IsDone() bool {
	return f.done.Load()
}

// Await blocks until the future is completed.
func (f *Future[T]) Await() (T, error) { //nolint:ireturn
	<-f.resultReady

	return f.value, f.err
}

// AwaitContext blocks until the future is completed or ctx is done, in which
// case ctx.Err() is returned. The underlying computation is not canceled.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) { //nolint:ireturn
	if ctx == nil {
		return f.Await()
	}

	select {
	case <-f.resultReady:
		return f.value, f.err
	case <-ctx.Done():
		// Prefer a result that raced with cancellation.
		select {
		case <-f.resultReady:
			return f.value, f.err
		default:
		}

		var zero T

		return zero, ctx.Err()
	}
}

// OnResult registers a callback run once the future completes. Callbacks run
// on their own goroutine; registering on a completed future runs it right away.
func (f *Future[T]) OnResult(callback func(T, error)) {
	if callback == nil {
		return
	}

	f.mu.Lock()

	if !f.done.Load() {
		f.callbacks = append(f.callbacks, callback)
		f.mu.Unlock()

		return
	}

	value, err := f.value, f.err
	f.mu.Unlock()

	invokeCallback(callback, value, err)
}
