package future

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/amp-labs/amp-editform/logger"
)

// ErrPanic wraps a panic recovered while computing a future's value.
var ErrPanic = errors.New("panic recovered")

func panicError(r any, stack []byte) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w\n%s", ErrPanic, err, stack)
	}

	return fmt.Errorf("%w: %v\n%s", ErrPanic, r, stack)
}

// invokeCallback runs a completion callback on its own goroutine. A panicking
// callback is logged and never takes down the fulfilling goroutine.
func invokeCallback[T any](callback func(T, error), value T, err error) {
	if callback == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Get().Error("panic encountered in future.OnResult callback",
					"error", panicError(r, debug.Stack()))
			}
		}()

		callback(value, err)
	}()
}
