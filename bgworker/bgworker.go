// Package bgworker owns the worker pool that runs asynchronous validations.
package bgworker

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-editform/logger"
)

const defaultWorkerCount = 10

var (
	poolMutex   sync.Mutex //nolint:gochecknoglobals
	workerPool  pond.Pool  //nolint:gochecknoglobals
	workerCount = defaultWorkerCount //nolint:gochecknoglobals
)

// Configure sets the pool size used the next time the pool is created.
// It has no effect on a pool that is already running; call Stop first.
func Configure(count int) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if count <= 0 {
		count = defaultWorkerCount
	}

	workerCount = count
}

func get(ctx context.Context) pond.Pool { //nolint:ireturn
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if workerPool == nil || workerPool.Stopped() {
		logger.Get(ctx).Debug("Initializing async validation worker pool", "count", workerCount)

		workerPool = pond.NewPool(workerCount)
	}

	return workerPool
}

// Submit submits a function to the pool and returns immediately.
// It returns an error if the pool refuses the task.
func Submit(ctx context.Context, f func()) error {
	return get(ctx).Go(f)
}

// Spawner adapts Submit to the future.Spawn signature.
func Spawner(ctx context.Context) func(task func()) error {
	return func(task func()) error {
		return Submit(ctx, task)
	}
}

// Stop waits for queued validations and stops the pool. The next Submit
// starts a fresh pool.
func Stop(ctx context.Context) {
	poolMutex.Lock()
	pool := workerPool
	workerPool = nil
	poolMutex.Unlock()

	if pool == nil {
		return
	}

	logger.Get(ctx).Debug("Stopping async validation worker pool")
	pool.StopAndWait()
}
