package future

// Promise is the write side of a Future. Only the first completion counts;
// later calls are ignored.
type Promise[T any] struct {
	future *Future[T]
}

func (p *Promise[T]) fulfill(value T, err error) {
	f := p.future

	f.once.Do(func() {
		f.mu.Lock()

		f.value = value
		f.err = err
		callbacks := f.callbacks
		f.callbacks = nil

		f.done.Store(true)
		close(f.resultReady)

		f.mu.Unlock()

		for _, cb := range callbacks {
			invokeCallback(cb, value, err)
		}
	})
}

// Success completes the future with a value.
func (p *Promise[T]) Success(value T) {
	p.fulfill(value, nil)
}

// Failure completes the future with an error.
func (p *Promise[T]) Failure(err error) {
	var zero T

	p.fulfill(zero, err)
}

// Complete completes the future with value when err is nil, otherwise with err.
func (p *Promise[T]) Complete(value T, err error) {
	if err != nil {
		p.Failure(err)
	} else {
		p.Success(value)
	}
}
