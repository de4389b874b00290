package store

import (
	"context"
	"sync"

	"github.com/beehive-tools/hivecli/internal/models"
)

// Future is the pending result of an asynchronous save or delete.
type Future struct {
	done chan struct{}

	mu        sync.Mutex
	hive      models.Hive
	err       error
	callbacks []func(models.Hive, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve completes the future. Only the first call has an effect.
func (f *Future) resolve(hive models.Hive, err error) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		return
	default:
	}
	f.hive = hive
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(hive, err)
	}
}

// Done returns a channel that is closed once the operation completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation completed or ctx is done.
func (f *Future) Wait(ctx context.Context) (models.Hive, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.hive, f.err
	case <-ctx.Done():
		return models.Hive{}, ctx.Err()
	}
}

// Err returns the error of a completed operation, nil while pending.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// OnComplete registers fn to run once the operation completed. If it
// already has, fn runs immediately on the calling goroutine.
func (f *Future) OnComplete(fn func(models.Hive, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		hive, err := f.hive, f.err
		f.mu.Unlock()
		fn(hive, err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}
