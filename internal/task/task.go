// Package task sequences devrig targets, running each at most once per
// invocation regardless of how many other targets depend on it.
package task

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// ErrNilTarget is returned when a nil Fn is scheduled.
var ErrNilTarget = errors.New("task target cannot be nil")

// Fn is a runnable target.
type Fn func(context.Context) error

type tracker struct {
	mu       sync.Mutex
	done     map[uintptr]error
	inFlight map[uintptr]chan struct{}
}

var shared = &tracker{
	done:     make(map[uintptr]error),
	inFlight: make(map[uintptr]chan struct{}),
}

// Serial runs the targets in order, stopping at the first error. Targets
// that already ran this invocation are skipped, returning their prior
// result.
func Serial(ctx context.Context, fns ...Fn) error {
	for _, fn := range fns {
		if err := shared.run(ctx, fn); err != nil {
			return err
		}
	}

	return nil
}

// Parallel runs the targets concurrently and returns the first error.
func Parallel(ctx context.Context, fns ...Fn) error {
	if len(fns) == 0 {
		return nil
	}

	var wg sync.WaitGroup

	errCh := make(chan error, len(fns))

	for _, fn := range fns {
		wg.Add(1)

		go func() {
			defer wg.Done()
			errCh <- shared.run(ctx, fn)
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}

	return nil
}

// Reset clears the execution cache so every target runs again. Used by tests
// and by watch-style reinvocation.
func Reset() {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	shared.done = make(map[uintptr]error)
}

func (t *tracker) run(ctx context.Context, fn Fn) error {
	if fn == nil {
		return ErrNilTarget
	}

	key := reflect.ValueOf(fn).Pointer()

	t.mu.Lock()

	if err, ok := t.done[key]; ok {
		t.mu.Unlock()

		return err
	}

	if ch, ok := t.inFlight[key]; ok {
		t.mu.Unlock()
		<-ch
		t.mu.Lock()
		defer t.mu.Unlock()

		return t.done[key]
	}

	ch := make(chan struct{})
	t.inFlight[key] = ch
	t.mu.Unlock()

	err := fn(ctx)

	t.mu.Lock()
	t.done[key] = err
	delete(t.inFlight, key)
	close(ch)
	t.mu.Unlock()

	return err
}
