// Package task provides the asynchronous side of SRest's dispatch: units of
// work that complete later, the per-request series they are attached to, and
// the named worker queues offloaded handlers are submitted to.
package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Task is a handle to a unit of work that completes exactly once.
type Task struct {
	mu        sync.Mutex
	done      chan struct{}
	finished  bool
	err       error
	callbacks []func(error)
}

// NewTask creates a pending task. The producer must call Complete.
func NewTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Completed returns a task that has already finished with err.
func Completed(err error) *Task {
	t := NewTask()
	t.Complete(err)
	return t
}

// Go runs fn on a new goroutine and returns a task completing with its result.
// A panic in fn is recovered and reported as a *PanicError.
func Go(fn func() error) *Task {
	t := NewTask()
	go func() {
		t.Complete(runProtected(fn))
	}()
	return t
}

// Complete marks the task finished and runs its callbacks in registration order.
// Only the first call has any effect; it reports whether it was that call.
func (t *Task) Complete(err error) bool {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return false
	}
	t.finished = true
	t.err = err
	callbacks := t.callbacks
	t.callbacks = nil
	t.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
	close(t.done)
	return true
}

// OnComplete registers fn to run when the task completes. If the task has
// already completed, fn runs immediately on the calling goroutine.
func (t *Task) OnComplete(fn func(error)) {
	t.mu.Lock()
	if !t.finished {
		t.callbacks = append(t.callbacks, fn)
		t.mu.Unlock()
		return
	}
	err := t.err
	t.mu.Unlock()
	fn(err)
}

// Done returns a channel closed once the task has completed and its callbacks ran.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the completion error, or nil while the task is pending.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task completes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PanicError reports a panic recovered from an asynchronous unit of work.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// runProtected calls fn and converts a panic into a *PanicError.
func runProtected(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return fn()
}
