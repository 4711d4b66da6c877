package task

import (
	"context"
	"errors"
	"sync"
)

// ErrSeriesFinished is returned when work is attached to a series that has
// already completed.
var ErrSeriesFinished = errors.New("series already finished")

// Series is the completion graph of one in-flight request. Tasks attached to
// it must all complete, and the dispatcher must Close it, before the series
// completes and runs its continuations.
type Series struct {
	mu        sync.Mutex
	attached  map[*Task]struct{}
	pending   int
	closed    bool
	finished  bool
	err       error
	callbacks []func()
	done      chan struct{}
}

// NewSeries creates an open series with no attached work.
func NewSeries() *Series {
	return &Series{
		attached: make(map[*Task]struct{}),
		done:     make(chan struct{}),
	}
}

// Attach chains t into the series. Attaching a nil task, or the same task
// twice, is a no-op.
func (s *Series) Attach(t *Task) error {
	if t == nil {
		return nil
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSeriesFinished
	}
	if _, ok := s.attached[t]; ok {
		s.mu.Unlock()
		return nil
	}
	s.attached[t] = struct{}{}
	s.pending++
	s.mu.Unlock()

	t.OnComplete(s.release)
	return nil
}

// OnComplete registers fn to run once the series completes. Continuations run
// in registration order. If the series has already completed, fn runs
// immediately.
func (s *Series) OnComplete(fn func()) {
	s.mu.Lock()
	if !s.finished {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Close tells the series that the dispatcher will not attach more work
// itself. Work already attached may still attach sub-work until it finishes.
// Close is idempotent.
func (s *Series) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.maybeFinish()
}

// Done returns a channel closed once the series has completed and all of its
// continuations have run.
func (s *Series) Done() <-chan struct{} {
	return s.done
}

// Err returns the first error reported by an attached task.
func (s *Series) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pending returns the number of attached tasks that have not completed.
func (s *Series) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Wait blocks until the series completes or ctx is done.
func (s *Series) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Series) release(err error) {
	s.mu.Lock()
	s.pending--
	if err != nil && s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.maybeFinish()
}

// maybeFinish completes the series once it is closed and nothing is pending.
// Exactly one caller observes the transition.
func (s *Series) maybeFinish() {
	s.mu.Lock()
	if s.finished || !s.closed || s.pending > 0 {
		s.mu.Unlock()
		return
	}
	s.finished = true
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	close(s.done)
}
