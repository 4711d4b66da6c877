package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitTask(t *testing.T, tk *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	select {
	case <-tk.Done():
		return tk.Err()
	case <-ctx.Done():
		t.Fatal("timed out waiting for task")
		return nil
	}
}

func TestPoolRunsSubmittedWork(t *testing.T) {
	p := NewPool(PoolConfig{
		Logger: zap.NewNop(),
		Queues: []QueueConfig{{Name: "cpu", Workers: 2}},
	})
	defer p.Shutdown(context.Background())

	var ran atomic.Bool
	tk := p.Submit("cpu", func() { ran.Store(true) })

	require.NoError(t, waitTask(t, tk))
	assert.True(t, ran.Load())
}

func TestPoolCreatesQueuesOnDemand(t *testing.T) {
	p := NewPool(PoolConfig{DefaultWorkers: 1})
	defer p.Shutdown(context.Background())

	require.NoError(t, waitTask(t, p.Submit("adhoc", func() {})))

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "adhoc", stats[0].Name)
	assert.Equal(t, 1, stats[0].Workers)
	assert.Equal(t, uint64(1), stats[0].Completed)
}

func TestPoolPartitionsQueues(t *testing.T) {
	p := NewPool(PoolConfig{
		Queues: []QueueConfig{
			{Name: "slow", Workers: 1},
			{Name: "fast", Workers: 1},
		},
	})
	defer p.Shutdown(context.Background())

	release := make(chan struct{})
	slow := p.Submit("slow", func() { <-release })

	// The fast queue is not held up by the busy slow queue.
	require.NoError(t, waitTask(t, p.Submit("fast", func() {})))

	select {
	case <-slow.Done():
		t.Fatal("slow task finished before release")
	default:
	}
	close(release)
	require.NoError(t, waitTask(t, slow))
}

func TestPoolRecoversPanics(t *testing.T) {
	p := NewPool(PoolConfig{DefaultWorkers: 1})
	defer p.Shutdown(context.Background())

	err := waitTask(t, p.Submit("q", func() { panic("worker boom") }))
	var pe *PanicError
	require.ErrorAs(t, err, &pe)

	// The worker survives the panic.
	require.NoError(t, waitTask(t, p.Submit("q", func() {})))
}

func TestPoolShutdownDrainsAndRejects(t *testing.T) {
	p := NewPool(PoolConfig{Queues: []QueueConfig{{Name: "q", Workers: 1}}})

	var mu sync.Mutex
	count := 0
	var tasks []*Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, p.Submit("q", func() {
			mu.Lock()
			count++
			mu.Unlock()
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	for _, tk := range tasks {
		require.NoError(t, waitTask(t, tk))
	}
	assert.Equal(t, 5, count)

	assert.ErrorIs(t, waitTask(t, p.Submit("q", func() {})), ErrPoolClosed)
}

func TestPoolShutdownContextCanceled(t *testing.T) {
	p := NewPool(PoolConfig{Queues: []QueueConfig{{Name: "q", Workers: 1}}})

	release := make(chan struct{})
	defer close(release)
	p.Submit("q", func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)
}

func TestPoolRateLimitedQueue(t *testing.T) {
	p := NewPool(PoolConfig{Queues: []QueueConfig{{Name: "paced", Workers: 1, RatePerSecond: 100}}})
	defer p.Shutdown(context.Background())

	var last *Task
	for i := 0; i < 3; i++ {
		last = p.Submit("paced", func() {})
	}
	require.NoError(t, waitTask(t, last))
	assert.Equal(t, uint64(3), p.Stats()[0].Completed)
}
