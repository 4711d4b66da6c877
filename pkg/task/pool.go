package task

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is the completion error of work submitted after Shutdown.
var ErrPoolClosed = errors.New("worker pool is closed")

// Submitter hands a closure to the named worker queue and returns a handle
// that completes when the closure has run.
type Submitter interface {
	Submit(queue string, fn func()) *Task
}

// QueueConfig defines one named worker queue.
type QueueConfig struct {
	Name          string // Queue name routes refer to
	Workers       int    // Number of worker goroutines (defaults to PoolConfig.DefaultWorkers)
	RatePerSecond int    // Maximum jobs started per second, 0 for unlimited
}

// PoolConfig defines the configuration of a Pool.
type PoolConfig struct {
	Logger               *zap.Logger   // Logger for pool operations
	Queues               []QueueConfig // Queues created up front
	DefaultWorkers       int           // Workers for queues created on first use (defaults to GOMAXPROCS)
	DefaultRatePerSecond int           // Rate limit for queues created on first use
}

// QueueStats is a point-in-time view of a queue.
type QueueStats struct {
	Name      string
	Workers   int
	Queued    int
	Running   int
	Completed uint64
}

// Pool is a set of named worker queues. Distinct names partition work, so
// CPU-heavy handlers can be isolated from light ones. Queues referenced
// before being configured are created on demand.
type Pool struct {
	config PoolConfig
	logger *zap.Logger
	group  errgroup.Group

	mu     sync.Mutex
	queues map[string]*queue
	closed bool
}

type job struct {
	fn   func()
	task *Task
}

type queue struct {
	name    string
	workers int
	limiter ratelimit.Limiter

	mu        sync.Mutex
	cond      *sync.Cond
	jobs      []job
	closed    bool
	running   int
	completed uint64
}

// NewPool creates a pool and starts the workers of every configured queue.
func NewPool(config PoolConfig) *Pool {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultWorkers <= 0 {
		config.DefaultWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		config: config,
		logger: logger,
		queues: make(map[string]*queue),
	}

	for _, qc := range config.Queues {
		p.mu.Lock()
		p.queueLocked(qc)
		p.mu.Unlock()
	}

	return p
}

// Submit enqueues fn on the named queue. It never blocks the caller.
func (p *Pool) Submit(name string, fn func()) *Task {
	t := NewTask()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		t.Complete(ErrPoolClosed)
		return t
	}
	q, ok := p.queues[name]
	if !ok {
		q = p.queueLocked(QueueConfig{Name: name})
	}
	p.mu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		t.Complete(ErrPoolClosed)
		return t
	}
	q.jobs = append(q.jobs, job{fn: fn, task: t})
	q.mu.Unlock()
	q.cond.Signal()

	return t
}

// Stats returns the state of every queue, sorted by name.
func (p *Pool) Stats() []QueueStats {
	p.mu.Lock()
	queues := make([]*queue, 0, len(p.queues))
	for _, q := range p.queues {
		queues = append(queues, q)
	}
	p.mu.Unlock()

	stats := make([]QueueStats, 0, len(queues))
	for _, q := range queues {
		q.mu.Lock()
		stats = append(stats, QueueStats{
			Name:      q.name,
			Workers:   q.workers,
			Queued:    len(q.jobs),
			Running:   q.running,
			Completed: q.completed,
		})
		q.mu.Unlock()
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Shutdown stops accepting work and waits for queued and running jobs to finish.
// If the context is canceled first, it returns the context's error.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	for _, q := range p.queues {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cond.Broadcast()
	}
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- p.group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// queueLocked creates and starts a queue. p.mu must be held.
func (p *Pool) queueLocked(qc QueueConfig) *queue {
	if q, ok := p.queues[qc.Name]; ok {
		return q
	}

	workers := qc.Workers
	if workers <= 0 {
		workers = p.config.DefaultWorkers
	}
	rate := qc.RatePerSecond
	if rate <= 0 {
		rate = p.config.DefaultRatePerSecond
	}

	q := &queue{
		name:    qc.Name,
		workers: workers,
		limiter: ratelimit.NewUnlimited(),
	}
	if rate > 0 {
		q.limiter = ratelimit.New(rate)
	}
	q.cond = sync.NewCond(&q.mu)
	p.queues[qc.Name] = q

	for i := 0; i < workers; i++ {
		p.group.Go(func() error {
			p.work(q)
			return nil
		})
	}

	p.logger.Debug("Worker queue started",
		zap.String("queue", qc.Name),
		zap.Int("workers", workers),
		zap.Int("rate_per_second", rate),
	)

	return q
}

// work runs jobs from q until the queue is closed and drained.
func (p *Pool) work(q *queue) {
	for {
		q.mu.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 {
			q.mu.Unlock()
			return
		}
		j := q.jobs[0]
		q.jobs[0] = job{}
		q.jobs = q.jobs[1:]
		q.running++
		q.mu.Unlock()

		q.limiter.Take()

		err := runProtected(func() error {
			j.fn()
			return nil
		})
		if err != nil {
			var pe *PanicError
			if errors.As(err, &pe) {
				p.logger.Error("Panic recovered in worker",
					zap.String("queue", q.name),
					zap.Any("panic", pe.Value),
					zap.String("stack", string(pe.Stack)),
				)
			}
		}

		q.mu.Lock()
		q.running--
		q.completed++
		q.mu.Unlock()

		j.task.Complete(err)
	}
}
