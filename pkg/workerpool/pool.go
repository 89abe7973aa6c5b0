// Package workerpool runs fire-and-forget jobs (event publishing, image
// uploads) on a fixed number of goroutines.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(job); errors.Is(err, workerpool.ErrPoolFull) {
//	    // shed load
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/resor-app/resor/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

type Pool struct {
	mu     sync.RWMutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
}

// New starts size workers with a queue of 2*size pending tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking while the queue is full.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops intake and waits for queued tasks to finish. Safe to call
// more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

func run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(rec))
		}
	}()
	task()
}
