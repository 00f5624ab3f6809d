package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

type Task any

type ProcessFunc func(ctx context.Context, task Task) error

// Pool is a bounded worker pool. Processing errors are counted, not
// propagated; callers that care read Failed after Stop.
type Pool struct {
	numWorkers int
	tasks      chan Task
	processor  ProcessFunc
	failed     atomic.Int64
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if err := p.processor(ctx, task); err != nil {
				p.failed.Add(1)
			}
		}
	}
}

func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Stop closes the queue and waits for in-flight tasks.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}

// Failed reports how many tasks returned an error.
func (p *Pool) Failed() int64 {
	return p.failed.Load()
}
