// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel provides the worker pool used to shade independent
// pixel bands and to average layer images row by row.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs batches of independent work items on a fixed set of
// goroutines.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers. If workers
// is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case work := <-p.queue:
			work()
		}
	}
}

// ExecuteAll runs every work item and waits for all of them. A batch of
// one runs on the calling goroutine. After Close the batch runs inline.
func (p *WorkerPool) ExecuteAll(work []func()) {
	switch {
	case len(work) == 0:
		return
	case len(work) == 1 || !p.running.Load():
		for _, fn := range work {
			fn()
		}
		return
	}

	var batch sync.WaitGroup
	batch.Add(len(work))
	for _, fn := range work {
		item := func() {
			defer batch.Done()
			fn()
		}
		select {
		case p.queue <- item:
		case <-p.done:
			item()
		}
	}
	batch.Wait()
}

// Close stops the workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still has live workers.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
