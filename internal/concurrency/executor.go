// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across a fixed pool of worker goroutines,
// using lock-free local rings with a global channel fallback. It backs
// the reactor dispatch strategy: readiness events become tasks, and the
// pool bound caps protocol-processing concurrency.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-stomp/api"
)

// TaskFunc is one unit of work.
type TaskFunc func()

// Executor runs tasks on a bounded worker pool.
type Executor struct {
	globalQueue chan TaskFunc
	localRings  []*Ring[TaskFunc]
	closeCh     chan struct{}
	closed      atomic.Bool
	wg          sync.WaitGroup
	submitIdx   atomic.Uint64
}

// NewExecutor creates an Executor with numWorkers goroutines.
// numWorkers <= 0 selects runtime.NumCPU().
func NewExecutor(numWorkers int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		globalQueue: make(chan TaskFunc, numWorkers*4),
		localRings:  make([]*Ring[TaskFunc], numWorkers),
		closeCh:     make(chan struct{}),
	}
	for i := 0; i < numWorkers; i++ {
		e.localRings[i] = NewRing[TaskFunc](1024)
	}
	for i := 0; i < numWorkers; i++ {
		e.wg.Add(1)
		go e.run(i)
	}
	return e
}

// Submit enqueues a task, preferring a local ring and falling back to
// the global queue. Blocks when every queue is full, providing
// backpressure toward the poller. Returns an error once closed.
func (e *Executor) Submit(task TaskFunc) error {
	if e.closed.Load() {
		return api.ErrExecutorClosed
	}
	idx := int(e.submitIdx.Add(1)) % len(e.localRings)
	if e.localRings[idx].Enqueue(task) {
		return nil
	}
	select {
	case e.globalQueue <- task:
		return nil
	case <-e.closeCh:
		return api.ErrExecutorClosed
	}
}

// NumWorkers returns the pool size.
func (e *Executor) NumWorkers() int {
	return len(e.localRings)
}

// Close shuts the executor down and waits for the workers to exit.
// Queued tasks that have not started are dropped.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.closeCh)
		e.wg.Wait()
	}
}

func (e *Executor) run(id int) {
	defer e.wg.Done()
	local := e.localRings[id]
	for {
		if task, ok := local.Dequeue(); ok {
			e.safeExecute(task)
			continue
		}
		select {
		case task := <-e.globalQueue:
			e.safeExecute(task)
		case <-e.closeCh:
			return
		default:
			select {
			case task := <-e.globalQueue:
				e.safeExecute(task)
			case <-e.closeCh:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}
}

// safeExecute isolates task panics so one connection's failure cannot
// take down the pool.
func (e *Executor) safeExecute(task TaskFunc) {
	defer func() { _ = recover() }()
	task()
}
