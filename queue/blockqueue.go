// Package queue implements the Block Queue (component B): a FIFO of block
// numbers feeding the Coordinator's single worker, grounded on
// fetch/fetcher.go's job-channel idiom but narrowed to the §4.11 contract —
// concurrency of exactly one, plus pause/resume/clear for reorg rollback and
// graceful shutdown.
package queue

import (
	"context"
	"sync"
)

// BlockQueue is a FIFO of pending block numbers. It is safe for concurrent
// use by one producer (the head subscription and backfill enqueue) and one
// consumer (the Coordinator's worker loop).
type BlockQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []uint64
	paused bool
	closed bool
}

// New returns an empty, running BlockQueue.
func New() *BlockQueue {
	q := &BlockQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends n to the tail unless n is already pending. A no-op after
// Close.
func (q *BlockQueue) Enqueue(n uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	for _, pending := range q.items {
		if pending == n {
			return
		}
	}
	q.items = append(q.items, n)
	q.cond.Signal()
}

// Pause stops Dequeue from returning new items until Resume is called.
// Pending items stay queued.
func (q *BlockQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = true
}

// Resume re-enables Dequeue after Pause.
func (q *BlockQueue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = false
	q.cond.Broadcast()
}

// Clear discards every pending item without closing the queue.
func (q *BlockQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Len reports the number of pending items, for the Coordinator's queue-depth
// gauge.
func (q *BlockQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dequeue blocks until an item is available, the queue is resumed from a
// paused state, or ctx is cancelled. Returns ok=false only on cancellation or
// Close.
func (q *BlockQueue) Dequeue(ctx context.Context) (n uint64, ok bool) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		case <-done:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closed {
			return 0, false
		}
		if ctx.Err() != nil {
			return 0, false
		}
		if !q.paused && len(q.items) > 0 {
			n = q.items[0]
			q.items = q.items[1:]
			return n, true
		}
		q.cond.Wait()
	}
}

// Close wakes every blocked Dequeue and marks the queue permanently closed.
func (q *BlockQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
