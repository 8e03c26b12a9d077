// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/resonance-meter/combat-core/internal/decode"
)

// taggedEvent pairs a decoded event with the flow it came from.
type taggedEvent struct {
	server Server
	event  decode.Event
}

// EventQueue is an unbounded, never-blocking, never-dropping queue between
// the capture/decode goroutines (one per flow) and a single consumer
// goroutine. depth is purely advisory: it exists for observe.QueueMonitor
// to warn on, not to gate producers — a flow's decode path must never
// stall waiting on the consumer.
type EventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []taggedEvent
	closed bool

	depth atomic.Int64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues an event. It never blocks and never drops an event while
// the queue is open; events pushed after Close are discarded.
func (q *EventQueue) Push(server Server, event decode.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, taggedEvent{server: server, event: event})
	q.mu.Unlock()
	q.depth.Add(1)
	q.cond.Signal()
}

// Depth returns the current advisory queue length.
func (q *EventQueue) Depth() int64 {
	return q.depth.Load()
}

// Close unblocks any goroutine parked in Run, causing it to return.
func (q *EventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Run drains the queue, calling handle for every event in FIFO order,
// until Close is called and the queue is empty. Intended to run in its
// own goroutine, one per EventQueue.
func (q *EventQueue) Run(handle func(Server, decode.Event)) {
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		batch := q.items
		q.items = nil
		q.mu.Unlock()

		for _, item := range batch {
			handle(item.server, item.event)
			q.depth.Add(-1)
		}
	}
}
