// Package queue hands task ids from connection handlers to workers.
package queue

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("queue: closed")

// Queue is an unbounded FIFO of task ids. Push never blocks, Pop blocks
// until an id is available.
type Queue struct {
	items  *list.List
	locker *sync.Mutex
	notify chan struct{}
	done   chan struct{}
	closed bool
}

func New() *Queue {
	return &Queue{
		items:  list.New(),
		locker: new(sync.Mutex),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (q *Queue) wakeup() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Push appends id. Ids pushed after Close are dropped.
func (q *Queue) Push(id uint32) {
	q.locker.Lock()
	if q.closed {
		q.locker.Unlock()
		return
	}
	q.items.PushBack(id)
	q.locker.Unlock()
	q.wakeup()
}

// Pop removes the oldest id, waiting for one when the queue is empty.
func (q *Queue) Pop(ctx context.Context) (uint32, error) {
	for {
		q.locker.Lock()
		if q.closed {
			q.locker.Unlock()
			return 0, ErrClosed
		}
		if e := q.items.Front(); e != nil {
			q.items.Remove(e)
			more := q.items.Len() > 0
			q.locker.Unlock()
			if more {
				// pass the wakeup on to another waiting Pop
				q.wakeup()
			}
			return e.Value.(uint32), nil
		}
		q.locker.Unlock()

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (q *Queue) Len() int {
	defer q.locker.Unlock()
	q.locker.Lock()
	return q.items.Len()
}

// Close wakes every blocked Pop with ErrClosed. Queued ids are discarded.
func (q *Queue) Close() {
	defer q.locker.Unlock()
	q.locker.Lock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
