package link

import (
	"sync"
	"time"
)

// frameQueue is the unbounded buffer between the router and the passive
// dispatch worker. put never blocks the router.
type frameQueue struct {
	mu     sync.Mutex
	items  []queuedFrame
	signal chan struct{}
}

func newFrameQueue() *frameQueue {
	return &frameQueue{
		signal: make(chan struct{}, 1),
	}
}

func (q *frameQueue) put(qf queuedFrame) {
	q.mu.Lock()
	q.items = append(q.items, qf)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop removes the oldest entry, waiting up to timeout for one to arrive
func (q *frameQueue) pop(timeout time.Duration) (queuedFrame, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			qf := q.items[0]
			q.items = q.items[1:]
			if len(q.items) > 0 {
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return qf, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-timer.C:
			return queuedFrame{}, false
		}
	}
}
