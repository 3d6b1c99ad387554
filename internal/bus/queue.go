package bus

import (
	"sync"
	"time"
)

// backpressureThreshold is the number of messages in flight beyond which
// a producer sleeps briefly before enqueueing another, giving a slow
// consumer room to drain.
const backpressureThreshold = 10
const backpressureDelay = 5 * time.Millisecond

// Queue is a coalescing message queue with no fixed capacity; the only
// limit on its growth is Send's backpressure sleep. The engine (its scan,
// line-read and watch paths) calls Send; the front end draining
// Engine.Bus() calls Receive.
type Queue struct {
	mu      sync.Mutex
	pending []Message
	notify  chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Send enqueues msg. If msg is Coalescible and an already-queued message
// of the same kind reports it should be replaced, the older message is
// dropped instead of both being delivered. Once more than
// backpressureThreshold messages are queued, Send sleeps briefly before
// returning, slowing a producer down to match a lagging consumer.
func (q *Queue) Send(msg Message) {
	q.mu.Lock()
	if _, ok := msg.(Coalescible); ok {
		for i, pending := range q.pending {
			if pc, ok := pending.(Coalescible); ok && pc.Replace(msg) {
				q.pending[i] = msg
				q.mu.Unlock()
				q.signal()
				return
			}
		}
	}
	q.pending = append(q.pending, msg)
	overloaded := len(q.pending) > backpressureThreshold
	q.mu.Unlock()
	q.signal()

	if overloaded {
		time.Sleep(backpressureDelay)
	}
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Receive blocks until at least one message is queued, then returns and
// removes the oldest one.
func (q *Queue) Receive() Message {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			msg := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return msg
		}
		q.mu.Unlock()
		<-q.notify
	}
}

// Len reports the number of messages currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
