package fibersched

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-fibersched/reactor"
)

// inboxEntry is a request applied on the reactor side of a scheduler.
// Exactly one of op (completion of a specific operation) or unblock (a
// tag/task lookup) is meaningful.
type inboxEntry struct {
	op      *operation
	tag     any
	task    *Task
	res     opResult
	seq     uint64
	unblock bool
}

// inbox is the only goroutine-safe entry point into a scheduler: a
// mutex-guarded FIFO plus a single async watcher that wakes the reactor.
type inbox struct {
	async  *reactor.Async
	queue  *queue.Queue
	mu     sync.Mutex
	closed bool
}

func newInbox(async *reactor.Async) *inbox {
	return &inbox{async: async, queue: queue.New()}
}

// post enqueues e and wakes the reactor. It is a no-op once closed.
func (x *inbox) post(e inboxEntry) {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.queue.Add(e)
	x.mu.Unlock()
	_ = x.async.Send()
}

// wake interrupts a blocking reactor iteration without enqueuing anything.
func (x *inbox) wake() {
	_ = x.async.Send()
}

// pop dequeues a single entry.
func (x *inbox) pop() (inboxEntry, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.queue.Length() == 0 {
		return inboxEntry{}, false
	}
	return x.queue.Remove().(inboxEntry), true
}

// length returns the number of queued entries.
func (x *inbox) length() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queue.Length()
}

// close discards queued entries and rejects further posts.
func (x *inbox) close() {
	x.mu.Lock()
	x.closed = true
	x.queue = queue.New()
	x.mu.Unlock()
	x.async.Stop()
}
