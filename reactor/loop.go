package reactor

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// Loop is a single-threaded reactor. See the package documentation for the
// threading contract.
type Loop struct {
	logger *logiface.Logger[logiface.Event]
	poller *poller

	timers   timerHeap
	timerSeq uint64

	fds    map[int]*fdWatchers
	asyncs []*Async

	// refs counts active timers, active io watchers and manual references.
	refs int

	iteration uint64

	// wakeMu guards the wake-up descriptors against concurrent Close, since
	// Async.Send is the only cross-goroutine entry point.
	wakeMu      sync.RWMutex
	wakeR       int
	wakeW       int
	wakePending atomic.Uint32
	closed      atomic.Bool
}

// New creates a new Loop, acquiring a poller and a wake-up descriptor.
func New(opts ...Option) (*Loop, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	p, err := newPoller(cfg.maxEvents)
	if err != nil {
		return nil, err
	}

	wakeR, wakeW, err := createWakeFd()
	if err != nil {
		_ = p.close()
		return nil, err
	}

	if err := p.add(wakeR, EventRead); err != nil {
		_ = closeWakeFd(wakeR, wakeW)
		_ = p.close()
		return nil, err
	}

	return &Loop{
		logger: cfg.logger,
		poller: p,
		timers: make(timerHeap, 0),
		fds:    make(map[int]*fdWatchers),
		wakeR:  wakeR,
		wakeW:  wakeW,
	}, nil
}

// Ref adds a manual reference, keeping the loop active (and RunOnce
// willing to block) until a matching Unref.
func (l *Loop) Ref() { l.refs++ }

// Unref releases a reference taken by Ref.
func (l *Loop) Unref() {
	if l.refs > 0 {
		l.refs--
	}
}

// Active reports whether any started timer, started io watcher, or manual
// reference keeps the loop alive.
func (l *Loop) Active() bool { return l.refs > 0 }

// Iteration returns the number of completed RunOnce / RunNoWait calls.
func (l *Loop) Iteration() uint64 { return l.iteration }

// RunOnce performs a single iteration: poll (blocking until the next timer
// deadline or readiness when the loop is active, otherwise not at all), then
// dispatch io watchers, async watchers and expired timers, in that order.
func (l *Loop) RunOnce() error {
	return l.run(true)
}

// RunNoWait performs a single iteration without blocking in the poll.
func (l *Loop) RunNoWait() error {
	return l.run(false)
}

func (l *Loop) run(block bool) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}

	timeout := 0
	if block && l.refs > 0 {
		timeout = l.calculateTimeout()
	}

	ready, err := l.poller.wait(timeout)
	if err != nil {
		l.logger.Err().
			Err(err).
			Int("timeout_ms", timeout).
			Log("reactor: poll failed")
		return fmt.Errorf("reactor: poll: %w", err)
	}

	var woken bool
	for _, r := range ready {
		if r.fd == l.wakeR {
			woken = true
			continue
		}
		l.dispatchIO(r.fd, r.events)
	}
	if woken {
		drainWake(l.wakeR)
		l.wakePending.Store(0)
	}
	l.dispatchAsyncs()
	l.runTimers()

	l.iteration++
	return nil
}

// calculateTimeout returns the poll timeout in milliseconds: -1 if there are
// no timers, else the delay until the earliest deadline, rounded up so that
// a sub-millisecond wait does not degrade into a busy poll.
func (l *Loop) calculateTimeout() int {
	if len(l.timers) == 0 {
		return -1
	}
	delay := time.Until(l.timers[0].when)
	if delay <= 0 {
		return 0
	}
	ms := delay / time.Millisecond
	if delay%time.Millisecond != 0 {
		ms++
	}
	if ms > maxPollTimeout {
		ms = maxPollTimeout
	}
	return int(ms)
}

// maxPollTimeout caps a single poll, in milliseconds.
const maxPollTimeout = 1 << 30

// wakeup interrupts a blocking poll. Redundant wake-ups are coalesced until
// the loop drains the wake-up descriptor.
func (l *Loop) wakeup() error {
	l.wakeMu.RLock()
	defer l.wakeMu.RUnlock()
	if l.closed.Load() {
		return ErrLoopClosed
	}
	if !l.wakePending.CompareAndSwap(0, 1) {
		return nil
	}
	if err := writeWake(l.wakeW); err != nil {
		l.wakePending.Store(0)
		return err
	}
	return nil
}

// safeExecute runs a watcher callback, logging rather than propagating a
// panic so that one watcher cannot wedge the loop.
func (l *Loop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Err().
				Str("panic", fmt.Sprint(r)).
				Log("reactor: watcher callback panicked")
		}
	}()
	fn()
}

// Close releases the poller and the wake-up descriptor. All watchers are
// implicitly stopped. Subsequent calls are no-ops.
func (l *Loop) Close() error {
	l.wakeMu.Lock()
	defer l.wakeMu.Unlock()
	if l.closed.Swap(true) {
		return nil
	}

	for _, t := range l.timers {
		t.index = -1
		t.gen++
	}
	l.timers = nil
	for _, e := range l.fds {
		for _, w := range e.watchers {
			w.active = false
		}
	}
	l.fds = nil
	for _, a := range l.asyncs {
		a.active = false
	}
	l.asyncs = nil
	l.refs = 0

	pollErr := l.poller.close()
	wakeErr := closeWakeFd(l.wakeR, l.wakeW)
	if pollErr != nil {
		return pollErr
	}
	return wakeErr
}

// timerHeap is a min-heap of timers, ordered by deadline then start order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

var _ heap.Interface = (*timerHeap)(nil)
