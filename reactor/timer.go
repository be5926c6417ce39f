package reactor

import (
	"container/heap"
	"time"
)

// Timer fires its callback once after a delay, then optionally repeatedly at
// a fixed interval. A started timer keeps the loop active.
type Timer struct {
	loop   *Loop
	cb     func()
	when   time.Time
	repeat time.Duration
	seq    uint64
	// gen invalidates an expired-but-not-yet-run firing when the timer is
	// stopped or restarted by an earlier callback in the same batch.
	gen   uint64
	index int
}

// NewTimer returns a stopped Timer bound to the loop.
func (l *Loop) NewTimer(cb func()) *Timer {
	return &Timer{loop: l, cb: cb, index: -1}
}

// Start arms the timer to fire after the given delay (clamped to zero), and
// thereafter every repeat interval if repeat > 0.
func (t *Timer) Start(after, repeat time.Duration) error {
	l := t.loop
	if l.closed.Load() {
		return ErrLoopClosed
	}
	if t.index >= 0 {
		return ErrWatcherActive
	}
	if after < 0 {
		after = 0
	}
	if repeat < 0 {
		repeat = 0
	}
	l.timerSeq++
	t.seq = l.timerSeq
	t.gen++
	t.when = time.Now().Add(after)
	t.repeat = repeat
	heap.Push(&l.timers, t)
	l.refs++
	return nil
}

// Stop disarms the timer. Stopping a stopped timer is a no-op.
func (t *Timer) Stop() {
	t.gen++
	if t.index < 0 {
		return
	}
	heap.Remove(&t.loop.timers, t.index)
	t.loop.Unref()
}

// Active reports whether the timer is armed.
func (t *Timer) Active() bool { return t.index >= 0 }

// Remaining returns the time until the timer next fires, or zero if it is
// not armed or already due.
func (t *Timer) Remaining() time.Duration {
	if t.index < 0 {
		return 0
	}
	if d := time.Until(t.when); d > 0 {
		return d
	}
	return 0
}

type expiredTimer struct {
	t   *Timer
	gen uint64
}

// runTimers executes all expired timers, in deadline order.
func (l *Loop) runTimers() {
	if len(l.timers) == 0 {
		return
	}
	now := time.Now()
	var expired []expiredTimer
	for len(l.timers) > 0 && !l.timers[0].when.After(now) {
		t := heap.Pop(&l.timers).(*Timer)
		if t.repeat > 0 {
			t.when = t.when.Add(t.repeat)
			if t.when.Before(now) {
				t.when = now.Add(t.repeat)
			}
			l.timerSeq++
			t.seq = l.timerSeq
			heap.Push(&l.timers, t)
		} else {
			l.Unref()
		}
		expired = append(expired, expiredTimer{t: t, gen: t.gen})
	}
	for _, e := range expired {
		if l.closed.Load() {
			return
		}
		if e.t.gen != e.gen || e.t.cb == nil {
			continue
		}
		l.safeExecute(e.t.cb)
	}
}
