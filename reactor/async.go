package reactor

import (
	"sync/atomic"
)

// Async lets any goroutine wake the loop and have a callback run on the
// loop's goroutine. Sends are coalesced: any number of Send calls between
// two dispatches result in a single callback invocation.
//
// Async watchers do not keep the loop active.
type Async struct {
	loop    *Loop
	cb      func()
	pending atomic.Bool
	active  bool
}

// NewAsync returns a stopped Async bound to the loop.
func (l *Loop) NewAsync(cb func()) *Async {
	return &Async{loop: l, cb: cb}
}

// Start registers the watcher. A Send that happened while stopped is
// delivered on the next iteration.
func (a *Async) Start() error {
	l := a.loop
	if l.closed.Load() {
		return ErrLoopClosed
	}
	if a.active {
		return ErrWatcherActive
	}
	a.active = true
	l.asyncs = append(l.asyncs, a)
	if a.pending.Load() {
		return l.wakeup()
	}
	return nil
}

// Stop unregisters the watcher. A pending signal is retained.
func (a *Async) Stop() {
	if !a.active {
		return
	}
	a.active = false
	l := a.loop
	for i, other := range l.asyncs {
		if other == a {
			l.asyncs = append(l.asyncs[:i], l.asyncs[i+1:]...)
			break
		}
	}
}

// Active reports whether the watcher is started.
func (a *Async) Active() bool { return a.active }

// Pending reports whether a Send has not yet been dispatched.
func (a *Async) Pending() bool { return a.pending.Load() }

// Send marks the watcher pending and wakes the loop. It is safe to call from
// any goroutine. It returns ErrLoopClosed once the loop is closed.
func (a *Async) Send() error {
	if a.pending.Swap(true) {
		return a.loop.wakeupIfOpen()
	}
	return a.loop.wakeup()
}

// wakeupIfOpen reports closure without writing, for coalesced sends.
func (l *Loop) wakeupIfOpen() error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	return nil
}

// dispatchAsyncs runs the callbacks of started, pending async watchers.
func (l *Loop) dispatchAsyncs() {
	if len(l.asyncs) == 0 {
		return
	}
	snapshot := make([]*Async, len(l.asyncs))
	copy(snapshot, l.asyncs)
	for _, a := range snapshot {
		if !a.active || !a.pending.Swap(false) {
			continue
		}
		if a.cb != nil {
			l.safeExecute(a.cb)
		}
	}
}
