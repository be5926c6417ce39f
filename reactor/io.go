package reactor

// IO watches a file descriptor for readiness. Several IO watchers may share
// a descriptor. A started watcher keeps the loop active.
//
// Readiness is level-triggered: a started watcher is invoked on every
// iteration for as long as the condition holds.
type IO struct {
	loop   *Loop
	cb     func(Events)
	fd     int
	events Events
	active bool
}

// fdWatchers is the per-descriptor fan-out list.
type fdWatchers struct {
	watchers   []*IO
	registered Events
}

func (e *fdWatchers) interest() Events {
	var events Events
	for _, w := range e.watchers {
		events |= w.events
	}
	return events
}

// NewIO returns a stopped IO watcher for fd. Only EventRead and EventWrite
// are meaningful in events; error and hangup conditions are always reported.
func (l *Loop) NewIO(fd int, events Events, cb func(Events)) *IO {
	return &IO{loop: l, cb: cb, fd: fd, events: events & interestMask}
}

// Fd returns the watched descriptor.
func (w *IO) Fd() int { return w.fd }

// Events returns the requested interest set.
func (w *IO) Events() Events { return w.events }

// Active reports whether the watcher is started.
func (w *IO) Active() bool { return w.active }

// Start registers the watcher with the loop.
func (w *IO) Start() error {
	l := w.loop
	if l.closed.Load() {
		return ErrLoopClosed
	}
	if w.active {
		return ErrWatcherActive
	}
	if w.fd < 0 {
		return ErrFDOutOfRange
	}
	if w.events == 0 {
		return ErrNoInterest
	}

	e := l.fds[w.fd]
	if e == nil {
		e = &fdWatchers{}
		l.fds[w.fd] = e
	}
	e.watchers = append(e.watchers, w)
	if err := l.syncInterest(w.fd, e); err != nil {
		e.watchers = e.watchers[:len(e.watchers)-1]
		if len(e.watchers) == 0 {
			delete(l.fds, w.fd)
		}
		return err
	}

	w.active = true
	l.refs++
	return nil
}

// Stop unregisters the watcher. Stopping a stopped watcher is a no-op.
func (w *IO) Stop() {
	if !w.active {
		return
	}
	w.active = false
	l := w.loop
	l.Unref()

	e := l.fds[w.fd]
	if e == nil {
		return
	}
	for i, other := range e.watchers {
		if other == w {
			e.watchers = append(e.watchers[:i], e.watchers[i+1:]...)
			break
		}
	}
	if err := l.syncInterest(w.fd, e); err != nil {
		l.logger.Debug().
			Int("fd", w.fd).
			Err(err).
			Log("reactor: failed to update fd interest")
	}
	if len(e.watchers) == 0 {
		delete(l.fds, w.fd)
	}
}

// syncInterest brings the kernel registration for fd in line with the union
// of its watchers' interest.
func (l *Loop) syncInterest(fd int, e *fdWatchers) error {
	want := e.interest()
	have := e.registered
	switch {
	case want == have:
		return nil

	case want == 0:
		e.registered = 0
		if err := l.poller.remove(fd, have); err != nil && !isGone(err) {
			return err
		}
		return nil

	case have == 0:
		err := l.poller.add(fd, want)
		if isRegistered(err) {
			// stale registration, e.g. after the fd was closed and reused
			err = l.poller.modify(fd, have, want)
		}
		if err != nil {
			return err
		}

	default:
		err := l.poller.modify(fd, have, want)
		if isGone(err) {
			err = l.poller.add(fd, want)
		}
		if err != nil {
			return err
		}
	}
	e.registered = want
	return nil
}

// dispatchIO fans a readiness report out to the watchers of fd.
func (l *Loop) dispatchIO(fd int, events Events) {
	e := l.fds[fd]
	if e == nil || len(e.watchers) == 0 {
		return
	}
	// callbacks may stop or start watchers on this fd
	snapshot := make([]*IO, len(e.watchers))
	copy(snapshot, e.watchers)
	for _, w := range snapshot {
		if !w.active || w.fd != fd || w.cb == nil {
			continue
		}
		got := events & (w.events | EventError | EventHangup)
		if got == 0 {
			continue
		}
		l.safeExecute(func() { w.cb(got) })
	}
}
