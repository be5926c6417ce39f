//go:build darwin

package reactor

import (
	"golang.org/x/sys/unix"
)

// readiness is a single (fd, events) pair reported by the kernel.
type readiness struct {
	fd     int
	events Events
}

// poller manages I/O event registration using kqueue (Darwin).
//
// kqueue reports read and write readiness as separate events, so a single
// wait may yield two entries for the same fd.
type poller struct {
	kq       int
	eventBuf []unix.Kevent_t
	ready    []readiness
}

func newPoller(maxEvents int) (*poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &poller{
		kq:       kq,
		eventBuf: make([]unix.Kevent_t, maxEvents),
		ready:    make([]readiness, 0, maxEvents),
	}, nil
}

func (p *poller) close() error {
	return unix.Close(p.kq)
}

func (p *poller) add(fd int, events Events) error {
	kevents := eventsToKevents(fd, events, unix.EV_ADD|unix.EV_ENABLE)
	if len(kevents) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

func (p *poller) modify(fd int, oldEvents, events Events) error {
	if removed := oldEvents &^ events; removed != 0 {
		// ignore errors on delete
		_, _ = unix.Kevent(p.kq, eventsToKevents(fd, removed, unix.EV_DELETE), nil, nil)
	}
	if added := events &^ oldEvents; added != 0 {
		if _, err := unix.Kevent(p.kq, eventsToKevents(fd, added, unix.EV_ADD|unix.EV_ENABLE), nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (p *poller) remove(fd int, oldEvents Events) error {
	kevents := eventsToKevents(fd, oldEvents, unix.EV_DELETE)
	if len(kevents) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

// wait polls for readiness, blocking for at most timeoutMs (-1 meaning
// indefinitely). The returned slice is reused by the next call.
func (p *poller) wait(timeoutMs int) ([]readiness, error) {
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64((timeoutMs % 1000) * 1000000),
		}
	}
	n, err := unix.Kevent(p.kq, nil, p.eventBuf, ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	p.ready = p.ready[:0]
	for i := 0; i < n; i++ {
		p.ready = append(p.ready, readiness{
			fd:     int(p.eventBuf[i].Ident),
			events: keventToEvents(&p.eventBuf[i]),
		})
	}
	return p.ready, nil
}

// eventsToKevents converts Events to kqueue kevent structures.
func eventsToKevents(fd int, events Events, flags uint16) []unix.Kevent_t {
	var kevents []unix.Kevent_t
	if events&EventRead != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  flags,
		})
	}
	if events&EventWrite != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  flags,
		})
	}
	return kevents
}

// keventToEvents converts a kqueue event to Events.
func keventToEvents(kev *unix.Kevent_t) Events {
	var events Events
	switch kev.Filter {
	case unix.EVFILT_READ:
		events |= EventRead
	case unix.EVFILT_WRITE:
		events |= EventWrite
	}
	if kev.Flags&unix.EV_ERROR != 0 {
		events |= EventError
	}
	if kev.Flags&unix.EV_EOF != 0 {
		events |= EventHangup
	}
	return events
}
