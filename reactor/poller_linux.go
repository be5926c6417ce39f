//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// readiness is a single (fd, events) pair reported by the kernel.
type readiness struct {
	fd     int
	events Events
}

// poller manages I/O event registration using epoll (Linux).
//
// Registration is level-triggered. The poller only translates between Events
// and the kernel representation; per-fd fan-out is handled by the Loop.
type poller struct {
	epfd     int
	eventBuf []unix.EpollEvent
	ready    []readiness
}

func newPoller(maxEvents int) (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &poller{
		epfd:     epfd,
		eventBuf: make([]unix.EpollEvent, maxEvents),
		ready:    make([]readiness, 0, maxEvents),
	}, nil
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}

// add registers fd, returning unix.EEXIST if it is already registered.
func (p *poller) add(fd int, events Events) error {
	ev := unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// modify replaces the interest set of an already registered fd, returning
// unix.ENOENT if it is not registered.
func (p *poller) modify(fd int, _, events Events) error {
	ev := unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *poller) remove(fd int, _ Events) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait polls for readiness, blocking for at most timeoutMs (-1 meaning
// indefinitely). The returned slice is reused by the next call.
func (p *poller) wait(timeoutMs int) ([]readiness, error) {
	n, err := unix.EpollWait(p.epfd, p.eventBuf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	p.ready = p.ready[:0]
	for i := 0; i < n; i++ {
		p.ready = append(p.ready, readiness{
			fd:     int(p.eventBuf[i].Fd),
			events: epollToEvents(p.eventBuf[i].Events),
		})
	}
	return p.ready, nil
}

// eventsToEpoll converts Events to epoll event flags.
func eventsToEpoll(events Events) uint32 {
	var epollEvents uint32
	if events&EventRead != 0 {
		epollEvents |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		epollEvents |= unix.EPOLLOUT
	}
	return epollEvents
}

// epollToEvents converts epoll event flags to Events.
func epollToEvents(epollEvents uint32) Events {
	var events Events
	if epollEvents&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		events |= EventRead
	}
	if epollEvents&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if epollEvents&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if epollEvents&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		events |= EventHangup
	}
	return events
}
