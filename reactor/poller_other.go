//go:build !linux && !darwin

package reactor

type readiness struct {
	fd     int
	events Events
}

// poller is unavailable on this platform; newPoller always fails.
type poller struct{}

func newPoller(int) (*poller, error) { return nil, ErrUnsupported }

func (*poller) close() error { return ErrUnsupported }

func (*poller) add(int, Events) error { return ErrUnsupported }

func (*poller) modify(int, Events, Events) error { return ErrUnsupported }

func (*poller) remove(int, Events) error { return ErrUnsupported }

func (*poller) wait(int) ([]readiness, error) { return nil, ErrUnsupported }
