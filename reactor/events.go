package reactor

import (
	"strings"
)

// Events represents a set of I/O readiness conditions.
type Events uint32

const (
	// EventRead indicates the file descriptor is ready for reading.
	EventRead Events = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
	// EventError indicates an error condition on the file descriptor.
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
)

// interestMask is the subset of Events that may be requested.
const interestMask = EventRead | EventWrite

// TimedOut reports whether e is the zero mask, which is how a readiness wait
// reports that its deadline elapsed before any interest was satisfied.
func (e Events) TimedOut() bool { return e == 0 }

// String returns a human-readable representation, e.g. "read|write".
func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	var parts []string
	if e&EventRead != 0 {
		parts = append(parts, "read")
	}
	if e&EventWrite != 0 {
		parts = append(parts, "write")
	}
	if e&EventError != 0 {
		parts = append(parts, "error")
	}
	if e&EventHangup != 0 {
		parts = append(parts, "hangup")
	}
	return strings.Join(parts, "|")
}
