package fibersched

import (
	"fmt"
	"syscall"
)

// ProcessStatus describes a state change of a child process, as reported
// by ProcessWait.
type ProcessStatus struct {
	// Pid is the process that changed state, or 0 if none did (WNOHANG).
	Pid int

	code     int
	signal   syscall.Signal
	signaled bool
	stopped  bool
}

// ExitCode returns the exit status of a process that exited normally, or -1.
func (p ProcessStatus) ExitCode() int {
	if p.signaled || p.stopped {
		return -1
	}
	return p.code
}

// Success reports whether the process exited normally with status 0.
func (p ProcessStatus) Success() bool {
	return p.Pid != 0 && !p.signaled && !p.stopped && p.code == 0
}

// Signaled reports whether the process was terminated by a signal.
func (p ProcessStatus) Signaled() bool { return p.signaled }

// Stopped reports whether the process was stopped (WUNTRACED).
func (p ProcessStatus) Stopped() bool { return p.stopped }

// Signal returns the terminating or stopping signal, if any.
func (p ProcessStatus) Signal() syscall.Signal { return p.signal }

func (p ProcessStatus) String() string {
	switch {
	case p.Pid == 0:
		return "no state change"
	case p.signaled:
		return fmt.Sprintf("pid %d killed by signal %v", p.Pid, p.signal)
	case p.stopped:
		return fmt.Sprintf("pid %d stopped by signal %v", p.Pid, p.signal)
	default:
		return fmt.Sprintf("pid %d exited with status %d", p.Pid, p.code)
	}
}
