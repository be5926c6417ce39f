//go:build linux || darwin

package fibersched

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// ProcessWait implements Hooks.ProcessWait. A helper goroutine performs the
// blocking wait4 and posts its result through the inbox; if the operation is
// cancelled the helper is abandoned, still reaping the child when it exits.
func (s *Scheduler) ProcessWait(ctx context.Context, pid, flags int) (ProcessStatus, error) {
	op, err := s.begin(ctx, opProcess, nil)
	if err != nil {
		return ProcessStatus{}, err
	}

	go func() {
		status, err := wait4(pid, flags)
		s.inbox.post(inboxEntry{op: op, res: opResult{status: status, err: err}})
	}()

	s.suspend(ctx, op)
	return op.result.status, op.result.err
}

func wait4(pid, flags int) (ProcessStatus, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, flags, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ProcessStatus{}, fmt.Errorf("fibersched: wait4 %d: %w", pid, err)
		}
		if wpid == 0 {
			return ProcessStatus{}, nil
		}
		status := ProcessStatus{Pid: wpid}
		switch {
		case ws.Exited():
			status.code = ws.ExitStatus()
		case ws.Signaled():
			status.signaled = true
			status.signal = ws.Signal()
		case ws.Stopped():
			status.stopped = true
			status.signal = ws.StopSignal()
		}
		return status, nil
	}
}
