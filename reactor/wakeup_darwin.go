//go:build darwin

package reactor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// createWakeFd creates a self-pipe for wake-up notifications (Darwin).
// Returns the read end and the write end of the pipe.
func createWakeFd() (int, int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}

	cleanup := func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	}

	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])

	if err := unix.SetNonblock(fds[0], true); err != nil {
		cleanup()
		return 0, 0, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		cleanup()
		return 0, 0, err
	}

	return fds[0], fds[1], nil
}

var wakeBuf = [1]byte{1}

// writeWake writes a single byte. A full pipe (EAGAIN) already guarantees a
// wake-up, so it is not an error.
func writeWake(fd int) error {
	_, err := unix.Write(fd, wakeBuf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// drainWake empties the pipe.
func drainWake(fd int) {
	var buf [64]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
	}
}

func closeWakeFd(r, w int) error {
	return errors.Join(unix.Close(r), unix.Close(w))
}
