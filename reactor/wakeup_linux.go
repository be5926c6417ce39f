//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// createWakeFd creates an eventfd for wake-up notifications (Linux).
// Returns the single eventfd as both read and write ends.
func createWakeFd() (int, int, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	return fd, fd, err
}

var wakeBuf = [8]byte{1, 0, 0, 0, 0, 0, 0, 0}

// writeWake increments the eventfd counter. A full counter (EAGAIN) already
// guarantees a wake-up, so it is not an error.
func writeWake(fd int) error {
	_, err := unix.Write(fd, wakeBuf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// drainWake resets the eventfd counter.
func drainWake(fd int) {
	var buf [8]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
	}
}

// closeWakeFd closes both ends, which are the same descriptor on Linux.
func closeWakeFd(r, w int) error {
	_ = w
	return unix.Close(r)
}
