//go:build linux || darwin

package reactor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isRegistered reports whether err indicates the fd was already present in
// the kernel interest list.
func isRegistered(err error) bool {
	return errors.Is(err, unix.EEXIST)
}

// isGone reports whether err indicates the fd is no longer in the kernel
// interest list, typically because it was closed out from under a watcher.
func isGone(err error) bool {
	return errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EBADF)
}
