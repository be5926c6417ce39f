package reactor

import (
	"errors"
)

// Standard errors.
var (
	// ErrLoopClosed is returned when operations are attempted on a closed loop.
	ErrLoopClosed = errors.New("reactor: loop has been closed")

	// ErrWatcherActive is returned when Start is called on a watcher that is
	// already started.
	ErrWatcherActive = errors.New("reactor: watcher is already active")

	// ErrFDOutOfRange is returned for negative file descriptors.
	ErrFDOutOfRange = errors.New("reactor: fd out of range")

	// ErrNoInterest is returned when an IO watcher is started without any of
	// EventRead or EventWrite.
	ErrNoInterest = errors.New("reactor: io watcher has no interest")

	// ErrUnsupported is returned by New on platforms without a poller.
	ErrUnsupported = errors.New("reactor: platform not supported")
)
