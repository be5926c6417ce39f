package fibersched

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrCancelled matches every *CancelledError, via errors.Is.
	ErrCancelled = errors.New("fibersched: operation cancelled")

	// ErrNotInTask is returned when a blocking hook is called from outside a
	// task of the receiving scheduler.
	ErrNotInTask = errors.New("fibersched: not called from a task of this scheduler")

	// ErrNotOwner is returned when an owner-only method is called from a
	// goroutine that neither owns the scheduler nor runs one of its tasks.
	ErrNotOwner = errors.New("fibersched: not called from the owning goroutine")

	// ErrTagInUse is returned by Block when another task is already blocked
	// under the same tag.
	ErrTagInUse = errors.New("fibersched: tag already has a blocked task")

	// ErrInvalidTag is returned by Block for tags that cannot be used as map
	// keys.
	ErrInvalidTag = errors.New("fibersched: tag is not comparable")

	// ErrSchedulerClosed is returned once a scheduler is closing or closed.
	ErrSchedulerClosed = errors.New("fibersched: scheduler closed")

	// ErrTaskTerminated is returned when raising into a finished task.
	ErrTaskTerminated = errors.New("fibersched: task terminated")

	// ErrTaskRunning is returned when raising into a task that is not
	// suspended in a blocking operation.
	ErrTaskRunning = errors.New("fibersched: task is not suspended")

	// ErrNilFunc is returned by Spawn for a nil task body.
	ErrNilFunc = errors.New("fibersched: nil task function")

	// ErrDescriptorCondition is wrapped by a *DescriptorError when the
	// poller reports an error condition that satisfies none of the
	// requested interest.
	ErrDescriptorCondition = errors.New("fibersched: descriptor error condition")

	// errTaskExited is the terminal error of a task whose goroutine exited
	// via runtime.Goexit.
	errTaskExited = errors.New("fibersched: task goroutine exited")
)

// CancelledError is delivered at the resume point of a blocking operation
// that was interrupted, by Task.Raise, Task.Cancel, context cancellation, or
// a forced Shutdown.
type CancelledError struct {
	// Cause is the reason for cancellation.
	Cause error
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCancelled.Error(), e.Cause)
}

// Unwrap returns the cause.
func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// Is reports ErrCancelled as a match.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// DescriptorError reports a failure to wait on, read, or write a file
// descriptor.
type DescriptorError struct {
	Err error
	Op  string
	Fd  int
}

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("fibersched: %s fd %d: %v", e.Op, e.Fd, e.Err)
}

// Unwrap returns the underlying error.
func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking task body.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("fibersched: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error, so errors.Is works
// through recovered panics.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
