package fibersched

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// TaskState is the lifecycle state of a Task.
type TaskState int32

const (
	// TaskCreated is the state of a task whose body has not started.
	TaskCreated TaskState = iota
	// TaskRunning is the state of a task holding the baton, or one that
	// resumed another task and is waiting for it to yield.
	TaskRunning
	// TaskSuspended is the state of a task parked in a blocking operation.
	TaskSuspended
	// TaskTerminated is the state of a task whose body has returned.
	TaskTerminated
)

// String returns the name of the state.
func (s TaskState) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskRunning:
		return "running"
	case TaskSuspended:
		return "suspended"
	case TaskTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("TaskState(%d)", int32(s))
	}
}

// Task is a cooperative execution unit. Its body runs on a dedicated
// goroutine, but only ever while holding its scheduler's baton, so at most
// one task (or the owning goroutine) of a scheduler executes at a time.
type Task struct {
	sched  *Scheduler
	ctx    context.Context
	cancel context.CancelCauseFunc
	fn     func(ctx context.Context) error

	// op is the blocking operation the task is suspended in, if any.
	op *operation

	// wake is an Unblock that arrived while the task was not blocked.
	wake bool

	resumeCh chan struct{}
	yieldCh  chan struct{}
	done     chan struct{}

	err   error
	id    uint64
	gid   uint64
	state atomic.Int32
}

// taskGoroutines maps goroutine ID to the *Task running on it.
var taskGoroutines sync.Map

// callerTask returns the task running on the calling goroutine, if any.
func callerTask() *Task {
	if v, ok := taskGoroutines.Load(getGoroutineID()); ok {
		return v.(*Task)
	}
	return nil
}

type taskContextKey struct{}

// TaskFromContext returns the task whose context ctx is, or derives from.
func TaskFromContext(ctx context.Context) *Task {
	t, _ := ctx.Value(taskContextKey{}).(*Task)
	return t
}

// ID returns the task's identifier, unique within its scheduler.
func (t *Task) ID() uint64 { return t.id }

// Scheduler returns the scheduler the task belongs to.
func (t *Task) Scheduler() *Scheduler { return t.sched }

// State returns the current lifecycle state. Safe for concurrent use.
func (t *Task) State() TaskState { return TaskState(t.state.Load()) }

// Context returns the context passed to the task body.
func (t *Task) Context() context.Context { return t.ctx }

// Done returns a channel closed when the task terminates.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's terminal error: what the body returned, a
// PanicError, or nil. Only meaningful once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel cancels the task's context with the given cause. A task suspended
// in a blocking operation observes a *CancelledError wrapping cause once the
// scheduler next runs. Safe for concurrent use.
func (t *Task) Cancel(cause error) {
	t.cancel(cause)
}

// Raise interrupts the task's blocking operation, synchronously resuming it
// with a *CancelledError wrapping err. It must be called by the scheduler's
// owning goroutine or by another running task of the same scheduler.
func (t *Task) Raise(err error) error {
	s := t.sched
	holder, herr := s.holder()
	if herr != nil {
		return herr
	}
	switch {
	case t.State() == TaskTerminated:
		return ErrTaskTerminated
	case t == holder || t.State() != TaskSuspended || t.op == nil:
		return ErrTaskRunning
	}
	s.interrupt(t.op, err)
	return nil
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%d, %s)", t.id, t.State())
}

// main is the body of the task goroutine.
func (t *Task) main() {
	<-t.resumeCh

	t.gid = getGoroutineID()
	taskGoroutines.Store(t.gid, t)

	var completed bool
	defer func() {
		if !completed {
			t.err = errTaskExited
		}
		t.terminate()
	}()

	t.err = t.call()
	completed = true
}

// call runs the body, converting a panic into a PanicError.
func (t *Task) call() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return t.fn(t.ctx)
}

// terminate publishes the result and hands the baton back for good.
func (t *Task) terminate() {
	taskGoroutines.Delete(t.gid)
	t.cancel(nil)
	t.state.Store(int32(TaskTerminated))
	if t.err != nil {
		t.sched.reportTaskError(t, t.err)
	}
	close(t.done)
	t.yieldCh <- struct{}{}
}

// takeWake consumes a pending wake-up.
func (t *Task) takeWake() bool {
	if !t.wake {
		return false
	}
	t.wake = false
	return true
}

// suspend parks the calling task goroutine until resumed, returning the
// baton to whoever resumed it.
func (t *Task) suspend() {
	t.state.Store(int32(TaskSuspended))
	t.yieldCh <- struct{}{}
	<-t.resumeCh
}

// transfer hands the baton to t, returning once t suspends or terminates.
// The caller must hold the baton.
func (s *Scheduler) transfer(t *Task) {
	prev := s.current
	s.current = t
	t.state.Store(int32(TaskRunning))
	t.resumeCh <- struct{}{}
	<-t.yieldCh
	s.current = prev
}

// getGoroutineID returns the current goroutine's ID, parsed from the header
// of runtime.Stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
