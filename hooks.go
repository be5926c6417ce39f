package fibersched

import (
	"context"
	"reflect"
	"time"

	"github.com/joeycumines/go-fibersched/reactor"
)

// Forever is the timeout (or sleep duration) meaning "no deadline". Any
// negative duration behaves the same.
const Forever time.Duration = -1

// Hooks is the blocking-operation surface a host runtime dispatches to.
// Every method except Unblock must be called from a task of the scheduler
// (Spawn also accepts the owning goroutine).
type Hooks interface {
	// Spawn starts fn as a new task, running it until its first suspension
	// point before returning.
	Spawn(ctx context.Context, fn func(ctx context.Context) error) (*Task, error)

	// IOWait suspends until fd satisfies some of events, returning the
	// satisfied subset, or 0 if timeout (when non-negative) elapsed first.
	IOWait(ctx context.Context, fd int, events reactor.Events, timeout time.Duration) (reactor.Events, error)

	// Sleep suspends for d, or until unblocked if d is negative, returning
	// the elapsed time.
	Sleep(ctx context.Context, d time.Duration) (time.Duration, error)

	// ProcessWait suspends until the child process pid changes state, per
	// wait4 semantics for flags.
	ProcessWait(ctx context.Context, pid, flags int) (ProcessStatus, error)

	// AddressResolve suspends until host is resolved to addresses.
	AddressResolve(ctx context.Context, host string) ([]string, error)

	// Block suspends under tag (or the task itself when tag is nil) until
	// Unblock, returning false if timeout (when non-negative) elapsed first.
	Block(ctx context.Context, tag any, timeout time.Duration) (bool, error)

	// Unblock wakes the task blocked under tag, falling back to task.
	// Safe for concurrent use; a no-op when nothing matches.
	Unblock(tag any, task *Task)

	// Close runs every task to completion then releases the scheduler.
	Close() error
}

var _ Hooks = (*Scheduler)(nil)

// begin validates a hook call and allocates its operation. A nil key
// registers the operation under the calling task.
func (s *Scheduler) begin(ctx context.Context, kind opKind, key any) (*operation, error) {
	t := callerTask()
	if t == nil || t.sched != s {
		return nil, ErrNotInTask
	}
	if s.closing {
		return nil, ErrSchedulerClosed
	}
	if ctx == nil {
		ctx = t.ctx
	}
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Cause: context.Cause(ctx)}
	}
	if err := t.ctx.Err(); err != nil {
		return nil, &CancelledError{Cause: context.Cause(t.ctx)}
	}
	if key == nil {
		key = taskKey{t}
	}
	if _, ok := s.blocked[key]; ok {
		return nil, ErrTagInUse
	}
	return &operation{
		kind:  kind,
		seq:   s.opSeq.Add(1),
		task:  t,
		key:   key,
		start: time.Now(),
	}, nil
}

// suspend records op in the Blocked-Set and parks its task until the
// operation is done. Watchers must already be armed.
func (s *Scheduler) suspend(ctx context.Context, op *operation) {
	t := op.task
	s.blocked[op.key] = op
	s.loop.Ref()
	op.ref = true
	if ctx != nil {
		s.watch(ctx, op)
	}
	if ctx != t.ctx {
		s.watch(t.ctx, op)
	}
	t.op = op

	s.logger.Trace().
		Uint64("task", t.id).
		Str("op", op.kind.String()).
		Log("fibersched: task suspended")

	t.suspend()
}

// armTimer starts a one-shot timer resolving op with res, unless timeout is
// negative.
func (s *Scheduler) armTimer(op *operation, timeout time.Duration, res opResult) error {
	if timeout < 0 {
		return nil
	}
	op.timer = s.loop.NewTimer(func() { s.fire(op, res) })
	return op.timer.Start(timeout, 0)
}

// Sleep implements Hooks.Sleep. A negative d sleeps until Unblock(nil, task)
// or cancellation. The returned duration is measured on the monotonic clock.
func (s *Scheduler) Sleep(ctx context.Context, d time.Duration) (time.Duration, error) {
	op, err := s.begin(ctx, opSleep, nil)
	if err != nil {
		return 0, err
	}
	if d < 0 && op.task.takeWake() {
		return time.Since(op.start), nil
	}
	if err := s.armTimer(op, d, opResult{}); err != nil {
		op.teardown(s.loop)
		return 0, err
	}
	s.suspend(ctx, op)
	return time.Since(op.start), op.result.err
}

// IOWait implements Hooks.IOWait. A hang-up is reported as readiness for
// the requested interest. Registration failures are returned as a
// *DescriptorError without suspending.
func (s *Scheduler) IOWait(ctx context.Context, fd int, events reactor.Events, timeout time.Duration) (reactor.Events, error) {
	op, err := s.begin(ctx, opIO, nil)
	if err != nil {
		return 0, err
	}
	interest := events & (reactor.EventRead | reactor.EventWrite)
	op.io = s.loop.NewIO(fd, interest, func(got reactor.Events) {
		satisfied := got & interest
		if got&reactor.EventHangup != 0 {
			satisfied = interest
		}
		if satisfied == 0 {
			s.fire(op, opResult{err: &DescriptorError{Fd: fd, Op: "wait", Err: ErrDescriptorCondition}})
			return
		}
		s.fire(op, opResult{events: satisfied})
	})
	if err := op.io.Start(); err != nil {
		op.teardown(s.loop)
		return 0, &DescriptorError{Fd: fd, Op: "register", Err: err}
	}
	if err := s.armTimer(op, timeout, opResult{}); err != nil {
		op.teardown(s.loop)
		return 0, err
	}
	s.suspend(ctx, op)
	return op.result.events, op.result.err
}

// Block implements Hooks.Block. At most one task may be blocked per tag.
// A wake-up sent to the task by Unblock while it was not blocked is
// consumed immediately.
func (s *Scheduler) Block(ctx context.Context, tag any, timeout time.Duration) (bool, error) {
	if !validTag(tag) {
		return false, ErrInvalidTag
	}
	op, err := s.begin(ctx, opBlock, tag)
	if err != nil {
		return false, err
	}
	if op.task.takeWake() {
		return true, nil
	}
	if err := s.armTimer(op, timeout, opResult{unblocked: false}); err != nil {
		op.teardown(s.loop)
		return false, err
	}
	s.suspend(ctx, op)
	return op.result.unblocked, op.result.err
}

// Unblock implements Hooks.Unblock. The request is always delivered through
// the scheduler's inbox, so it is safe from any goroutine, and takes effect
// when the scheduler next runs.
//
// A tag only wakes an operation that began before the call, so an Unblock
// of a tag with no waiter is a no-op. A task is never missed: if it is not
// blocked when the request is applied, the wake-up is kept for its next
// Block or indefinite Sleep. Tags that cannot be map keys are ignored.
func (s *Scheduler) Unblock(tag any, task *Task) {
	if !validTag(tag) {
		tag = nil
	}
	if tag == nil && task == nil {
		return
	}
	s.inbox.post(inboxEntry{unblock: true, tag: tag, task: task, seq: s.opSeq.Load()})
}

// validTag reports whether tag can key the Blocked-Set. The check is on the
// value, since an interface field may hold an unhashable dynamic type.
func validTag(tag any) bool {
	return tag == nil || reflect.ValueOf(tag).Comparable()
}

// unblock resolves an Unblock request on the reactor side.
func (s *Scheduler) unblock(tag any, task *Task, seq uint64) {
	if tag != nil {
		if op := s.blocked[tag]; op != nil && op.state == opArmed && op.seq <= seq {
			s.fire(op, opResult{unblocked: true})
			return
		}
	}
	if task == nil || task.sched != s || task.State() == TaskTerminated {
		return
	}
	if op := task.op; op != nil && (op.kind == opBlock || op.kind == opSleep) {
		switch {
		case op.state == opArmed:
			s.fire(op, opResult{unblocked: true})
		case op.state == opFired && op.result.err == nil:
			// timed out, not yet resumed
			op.result.unblocked = true
		}
		return
	}
	task.wake = true
}

// applyInbox drains the inbox, on the reactor side. If an entry panics,
// the loop is woken again so the rest are not stranded.
func (s *Scheduler) applyInbox() {
	defer func() {
		if s.inbox.length() > 0 {
			s.inbox.wake()
		}
	}()
	for {
		e, ok := s.inbox.pop()
		if !ok {
			return
		}
		if e.unblock {
			s.unblock(e.tag, e.task, e.seq)
			continue
		}
		if e.op != nil {
			s.fire(e.op, e.res)
		}
	}
}
