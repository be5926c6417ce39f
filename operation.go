package fibersched

import (
	"context"
	"sort"
	"time"

	"github.com/joeycumines/go-fibersched/reactor"
)

type opKind uint8

const (
	opSleep opKind = iota
	opIO
	opProcess
	opResolve
	opBlock
)

func (k opKind) String() string {
	switch k {
	case opSleep:
		return "sleep"
	case opIO:
		return "io_wait"
	case opProcess:
		return "process_wait"
	case opResolve:
		return "address_resolve"
	case opBlock:
		return "block"
	default:
		return "unknown"
	}
}

// opState is the lifecycle of an operation: armed, then fired (result
// recorded, queued for resume), then done (removed from the Blocked-Set,
// task resumed). Raise and forced shutdown move armed or fired straight to
// done.
type opState uint8

const (
	opArmed opState = iota
	opFired
	opDone
)

// opResult is what a resumed task observes.
type opResult struct {
	err       error
	addrs     []string
	status    ProcessStatus
	events    reactor.Events
	unblocked bool
}

// operation is one suspension of one task, owning the watchers that will
// end it.
type operation struct {
	start  time.Time
	key    any
	task   *Task
	timer  *reactor.Timer
	io     *reactor.IO
	cancel context.CancelFunc
	stops  []func() bool
	result opResult
	seq    uint64
	kind   opKind
	state  opState
	ref    bool
	torn   bool
}

// taskKey is the Blocked-Set key of operations not registered under a tag.
type taskKey struct{ t *Task }

// teardown stops every watcher and helper of the operation. Idempotent.
func (op *operation) teardown(loop *reactor.Loop) {
	if op.torn {
		return
	}
	op.torn = true
	if op.timer != nil {
		op.timer.Stop()
	}
	if op.io != nil {
		op.io.Stop()
	}
	for _, stop := range op.stops {
		stop()
	}
	op.stops = nil
	if op.cancel != nil {
		op.cancel()
	}
	if op.ref {
		op.ref = false
		loop.Unref()
	}
}

// watch arranges for cancellation of ctx to be delivered to the operation
// through the inbox.
func (s *Scheduler) watch(ctx context.Context, op *operation) {
	if ctx.Done() == nil {
		return
	}
	op.stops = append(op.stops, context.AfterFunc(ctx, func() {
		s.inbox.post(inboxEntry{
			op:  op,
			res: opResult{err: &CancelledError{Cause: context.Cause(ctx)}},
		})
	}))
}

// fire records the result of an armed operation and queues it for resume.
// Firings of operations that already fired or finished only tear down.
func (s *Scheduler) fire(op *operation, res opResult) {
	op.teardown(s.loop)
	if op.state != opArmed {
		return
	}
	op.state = opFired
	op.result = res
	s.ready.Add(op)
}

// finish removes the operation from the Blocked-Set and detaches it from
// its task, ahead of resuming the task.
func (s *Scheduler) finish(op *operation) {
	op.teardown(s.loop)
	if s.blocked[op.key] == op {
		delete(s.blocked, op.key)
	}
	op.state = opDone
	if op.task.op == op {
		op.task.op = nil
	}
}

// interrupt synchronously resumes the task of an armed or fired operation
// with a *CancelledError.
func (s *Scheduler) interrupt(op *operation, cause error) {
	if op.state == opDone {
		return
	}
	s.finish(op)
	op.result = opResult{err: &CancelledError{Cause: cause}}
	s.transfer(op.task)
}

// resumeReady resumes the tasks of fired operations, in firing order.
func (s *Scheduler) resumeReady() {
	for s.ready.Length() > 0 {
		op := s.ready.Remove().(*operation)
		if op.state != opFired {
			continue
		}
		s.finish(op)
		s.transfer(op.task)
	}
}

// abandonDescriptor fails every armed IOWait on fd, ahead of the descriptor
// being closed. The kernel drops a closed descriptor from the poller without
// reporting it, so nothing else would end those waits.
func (s *Scheduler) abandonDescriptor(fd int, cause error) {
	var ops []*operation
	for _, op := range s.blocked {
		if op.io != nil && op.io.Fd() == fd && op.state == opArmed {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].seq < ops[j].seq })
	for _, op := range ops {
		s.fire(op, opResult{err: &DescriptorError{Fd: fd, Op: "wait", Err: cause}})
	}
}
