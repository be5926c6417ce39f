package fibersched

import (
	"context"
	"errors"
	"net"
	"reflect"
	"sort"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-fibersched/reactor"
	"github.com/joeycumines/logiface"
)

// taskErrorRates bounds logging of task errors, per error type.
var taskErrorRates = map[time.Duration]int{
	time.Second: 5,
	time.Minute: 60,
}

// Scheduler multiplexes cooperative tasks over a single reactor loop, owned
// by the goroutine that called New.
//
// The Blocked-Set, ready queue and loop are only touched while holding the
// baton: by the owning goroutine when no task is running, or by the running
// task. Unblock and Task.Cancel are the only goroutine-safe entry points.
type Scheduler struct {
	logger   *logiface.Logger[logiface.Event]
	limiter  *catrate.Limiter
	loop     *reactor.Loop
	resolver *net.Resolver
	inbox    *inbox

	current *Task
	blocked map[any]*operation
	ready   *queue.Queue

	// opSeq is read by Unblock from any goroutine.
	opSeq atomic.Uint64

	owner   uint64
	taskSeq uint64

	ownLoop bool
	closing bool
	closed  bool
}

// New creates a scheduler owned by the calling goroutine.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		logger:   cfg.logger,
		limiter:  catrate.NewLimiter(taskErrorRates),
		loop:     cfg.loop,
		resolver: cfg.resolver,
		blocked:  make(map[any]*operation),
		ready:    queue.New(),
		owner:    getGoroutineID(),
	}

	if s.loop == nil {
		reactorOpts := append([]reactor.Option{reactor.WithLogger(cfg.logger)}, cfg.reactorOpts...)
		if s.loop, err = reactor.New(reactorOpts...); err != nil {
			return nil, err
		}
		s.ownLoop = true
	}

	s.inbox = newInbox(s.loop.NewAsync(s.applyInbox))
	if err := s.inbox.async.Start(); err != nil {
		if s.ownLoop {
			_ = s.loop.Close()
		}
		return nil, err
	}

	return s, nil
}

// Loop returns the reactor driven by the scheduler.
func (s *Scheduler) Loop() *reactor.Loop { return s.loop }

// Pending returns the number of tasks suspended in blocking operations.
// Must be called while holding the baton.
func (s *Scheduler) Pending() int { return len(s.blocked) }

// holder returns the task holding the baton (nil for the owning goroutine),
// or ErrNotOwner if the caller holds no baton of this scheduler.
func (s *Scheduler) holder() (*Task, error) {
	gid := getGoroutineID()
	if gid == s.owner {
		return nil, nil
	}
	if v, ok := taskGoroutines.Load(gid); ok {
		if t := v.(*Task); t.sched == s {
			return t, nil
		}
	}
	return nil, ErrNotOwner
}

func (s *Scheduler) checkOwner() error {
	if getGoroutineID() != s.owner {
		return ErrNotOwner
	}
	if s.closed {
		return ErrSchedulerClosed
	}
	return nil
}

// Spawn implements Hooks.Spawn. It may be called by the owning goroutine or
// a running task. The task's context derives from ctx and is cancelled when
// the task terminates, so tasks spawned with it as parent are cancelled
// along with it (use context.WithoutCancel to detach).
func (s *Scheduler) Spawn(ctx context.Context, fn func(ctx context.Context) error) (*Task, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if _, err := s.holder(); err != nil {
		return nil, err
	}
	if s.closing || s.closed {
		return nil, ErrSchedulerClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.taskSeq++
	t := &Task{
		sched:    s,
		fn:       fn,
		id:       s.taskSeq,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	t.ctx, t.cancel = context.WithCancelCause(context.WithValue(ctx, taskContextKey{}, t))

	s.logger.Debug().
		Uint64("task", t.id).
		Log("fibersched: task spawned")

	go t.main()
	s.transfer(t)
	return t, nil
}

// RunOnce runs one reactor iteration, then resumes every task whose
// operation completed. It blocks only while a task is suspended and none is
// ready. Owning goroutine only.
func (s *Scheduler) RunOnce() error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	var err error
	if s.ready.Length() > 0 {
		err = s.loop.RunNoWait()
	} else {
		err = s.loop.RunOnce()
	}
	s.resumeReady()
	return err
}

// Run calls RunOnce until no task is suspended or ready, returning nil, or
// until ctx is done, returning ctx.Err(). Owning goroutine only.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, s.inbox.wake)
	defer stop()

	for len(s.blocked) > 0 || s.ready.Length() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RunOnce(); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Hooks.Close: Shutdown without a deadline.
func (s *Scheduler) Close() error {
	return s.Shutdown(context.Background())
}

// Shutdown runs the scheduler until idle, then releases it. If ctx is done
// (or the reactor fails) first, every still-suspended task is resumed with a
// *CancelledError wrapping ErrSchedulerClosed, and blocking calls made after
// that fail fast. The scheduler is uninstalled if it is the current one.
// Owning goroutine only.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if err := s.checkOwner(); err != nil {
		return err
	}

	err := s.Run(ctx)
	s.closing = true
	if err != nil {
		s.abortBlocked()
	}

	s.closed = true
	s.inbox.close()
	if s.ownLoop {
		if cerr := s.loop.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	installed.CompareAndDelete(s.owner, s)

	s.logger.Debug().
		Uint64("tasks", s.taskSeq).
		Log("fibersched: scheduler closed")

	return err
}

// abortBlocked interrupts every suspended task, oldest operation first,
// until none remain.
func (s *Scheduler) abortBlocked() {
	for len(s.blocked) > 0 || s.ready.Length() > 0 {
		ops := make([]*operation, 0, len(s.blocked)+s.ready.Length())
		for _, op := range s.blocked {
			ops = append(ops, op)
		}
		for s.ready.Length() > 0 {
			if op := s.ready.Remove().(*operation); op.state == opFired {
				ops = append(ops, op)
			}
		}
		sort.Slice(ops, func(i, j int) bool { return ops[i].seq < ops[j].seq })

		s.logger.Warning().
			Int("tasks", len(ops)).
			Log("fibersched: cancelling suspended tasks")

		for _, op := range ops {
			s.interrupt(op, ErrSchedulerClosed)
		}
	}
}

// reportTaskError logs an uncaught task error, rate limited per error type.
func (s *Scheduler) reportTaskError(t *Task, err error) {
	var category any = reflect.TypeOf(err)
	var panicErr PanicError
	if errors.As(err, &panicErr) {
		category = "panic"
	}
	if _, ok := s.limiter.Allow(category); !ok {
		return
	}
	s.logger.Err().
		Uint64("task", t.id).
		Err(err).
		Log("fibersched: task terminated with error")
}
