// Package fibersched implements a cooperative task scheduler that makes
// blocking operations transparent to tasks, by routing them through a
// single-threaded [reactor.Loop].
//
// # Model
//
// A [Scheduler] is owned by the goroutine that created it. Tasks started
// with [Scheduler.Spawn] run on their own goroutines, but strictly one at a
// time: control (the baton) is handed off synchronously, so a task only
// executes between being resumed and its next suspension point. Task bodies
// therefore need no locking against each other or against the scheduler.
//
// Each blocking hook ([Scheduler.Sleep], [Scheduler.IOWait],
// [Scheduler.ProcessWait], [Scheduler.AddressResolve], [Scheduler.Block])
// suspends the calling task, registers interest with the reactor, and
// returns once that interest fires, a timeout elapses, or the operation is
// cancelled. Meanwhile the owning goroutine drives the reactor with
// [Scheduler.Run] (or [Scheduler.RunOnce]), resuming tasks in the order
// their operations completed.
//
// # Cross-goroutine wake-ups
//
// [Scheduler.Unblock] and [Task.Cancel] may be called from any goroutine.
// Requests are queued in the scheduler's inbox and a single
// [reactor.Async] wakes the loop, which applies them on its next iteration.
// Process waits and address resolution use helper goroutines that report
// back through the same inbox.
//
// # Cancellation
//
// Cancellation is a result, not a panic: an interrupted hook returns a
// [*CancelledError] (matching [ErrCancelled] via errors.Is), after the
// operation's watchers are torn down. Timeouts are not errors; they are
// reported as a false or empty result.
//
// # Example
//
//	s, err := fibersched.New()
//	if err != nil {
//		return err
//	}
//	_, _ = s.Spawn(ctx, func(ctx context.Context) error {
//		_, err := s.Sleep(ctx, 100*time.Millisecond)
//		return err
//	})
//	return s.Close() // runs until every task finishes
package fibersched
