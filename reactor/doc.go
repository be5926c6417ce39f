// Package reactor provides a single-threaded event loop with libev-style
// watchers: one-shot and repeating timers, I/O readiness, and async
// (cross-goroutine) signals.
//
// # Architecture
//
// A [Loop] owns a platform poller (epoll on Linux, kqueue on Darwin), a timer
// min-heap and a wake-up descriptor (eventfd on Linux, a self-pipe on
// Darwin). Watchers are created against a loop ([Loop.NewTimer],
// [Loop.NewIO], [Loop.NewAsync]) and armed with Start. Their callbacks run
// on whichever goroutine is driving the loop via [Loop.RunOnce] or
// [Loop.RunNoWait].
//
// Several [IO] watchers may target the same descriptor; the loop registers
// the union of their interest with the kernel and fans readiness out.
//
// # Activity
//
// Started [Timer] and [IO] watchers keep the loop active, as do manual
// references taken with [Loop.Ref]. [Async] watchers never do. When nothing
// is active, [Loop.RunOnce] polls without blocking, so a driver never parks
// the goroutine when there is no outstanding work.
//
// # Thread Safety
//
// A Loop is not safe for concurrent use. All methods, except [Async.Send],
// must be called by at most one goroutine at a time (the goroutine currently
// driving the loop, or one that holds exclusive access through other
// synchronization). [Async.Send] may be called from any goroutine, including
// after [Loop.Close], in which case it returns [ErrLoopClosed].
package reactor
