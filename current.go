package fibersched

import (
	"errors"
	"sync"
)

// installed maps goroutine ID to the *Scheduler installed for it.
var installed sync.Map

// SetScheduler installs s as the current scheduler of the calling
// goroutine, which must own it. A different, previously installed scheduler
// is closed first. SetScheduler(nil) uninstalls without closing.
func SetScheduler(s *Scheduler) error {
	gid := getGoroutineID()
	if s != nil && s.owner != gid {
		return ErrNotOwner
	}

	if v, ok := installed.Load(gid); ok {
		prev := v.(*Scheduler)
		if prev == s {
			return nil
		}
		installed.Delete(gid)
		if s != nil {
			if err := prev.Close(); err != nil && !errors.Is(err, ErrSchedulerClosed) {
				return err
			}
		}
	}

	if s != nil {
		if s.closed {
			return ErrSchedulerClosed
		}
		installed.Store(gid, s)
	}
	return nil
}

// CurrentScheduler returns the scheduler installed for the calling
// goroutine or, inside a task body, the task's scheduler. It returns nil if
// there is neither.
func CurrentScheduler() *Scheduler {
	gid := getGoroutineID()
	if v, ok := installed.Load(gid); ok {
		return v.(*Scheduler)
	}
	if v, ok := taskGoroutines.Load(gid); ok {
		return v.(*Task).sched
	}
	return nil
}
