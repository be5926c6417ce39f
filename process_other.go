//go:build !linux && !darwin

package fibersched

import (
	"context"

	"github.com/joeycumines/go-fibersched/reactor"
)

// ProcessWait implements Hooks.ProcessWait. Unsupported on this platform.
func (s *Scheduler) ProcessWait(context.Context, int, int) (ProcessStatus, error) {
	return ProcessStatus{}, reactor.ErrUnsupported
}
