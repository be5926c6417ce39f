package fibersched

import (
	"context"
)

// AddressResolve implements Hooks.AddressResolve. The lookup runs on a
// helper goroutine using the configured resolver; its context is cancelled
// if the operation is torn down early.
func (s *Scheduler) AddressResolve(ctx context.Context, host string) ([]string, error) {
	op, err := s.begin(ctx, opResolve, nil)
	if err != nil {
		return nil, err
	}
	parent := ctx
	if parent == nil {
		parent = op.task.ctx
	}
	lookupCtx, cancel := context.WithCancel(parent)
	op.cancel = cancel

	resolver := s.resolver
	go func() {
		addrs, err := resolver.LookupHost(lookupCtx, host)
		s.inbox.post(inboxEntry{op: op, res: opResult{addrs: addrs, err: err}})
	}()

	s.suspend(ctx, op)
	return op.result.addrs, op.result.err
}
