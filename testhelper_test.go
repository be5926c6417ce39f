package fibersched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestScheduler creates a scheduler owned by the test goroutine, closed
// on cleanup if the test did not close it.
func newTestScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// spawn is Spawn with a background context, failing the test on error.
func spawn(t *testing.T, s *Scheduler, fn func(ctx context.Context) error) *Task {
	t.Helper()
	task, err := s.Spawn(context.Background(), fn)
	require.NoError(t, err)
	return task
}
