package fibersched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetScheduler(t *testing.T) {
	assert.Nil(t, CurrentScheduler())

	s1 := newTestScheduler(t)
	require.NoError(t, SetScheduler(s1))
	assert.Same(t, s1, CurrentScheduler())
	require.NoError(t, SetScheduler(s1))

	var inTask *Scheduler
	spawn(t, s1, func(context.Context) error {
		inTask = CurrentScheduler()
		return nil
	})
	assert.Same(t, s1, inTask)

	// replacing retires the previous scheduler
	s2 := newTestScheduler(t)
	require.NoError(t, SetScheduler(s2))
	assert.Same(t, s2, CurrentScheduler())
	_, err := s1.Spawn(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSchedulerClosed)

	// nil uninstalls without closing
	require.NoError(t, SetScheduler(nil))
	assert.Nil(t, CurrentScheduler())
	spawn(t, s2, func(context.Context) error { return nil })

	require.NoError(t, SetScheduler(s2))
	require.NoError(t, s2.Close())
	assert.Nil(t, CurrentScheduler())
	assert.ErrorIs(t, SetScheduler(s2), ErrSchedulerClosed)
}

func TestSetScheduler_NotOwner(t *testing.T) {
	s := newTestScheduler(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- SetScheduler(s)
	}()
	assert.ErrorIs(t, <-errCh, ErrNotOwner)
	assert.Nil(t, CurrentScheduler())
}

func TestCurrentScheduler_PerGoroutine(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, SetScheduler(s))
	t.Cleanup(func() { _ = SetScheduler(nil) })

	other := make(chan *Scheduler, 1)
	go func() { other <- CurrentScheduler() }()
	assert.Nil(t, <-other)
	assert.Same(t, s, CurrentScheduler())
}
