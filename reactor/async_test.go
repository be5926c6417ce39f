//go:build linux || darwin

package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsync_DoesNotKeepLoopActive(t *testing.T) {
	l := testLoop(t)
	a := l.NewAsync(func() {})
	require.NoError(t, a.Start())
	assert.False(t, l.Active())
	assert.ErrorIs(t, a.Start(), ErrWatcherActive)
}

func TestAsync_Coalesces(t *testing.T) {
	l := testLoop(t)
	var calls int
	a := l.NewAsync(func() { calls++ })
	require.NoError(t, a.Start())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, a.Send())
			}
		}()
	}
	wg.Wait()
	assert.True(t, a.Pending())

	require.NoError(t, l.RunNoWait())
	assert.Equal(t, 1, calls)
	assert.False(t, a.Pending())

	require.NoError(t, l.RunNoWait())
	assert.Equal(t, 1, calls)
}

func TestAsync_SendBeforeStartDelivered(t *testing.T) {
	l := testLoop(t)
	var calls int
	a := l.NewAsync(func() { calls++ })
	require.NoError(t, a.Send())
	require.NoError(t, l.RunNoWait())
	assert.Zero(t, calls)

	require.NoError(t, a.Start())
	l.Ref()
	defer l.Unref()
	require.NoError(t, l.RunOnce())
	assert.Equal(t, 1, calls)
}

func TestAsync_StopRetainsPending(t *testing.T) {
	l := testLoop(t)
	var calls int
	a := l.NewAsync(func() { calls++ })
	require.NoError(t, a.Start())
	a.Stop()
	a.Stop()
	require.NoError(t, a.Send())
	require.NoError(t, l.RunNoWait())
	assert.Zero(t, calls)
	assert.True(t, a.Pending())
}

func TestAsync_WakesBlockedPoll(t *testing.T) {
	l := testLoop(t)
	done := make(chan struct{})
	a := l.NewAsync(func() { close(done) })
	require.NoError(t, a.Start())
	// a distant timer makes RunOnce block
	tm := l.NewTimer(func() {})
	require.NoError(t, tm.Start(time.Hour, 0))
	defer tm.Stop()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = a.Send()
	}()

	require.NoError(t, l.RunOnce())
	select {
	case <-done:
	default:
		t.Fatal("async callback not run")
	}
}
