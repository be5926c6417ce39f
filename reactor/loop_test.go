//go:build linux || darwin

package reactor

import (
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunOnceIdleDoesNotBlock(t *testing.T) {
	l := testLoop(t)
	require.False(t, l.Active())

	start := time.Now()
	require.NoError(t, l.RunOnce())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, uint64(1), l.Iteration())
}

func TestLoop_RefUnref(t *testing.T) {
	l := testLoop(t)
	l.Ref()
	l.Ref()
	assert.True(t, l.Active())
	l.Unref()
	assert.True(t, l.Active())
	l.Unref()
	assert.False(t, l.Active())
	// extra Unref is clamped
	l.Unref()
	assert.False(t, l.Active())
}

func TestLoop_RefBlocksUntilAsync(t *testing.T) {
	l := testLoop(t)
	var fired bool
	a := l.NewAsync(func() { fired = true })
	require.NoError(t, a.Start())
	l.Ref()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = a.Send()
	}()

	start := time.Now()
	require.NoError(t, l.RunOnce())
	assert.True(t, fired)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLoop_CloseIsIdempotent(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.ErrorIs(t, l.RunOnce(), ErrLoopClosed)
	assert.ErrorIs(t, l.NewTimer(nil).Start(0, 0), ErrLoopClosed)
	assert.ErrorIs(t, l.NewAsync(nil).Start(), ErrLoopClosed)
	assert.ErrorIs(t, l.NewIO(0, EventRead, nil).Start(), ErrLoopClosed)
}

func TestLoop_CloseStopsWatchers(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	tm := l.NewTimer(func() {})
	require.NoError(t, tm.Start(time.Hour, 0))
	a := l.NewAsync(func() {})
	require.NoError(t, a.Start())

	require.NoError(t, l.Close())
	assert.False(t, tm.Active())
	assert.False(t, a.Active())
	assert.False(t, l.Active())
	assert.ErrorIs(t, a.Send(), ErrLoopClosed)
	// stopping after close is harmless
	tm.Stop()
	a.Stop()
}

func TestLoop_CallbackPanicIsLogged(t *testing.T) {
	var logged []string
	logger := logiface.New[logiface.Event](
		logiface.WithEventFactory[logiface.Event](logiface.NewEventFactoryFunc(func(level logiface.Level) logiface.Event {
			return &testEvent{level: level}
		})),
		logiface.WithWriter[logiface.Event](logiface.NewWriterFunc(func(event logiface.Event) error {
			logged = append(logged, event.(*testEvent).msg)
			return nil
		})),
	)
	l := testLoop(t, WithLogger(logger))

	var after bool
	require.NoError(t, l.NewTimer(func() { panic("boom") }).Start(0, 0))
	require.NoError(t, l.NewTimer(func() { after = true }).Start(0, 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, l.RunOnce())

	assert.True(t, after)
	assert.Equal(t, []string{"reactor: watcher callback panicked"}, logged)
}

func TestCalculateTimeout(t *testing.T) {
	l := testLoop(t)
	assert.Equal(t, -1, l.calculateTimeout())

	tm := l.NewTimer(func() {})
	require.NoError(t, tm.Start(1500*time.Microsecond, 0))
	got := l.calculateTimeout()
	// rounded up, never down to a busy poll
	assert.GreaterOrEqual(t, got, 1)
	assert.LessOrEqual(t, got, 2)

	tm.Stop()
	require.NoError(t, tm.Start(-time.Second, 0))
	assert.Equal(t, 0, l.calculateTimeout())
}

func TestEvents_String(t *testing.T) {
	for _, tc := range []struct {
		events Events
		want   string
	}{
		{0, "none"},
		{EventRead, "read"},
		{EventRead | EventWrite, "read|write"},
		{EventRead | EventHangup, "read|hangup"},
		{EventError, "error"},
	} {
		assert.Equal(t, tc.want, tc.events.String())
	}
	assert.True(t, Events(0).TimedOut())
	assert.False(t, EventRead.TimedOut())
}

// testEvent is a minimal logiface.Event capturing the message.
type testEvent struct {
	logiface.UnimplementedEvent
	level logiface.Level
	msg   string
}

func (e *testEvent) Level() logiface.Level { return e.level }

func (e *testEvent) AddField(key string, val any) {}

func (e *testEvent) AddMessage(msg string) bool {
	e.msg = msg
	return true
}
