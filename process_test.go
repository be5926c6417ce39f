//go:build linux || darwin

package fibersched

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// startProcess starts a child, leaving reaping to ProcessWait.
func startProcess(t *testing.T, name string, args ...string) *os.Process {
	t.Helper()
	cmd := exec.Command(name, args...)
	require.NoError(t, cmd.Start())
	return cmd.Process
}

func TestProcessWait_OtherTasksKeepRunning(t *testing.T) {
	s := newTestScheduler(t)
	proc := startProcess(t, "sleep", "0.1")

	var status ProcessStatus
	var done bool
	spawn(t, s, func(ctx context.Context) error {
		var err error
		status, err = s.ProcessWait(ctx, proc.Pid, 0)
		done = true
		return err
	})
	var ticks int
	spawn(t, s, func(ctx context.Context) error {
		for !done {
			if _, err := s.Sleep(ctx, 10*time.Millisecond); err != nil {
				return err
			}
			ticks++
		}
		return nil
	})

	require.NoError(t, s.Close())
	assert.Greater(t, ticks, 0)
	assert.Equal(t, proc.Pid, status.Pid)
	assert.True(t, status.Success())
	assert.Equal(t, 0, status.ExitCode())
	_ = proc.Release()
}

func TestProcessWait_ExitCode(t *testing.T) {
	s := newTestScheduler(t)
	proc := startProcess(t, "false")

	var status ProcessStatus
	spawn(t, s, func(ctx context.Context) error {
		var err error
		status, err = s.ProcessWait(ctx, proc.Pid, 0)
		return err
	})

	require.NoError(t, s.Close())
	assert.False(t, status.Success())
	assert.Equal(t, 1, status.ExitCode())
	assert.False(t, status.Signaled())
	_ = proc.Release()
}

func TestProcessWait_Signaled(t *testing.T) {
	s := newTestScheduler(t)
	proc := startProcess(t, "sleep", "10")

	var status ProcessStatus
	spawn(t, s, func(ctx context.Context) error {
		var err error
		status, err = s.ProcessWait(ctx, proc.Pid, 0)
		return err
	})
	require.NoError(t, proc.Signal(syscall.SIGKILL))

	require.NoError(t, s.Close())
	assert.True(t, status.Signaled())
	assert.Equal(t, syscall.SIGKILL, status.Signal())
	assert.Equal(t, -1, status.ExitCode())
	_ = proc.Release()
}

func TestProcessWait_NoHang(t *testing.T) {
	s := newTestScheduler(t)
	proc := startProcess(t, "sleep", "0.05")

	var first, second ProcessStatus
	spawn(t, s, func(ctx context.Context) error {
		var err error
		if first, err = s.ProcessWait(ctx, proc.Pid, unix.WNOHANG); err != nil {
			return err
		}
		second, err = s.ProcessWait(ctx, proc.Pid, 0)
		return err
	})

	require.NoError(t, s.Close())
	assert.Zero(t, first.Pid)
	assert.False(t, first.Success())
	assert.True(t, second.Success())
	_ = proc.Release()
}

func TestProcessWait_NotAChild(t *testing.T) {
	s := newTestScheduler(t)

	var err error
	spawn(t, s, func(ctx context.Context) error {
		_, err = s.ProcessWait(ctx, os.Getpid(), 0)
		return nil
	})

	require.NoError(t, s.Close())
	assert.ErrorIs(t, err, unix.ECHILD)
}

func TestProcessStatus_String(t *testing.T) {
	assert.Equal(t, "pid 7 exited with status 3", ProcessStatus{Pid: 7, code: 3}.String())
	assert.Contains(t, ProcessStatus{Pid: 7, signaled: true, signal: syscall.SIGKILL}.String(), "killed")
}
