//go:build linux || darwin

package fibersched

import (
	"context"
	"io"
	"os"

	"github.com/joeycumines/go-fibersched/reactor"
	"golang.org/x/sys/unix"
)

// File performs blocking-style reads and writes on a non-blocking
// descriptor from inside a task, suspending in IOWait whenever the kernel
// reports EAGAIN.
type File struct {
	s  *Scheduler
	f  *os.File
	fd int
}

// NewFile wraps f, switching its descriptor to non-blocking mode. The File
// retains f, which continues to own the descriptor; close it with
// File.Close so that waiting tasks are released.
func (s *Scheduler) NewFile(f *os.File) (*File, error) {
	raw, err := f.SyscallConn()
	if err != nil {
		return nil, err
	}
	fd := -1
	if err := raw.Control(func(u uintptr) { fd = int(u) }); err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, &DescriptorError{Fd: fd, Op: "set non-blocking", Err: err}
	}
	return &File{s: s, f: f, fd: fd}, nil
}

// Fd returns the wrapped descriptor.
func (f *File) Fd() int { return f.fd }

// Read reads up to len(p) bytes, suspending the calling task until data is
// available. It returns io.EOF at end of file.
func (f *File) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(f.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			if _, err := f.s.IOWait(ctx, f.fd, reactor.EventRead, Forever); err != nil {
				return 0, err
			}
			continue
		case err != nil:
			return 0, &DescriptorError{Fd: f.fd, Op: "read", Err: err}
		case n == 0:
			return 0, io.EOF
		default:
			return n, nil
		}
	}
}

// Write writes all of p, suspending the calling task whenever the
// descriptor is not writable.
func (f *File) Write(ctx context.Context, p []byte) (int, error) {
	var written int
	for written < len(p) {
		n, err := unix.Write(f.fd, p[written:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			if _, err := f.s.IOWait(ctx, f.fd, reactor.EventWrite, Forever); err != nil {
				return written, err
			}
			continue
		case err != nil:
			return written, &DescriptorError{Fd: f.fd, Op: "write", Err: err}
		}
		written += n
	}
	return written, nil
}

// ReadAll reads until EOF.
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	return io.ReadAll(f.Reader(ctx))
}

// Reader returns an io.Reader bound to ctx.
func (f *File) Reader(ctx context.Context) io.Reader {
	return fileIO{f: f, ctx: ctx}
}

// Writer returns an io.Writer bound to ctx.
func (f *File) Writer(ctx context.Context) io.Writer {
	return fileIO{f: f, ctx: ctx}
}

// Close closes the underlying file. Tasks waiting on the descriptor resume
// with a *DescriptorError wrapping os.ErrClosed. It must be called by the
// owning goroutine or a task of the scheduler.
func (f *File) Close() error {
	if _, err := f.s.holder(); err != nil {
		return err
	}
	f.s.abandonDescriptor(f.fd, os.ErrClosed)
	return f.f.Close()
}

type fileIO struct {
	f   *File
	ctx context.Context
}

func (x fileIO) Read(p []byte) (int, error) { return x.f.Read(x.ctx, p) }

func (x fileIO) Write(p []byte) (int, error) { return x.f.Write(x.ctx, p) }
