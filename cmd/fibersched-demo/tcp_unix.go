//go:build linux || darwin

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/joeycumines/go-fibersched"
	"github.com/joeycumines/go-fibersched/reactor"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

const tcpResponse = "HTTP/1.1 200 Ok\r\nConnection: close\r\n\r\n"

func runTCPServer(ctx *cli.Context) error {
	s, err := newScheduler()
	if err != nil {
		return err
	}
	defer s.Close()
	ln, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	lfd, err := listenerFd(ln)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "listening on %s\n", ln.Addr())

	if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
		for served := 0; tcpRequests == 0 || served < tcpRequests; served++ {
			conn, err := accept(ctx, s, lfd)
			if err != nil {
				return err
			}
			if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
				return serve(ctx, conn)
			}); err != nil {
				_ = conn.Close()
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.Close()
}

func listenerFd(ln net.Listener) (int, error) {
	sc, ok := ln.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return -1, errors.New("listener does not expose its descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	fd := -1
	if err := raw.Control(func(u uintptr) { fd = int(u) }); err != nil {
		return -1, err
	}
	return fd, nil
}

// accept waits for and accepts one connection on the non-blocking listener.
func accept(ctx context.Context, s *fibersched.Scheduler, lfd int) (*fibersched.File, error) {
	for {
		nfd, _, err := unix.Accept(lfd)
		switch {
		case err == unix.EINTR || err == unix.ECONNABORTED:
			continue
		case err == unix.EAGAIN:
			if _, err := s.IOWait(ctx, lfd, reactor.EventRead, fibersched.Forever); err != nil {
				return nil, err
			}
			continue
		case err != nil:
			return nil, &fibersched.DescriptorError{Fd: lfd, Op: "accept", Err: err}
		}
		unix.CloseOnExec(nfd)
		f, err := s.NewFile(os.NewFile(uintptr(nfd), "tcp-client"))
		if err != nil {
			_ = unix.Close(nfd)
			return nil, err
		}
		return f, nil
	}
}

func serve(ctx context.Context, conn *fibersched.File) error {
	defer conn.Close()
	buf := make([]byte, 1024)
	if _, err := conn.Read(ctx, buf); err != nil {
		return err
	}
	_, err := conn.Write(ctx, []byte(tcpResponse))
	return err
}
