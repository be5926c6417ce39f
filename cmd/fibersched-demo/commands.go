package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/joeycumines/go-fibersched"
	"github.com/urfave/cli"
)

func newScheduler() (*fibersched.Scheduler, error) {
	s, err := fibersched.New(fibersched.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := fibersched.SetScheduler(s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func runSleep(ctx *cli.Context) error {
	s, err := newScheduler()
	if err != nil {
		return err
	}
	defer s.Close()
	out := ctx.App.Writer
	for i := 0; i < sleepTasks; i++ {
		i := i
		if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
			elapsed, err := s.Sleep(ctx, time.Duration(i)*sleepStep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "task %d woke after %s\n", i, elapsed.Round(time.Millisecond))
			return nil
		}); err != nil {
			return err
		}
	}
	return s.Close()
}

func runPipe(ctx *cli.Context) error {
	s, err := newScheduler()
	if err != nil {
		return err
	}
	defer s.Close()
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	defer r.Close()
	defer w.Close()
	rf, err := s.NewFile(r)
	if err != nil {
		return err
	}
	wf, err := s.NewFile(w)
	if err != nil {
		return err
	}
	out := ctx.App.Writer

	if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
		defer rf.Close()
		data, err := rf.ReadAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "received %q\n", data)
		return nil
	}); err != nil {
		return err
	}

	if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
		defer wf.Close()
		if _, err := s.Sleep(ctx, pipeDelay); err != nil {
			return err
		}
		_, err := io.WriteString(wf.Writer(ctx), pipeMessage)
		return err
	}); err != nil {
		return err
	}

	return s.Close()
}

func runProcess(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) == 0 {
		return cli.NewExitError("process: missing command", 2)
	}
	s, err := newScheduler()
	if err != nil {
		return err
	}
	defer s.Close()
	out := ctx.App.Writer

	cmd := exec.Command(args[0], args[1:]...)
	// files, so that no copying goroutine needs cmd.Wait
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}

	var ticks int
	ticker, err := s.Spawn(context.Background(), func(ctx context.Context) error {
		for {
			if _, err := s.Sleep(ctx, 100*time.Millisecond); err != nil {
				return nil
			}
			ticks++
		}
	})
	if err != nil {
		return err
	}

	var status fibersched.ProcessStatus
	if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
		defer ticker.Cancel(nil)
		var err error
		status, err = s.ProcessWait(ctx, cmd.Process.Pid, 0)
		_ = cmd.Process.Release()
		return err
	}); err != nil {
		return err
	}

	if err := s.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%d ticks while waiting)\n", status, ticks)
	if !status.Success() {
		return cli.NewExitError("", 1)
	}
	return nil
}

func runResolve(ctx *cli.Context) error {
	hosts := ctx.Args()
	if len(hosts) == 0 {
		return cli.NewExitError("resolve: missing host", 2)
	}
	s, err := newScheduler()
	if err != nil {
		return err
	}
	defer s.Close()
	out := ctx.App.Writer
	for _, host := range hosts {
		host := host
		if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
			addrs, err := s.AddressResolve(ctx, host)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", host, err)
				return nil
			}
			fmt.Fprintf(out, "%s: %s\n", host, strings.Join(addrs, ", "))
			return nil
		}); err != nil {
			return err
		}
	}
	return s.Close()
}
