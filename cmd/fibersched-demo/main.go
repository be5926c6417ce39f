// Command fibersched-demo runs small programs on a fibersched.Scheduler:
// staggered sleeps, a pipe hand-off between tasks, a child process wait,
// address resolution and a minimal TCP server.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fibersched-demo: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fibersched-demo"
	app.Usage = "cooperative tasks on a single-threaded reactor"
	app.UsageText = "fibersched-demo [global options] <command> [arguments...]"
	app.Version = version
	app.Flags = globalFlags
	app.Before = setupLogger
	app.Commands = []cli.Command{
		{
			Name:   "sleep",
			Usage:  "spawn tasks sleeping for staggered durations",
			Action: runSleep,
			Flags:  sleepFlags,
		},
		{
			Name:   "pipe",
			Usage:  "hand a message between two tasks over a pipe",
			Action: runPipe,
			Flags:  pipeFlags,
		},
		{
			Name:      "process",
			Usage:     "start a command and wait for it without blocking other tasks",
			ArgsUsage: "<command> [args...]",
			Action:    runProcess,
		},
		{
			Name:      "resolve",
			Usage:     "resolve host names concurrently",
			ArgsUsage: "<host>...",
			Action:    runResolve,
		},
		{
			Name:   "tcp-server",
			Usage:  "serve a fixed HTTP response, one task per connection",
			Action: runTCPServer,
			Flags:  tcpFlags,
		},
	}
	return app
}
