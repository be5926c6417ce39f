package main

import (
	"time"

	"github.com/urfave/cli"
)

var (
	logLevel    string
	logJSON     bool
	sleepTasks  int
	sleepStep   time.Duration
	pipeDelay   time.Duration
	pipeMessage string
	tcpAddr     string
	tcpRequests int
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "log-level",
		Usage:       "log level (trace, debug, info, warning, err, off)",
		EnvVar:      "FIBERSCHED_LOG_LEVEL",
		Value:       "info",
		Destination: &logLevel,
	},
	cli.BoolFlag{
		Name:        "log-json",
		Usage:       "log JSON lines instead of console output",
		EnvVar:      "FIBERSCHED_LOG_JSON",
		Destination: &logJSON,
	},
}

var sleepFlags = []cli.Flag{
	cli.IntFlag{
		Name:        "tasks, n",
		Usage:       "number of tasks; task i sleeps i*step",
		Value:       5,
		Destination: &sleepTasks,
	},
	cli.DurationFlag{
		Name:        "step",
		Usage:       "sleep increment between tasks",
		Value:       10 * time.Millisecond,
		Destination: &sleepStep,
	},
}

var pipeFlags = []cli.Flag{
	cli.DurationFlag{
		Name:        "delay",
		Usage:       "delay before the writer task writes",
		Value:       400 * time.Millisecond,
		Destination: &pipeDelay,
	},
	cli.StringFlag{
		Name:        "message, m",
		Usage:       "message to send",
		Value:       "Hello, world!",
		Destination: &pipeMessage,
	},
}

var tcpFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "addr",
		Usage:       "listen address",
		EnvVar:      "FIBERSCHED_TCP_ADDR",
		Value:       "localhost:9090",
		Destination: &tcpAddr,
	},
	cli.IntFlag{
		Name:        "requests",
		Usage:       "stop after serving this many connections (0 = forever)",
		Destination: &tcpRequests,
	},
}
