package main

import (
	"fmt"

	"github.com/joeycumines/go-fibersched/internal/zlog"
	"github.com/joeycumines/logiface"
	"github.com/urfave/cli"
)

var logger *logiface.Logger[logiface.Event]

func setupLogger(ctx *cli.Context) error {
	level, ok := zlog.ParseLevel(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	w := ctx.App.ErrWriter
	if w == nil {
		w = cli.ErrWriter
	}
	if logJSON {
		logger = zlog.New(w, level)
	} else {
		logger = zlog.NewConsole(w, level)
	}
	return nil
}
