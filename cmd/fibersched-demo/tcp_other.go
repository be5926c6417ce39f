//go:build !linux && !darwin

package main

import (
	"github.com/joeycumines/go-fibersched/reactor"
	"github.com/urfave/cli"
)

func runTCPServer(*cli.Context) error {
	return reactor.ErrUnsupported
}
