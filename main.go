package main

import (
	"os"

	"github.com/giako888/trainbridge/pkgs/app"
	"github.com/giako888/trainbridge/pkgs/cli"
	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/output"
)

// exit codes
const (
	exitBadArgs = 1
	exitSource  = 2
	exitSerial  = 3
)

func main() {
	bridge := app.BridgeApp{P: output.ConsolePrinter{}}
	cmd := cli.NewRootCommand(&bridge)
	args := os.Args
	if args != nil {
		args = args[1:]
		cmd.SetArgs(args)
	}
	err := cmd.Execute()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch fault.KindOf(err) {
	case fault.SerialIO:
		return exitSerial
	case fault.TransportClosed, fault.TransportTimeout, fault.ProtocolViolation, fault.AuthFailed:
		return exitSource
	}
	return exitBadArgs
}
