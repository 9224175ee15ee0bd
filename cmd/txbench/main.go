// Package main is the txbench command.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rshade/txbench/internal/cli"
	"github.com/rshade/txbench/pkg/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitConfigError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to a process exit status.
// Benchmark runs never fail, so any error here is a usage or config problem.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var cfgErr *cli.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfigError
	}
	return exitError
}
