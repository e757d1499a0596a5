// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/nsbox/lib/cli"
	"github.com/bureau-foundation/nsbox/lib/version"
	"github.com/bureau-foundation/nsbox/sandbox"
)

func main() {
	if sandbox.IsInitStage() {
		sandbox.RunInit()
	}
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, cli.NewCommandLogger()))
}

// run handles the launcher's own words and otherwise runs args as a
// sandboxed command, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) int {
	if len(args) == 0 {
		printUsage(stderr)
		return sandbox.ExitSetupFailure
	}
	if len(args) == 1 {
		switch args[0] {
		case "--version":
			fmt.Fprintf(stdout, "nsbox %s\n", version.Info())
			return 0
		case "--help":
			printUsage(stdout)
			return 0
		}
	}

	launcher, err := sandbox.New(sandbox.Config{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	})
	if err != nil {
		logger.Error("sandbox setup failed", "error", err)
		return sandbox.ExitSetupFailure
	}

	code, err := launcher.Run(args)
	if err != nil {
		logger.Error("sandbox setup failed", "command", args[0], "error", err)
	}
	return code
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `nsbox: run a command in new mount, user and PID namespaces

Usage:
  nsbox <command> [args...]

The calling user is mapped to root inside the sandbox and the command
runs as PID 1 of its own PID namespace.

Exit status:
  0-124    the command's own exit code
  %d      sandbox setup failed
  %d      command not found or not executable
  %d      command killed by a signal

Environment:
  NSBOX_DEBUG=1   enable debug logging
`, sandbox.ExitSetupFailure, sandbox.ExitLaunchFailure, sandbox.ExitAbnormal)
}
