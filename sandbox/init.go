// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/nsbox/lib/process"
)

const (
	// stageEnv marks a process started by the launcher as the sandbox
	// entry point. It is removed before the command is executed.
	stageEnv  = "NSBOX_STAGE"
	stageInit = "init"

	// initArgv0 is the argv[0] of the entry point while it waits; the
	// command vector follows it.
	initArgv0 = "nsbox-init"

	// handshakeFD is where exec.Cmd.ExtraFiles places the handshake
	// memfd in the child.
	handshakeFD = 3

	// shellPath runs files the kernel rejects with ENOEXEC.
	shellPath = "/bin/sh"
)

// IsInitStage reports whether this process is a sandbox entry point
// started by [Launcher.Start]. Binaries that launch sandboxes must
// check it first thing in main (or TestMain) and call [RunInit].
func IsInitStage() bool {
	return os.Getenv(stageEnv) == stageInit
}

// RunInit is the sandbox entry point. It blocks until the launcher has
// installed the identity mapping and released the handshake, then
// replaces the process image with the command in os.Args[1:]. It never
// returns: on failure it exits with ExitSetupFailure (handshake) or
// ExitLaunchFailure (exec).
func RunInit() {
	code, err := runInit(os.Args[1:], os.Environ())
	process.Exit(code, err)
}

func runInit(command []string, environment []string) (int, error) {
	handshake, err := OpenHandshake(handshakeFD)
	if err != nil {
		return ExitSetupFailure, err
	}
	if err := handshake.Wait(); err != nil {
		return ExitSetupFailure, err
	}
	if err := handshake.Close(); err != nil {
		return ExitSetupFailure, err
	}

	if len(command) == 0 || command[0] == "" {
		return ExitLaunchFailure, errors.New("no command to execute")
	}
	path, err := lookCommand(command[0])
	if err != nil {
		return ExitLaunchFailure, err
	}
	return ExitLaunchFailure, execCommand(path, command, withoutVariable(environment, stageEnv))
}

// lookCommand resolves name the way execvp does. A match found through
// a relative PATH entry such as "." is accepted.
func lookCommand(name string) (string, error) {
	path, err := exec.LookPath(name)
	if errors.Is(err, exec.ErrDot) {
		return path, nil
	}
	return path, err
}

// execCommand replaces the process image with path. A file the kernel
// cannot execute directly (ENOEXEC, typically a script without a "#!"
// line) is run by the shell, as execvp does. It only returns on
// failure.
func execCommand(path string, argv, environment []string) error {
	err := unix.Exec(path, argv, environment)
	if errors.Is(err, unix.ENOEXEC) {
		shellArgv := append([]string{shellPath, path}, argv[1:]...)
		err = unix.Exec(shellPath, shellArgv, environment)
	}
	return fmt.Errorf("exec %s: %w", path, err)
}

// withoutVariable returns a copy of environment with every assignment
// to name removed.
func withoutVariable(environment []string, name string) []string {
	prefix := name + "="
	filtered := make([]string, 0, len(environment))
	for _, entry := range environment {
		if strings.HasPrefix(entry, prefix) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
