// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"syscall"
)

// Exit codes reserved by the launcher. Any other code is the sandboxed
// command's own exit status.
const (
	// ExitSetupFailure means the launcher failed before the command ran:
	// the child could not be created, mapped, released, or waited on.
	ExitSetupFailure = 125

	// ExitLaunchFailure means the sandbox entry point could not find or
	// execute the command.
	ExitLaunchFailure = 127

	// ExitAbnormal means the command was terminated by a signal. The
	// signal number is deliberately not encoded.
	ExitAbnormal = 128
)

// exitCode translates a wait status into the launcher's exit code.
func exitCode(status syscall.WaitStatus) int {
	if status.Exited() {
		return status.ExitStatus()
	}
	return ExitAbnormal
}

// ExitError represents a non-zero exit from the sandboxed command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	switch e.Code {
	case ExitAbnormal:
		return "command terminated abnormally"
	case ExitLaunchFailure:
		return "command could not be executed"
	}
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// ExitCode returns the code the process should exit with.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// IsExitError checks if an error is an ExitError and returns the code.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
