// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/bureau-foundation/nsbox/lib/binhash"
)

// Launcher creates sandbox children and manages their lifecycle.
type Launcher struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	executable string
	uid        int
	gid        int
	mapper     *IDMapper
	logger     *slog.Logger
}

// Config holds configuration for creating a new Launcher.
type Config struct {
	// Stdin, Stdout and Stderr are connected to the sandboxed command.
	// A nil reader or writer is connected to the null device, as with
	// exec.Cmd. Use os.Stdin and friends to pass the terminal through.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ProcRoot is the procfs mount used to address children.
	// Defaults to DefaultProcRoot.
	ProcRoot string

	// Executable is the binary re-entered as the sandbox entry point.
	// It must call [IsInitStage] and [RunInit] before doing anything
	// else. Defaults to the running executable.
	Executable string

	// Logger for launcher operations.
	Logger *slog.Logger
}

// New creates a new Launcher. The identity mapped to root inside each
// sandbox is the caller's real uid and gid.
func New(config Config) (*Launcher, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	executable := config.Executable
	if executable == "" {
		var err error
		executable, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve own executable: %w", err)
		}
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		if digest, err := binhash.HashFile(executable); err == nil {
			logger.Debug("sandbox entry point", "executable", executable, "blake3", binhash.FormatDigest(digest))
		} else {
			logger.Debug("cannot hash sandbox entry point", "executable", executable, "error", err)
		}
	}

	return &Launcher{
		stdin:      config.Stdin,
		stdout:     config.Stdout,
		stderr:     config.Stderr,
		executable: executable,
		uid:        os.Getuid(),
		gid:        os.Getgid(),
		mapper:     &IDMapper{ProcRoot: config.ProcRoot, Logger: logger},
		logger:     logger,
	}, nil
}

// Run executes command in a new sandbox and returns the exit code the
// launcher should terminate with. A non-nil error means the launch
// failed before the command ran; the code is then ExitSetupFailure and
// no sandbox process is left behind.
func (l *Launcher) Run(command []string) (int, error) {
	child, err := l.Start(command)
	if err != nil {
		return ExitSetupFailure, err
	}

	if err := l.prepare(child); err != nil {
		return ExitSetupFailure, err
	}

	code, err := child.Wait()
	if err != nil {
		return ExitSetupFailure, err
	}
	return code, nil
}

// prepare maps the child's identity and releases it. On failure the
// child has been killed and reaped.
func (l *Launcher) prepare(child *Child) error {
	if err := l.mapper.Map(child.PID(), l.uid, l.gid); err != nil {
		child.abandon()
		return fmt.Errorf("mapping identity for sandbox process %d: %w", child.PID(), err)
	}
	if err := child.Release(); err != nil {
		child.abandon()
		return fmt.Errorf("releasing sandbox process %d: %w", child.PID(), err)
	}
	return nil
}

// Start creates the sandbox child in new mount, user and PID
// namespaces. The child is blocked on its handshake when Start returns:
// the caller must install its identity mapping (see [IDMapper.Map]) and
// then call [Child.Release], or [Child.Kill] it.
func (l *Launcher) Start(command []string) (*Child, error) {
	if len(command) == 0 {
		return nil, errors.New("command is required")
	}
	if command[0] == "" {
		return nil, errors.New("command name is empty")
	}
	if err := checkStackLimit(); err != nil {
		return nil, err
	}

	handshake, err := NewHandshake()
	if err != nil {
		return nil, err
	}

	environment := withoutVariable(os.Environ(), stageEnv)
	environment = append(environment, stageEnv+"="+stageInit)

	cmd := &exec.Cmd{
		Path:        l.executable,
		Args:        append([]string{initArgv0}, command...),
		Env:         environment,
		Stdin:       l.stdin,
		Stdout:      l.stdout,
		Stderr:      l.stderr,
		ExtraFiles:  []*os.File{handshake.File()},
		SysProcAttr: sysProcAttr(),
	}

	if err := cmd.Start(); err != nil {
		handshake.Close()
		return nil, fmt.Errorf("creating sandbox process: %w", err)
	}

	l.logger.Debug("sandbox process created",
		"pid", cmd.Process.Pid,
		"command", command,
	)

	return &Child{
		cmd:       cmd,
		handshake: handshake,
		logger:    l.logger,
	}, nil
}

// Child is a sandbox process created by [Launcher.Start]. Only the
// launcher that created it may wait on it.
type Child struct {
	cmd       *exec.Cmd
	handshake *Handshake
	logger    *slog.Logger
}

// PID returns the child's process id in the launcher's PID namespace.
func (c *Child) PID() int {
	return c.cmd.Process.Pid
}

// Release lets the child proceed to execute its command. The identity
// mapping must be complete before Release is called.
func (c *Child) Release() error {
	if err := c.handshake.Release(); err != nil {
		return err
	}
	c.logger.Debug("sandbox process released", "pid", c.PID())
	return c.handshake.Close()
}

// Kill terminates the child with SIGKILL. SIGKILL sent from the
// launcher's PID namespace reaches the child even though it is the init
// of its own namespace.
func (c *Child) Kill() error {
	return c.cmd.Process.Kill()
}

// Wait blocks until the child terminates and returns the launcher's exit
// code for it: the command's own code after a normal exit, ExitAbnormal
// after termination by a signal. An error means the wait itself failed.
func (c *Child) Wait() (int, error) {
	defer c.handshake.Close()

	waitErr := c.cmd.Wait()
	state := c.cmd.ProcessState
	if state == nil {
		return ExitSetupFailure, fmt.Errorf("waiting for sandbox process: %w", waitErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		// The process was reaped but copying its output failed.
		c.logger.Warn("sandbox output copy failed", "pid", state.Pid(), "error", waitErr)
	}

	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return ExitSetupFailure, fmt.Errorf("sandbox process %d: unexpected wait status %T", state.Pid(), state.Sys())
	}

	code := exitCode(status)
	c.logger.Debug("sandbox process exited",
		"pid", state.Pid(),
		"status", state.String(),
		"exit_code", code,
	)
	return code, nil
}

// abandon kills and reaps a child that will never be released.
func (c *Child) abandon() {
	if err := c.Kill(); err != nil {
		c.logger.Warn("failed to kill unreleased sandbox process", "pid", c.PID(), "error", err)
	}
	if _, err := c.Wait(); err != nil {
		c.logger.Warn("failed to reap unreleased sandbox process", "pid", c.PID(), "error", err)
	}
}
