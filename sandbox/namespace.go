// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// CloneFlags is the namespace set every sandbox is created in. All
// three namespaces are requested on the clone call itself, so the child
// never shares any of them with the launcher.
const CloneFlags = syscall.CLONE_NEWNS | syscall.CLONE_NEWUSER | syscall.CLONE_NEWPID

// MinStackSize is the smallest main-thread stack the sandbox entry
// point is allowed to start with.
const MinStackSize = 1 << 20

// rlimInfinity is RLIM_INFINITY as the kernel reports it in struct rlimit.
const rlimInfinity = ^uint64(0)

// stackLimit returns the soft RLIMIT_STACK that a newly executed child
// inherits. An unlimited limit is reported as rlimInfinity.
func stackLimit() (uint64, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &limit); err != nil {
		return 0, fmt.Errorf("reading stack limit: %w", err)
	}
	return limit.Cur, nil
}

// checkStackLimit fails if the inherited stack limit is too small for
// the child to start.
func checkStackLimit() error {
	current, err := stackLimit()
	if err != nil {
		return err
	}
	if current != rlimInfinity && current < MinStackSize {
		return fmt.Errorf("stack limit %d bytes is below the %d byte minimum", current, MinStackSize)
	}
	return nil
}

// sysProcAttr builds the clone attributes for a sandbox child.
// Pdeathsig ties the child's lifetime to the launcher: if the launcher
// dies before releasing it, the kernel kills the child instead of
// leaving it blocked on the handshake.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Cloneflags: CloneFlags,
		Pdeathsig:  syscall.SIGKILL,
	}
}
