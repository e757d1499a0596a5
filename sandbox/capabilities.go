// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Capabilities describes what the host allows an unprivileged sandbox
// to do.
type Capabilities struct {
	// UnprivilegedClone is false when the Debian/Ubuntu
	// kernel.unprivileged_userns_clone knob forbids unprivileged user
	// namespaces. Kernels without the knob allow them.
	UnprivilegedClone bool

	// MaxUserNamespaces is user.max_user_namespaces, or -1 when it
	// cannot be read.
	MaxUserNamespaces int

	// SetgroupsControl is true when the kernel has the per-process
	// setgroups control file (Linux 3.19+).
	SetgroupsControl bool

	// StackLimit is the soft RLIMIT_STACK a child would inherit.
	StackLimit uint64
}

// DetectCapabilities checks what sandbox features are available.
func DetectCapabilities() *Capabilities {
	return detectCapabilities(DefaultProcRoot)
}

func detectCapabilities(procRoot string) *Capabilities {
	caps := &Capabilities{
		UnprivilegedClone: true,
		MaxUserNamespaces: -1,
	}

	if value, err := readSysctl(procRoot, "kernel/unprivileged_userns_clone"); err == nil {
		caps.UnprivilegedClone = value != "0"
	}
	if value, err := readSysctl(procRoot, "user/max_user_namespaces"); err == nil {
		if parsed, err := strconv.Atoi(value); err == nil {
			caps.MaxUserNamespaces = parsed
		}
	}
	if _, err := os.Stat(filepath.Join(procRoot, "self", "setgroups")); err == nil {
		caps.SetgroupsControl = true
	}
	if limit, err := stackLimit(); err == nil {
		caps.StackLimit = limit
	}
	return caps
}

// CanRunSandbox returns true if an unprivileged sandbox can be created.
func (c *Capabilities) CanRunSandbox() bool {
	return c.SkipReason() == ""
}

// SkipReason returns a human-readable reason why sandboxing isn't
// available, or the empty string if it is.
func (c *Capabilities) SkipReason() string {
	if !c.UnprivilegedClone {
		return "unprivileged user namespaces not enabled (set kernel.unprivileged_userns_clone=1)"
	}
	if c.MaxUserNamespaces == 0 {
		return "user namespaces disabled (user.max_user_namespaces=0)"
	}
	if c.StackLimit != rlimInfinity && c.StackLimit < MinStackSize {
		return "stack limit below 1 MiB"
	}
	return ""
}

func readSysctl(procRoot, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, "sys", name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
