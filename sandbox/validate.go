// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"io"
	"os"
)

// ValidationResult holds the result of a validation check.
type ValidationResult struct {
	Name    string
	Passed  bool
	Message string
	Warning bool // True if this is a warning, not an error.
}

// Validator performs pre-flight validation for sandbox execution.
type Validator struct {
	results []ValidationResult
	errors  int
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		results: make([]ValidationResult, 0),
	}
}

// Results returns all validation results.
func (v *Validator) Results() []ValidationResult {
	return v.results
}

// HasErrors returns true if any validation failed.
func (v *Validator) HasErrors() bool {
	return v.errors > 0
}

func (v *Validator) pass(name, message string) {
	v.results = append(v.results, ValidationResult{Name: name, Passed: true, Message: message})
}

func (v *Validator) warn(name, message string) {
	v.results = append(v.results, ValidationResult{Name: name, Passed: true, Message: message, Warning: true})
}

func (v *Validator) fail(name, message string) {
	v.results = append(v.results, ValidationResult{Name: name, Passed: false, Message: message})
	v.errors++
}

// ValidateAll runs every host check plus, if command is non-empty, a
// lookup of the command on PATH.
func (v *Validator) ValidateAll(caps *Capabilities, command string) {
	v.ValidateUserNamespaces(caps)
	v.ValidateSetgroups(caps)
	v.ValidateStack(caps)
	v.ValidateIdentity(os.Getuid(), os.Getgid())
	if command != "" {
		v.ValidateCommand(command)
	}
}

// ValidateUserNamespaces checks that unprivileged user namespaces can
// be created.
func (v *Validator) ValidateUserNamespaces(caps *Capabilities) {
	if !caps.UnprivilegedClone {
		v.fail("userns", "unprivileged user namespaces are disabled (set kernel.unprivileged_userns_clone=1)")
		return
	}
	switch {
	case caps.MaxUserNamespaces == 0:
		v.fail("userns", "user.max_user_namespaces is 0")
	case caps.MaxUserNamespaces < 0:
		v.warn("userns", "cannot read user.max_user_namespaces")
	default:
		v.pass("userns", fmt.Sprintf("user namespaces enabled (max %d)", caps.MaxUserNamespaces))
	}
}

// ValidateSetgroups reports whether the kernel has the setgroups
// control file. Its absence is not an error: such kernels also lack the
// gid_map restriction it exists for.
func (v *Validator) ValidateSetgroups(caps *Capabilities) {
	if !caps.SetgroupsControl {
		v.warn("setgroups", "no setgroups control file (pre-3.19 kernel); deny step will be skipped")
		return
	}
	v.pass("setgroups", "setgroups control file present")
}

// ValidateStack checks the stack limit the sandbox child inherits.
func (v *Validator) ValidateStack(caps *Capabilities) {
	if caps.StackLimit == rlimInfinity {
		v.pass("stack", "stack limit unlimited")
		return
	}
	if caps.StackLimit < MinStackSize {
		v.fail("stack", fmt.Sprintf("stack limit %d bytes is below %d", caps.StackLimit, MinStackSize))
		return
	}
	v.pass("stack", fmt.Sprintf("stack limit %d KiB", caps.StackLimit/1024))
}

// ValidateIdentity reports the ids that will be mapped to root.
func (v *Validator) ValidateIdentity(uid, gid int) {
	if uid == 0 {
		v.warn("identity", "running as host root: root inside the sandbox is real root")
		return
	}
	v.pass("identity", fmt.Sprintf("uid %d and gid %d will map to 0", uid, gid))
}

// ValidateCommand checks that command resolves the way the sandbox
// entry point will resolve it.
func (v *Validator) ValidateCommand(command string) {
	path, err := lookCommand(command)
	if err != nil {
		v.fail("command", fmt.Sprintf("%s: %v", command, err))
		return
	}
	v.pass("command", fmt.Sprintf("%s resolves to %s", command, path))
}

// PrintResults writes validation results to a writer.
func (v *Validator) PrintResults(w io.Writer) {
	for _, r := range v.results {
		var prefix string
		if r.Passed {
			if r.Warning {
				prefix = "⚠"
			} else {
				prefix = "✓"
			}
		} else {
			prefix = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	if v.HasErrors() {
		fmt.Fprintf(w, "Validation failed with %d error(s)\n", v.errors)
	} else {
		fmt.Fprintln(w, "Ready to run sandbox")
	}
}
