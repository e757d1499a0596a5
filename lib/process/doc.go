// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for nsbox
// binaries. They cover the raw I/O that happens outside the structured
// logger: reporting a fatal error to stderr and terminating with a
// chosen status.
//
// The sandbox entry point uses this package because it runs between
// re-exec and the final execve, where no logger is configured and the
// only channel back to the launcher is the exit status.
package process
