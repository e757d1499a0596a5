// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// nsbox runs a command as root of its own user namespace and as PID 1
// of its own PID namespace, with a private mount namespace.
//
// Usage:
//
//	nsbox <command> [args...]
//	nsbox --version
//	nsbox --help
//
// The command is looked up on PATH. Every other argument is passed to
// it unchanged, including arguments that look like flags. nsbox exits
// with the command's exit code, 125 if the sandbox could not be set up,
// 127 if the command could not be executed, and 128 if the command was
// killed by a signal.
//
// Set NSBOX_DEBUG=1 for debug logging on stderr.
package main
