// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox runs a command inside fresh mount, user and PID
// namespaces with the invoking user mapped to root.
//
// [Launcher] creates the sandbox process by re-executing the current
// binary with CLONE_NEWNS, CLONE_NEWUSER and CLONE_NEWPID set on the
// clone. The re-executed image must call [RunInit] early in main when
// [IsInitStage] reports true. The child blocks on a [Handshake], a
// single 32-bit word in a shared memfd mapping, while the parent writes
// the identity maps through [IDMapper]. Once released the child execs
// the target command, which becomes PID 1 of its namespace.
//
// Exit statuses follow a fixed contract: the command's own code on a
// normal exit, [ExitSetupFailure] for launcher failures,
// [ExitLaunchFailure] when the command cannot be executed, and
// [ExitAbnormal] for any death by signal.
//
// The package also carries diagnostics. [DetectCapabilities] and
// [Validator] check the host before a launch. [Observe] and
// [ProbeRunner] check, from inside a sandbox, that isolation took
// effect, producing a [Report].
//
// Mounts are not modified. The mount namespace starts as a private copy
// of the caller's, and /proc still shows the host's process table.
package sandbox
