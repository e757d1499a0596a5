// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree and logger used by nsbox
// diagnostic binaries.
//
// A [Command] has either a Run function or Subcommands. Flags are
// declared lazily through a pflag.FlagSet factory so help output and
// parsing always see a fresh set. Errors that carry an exit code
// (anything implementing [ExitCoder]) are mapped to that code by
// [Main]; all other errors exit 1 after printing.
//
// [NewCommandLogger] chooses a text handler when stderr is a terminal
// and a JSON handler otherwise.
package cli
