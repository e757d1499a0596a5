// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// nsbox-check diagnoses nsbox sandboxes.
//
// Usage:
//
//	nsbox-check validate [--command NAME]
//	nsbox-check probe [--format text|json|yaml|cbor] [--category NAME] [--launch]
//	nsbox-check version
//
// validate checks that the host can create unprivileged sandboxes.
// probe reports what the calling process sees of its own isolation and
// fails if any check does not hold; run it inside a sandbox
// ("nsbox nsbox-check probe") or let it launch one with --launch.
package main
