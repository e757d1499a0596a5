// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for nsbox packages.
//
// [RequireReceive] wraps the select-with-timeout pattern so tests that
// wait on sandbox processes from goroutines fail instead of hanging
// when a child never reports back.
package testutil
