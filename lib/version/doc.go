// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for nsbox binaries.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected at
// build time via -ldflags -X and default to "unknown" / "0.1.0-dev" in
// development builds and test runs:
//
//	go build -ldflags "-X github.com/bureau-foundation/nsbox/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version
