// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for executable files.
//
// The launcher logs the digest of the executable it re-enters as the
// sandbox entry point.
//
//   - [HashFile] streams a file through BLAKE3 with constant memory
//   - [FormatDigest] renders a digest as lowercase hex
//   - [ParseDigest] parses a hex digest, validating length and encoding
//
// This package has no dependencies on other nsbox packages.
package binhash
