// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by
// nsbox components.
//
// JSON and YAML are used where a person reads the output. CBOR is used
// where another program consumes it: probe reports written with
// "nsbox-check probe --format cbor" use Core Deterministic Encoding
// (RFC 8949 §4.2), so equal reports encode to equal bytes.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
//	err = codec.NewEncoder(os.Stdout).Encode(report)
package codec
