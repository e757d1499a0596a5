// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Exit terminates the process with code. A non-nil err is written to
// stderr as "error: err" first.
func Exit(code int, err error) {
	report(os.Stderr, err)
	os.Exit(code)
}

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors where the structured logger may not be initialized.
func Fatal(err error) {
	Exit(1, err)
}

func report(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
