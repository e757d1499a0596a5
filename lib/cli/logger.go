// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// DebugEnv enables debug logging when set to any non-empty value.
const DebugEnv = "NSBOX_DEBUG"

// NewCommandLogger creates the structured logger for nsbox binaries.
// When stderr is a terminal it uses slog.TextHandler; when stderr is
// piped or redirected it uses slog.JSONHandler.
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), os.Getenv(DebugEnv) != "")
}

func newLogger(w io.Writer, terminal, debug bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		options.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
