// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bureau-foundation/nsbox/lib/cli"
	"github.com/bureau-foundation/nsbox/sandbox"
)

func testRoot(stdout io.Writer) *cli.Command {
	return rootCommand(stdout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	if err := testRoot(&stdout).Execute([]string{"version"}); err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "nsbox-check ") {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestProbeOutsideSandboxFails(t *testing.T) {
	var stdout bytes.Buffer
	err := testRoot(&stdout).Execute([]string{"probe", "--format", "json", "--category", "process"})

	var failed *checkFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("probe outside a sandbox should fail its checks, got %v", err)
	}
	if failed.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", failed.ExitCode())
	}

	var report sandbox.Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, stdout.String())
	}
	if len(report.Results) != 1 || report.Results[0].Name != "process-pid-root" {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestProbeRejectsUnknownFormat(t *testing.T) {
	err := testRoot(io.Discard).Execute([]string{"probe", "--format", "xml"})
	if err == nil || !strings.Contains(err.Error(), "unknown report format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestValidateRejectsArguments(t *testing.T) {
	err := testRoot(io.Discard).Execute([]string{"validate", "extra"})
	if err == nil {
		t.Fatal("validate should reject positional arguments")
	}
}

func TestValidateMissingCommand(t *testing.T) {
	var stdout bytes.Buffer
	err := testRoot(&stdout).Execute([]string{"validate", "--command", "nsbox-no-such-command-xyz"})

	var failed *checkFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("validate with a missing command should fail, got %v", err)
	}
	if !strings.Contains(stdout.String(), "✗ command") {
		t.Errorf("output missing command failure:\n%s", stdout.String())
	}
}
