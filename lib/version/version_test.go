// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedDirty, savedTime := GitCommit, GitDirty, BuildTime
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime = savedCommit, savedDirty, savedTime
	})

	GitCommit, GitDirty, BuildTime = "abc1234", "false", "2026-10-01T00:00:00Z"
	if got, want := Info(), Version+" (abc1234, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty marker", got)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() = %q, want prefix %q", full, Info())
	}
	if !strings.Contains(full, "Platform: ") {
		t.Errorf("Full() = %q, missing platform", full)
	}
}
