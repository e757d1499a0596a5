// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

type recordingT struct {
	failure string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.failure = fmt.Sprintf(format, args...)
	panic(r)
}

func capture(r *recordingT, body func()) {
	defer func() {
		if recovered := recover(); recovered != nil && recovered != r {
			panic(recovered)
		}
	}()
	body()
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	recorder := &recordingT{}
	capture(recorder, func() {
		RequireReceive(recorder, make(chan int), 10*time.Millisecond, "launch %d", 3)
	})
	if recorder.failure == "" {
		t.Fatal("expected a failure on timeout")
	}
	if want := "launch 3"; !strings.Contains(recorder.failure, want) {
		t.Errorf("failure = %q, want it to mention %q", recorder.failure, want)
	}
}

func TestRequireReceiveClosed(t *testing.T) {
	ch := make(chan int)
	close(ch)
	recorder := &recordingT{}
	capture(recorder, func() {
		RequireReceive(recorder, ch, time.Second)
	})
	if recorder.failure == "" {
		t.Fatal("expected a failure on a closed channel")
	}
}
