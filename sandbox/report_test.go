// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/nsbox/lib/codec"
)

func TestReportEncodeJSON(t *testing.T) {
	t.Parallel()

	report := NewProbeRunner().Run(sandboxedObservation(), "")
	var buffer bytes.Buffer
	if err := report.Encode(&buffer, FormatJSON); err != nil {
		t.Fatalf("Encode(json) error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding JSON report: %v", err)
	}
	if decoded.Observation.UIDMap[0] != RootMap(1000) {
		t.Errorf("uid map = %v, want %v", decoded.Observation.UIDMap[0], RootMap(1000))
	}
	if len(decoded.Results) != len(report.Results) {
		t.Errorf("got %d results, want %d", len(decoded.Results), len(report.Results))
	}
}

func TestReportEncodeYAML(t *testing.T) {
	t.Parallel()

	report := NewProbeRunner().Run(sandboxedObservation(), "process")
	var buffer bytes.Buffer
	if err := report.Encode(&buffer, FormatYAML); err != nil {
		t.Fatalf("Encode(yaml) error: %v", err)
	}

	var decoded Report
	if err := yaml.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding YAML report: %v", err)
	}
	if decoded.Observation.PID != 1 {
		t.Errorf("pid = %d, want 1", decoded.Observation.PID)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Name != "process-pid-root" {
		t.Errorf("results = %+v", decoded.Results)
	}
}

func TestReportEncodeCBOR(t *testing.T) {
	t.Parallel()

	report := NewProbeRunner().Run(sandboxedObservation(), "")
	var buffer bytes.Buffer
	if err := report.Encode(&buffer, FormatCBOR); err != nil {
		t.Fatalf("Encode(cbor) error: %v", err)
	}

	var decoded Report
	if err := codec.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding CBOR report: %v", err)
	}
	if decoded.Observation.Setgroups != "deny" {
		t.Errorf("setgroups = %q, want deny", decoded.Observation.Setgroups)
	}
	if decoded.HasFailures() {
		t.Errorf("decoded report has failures: %+v", decoded.Results)
	}
}

func TestReportEncodeText(t *testing.T) {
	t.Parallel()

	observation := sandboxedObservation()
	observation.PID = 7
	report := NewProbeRunner().Run(observation, "")

	var buffer bytes.Buffer
	if err := report.Encode(&buffer, FormatText); err != nil {
		t.Fatalf("Encode(text) error: %v", err)
	}
	output := buffer.String()
	for _, want := range []string{
		"uid_map: 0 1000 1",
		"ns pid: pid:[4026532833]",
		"✗ process-pid-root: pid is 7",
		"✓ identity-root",
		"5/6 checks passed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text report missing %q:\n%s", want, output)
		}
	}
}

func TestReportEncodeUnknownFormat(t *testing.T) {
	t.Parallel()

	report := &Report{}
	if err := report.Encode(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
