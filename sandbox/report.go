// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/nsbox/lib/codec"
)

// Report formats accepted by [Report.Encode].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Report is the outcome of a probe run.
type Report struct {
	Observation *Observation  `json:"observation" yaml:"observation" cbor:"observation"`
	Results     []ProbeResult `json:"results" yaml:"results" cbor:"results"`
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int {
	passed := 0
	for _, result := range r.Results {
		if result.Passed {
			passed++
		}
	}
	return passed
}

// HasFailures returns true if any check failed.
func (r *Report) HasFailures() bool {
	return r.Passed() != len(r.Results)
}

// Encode writes the report to w in the given format.
func (r *Report) Encode(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		r.writeText(w)
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return err
		}
		return encoder.Close()
	case FormatCBOR:
		return codec.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("unknown report format %q (want text, json, yaml or cbor)", format)
	}
}

func (r *Report) writeText(w io.Writer) {
	if observation := r.Observation; observation != nil {
		fmt.Fprintf(w, "pid %d, euid %d, egid %d\n", observation.PID, observation.EUID, observation.EGID)
		for _, entry := range observation.UIDMap {
			fmt.Fprintf(w, "uid_map: %s\n", entry)
		}
		for _, entry := range observation.GIDMap {
			fmt.Fprintf(w, "gid_map: %s\n", entry)
		}
		if observation.Setgroups != "" {
			fmt.Fprintf(w, "setgroups: %s\n", observation.Setgroups)
		}
		names := make([]string, 0, len(observation.Namespaces))
		for name := range observation.Namespaces {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "ns %s: %s\n", name, observation.Namespaces[name])
		}
		fmt.Fprintln(w)
	}

	for _, result := range r.Results {
		if result.Passed {
			fmt.Fprintf(w, "✓ %s\n", result.Name)
		} else {
			fmt.Fprintf(w, "✗ %s: %s\n", result.Name, result.Error)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d/%d checks passed\n", r.Passed(), len(r.Results))
}
