// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Observation is what a process can see about its own isolation.
type Observation struct {
	PID       int     `json:"pid" yaml:"pid" cbor:"pid"`
	EUID      int     `json:"euid" yaml:"euid" cbor:"euid"`
	EGID      int     `json:"egid" yaml:"egid" cbor:"egid"`
	UIDMap    []IDMap `json:"uid_map" yaml:"uid_map" cbor:"uid_map"`
	GIDMap    []IDMap `json:"gid_map" yaml:"gid_map" cbor:"gid_map"`
	Setgroups string  `json:"setgroups,omitempty" yaml:"setgroups,omitempty" cbor:"setgroups,omitempty"`

	// Namespaces maps "mnt", "user" and "pid" to the namespace link
	// target, for example "pid:[4026532833]".
	Namespaces map[string]string `json:"namespaces" yaml:"namespaces" cbor:"namespaces"`

	// HostnameWritable is true if sethostname succeeded. The UTS
	// namespace is shared with the host, so this requires real
	// privilege.
	HostnameWritable bool `json:"hostname_writable" yaml:"hostname_writable" cbor:"hostname_writable"`
}

// observedNamespaces are the namespaces a sandbox replaces.
var observedNamespaces = []string{"mnt", "user", "pid"}

// Observe records the calling process's view of its isolation.
func Observe() (*Observation, error) {
	return observe(DefaultProcRoot)
}

func observe(procRoot string) (*Observation, error) {
	self := filepath.Join(procRoot, "self")
	observation := &Observation{
		PID:        unix.Getpid(),
		EUID:       unix.Geteuid(),
		EGID:       unix.Getegid(),
		Namespaces: make(map[string]string, len(observedNamespaces)),
	}

	var err error
	if observation.UIDMap, err = ReadIDMap(filepath.Join(self, "uid_map")); err != nil {
		return nil, fmt.Errorf("reading uid map: %w", err)
	}
	if observation.GIDMap, err = ReadIDMap(filepath.Join(self, "gid_map")); err != nil {
		return nil, fmt.Errorf("reading gid map: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(self, "setgroups"))
	switch {
	case err == nil:
		observation.Setgroups = strings.TrimSpace(string(data))
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading setgroups: %w", err)
	}

	for _, name := range observedNamespaces {
		target, err := os.Readlink(filepath.Join(self, "ns", name))
		if err != nil {
			return nil, fmt.Errorf("reading %s namespace: %w", name, err)
		}
		observation.Namespaces[name] = target
	}

	// Writing back the current name changes nothing when it succeeds.
	if hostname, err := os.Hostname(); err == nil {
		observation.HostnameWritable = unix.Sethostname([]byte(hostname)) == nil
	}

	return observation, nil
}

// hostRoot reports whether the observed root identity is real root on
// the host, in which case privilege checks are meaningless.
func (o *Observation) hostRoot() bool {
	return len(o.UIDMap) == 1 && o.UIDMap[0].Outside == 0
}

// ProbeCheck is one isolation property verified from inside a sandbox.
// Run returns nil when the property holds.
type ProbeCheck struct {
	Name        string
	Description string
	Category    string // "process", "identity", "privilege"
	Run         func(observation *Observation) error
}

// ProbeChecks are the properties every nsbox sandbox must have.
var ProbeChecks = []ProbeCheck{
	{
		Name:        "process-pid-root",
		Description: "Process is PID 1 of its own PID namespace",
		Category:    "process",
		Run: func(observation *Observation) error {
			if observation.PID != 1 {
				return fmt.Errorf("pid is %d", observation.PID)
			}
			return nil
		},
	},
	{
		Name:        "identity-root",
		Description: "Effective uid and gid are 0",
		Category:    "identity",
		Run: func(observation *Observation) error {
			if observation.EUID != 0 || observation.EGID != 0 {
				return fmt.Errorf("euid %d egid %d", observation.EUID, observation.EGID)
			}
			return nil
		},
	},
	{
		Name:        "identity-uid-map",
		Description: "uid_map maps exactly root to one host uid",
		Category:    "identity",
		Run: func(observation *Observation) error {
			return checkRootMap(observation.UIDMap)
		},
	},
	{
		Name:        "identity-gid-map",
		Description: "gid_map maps exactly root to one host gid",
		Category:    "identity",
		Run: func(observation *Observation) error {
			return checkRootMap(observation.GIDMap)
		},
	},
	{
		Name:        "identity-setgroups",
		Description: "setgroups is denied",
		Category:    "identity",
		Run: func(observation *Observation) error {
			if observation.Setgroups != "" && observation.Setgroups != "deny" {
				return fmt.Errorf("setgroups is %q", observation.Setgroups)
			}
			return nil
		},
	},
	{
		Name:        "privilege-hostname",
		Description: "Host hostname cannot be changed",
		Category:    "privilege",
		Run: func(observation *Observation) error {
			if observation.HostnameWritable && !observation.hostRoot() {
				return errors.New("sethostname succeeded on the host UTS namespace")
			}
			return nil
		},
	},
}

func checkRootMap(maps []IDMap) error {
	if len(maps) != 1 {
		return fmt.Errorf("%d map entries, want 1", len(maps))
	}
	if maps[0].Inside != 0 || maps[0].Count != 1 {
		return fmt.Errorf("map %q, want \"0 <id> 1\"", maps[0])
	}
	return nil
}

// ProbeResult holds the result of one probe check.
type ProbeResult struct {
	Name     string `json:"name" yaml:"name" cbor:"name"`
	Category string `json:"category" yaml:"category" cbor:"category"`
	Passed   bool   `json:"passed" yaml:"passed" cbor:"passed"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

// ProbeRunner evaluates probe checks against an observation.
type ProbeRunner struct {
	checks []ProbeCheck
}

// NewProbeRunner creates a runner with all checks.
func NewProbeRunner() *ProbeRunner {
	return &ProbeRunner{checks: ProbeChecks}
}

// Run evaluates the checks in category, or all checks if category is
// empty.
func (r *ProbeRunner) Run(observation *Observation, category string) *Report {
	report := &Report{Observation: observation, Results: make([]ProbeResult, 0, len(r.checks))}
	for _, check := range r.checks {
		if category != "" && check.Category != category {
			continue
		}
		result := ProbeResult{Name: check.Name, Category: check.Category, Passed: true}
		if err := check.Run(observation); err != nil {
			result.Passed = false
			result.Error = err.Error()
		}
		report.Results = append(report.Results, result)
	}
	return report
}
