// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// fakeProcess creates <root>/<pid> with empty uid_map and gid_map files
// and, if withSetgroups, an empty setgroups file.
func fakeProcess(t *testing.T, pid int, withSetgroups bool) (root, directory string) {
	t.Helper()
	root = t.TempDir()
	directory = filepath.Join(root, strconv.Itoa(pid))
	if err := os.Mkdir(directory, 0o755); err != nil {
		t.Fatal(err)
	}
	names := []string{"uid_map", "gid_map"}
	if withSetgroups {
		names = append(names, "setgroups")
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(directory, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root, directory
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestIDMapper_Map(t *testing.T) {
	t.Parallel()

	root, directory := fakeProcess(t, 4242, true)
	mapper := &IDMapper{ProcRoot: root}

	if err := mapper.Map(4242, 1000, 1001); err != nil {
		t.Fatalf("Map() error: %v", err)
	}

	if got := readFile(t, filepath.Join(directory, "setgroups")); got != "deny" {
		t.Errorf("setgroups = %q, want %q", got, "deny")
	}
	if got := readFile(t, filepath.Join(directory, "uid_map")); got != "0 1000 1" {
		t.Errorf("uid_map = %q, want %q", got, "0 1000 1")
	}
	if got := readFile(t, filepath.Join(directory, "gid_map")); got != "0 1001 1" {
		t.Errorf("gid_map = %q, want %q", got, "0 1001 1")
	}
}

func TestIDMapper_MapWithoutSetgroups(t *testing.T) {
	t.Parallel()

	root, directory := fakeProcess(t, 7, false)
	mapper := &IDMapper{ProcRoot: root}

	if err := mapper.Map(7, 500, 500); err != nil {
		t.Fatalf("Map() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(directory, "setgroups")); !os.IsNotExist(err) {
		t.Errorf("setgroups should not be created, stat error: %v", err)
	}
	if got := readFile(t, filepath.Join(directory, "uid_map")); got != "0 500 1" {
		t.Errorf("uid_map = %q, want %q", got, "0 500 1")
	}
}

func TestIDMapper_SetgroupsFailureStopsMapping(t *testing.T) {
	t.Parallel()

	root, directory := fakeProcess(t, 9, false)
	// A directory in place of the control file fails with EISDIR,
	// which is not the tolerated "absent" case.
	if err := os.Mkdir(filepath.Join(directory, "setgroups"), 0o755); err != nil {
		t.Fatal(err)
	}
	mapper := &IDMapper{ProcRoot: root}

	if err := mapper.Map(9, 1000, 1000); err == nil {
		t.Fatal("expected error when setgroups cannot be written")
	}
	if got := readFile(t, filepath.Join(directory, "uid_map")); got != "" {
		t.Errorf("uid_map should be untouched, got %q", got)
	}
	if got := readFile(t, filepath.Join(directory, "gid_map")); got != "" {
		t.Errorf("gid_map should be untouched, got %q", got)
	}
}

func TestIDMapper_MissingProcess(t *testing.T) {
	t.Parallel()

	mapper := &IDMapper{ProcRoot: t.TempDir()}
	if err := mapper.Map(12345, 1000, 1000); err == nil {
		t.Fatal("expected error for a process without uid_map")
	}
}

func TestParseIDMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		want    IDMap
		wantErr bool
	}{
		{line: "0 1000 1", want: IDMap{Inside: 0, Outside: 1000, Count: 1}},
		{line: "         0       1000          1", want: IDMap{Inside: 0, Outside: 1000, Count: 1}},
		{line: "0 0 4294967295", want: IDMap{Inside: 0, Outside: 0, Count: 4294967295}},
		{line: "0 1000", wantErr: true},
		{line: "0 1000 1 1", wantErr: true},
		{line: "0 -1 1", wantErr: true},
		{line: "0 4294967296 1", wantErr: true},
	}

	for _, test := range tests {
		got, err := ParseIDMap(test.line)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseIDMap(%q) should fail, got %v", test.line, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIDMap(%q) error: %v", test.line, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseIDMap(%q) = %+v, want %+v", test.line, got, test.want)
		}
	}
}

func TestReadIDMap(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	path := filepath.Join(directory, "uid_map")
	content := "         0       1000          1\n      1000     100000      65536\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	maps, err := ReadIDMap(path)
	if err != nil {
		t.Fatalf("ReadIDMap() error: %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("got %d entries, want 2", len(maps))
	}
	if maps[1] != (IDMap{Inside: 1000, Outside: 100000, Count: 65536}) {
		t.Errorf("second entry = %+v", maps[1])
	}

	empty := filepath.Join(directory, "gid_map")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	maps, err = ReadIDMap(empty)
	if err != nil {
		t.Fatalf("ReadIDMap(empty) error: %v", err)
	}
	if len(maps) != 0 {
		t.Errorf("empty map file should yield no entries, got %v", maps)
	}
}

func TestRootMapString(t *testing.T) {
	t.Parallel()

	if got := RootMap(1000).String(); got != "0 1000 1" {
		t.Errorf("RootMap(1000) = %q, want %q", got, "0 1000 1")
	}
}
