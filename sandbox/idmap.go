// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultProcRoot is where the identity mapper finds per-process
// control files.
const DefaultProcRoot = "/proc"

// IDMap is one line of a uid_map or gid_map file: Count ids starting at
// Inside in the child's user namespace map to ids starting at Outside
// in the parent's.
type IDMap struct {
	Inside  uint32 `json:"inside" yaml:"inside" cbor:"inside"`
	Outside uint32 `json:"outside" yaml:"outside" cbor:"outside"`
	Count   uint32 `json:"count" yaml:"count" cbor:"count"`
}

// RootMap maps root inside the sandbox to id outside it, and nothing
// else.
func RootMap(id int) IDMap {
	return IDMap{Inside: 0, Outside: uint32(id), Count: 1}
}

// String renders the map in the kernel's "inside outside count" form.
func (m IDMap) String() string {
	return fmt.Sprintf("%d %d %d", m.Inside, m.Outside, m.Count)
}

// ParseIDMap parses one line of a uid_map or gid_map file. The kernel
// pads fields with spaces when reading these files back.
func ParseIDMap(line string) (IDMap, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return IDMap{}, fmt.Errorf("id map line %q: want 3 fields, got %d", line, len(fields))
	}
	var values [3]uint32
	for index, field := range fields {
		value, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return IDMap{}, fmt.Errorf("id map line %q: %w", line, err)
		}
		values[index] = uint32(value)
	}
	return IDMap{Inside: values[0], Outside: values[1], Count: values[2]}, nil
}

// ReadIDMap reads every entry of a uid_map or gid_map file. An empty
// file (a namespace with no mapping yet) yields an empty slice.
func ReadIDMap(path string) ([]IDMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var maps []IDMap
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseIDMap(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		maps = append(maps, entry)
	}
	return maps, nil
}

// IDMapper writes the identity mapping of a sandbox child's user
// namespace. It runs in the launcher, which still holds the privilege
// of the original namespace.
type IDMapper struct {
	// ProcRoot is the procfs mount to address children through.
	// Defaults to DefaultProcRoot.
	ProcRoot string

	// Logger for mapping operations. Defaults to slog.Default().
	Logger *slog.Logger
}

func (m *IDMapper) procRoot() string {
	if m.ProcRoot == "" {
		return DefaultProcRoot
	}
	return m.ProcRoot
}

func (m *IDMapper) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Map installs the single-id root mapping for pid: setgroups is denied
// first, then uid, then gid. The kernel refuses an unprivileged gid_map
// write until setgroups has been denied, so the order is fixed.
func (m *IDMapper) Map(pid, uid, gid int) error {
	processDirectory := filepath.Join(m.procRoot(), strconv.Itoa(pid))

	if err := m.denySetgroups(filepath.Join(processDirectory, "setgroups")); err != nil {
		return err
	}
	if err := writeControlFile(filepath.Join(processDirectory, "uid_map"), RootMap(uid).String()); err != nil {
		return err
	}
	if err := writeControlFile(filepath.Join(processDirectory, "gid_map"), RootMap(gid).String()); err != nil {
		return err
	}

	m.logger().Debug("identity mapping installed", "pid", pid, "uid", uid, "gid", gid)
	return nil
}

// denySetgroups writes "deny" to the setgroups control file. Kernels
// older than 3.19 have no such file and need no denial.
func (m *IDMapper) denySetgroups(path string) error {
	err := writeControlFile(path, "deny")
	if errors.Is(err, fs.ErrNotExist) {
		m.logger().Debug("setgroups control file absent, skipping deny", "path", path)
		return nil
	}
	return err
}

// writeControlFile writes content to an existing procfs control file in
// a single write(2). The map files reject partial and repeated writes,
// so a short write is an error rather than something to retry.
func writeControlFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	written, err := file.Write([]byte(content))
	if err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if written != len(content) {
		file.Close()
		return fmt.Errorf("writing %s: short write (%d of %d bytes)", path, written, len(content))
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
