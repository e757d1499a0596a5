// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Futex operations. The shared (non-PRIVATE) variants are required: the
// word lives in a mapping shared by two processes, and the kernel keys
// shared futexes on the backing inode and offset rather than on the
// virtual address.
const (
	futexWait = 0
	futexWake = 1
)

// handshakeSize is the size of the shared mapping: one 32-bit word.
const handshakeSize = 4

// Handshake states.
const (
	handshakeBlocked  int32 = 0
	handshakeReleased int32 = 1
)

// Handshake is the release flag shared between the launcher and a
// sandbox child. The flag is a single word in a memfd mapped MAP_SHARED
// by both processes, so a store by either side is visible to the other.
// Because the child re-executes, the mapping is not inherited through
// fork; the child receives the memfd as a file descriptor and maps it
// again ([OpenHandshake]).
//
// The protocol is single-writer: the launcher moves the word from 0 to
// 1 exactly once with [Handshake.Release], and the child blocks in
// [Handshake.Wait] until it observes 1.
type Handshake struct {
	file *os.File
	data []byte
	word *int32
}

// NewHandshake creates a handshake in the blocked state. The returned
// handshake owns a memfd that must be passed to the child (see
// [Handshake.File]) and released with Close.
func NewHandshake() (*Handshake, error) {
	fd, err := unix.MemfdCreate("nsbox-handshake", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("handshake: memfd_create failed: %w", err)
	}
	if err := unix.Ftruncate(fd, handshakeSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("handshake: ftruncate failed: %w", err)
	}

	handshake, err := mapHandshake(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	handshake.file = os.NewFile(uintptr(fd), "nsbox-handshake")
	return handshake, nil
}

// OpenHandshake maps a handshake from a descriptor inherited from the
// launcher. The caller keeps ownership of fd; Close unmaps the word and
// closes fd.
func OpenHandshake(fd int) (*Handshake, error) {
	handshake, err := mapHandshake(fd)
	if err != nil {
		return nil, err
	}
	handshake.file = os.NewFile(uintptr(fd), "nsbox-handshake")
	return handshake, nil
}

func mapHandshake(fd int) (*Handshake, error) {
	data, err := unix.Mmap(fd, 0, handshakeSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("handshake: mmap failed: %w", err)
	}
	return &Handshake{
		data: data,
		word: (*int32)(unsafe.Pointer(&data[0])),
	}, nil
}

// File returns the memfd backing the handshake, for passing to the
// child through exec.Cmd.ExtraFiles.
func (h *Handshake) File() *os.File {
	return h.file
}

// Released reports whether the flag has been set.
func (h *Handshake) Released() bool {
	return atomic.LoadInt32(h.word) != handshakeBlocked
}

// Wait blocks until the flag is released. The kernel only puts the
// caller to sleep while the word still holds 0, so a release that lands
// before Wait is entered returns immediately. Wakeups are never trusted:
// the word is re-read after every return from the futex call.
func (h *Handshake) Wait() error {
	for atomic.LoadInt32(h.word) == handshakeBlocked {
		err := futex(h.word, futexWait, handshakeBlocked)
		switch {
		case err == nil, errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		default:
			return fmt.Errorf("handshake: futex wait failed: %w", err)
		}
	}
	return nil
}

// Release sets the flag and wakes the waiting child. The store is
// sequentially consistent, so everything the launcher did before
// Release (writing the identity maps) is visible before the child
// can observe the flag.
func (h *Handshake) Release() error {
	atomic.StoreInt32(h.word, handshakeReleased)
	if err := futex(h.word, futexWake, 1); err != nil {
		return fmt.Errorf("handshake: futex wake failed: %w", err)
	}
	return nil
}

// Close unmaps the word and closes the backing descriptor. The other
// process's mapping is unaffected.
func (h *Handshake) Close() error {
	var firstError error
	if h.data != nil {
		if err := unix.Munmap(h.data); err != nil {
			firstError = fmt.Errorf("handshake: munmap failed: %w", err)
		}
		h.data = nil
		h.word = nil
	}
	if h.file != nil {
		if err := h.file.Close(); err != nil && firstError == nil {
			firstError = fmt.Errorf("handshake: close failed: %w", err)
		}
		h.file = nil
	}
	return firstError
}

func futex(word *int32, operation int, value int32) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		uintptr(operation),
		uintptr(value),
		0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
