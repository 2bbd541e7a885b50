//go:build !windows

package vulkan

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/gogpu/texshare"
)

// DefaultHandleType returns the external handle type used on this
// platform when no override is configured.
func DefaultHandleType() texshare.HandleType {
	return texshare.HandleTypeOpaqueFD
}

// handleTypeSupported reports whether this platform can consume raw
// handles of the given type.
func handleTypeSupported(t texshare.HandleType) bool {
	return t == texshare.HandleTypeOpaqueFD || t == texshare.HandleTypeDMABuf
}

// DuplicateRawHandle duplicates an exported OS handle so the original and
// the duplicate have independent lifetimes. The caller owns the returned
// handle and must close it with CloseRawHandle or consume it in an import.
//
// Transport layers use this to keep a handle alive locally while the
// original travels to another process.
func DuplicateRawHandle(raw uint64, t texshare.HandleType) (uint64, error) {
	if !handleTypeSupported(t) {
		return 0, fmt.Errorf("%w: cannot duplicate %s on this platform", texshare.ErrInvalidHandle, t)
	}
	fd, err := unix.Dup(int(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: dup fd %d: %v", texshare.ErrInvalidHandle, raw, err)
	}
	return uint64(fd), nil
}

// CloseRawHandle returns an exported OS handle to the kernel. Device
// implementations call this from CloseHandle for fd-family types.
func CloseRawHandle(raw uint64, t texshare.HandleType) error {
	if !handleTypeSupported(t) {
		return fmt.Errorf("%w: cannot close %s on this platform", texshare.ErrInvalidHandle, t)
	}
	if err := unix.Close(int(raw)); err != nil {
		return fmt.Errorf("%w: close fd %d: %v", texshare.ErrInvalidHandle, raw, err)
	}
	return nil
}
