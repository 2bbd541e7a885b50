//go:build windows

package vulkan

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/gogpu/texshare"
)

// DefaultHandleType returns the external handle type used on this
// platform when no override is configured.
func DefaultHandleType() texshare.HandleType {
	return texshare.HandleTypeOpaqueWin32
}

// handleTypeSupported reports whether this platform can consume raw
// handles of the given type.
func handleTypeSupported(t texshare.HandleType) bool {
	return t == texshare.HandleTypeOpaqueWin32
}

// DuplicateRawHandle duplicates an exported OS handle so the original and
// the duplicate have independent lifetimes. The caller owns the returned
// handle and must close it with CloseRawHandle or consume it in an import.
func DuplicateRawHandle(raw uint64, t texshare.HandleType) (uint64, error) {
	if !handleTypeSupported(t) {
		return 0, fmt.Errorf("%w: cannot duplicate %s on this platform", texshare.ErrInvalidHandle, t)
	}
	proc := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(raw), proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return 0, fmt.Errorf("%w: duplicate handle %d: %v", texshare.ErrInvalidHandle, raw, err)
	}
	return uint64(dup), nil
}

// CloseRawHandle returns an exported OS handle to the kernel. Device
// implementations call this from CloseHandle for NT handle types.
func CloseRawHandle(raw uint64, t texshare.HandleType) error {
	if !handleTypeSupported(t) {
		return fmt.Errorf("%w: cannot close %s on this platform", texshare.ErrInvalidHandle, t)
	}
	if err := windows.CloseHandle(windows.Handle(raw)); err != nil {
		return fmt.Errorf("%w: close handle %d: %v", texshare.ErrInvalidHandle, raw, err)
	}
	return nil
}
