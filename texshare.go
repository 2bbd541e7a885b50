package texshare

import (
	"math"
	"time"
)

// WaitForever makes a wait block until the awaited condition holds.
// A timeout of 0 polls: the wait returns immediately with either success
// or [ErrTimeout].
const WaitForever = time.Duration(math.MaxInt64)

// SharedTexture is a texture resident on one backend device, created by
// CreateShareableTexture or ImportTexture. The shape fields are copied
// verbatim from the descriptor and never change.
//
// A SharedTexture is exclusively owned by the manager that created or
// imported it; passing it to another manager fails with [ErrInvalidTexture].
// Exporting does not transfer ownership — it mints an independent,
// separately released handle.
type SharedTexture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the canonical pixel format.
	Format() Format

	// Usage returns the usage set.
	Usage() Usage

	// Backend returns the backend the texture lives on.
	Backend() Backend

	// Descriptor returns a copy of the creating descriptor.
	Descriptor() TextureDescriptor
}

// Manager creates, exports, imports, and releases shared textures within
// one graphics API context. Each backend package provides a concrete
// implementation constructed around a host-supplied device; managers never
// share state with each other.
//
// All methods are safe for concurrent use. None of them blocks on another
// process's progress; only the Wait* methods of the backend sync APIs
// block, bounded by an explicit timeout.
type Manager interface {
	// Backend identifies the manager's graphics API.
	Backend() Backend

	// CreateShareableTexture allocates a texture that can be exported.
	// The allocation is dedicated whenever the backend's export mechanism
	// requires 1:1 binding between memory and resource.
	CreateShareableTexture(desc TextureDescriptor) (SharedTexture, error)

	// ExportTexture mints a transmissible handle for a texture owned by
	// this manager and pins the resource in the manager's registry. The
	// returned handle never aliases copied memory. Each successful export
	// increments the registry count by exactly one and is paired with one
	// ReleaseTextureHandle.
	ExportTexture(tex SharedTexture) (TextureHandle, error)

	// ImportTexture binds a view of the memory behind handle against an
	// identical descriptor. The expected byte size is recomputed from the
	// descriptor; any disagreement with handle.Size is [ErrSizeMismatch].
	ImportTexture(handle TextureHandle, desc TextureDescriptor) (SharedTexture, error)

	// ReleaseTextureHandle decrements the registry count for handle.
	// When the count reaches zero the OS-level duplicate is released
	// without touching the original SharedTexture. Releasing a handle
	// whose count already reached zero is [ErrUseAfterRelease].
	ReleaseTextureHandle(handle TextureHandle) error

	// DestroyTexture destroys a texture created or imported by this
	// manager. The underlying allocation is returned to the driver only
	// once every exported handle has also been released.
	DestroyTexture(tex SharedTexture) error

	// Close tears the manager down. Handles still registered are released
	// with a warning. After Close every operation fails with
	// [ErrManagerClosed].
	Close() error
}
