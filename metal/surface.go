package metal

import "time"

// SurfaceInfo carries the creation parameters for a shareable surface,
// already mapped to native terms.
type SurfaceInfo struct {
	Width  uint32
	Height uint32

	// PixelFormat is the native MTLPixelFormat code.
	PixelFormat uint32

	// RowBytes is the aligned bytes-per-row the surface must be
	// allocated with.
	RowBytes uint64

	Label string
}

// Surface is one IOSurface as seen by the manager.
type Surface interface {
	// ID returns the machine-global surface id.
	ID() uint32

	// AllocSize returns the total byte size of the surface allocation.
	AllocSize() uint64
}

// SharedEvent is one MTLSharedEvent as seen by the manager. The counter
// is shared by every holder of the same event id.
type SharedEvent interface {
	// ID returns the event's shareable id.
	ID() uint64

	// Signal sets the counter to value, which must be strictly greater
	// than the current counter. A non-increasing value is reported by
	// wrapping texshare.ErrNonMonotonicSignal.
	Signal(value uint64) error

	// Wait blocks until the counter reaches value or the timeout fires.
	// A timeout of 0 polls; texshare.WaitForever blocks indefinitely.
	// Expiry is reported by wrapping texshare.ErrTimeout.
	Wait(value uint64, timeout time.Duration) error

	// Value returns the current counter without blocking.
	Value() (uint64, error)
}

// SurfaceProvider is the host's IOSurface integration. The manager owns
// no Metal state of its own; everything it shares is created through, or
// looked up by, this interface.
//
// Contract for implementations:
//   - LookupSurface and LookupSharedEvent must report an unknown id by
//     wrapping texshare.ErrInvalidHandle.
//   - CreateSurface must report allocation failure by wrapping
//     texshare.ErrOutOfMemory.
//   - Surfaces returned by LookupSurface hold a use count; the manager
//     balances each successful lookup with one ReleaseSurface.
type SurfaceProvider interface {
	// CreateSurface allocates a new shareable surface.
	CreateSurface(info SurfaceInfo) (Surface, error)

	// LookupSurface resolves a surface id minted elsewhere on this
	// machine.
	LookupSurface(id uint32) (Surface, error)

	// ReleaseSurface drops one use of a surface obtained from
	// CreateSurface or LookupSurface.
	ReleaseSurface(s Surface)

	// NewSharedEvent creates a shareable event with the given initial
	// counter.
	NewSharedEvent(initial uint64) (SharedEvent, error)

	// LookupSharedEvent resolves an event id minted elsewhere.
	LookupSharedEvent(id uint64) (SharedEvent, error)

	// Close releases provider resources. The manager calls it exactly
	// once, from Manager.Close.
	Close() error
}
