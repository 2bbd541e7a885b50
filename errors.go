package texshare

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every manager operation returns success or exactly one of
// these kinds, matched with errors.Is. Operations roll back any partial
// work before returning an error; only ErrTimeout is designed to be
// recovered by re-waiting.
var (
	// ErrInvalidDescriptor is returned for a descriptor with a zero
	// dimension, an empty or unknown usage set, or an unknown format.
	ErrInvalidDescriptor = errors.New("texshare: invalid descriptor")

	// ErrUnsupportedFormat is returned when a backend has no native
	// mapping for the requested canonical format.
	ErrUnsupportedFormat = errors.New("texshare: unsupported format")

	// ErrOutOfMemory is returned when the device allocation fails.
	ErrOutOfMemory = errors.New("texshare: out of device memory")

	// ErrInvalidTexture is returned when a texture belongs to another
	// manager or has already been destroyed.
	ErrInvalidTexture = errors.New("texshare: invalid texture")

	// ErrInvalidHandle is returned for a handle whose backend or type tag
	// this manager or platform cannot consume, or whose referent is
	// unknown at call time.
	ErrInvalidHandle = errors.New("texshare: invalid handle")

	// ErrSizeMismatch is returned when the byte size computed from the
	// import descriptor disagrees with the size recorded in the handle.
	ErrSizeMismatch = errors.New("texshare: size mismatch")

	// ErrUseAfterRelease is returned when a handle is released twice or
	// used after its registry count reached zero.
	ErrUseAfterRelease = errors.New("texshare: handle already released")

	// ErrTimeout is returned when a bounded wait elapses before the
	// awaited condition holds. Re-waiting is always safe.
	ErrTimeout = errors.New("texshare: wait timed out")

	// ErrNonMonotonicSignal is returned when a timeline signal value is
	// not strictly greater than the current counter.
	ErrNonMonotonicSignal = errors.New("texshare: non-monotonic signal value")

	// ErrManagerClosed is returned for operations on a closed manager.
	ErrManagerClosed = errors.New("texshare: manager closed")
)

// BackendError wraps an opaque native API failure with the backend and
// operation that produced it. It unwraps to the underlying driver error,
// so sentinel kinds reported by the driver still match with errors.Is.
type BackendError struct {
	Backend Backend
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("texshare: %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *BackendError) Unwrap() error { return e.Err }
