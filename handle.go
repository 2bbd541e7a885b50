package texshare

import "fmt"

// Backend identifies the graphics API a manager or handle belongs to.
type Backend uint8

const (
	// BackendUnknown is the zero value and is never valid on a handle.
	BackendUnknown Backend = iota

	// BackendVulkan is the external-memory backend (fd / NT handle export).
	BackendVulkan

	// BackendMetal is the IOSurface-backed backend.
	BackendMetal

	// BackendWebGPU is reserved for a future web-facing backend.
	// No manager implementation exists yet; handles carrying this tag
	// are rejected by the current backends.
	BackendWebGPU
)

// String returns the backend name used in wire messages.
func (b Backend) String() string {
	switch b {
	case BackendVulkan:
		return "vulkan"
	case BackendMetal:
		return "metal"
	case BackendWebGPU:
		return "webgpu"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(b))
	}
}

// ParseBackend resolves a backend name as produced by String.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "vulkan":
		return BackendVulkan, nil
	case "metal":
		return BackendMetal, nil
	case "webgpu":
		return BackendWebGPU, nil
	default:
		return BackendUnknown, fmt.Errorf("%w: unknown backend %q", ErrInvalidHandle, name)
	}
}

// HandleType names the OS primitive a raw handle integer represents.
//
// Every exported handle carries its type explicitly so an importer never
// has to guess; a type the importing manager or platform cannot consume is
// rejected with [ErrInvalidHandle] before any driver call.
type HandleType uint8

const (
	// HandleTypeNone is the zero value; handles must never carry it.
	HandleTypeNone HandleType = iota

	// HandleTypeOpaqueFD is a POSIX file descriptor (VK_..._OPAQUE_FD_BIT).
	HandleTypeOpaqueFD

	// HandleTypeOpaqueWin32 is an NT HANDLE (VK_..._OPAQUE_WIN32_BIT).
	HandleTypeOpaqueWin32

	// HandleTypeDMABuf is a Linux dma-buf file descriptor.
	HandleTypeDMABuf

	// HandleTypeIOSurface is a 32-bit IOSurface id, resolvable only on
	// the local machine.
	HandleTypeIOSurface

	// HandleTypeSharedEvent is an MTLSharedEvent handle id.
	HandleTypeSharedEvent
)

// String returns the handle-type name used in wire messages.
func (t HandleType) String() string {
	switch t {
	case HandleTypeOpaqueFD:
		return "opaque_fd"
	case HandleTypeOpaqueWin32:
		return "opaque_win32"
	case HandleTypeDMABuf:
		return "dma_buf"
	case HandleTypeIOSurface:
		return "iosurface"
	case HandleTypeSharedEvent:
		return "shared_event"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseHandleType resolves a handle-type name as produced by String.
func ParseHandleType(name string) (HandleType, error) {
	switch name {
	case "opaque_fd":
		return HandleTypeOpaqueFD, nil
	case "opaque_win32":
		return HandleTypeOpaqueWin32, nil
	case "dma_buf":
		return HandleTypeDMABuf, nil
	case "iosurface":
		return HandleTypeIOSurface, nil
	case "shared_event":
		return HandleTypeSharedEvent, nil
	default:
		return HandleTypeNone, fmt.Errorf("%w: unknown handle type %q", ErrInvalidHandle, name)
	}
}

// TextureHandle describes how to reconstruct a texture's backing memory in
// another context. It is valid only while the originating SharedTexture
// (or, for kernel-refcounted handle types, an independent duplicate) stays
// alive on the exporting side.
//
// A handle is bookkeeping, not ownership: the physical memory it points at
// is owned by the kernel/driver, and the exporting manager tracks the
// handle's lifetime in its registry.
type TextureHandle struct {
	// Backend tags which manager family minted the handle.
	Backend Backend

	// RawHandle is the platform handle as a 64-bit integer: a file
	// descriptor, an NT HANDLE value, or a surface id depending on Type.
	RawHandle uint64

	// Size is the byte size of the backing allocation as reported by the
	// exporting driver. Import recomputes the expected size from the
	// descriptor and rejects any disagreement.
	Size uint64

	// MemoryTypeIndex is the exporter's memory-type index (Vulkan-style
	// backends) or the native pixel-format code (surface backends).
	MemoryTypeIndex uint32

	// Type names the OS primitive RawHandle represents.
	Type HandleType

	// DedicatedAllocation records whether the allocation backs exactly
	// one resource. External-memory backends always set it.
	DedicatedAllocation bool
}

// Validate checks the structural invariants every texture handle must hold
// before it is given to a manager or serialized.
func (h TextureHandle) Validate() error {
	if h.Backend == BackendUnknown {
		return fmt.Errorf("%w: missing backend tag", ErrInvalidHandle)
	}
	if h.Type == HandleTypeNone {
		return fmt.Errorf("%w: missing handle type tag", ErrInvalidHandle)
	}
	if h.Size == 0 {
		return fmt.Errorf("%w: zero allocation size", ErrInvalidHandle)
	}
	return nil
}

// String returns a short diagnostic description. The raw integer is
// included because it is the registry key, not because it is meaningful
// off the exporting machine.
func (h TextureHandle) String() string {
	return fmt.Sprintf("%s/%s raw=%d size=%d", h.Backend, h.Type, h.RawHandle, h.Size)
}

// SyncKind distinguishes the exportable synchronization primitives.
type SyncKind uint8

const (
	// SyncBinarySemaphore is a GPU-GPU binary semaphore.
	SyncBinarySemaphore SyncKind = iota + 1

	// SyncFence is a CPU-waitable fence.
	SyncFence

	// SyncTimeline is a counting timeline semaphore.
	SyncTimeline

	// SyncSharedEvent is an MTLSharedEvent-style counting event.
	SyncSharedEvent
)

// String returns the kind name used in wire messages.
func (k SyncKind) String() string {
	switch k {
	case SyncBinarySemaphore:
		return "binary_semaphore"
	case SyncFence:
		return "fence"
	case SyncTimeline:
		return "timeline"
	case SyncSharedEvent:
		return "shared_event"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseSyncKind resolves a sync-kind name as produced by String.
func ParseSyncKind(name string) (SyncKind, error) {
	switch name {
	case "binary_semaphore":
		return SyncBinarySemaphore, nil
	case "fence":
		return SyncFence, nil
	case "timeline":
		return SyncTimeline, nil
	case "shared_event":
		return SyncSharedEvent, nil
	default:
		return 0, fmt.Errorf("%w: unknown sync kind %q", ErrInvalidHandle, name)
	}
}

// IsTimeline reports whether the kind carries a counter value.
func (k SyncKind) IsTimeline() bool {
	return k == SyncTimeline || k == SyncSharedEvent
}

// SyncHandle describes an exportable synchronization primitive.
type SyncHandle struct {
	// Kind selects the primitive variant.
	Kind SyncKind

	// Backend tags which manager family minted the handle.
	Backend Backend

	// RawHandle is the platform handle as a 64-bit integer.
	RawHandle uint64

	// Type names the OS primitive RawHandle represents.
	Type HandleType

	// Value is the counter value at the moment the handle was exported.
	// Only meaningful for timeline kinds; zero otherwise.
	Value uint64
}

// Validate checks the structural invariants of a sync handle.
func (h SyncHandle) Validate() error {
	if h.Kind == 0 {
		return fmt.Errorf("%w: missing sync kind", ErrInvalidHandle)
	}
	if h.Backend == BackendUnknown {
		return fmt.Errorf("%w: missing backend tag", ErrInvalidHandle)
	}
	if h.Type == HandleTypeNone {
		return fmt.Errorf("%w: missing handle type tag", ErrInvalidHandle)
	}
	return nil
}

// String returns a short diagnostic description.
func (h SyncHandle) String() string {
	if h.Kind.IsTimeline() {
		return fmt.Sprintf("%s/%s/%s raw=%d value=%d", h.Backend, h.Kind, h.Type, h.RawHandle, h.Value)
	}
	return fmt.Sprintf("%s/%s/%s raw=%d", h.Backend, h.Kind, h.Type, h.RawHandle)
}

// SyncPrimitives bundles the optional primitives for one coordination
// point: a semaphore for GPU-GPU ordering and a fence for CPU-side waits.
// Either or both may be nil.
type SyncPrimitives struct {
	Semaphore *SyncHandle
	Fence     *SyncHandle
}
