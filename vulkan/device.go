package vulkan

import (
	"time"

	"github.com/gogpu/texshare"
)

// Opaque driver references. A Device implementation returns its own
// concrete types here (typically thin wrappers around VkImage,
// VkSemaphore, VkFence handles); the manager never inspects them.
type (
	// Image is a driver image together with its dedicated allocation.
	Image any

	// Semaphore is a driver binary semaphore.
	Semaphore any

	// Fence is a driver fence.
	Fence any

	// Timeline is a driver timeline semaphore.
	Timeline any
)

// ImageInfo carries the native creation parameters for an exportable
// image, already mapped from the canonical descriptor.
type ImageInfo struct {
	Width  uint32
	Height uint32

	// Format is the VkFormat code from FormatToVk.
	Format uint32

	// Usage is the VkImageUsageFlags value from UsageToVk.
	Usage uint32

	// Label is the diagnostic name from the descriptor.
	Label string
}

// ExportedMemory is the result of exporting an image's bound device
// memory.
type ExportedMemory struct {
	// RawHandle is the OS handle produced by the driver
	// (vkGetMemoryFdKHR / vkGetMemoryWin32HandleKHR).
	RawHandle uint64

	// Size is the exact byte size of the bound allocation. For the 2D
	// canonical formats with optimal tiling and a dedicated allocation
	// this must equal Width x Height x BytesPerPixel, which is what
	// importers recompute from the descriptor.
	Size uint64

	// MemoryTypeIndex is the memory type the allocation came from.
	MemoryTypeIndex uint32
}

// ExternalMemory carries everything an import needs to bind a view of a
// foreign allocation.
type ExternalMemory struct {
	RawHandle       uint64
	Size            uint64
	MemoryTypeIndex uint32
	Type            texshare.HandleType
	Dedicated       bool
}

// Device is the contract the host's Vulkan integration must satisfy. It
// is the external-collaborator boundary: the manager states pre and post
// conditions, the implementation performs the literal driver calls.
//
// Error mapping: allocation failures must wrap [texshare.ErrOutOfMemory];
// waits that elapse must wrap [texshare.ErrTimeout]; timeline signals that
// are not strictly increasing must wrap [texshare.ErrNonMonotonicSignal].
// Every other failure may be opaque — the manager wraps it in a
// [texshare.BackendError].
//
// Implementations must never fabricate handle values: every RawHandle
// returned from an export must be a live OS object obtained from the
// driver, and every Import* call consumes the handle it is presented.
// The manager therefore always presents a duplicate, never the caller's
// original, so the export-side close stays valid.
type Device interface {
	// CreateExportableImage creates an image whose memory is declared
	// exportable as handleType, bound to a dedicated allocation.
	CreateExportableImage(info ImageInfo, handleType texshare.HandleType) (Image, error)

	// DestroyImage destroys an image and, for images created by
	// CreateExportableImage or ImportImageMemory, its allocation. Memory
	// kept alive by exported kernel handles survives until they close.
	DestroyImage(img Image)

	// ExportImageMemory retrieves an OS handle to the image's bound
	// memory. The handleType must be the type declared at creation; the
	// manager checks this before calling.
	ExportImageMemory(img Image, handleType texshare.HandleType) (ExportedMemory, error)

	// ImportImageMemory creates an image bound to the foreign allocation
	// described by mem. The driver takes ownership of the presented OS
	// handle on success.
	ImportImageMemory(info ImageInfo, mem ExternalMemory) (Image, error)

	// DuplicateHandle mints an independent OS handle referring to the
	// same underlying object, so an import can consume the duplicate
	// while the original stays with its owner. Platform hosts implement
	// this with [DuplicateRawHandle]. A dead raw value must fail with
	// an error wrapping [texshare.ErrInvalidHandle].
	DuplicateHandle(raw uint64, handleType texshare.HandleType) (uint64, error)

	// CloseHandle releases an OS handle previously produced by Export*
	// or DuplicateHandle but never consumed by an import.
	CloseHandle(raw uint64, handleType texshare.HandleType) error

	// Binary semaphores.
	CreateExportableSemaphore(handleType texshare.HandleType) (Semaphore, error)
	ExportSemaphore(sem Semaphore, handleType texshare.HandleType) (uint64, error)
	ImportSemaphore(raw uint64, handleType texshare.HandleType) (Semaphore, error)
	SignalSemaphore(sem Semaphore) error
	WaitSemaphore(sem Semaphore, timeout time.Duration) error
	DestroySemaphore(sem Semaphore)

	// Fences.
	CreateExportableFence(handleType texshare.HandleType) (Fence, error)
	ExportFence(f Fence, handleType texshare.HandleType) (uint64, error)
	ImportFence(raw uint64, handleType texshare.HandleType) (Fence, error)
	WaitFence(f Fence, timeout time.Duration) error
	DestroyFence(f Fence)

	// Timeline semaphores.
	CreateTimelineSemaphore(initial uint64, handleType texshare.HandleType) (Timeline, error)
	ExportTimeline(t Timeline, handleType texshare.HandleType) (uint64, error)
	ImportTimeline(raw uint64, handleType texshare.HandleType) (Timeline, error)
	SignalTimeline(t Timeline, value uint64) error
	WaitTimeline(t Timeline, value uint64, timeout time.Duration) error
	TimelineValue(t Timeline) (uint64, error)
	DestroyTimeline(t Timeline)

	// Close releases device-level resources held by the integration.
	// The Vulkan device itself belongs to the host and stays alive.
	Close() error
}
