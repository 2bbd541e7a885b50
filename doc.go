// Package texshare provides zero-copy sharing of GPU textures between
// independent graphics contexts, including contexts living in different
// operating-system processes or built on different graphics APIs.
//
// # Overview
//
// A texture created by one backend manager can be exported as a
// platform-native memory handle (POSIX file descriptor, Windows HANDLE,
// or IOSurface id), transmitted over any transport the caller likes, and
// imported by another manager as a live view of the same physical memory.
// No pixels are ever copied through the CPU. Exportable synchronization
// primitives (binary semaphores, fences, and counting timeline objects)
// cross the same boundary so a consumer can wait for the producer's GPU
// work without any in-process signal.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/texshare"
//	    "github.com/gogpu/texshare/vulkan"
//	)
//
//	// The host owns the graphics device and hands it to the manager.
//	mgr, err := vulkan.New(device)
//
//	desc := texshare.TextureDescriptor{
//	    Width:  1024,
//	    Height: 768,
//	    Format: texshare.FormatRGBA8Unorm,
//	    Usage:  texshare.UsageRenderAttachment | texshare.UsageTextureBinding,
//	}
//	tex, err := mgr.CreateShareableTexture(desc)
//	handle, err := mgr.ExportTexture(tex)
//
//	// handle + desc travel across the process boundary (see wire/).
//	// On the far side, with an identical descriptor:
//	view, err := otherMgr.ImportTexture(handle, desc)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Manager, SharedTexture, TextureDescriptor, TextureHandle,
//     SyncHandle, and the error taxonomy (this package)
//   - Backends: vulkan (external-memory handles), metal (IOSurface-backed)
//   - wire: the canonical serialize/reconstruct message contract
//   - wgpubridge: format and descriptor interop with the gogpu WebGPU stack
//   - timeline: a host-side monotonic counter for driver integrations
//
// Each backend is a standalone Manager implementation selected at
// construction time; backends never share mutable state. Managers receive
// their device or surface provider from the host application and keep all
// handle bookkeeping in an instance-local registry, so two managers in the
// same process are fully independent.
//
// # Safety Model
//
// The library refcounts handles, not memory. The GPU allocation behind an
// exported/imported pair is shared mutable state by nature; callers must
// serialize access to it through the exported synchronization primitives.
// See the package-level documentation of the vulkan and metal packages for
// the per-backend contracts.
package texshare
