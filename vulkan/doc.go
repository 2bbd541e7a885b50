// Package vulkan implements the external-memory backend: textures are
// exported as opaque file descriptors or NT handles via the
// VK_KHR_external_memory family, and semaphores, fences, and timeline
// semaphores cross the same boundary via VK_KHR_external_semaphore and
// VK_KHR_external_fence.
//
// The manager does not talk to the driver directly. The host application
// owns the Vulkan instance/device and hands the manager a [Device]
// implementation wrapping it; the manager supplies the shareable-resource
// contract on top: descriptor validation, format/usage mapping, handle
// type tagging, size verification, and registry bookkeeping. This mirrors
// how the rest of the gogpu stack receives devices from the host rather
// than creating its own.
//
// Allocations are always dedicated: external-memory semantics are
// undefined for sub-allocated memory, so one allocation backs exactly one
// image.
//
// Handle types are platform-conditional: OpaqueWin32 on Windows, OpaqueFD
// elsewhere, overridable with [WithHandleType] (e.g. DMABuf on Linux when
// both sides negotiated it). The type declared at allocation time is the
// type stamped on every exported handle; importing a handle tagged with a
// family this platform cannot consume fails before any driver call.
package vulkan
