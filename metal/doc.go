// Package metal implements texture sharing over IOSurface for Metal
// contexts.
//
// Unlike the external-memory backend, nothing is exported here in the
// file-descriptor sense: an IOSurface is created with a machine-global
// 32-bit id, and any process on the same machine can bind it by looking
// the id up. A texture handle from this package therefore carries the
// surface id as its raw handle and the native MTLPixelFormat code in the
// memory-type slot.
//
// Synchronization uses MTLSharedEvent, a monotonically counting event
// that is itself addressable by id. Binary semaphores and fences have no
// exportable Metal equivalent and are not offered.
//
// The package never talks to Metal directly. The host supplies a
// [SurfaceProvider] that wraps its IOSurface and MTLSharedEvent bindings;
// the manager layers descriptor validation, size checking, and handle
// lifetime accounting on top.
package metal
