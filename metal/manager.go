package metal

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/internal/registry"
)

// Manager implements texshare.Manager for the surface backend.
//
// Shared state — the handle registry, cleanup actions, live textures —
// lives behind a single mutex, same as the external-memory backend. The
// SurfaceProvider is the host's and is only called from here.
type Manager struct {
	mu       sync.Mutex
	provider SurfaceProvider

	// rowAlignment is fixed at creation and enters the expected-size
	// computation on both the create and import paths.
	rowAlignment uint32

	reg *registry.Table

	// cleanups run when a registry entry's count reaches zero.
	cleanups map[registry.Key]func()

	textures map[*Texture]struct{}

	closed bool
}

var _ texshare.Manager = (*Manager)(nil)

// New creates a manager around the host's SurfaceProvider integration.
func New(p SurfaceProvider, opts ...Option) (*Manager, error) {
	if p == nil {
		return nil, errors.New("metal: nil surface provider")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{
		provider:     p,
		rowAlignment: o.rowAlignment,
		reg:          registry.NewTable(),
		cleanups:     make(map[registry.Key]func()),
		textures:     make(map[*Texture]struct{}),
	}
	texshare.Logger().Info("metal share manager created", "row_alignment", o.rowAlignment)
	return m, nil
}

// Backend returns texshare.BackendMetal.
func (m *Manager) Backend() texshare.Backend { return texshare.BackendMetal }

// RowAlignment returns the bytes-per-row alignment in effect.
func (m *Manager) RowAlignment() uint32 { return m.rowAlignment }

// rowBytes returns the aligned bytes-per-row for desc. The product is
// computed in 64 bits: a 16-byte-per-pixel row at extreme widths exceeds
// uint32, and a wrapped row would slip past the size checks.
func (m *Manager) rowBytes(desc texshare.TextureDescriptor) uint64 {
	row := uint64(desc.Width) * uint64(desc.Format.BytesPerPixel())
	a := uint64(m.rowAlignment)
	return (row + a - 1) &^ (a - 1)
}

// expectedByteSize computes the size recorded in handles and checked at
// import: aligned row pitch times height. The provider's actual
// allocation may be larger (page rounding); handles carry the computed
// size so both sides agree independent of allocator behavior.
func (m *Manager) expectedByteSize(desc texshare.TextureDescriptor) uint64 {
	return m.rowBytes(desc) * uint64(desc.Height)
}

// CreateShareableTexture implements texshare.Manager. Depth and stencil
// formats fail with texshare.ErrUnsupportedFormat: surfaces cannot back
// them.
func (m *Manager) CreateShareableTexture(desc texshare.TextureDescriptor) (texshare.SharedTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	pixelFormat, err := FormatToMtl(desc.Format)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}

	surf, err := m.provider.CreateSurface(SurfaceInfo{
		Width:       desc.Width,
		Height:      desc.Height,
		PixelFormat: pixelFormat,
		RowBytes:    m.rowBytes(desc),
		Label:       desc.Label,
	})
	if err != nil {
		return nil, m.wrap("create_surface", err)
	}
	if expected := m.expectedByteSize(desc); surf.AllocSize() < expected {
		m.provider.ReleaseSurface(surf)
		return nil, fmt.Errorf("%w: surface allocated %d bytes, descriptor needs %d",
			texshare.ErrSizeMismatch, surf.AllocSize(), expected)
	}

	t := &Texture{mgr: m, surf: surf, desc: desc, pixelFormat: pixelFormat}
	m.textures[t] = struct{}{}
	texshare.Logger().Debug("texture created", "backend", "metal", "surface", surf.ID(), "desc", desc.String())
	return t, nil
}

// ExportTexture implements texshare.Manager. The handle carries the
// surface id as its raw value and the native pixel-format code in the
// memory-type slot. Nothing is duplicated at the OS level: the id is
// already machine-global, so release bookkeeping is registry-only.
func (m *Manager) ExportTexture(tex texshare.SharedTexture) (texshare.TextureHandle, error) {
	t, err := m.ownTexture(tex)
	if err != nil {
		return texshare.TextureHandle{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.TextureHandle{}, texshare.ErrManagerClosed
	}
	if t.destroyed {
		return texshare.TextureHandle{}, fmt.Errorf("%w: texture already destroyed", texshare.ErrInvalidTexture)
	}

	if t.exported != nil {
		refs := m.reg.Export(registry.Key{Kind: registry.KindTexture, ID: t.exported.RawHandle})
		texshare.Logger().Debug("texture re-exported", "raw", t.exported.RawHandle, "refs", refs)
		return *t.exported, nil
	}

	handle := texshare.TextureHandle{
		Backend:             texshare.BackendMetal,
		RawHandle:           uint64(t.surf.ID()),
		Size:                m.expectedByteSize(t.desc),
		MemoryTypeIndex:     t.pixelFormat,
		Type:                texshare.HandleTypeIOSurface,
		DedicatedAllocation: true,
	}
	t.exported = &handle
	k := registry.Key{Kind: registry.KindTexture, ID: handle.RawHandle}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		t.exported = nil
	}
	texshare.Logger().Debug("texture exported", "surface", t.surf.ID(), "size", handle.Size)
	return handle, nil
}

// ImportTexture implements texshare.Manager. The surface id is looked up
// through the provider; an id unknown to the machine fails with
// texshare.ErrInvalidHandle. The descriptor-computed byte size must equal
// the size the exporter recorded, which requires both sides to use the
// same row alignment.
func (m *Manager) ImportTexture(handle texshare.TextureHandle, desc texshare.TextureDescriptor) (texshare.SharedTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	if handle.Backend != texshare.BackendMetal {
		return nil, fmt.Errorf("%w: %s handle offered to metal manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	if handle.Type != texshare.HandleTypeIOSurface {
		return nil, fmt.Errorf("%w: handle family %s not consumable by the surface backend",
			texshare.ErrInvalidHandle, handle.Type)
	}
	if handle.RawHandle > math.MaxUint32 {
		return nil, fmt.Errorf("%w: surface id %d out of range", texshare.ErrInvalidHandle, handle.RawHandle)
	}
	pixelFormat, err := FormatToMtl(desc.Format)
	if err != nil {
		return nil, err
	}
	if handle.MemoryTypeIndex != pixelFormat {
		return nil, fmt.Errorf("%w: handle carries MTLPixelFormat %d, descriptor maps to %d",
			texshare.ErrInvalidHandle, handle.MemoryTypeIndex, pixelFormat)
	}
	if expected := m.expectedByteSize(desc); expected != handle.Size {
		return nil, fmt.Errorf("%w: descriptor computes %d bytes, handle records %d",
			texshare.ErrSizeMismatch, expected, handle.Size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}

	surf, err := m.provider.LookupSurface(uint32(handle.RawHandle))
	if err != nil {
		return nil, m.wrap("lookup_surface", err)
	}
	if surf.AllocSize() < handle.Size {
		m.provider.ReleaseSurface(surf)
		return nil, fmt.Errorf("%w: surface holds %d bytes, handle records %d",
			texshare.ErrSizeMismatch, surf.AllocSize(), handle.Size)
	}

	t := &Texture{mgr: m, surf: surf, desc: desc, pixelFormat: pixelFormat, imported: true}
	m.textures[t] = struct{}{}
	k := registry.Key{Kind: registry.KindTexture, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		// The surface use count is balanced by DestroyTexture, not by
		// handle release.
		m.cleanups[k] = func() {}
	}
	texshare.Logger().Debug("texture imported", "surface", surf.ID(), "desc", desc.String())
	return t, nil
}

// ReleaseTextureHandle implements texshare.Manager.
func (m *Manager) ReleaseTextureHandle(handle texshare.TextureHandle) error {
	if handle.Backend != texshare.BackendMetal {
		return fmt.Errorf("%w: %s handle offered to metal manager", texshare.ErrInvalidHandle, handle.Backend)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	return m.releaseLocked(registry.Key{Kind: registry.KindTexture, ID: handle.RawHandle})
}

// releaseLocked decrements the count for k and runs its cleanup at zero.
// Caller holds m.mu.
func (m *Manager) releaseLocked(k registry.Key) error {
	refs, err := m.reg.Release(k)
	if err != nil {
		return err
	}
	texshare.Logger().Debug("handle released", "key", k.String(), "refs", refs)
	if refs == 0 {
		if cleanup, ok := m.cleanups[k]; ok {
			delete(m.cleanups, k)
			cleanup()
		}
	}
	return nil
}

// DestroyTexture implements texshare.Manager. Dropping the manager's use
// of the surface does not invalidate importers elsewhere: the kernel
// keeps the surface alive while anyone holds it.
func (m *Manager) DestroyTexture(tex texshare.SharedTexture) error {
	t, err := m.ownTexture(tex)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	if t.destroyed {
		return fmt.Errorf("%w: texture already destroyed", texshare.ErrInvalidTexture)
	}
	m.provider.ReleaseSurface(t.surf)
	t.destroyed = true
	delete(m.textures, t)
	texshare.Logger().Debug("texture destroyed", "backend", "metal", "desc", t.desc.String())
	return nil
}

// Close implements texshare.Manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	m.closed = true

	if leftovers := m.reg.Drain(); len(leftovers) > 0 {
		texshare.Logger().Warn("handles still registered at close", "count", len(leftovers))
		for _, k := range leftovers {
			if cleanup, ok := m.cleanups[k]; ok {
				delete(m.cleanups, k)
				cleanup()
			}
		}
	}
	for t := range m.textures {
		m.provider.ReleaseSurface(t.surf)
		t.destroyed = true
	}
	m.textures = make(map[*Texture]struct{})
	texshare.Logger().Info("metal share manager closed")
	return m.provider.Close()
}

// ownTexture checks that tex was created or imported by this manager.
func (m *Manager) ownTexture(tex texshare.SharedTexture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t.mgr != m {
		return nil, fmt.Errorf("%w: texture does not belong to this manager", texshare.ErrInvalidTexture)
	}
	return t, nil
}

// wrap turns a provider failure into a BackendError, preserving wrapped
// sentinel kinds for errors.Is.
func (m *Manager) wrap(op string, err error) error {
	return &texshare.BackendError{Backend: texshare.BackendMetal, Op: op, Err: err}
}
