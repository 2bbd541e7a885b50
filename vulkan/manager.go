package vulkan

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/internal/registry"
)

// Manager implements texshare.Manager for the external-memory backend.
//
// A Manager wraps a host-supplied Device and keeps every piece of shared
// state — the handle registry, cleanup actions, live textures — behind a
// single mutex. GPU submission order on the device itself is the host's
// concern.
type Manager struct {
	mu  sync.Mutex
	dev Device

	// handleType is declared at allocation time and stamped on every
	// exported handle.
	handleType texshare.HandleType

	reg *registry.Table

	// cleanups run when a registry entry's count reaches zero.
	cleanups map[registry.Key]func()

	// textures tracks every live texture this manager owns, so foreign
	// textures are rejected before any driver call.
	textures map[*Texture]struct{}

	closed bool
}

var _ texshare.Manager = (*Manager)(nil)

// New creates a manager around the host's Device integration.
func New(dev Device, opts ...Option) (*Manager, error) {
	if dev == nil {
		return nil, errors.New("vulkan: nil device")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !handleTypeSupported(o.handleType) {
		return nil, fmt.Errorf("%w: handle type %s not usable on this platform",
			texshare.ErrInvalidHandle, o.handleType)
	}
	m := &Manager{
		dev:        dev,
		handleType: o.handleType,
		reg:        registry.NewTable(),
		cleanups:   make(map[registry.Key]func()),
		textures:   make(map[*Texture]struct{}),
	}
	texshare.Logger().Info("vulkan share manager created", "handle_type", o.handleType.String())
	return m, nil
}

// Backend returns texshare.BackendVulkan.
func (m *Manager) Backend() texshare.Backend { return texshare.BackendVulkan }

// HandleType returns the external handle type this manager exports with.
func (m *Manager) HandleType() texshare.HandleType { return m.handleType }

// expectedByteSize computes the size a dedicated optimal-tiling
// allocation for desc must have. Import compares this against the size
// recorded in the handle.
func expectedByteSize(desc texshare.TextureDescriptor) uint64 {
	return uint64(desc.Width) * uint64(desc.Height) * uint64(desc.Format.BytesPerPixel())
}

// imageInfo maps a validated descriptor to native creation parameters.
func imageInfo(desc texshare.TextureDescriptor) (ImageInfo, error) {
	vkFormat, err := FormatToVk(desc.Format)
	if err != nil {
		return ImageInfo{}, err
	}
	return ImageInfo{
		Width:  desc.Width,
		Height: desc.Height,
		Format: vkFormat,
		Usage:  UsageToVk(desc.Usage, desc.Format),
		Label:  desc.Label,
	}, nil
}

// CreateShareableTexture implements texshare.Manager.
func (m *Manager) CreateShareableTexture(desc texshare.TextureDescriptor) (texshare.SharedTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	info, err := imageInfo(desc)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}

	img, err := m.dev.CreateExportableImage(info, m.handleType)
	if err != nil {
		return nil, m.wrap("create_image", err)
	}

	t := &Texture{mgr: m, img: img, desc: desc}
	m.textures[t] = struct{}{}
	texshare.Logger().Debug("texture created", "backend", "vulkan", "desc", desc.String())
	return t, nil
}

// ExportTexture implements texshare.Manager. The first export retrieves
// the OS handle from the driver; subsequent exports of the same texture
// increment the registry count and reuse the minted handle.
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

	mem, err := m.dev.ExportImageMemory(t.img, m.handleType)
	if err != nil {
		return texshare.TextureHandle{}, m.wrap("export_memory", err)
	}

	handle := texshare.TextureHandle{
		Backend:             texshare.BackendVulkan,
		RawHandle:           mem.RawHandle,
		Size:                mem.Size,
		MemoryTypeIndex:     mem.MemoryTypeIndex,
		Type:                m.handleType,
		DedicatedAllocation: true,
	}
	t.exported = &handle
	k := registry.Key{Kind: registry.KindTexture, ID: handle.RawHandle}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		t.exported = nil
		if err := m.dev.CloseHandle(handle.RawHandle, handle.Type); err != nil {
			texshare.Logger().Warn("close of exported handle failed", "raw", handle.RawHandle, "err", err)
		}
	}
	texshare.Logger().Debug("texture exported", "raw", handle.RawHandle, "size", handle.Size)
	return handle, nil
}

// ImportTexture implements texshare.Manager. The handle's type tag is
// checked against what this platform can consume before any driver call,
// and the descriptor-computed byte size must equal the recorded size
// exactly — the import never truncates or pads.
//
// The presented handle value is not consumed: the driver binds through a
// private duplicate, so the caller's copy (and the exporter's, when both
// sides live in one process) stays valid and is still released normally.
func (m *Manager) ImportTexture(handle texshare.TextureHandle, desc texshare.TextureDescriptor) (texshare.SharedTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	if handle.Backend != texshare.BackendVulkan {
		return nil, fmt.Errorf("%w: %s handle offered to vulkan manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	if !handleTypeSupported(handle.Type) {
		return nil, fmt.Errorf("%w: handle family %s not consumable on this platform",
			texshare.ErrInvalidHandle, handle.Type)
	}
	if expected := expectedByteSize(desc); expected != handle.Size {
		return nil, fmt.Errorf("%w: descriptor computes %d bytes, handle records %d",
			texshare.ErrSizeMismatch, expected, handle.Size)
	}
	info, err := imageInfo(desc)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}

	raw, err := m.dev.DuplicateHandle(handle.RawHandle, handle.Type)
	if err != nil {
		return nil, m.wrap("duplicate_handle", err)
	}
	img, err := m.dev.ImportImageMemory(info, ExternalMemory{
		RawHandle:       raw,
		Size:            handle.Size,
		MemoryTypeIndex: handle.MemoryTypeIndex,
		Type:            handle.Type,
		Dedicated:       handle.DedicatedAllocation,
	})
	if err != nil {
		if cerr := m.dev.CloseHandle(raw, handle.Type); cerr != nil {
			texshare.Logger().Warn("close of unconsumed duplicate failed", "raw", raw, "err", cerr)
		}
		return nil, m.wrap("import_memory", err)
	}

	t := &Texture{mgr: m, img: img, desc: desc, imported: true}
	m.textures[t] = struct{}{}
	k := registry.Key{Kind: registry.KindTexture, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		// The driver consumed a private duplicate; the transported
		// handle value stays with the caller.
		m.cleanups[k] = func() {}
	}
	texshare.Logger().Debug("texture imported", "raw", handle.RawHandle, "desc", desc.String())
	return t, nil
}

// ReleaseTextureHandle implements texshare.Manager.
func (m *Manager) ReleaseTextureHandle(handle texshare.TextureHandle) error {
	if handle.Backend != texshare.BackendVulkan {
		return fmt.Errorf("%w: %s handle offered to vulkan manager", texshare.ErrInvalidHandle, handle.Backend)
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

// DestroyTexture implements texshare.Manager. Exported handles keep the
// underlying allocation alive at the kernel until they are released; the
// driver image itself is destroyed now.
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
	m.dev.DestroyImage(t.img)
	t.destroyed = true
	delete(m.textures, t)
	texshare.Logger().Debug("texture destroyed", "backend", "vulkan", "desc", t.desc.String())
	return nil
}

// Close implements texshare.Manager. Handles still registered are
// force-released with a warning; live textures are destroyed.
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
		m.dev.DestroyImage(t.img)
		t.destroyed = true
	}
	m.textures = make(map[*Texture]struct{})
	texshare.Logger().Info("vulkan share manager closed")
	return m.dev.Close()
}

// ownTexture checks that tex was created or imported by this manager.
func (m *Manager) ownTexture(tex texshare.SharedTexture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t.mgr != m {
		return nil, fmt.Errorf("%w: texture does not belong to this manager", texshare.ErrInvalidTexture)
	}
	return t, nil
}

// wrap turns a driver failure into a BackendError, preserving wrapped
// sentinel kinds for errors.Is.
func (m *Manager) wrap(op string, err error) error {
	return &texshare.BackendError{Backend: texshare.BackendVulkan, Op: op, Err: err}
}
