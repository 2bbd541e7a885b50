package metal

import "github.com/gogpu/texshare"

// Texture is a shareable surface-backed texture. Created by
// Manager.CreateShareableTexture or Manager.ImportTexture and owned by
// that manager.
type Texture struct {
	mgr  *Manager
	surf Surface
	desc texshare.TextureDescriptor

	// pixelFormat is the native MTLPixelFormat code, stamped into the
	// memory-type slot of every handle minted for this texture.
	pixelFormat uint32

	// imported marks textures bound by surface-id lookup.
	imported bool

	// exported caches the minted handle while its registry count is
	// nonzero. Guarded by mgr.mu.
	exported *texshare.TextureHandle

	// destroyed is set by DestroyTexture. Guarded by mgr.mu.
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.desc.Height }

// Format returns the canonical pixel format.
func (t *Texture) Format() texshare.Format { return t.desc.Format }

// Usage returns the usage set.
func (t *Texture) Usage() texshare.Usage { return t.desc.Usage }

// Backend returns texshare.BackendMetal.
func (t *Texture) Backend() texshare.Backend { return texshare.BackendMetal }

// Descriptor returns a copy of the creating descriptor.
func (t *Texture) Descriptor() texshare.TextureDescriptor { return t.desc }

// Imported reports whether the texture was bound by id lookup.
func (t *Texture) Imported() bool { return t.imported }

// NativeSurface returns the backing surface for MTLTexture creation.
func (t *Texture) NativeSurface() Surface { return t.surf }
