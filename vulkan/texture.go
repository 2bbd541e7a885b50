package vulkan

import "github.com/gogpu/texshare"

// Texture is a shareable Vulkan texture: an image bound to a dedicated,
// exportable allocation. Created by Manager.CreateShareableTexture or
// Manager.ImportTexture and owned by that manager.
type Texture struct {
	mgr  *Manager
	img  Image
	desc texshare.TextureDescriptor

	// imported marks textures bound to foreign memory.
	imported bool

	// exported caches the minted handle while its registry count is
	// nonzero, so repeated exports increment instead of re-exporting.
	// Guarded by mgr.mu.
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

// Backend returns texshare.BackendVulkan.
func (t *Texture) Backend() texshare.Backend { return texshare.BackendVulkan }

// Descriptor returns a copy of the creating descriptor.
func (t *Texture) Descriptor() texshare.TextureDescriptor { return t.desc }

// Imported reports whether the texture is a view of foreign memory.
func (t *Texture) Imported() bool { return t.imported }

// NativeImage returns the driver image for command submission. The
// returned value is the one the Device implementation produced; access
// follows Vulkan's external-synchronization rules, which are the
// caller's responsibility.
func (t *Texture) NativeImage() Image { return t.img }
