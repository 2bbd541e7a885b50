package vulkan

import (
	"fmt"

	"github.com/gogpu/texshare"
)

// VkFormat codes for the canonical format set, as defined by the Vulkan
// registry. The mapping is total in both directions: every canonical
// format has exactly one native code and vice versa.
const (
	vkFormatR8Unorm            uint32 = 9
	vkFormatR8Uint             uint32 = 13
	vkFormatR8Sint             uint32 = 14
	vkFormatR8G8Unorm          uint32 = 16
	vkFormatR8G8B8A8Unorm      uint32 = 37
	vkFormatR8G8B8A8Srgb       uint32 = 43
	vkFormatB8G8R8A8Unorm      uint32 = 44
	vkFormatB8G8R8A8Srgb       uint32 = 50
	vkFormatA2B10G10R10Unorm   uint32 = 64
	vkFormatR16Uint            uint32 = 74
	vkFormatR16Sint            uint32 = 75
	vkFormatR16Sfloat          uint32 = 76
	vkFormatR16G16Sfloat       uint32 = 83
	vkFormatR16G16B16A16Uint   uint32 = 95
	vkFormatR16G16B16A16Sfloat uint32 = 97
	vkFormatR32Uint            uint32 = 98
	vkFormatR32Sint            uint32 = 99
	vkFormatR32Sfloat          uint32 = 100
	vkFormatR32G32Sfloat       uint32 = 103
	vkFormatR32G32B32A32Uint   uint32 = 107
	vkFormatR32G32B32A32Sfloat uint32 = 109
	vkFormatB10G11R11Ufloat    uint32 = 122
	vkFormatD16Unorm           uint32 = 124
	vkFormatX8D24Unorm         uint32 = 125
	vkFormatD32Sfloat          uint32 = 126
	vkFormatD24UnormS8Uint     uint32 = 129
)

// VkImageUsageFlagBits values.
const (
	vkUsageTransferSrc            uint32 = 0x00000001
	vkUsageTransferDst            uint32 = 0x00000002
	vkUsageSampled                uint32 = 0x00000004
	vkUsageStorage                uint32 = 0x00000008
	vkUsageColorAttachment        uint32 = 0x00000010
	vkUsageDepthStencilAttachment uint32 = 0x00000020
)

var formatToVk = map[texshare.Format]uint32{
	texshare.FormatR8Unorm:             vkFormatR8Unorm,
	texshare.FormatR8Uint:              vkFormatR8Uint,
	texshare.FormatR8Sint:              vkFormatR8Sint,
	texshare.FormatRG8Unorm:            vkFormatR8G8Unorm,
	texshare.FormatRGBA8Unorm:          vkFormatR8G8B8A8Unorm,
	texshare.FormatRGBA8UnormSrgb:      vkFormatR8G8B8A8Srgb,
	texshare.FormatBGRA8Unorm:          vkFormatB8G8R8A8Unorm,
	texshare.FormatBGRA8UnormSrgb:      vkFormatB8G8R8A8Srgb,
	texshare.FormatR16Uint:             vkFormatR16Uint,
	texshare.FormatR16Sint:             vkFormatR16Sint,
	texshare.FormatR16Float:            vkFormatR16Sfloat,
	texshare.FormatRG16Float:           vkFormatR16G16Sfloat,
	texshare.FormatRGBA16Uint:          vkFormatR16G16B16A16Uint,
	texshare.FormatRGBA16Float:         vkFormatR16G16B16A16Sfloat,
	texshare.FormatR32Uint:             vkFormatR32Uint,
	texshare.FormatR32Sint:             vkFormatR32Sint,
	texshare.FormatR32Float:            vkFormatR32Sfloat,
	texshare.FormatRG32Float:           vkFormatR32G32Sfloat,
	texshare.FormatRGBA32Uint:          vkFormatR32G32B32A32Uint,
	texshare.FormatRGBA32Float:         vkFormatR32G32B32A32Sfloat,
	texshare.FormatDepth16Unorm:        vkFormatD16Unorm,
	texshare.FormatDepth24Plus:         vkFormatX8D24Unorm,
	texshare.FormatDepth24PlusStencil8: vkFormatD24UnormS8Uint,
	texshare.FormatDepth32Float:        vkFormatD32Sfloat,
	texshare.FormatRGB10A2Unorm:        vkFormatA2B10G10R10Unorm,
	texshare.FormatRG11B10Float:        vkFormatB10G11R11Ufloat,
}

var vkToFormat = func() map[uint32]texshare.Format {
	m := make(map[uint32]texshare.Format, len(formatToVk))
	for f, vk := range formatToVk {
		m[vk] = f
	}
	return m
}()

// FormatToVk maps a canonical format to its VkFormat code.
func FormatToVk(f texshare.Format) (uint32, error) {
	vk, ok := formatToVk[f]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no VkFormat", texshare.ErrUnsupportedFormat, f)
	}
	return vk, nil
}

// FormatFromVk maps a VkFormat code back to the canonical format.
func FormatFromVk(vk uint32) (texshare.Format, error) {
	f, ok := vkToFormat[vk]
	if !ok {
		return texshare.FormatUndefined, fmt.Errorf("%w: VkFormat %d", texshare.ErrUnsupportedFormat, vk)
	}
	return f, nil
}

// UsageToVk maps a canonical usage set to VkImageUsageFlags. Attachment
// usage resolves to color or depth/stencil based on the format.
func UsageToVk(u texshare.Usage, f texshare.Format) uint32 {
	var flags uint32
	if u.Has(texshare.UsageCopySrc) {
		flags |= vkUsageTransferSrc
	}
	if u.Has(texshare.UsageCopyDst) {
		flags |= vkUsageTransferDst
	}
	if u.Has(texshare.UsageTextureBinding) {
		flags |= vkUsageSampled
	}
	if u.Has(texshare.UsageStorageBinding) {
		flags |= vkUsageStorage
	}
	if u.Has(texshare.UsageRenderAttachment) {
		if f.IsDepthStencil() {
			flags |= vkUsageDepthStencilAttachment
		} else {
			flags |= vkUsageColorAttachment
		}
	}
	return flags
}
