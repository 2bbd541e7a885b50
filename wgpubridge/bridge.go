// Package wgpubridge converts between the canonical texture vocabulary
// and the gogpu/wgpu type system, so a host already built on wgpu can
// wrap shared textures without a hand-written mapping layer.
package wgpubridge

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/texshare"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

var formatToWGPU = map[texshare.Format]types.TextureFormat{
	texshare.FormatR8Unorm:             types.TextureFormatR8Unorm,
	texshare.FormatR8Uint:              types.TextureFormatR8Uint,
	texshare.FormatR8Sint:              types.TextureFormatR8Sint,
	texshare.FormatRG8Unorm:            types.TextureFormatRG8Unorm,
	texshare.FormatRGBA8Unorm:          types.TextureFormatRGBA8Unorm,
	texshare.FormatRGBA8UnormSrgb:      types.TextureFormatRGBA8UnormSrgb,
	texshare.FormatBGRA8Unorm:          types.TextureFormatBGRA8Unorm,
	texshare.FormatBGRA8UnormSrgb:      types.TextureFormatBGRA8UnormSrgb,
	texshare.FormatR16Uint:             types.TextureFormatR16Uint,
	texshare.FormatR16Sint:             types.TextureFormatR16Sint,
	texshare.FormatR16Float:            types.TextureFormatR16Float,
	texshare.FormatRG16Float:           types.TextureFormatRG16Float,
	texshare.FormatRGBA16Uint:          types.TextureFormatRGBA16Uint,
	texshare.FormatRGBA16Float:         types.TextureFormatRGBA16Float,
	texshare.FormatR32Uint:             types.TextureFormatR32Uint,
	texshare.FormatR32Sint:             types.TextureFormatR32Sint,
	texshare.FormatR32Float:            types.TextureFormatR32Float,
	texshare.FormatRG32Float:           types.TextureFormatRG32Float,
	texshare.FormatRGBA32Uint:          types.TextureFormatRGBA32Uint,
	texshare.FormatRGBA32Float:         types.TextureFormatRGBA32Float,
	texshare.FormatDepth16Unorm:        types.TextureFormatDepth16Unorm,
	texshare.FormatDepth24Plus:         types.TextureFormatDepth24Plus,
	texshare.FormatDepth24PlusStencil8: types.TextureFormatDepth24PlusStencil8,
	texshare.FormatDepth32Float:        types.TextureFormatDepth32Float,
	texshare.FormatRGB10A2Unorm:        types.TextureFormatRGB10A2Unorm,
	texshare.FormatRG11B10Float:        types.TextureFormatRG11B10Ufloat,
}

var wgpuToFormat = func() map[types.TextureFormat]texshare.Format {
	m := make(map[types.TextureFormat]texshare.Format, len(formatToWGPU))
	for f, w := range formatToWGPU {
		m[w] = f
	}
	return m
}()

// ToWGPUFormat maps a canonical format to its wgpu equivalent.
func ToWGPUFormat(f texshare.Format) (types.TextureFormat, error) {
	w, ok := formatToWGPU[f]
	if !ok {
		return types.TextureFormatUndefined,
			fmt.Errorf("%w: %s has no wgpu equivalent", texshare.ErrUnsupportedFormat, f)
	}
	return w, nil
}

// FromWGPUFormat maps a wgpu format back to the canonical set.
func FromWGPUFormat(w types.TextureFormat) (texshare.Format, error) {
	f, ok := wgpuToFormat[w]
	if !ok {
		return texshare.FormatUndefined,
			fmt.Errorf("%w: wgpu format %d outside the canonical set", texshare.ErrUnsupportedFormat, w)
	}
	return f, nil
}

// ToGPUTypesFormat maps a canonical format to the gputypes enumeration
// used by render-target code.
func ToGPUTypesFormat(f texshare.Format) (gputypes.TextureFormat, error) {
	w, err := ToWGPUFormat(f)
	if err != nil {
		return gputypes.TextureFormatUndefined, err
	}
	// The two enumerations share values: gputypes is the public mirror
	// of the wgpu types module.
	return gputypes.TextureFormat(w), nil
}

// ToWGPUUsage maps a canonical usage set to wgpu usage flags. The sets
// correspond one to one.
func ToWGPUUsage(u texshare.Usage) types.TextureUsage {
	var out types.TextureUsage
	if u.Has(texshare.UsageCopySrc) {
		out |= types.TextureUsageCopySrc
	}
	if u.Has(texshare.UsageCopyDst) {
		out |= types.TextureUsageCopyDst
	}
	if u.Has(texshare.UsageTextureBinding) {
		out |= types.TextureUsageTextureBinding
	}
	if u.Has(texshare.UsageStorageBinding) {
		out |= types.TextureUsageStorageBinding
	}
	if u.Has(texshare.UsageRenderAttachment) {
		out |= types.TextureUsageRenderAttachment
	}
	return out
}

// FromWGPUUsage maps wgpu usage flags back to the canonical set. Flags
// outside the shared subset are dropped.
func FromWGPUUsage(w types.TextureUsage) texshare.Usage {
	var out texshare.Usage
	if w&types.TextureUsageCopySrc != 0 {
		out |= texshare.UsageCopySrc
	}
	if w&types.TextureUsageCopyDst != 0 {
		out |= texshare.UsageCopyDst
	}
	if w&types.TextureUsageTextureBinding != 0 {
		out |= texshare.UsageTextureBinding
	}
	if w&types.TextureUsageStorageBinding != 0 {
		out |= texshare.UsageStorageBinding
	}
	if w&types.TextureUsageRenderAttachment != 0 {
		out |= texshare.UsageRenderAttachment
	}
	return out
}

// HALTextureDescriptor builds the hal descriptor for a shared texture.
// Shared textures are always single-sample 2D with one mip level; that
// is the only shape every external-memory path supports.
func HALTextureDescriptor(desc texshare.TextureDescriptor) (hal.TextureDescriptor, error) {
	if err := desc.Validate(); err != nil {
		return hal.TextureDescriptor{}, err
	}
	format, err := ToWGPUFormat(desc.Format)
	if err != nil {
		return hal.TextureDescriptor{}, err
	}
	return hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        format,
		Usage:         ToWGPUUsage(desc.Usage),
	}, nil
}
