package metal

import (
	"fmt"

	"github.com/gogpu/texshare"
)

// MTLPixelFormat codes for the canonical color formats. Depth and
// stencil formats are absent deliberately: IOSurface cannot back a
// depth/stencil attachment, so the surface backend rejects them with
// texshare.ErrUnsupportedFormat instead of carrying a dead mapping.
const (
	mtlPixelFormatR8Unorm        uint32 = 10
	mtlPixelFormatR8Uint         uint32 = 13
	mtlPixelFormatR8Sint         uint32 = 14
	mtlPixelFormatR16Uint        uint32 = 23
	mtlPixelFormatR16Sint        uint32 = 24
	mtlPixelFormatR16Float       uint32 = 25
	mtlPixelFormatRG8Unorm       uint32 = 30
	mtlPixelFormatR32Uint        uint32 = 53
	mtlPixelFormatR32Sint        uint32 = 54
	mtlPixelFormatR32Float       uint32 = 55
	mtlPixelFormatRG16Float      uint32 = 65
	mtlPixelFormatRGBA8Unorm     uint32 = 70
	mtlPixelFormatRGBA8UnormSrgb uint32 = 71
	mtlPixelFormatBGRA8Unorm     uint32 = 80
	mtlPixelFormatBGRA8UnormSrgb uint32 = 81
	mtlPixelFormatRGB10A2Unorm   uint32 = 90
	mtlPixelFormatRG11B10Float   uint32 = 92
	mtlPixelFormatRG32Float      uint32 = 105
	mtlPixelFormatRGBA16Uint     uint32 = 113
	mtlPixelFormatRGBA16Float    uint32 = 115
	mtlPixelFormatRGBA32Uint     uint32 = 123
	mtlPixelFormatRGBA32Float    uint32 = 125
)

var formatToMtl = map[texshare.Format]uint32{
	texshare.FormatR8Unorm:        mtlPixelFormatR8Unorm,
	texshare.FormatR8Uint:         mtlPixelFormatR8Uint,
	texshare.FormatR8Sint:         mtlPixelFormatR8Sint,
	texshare.FormatRG8Unorm:       mtlPixelFormatRG8Unorm,
	texshare.FormatRGBA8Unorm:     mtlPixelFormatRGBA8Unorm,
	texshare.FormatRGBA8UnormSrgb: mtlPixelFormatRGBA8UnormSrgb,
	texshare.FormatBGRA8Unorm:     mtlPixelFormatBGRA8Unorm,
	texshare.FormatBGRA8UnormSrgb: mtlPixelFormatBGRA8UnormSrgb,
	texshare.FormatR16Uint:        mtlPixelFormatR16Uint,
	texshare.FormatR16Sint:        mtlPixelFormatR16Sint,
	texshare.FormatR16Float:       mtlPixelFormatR16Float,
	texshare.FormatRG16Float:      mtlPixelFormatRG16Float,
	texshare.FormatRGBA16Uint:     mtlPixelFormatRGBA16Uint,
	texshare.FormatRGBA16Float:    mtlPixelFormatRGBA16Float,
	texshare.FormatR32Uint:        mtlPixelFormatR32Uint,
	texshare.FormatR32Sint:        mtlPixelFormatR32Sint,
	texshare.FormatR32Float:       mtlPixelFormatR32Float,
	texshare.FormatRG32Float:      mtlPixelFormatRG32Float,
	texshare.FormatRGBA32Uint:     mtlPixelFormatRGBA32Uint,
	texshare.FormatRGBA32Float:    mtlPixelFormatRGBA32Float,
	texshare.FormatRGB10A2Unorm:   mtlPixelFormatRGB10A2Unorm,
	texshare.FormatRG11B10Float:   mtlPixelFormatRG11B10Float,
}

var mtlToFormat = func() map[uint32]texshare.Format {
	m := make(map[uint32]texshare.Format, len(formatToMtl))
	for f, mtl := range formatToMtl {
		m[mtl] = f
	}
	return m
}()

// FormatToMtl maps a canonical format to its MTLPixelFormat code.
func FormatToMtl(f texshare.Format) (uint32, error) {
	mtl, ok := formatToMtl[f]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no IOSurface-compatible MTLPixelFormat",
			texshare.ErrUnsupportedFormat, f)
	}
	return mtl, nil
}

// FormatFromMtl maps an MTLPixelFormat code back to the canonical format.
func FormatFromMtl(mtl uint32) (texshare.Format, error) {
	f, ok := mtlToFormat[mtl]
	if !ok {
		return texshare.FormatUndefined, fmt.Errorf("%w: MTLPixelFormat %d",
			texshare.ErrUnsupportedFormat, mtl)
	}
	return f, nil
}
