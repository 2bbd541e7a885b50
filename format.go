package texshare

import "fmt"

// Format identifies the pixel format of a shared texture.
//
// The set is closed: every backend holds a total, bidirectional mapping
// between this set and its native pixel-format enumeration. Formats a
// backend cannot express surface as [ErrUnsupportedFormat] at create or
// import time, never as a silent substitution.
type Format uint8

const (
	// FormatUndefined is the zero value and is never valid in a descriptor.
	FormatUndefined Format = iota

	// 8-bit channel formats.
	FormatR8Unorm
	FormatR8Uint
	FormatR8Sint
	FormatRG8Unorm
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb

	// 16-bit channel formats.
	FormatR16Uint
	FormatR16Sint
	FormatR16Float
	FormatRG16Float
	FormatRGBA16Uint
	FormatRGBA16Float

	// 32-bit channel formats.
	FormatR32Uint
	FormatR32Sint
	FormatR32Float
	FormatRG32Float
	FormatRGBA32Uint
	FormatRGBA32Float

	// Depth/stencil formats.
	FormatDepth16Unorm
	FormatDepth24Plus
	FormatDepth24PlusStencil8
	FormatDepth32Float

	// Packed HDR formats.
	FormatRGB10A2Unorm
	FormatRG11B10Float

	formatCount // sentinel, keep last
)

var formatNames = [formatCount]string{
	FormatUndefined:           "Undefined",
	FormatR8Unorm:             "R8Unorm",
	FormatR8Uint:              "R8Uint",
	FormatR8Sint:              "R8Sint",
	FormatRG8Unorm:            "RG8Unorm",
	FormatRGBA8Unorm:          "RGBA8Unorm",
	FormatRGBA8UnormSrgb:      "RGBA8UnormSrgb",
	FormatBGRA8Unorm:          "BGRA8Unorm",
	FormatBGRA8UnormSrgb:      "BGRA8UnormSrgb",
	FormatR16Uint:             "R16Uint",
	FormatR16Sint:             "R16Sint",
	FormatR16Float:            "R16Float",
	FormatRG16Float:           "RG16Float",
	FormatRGBA16Uint:          "RGBA16Uint",
	FormatRGBA16Float:         "RGBA16Float",
	FormatR32Uint:             "R32Uint",
	FormatR32Sint:             "R32Sint",
	FormatR32Float:            "R32Float",
	FormatRG32Float:           "RG32Float",
	FormatRGBA32Uint:          "RGBA32Uint",
	FormatRGBA32Float:         "RGBA32Float",
	FormatDepth16Unorm:        "Depth16Unorm",
	FormatDepth24Plus:         "Depth24Plus",
	FormatDepth24PlusStencil8: "Depth24PlusStencil8",
	FormatDepth32Float:        "Depth32Float",
	FormatRGB10A2Unorm:        "RGB10A2Unorm",
	FormatRG11B10Float:        "RG11B10Float",
}

// Formats returns the full canonical format set, excluding FormatUndefined.
// The slice is freshly allocated; callers may modify it.
func Formats() []Format {
	out := make([]Format, 0, formatCount-1)
	for f := FormatR8Unorm; f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is a member of the canonical format set.
func (f Format) Valid() bool {
	return f > FormatUndefined && f < formatCount
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(f))
}

// BytesPerPixel returns the storage size of one texel in bytes.
//
// For Depth24Plus this is the size of the packed 32-bit native
// representation, not the 24 payload bits.
func (f Format) BytesPerPixel() uint32 {
	switch f {
	case FormatR8Unorm, FormatR8Uint, FormatR8Sint:
		return 1
	case FormatRG8Unorm, FormatR16Uint, FormatR16Sint, FormatR16Float, FormatDepth16Unorm:
		return 2
	case FormatRGBA8Unorm, FormatRGBA8UnormSrgb, FormatBGRA8Unorm, FormatBGRA8UnormSrgb,
		FormatRG16Float, FormatR32Uint, FormatR32Sint, FormatR32Float,
		FormatDepth24Plus, FormatDepth32Float,
		FormatRGB10A2Unorm, FormatRG11B10Float:
		return 4
	case FormatRGBA16Uint, FormatRGBA16Float, FormatRG32Float, FormatDepth24PlusStencil8:
		return 8
	case FormatRGBA32Uint, FormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// IsDepthStencil reports whether f is a depth or combined depth/stencil format.
func (f Format) IsDepthStencil() bool {
	switch f {
	case FormatDepth16Unorm, FormatDepth24Plus, FormatDepth24PlusStencil8, FormatDepth32Float:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler using the String name.
// This is the representation used by the wire message contract.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: format %s", ErrInvalidDescriptor, f)
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat resolves a canonical format name as produced by String.
func ParseFormat(name string) (Format, error) {
	for f := FormatR8Unorm; f < formatCount; f++ {
		if formatNames[f] == name {
			return f, nil
		}
	}
	return FormatUndefined, fmt.Errorf("%w: unknown format %q", ErrInvalidDescriptor, name)
}
