package texshare

import (
	"fmt"
	"strings"
)

// Usage describes the intended uses of a texture. Usages combine with
// bitwise OR; a descriptor must carry at least one usage bit.
type Usage uint32

const (
	// UsageCopySrc allows the texture to be the source of copy operations.
	UsageCopySrc Usage = 1 << iota

	// UsageCopyDst allows the texture to be the target of copy operations.
	UsageCopyDst

	// UsageTextureBinding allows the texture to be sampled by shaders.
	UsageTextureBinding

	// UsageStorageBinding allows shader storage (read/write) access.
	UsageStorageBinding

	// UsageRenderAttachment allows use as a color or depth attachment.
	UsageRenderAttachment

	usageAll = UsageCopySrc | UsageCopyDst | UsageTextureBinding | UsageStorageBinding | UsageRenderAttachment
)

var usageNames = []struct {
	bit  Usage
	name string
}{
	{UsageCopySrc, "CopySrc"},
	{UsageCopyDst, "CopyDst"},
	{UsageTextureBinding, "TextureBinding"},
	{UsageStorageBinding, "StorageBinding"},
	{UsageRenderAttachment, "RenderAttachment"},
}

// Valid reports whether u is non-empty and contains no unknown bits.
func (u Usage) Valid() bool {
	return u != 0 && u&^usageAll == 0
}

// Has reports whether all bits of q are set in u.
func (u Usage) Has(q Usage) bool {
	return u&q == q
}

// String returns the set as "CopySrc|TextureBinding" style text.
func (u Usage) String() string {
	if u == 0 {
		return "None"
	}
	var parts []string
	rest := u
	for _, un := range usageNames {
		if u.Has(un.bit) {
			parts = append(parts, un.name)
			rest &^= un.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("Unknown(0x%x)", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Names returns the individual usage names in declaration order.
// Unknown bits are dropped; use Valid to reject them first.
func (u Usage) Names() []string {
	var out []string
	for _, un := range usageNames {
		if u.Has(un.bit) {
			out = append(out, un.name)
		}
	}
	return out
}

// ParseUsage resolves a set of usage names back into a bitmask.
func ParseUsage(names []string) (Usage, error) {
	var u Usage
next:
	for _, name := range names {
		for _, un := range usageNames {
			if un.name == name {
				u |= un.bit
				continue next
			}
		}
		return 0, fmt.Errorf("%w: unknown usage %q", ErrInvalidDescriptor, name)
	}
	if u == 0 {
		return 0, fmt.Errorf("%w: empty usage set", ErrInvalidDescriptor)
	}
	return u, nil
}
