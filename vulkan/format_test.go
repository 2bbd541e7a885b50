package vulkan

import (
	"errors"
	"testing"

	"github.com/gogpu/texshare"
)

func TestFormatMapping_Total(t *testing.T) {
	// Every canonical format must map to a native code and back.
	for _, f := range texshare.Formats() {
		vk, err := FormatToVk(f)
		if err != nil {
			t.Fatalf("FormatToVk(%s): %v", f, err)
		}
		back, err := FormatFromVk(vk)
		if err != nil {
			t.Fatalf("FormatFromVk(%d): %v", vk, err)
		}
		if back != f {
			t.Errorf("%s → %d → %s", f, vk, back)
		}
	}
}

func TestFormatMapping_KnownCodes(t *testing.T) {
	tests := []struct {
		format texshare.Format
		vk     uint32
	}{
		{texshare.FormatR8Unorm, 9},
		{texshare.FormatRGBA8Unorm, 37},
		{texshare.FormatBGRA8Unorm, 44},
		{texshare.FormatRGBA16Float, 97},
		{texshare.FormatDepth32Float, 126},
		{texshare.FormatDepth24PlusStencil8, 129},
	}
	for _, tt := range tests {
		vk, err := FormatToVk(tt.format)
		if err != nil {
			t.Fatalf("FormatToVk(%s): %v", tt.format, err)
		}
		if vk != tt.vk {
			t.Errorf("FormatToVk(%s) = %d, want %d", tt.format, vk, tt.vk)
		}
	}
}

func TestFormatMapping_Unknown(t *testing.T) {
	if _, err := FormatToVk(texshare.FormatUndefined); !errors.Is(err, texshare.ErrUnsupportedFormat) {
		t.Errorf("undefined = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := FormatFromVk(9999); !errors.Is(err, texshare.ErrUnsupportedFormat) {
		t.Errorf("unknown code = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUsageToVk(t *testing.T) {
	tests := []struct {
		name   string
		usage  texshare.Usage
		format texshare.Format
		want   uint32
	}{
		{
			name:   "copy pair",
			usage:  texshare.UsageCopySrc | texshare.UsageCopyDst,
			format: texshare.FormatRGBA8Unorm,
			want:   vkUsageTransferSrc | vkUsageTransferDst,
		},
		{
			name:   "sampled storage",
			usage:  texshare.UsageTextureBinding | texshare.UsageStorageBinding,
			format: texshare.FormatR32Float,
			want:   vkUsageSampled | vkUsageStorage,
		},
		{
			name:   "color attachment",
			usage:  texshare.UsageRenderAttachment,
			format: texshare.FormatBGRA8Unorm,
			want:   vkUsageColorAttachment,
		},
		{
			name:   "depth attachment",
			usage:  texshare.UsageRenderAttachment,
			format: texshare.FormatDepth32Float,
			want:   vkUsageDepthStencilAttachment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsageToVk(tt.usage, tt.format); got != tt.want {
				t.Errorf("UsageToVk = 0x%x, want 0x%x", got, tt.want)
			}
		})
	}
}
