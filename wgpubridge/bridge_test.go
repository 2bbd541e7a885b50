package wgpubridge

import (
	"errors"
	"testing"

	"github.com/gogpu/texshare"
	types "github.com/gogpu/gputypes"
)

func TestFormatMapping_Total(t *testing.T) {
	for _, f := range texshare.Formats() {
		w, err := ToWGPUFormat(f)
		if err != nil {
			t.Fatalf("ToWGPUFormat(%s): %v", f, err)
		}
		back, err := FromWGPUFormat(w)
		if err != nil {
			t.Fatalf("FromWGPUFormat: %v", err)
		}
		if back != f {
			t.Errorf("%s → %v → %s", f, w, back)
		}
	}
}

func TestFormatMapping_Undefined(t *testing.T) {
	if _, err := ToWGPUFormat(texshare.FormatUndefined); !errors.Is(err, texshare.ErrUnsupportedFormat) {
		t.Errorf("undefined = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := FromWGPUFormat(types.TextureFormatUndefined); !errors.Is(err, texshare.ErrUnsupportedFormat) {
		t.Errorf("wgpu undefined = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUsageMapping_RoundTrip(t *testing.T) {
	sets := []texshare.Usage{
		texshare.UsageCopySrc,
		texshare.UsageCopySrc | texshare.UsageCopyDst,
		texshare.UsageTextureBinding | texshare.UsageStorageBinding,
		texshare.UsageRenderAttachment | texshare.UsageTextureBinding,
	}
	for _, u := range sets {
		if got := FromWGPUUsage(ToWGPUUsage(u)); got != u {
			t.Errorf("round trip %s = %s", u, got)
		}
	}
}

func TestHALTextureDescriptor(t *testing.T) {
	desc := texshare.TextureDescriptor{
		Width:  1024,
		Height: 1080,
		Format: texshare.FormatBGRA8UnormSrgb,
		Usage:  texshare.UsageRenderAttachment | texshare.UsageTextureBinding,
		Label:  "shared target",
	}

	hd, err := HALTextureDescriptor(desc)
	if err != nil {
		t.Fatalf("HALTextureDescriptor: %v", err)
	}
	if hd.Size.Width != 1024 || hd.Size.Height != 1080 || hd.Size.DepthOrArrayLayers != 1 {
		t.Errorf("size = %+v", hd.Size)
	}
	if hd.MipLevelCount != 1 || hd.SampleCount != 1 {
		t.Errorf("mips/samples = %d/%d, want 1/1", hd.MipLevelCount, hd.SampleCount)
	}
	if hd.Dimension != types.TextureDimension2D {
		t.Errorf("dimension = %v", hd.Dimension)
	}
	if hd.Format != types.TextureFormatBGRA8UnormSrgb {
		t.Errorf("format = %v", hd.Format)
	}
	if hd.Label != "shared target" {
		t.Errorf("label = %q", hd.Label)
	}
	wantUsage := types.TextureUsageRenderAttachment | types.TextureUsageTextureBinding
	if hd.Usage != wantUsage {
		t.Errorf("usage = %v, want %v", hd.Usage, wantUsage)
	}
}

func TestHALTextureDescriptor_Invalid(t *testing.T) {
	desc := texshare.TextureDescriptor{Height: 10, Format: texshare.FormatRGBA8Unorm, Usage: texshare.UsageCopySrc}
	if _, err := HALTextureDescriptor(desc); !errors.Is(err, texshare.ErrInvalidDescriptor) {
		t.Errorf("zero width = %v, want ErrInvalidDescriptor", err)
	}
}
