package texshare

import (
	"errors"
	"testing"
)

func TestTextureDescriptor_Validate(t *testing.T) {
	valid := TextureDescriptor{
		Width:  1024,
		Height: 1080,
		Format: FormatRGBA8Unorm,
		Usage:  UsageTextureBinding | UsageCopyDst,
	}

	tests := []struct {
		name   string
		mutate func(*TextureDescriptor)
		wantOK bool
	}{
		{"valid", func(*TextureDescriptor) {}, true},
		{"with label", func(d *TextureDescriptor) { d.Label = "shared color" }, true},
		{"zero width", func(d *TextureDescriptor) { d.Width = 0 }, false},
		{"zero height", func(d *TextureDescriptor) { d.Height = 0 }, false},
		{"undefined format", func(d *TextureDescriptor) { d.Format = FormatUndefined }, false},
		{"out of range format", func(d *TextureDescriptor) { d.Format = Format(250) }, false},
		{"empty usage", func(d *TextureDescriptor) { d.Usage = 0 }, false},
		{"unknown usage bit", func(d *TextureDescriptor) { d.Usage = Usage(1 << 12) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Validate() = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestTextureDescriptor_EqualShape(t *testing.T) {
	a := TextureDescriptor{Width: 64, Height: 64, Format: FormatR8Unorm, Usage: UsageCopySrc}

	b := a
	b.Label = "different label"
	if !a.EqualShape(b) {
		t.Error("label must not participate in shape equality")
	}

	c := a
	c.Width = 65
	if a.EqualShape(c) {
		t.Error("width change must break shape equality")
	}

	d := a
	d.Usage = UsageCopyDst
	if a.EqualShape(d) {
		t.Error("usage change must break shape equality")
	}
}
