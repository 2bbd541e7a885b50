package texshare

import "fmt"

// TextureDescriptor is the canonical, API-agnostic shape of a texture.
//
// The descriptor is immutable once passed to CreateShareableTexture: the
// manager copies it into the resulting SharedTexture verbatim, and the
// import side must present a byte-identical descriptor or the import fails.
type TextureDescriptor struct {
	// Width is the texture width in pixels. Must be nonzero.
	Width uint32

	// Height is the texture height in pixels. Must be nonzero.
	Height uint32

	// Format is the pixel format, one of the canonical closed set.
	Format Format

	// Usage is the non-empty set of intended uses.
	Usage Usage

	// Label is an optional diagnostic name with no semantic effect.
	// It does not participate in export/import equality.
	Label string
}

// Validate checks the descriptor invariants. All failures wrap
// [ErrInvalidDescriptor].
func (d TextureDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("%w: zero dimension %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if !d.Format.Valid() {
		return fmt.Errorf("%w: format %s", ErrInvalidDescriptor, d.Format)
	}
	if !d.Usage.Valid() {
		return fmt.Errorf("%w: usage %s", ErrInvalidDescriptor, d.Usage)
	}
	return nil
}

// EqualShape reports whether two descriptors describe the same texture
// shape. The label is diagnostic only and is ignored.
func (d TextureDescriptor) EqualShape(o TextureDescriptor) bool {
	return d.Width == o.Width && d.Height == o.Height && d.Format == o.Format && d.Usage == o.Usage
}

// String returns a short diagnostic description.
func (d TextureDescriptor) String() string {
	if d.Label != "" {
		return fmt.Sprintf("%dx%d %s [%s] %q", d.Width, d.Height, d.Format, d.Usage, d.Label)
	}
	return fmt.Sprintf("%dx%d %s [%s]", d.Width, d.Height, d.Format, d.Usage)
}
