package metal

// DefaultRowAlignment is the bytes-per-row alignment surfaces are
// allocated with when no override is given. 16 matches the alignment
// IOSurface reports for the formats in the canonical set.
const DefaultRowAlignment = 16

// Option configures a Manager during creation.
type Option func(*managerOptions)

type managerOptions struct {
	rowAlignment uint32
}

func defaultOptions() managerOptions {
	return managerOptions{
		rowAlignment: DefaultRowAlignment,
	}
}

// WithRowAlignment overrides the bytes-per-row alignment. Both sides of
// an exchange must use the same alignment or the import size check
// fails. The value must be a nonzero power of two; anything else falls
// back to the default.
func WithRowAlignment(n uint32) Option {
	return func(o *managerOptions) {
		if n == 0 || n&(n-1) != 0 {
			return
		}
		o.rowAlignment = n
	}
}
