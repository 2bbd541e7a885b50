package vulkan

import "github.com/gogpu/texshare"

// Option configures a Manager during creation.
type Option func(*managerOptions)

type managerOptions struct {
	handleType texshare.HandleType
}

func defaultOptions() managerOptions {
	return managerOptions{
		handleType: DefaultHandleType(),
	}
}

// WithHandleType overrides the external handle type declared at allocation
// time. The default is the platform's opaque type (OpaqueWin32 on Windows,
// OpaqueFD elsewhere). Use HandleTypeDMABuf on Linux only when the
// device's external-memory capabilities advertise it and both sides of
// the exchange agreed on it.
func WithHandleType(t texshare.HandleType) Option {
	return func(o *managerOptions) {
		o.handleType = t
	}
}
