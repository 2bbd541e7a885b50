// Package backend provides a process-wide registry of share-manager
// factories, so hosts can construct a manager by backend name without
// importing every backend package.
package backend

import (
	"errors"
	"sync"

	"github.com/gogpu/texshare"
)

// ErrBackendNotAvailable is returned when no registered factory matches.
var ErrBackendNotAvailable = errors.New("backend: backend not available")

// Factory creates a new share manager. Factories close over whatever
// host device integration the backend needs.
type Factory func() (texshare.Manager, error)

// registry holds registered factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[texshare.Backend]Factory)
	// Priority order for default selection (first available wins).
	priority = []texshare.Backend{texshare.BackendVulkan, texshare.BackendMetal}
)

// Register registers a factory for the given backend.
// This is typically called from init() functions in host integration
// packages. If a factory for the same backend is already registered, it
// will be replaced.
func Register(b texshare.Backend, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[b] = factory
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(b texshare.Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, b)
}

// Available returns the backends with a registered factory.
func Available() []texshare.Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]texshare.Backend, 0, len(factories))
	for b := range factories {
		out = append(out, b)
	}
	return out
}

// IsRegistered checks if a factory for the given backend is registered.
func IsRegistered(b texshare.Backend) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[b]
	return ok
}

// New constructs a manager for the given backend.
func New(b texshare.Backend) (texshare.Manager, error) {
	registryMu.RLock()
	factory, ok := factories[b]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrBackendNotAvailable
	}
	return factory()
}

// Default constructs a manager from the best available backend based on
// priority.
func Default() (texshare.Manager, error) {
	registryMu.RLock()
	var factory Factory
	for _, b := range priority {
		if f, ok := factories[b]; ok {
			factory = f
			break
		}
	}
	if factory == nil {
		for _, f := range factories {
			factory = f
			break
		}
	}
	registryMu.RUnlock()

	if factory == nil {
		return nil, ErrBackendNotAvailable
	}
	return factory()
}
