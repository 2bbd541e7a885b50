package vulkan

import (
	"fmt"
	"time"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/internal/registry"
)

// SharedSemaphore is an exportable binary semaphore owned by one manager.
type SharedSemaphore struct {
	mgr       *Manager
	ref       Semaphore
	exported  *texshare.SyncHandle // guarded by mgr.mu
	destroyed bool                 // guarded by mgr.mu
}

// Native returns the driver semaphore for command submission.
func (s *SharedSemaphore) Native() Semaphore { return s.ref }

// SharedFence is an exportable fence owned by one manager.
type SharedFence struct {
	mgr       *Manager
	ref       Fence
	exported  *texshare.SyncHandle
	destroyed bool
}

// Native returns the driver fence for command submission.
func (f *SharedFence) Native() Fence { return f.ref }

// SharedTimeline is an exportable timeline semaphore owned by one manager.
type SharedTimeline struct {
	mgr       *Manager
	ref       Timeline
	exported  *texshare.SyncHandle
	destroyed bool
}

// Native returns the driver timeline semaphore for command submission.
func (t *SharedTimeline) Native() Timeline { return t.ref }

// CreateExportableSemaphore creates a binary semaphore declared
// exportable with the manager's handle type.
func (m *Manager) CreateExportableSemaphore() (*SharedSemaphore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	ref, err := m.dev.CreateExportableSemaphore(m.handleType)
	if err != nil {
		return nil, m.wrap("create_semaphore", err)
	}
	return &SharedSemaphore{mgr: m, ref: ref}, nil
}

// ExportSemaphore mints a transmissible handle for the semaphore and pins
// it in the registry. The same type-tagging discipline as textures
// applies: the handle carries exactly the type declared at creation.
func (m *Manager) ExportSemaphore(s *SharedSemaphore) (texshare.SyncHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(s.mgr, &s.destroyed); err != nil {
		return texshare.SyncHandle{}, err
	}

	if s.exported != nil {
		m.reg.Export(registry.Key{Kind: registry.KindSemaphore, ID: s.exported.RawHandle})
		return *s.exported, nil
	}
	raw, err := m.dev.ExportSemaphore(s.ref, m.handleType)
	if err != nil {
		return texshare.SyncHandle{}, m.wrap("export_semaphore", err)
	}
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncBinarySemaphore,
		Backend:   texshare.BackendVulkan,
		RawHandle: raw,
		Type:      m.handleType,
	}
	s.exported = &handle
	k := registry.Key{Kind: registry.KindSemaphore, ID: raw}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		s.exported = nil
		if err := m.dev.CloseHandle(raw, handle.Type); err != nil {
			texshare.Logger().Warn("close of exported semaphore handle failed", "raw", raw, "err", err)
		}
	}
	return handle, nil
}

// ImportSemaphore binds a semaphore exported elsewhere.
func (m *Manager) ImportSemaphore(handle texshare.SyncHandle) (*SharedSemaphore, error) {
	if err := m.checkSyncHandle(handle, texshare.SyncBinarySemaphore); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	raw, err := m.dev.DuplicateHandle(handle.RawHandle, handle.Type)
	if err != nil {
		return nil, m.wrap("duplicate_handle", err)
	}
	ref, err := m.dev.ImportSemaphore(raw, handle.Type)
	if err != nil {
		_ = m.dev.CloseHandle(raw, handle.Type)
		return nil, m.wrap("import_semaphore", err)
	}
	k := registry.Key{Kind: registry.KindSemaphore, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		m.cleanups[k] = func() {}
	}
	return &SharedSemaphore{mgr: m, ref: ref}, nil
}

// SignalSemaphore signals the semaphore from the host.
func (m *Manager) SignalSemaphore(s *SharedSemaphore) error {
	if err := m.checkAlive(s.mgr, &s.destroyed); err != nil {
		return err
	}
	if err := m.dev.SignalSemaphore(s.ref); err != nil {
		return m.wrap("signal_semaphore", err)
	}
	return nil
}

// WaitSemaphore blocks until the semaphore is signaled or the timeout
// fires. A timeout of 0 polls; texshare.WaitForever blocks indefinitely.
func (m *Manager) WaitSemaphore(s *SharedSemaphore, timeout time.Duration) error {
	if err := m.checkAlive(s.mgr, &s.destroyed); err != nil {
		return err
	}
	if err := m.dev.WaitSemaphore(s.ref, timeout); err != nil {
		return m.wrap("wait_semaphore", err)
	}
	return nil
}

// DestroySemaphore destroys a semaphore created or imported here.
func (m *Manager) DestroySemaphore(s *SharedSemaphore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(s.mgr, &s.destroyed); err != nil {
		return err
	}
	m.dev.DestroySemaphore(s.ref)
	s.destroyed = true
	return nil
}

// CreateExportableFence creates a fence declared exportable with the
// manager's handle type.
func (m *Manager) CreateExportableFence() (*SharedFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	ref, err := m.dev.CreateExportableFence(m.handleType)
	if err != nil {
		return nil, m.wrap("create_fence", err)
	}
	return &SharedFence{mgr: m, ref: ref}, nil
}

// ExportFence mints a transmissible handle for the fence.
func (m *Manager) ExportFence(f *SharedFence) (texshare.SyncHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(f.mgr, &f.destroyed); err != nil {
		return texshare.SyncHandle{}, err
	}

	if f.exported != nil {
		m.reg.Export(registry.Key{Kind: registry.KindFence, ID: f.exported.RawHandle})
		return *f.exported, nil
	}
	raw, err := m.dev.ExportFence(f.ref, m.handleType)
	if err != nil {
		return texshare.SyncHandle{}, m.wrap("export_fence", err)
	}
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncFence,
		Backend:   texshare.BackendVulkan,
		RawHandle: raw,
		Type:      m.handleType,
	}
	f.exported = &handle
	k := registry.Key{Kind: registry.KindFence, ID: raw}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		f.exported = nil
		if err := m.dev.CloseHandle(raw, handle.Type); err != nil {
			texshare.Logger().Warn("close of exported fence handle failed", "raw", raw, "err", err)
		}
	}
	return handle, nil
}

// ImportFence binds a fence exported elsewhere.
func (m *Manager) ImportFence(handle texshare.SyncHandle) (*SharedFence, error) {
	if err := m.checkSyncHandle(handle, texshare.SyncFence); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	raw, err := m.dev.DuplicateHandle(handle.RawHandle, handle.Type)
	if err != nil {
		return nil, m.wrap("duplicate_handle", err)
	}
	ref, err := m.dev.ImportFence(raw, handle.Type)
	if err != nil {
		_ = m.dev.CloseHandle(raw, handle.Type)
		return nil, m.wrap("import_fence", err)
	}
	k := registry.Key{Kind: registry.KindFence, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		m.cleanups[k] = func() {}
	}
	return &SharedFence{mgr: m, ref: ref}, nil
}

// WaitFence blocks until the fence signals or the timeout fires.
func (m *Manager) WaitFence(f *SharedFence, timeout time.Duration) error {
	if err := m.checkAlive(f.mgr, &f.destroyed); err != nil {
		return err
	}
	if err := m.dev.WaitFence(f.ref, timeout); err != nil {
		return m.wrap("wait_fence", err)
	}
	return nil
}

// DestroyFence destroys a fence created or imported here.
func (m *Manager) DestroyFence(f *SharedFence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(f.mgr, &f.destroyed); err != nil {
		return err
	}
	m.dev.DestroyFence(f.ref)
	f.destroyed = true
	return nil
}

// CreateTimeline creates a timeline semaphore starting at initial,
// declared exportable with the manager's handle type.
func (m *Manager) CreateTimeline(initial uint64) (*SharedTimeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	ref, err := m.dev.CreateTimelineSemaphore(initial, m.handleType)
	if err != nil {
		return nil, m.wrap("create_timeline", err)
	}
	return &SharedTimeline{mgr: m, ref: ref}, nil
}

// ExportTimeline mints a transmissible handle for the timeline. The
// handle records the counter value at the moment of export, not the
// timeline's initial value.
func (m *Manager) ExportTimeline(t *SharedTimeline) (texshare.SyncHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(t.mgr, &t.destroyed); err != nil {
		return texshare.SyncHandle{}, err
	}

	value, err := m.dev.TimelineValue(t.ref)
	if err != nil {
		return texshare.SyncHandle{}, m.wrap("timeline_value", err)
	}
	if t.exported != nil {
		m.reg.Export(registry.Key{Kind: registry.KindTimeline, ID: t.exported.RawHandle})
		h := *t.exported
		h.Value = value
		return h, nil
	}
	raw, err := m.dev.ExportTimeline(t.ref, m.handleType)
	if err != nil {
		return texshare.SyncHandle{}, m.wrap("export_timeline", err)
	}
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncTimeline,
		Backend:   texshare.BackendVulkan,
		RawHandle: raw,
		Type:      m.handleType,
		Value:     value,
	}
	t.exported = &handle
	k := registry.Key{Kind: registry.KindTimeline, ID: raw}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		t.exported = nil
		if err := m.dev.CloseHandle(raw, handle.Type); err != nil {
			texshare.Logger().Warn("close of exported timeline handle failed", "raw", raw, "err", err)
		}
	}
	return handle, nil
}

// ImportTimeline binds a timeline exported elsewhere. The counters share
// one namespace: values signaled by the exporter are observed by waits
// here.
func (m *Manager) ImportTimeline(handle texshare.SyncHandle) (*SharedTimeline, error) {
	if err := m.checkSyncHandle(handle, texshare.SyncTimeline); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	raw, err := m.dev.DuplicateHandle(handle.RawHandle, handle.Type)
	if err != nil {
		return nil, m.wrap("duplicate_handle", err)
	}
	ref, err := m.dev.ImportTimeline(raw, handle.Type)
	if err != nil {
		_ = m.dev.CloseHandle(raw, handle.Type)
		return nil, m.wrap("import_timeline", err)
	}
	k := registry.Key{Kind: registry.KindTimeline, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		m.cleanups[k] = func() {}
	}
	return &SharedTimeline{mgr: m, ref: ref}, nil
}

// SignalTimeline advances the counter to value from the host. The value
// must be strictly greater than the current counter.
func (m *Manager) SignalTimeline(t *SharedTimeline, value uint64) error {
	if err := m.checkAlive(t.mgr, &t.destroyed); err != nil {
		return err
	}
	if err := m.dev.SignalTimeline(t.ref, value); err != nil {
		return m.wrap("signal_timeline", err)
	}
	return nil
}

// WaitTimeline blocks until the counter is observed at or above value,
// or the timeout fires. It never returns success below value.
func (m *Manager) WaitTimeline(t *SharedTimeline, value uint64, timeout time.Duration) error {
	if err := m.checkAlive(t.mgr, &t.destroyed); err != nil {
		return err
	}
	if err := m.dev.WaitTimeline(t.ref, value, timeout); err != nil {
		return m.wrap("wait_timeline", err)
	}
	return nil
}

// TimelineValue returns the current counter without blocking.
func (m *Manager) TimelineValue(t *SharedTimeline) (uint64, error) {
	if err := m.checkAlive(t.mgr, &t.destroyed); err != nil {
		return 0, err
	}
	value, err := m.dev.TimelineValue(t.ref)
	if err != nil {
		return 0, m.wrap("timeline_value", err)
	}
	return value, nil
}

// DestroyTimeline destroys a timeline created or imported here.
func (m *Manager) DestroyTimeline(t *SharedTimeline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownSync(t.mgr, &t.destroyed); err != nil {
		return err
	}
	m.dev.DestroyTimeline(t.ref)
	t.destroyed = true
	return nil
}

// ReleaseSyncHandle decrements the registry count for an exported or
// imported sync handle; at zero the OS duplicate is closed. A second
// release is texshare.ErrUseAfterRelease.
func (m *Manager) ReleaseSyncHandle(handle texshare.SyncHandle) error {
	if handle.Backend != texshare.BackendVulkan {
		return fmt.Errorf("%w: %s handle offered to vulkan manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	kind, err := syncRegistryKind(handle.Kind)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	return m.releaseLocked(registry.Key{Kind: kind, ID: handle.RawHandle})
}

// syncRegistryKind maps a wire sync kind to its registry namespace.
func syncRegistryKind(k texshare.SyncKind) (registry.Kind, error) {
	switch k {
	case texshare.SyncBinarySemaphore:
		return registry.KindSemaphore, nil
	case texshare.SyncFence:
		return registry.KindFence, nil
	case texshare.SyncTimeline:
		return registry.KindTimeline, nil
	default:
		return 0, fmt.Errorf("%w: sync kind %s has no vulkan registry namespace", texshare.ErrInvalidHandle, k)
	}
}

// ExportSyncPrimitives bundles handles for one coordination point.
// Either argument may be nil.
func (m *Manager) ExportSyncPrimitives(sem *SharedSemaphore, fence *SharedFence) (texshare.SyncPrimitives, error) {
	var out texshare.SyncPrimitives
	if sem != nil {
		h, err := m.ExportSemaphore(sem)
		if err != nil {
			return texshare.SyncPrimitives{}, err
		}
		out.Semaphore = &h
	}
	if fence != nil {
		h, err := m.ExportFence(fence)
		if err != nil {
			if out.Semaphore != nil {
				// Roll back the semaphore export so no orphan entry stays.
				_ = m.ReleaseSyncHandle(*out.Semaphore)
			}
			return texshare.SyncPrimitives{}, err
		}
		out.Fence = &h
	}
	return out, nil
}

// checkSyncHandle validates a sync handle against this manager's backend
// and platform before any driver call.
func (m *Manager) checkSyncHandle(handle texshare.SyncHandle, want texshare.SyncKind) error {
	if err := handle.Validate(); err != nil {
		return err
	}
	if handle.Backend != texshare.BackendVulkan {
		return fmt.Errorf("%w: %s handle offered to vulkan manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	if handle.Kind != want {
		return fmt.Errorf("%w: kind %s where %s expected", texshare.ErrInvalidHandle, handle.Kind, want)
	}
	if !handleTypeSupported(handle.Type) {
		return fmt.Errorf("%w: handle family %s not consumable on this platform",
			texshare.ErrInvalidHandle, handle.Type)
	}
	return nil
}

// checkAlive verifies ownership and destruction state, releasing the
// lock before the caller's (possibly blocking) driver call. The flag is
// read under the lock; callers pass a pointer into the wrapper struct.
func (m *Manager) checkAlive(owner *Manager, destroyed *bool) error {
	if owner != m {
		return fmt.Errorf("%w: object does not belong to this manager", texshare.ErrInvalidHandle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	if *destroyed {
		return fmt.Errorf("%w: object already destroyed", texshare.ErrInvalidHandle)
	}
	return nil
}

// ownSync is checkAlive for callers already holding m.mu.
func (m *Manager) ownSync(owner *Manager, destroyed *bool) error {
	if owner != m {
		return fmt.Errorf("%w: object does not belong to this manager", texshare.ErrInvalidHandle)
	}
	if m.closed {
		return texshare.ErrManagerClosed
	}
	if *destroyed {
		return fmt.Errorf("%w: object already destroyed", texshare.ErrInvalidHandle)
	}
	return nil
}
