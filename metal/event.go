package metal

import (
	"fmt"
	"time"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/internal/registry"
)

// Event is a shareable counting event owned by one manager. It carries
// timeline semantics: a monotonic 64-bit counter, host signal and wait,
// and a non-blocking value query.
type Event struct {
	mgr       *Manager
	ev        SharedEvent
	exported  *texshare.SyncHandle // guarded by mgr.mu
	destroyed bool                 // guarded by mgr.mu
}

// Native returns the provider event for command submission.
func (e *Event) Native() SharedEvent { return e.ev }

// NewSharedEvent creates a shareable event starting at initial.
func (m *Manager) NewSharedEvent(initial uint64) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	ev, err := m.provider.NewSharedEvent(initial)
	if err != nil {
		return nil, m.wrap("new_shared_event", err)
	}
	return &Event{mgr: m, ev: ev}, nil
}

// ExportEvent mints a transmissible handle for the event. The handle
// records the counter value at the moment of export.
func (m *Manager) ExportEvent(e *Event) (texshare.SyncHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownEvent(e); err != nil {
		return texshare.SyncHandle{}, err
	}

	value, err := e.ev.Value()
	if err != nil {
		return texshare.SyncHandle{}, m.wrap("event_value", err)
	}
	if e.exported != nil {
		m.reg.Export(registry.Key{Kind: registry.KindEvent, ID: e.exported.RawHandle})
		h := *e.exported
		h.Value = value
		return h, nil
	}
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncSharedEvent,
		Backend:   texshare.BackendMetal,
		RawHandle: e.ev.ID(),
		Type:      texshare.HandleTypeSharedEvent,
		Value:     value,
	}
	e.exported = &handle
	k := registry.Key{Kind: registry.KindEvent, ID: handle.RawHandle}
	m.reg.Export(k)
	m.cleanups[k] = func() {
		e.exported = nil
	}
	return handle, nil
}

// ImportEvent binds an event exported elsewhere on this machine. The
// counter is shared: values signaled by the exporter are observed by
// waits here.
func (m *Manager) ImportEvent(handle texshare.SyncHandle) (*Event, error) {
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	if handle.Backend != texshare.BackendMetal {
		return nil, fmt.Errorf("%w: %s handle offered to metal manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	if handle.Kind != texshare.SyncSharedEvent {
		return nil, fmt.Errorf("%w: kind %s where %s expected",
			texshare.ErrInvalidHandle, handle.Kind, texshare.SyncSharedEvent)
	}
	if handle.Type != texshare.HandleTypeSharedEvent {
		return nil, fmt.Errorf("%w: handle family %s not consumable by the surface backend",
			texshare.ErrInvalidHandle, handle.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, texshare.ErrManagerClosed
	}
	ev, err := m.provider.LookupSharedEvent(handle.RawHandle)
	if err != nil {
		return nil, m.wrap("lookup_shared_event", err)
	}
	k := registry.Key{Kind: registry.KindEvent, ID: handle.RawHandle}
	m.reg.Export(k)
	if _, ok := m.cleanups[k]; !ok {
		m.cleanups[k] = func() {}
	}
	return &Event{mgr: m, ev: ev}, nil
}

// SignalEvent advances the counter to value from the host. The value
// must be strictly greater than the current counter.
func (m *Manager) SignalEvent(e *Event, value uint64) error {
	if err := m.eventAlive(e); err != nil {
		return err
	}
	if err := e.ev.Signal(value); err != nil {
		return m.wrap("signal_event", err)
	}
	return nil
}

// WaitEvent blocks until the counter is observed at or above value, or
// the timeout fires. It never returns success below value. A timeout of
// 0 polls; texshare.WaitForever blocks indefinitely.
func (m *Manager) WaitEvent(e *Event, value uint64, timeout time.Duration) error {
	if err := m.eventAlive(e); err != nil {
		return err
	}
	if err := e.ev.Wait(value, timeout); err != nil {
		return m.wrap("wait_event", err)
	}
	return nil
}

// EventValue returns the current counter without blocking.
func (m *Manager) EventValue(e *Event) (uint64, error) {
	if err := m.eventAlive(e); err != nil {
		return 0, err
	}
	value, err := e.ev.Value()
	if err != nil {
		return 0, m.wrap("event_value", err)
	}
	return value, nil
}

// DestroyEvent drops the manager's reference to the event. Importers
// elsewhere keep the event alive through their own references.
func (m *Manager) DestroyEvent(e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ownEvent(e); err != nil {
		return err
	}
	e.destroyed = true
	return nil
}

// ReleaseSyncHandle decrements the registry count for an exported or
// imported event handle. A second release is texshare.ErrUseAfterRelease.
func (m *Manager) ReleaseSyncHandle(handle texshare.SyncHandle) error {
	if handle.Backend != texshare.BackendMetal {
		return fmt.Errorf("%w: %s handle offered to metal manager", texshare.ErrInvalidHandle, handle.Backend)
	}
	if handle.Kind != texshare.SyncSharedEvent {
		return fmt.Errorf("%w: sync kind %s has no metal registry namespace",
			texshare.ErrInvalidHandle, handle.Kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return texshare.ErrManagerClosed
	}
	return m.releaseLocked(registry.Key{Kind: registry.KindEvent, ID: handle.RawHandle})
}

// eventAlive checks ownership and destruction state, releasing the lock
// before the caller's (possibly blocking) provider call.
func (m *Manager) eventAlive(e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownEvent(e)
}

// ownEvent is the ownership check for callers already holding m.mu.
func (m *Manager) ownEvent(e *Event) error {
	if e.mgr != m {
		return fmt.Errorf("%w: event does not belong to this manager", texshare.ErrInvalidHandle)
	}
	if m.closed {
		return texshare.ErrManagerClosed
	}
	if e.destroyed {
		return fmt.Errorf("%w: event already destroyed", texshare.ErrInvalidHandle)
	}
	return nil
}
