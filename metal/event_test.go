package metal

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/texshare"
)

func TestEvent_ExportImportSignalWait(t *testing.T) {
	a, b, _, _ := twoManagers(t)

	ev, err := a.NewSharedEvent(3)
	if err != nil {
		t.Fatalf("NewSharedEvent: %v", err)
	}
	handle, err := a.ExportEvent(ev)
	if err != nil {
		t.Fatalf("ExportEvent: %v", err)
	}
	if handle.Kind != texshare.SyncSharedEvent {
		t.Errorf("handle kind = %v", handle.Kind)
	}
	if handle.Type != texshare.HandleTypeSharedEvent {
		t.Errorf("handle type = %v", handle.Type)
	}
	if handle.Value != 3 {
		t.Errorf("exported value = %d, want 3", handle.Value)
	}

	imported, err := b.ImportEvent(handle)
	if err != nil {
		t.Fatalf("ImportEvent: %v", err)
	}
	if v, _ := b.EventValue(imported); v != 3 {
		t.Errorf("imported value = %d, want 3", v)
	}

	if err := b.WaitEvent(imported, 5, 0); !errors.Is(err, texshare.ErrTimeout) {
		t.Errorf("poll below target = %v, want ErrTimeout", err)
	}
	if err := a.SignalEvent(ev, 5); err != nil {
		t.Fatalf("SignalEvent: %v", err)
	}
	if err := b.WaitEvent(imported, 5, time.Second); err != nil {
		t.Errorf("wait after signal: %v", err)
	}
}

func TestEvent_NonMonotonicSignal(t *testing.T) {
	a, _, _, _ := twoManagers(t)
	ev, err := a.NewSharedEvent(10)
	if err != nil {
		t.Fatalf("NewSharedEvent: %v", err)
	}
	if err := a.SignalEvent(ev, 10); !errors.Is(err, texshare.ErrNonMonotonicSignal) {
		t.Errorf("equal signal = %v, want ErrNonMonotonicSignal", err)
	}
	if err := a.SignalEvent(ev, 2); !errors.Is(err, texshare.ErrNonMonotonicSignal) {
		t.Errorf("lower signal = %v, want ErrNonMonotonicSignal", err)
	}
	if v, _ := a.EventValue(ev); v != 10 {
		t.Errorf("rejected signal moved the counter to %d", v)
	}
}

func TestImportEvent_UnknownID(t *testing.T) {
	a, _, _, _ := twoManagers(t)
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncSharedEvent,
		Backend:   texshare.BackendMetal,
		RawHandle: 777777,
		Type:      texshare.HandleTypeSharedEvent,
	}
	if _, err := a.ImportEvent(handle); !errors.Is(err, texshare.ErrInvalidHandle) {
		t.Errorf("unknown event = %v, want ErrInvalidHandle", err)
	}
}

func TestImportEvent_WrongKind(t *testing.T) {
	a, _, _, _ := twoManagers(t)
	handle := texshare.SyncHandle{
		Kind:      texshare.SyncTimeline,
		Backend:   texshare.BackendMetal,
		RawHandle: 51,
		Type:      texshare.HandleTypeSharedEvent,
	}
	if _, err := a.ImportEvent(handle); !errors.Is(err, texshare.ErrInvalidHandle) {
		t.Errorf("wrong kind = %v, want ErrInvalidHandle", err)
	}
}

func TestEvent_ReleaseLifecycle(t *testing.T) {
	a, _, _, _ := twoManagers(t)
	ev, err := a.NewSharedEvent(0)
	if err != nil {
		t.Fatalf("NewSharedEvent: %v", err)
	}
	h1, err := a.ExportEvent(ev)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	h2, err := a.ExportEvent(ev)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if h1.RawHandle != h2.RawHandle {
		t.Error("repeated export minted a new handle")
	}
	if err := a.ReleaseSyncHandle(h1); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := a.ReleaseSyncHandle(h2); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := a.ReleaseSyncHandle(h1); !errors.Is(err, texshare.ErrUseAfterRelease) {
		t.Errorf("release after zero = %v, want ErrUseAfterRelease", err)
	}
}

func TestEvent_DestroyedOps(t *testing.T) {
	a, _, _, _ := twoManagers(t)
	ev, err := a.NewSharedEvent(0)
	if err != nil {
		t.Fatalf("NewSharedEvent: %v", err)
	}
	if err := a.DestroyEvent(ev); err != nil {
		t.Fatalf("DestroyEvent: %v", err)
	}
	if err := a.SignalEvent(ev, 1); !errors.Is(err, texshare.ErrInvalidHandle) {
		t.Errorf("signal after destroy = %v, want ErrInvalidHandle", err)
	}
	if _, err := a.ExportEvent(ev); !errors.Is(err, texshare.ErrInvalidHandle) {
		t.Errorf("export after destroy = %v, want ErrInvalidHandle", err)
	}
}
