package vulkan

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/timeline"
)

// fakeWorld simulates the kernel side of handle exchange: minted raw
// handles resolve to allocations and sync objects from any fakeDevice
// sharing the world, the way two processes on one machine share fds
// via SCM_RIGHTS or duplicated NT handles.
type fakeWorld struct {
	mu   sync.Mutex
	next uint64

	allocations map[uint64]*fakeAlloc
	semaphores  map[uint64]*timeline.Counter
	fences      map[uint64]*timeline.Counter
	timelines   map[uint64]*timeline.Counter

	// doubleCloses counts closes of raw values no longer open, the way
	// a close of an already-closed fd fails with EBADF.
	doubleCloses int
}

type fakeAlloc struct {
	size    uint64
	memType uint32
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		next:        100,
		allocations: make(map[uint64]*fakeAlloc),
		semaphores:  make(map[uint64]*timeline.Counter),
		fences:      make(map[uint64]*timeline.Counter),
		timelines:   make(map[uint64]*timeline.Counter),
	}
}

func (w *fakeWorld) mint() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	return w.next
}

// dup mints a new raw value referring to whatever object raw resolves
// to, like dup(2) on an fd.
func (w *fakeWorld) dup(raw uint64) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	fresh := w.next
	if a, ok := w.allocations[raw]; ok {
		w.allocations[fresh] = a
		return fresh, true
	}
	if c, ok := w.semaphores[raw]; ok {
		w.semaphores[fresh] = c
		return fresh, true
	}
	if c, ok := w.fences[raw]; ok {
		w.fences[fresh] = c
		return fresh, true
	}
	if c, ok := w.timelines[raw]; ok {
		w.timelines[fresh] = c
		return fresh, true
	}
	return 0, false
}

// close removes raw from the open table; a second close of the same raw
// reports false and is tallied by the caller.
func (w *fakeWorld) close(raw uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range []map[uint64]*timeline.Counter{w.semaphores, w.fences, w.timelines} {
		if _, ok := m[raw]; ok {
			delete(m, raw)
			return true
		}
	}
	if _, ok := w.allocations[raw]; ok {
		delete(w.allocations, raw)
		return true
	}
	return false
}

func (w *fakeWorld) doubleCloseCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doubleCloses
}

// fakeImage is the driver image the fake device hands the manager.
type fakeImage struct {
	info     ImageInfo
	size     uint64
	imported bool
}

type fakeSem struct{ c *timeline.Counter }
type fakeFence struct{ c *timeline.Counter }
type fakeTimeline struct{ c *timeline.Counter }

// fakeDevice implements Device against a fakeWorld. Two devices over
// the same world model two contexts on one machine.
type fakeDevice struct {
	world *fakeWorld

	mu          sync.Mutex
	liveImages  int
	closedRaws  []uint64
	closed      bool
	failAlloc   bool
	exportCalls int
}

func newFakeDevice(w *fakeWorld) *fakeDevice {
	return &fakeDevice{world: w}
}

func (d *fakeDevice) imageSize(info ImageInfo) (uint64, error) {
	f, err := FormatFromVk(info.Format)
	if err != nil {
		return 0, err
	}
	return uint64(info.Width) * uint64(info.Height) * uint64(f.BytesPerPixel()), nil
}

func (d *fakeDevice) CreateExportableImage(info ImageInfo, handleType texshare.HandleType) (Image, error) {
	if d.failAlloc {
		return nil, fmt.Errorf("%w: VK_ERROR_OUT_OF_DEVICE_MEMORY", texshare.ErrOutOfMemory)
	}
	size, err := d.imageSize(info)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.liveImages++
	d.mu.Unlock()
	return &fakeImage{info: info, size: size}, nil
}

func (d *fakeDevice) DestroyImage(img Image) {
	d.mu.Lock()
	d.liveImages--
	d.mu.Unlock()
}

func (d *fakeDevice) ExportImageMemory(img Image, handleType texshare.HandleType) (ExportedMemory, error) {
	fi := img.(*fakeImage)
	raw := d.world.mint()
	d.world.mu.Lock()
	d.world.allocations[raw] = &fakeAlloc{size: fi.size, memType: 2}
	d.world.mu.Unlock()

	d.mu.Lock()
	d.exportCalls++
	d.mu.Unlock()
	return ExportedMemory{RawHandle: raw, Size: fi.size, MemoryTypeIndex: 2}, nil
}

func (d *fakeDevice) ImportImageMemory(info ImageInfo, mem ExternalMemory) (Image, error) {
	d.world.mu.Lock()
	alloc, ok := d.world.allocations[mem.RawHandle]
	d.world.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: raw handle %d resolves to nothing", texshare.ErrInvalidHandle, mem.RawHandle)
	}
	if alloc.size != mem.Size {
		return nil, fmt.Errorf("%w: allocation holds %d bytes, import claims %d",
			texshare.ErrSizeMismatch, alloc.size, mem.Size)
	}
	// The import consumes the presented raw value, like
	// vkImportMemoryFdKHR taking ownership of its fd.
	d.world.close(mem.RawHandle)
	d.mu.Lock()
	d.liveImages++
	d.mu.Unlock()
	return &fakeImage{info: info, size: alloc.size, imported: true}, nil
}

func (d *fakeDevice) DuplicateHandle(raw uint64, handleType texshare.HandleType) (uint64, error) {
	fresh, ok := d.world.dup(raw)
	if !ok {
		return 0, fmt.Errorf("%w: raw handle %d is not open", texshare.ErrInvalidHandle, raw)
	}
	return fresh, nil
}

func (d *fakeDevice) CloseHandle(raw uint64, handleType texshare.HandleType) error {
	d.mu.Lock()
	d.closedRaws = append(d.closedRaws, raw)
	d.mu.Unlock()
	if !d.world.close(raw) {
		d.world.mu.Lock()
		d.world.doubleCloses++
		d.world.mu.Unlock()
		return fmt.Errorf("%w: raw handle %d is not open", texshare.ErrInvalidHandle, raw)
	}
	return nil
}

func (d *fakeDevice) CreateExportableSemaphore(handleType texshare.HandleType) (Semaphore, error) {
	return &fakeSem{c: timeline.New(0)}, nil
}

func (d *fakeDevice) ExportSemaphore(sem Semaphore, handleType texshare.HandleType) (uint64, error) {
	raw := d.world.mint()
	d.world.mu.Lock()
	d.world.semaphores[raw] = sem.(*fakeSem).c
	d.world.mu.Unlock()
	return raw, nil
}

func (d *fakeDevice) ImportSemaphore(raw uint64, handleType texshare.HandleType) (Semaphore, error) {
	d.world.mu.Lock()
	c, ok := d.world.semaphores[raw]
	if ok {
		delete(d.world.semaphores, raw) // the import consumes the raw value
	}
	d.world.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: semaphore handle %d resolves to nothing", texshare.ErrInvalidHandle, raw)
	}
	return &fakeSem{c: c}, nil
}

func (d *fakeDevice) SignalSemaphore(sem Semaphore) error {
	c := sem.(*fakeSem).c
	return c.Signal(c.Value() + 1)
}

func (d *fakeDevice) WaitSemaphore(sem Semaphore, timeout time.Duration) error {
	return sem.(*fakeSem).c.Wait(1, timeout)
}

func (d *fakeDevice) DestroySemaphore(sem Semaphore) {}

func (d *fakeDevice) CreateExportableFence(handleType texshare.HandleType) (Fence, error) {
	return &fakeFence{c: timeline.New(0)}, nil
}

func (d *fakeDevice) ExportFence(f Fence, handleType texshare.HandleType) (uint64, error) {
	raw := d.world.mint()
	d.world.mu.Lock()
	d.world.fences[raw] = f.(*fakeFence).c
	d.world.mu.Unlock()
	return raw, nil
}

func (d *fakeDevice) ImportFence(raw uint64, handleType texshare.HandleType) (Fence, error) {
	d.world.mu.Lock()
	c, ok := d.world.fences[raw]
	if ok {
		delete(d.world.fences, raw)
	}
	d.world.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: fence handle %d resolves to nothing", texshare.ErrInvalidHandle, raw)
	}
	return &fakeFence{c: c}, nil
}

func (d *fakeDevice) WaitFence(f Fence, timeout time.Duration) error {
	return f.(*fakeFence).c.Wait(1, timeout)
}

func (d *fakeDevice) DestroyFence(f Fence) {}

// signalFence stands in for a GPU-side fence signal, which the manager
// API deliberately does not expose.
func (d *fakeDevice) signalFence(f Fence) {
	c := f.(*fakeFence).c
	_ = c.Signal(c.Value() + 1)
}

func (d *fakeDevice) CreateTimelineSemaphore(initial uint64, handleType texshare.HandleType) (Timeline, error) {
	return &fakeTimeline{c: timeline.New(initial)}, nil
}

func (d *fakeDevice) ExportTimeline(t Timeline, handleType texshare.HandleType) (uint64, error) {
	raw := d.world.mint()
	d.world.mu.Lock()
	d.world.timelines[raw] = t.(*fakeTimeline).c
	d.world.mu.Unlock()
	return raw, nil
}

func (d *fakeDevice) ImportTimeline(raw uint64, handleType texshare.HandleType) (Timeline, error) {
	d.world.mu.Lock()
	c, ok := d.world.timelines[raw]
	if ok {
		delete(d.world.timelines, raw)
	}
	d.world.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: timeline handle %d resolves to nothing", texshare.ErrInvalidHandle, raw)
	}
	return &fakeTimeline{c: c}, nil
}

func (d *fakeDevice) SignalTimeline(t Timeline, value uint64) error {
	return t.(*fakeTimeline).c.Signal(value)
}

func (d *fakeDevice) WaitTimeline(t Timeline, value uint64, timeout time.Duration) error {
	return t.(*fakeTimeline).c.Wait(value, timeout)
}

func (d *fakeDevice) TimelineValue(t Timeline) (uint64, error) {
	return t.(*fakeTimeline).c.Value(), nil
}

func (d *fakeDevice) DestroyTimeline(t Timeline) {}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) closedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.closedRaws)
}

var _ Device = (*fakeDevice)(nil)
