package metal

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/texshare"
	"github.com/gogpu/texshare/timeline"
)

// fakeMachine simulates the kernel surface table: every surface id
// minted by one provider resolves from any provider sharing the machine.
type fakeMachine struct {
	mu       sync.Mutex
	nextSurf uint32
	nextEv   uint64
	surfaces map[uint32]*fakeSurface
	events   map[uint64]*timeline.Counter
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{
		nextSurf: 1000,
		nextEv:   50,
		surfaces: make(map[uint32]*fakeSurface),
		events:   make(map[uint64]*timeline.Counter),
	}
}

type fakeSurface struct {
	id        uint32
	allocSize uint64
	useCount  int
}

func (s *fakeSurface) ID() uint32        { return s.id }
func (s *fakeSurface) AllocSize() uint64 { return s.allocSize }

type fakeEvent struct {
	id uint64
	c  *timeline.Counter
}

func (e *fakeEvent) ID() uint64 { return e.id }

func (e *fakeEvent) Signal(value uint64) error { return e.c.Signal(value) }

func (e *fakeEvent) Wait(value uint64, timeout time.Duration) error {
	return e.c.Wait(value, timeout)
}

func (e *fakeEvent) Value() (uint64, error) { return e.c.Value(), nil }

// fakeProvider implements SurfaceProvider over a fakeMachine.
type fakeProvider struct {
	machine *fakeMachine

	mu       sync.Mutex
	closed   bool
	releases int
}

func newFakeProvider(m *fakeMachine) *fakeProvider {
	return &fakeProvider{machine: m}
}

func (p *fakeProvider) CreateSurface(info SurfaceInfo) (Surface, error) {
	p.machine.mu.Lock()
	defer p.machine.mu.Unlock()
	p.machine.nextSurf++
	s := &fakeSurface{
		id: p.machine.nextSurf,
		// Pad to page size the way the real allocator does; the manager
		// must tolerate allocations larger than the computed size.
		allocSize: pageAlign(info.RowBytes * uint64(info.Height)),
		useCount:  1,
	}
	p.machine.surfaces[s.id] = s
	return s, nil
}

func pageAlign(n uint64) uint64 {
	const page = 4096
	return (n + page - 1) &^ (page - 1)
}

func (p *fakeProvider) LookupSurface(id uint32) (Surface, error) {
	p.machine.mu.Lock()
	defer p.machine.mu.Unlock()
	s, ok := p.machine.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: surface id %d unknown to this machine", texshare.ErrInvalidHandle, id)
	}
	s.useCount++
	return s, nil
}

func (p *fakeProvider) ReleaseSurface(s Surface) {
	fs := s.(*fakeSurface)
	p.machine.mu.Lock()
	fs.useCount--
	if fs.useCount == 0 {
		delete(p.machine.surfaces, fs.id)
	}
	p.machine.mu.Unlock()

	p.mu.Lock()
	p.releases++
	p.mu.Unlock()
}

func (p *fakeProvider) NewSharedEvent(initial uint64) (SharedEvent, error) {
	p.machine.mu.Lock()
	defer p.machine.mu.Unlock()
	p.machine.nextEv++
	c := timeline.New(initial)
	p.machine.events[p.machine.nextEv] = c
	return &fakeEvent{id: p.machine.nextEv, c: c}, nil
}

func (p *fakeProvider) LookupSharedEvent(id uint64) (SharedEvent, error) {
	p.machine.mu.Lock()
	defer p.machine.mu.Unlock()
	c, ok := p.machine.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event id %d unknown to this machine", texshare.ErrInvalidHandle, id)
	}
	return &fakeEvent{id: id, c: c}, nil
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

var _ SurfaceProvider = (*fakeProvider)(nil)
