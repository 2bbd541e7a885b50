// Package registry implements the per-manager handle registry: a refcount
// table tracking every exported or imported resource reference a manager
// is keeping alive.
//
// The registry owns bookkeeping only. OS-level cleanup (closing a
// duplicated fd, dropping a surface reference) is the manager's job and
// runs when Release reports a count of zero.
package registry

import (
	"fmt"
	"sync"

	"github.com/gogpu/texshare"
)

// Kind classifies a registry entry and is part of its identity.
type Kind uint8

const (
	KindTexture Kind = iota
	KindSemaphore
	KindFence
	KindTimeline
	KindEvent
)

// String returns the kind name used in log output.
func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindSemaphore:
		return "semaphore"
	case KindFence:
		return "fence"
	case KindTimeline:
		return "timeline"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Key identifies a registry entry. Raw handle values come from
// independent OS namespaces (file descriptors, surface ids, shared-event
// ids), so the raw value alone is ambiguous: a surface id can equal an
// event id. The kind disambiguates.
type Key struct {
	Kind Kind
	ID   uint64
}

// String returns the key in kind/id form for log output.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// tombstoneLimit bounds the released-key memory of a table. Past the
// limit the oldest tombstones are dropped, so a release of a very old
// key degrades from [texshare.ErrUseAfterRelease] to
// [texshare.ErrInvalidHandle]. Managers are long-lived; the table must
// not grow with every handle ever released.
const tombstoneLimit = 4096

// Table is a refcount table keyed by (kind, raw handle value).
//
// Entries move through the handle lifecycle: Export creates an entry (or
// increments an existing one), Release decrements, and the entry that
// reaches zero is tombstoned so a second release surfaces
// [texshare.ErrUseAfterRelease] instead of silently succeeding.
//
// Table is safe for concurrent use.
type Table struct {
	mu       sync.Mutex
	entries  map[Key]int
	released map[Key]struct{} // tombstones for use-after-release detection
	graves   []Key            // released keys, oldest first, for eviction
}

// NewTable creates an empty registry table.
func NewTable() *Table {
	return &Table{
		entries:  make(map[Key]int),
		released: make(map[Key]struct{}),
	}
}

// Export registers k (first export) or increments its count, returning
// the new count. Re-exporting a previously released key starts a fresh
// entry: the raw value was returned to the OS and may have been reused.
func (t *Table) Export(k Key) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if refs, ok := t.entries[k]; ok {
		t.entries[k] = refs + 1
		return refs + 1
	}
	delete(t.released, k)
	t.entries[k] = 1
	return 1
}

// Release decrements the count for k and returns the remaining count.
// At zero the entry is tombstoned; the caller then performs the OS-level
// cleanup. Releasing a key that is absent or already at zero is an
// error, never a silent no-op.
func (t *Table) Release(k Key) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	refs, ok := t.entries[k]
	if !ok {
		if _, was := t.released[k]; was {
			return 0, fmt.Errorf("%w: %s handle %d", texshare.ErrUseAfterRelease, k.Kind, k.ID)
		}
		return 0, fmt.Errorf("%w: %s handle %d was never exported", texshare.ErrInvalidHandle, k.Kind, k.ID)
	}
	refs--
	if refs > 0 {
		t.entries[k] = refs
		return refs, nil
	}
	delete(t.entries, k)
	t.bury(k)
	return 0, nil
}

// bury tombstones k and evicts the oldest tombstones past the limit.
// Eviction is approximate: a key re-exported and re-released keeps its
// oldest grave position. Caller holds t.mu.
func (t *Table) bury(k Key) {
	t.released[k] = struct{}{}
	t.graves = append(t.graves, k)
	for len(t.released) > tombstoneLimit && len(t.graves) > 0 {
		old := t.graves[0]
		t.graves = t.graves[1:]
		delete(t.released, old)
	}
}

// Refs returns the current count for k, or zero if it is not registered.
func (t *Table) Refs(k Key) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[k]
}

// Contains reports whether k has a live entry.
func (t *Table) Contains(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[k]
	return ok
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Drain removes and returns every live entry key. Used by manager Close
// to force-release leftovers.
func (t *Table) Drain() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
		t.bury(k)
	}
	t.entries = make(map[Key]int)
	return out
}

// Stats summarizes the table contents for diagnostics.
type Stats struct {
	Textures int
	Sync     int
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Registry[%d textures, %d sync objects]", s.Textures, s.Sync)
}

// Stats returns the current entry counts.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	for k := range t.entries {
		if k.Kind == KindTexture {
			s.Textures++
		} else {
			s.Sync++
		}
	}
	return s
}
