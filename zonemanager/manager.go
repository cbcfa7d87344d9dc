package zonemanager

import (
	"log/slog"

	"github.com/go-acetime/acetime/zoneinfo"
	"github.com/go-acetime/acetime/zoneprocessor"
)

// Config holds Manager's tunables. The zero value is usable: CacheSize 0
// means a single processor slot, per the teacher's Client/DefaultClient
// "zero value is ready to use" convention (tzdb/ianadist).
type Config struct {
	// CacheSize is the number of zoneprocessor.Processor slots kept
	// concurrently bound. Spec.md §6 recommends 1-4. Zero means 1.
	CacheSize int
}

func (c Config) cacheSize() int {
	if c.CacheSize <= 0 {
		return 1
	}
	return c.CacheSize
}

// slot is one array element of Manager's LRU cache. Per spec.md §9, the
// cache is "an array with integer generation counters, not a linked
// structure": eviction picks the slot with the lowest generation rather
// than walking a doubly-linked list.
type slot struct {
	zone *zoneinfo.ZoneInfo
	proc *zoneprocessor.Processor
	gen  uint64
	used bool
}

// Manager owns the Registry and a bounded cache of zoneprocessor.Processor
// instances, renting the processor bound to a given zone on request and
// evicting the least-recently-used binding on a cache miss (spec.md §4.5).
type Manager struct {
	registry *Registry
	slots    []slot
	clock    uint64
}

// NewManager returns a Manager backed by registry, with cfg.cacheSize()
// processor slots. log, if non-nil, is passed through to every processor
// for diagnostic output; nil means zoneprocessor's own default (slog.Default()).
func NewManager(registry *Registry, cfg Config, log *slog.Logger) *Manager {
	slots := make([]slot, cfg.cacheSize())
	for i := range slots {
		slots[i].proc = zoneprocessor.NewProcessor(log)
	}
	return &Manager{registry: registry, slots: slots}
}

// Registry returns the manager's backing registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// GetProcessorByName resolves name in the registry and returns a processor
// bound to it, per spec.md §4.5's get_processor contract.
func (m *Manager) GetProcessorByName(name string) (*zoneprocessor.Processor, error) {
	zone, err := m.registry.FindByName(name)
	if err != nil {
		return nil, err
	}
	return m.getProcessor(zone), nil
}

// GetProcessorByID resolves id in the registry and returns a processor
// bound to it.
func (m *Manager) GetProcessorByID(id uint32) (*zoneprocessor.Processor, error) {
	zone, err := m.registry.FindByID(id)
	if err != nil {
		return nil, err
	}
	return m.getProcessor(zone), nil
}

// getProcessor implements the hit/miss logic of spec.md §4.5: on a hit it
// moves the bound slot to MRU and returns it; on a miss it evicts the LRU
// slot, rebinds it to zone, and returns it. Rebinding resets the
// processor's memoized transitions (Processor.Bind calls Reset), so a
// caller never observes transitions left over from the slot's previous
// zone (spec.md §5: "rebinding is atomic with respect to future queries").
func (m *Manager) getProcessor(zone *zoneinfo.ZoneInfo) *zoneprocessor.Processor {
	m.clock++

	for i := range m.slots {
		if m.slots[i].used && m.slots[i].zone == zone {
			m.slots[i].gen = m.clock
			return m.slots[i].proc
		}
	}

	lru := 0
	for i := range m.slots {
		if !m.slots[i].used {
			lru = i
			break
		}
		if m.slots[i].gen < m.slots[lru].gen {
			lru = i
		}
	}

	// Bind only fails if zone is nil or has no eras, neither of which is
	// possible for a zone that just came out of the registry.
	_ = m.slots[lru].proc.Bind(zone)
	m.slots[lru].zone = zone
	m.slots[lru].used = true
	m.slots[lru].gen = m.clock
	return m.slots[lru].proc
}
