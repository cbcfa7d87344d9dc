// Package zonemanager implements the zone registry and the bounded LRU
// cache of zoneprocessor.Processor slots described in spec.md §4.5: name
// and ID lookup over a sorted registry, and a small array-based cache that
// rebinds its least-recently-used slot on a miss rather than allocating a
// new processor per query.
package zonemanager

import (
	"fmt"
	"sort"

	"github.com/go-acetime/acetime"
	"github.com/go-acetime/acetime/zoneinfo"
)

// Registry is a static, read-only set of zones sorted ascending by
// zoneinfo.ZoneID(name), the binary-search key spec.md §3/§4.5 specifies.
type Registry struct {
	zones []*zoneinfo.ZoneInfo
}

// NewRegistry builds a Registry from zones, sorting a defensive copy by
// zone ID. It returns an error if two zones share a zone ID, violating the
// registry's uniqueness invariant (spec.md §3).
func NewRegistry(zones []*zoneinfo.ZoneInfo) (*Registry, error) {
	sorted := make([]*zoneinfo.ZoneInfo, len(zones))
	copy(sorted, zones)
	sort.Slice(sorted, func(i, j int) bool {
		return zoneinfo.ZoneID(sorted[i].Name) < zoneinfo.ZoneID(sorted[j].Name)
	})
	for i := 1; i < len(sorted); i++ {
		if zoneinfo.ZoneID(sorted[i-1].Name) == zoneinfo.ZoneID(sorted[i].Name) {
			return nil, fmt.Errorf("zonemanager: zone ID collision between %q and %q",
				sorted[i-1].Name, sorted[i].Name)
		}
	}
	return &Registry{zones: sorted}, nil
}

// FindByID returns the zone whose canonical name hashes to id, via binary
// search over the sorted registry.
func (r *Registry) FindByID(id uint32) (*zoneinfo.ZoneInfo, error) {
	idx := sort.Search(len(r.zones), func(i int) bool {
		return zoneinfo.ZoneID(r.zones[i].Name) >= id
	})
	if idx < len(r.zones) && zoneinfo.ZoneID(r.zones[idx].Name) == id {
		return r.zones[idx], nil
	}
	return nil, fmt.Errorf("zonemanager: zone id %d: %w", id, acetime.ErrUnknownZone)
}

// FindByName hashes name to a zone ID and performs the same binary search
// as FindByID, then confirms the match's name is an exact byte match (a
// defense against returning the wrong zone on the astronomically unlikely
// event of a hash collision between names that are not both in the
// registry, since NewRegistry only rejects collisions it actually sees).
func (r *Registry) FindByName(name string) (*zoneinfo.ZoneInfo, error) {
	zone, err := r.FindByID(zoneinfo.ZoneID(name))
	if err != nil {
		return nil, fmt.Errorf("zonemanager: zone %q: %w", name, acetime.ErrUnknownZone)
	}
	if zone.Name != name {
		return nil, fmt.Errorf("zonemanager: zone %q: %w", name, acetime.ErrUnknownZone)
	}
	return zone, nil
}

// Len returns the number of zones in the registry.
func (r *Registry) Len() int {
	return len(r.zones)
}
