package zonemanager

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_HitReturnsSameProcessor(t *testing.T) {
	reg, err := NewRegistry(sampleZones())
	require.NoError(t, err)
	m := NewManager(reg, Config{CacheSize: 2}, nil)

	p1, err := m.GetProcessorByName("UTC")
	require.NoError(t, err)
	p2, err := m.GetProcessorByName("UTC")
	require.NoError(t, err)
	require.Same(t, p1, p2)
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	reg, err := NewRegistry(sampleZones())
	require.NoError(t, err)
	m := NewManager(reg, Config{CacheSize: 2}, nil)

	utc, err := m.GetProcessorByName("UTC")
	require.NoError(t, err)
	_, err = m.GetProcessorByName("Asia/Kolkata")
	require.NoError(t, err)

	// Touch UTC again so Asia/Kolkata becomes the LRU slot.
	_, err = m.GetProcessorByName("UTC")
	require.NoError(t, err)

	// A third distinct zone must evict Asia/Kolkata's slot, not UTC's.
	_, err = m.GetProcessorByName("America/Los_Angeles")
	require.NoError(t, err)

	utcAgain, err := m.GetProcessorByName("UTC")
	require.NoError(t, err)
	require.Same(t, utc, utcAgain, "UTC's slot should have survived eviction")
}

func TestManager_SingleSlotRebindsOnEveryMiss(t *testing.T) {
	reg, err := NewRegistry(sampleZones())
	require.NoError(t, err)
	m := NewManager(reg, Config{CacheSize: 1}, nil)

	p1, err := m.GetProcessorByName("UTC")
	require.NoError(t, err)
	p2, err := m.GetProcessorByName("Asia/Kolkata")
	require.NoError(t, err)

	// With one slot, the same *Processor value is reused but rebound.
	require.Same(t, p1, p2)
	tr, err := p2.OffsetForEpochSeconds(0)
	require.NoError(t, err)
	require.Equal(t, 330, tr.OffsetMinutes)
}

func TestManager_UnknownZoneReturnsError(t *testing.T) {
	reg, err := NewRegistry(sampleZones())
	require.NoError(t, err)
	m := NewManager(reg, Config{}, nil)

	_, err = m.GetProcessorByName("Nowhere/Nothing")
	require.Error(t, err)
}

func TestManager_DefaultCacheSizeIsOne(t *testing.T) {
	reg, err := NewRegistry(sampleZones())
	require.NoError(t, err)
	m := NewManager(reg, Config{}, nil)
	require.Len(t, m.slots, 1)
}
