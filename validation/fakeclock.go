// Package validation provides test-only infrastructure for exercising the
// system clock and zone processor deterministically: an injectable,
// manually-advanced monotonic source and a comparable validation-item
// format for cross-checking offset/delta/abbreviation results. It mirrors
// the source's testing/FakeTimeKeeper.h and testing/DstValidationType.h,
// which spec.md §2 row G ("Testing harness hooks") names as a core
// responsibility without spelling out its shape.
package validation

import (
	"context"

	"github.com/go-acetime/acetime/clock"
)

// FakeClockSource is a clock.MonotonicSource and clock.SyncSource whose
// value never advances except when the test calls Advance or Set. Using it
// in place of a real timer makes clock.Clock's backoff and heartbeat
// behavior exactly reproducible, matching the source's FakeTimeKeeper used
// throughout its own test suite.
type FakeClockSource struct {
	millis clock.Millis

	// syncValue is returned by GetNow on every sync attempt; syncFails,
	// when true, makes GetNow return 0 (failure) instead. Neither is
	// cleared by GetNow; only the Queue methods change them.
	syncValue int32
	syncFails bool
}

// NewFakeClockSource returns a FakeClockSource starting at millis 0.
func NewFakeClockSource() *FakeClockSource {
	return &FakeClockSource{}
}

// Millis implements clock.MonotonicSource.
func (f *FakeClockSource) Millis() clock.Millis {
	return f.millis
}

// Advance moves the fake clock forward by d milliseconds. d must be
// non-negative; time in this harness never runs backward.
func (f *FakeClockSource) Advance(d clock.Millis) {
	f.millis += d
}

// Set pins the fake clock to an absolute millis value, for tests that need
// to land on a specific wraparound boundary.
func (f *FakeClockSource) Set(m clock.Millis) {
	f.millis = m
}

// QueueSyncSuccess arranges for GetNow to return epochSeconds until another
// outcome is queued.
func (f *FakeClockSource) QueueSyncSuccess(epochSeconds int32) {
	f.syncValue = epochSeconds
	f.syncFails = false
}

// QueueSyncFailure arranges for GetNow to return 0 until another outcome is
// queued.
func (f *FakeClockSource) QueueSyncFailure() {
	f.syncFails = true
}

// GetNow implements clock.SyncSource using whichever outcome was last
// queued; it does not consume the queued value, so repeated calls (e.g.
// across several Tick invocations before the test reconfigures it) keep
// returning the same outcome, mirroring a sync provider that is healthy or
// down for a stretch of time rather than for exactly one call.
func (f *FakeClockSource) GetNow(_ context.Context) int32 {
	if f.syncFails {
		return 0
	}
	return f.syncValue
}
