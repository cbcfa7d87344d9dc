// Package clock implements the system clock core described in spec.md
// §4.6: a monotonic wall-clock that derives epoch seconds from a cached
// (base millis, base epoch seconds) pair, with periodic resynchronization
// against an external reference and exponential-backoff retry on failure.
//
// The core never calls a host timer directly. Following Design Notes §9
// ("Global millis() source is modeled as an injected clock capability"),
// every collaborator — the monotonic millisecond counter, the sync
// provider, the backup keeper — is an interface the caller supplies,
// mirroring the teacher's preference for injected io.Reader/http.Client
// collaborators over package-level globals.
package clock

import (
	"context"
	"log/slog"
	"time"
)

// Millis counts milliseconds since an arbitrary, wrapping reference point,
// mirroring the embedded source's 32-bit millis() counter. Subtraction
// between two Millis values is correct across exactly one wraparound
// because the underlying type is unsigned; Tick's heartbeat re-anchors the
// (base millis, base epoch seconds) pair often enough that a second wrap
// before the next heartbeat never occurs at any sane HeartbeatPeriodMillis.
type Millis uint32

// MonotonicSource supplies the free-running millisecond counter the clock
// measures elapsed time against.
type MonotonicSource interface {
	Millis() Millis
}

// MonotonicSourceFunc adapts a plain function to MonotonicSource.
type MonotonicSourceFunc func() Millis

func (f MonotonicSourceFunc) Millis() Millis { return f() }

// SyncSource is the loop-mode external time reference (spec.md §5's "Loop
// mode"): GetNow blocks (up to the caller-enforced ctx deadline) and
// returns epoch seconds, or 0 to signal failure.
type SyncSource interface {
	GetNow(ctx context.Context) int32
}

// Collaborators bundles Clock's optional capabilities, matching Design
// Notes §9's "capability set {get_now, set_now?, send_request?,
// poll_response?}": a Clock needs none of these to exist, but is inert
// (GetNow always 0) until at least Sync or an explicit SetNow call
// provides a reference.
type Collaborators struct {
	// Sync is the loop-mode provider driven by Tick. Nil disables
	// automatic resynchronization; callers must use SetNow directly.
	Sync SyncSource
	// Coroutine is the cooperative-mode provider driven by
	// SendRequest/PollResponse (see coroutine.go). A Clock may use either
	// or both mode's providers; they share the same backoff state.
	Coroutine CoroutineSyncSource
	// Backup persists epoch seconds across resets. Nil disables backup.
	Backup BackupKeeper
}

// Config holds Clock's tunables (spec.md §6's configuration option table).
// The zero value falls back to the documented defaults.
type Config struct {
	SyncPeriodSeconds        int32 // default 3600
	InitialSyncPeriodSeconds int32 // default 5
	RequestTimeoutMillis     int32 // default 1000
	HeartbeatPeriodMillis    int32 // default 5000
}

func (c Config) syncPeriodSeconds() int32 {
	if c.SyncPeriodSeconds <= 0 {
		return 3600
	}
	return c.SyncPeriodSeconds
}

func (c Config) initialSyncPeriodSeconds() int32 {
	if c.InitialSyncPeriodSeconds <= 0 {
		return 5
	}
	return c.InitialSyncPeriodSeconds
}

func (c Config) requestTimeoutMillis() int32 {
	if c.RequestTimeoutMillis <= 0 {
		return 1000
	}
	return c.RequestTimeoutMillis
}

func (c Config) heartbeatPeriodMillis() int32 {
	if c.HeartbeatPeriodMillis <= 0 {
		return 5000
	}
	return c.HeartbeatPeriodMillis
}

// Clock is the system clock core. It is not safe for concurrent use from
// multiple goroutines without an external lock (spec.md §5: "in a
// multithreaded host it requires an external lock"), matching the single-
// threaded cooperative scheduling model the source assumes.
type Clock struct {
	monotonic MonotonicSource
	sync      SyncSource
	coroutine CoroutineSyncSource
	backup    BackupKeeper
	cfg       Config
	log       *slog.Logger

	isSet            bool
	baseMillis       Millis
	baseEpochSeconds int32

	lastHeartbeatMillis        Millis
	lastSyncAttemptMillis      Millis
	currentRetryIntervalSeconds int32

	requestPending bool
}

// New returns a Clock driven by monotonic, with the optional collaborators
// in collab. log, if nil, defaults to slog.Default(), matching the same
// "accept a capability, default to a no-op" shape zoneprocessor.NewProcessor
// uses.
func New(monotonic MonotonicSource, collab Collaborators, cfg Config, log *slog.Logger) *Clock {
	if log == nil {
		log = slog.Default()
	}
	return &Clock{
		monotonic:                   monotonic,
		sync:                        collab.Sync,
		coroutine:                   collab.Coroutine,
		backup:                      collab.Backup,
		cfg:                         cfg,
		log:                         log,
		currentRetryIntervalSeconds: cfg.initialSyncPeriodSeconds(),
	}
}

// GetNow returns the clock's current estimate of epoch seconds, or 0 if
// the clock has never been set (spec.md §7: "only get_now() == 0 when
// fully uninitialized is observable").
func (c *Clock) GetNow() int32 {
	if !c.isSet {
		return 0
	}
	elapsed := c.monotonic.Millis() - c.baseMillis // unsigned: wraps correctly
	return c.baseEpochSeconds + int32(elapsed/1000)
}

// SetNow explicitly sets the clock to epochSeconds, anchored to the current
// monotonic reading, and writes through to the backup keeper if one is
// configured.
func (c *Clock) SetNow(epochSeconds int32) {
	c.rebaseTo(epochSeconds, c.monotonic.Millis())
	if c.backup != nil {
		if err := c.backup.WriteBackup(EncodeRecord(Record{Version: recordVersion, EpochSeconds: epochSeconds})); err != nil {
			c.log.Debug("clock: backup write failed", "error", err)
		}
	}
}

// RestoreFromBackup attempts to seed the clock from the backup keeper,
// returning false if no keeper is configured, the read fails, or the
// stored record fails its CRC check. A successful restore does not write
// back to the keeper (the record it just read is already there).
func (c *Clock) RestoreFromBackup() bool {
	if c.backup == nil {
		return false
	}
	data, err := c.backup.ReadBackup()
	if err != nil {
		c.log.Debug("clock: backup read failed", "error", err)
		return false
	}
	record, err := DecodeRecord(data)
	if err != nil {
		c.log.Debug("clock: backup record invalid", "error", err)
		return false
	}
	c.rebaseTo(record.EpochSeconds, c.monotonic.Millis())
	return true
}

func (c *Clock) rebaseTo(epochSeconds int32, at Millis) {
	c.baseEpochSeconds = epochSeconds
	c.baseMillis = at
	c.isSet = true
	c.lastHeartbeatMillis = at
}

// Tick is the loop-mode entry point (spec.md §5's "Loop mode"): the host
// calls it periodically. It performs the anti-wrap heartbeat re-anchor and,
// when due, a synchronous call into the Sync provider bounded by
// RequestTimeoutMillis.
func (c *Clock) Tick(ctx context.Context) {
	now := c.monotonic.Millis()
	c.heartbeat(now)

	if c.sync == nil {
		return
	}
	if now-c.lastSyncAttemptMillis < Millis(c.currentRetryIntervalSeconds)*1000 {
		return
	}
	c.lastSyncAttemptMillis = now

	timeout := time.Duration(c.cfg.requestTimeoutMillis()) * time.Millisecond
	syncCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	epochSeconds := c.sync.GetNow(syncCtx)
	c.handleSyncResult(epochSeconds, now)
}

// heartbeat re-anchors (baseMillis, baseEpochSeconds) to the clock's own
// current estimate every HeartbeatPeriodMillis, per spec.md §4.6 step 4:
// "prevent the internal counter from falling behind when millis() wraps."
// It is a no-op before the clock has ever been set.
func (c *Clock) heartbeat(now Millis) {
	if !c.isSet {
		return
	}
	if now-c.lastHeartbeatMillis < Millis(c.cfg.heartbeatPeriodMillis()) {
		return
	}
	c.baseEpochSeconds = c.GetNow()
	c.baseMillis = now
	c.lastHeartbeatMillis = now
}

// handleSyncResult applies a sync attempt's outcome, shared by Tick's
// loop-mode path and PollResponse's coroutine-mode path.
func (c *Clock) handleSyncResult(epochSeconds int32, now Millis) {
	if epochSeconds == 0 {
		c.onSyncFailure()
		return
	}
	c.onSyncSuccess(epochSeconds, now)
}

func (c *Clock) onSyncSuccess(epochSeconds int32, now Millis) {
	c.rebaseTo(epochSeconds, now)
	c.currentRetryIntervalSeconds = c.cfg.syncPeriodSeconds()
	if c.backup != nil {
		if err := c.backup.WriteBackup(EncodeRecord(Record{Version: recordVersion, EpochSeconds: epochSeconds})); err != nil {
			c.log.Debug("clock: backup write failed", "error", err)
		}
	}
	c.log.Debug("clock: sync succeeded", "epochSeconds", epochSeconds, "nextRetrySeconds", c.currentRetryIntervalSeconds)
}

func (c *Clock) onSyncFailure() {
	c.currentRetryIntervalSeconds *= 2
	if max := c.cfg.syncPeriodSeconds(); c.currentRetryIntervalSeconds > max {
		c.currentRetryIntervalSeconds = max
	}
	c.log.Debug("clock: sync failed", "nextRetrySeconds", c.currentRetryIntervalSeconds)
}
