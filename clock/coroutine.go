package clock

import "context"

// CoroutineSyncSource is the cooperative-mode sync provider (spec.md §5's
// "Cooperative coroutine mode"): SendRequest starts a request without
// blocking, and the caller polls IsResponseReady/ReadResponse across
// however many subsequent loop iterations the request takes to settle.
//
// This interface and Clock's SendRequest/PollResponse below are grounded
// in the source's SystemClockSyncLoop.h state machine (kSyncStatusSent,
// kSyncStatusOk, kSyncStatusTimedOut), not SystemTimeLoop.h, which
// Design Notes §9 flags as carrying a typo'd comparison — the coroutine
// path modeled here never reproduces that expression.
type CoroutineSyncSource interface {
	// SendRequest begins an asynchronous time request. Implementations
	// must not block past their own internal timeout bookkeeping; Clock
	// enforces no timeout of its own in coroutine mode, matching
	// spec.md §5 ("cancellation is observational: the caller simply stops
	// polling").
	SendRequest(ctx context.Context)
	// IsResponseReady reports whether ReadResponse would return promptly.
	IsResponseReady() bool
	// ReadResponse returns the previously requested epoch seconds, or 0
	// to signal failure. Called at most once per SendRequest.
	ReadResponse() int32
}

// SendRequest begins a cooperative-mode sync request if one is not already
// pending. It is a no-op if no Coroutine collaborator was configured.
func (c *Clock) SendRequest(ctx context.Context) {
	if c.coroutine == nil || c.requestPending {
		return
	}
	c.coroutine.SendRequest(ctx)
	c.requestPending = true
}

// PollResponse checks whether a pending SendRequest has completed; if so,
// it applies the result exactly as Tick's loop-mode path would and returns
// true. It returns false if no request is pending or the response is not
// yet ready, in which case the caller should yield and poll again later
// (spec.md §5: "suspension is modeled as the caller yields between poll
// attempts").
func (c *Clock) PollResponse() bool {
	if !c.requestPending || !c.coroutine.IsResponseReady() {
		return false
	}
	c.requestPending = false
	c.handleSyncResult(c.coroutine.ReadResponse(), c.monotonic.Millis())
	return true
}

// RequestPending reports whether a SendRequest is awaiting PollResponse.
func (c *Clock) RequestPending() bool {
	return c.requestPending
}
