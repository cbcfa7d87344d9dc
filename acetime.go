// Package acetime is the root of an embedded-friendly date/time library:
// given an instant or a local civil date-time and a named IANA time zone,
// it resolves the UTC offset, DST delta and abbreviation in force, against
// tables small enough for a microcontroller.
//
// The bulk of the implementation lives in subpackages — calendar (epoch
// arithmetic), zoneinfo (the zone schema), zoneprocessor (the transition
// finder and per-zone query engine), zonemanager (registry and processor
// cache), clock (the system clock core) and validation (test harness
// support). This file defines only the sentinel errors shared across all of
// them, following the teacher's preference for values over panics.
package acetime

import "errors"

// ErrInvalidDate is returned when a (year, month, day) triple is not a
// valid proleptic Gregorian date, or lies outside a zone's configured
// [StartYear, UntilYear) range.
var ErrInvalidDate = errors.New("acetime: invalid date")

// ErrUnknownZone is returned when a zone name or ID is not present in a
// zonemanager.Registry.
var ErrUnknownZone = errors.New("acetime: unknown zone")

// ErrBufferOverflow is returned when a zone/year combination requires more
// concurrently active transitions than the transition finder's fixed
// capacity allows. It indicates table corruption or a misconfigured
// capacity, never ordinary zone behavior, and is the one error kind a
// well-formed deployment may treat as fatal (spec's error-handling design).
var ErrBufferOverflow = errors.New("acetime: transition buffer overflow")
