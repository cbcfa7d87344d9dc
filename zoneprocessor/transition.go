// Package zoneprocessor implements the transition finder and zone
// processor described in spec.md §4.3-§4.4: given a zoneinfo.ZoneInfo, it
// enumerates the committed UTC-offset transitions active in and around a
// given year, and answers offset/disambiguation queries against them.
//
// The finder's year-at-a-time, running-offset approach is grounded in the
// teacher's internal/tzir package (its activeRules/activeOffset loop), but
// completes what tzir left as TODOs: era-boundary transitions, the three
// AT-time modifiers (w/s/u), and gap/overlap resolution.
package zoneprocessor

import (
	"fmt"
	"sort"

	"github.com/go-acetime/acetime"
	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// ErrBufferOverflow is returned when a single zone/year combination would
// require more concurrently-active transitions than maxTransitions. It
// indicates table corruption or a misconfigured capacity, never ordinary
// zone behavior (spec.md §7). It is an alias for acetime.ErrBufferOverflow
// so callers can match it with errors.Is from either package.
var ErrBufferOverflow = acetime.ErrBufferOverflow

// maxTransitions bounds the number of transitions the finder will commit
// for a single query year. The real TZDB never exceeds 7 in any year
// 1980-2200 (spec.md §4.3); this is set generously above that to absorb
// hand-authored test fixtures without being unbounded.
const maxTransitions = 32

// Transition is a single committed instant at which (offset, delta, abbrev)
// changes. Unlike zoneinfo.ZoneRule/ZoneEra, Transition is computed, not
// stored in any table.
type Transition struct {
	StartEpochSeconds calendar.EpochSeconds
	OffsetMinutes     int
	DeltaMinutes      int
	Abbrev            string

	// letter is retained for diagnostics and tests; not part of the
	// public contract spec.md defines.
	letter string
}

// kind distinguishes a rule-driven candidate from an era-boundary candidate,
// used only to break ties in sort order (spec.md §4.3 step 3: "rules
// precede era boundaries").
type candidateKind int

const (
	kindRule candidateKind = iota
	kindEraBoundary
)

type candidate struct {
	kind  candidateKind
	era   *zoneinfo.ZoneEra
	rule  *zoneinfo.ZoneRule // nil for era boundaries and fixed-delta eras
	year  int16              // the calendar year the rule activation falls in (may be queryYear-1)
	naive calendar.EpochSeconds
}

// naiveInstant returns the epoch-seconds value of (year, month, day,
// atMinutes) as if the wall-clock fields were UTC, with no offset applied.
// atMinutes may exceed 1440 (up to 1500 for the "25h"/end-of-day
// convention); the arithmetic naturally rolls that into the following day.
func naiveInstant(year int16, month, day uint8, atMinutes int) calendar.EpochSeconds {
	days := calendar.ToEpochDays(year, month, day)
	return calendar.EpochSeconds(int64(days)*86400 + int64(atMinutes)*60)
}

// resolveModifier converts a naive (as-if-UTC) instant into a true UTC
// instant given the modifier and the (offset, delta) in force just before
// the transition, per spec.md §4.3 step 3.
func resolveModifier(naive calendar.EpochSeconds, modifier zoneinfo.TimeModifier, offsetMinutesBefore, deltaMinutesBefore int) calendar.EpochSeconds {
	var shiftMinutes int
	switch modifier {
	case zoneinfo.Wall:
		shiftMinutes = offsetMinutesBefore + deltaMinutesBefore
	case zoneinfo.Standard:
		shiftMinutes = offsetMinutesBefore
	case zoneinfo.UTC:
		shiftMinutes = 0
	}
	return naive - calendar.EpochSeconds(shiftMinutes*60)
}

// eraBoundary is the resolved UTC instant at which era ends and the next
// era (if any) begins, expressed as tentative candidate state. The last era
// of a zone has no boundary; callers must check ZoneEra.IsFinal first.
//
// Per DESIGN.md, era UNTIL times are resolved using the era's own base
// offset and a zero delta, which is exact for every era boundary in this
// system's baked tables (no era changes mid-DST); see the Open Question
// entry there for the general-case limitation.
func eraBoundary(era zoneinfo.ZoneEra) calendar.EpochSeconds {
	naive := naiveInstant(era.UntilYear, era.UntilMonth, era.UntilDay, era.UntilAtMinutes())
	return resolveModifier(naive, era.UntilTimeModifier, era.OffsetMinutes(), 0)
}

// activeEras returns the indices, in ascending order, of the eras that
// overlap the closed-open three calendar year window [year-1, year+2).
// Callers obtain each era's start instant separately via eraStart.
func activeEras(zone *zoneinfo.ZoneInfo, year int16) []int {
	var indices []int
	yearStart := naiveInstant(year-1, 1, 1, 0)
	yearEnd := naiveInstant(year+2, 1, 1, 0)

	prevUntil := calendar.EpochSeconds(minEpochSeconds)
	for i, era := range zone.Eras {
		var thisUntil calendar.EpochSeconds
		if era.IsFinal() {
			thisUntil = calendar.EpochSeconds(maxEpochSeconds)
		} else {
			thisUntil = eraBoundary(era)
		}
		if prevUntil < yearEnd && thisUntil > yearStart {
			indices = append(indices, i)
		}
		prevUntil = thisUntil
	}
	return indices
}

const (
	minEpochSeconds = -1 << 31
	maxEpochSeconds = 1<<31 - 1
)

// eraStart returns the instant era i begins: the previous era's boundary,
// or minEpochSeconds for the zone's first era.
func eraStart(zone *zoneinfo.ZoneInfo, i int) calendar.EpochSeconds {
	if i == 0 {
		return calendar.EpochSeconds(minEpochSeconds)
	}
	return eraBoundary(zone.Eras[i-1])
}

// FindTransitions enumerates the committed transitions needed to resolve
// queries anywhere in the three calendar years year-1, year and year+1 for
// zone, per spec.md §4.3's "current year ± 1" memoization window. The
// result is sorted strictly ascending by StartEpochSeconds and includes one
// transition carried over from before the window begins, so that a query at
// the very start of year-1 resolves without reaching further back.
func FindTransitions(zone *zoneinfo.ZoneInfo, year int16) ([]Transition, error) {
	eraIdxs := activeEras(zone, year)
	if len(eraIdxs) == 0 {
		return nil, fmt.Errorf("zoneprocessor: no era active in year %d for zone %q", year, zone.Name)
	}

	var candidates []candidate
	for _, idx := range eraIdxs {
		era := &zone.Eras[idx]
		start := eraStart(zone, idx)

		if era.Policy == nil {
			// Fixed delta (or none): the only candidate is the era boundary
			// itself, unless this is the zone's first era (which has none).
			if start > calendar.EpochSeconds(minEpochSeconds) {
				candidates = append(candidates, candidate{kind: kindEraBoundary, era: era, year: year, naive: start})
			}
			continue
		}

		for _, y := range []int16{year - 1, year, year + 1} {
			for ri := range era.Policy.Rules {
				r := &era.Policy.Rules[ri]
				if !r.AppliesInYear(y) {
					continue
				}
				day := calendar.ResolveOnDay(y, r.InMonth, r.OnDayOfWeek, r.OnDayOfMonth)
				naive := naiveInstant(y, r.InMonth, day, r.AtMinutes())
				candidates = append(candidates, candidate{kind: kindRule, era: era, rule: r, year: y, naive: naive})
			}
		}
		if start > calendar.EpochSeconds(minEpochSeconds) {
			candidates = append(candidates, candidate{kind: kindEraBoundary, era: era, year: year, naive: start})
		}
	}

	if len(candidates) > maxTransitions {
		return nil, ErrBufferOverflow
	}

	// Stable order by tentative (naive, pre-modifier-resolution) instant;
	// on ties rules precede era boundaries (spec.md §4.3 step 3).
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].naive != candidates[j].naive {
			return candidates[i].naive < candidates[j].naive
		}
		return candidates[i].kind < candidates[j].kind
	})

	transitions, err := commit(zone, year, candidates)
	if err != nil {
		return nil, err
	}
	if len(transitions) > maxTransitions {
		return nil, ErrBufferOverflow
	}
	return transitions, nil
}

// commit walks candidates in ascending instant order, resolving each AT
// field to a true UTC instant using the (offset, delta) committed by the
// previous transition, and renders the abbreviation.
func commit(zone *zoneinfo.ZoneInfo, year int16, candidates []candidate) ([]Transition, error) {
	// Initial state: the zone's very first era, before any rule has ever
	// applied. Fixed-delta eras start at their own fixed delta; policy
	// eras start at delta 0 (standard time), matching the source's
	// "a zone with a named rule set starts with standard time by default".
	offset := zone.Eras[0].OffsetMinutes()
	delta := 0
	if zone.Eras[0].Policy == nil {
		delta = zone.Eras[0].FixedDeltaMinutes()
	}
	letter := ""

	var out []Transition
	for _, c := range candidates {
		var modifier zoneinfo.TimeModifier
		var naive calendar.EpochSeconds
		switch c.kind {
		case kindRule:
			modifier = c.rule.AtTimeModifier
			naive = naiveInstant(c.year, c.rule.InMonth,
				calendar.ResolveOnDay(c.year, c.rule.InMonth, c.rule.OnDayOfWeek, c.rule.OnDayOfMonth),
				c.rule.AtMinutes())
		case kindEraBoundary:
			modifier = zoneinfo.UTC
			naive = c.naive
		}

		instant := resolveModifier(naive, modifier, offset, delta)

		offset = c.era.OffsetMinutes()
		if c.kind == kindRule {
			delta = c.rule.DeltaMinutes()
			letter = c.rule.Letter
		} else if c.era.Policy == nil {
			delta = c.era.FixedDeltaMinutes()
			letter = ""
		}
		// else: era-boundary into a policy era inherits whatever
		// delta/letter the most recent rule candidate already set; if no
		// rule candidate preceded it this year, it remains the carried
		// state (0, "").

		abbrev, err := zoneinfo.RenderFormat(c.era.Format, letter, offset)
		if err != nil {
			return nil, fmt.Errorf("zoneprocessor: rendering format for zone %q: %w", zone.Name, err)
		}

		out = append(out, Transition{
			StartEpochSeconds: instant,
			OffsetMinutes:     offset,
			DeltaMinutes:      delta,
			Abbrev:            abbrev,
			letter:            letter,
		})
	}

	// The result must start with whichever transition is in force at the
	// beginning of the three-year memoization window (year-1), found among
	// out, or, if nothing ever transitioned before it, the zone's implicit
	// initial state, followed by every later transition in out
	// (spec.md §4.3's "current year ± 1" carry-over).
	windowStart := resolveModifier(naiveInstant(year-1, 1, 1, 0), zoneinfo.UTC, 0, 0)
	carriedIdx := -1
	for i, t := range out {
		if t.StartEpochSeconds > windowStart {
			break
		}
		carriedIdx = i
	}

	var result []Transition
	if carriedIdx >= 0 {
		result = append(result, out[carriedIdx])
	} else {
		offset := zone.Eras[0].OffsetMinutes()
		delta := 0
		if zone.Eras[0].Policy == nil {
			delta = zone.Eras[0].FixedDeltaMinutes()
		}
		abbrev, err := zoneinfo.RenderFormat(zone.Eras[0].Format, "", offset)
		if err != nil {
			return nil, err
		}
		result = append(result, Transition{
			StartEpochSeconds: calendar.EpochSeconds(minEpochSeconds),
			OffsetMinutes:     offset,
			DeltaMinutes:      delta,
			Abbrev:            abbrev,
		})
	}
	result = append(result, out[carriedIdx+1:]...)
	return result, nil
}
