package zoneprocessor

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-acetime/acetime"
	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// Disambiguation classifies how a local (wall-clock) date/time maps onto
// UTC instants, per spec.md §4.4: a local time can name zero instants (a
// DST-forward Gap), exactly one (Unique), or two (a DST-back Overlap).
type Disambiguation int

const (
	Unique Disambiguation = iota
	Gap
	OverlapEarlier
	OverlapLater
)

func (d Disambiguation) String() string {
	switch d {
	case Unique:
		return "unique"
	case Gap:
		return "gap"
	case OverlapEarlier:
		return "overlap-earlier"
	case OverlapLater:
		return "overlap-later"
	default:
		return fmt.Sprintf("Disambiguation(%d)", int(d))
	}
}

// Match is the result of resolving a local date/time against a zone's
// transitions. For Unique it carries the single applicable Transition; for
// Gap it carries the transitions before and after the gap (neither of which
// actually contains the requested local time); for the two Overlap cases it
// carries both candidate transitions, with Kind naming which one the caller
// asked for via fold.
type Match struct {
	Kind Disambiguation

	// Before/After are populated for Gap: the transition whose offset was
	// in force immediately before the gap, and the one taking effect
	// immediately after it. For both Overlap kinds they hold the earlier
	// and the later of the two candidate transitions.
	Before, After Transition

	// Selected is populated for Unique and both Overlap kinds: the
	// transition whose offset applies to the requested instant.
	Selected Transition
}

// Processor resolves offset and disambiguation queries for a single bound
// zone, memoizing the transitions for the most recently queried year and
// its immediate neighbors (spec.md §4.4: "current year ± 1").
type Processor struct {
	zone *zoneinfo.ZoneInfo
	log  *slog.Logger

	cachedYear        int16
	cachedTransitions []Transition // sorted ascending by StartEpochSeconds
}

// NewProcessor returns a Processor with no zone bound; callers must call
// Bind before issuing queries.
func NewProcessor(log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{log: log}
}

// Bind attaches zone to the processor and clears any cached transitions.
// zone must not be nil and must have at least one era.
func (p *Processor) Bind(zone *zoneinfo.ZoneInfo) error {
	if zone == nil || len(zone.Eras) == 0 {
		return fmt.Errorf("zoneprocessor: Bind requires a zone with at least one era")
	}
	p.zone = zone
	p.Reset()
	return nil
}

// Reset drops the processor's memoized transitions, forcing the next query
// to recompute them. Callers bind the same processor slot to a different
// zone (see zonemanager's LRU cache) by calling Bind, which calls Reset
// itself; Reset is exposed separately for tests and for callers that want
// to force recomputation after a table reload without rebinding.
func (p *Processor) Reset() {
	p.cachedYear = 0
	p.cachedTransitions = nil
}

// ensureYear recomputes p.cachedTransitions if the cache does not already
// cover year, per the ± 1 memoization window: a cache built for year Y
// covers queries in Y-1, Y and Y+1 without rebuilding, since FindTransitions
// always carries the one transition active at the start of the requested
// year.
func (p *Processor) ensureYear(year int16) error {
	if p.cachedTransitions != nil {
		delta := year - p.cachedYear
		if delta >= -1 && delta <= 1 {
			return nil
		}
	}
	transitions, err := FindTransitions(p.zone, year)
	if err != nil {
		return err
	}
	p.cachedYear = year
	p.cachedTransitions = transitions
	p.log.Debug("zoneprocessor: recomputed transitions",
		"zone", p.zone.Name, "year", year, "count", len(transitions))
	return nil
}

// transitionBefore returns the last transition whose StartEpochSeconds is
// <= t, assuming p.cachedTransitions covers t's year.
func (p *Processor) transitionBefore(t calendar.EpochSeconds) Transition {
	idx := sort.Search(len(p.cachedTransitions), func(i int) bool {
		return p.cachedTransitions[i].StartEpochSeconds > t
	})
	if idx == 0 {
		return p.cachedTransitions[0]
	}
	return p.cachedTransitions[idx-1]
}

// OffsetForEpochSeconds returns the transition in effect at t (spec.md
// §4.4's "offset for epoch seconds" operation). The zone must have been
// bound via Bind.
func (p *Processor) OffsetForEpochSeconds(t calendar.EpochSeconds) (Transition, error) {
	if p.zone == nil {
		return Transition{}, fmt.Errorf("zoneprocessor: no zone bound")
	}
	date, _ := calendar.FromEpochSeconds(t)
	if !date.IsValid() {
		return Transition{}, fmt.Errorf("zoneprocessor: epoch seconds %d out of representable range", t)
	}
	if err := p.ensureYear(date.Year); err != nil {
		return Transition{}, err
	}
	return p.transitionBefore(t), nil
}

// OffsetsForLocal resolves a local (wall-clock) date/time against the bound
// zone, returning a Match that classifies it as Unique, Gap or Overlap
// (spec.md §4.4's "offsets for local" operation). When the local time is
// ambiguous (Overlap), fold==0 selects the earlier offset and any other
// value the later one. An invalid date, or a year outside the zone's
// Context [StartYear, UntilYear) range, yields acetime.ErrInvalidDate.
func (p *Processor) OffsetsForLocal(year int16, month, day, hour, minute, second uint8, fold int) (Match, error) {
	if p.zone == nil {
		return Match{}, fmt.Errorf("zoneprocessor: no zone bound")
	}
	if !calendar.IsValidDate(year, month, day) {
		return Match{}, fmt.Errorf("zoneprocessor: date %04d-%02d-%02d: %w", year, month, day, acetime.ErrInvalidDate)
	}
	if ctx := p.zone.Context; ctx != nil && (year < ctx.StartYear || year >= ctx.UntilYear) {
		return Match{}, fmt.Errorf("zoneprocessor: year %d outside [%d, %d): %w", year, ctx.StartYear, ctx.UntilYear, acetime.ErrInvalidDate)
	}
	if err := p.ensureYear(year); err != nil {
		return Match{}, err
	}

	naive := calendar.ToEpochSeconds(
		calendar.LocalDate{Year: year, Month: month, Day: day},
		calendar.LocalTime{Hour: hour, Minute: minute, Second: second},
	)

	transitions := p.cachedTransitions

	// For each transition, test whether naive, converted to UTC using that
	// transition's own (offset+delta), falls within that transition's own
	// active window [Start, nextStart). A local time is Unique when
	// exactly one transition's offset is "self-consistent" this way, Gap
	// when none are, and Overlap when two adjacent ones are.
	offsetSeconds := func(tr Transition) calendar.EpochSeconds {
		return calendar.EpochSeconds((tr.OffsetMinutes + tr.DeltaMinutes) * 60)
	}
	selfConsistent := func(i int) bool {
		utc := naive - offsetSeconds(transitions[i])
		windowEnd := calendar.EpochSeconds(maxEpochSeconds)
		if i+1 < len(transitions) {
			windowEnd = transitions[i+1].StartEpochSeconds
		}
		return utc >= transitions[i].StartEpochSeconds && utc < windowEnd
	}

	var hits []int
	for i := range transitions {
		if selfConsistent(i) {
			hits = append(hits, i)
		}
	}

	switch len(hits) {
	case 1:
		return Match{Kind: Unique, Selected: transitions[hits[0]]}, nil
	case 2:
		prev, cur := transitions[hits[0]], transitions[hits[1]]
		utcPrev := naive - offsetSeconds(prev)
		utcCur := naive - offsetSeconds(cur)
		earlier, later := prev, cur
		if utcCur < utcPrev {
			earlier, later = cur, prev
		}
		if fold == 0 {
			return Match{Kind: OverlapEarlier, Before: earlier, After: later, Selected: earlier}, nil
		}
		return Match{Kind: OverlapLater, Before: earlier, After: later, Selected: later}, nil
	default:
		// Zero hits: a Gap. Find the transition index such that naive,
		// converted to UTC under the PREVIOUS transition's offset, has
		// already passed that transition's own window end: the boundary
		// straddled by the gap.
		idx := len(transitions) - 1
		for i := 0; i+1 < len(transitions); i++ {
			utc := naive - offsetSeconds(transitions[i])
			if utc >= transitions[i+1].StartEpochSeconds {
				idx = i
			}
		}
		before := transitions[idx]
		after := before
		if idx+1 < len(transitions) {
			after = transitions[idx+1]
		}
		return Match{Kind: Gap, Before: before, After: after}, nil
	}
}
