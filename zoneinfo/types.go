// Package zoneinfo defines the compact, read-only schema that describes a
// time zone's eras, policies and rules, mirroring the ZoneInfo/ZonePolicy
// package pair of the source library's zonedbx tables. Values in this
// package are meant to live in a static table built by cmd/tzcompile (or
// hand-authored for a small fixed set of zones, as package zonedb does);
// nothing here allocates beyond what the caller supplies.
package zoneinfo

import "github.com/go-acetime/acetime/calendar"

// TimeModifier identifies how a coded AT/UNTIL time must be interpreted
// relative to the offsets in force just before the transition it describes.
type TimeModifier uint8

const (
	// Wall means the time is local wall-clock time, i.e. offset+delta must
	// be subtracted to obtain UTC.
	Wall TimeModifier = iota
	// Standard means the time is local standard time (no DST delta applied).
	Standard
	// UTC means the time is already expressed in UTC.
	UTC
)

func (m TimeModifier) String() string {
	switch m {
	case Wall:
		return "w"
	case Standard:
		return "s"
	case UTC:
		return "u"
	default:
		return "?"
	}
}

// MaxTinyYear is the largest year offset from 2000 representable in the
// single signed byte used by ZoneRule.FromYear/ToYear and ZoneEra.UntilYear.
const MaxTinyYear = 126

// MaxUntilYear is the sentinel meaning "valid indefinitely into the
// future": the full year one past 2000+MaxTinyYear, i.e. 2127. Year fields
// in this package hold full calendar years, so the sentinel is one too.
const MaxUntilYear = 2000 + MaxTinyYear + 1

// MinTinyYear is the sentinel meaning "valid indefinitely into the past".
const MinTinyYear = -128

// ZoneRule is one recurring transition rule: a TZDB RULE line. Years are
// stored as an offset from 2000 to fit a single byte in the on-disk
// representation; this in-memory struct keeps them widened to int16 so
// callers never have to think about the coded form.
type ZoneRule struct {
	FromYear  int16 // inclusive
	ToYear    int16 // inclusive; MaxUntilYear means "forever"
	InMonth   uint8 // 1..12
	OnDayOfWeek calendar.DayOfWeek // 0 means "exact day of month"
	OnDayOfMonth uint8             // 0 means "last OnDayOfWeek"; see calendar.ResolveOnDay

	AtTimeCode     uint8 // units of 15 minutes, 0..100 (25h "end of day")
	AtTimeModifier TimeModifier

	DeltaCode uint8 // units of 15 minutes; see DeltaMinutes. May encode negative deltas.
	IsDeltaNegative bool

	Letter string // substituted into ZoneEra.Format's '%'; "" means no letter
}

// AtMinutes returns the rule's AT field in minutes past midnight. A value of
// 1500 (25h) means the transition logically occurs at 00:00 the following
// day, per spec; callers resolve that by adding a day when computing the
// transition's date.
func (r ZoneRule) AtMinutes() int {
	return int(r.AtTimeCode) * 15
}

// DeltaMinutes returns the rule's SAVE field in minutes, which may be
// negative in rare historical zones.
func (r ZoneRule) DeltaMinutes() int {
	m := int(r.DeltaCode) * 15
	if r.IsDeltaNegative {
		return -m
	}
	return m
}

// AppliesInYear reports whether the rule has an activation within [year,
// year], honoring ToYear == MaxUntilYear as "forever".
func (r ZoneRule) AppliesInYear(year int16) bool {
	if year < r.FromYear {
		return false
	}
	if r.ToYear >= MaxUntilYear {
		return true
	}
	return year <= r.ToYear
}

// ZonePolicy is a named collection of ZoneRules, sorted ascending by
// (FromYear, InMonth, OnDayOfMonth). Rules within a policy may overlap in
// year range; the transition finder resolves that by instant order, not by
// rule order.
type ZonePolicy struct {
	Name  string
	Rules []ZoneRule
}

// ZoneEra is one TZDB ZONE line (or continuation line): the UTC offset and
// policy in force during the half-open interval ending at Until.
type ZoneEra struct {
	OffsetCode int8 // units of 15 minutes; see OffsetMinutes

	// Policy is nil when the RULES column was "-" or a fixed SAVE amount;
	// in that case DeltaCode supplies the (possibly zero) fixed delta.
	Policy    *ZonePolicy
	DeltaCode int8 // units of 15 minutes; meaningful only when Policy == nil

	// Format carries a literal abbreviation, a single '%' placeholder
	// (substituted with the active rule's Letter) or the literal "%z".
	Format string

	UntilYear    int16 // MaxUntilYear means this is the zone's final era
	UntilMonth   uint8
	UntilDay     uint8
	UntilTimeCode uint8
	UntilTimeModifier TimeModifier
}

// OffsetMinutes returns the era's base UTC offset in minutes.
func (e ZoneEra) OffsetMinutes() int {
	return int(e.OffsetCode) * 15
}

// FixedDeltaMinutes returns the era's fixed DST delta in minutes. Only
// meaningful when e.Policy == nil.
func (e ZoneEra) FixedDeltaMinutes() int {
	return int(e.DeltaCode) * 15
}

// UntilAtMinutes returns the era's UNTIL time-of-day in minutes past
// midnight, honoring the 25h "end of day" convention.
func (e ZoneEra) UntilAtMinutes() int {
	return int(e.UntilTimeCode) * 15
}

// IsFinal reports whether this is a zone's last era, valid indefinitely.
func (e ZoneEra) IsFinal() bool {
	return e.UntilYear >= MaxUntilYear
}

// ZoneInfo describes one named time zone as a sorted sequence of eras.
// A zone created via a TZDB Link shares its target's Eras slice and Context
// but carries its own Name and (indirectly, through the registry) its own
// zone ID.
type ZoneInfo struct {
	Name    string
	Eras    []ZoneEra
	Context *Context
}

// Context holds metadata shared by every zone compiled from the same TZDB
// snapshot.
type Context struct {
	StartYear int16
	UntilYear int16
	TZVersion string
}
