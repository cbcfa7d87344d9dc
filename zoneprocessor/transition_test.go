package zoneprocessor

import (
	"testing"

	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// losAngelesZone is a minimal America/Los_Angeles fixture covering the
// modern US DST rule (second Sunday in March, first Sunday in November,
// since 2007), sufficient to exercise the 2018 spring-forward/fall-back
// scenarios from spec.md §8.
func losAngelesZone() *zoneinfo.ZoneInfo {
	policy := &zoneinfo.ZonePolicy{
		Name: "US",
		Rules: []zoneinfo.ZoneRule{
			{
				FromYear: 2007, ToYear: zoneinfo.MaxUntilYear,
				InMonth: 3, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 8,
				AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall, // 02:00
				DeltaCode: 1 * 4, IsDeltaNegative: false, // +1h
				Letter: "D",
			},
			{
				FromYear: 2007, ToYear: zoneinfo.MaxUntilYear,
				InMonth: 11, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
				AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall, // 02:00
				DeltaCode: 0, IsDeltaNegative: false,
				Letter: "S",
			},
		},
	}
	return &zoneinfo.ZoneInfo{
		Name: "America/Los_Angeles",
		Eras: []zoneinfo.ZoneEra{
			{
				OffsetCode: -8 * 4, // -480 min
				Policy:     policy,
				Format:     "P%T",
				UntilYear:  zoneinfo.MaxUntilYear,
			},
		},
	}
}

// sydneyZone is a minimal Australia/Sydney fixture for the Southern
// Hemisphere autumn-transition scenario (DST ends in April), per spec.md §8.
func sydneyZone() *zoneinfo.ZoneInfo {
	policy := &zoneinfo.ZonePolicy{
		Name: "AN",
		Rules: []zoneinfo.ZoneRule{
			{
				FromYear: 2008, ToYear: zoneinfo.MaxUntilYear,
				InMonth: 10, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
				AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
				DeltaCode: 1 * 4, IsDeltaNegative: false,
				Letter: "D",
			},
			{
				FromYear: 2008, ToYear: zoneinfo.MaxUntilYear,
				InMonth: 4, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
				AtTimeCode: 3 * 4, AtTimeModifier: zoneinfo.Wall,
				DeltaCode: 0, IsDeltaNegative: false,
				Letter: "S",
			},
		},
	}
	return &zoneinfo.ZoneInfo{
		Name: "Australia/Sydney",
		Eras: []zoneinfo.ZoneEra{
			{
				OffsetCode: 10 * 4, // +600 min
				Policy:     policy,
				Format:     "AE%T",
				UntilYear:  zoneinfo.MaxUntilYear,
			},
		},
	}
}

// kolkataZone is Asia/Kolkata: a single fixed +5:30 offset with no DST,
// exercising the fractional-offset Unique scenario from spec.md §8.
func kolkataZone() *zoneinfo.ZoneInfo {
	return &zoneinfo.ZoneInfo{
		Name: "Asia/Kolkata",
		Eras: []zoneinfo.ZoneEra{
			{
				OffsetCode: 22, // 22*15 = 330 min = +5:30
				Policy:     nil,
				DeltaCode:  0,
				Format:     "IST",
				UntilYear:  zoneinfo.MaxUntilYear,
			},
		},
	}
}

// londonZone carries a pre-epoch era boundary (1968 shift from plain GMT
// to a fixed BST-all-year experiment), exercising UNTIL-boundary resolution
// for dates before the 2000 epoch, per spec.md §8.
func londonZone() *zoneinfo.ZoneInfo {
	return &zoneinfo.ZoneInfo{
		Name: "Europe/London",
		Eras: []zoneinfo.ZoneEra{
			{
				OffsetCode: 0,
				Policy:     nil,
				DeltaCode:  0,
				Format:     "GMT",
				UntilYear:  1968, UntilMonth: 2, UntilDay: 18,
				UntilTimeCode: 0, UntilTimeModifier: zoneinfo.UTC,
			},
			{
				OffsetCode: 4, // +60 min = +1:00, the fixed "British Standard Time" era
				Policy:     nil,
				DeltaCode:  0,
				Format:     "BST",
				UntilYear:  zoneinfo.MaxUntilYear,
			},
		},
	}
}

func TestFindTransitions_LosAngeles2018SpringForward(t *testing.T) {
	zone := losAngelesZone()
	transitions, err := FindTransitions(zone, 2018)
	if err != nil {
		t.Fatalf("FindTransitions: %v", err)
	}

	p := NewProcessor(nil)
	if err := p.Bind(zone); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	match, err := p.OffsetsForLocal(2018, 3, 11, 2, 30, 0, 0)
	if err != nil {
		t.Fatalf("OffsetsForLocal: %v", err)
	}
	if match.Kind != Gap {
		t.Fatalf("Kind = %v, want Gap (transitions=%+v)", match.Kind, transitions)
	}
	if match.Before.OffsetMinutes+match.Before.DeltaMinutes != -8*60 {
		t.Errorf("Before total offset = %d, want -480", match.Before.OffsetMinutes+match.Before.DeltaMinutes)
	}
	if match.After.OffsetMinutes+match.After.DeltaMinutes != -7*60 {
		t.Errorf("After total offset = %d, want -420", match.After.OffsetMinutes+match.After.DeltaMinutes)
	}
}

func TestFindTransitions_LosAngeles2018FallBack(t *testing.T) {
	zone := losAngelesZone()
	p := NewProcessor(nil)
	if err := p.Bind(zone); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	match, err := p.OffsetsForLocal(2018, 11, 4, 1, 30, 0, 0)
	if err != nil {
		t.Fatalf("OffsetsForLocal: %v", err)
	}
	if match.Kind != OverlapEarlier {
		t.Fatalf("Kind = %v, want OverlapEarlier", match.Kind)
	}
	if got, want := match.Selected.OffsetMinutes+match.Selected.DeltaMinutes, -7*60; got != want {
		t.Errorf("fold=0 selected offset = %d, want %d", got, want)
	}

	match1, err := p.OffsetsForLocal(2018, 11, 4, 1, 30, 0, 1)
	if err != nil {
		t.Fatalf("OffsetsForLocal fold=1: %v", err)
	}
	if match1.Kind != OverlapLater {
		t.Fatalf("Kind = %v, want OverlapLater", match1.Kind)
	}
	if got, want := match1.Selected.OffsetMinutes+match1.Selected.DeltaMinutes, -8*60; got != want {
		t.Errorf("fold=1 selected offset = %d, want %d", got, want)
	}
}

func TestFindTransitions_Sydney2020AutumnOverlap(t *testing.T) {
	zone := sydneyZone()
	p := NewProcessor(nil)
	if err := p.Bind(zone); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	match, err := p.OffsetsForLocal(2020, 4, 5, 3, 0, 0, 0)
	if err != nil {
		t.Fatalf("OffsetsForLocal: %v", err)
	}
	if match.Kind != OverlapEarlier && match.Kind != OverlapLater {
		t.Fatalf("Kind = %v, want an Overlap", match.Kind)
	}
	offsets := map[int]bool{
		match.Before.OffsetMinutes + match.Before.DeltaMinutes: true,
		match.After.OffsetMinutes + match.After.DeltaMinutes:   true,
	}
	if !offsets[660] || !offsets[600] {
		t.Errorf("overlap offsets = %v, want {660, 600}", offsets)
	}
}

func TestFindTransitions_KolkataUnique(t *testing.T) {
	zone := kolkataZone()
	p := NewProcessor(nil)
	if err := p.Bind(zone); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	for _, year := range []int16{1990, 2000, 2024} {
		match, err := p.OffsetsForLocal(year, 6, 15, 12, 0, 0, 0)
		if err != nil {
			t.Fatalf("OffsetsForLocal(%d): %v", year, err)
		}
		if match.Kind != Unique {
			t.Fatalf("year %d: Kind = %v, want Unique", year, match.Kind)
		}
		if match.Selected.OffsetMinutes != 330 || match.Selected.DeltaMinutes != 0 {
			t.Errorf("year %d: offset=%d delta=%d, want 330/0", year, match.Selected.OffsetMinutes, match.Selected.DeltaMinutes)
		}
		if match.Selected.Abbrev != "IST" {
			t.Errorf("year %d: abbrev = %q, want IST", year, match.Selected.Abbrev)
		}
	}
}

func TestFindTransitions_LondonPreEpoch(t *testing.T) {
	zone := londonZone()
	p := NewProcessor(nil)
	if err := p.Bind(zone); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	// The boundary instant itself (1968-02-18 00:00 UTC, offset jumping
	// 0 -> +60) makes the local hour [00:00, 01:00) on 1968-02-18
	// unreachable, like any spring-forward gap; query safely after it.
	match, err := p.OffsetsForLocal(1968, 3, 1, 12, 0, 0, 0)
	if err != nil {
		t.Fatalf("OffsetsForLocal: %v", err)
	}
	if match.Kind != Unique {
		t.Fatalf("Kind = %v, want Unique", match.Kind)
	}
	if match.Selected.OffsetMinutes != 60 {
		t.Errorf("offset = %d, want 60 (the new BST-all-year era)", match.Selected.OffsetMinutes)
	}

	before, err := p.OffsetForEpochSeconds(calendar.ToEpochSeconds(
		calendar.LocalDate{Year: 1968, Month: 2, Day: 17},
		calendar.LocalTime{Hour: 23, Minute: 0, Second: 0},
	))
	if err != nil {
		t.Fatalf("OffsetForEpochSeconds: %v", err)
	}
	if before.OffsetMinutes != 0 {
		t.Errorf("pre-boundary offset = %d, want 0 (GMT)", before.OffsetMinutes)
	}
}

func TestFindTransitions_BufferOverflow(t *testing.T) {
	rules := make([]zoneinfo.ZoneRule, 0, maxTransitions+10)
	for m := uint8(1); m <= 12; m++ {
		for i := 0; i < 4; i++ {
			rules = append(rules, zoneinfo.ZoneRule{
				FromYear: 2000, ToYear: zoneinfo.MaxUntilYear,
				InMonth: m, OnDayOfWeek: 0, OnDayOfMonth: uint8(1 + i*7),
				AtTimeCode: 0, AtTimeModifier: zoneinfo.Wall,
				DeltaCode: uint8(i % 2), Letter: "",
			})
		}
	}
	zone := &zoneinfo.ZoneInfo{
		Name: "Overflow/Test",
		Eras: []zoneinfo.ZoneEra{
			{OffsetCode: 0, Policy: &zoneinfo.ZonePolicy{Name: "X", Rules: rules}, Format: "%z", UntilYear: zoneinfo.MaxUntilYear},
		},
	}
	_, err := FindTransitions(zone, 2020)
	if err == nil {
		t.Fatal("expected buffer overflow error")
	}
}
