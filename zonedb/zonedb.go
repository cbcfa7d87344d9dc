// Package zonedb is a small, hand-authored zoneinfo.ZoneInfo registry,
// standing in for the flash-resident tables cmd/tzcompile would otherwise
// generate from a full IANA TZDB release. It carries just enough zones and
// historical rule activity to exercise every scenario spec.md §8 names:
// DST spring-forward/fall-back, a southern-hemisphere autumn rule, a
// fractional fixed offset, a pre-epoch era boundary and a Link.
package zonedb

import (
	"sort"

	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// Context is shared by every zone in this registry.
var Context = &zoneinfo.Context{
	StartYear: 1872,
	UntilYear: 2087,
	TZVersion: "2024b-sample",
}

// usPolicy mirrors the United States' DST rules: one 1967-2006 schedule
// (first Sunday in April / last Sunday in October, applied across that
// whole range and skipping the 1974-1975 federal exception) and the Energy Policy Act of
// 2005 schedule (second Sunday in March / first Sunday in November) from
// 2007 onward.
var usPolicy = &zoneinfo.ZonePolicy{
	Name: "US",
	Rules: []zoneinfo.ZoneRule{
		{
			FromYear: 1967, ToYear: 2006,
			InMonth: 4, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
			AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 1 * 4, Letter: "D",
		},
		{
			FromYear: 1967, ToYear: 2006,
			InMonth: 10, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 0,
			AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 0, Letter: "S",
		},
		{
			FromYear: 2007, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 3, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 8,
			AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 1 * 4, Letter: "D",
		},
		{
			FromYear: 2007, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 11, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
			AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 0, Letter: "S",
		},
	},
}

// AmericaLosAngeles is Pacific Time: a single fixed -8:00 base offset since
// the adoption of standard time zones, governed by usPolicy throughout.
var AmericaLosAngeles = &zoneinfo.ZoneInfo{
	Name: "America/Los_Angeles",
	Eras: []zoneinfo.ZoneEra{
		{
			OffsetCode: -8 * 4,
			Policy:     usPolicy,
			Format:     "P%T",
			UntilYear:  zoneinfo.MaxUntilYear,
		},
	},
	Context: Context,
}

// USPacific is a Link to AmericaLosAngeles: same eras, separate identity.
var USPacific = &zoneinfo.ZoneInfo{
	Name:    "US/Pacific",
	Eras:    AmericaLosAngeles.Eras,
	Context: Context,
}

// euPolicy is the European Union's harmonized DST schedule in force since
// 1996: last Sunday in March / last Sunday in October, both at 01:00 UTC.
var euPolicy = &zoneinfo.ZonePolicy{
	Name: "EU",
	Rules: []zoneinfo.ZoneRule{
		{
			FromYear: 1996, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 3, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 0,
			AtTimeCode: 1 * 4, AtTimeModifier: zoneinfo.UTC,
			DeltaCode: 1 * 4, Letter: "BST",
		},
		{
			FromYear: 1996, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 10, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 0,
			AtTimeCode: 1 * 4, AtTimeModifier: zoneinfo.UTC,
			DeltaCode: 0, Letter: "GMT",
		},
	},
}

// EuropeLondon carries three eras: plain GMT up to the 1968 experiment, a
// fixed "British Standard Time" all-year era through 1971, and the modern
// EU-policy-governed GMT/BST era since 1972. The first boundary predates
// the epoch, exercising pre-epoch UNTIL resolution (spec.md §8 scenario 4).
var EuropeLondon = &zoneinfo.ZoneInfo{
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
			OffsetCode: 4, // +1:00, the all-year "British Standard Time" experiment
			Policy:     nil,
			DeltaCode:  0,
			Format:     "BST",
			UntilYear:  1971, UntilMonth: 10, UntilDay: 31,
			UntilTimeCode: 2 * 4, UntilTimeModifier: zoneinfo.UTC,
		},
		{
			OffsetCode: 0,
			Policy:     euPolicy,
			Format:     "%", // the rule's Letter ("GMT" or "BST") is the whole abbreviation
			UntilYear:  zoneinfo.MaxUntilYear,
		},
	},
	Context: Context,
}

// anPolicy is the modern Australian DST schedule: first Sunday in October
// (spring forward) to first Sunday in April (fall back).
var anPolicy = &zoneinfo.ZonePolicy{
	Name: "AN",
	Rules: []zoneinfo.ZoneRule{
		{
			FromYear: 2008, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 10, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
			AtTimeCode: 2 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 1 * 4, Letter: "D",
		},
		{
			FromYear: 2008, ToYear: zoneinfo.MaxUntilYear,
			InMonth: 4, OnDayOfWeek: calendar.Sunday, OnDayOfMonth: 1,
			AtTimeCode: 3 * 4, AtTimeModifier: zoneinfo.Wall,
			DeltaCode: 0, Letter: "S",
		},
	},
}

// AustraliaSydney is Eastern Australia Time, +10:00 base offset governed by
// anPolicy, exercising the southern-hemisphere autumn-overlap scenario
// (spec.md §8 scenario 2).
var AustraliaSydney = &zoneinfo.ZoneInfo{
	Name: "Australia/Sydney",
	Eras: []zoneinfo.ZoneEra{
		{
			OffsetCode: 10 * 4,
			Policy:     anPolicy,
			Format:     "AE%T",
			UntilYear:  zoneinfo.MaxUntilYear,
		},
	},
	Context: Context,
}

// AsiaKolkata is a fixed, fractional +5:30 offset with no DST history,
// exercising spec.md §8 scenario 3.
var AsiaKolkata = &zoneinfo.ZoneInfo{
	Name: "Asia/Kolkata",
	Eras: []zoneinfo.ZoneEra{
		{
			OffsetCode: 22, // 22*15 = 330 min
			Policy:     nil,
			DeltaCode:  0,
			Format:     "IST",
			UntilYear:  zoneinfo.MaxUntilYear,
		},
	},
	Context: Context,
}

// UTC is the zero-offset zone, included as the universal fallback.
var UTC = &zoneinfo.ZoneInfo{
	Name: "UTC",
	Eras: []zoneinfo.ZoneEra{
		{
			OffsetCode: 0,
			Policy:     nil,
			DeltaCode:  0,
			Format:     "UTC",
			UntilYear:  zoneinfo.MaxUntilYear,
		},
	},
	Context: Context,
}

// All lists every zone and link this package defines, in declaration order.
// Registry, below, is the same set sorted by zone_id, as spec.md §4.5 and
// §9 require of the on-disk layout.
var All = []*zoneinfo.ZoneInfo{
	UTC,
	AmericaLosAngeles,
	USPacific,
	EuropeLondon,
	AustraliaSydney,
	AsiaKolkata,
}

// Registry is All sorted ascending by zoneinfo.ZoneID(Name), the binary
// search key spec.md §4.5 specifies for ID lookup. Computed once at package
// initialization since the list above is small and fixed; cmd/tzcompile
// would instead bake this order directly into its generated table.
var Registry []*zoneinfo.ZoneInfo

func init() {
	Registry = make([]*zoneinfo.ZoneInfo, len(All))
	copy(Registry, All)
	sort.Slice(Registry, func(i, j int) bool {
		return zoneinfo.ZoneID(Registry[i].Name) < zoneinfo.ZoneID(Registry[j].Name)
	})
}
