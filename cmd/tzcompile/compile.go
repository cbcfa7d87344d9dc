package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-acetime/acetime/internal/tzdbtext"
	"github.com/go-acetime/acetime/zoneinfo"
)

// CompiledSet is the output of Compile: every zoneinfo.ZoneInfo compiled from
// the ZONE lines, including the Link-derived aliases that share a target
// zone's Eras slice, exactly as zonedb.USPacific shares
// zonedb.AmericaLosAngeles's Eras.
type CompiledSet struct {
	Zones []*zoneinfo.ZoneInfo
}

// Compile turns a parsed tzdata File into the coded zoneinfo tables this
// system consumes, grouping ZONE continuation lines by name the way the
// teacher's tzc.Compile groups them before building a tzif.Data per zone,
// and resolving RULES columns against the parsed RuleLines before resolving
// LINK aliases last. tzdbtext has already resolved tzdata's text grammar
// (weekday names, AT/UNTIL modifiers, UNTIL's column-dropping defaults)
// into this system's own vocabulary; what's left here is purely fitting
// those values into zoneinfo's coded field widths.
func Compile(f tzdbtext.File, ctx *zoneinfo.Context) (*CompiledSet, error) {
	policies, err := compilePolicies(f.RuleLines)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	var (
		order      []string
		zoneGroups = make(map[string][]tzdbtext.ZoneLine)
		lastName   string
	)
	for _, l := range f.ZoneLines {
		if !l.Continuation {
			lastName = l.Name
			order = append(order, lastName)
		}
		zoneGroups[lastName] = append(zoneGroups[lastName], l)
	}

	byName := make(map[string]*zoneinfo.ZoneInfo, len(order))
	var zones []*zoneinfo.ZoneInfo
	for _, name := range order {
		zone, err := compileZone(name, zoneGroups[name], policies, ctx)
		if err != nil {
			return nil, fmt.Errorf("compiling zone %s: %w", name, err)
		}
		byName[name] = zone
		zones = append(zones, zone)
	}

	for _, link := range f.LinkLines {
		target, ok := byName[link.From]
		if !ok {
			return nil, fmt.Errorf("link %s -> %s: unknown target zone", link.To, link.From)
		}
		alias := &zoneinfo.ZoneInfo{Name: link.To, Eras: target.Eras, Context: ctx}
		byName[link.To] = alias
		zones = append(zones, alias)
	}

	return &CompiledSet{Zones: zones}, nil
}

func compilePolicies(lines []tzdbtext.RuleLine) (map[string]*zoneinfo.ZonePolicy, error) {
	grouped := make(map[string][]tzdbtext.RuleLine)
	var order []string
	for _, l := range lines {
		if _, ok := grouped[l.Name]; !ok {
			order = append(order, l.Name)
		}
		grouped[l.Name] = append(grouped[l.Name], l)
	}

	policies := make(map[string]*zoneinfo.ZonePolicy, len(order))
	for _, name := range order {
		rules := make([]zoneinfo.ZoneRule, 0, len(grouped[name]))
		for _, rl := range grouped[name] {
			rule, err := compileRule(rl)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", name, err)
			}
			rules = append(rules, rule)
		}
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].FromYear != rules[j].FromYear {
				return rules[i].FromYear < rules[j].FromYear
			}
			if rules[i].InMonth != rules[j].InMonth {
				return rules[i].InMonth < rules[j].InMonth
			}
			return rules[i].OnDayOfMonth < rules[j].OnDayOfMonth
		})
		policies[name] = &zoneinfo.ZonePolicy{Name: name, Rules: rules}
	}
	return policies, nil
}

func compileRule(rl tzdbtext.RuleLine) (zoneinfo.ZoneRule, error) {
	atCode, err := codeFromTimeMinutes(rl.AtMinutes)
	if err != nil {
		return zoneinfo.ZoneRule{}, fmt.Errorf("AT: %w", err)
	}
	deltaCode, deltaNeg, err := compileDeltaMagnitude(rl.SaveMinutes)
	if err != nil {
		return zoneinfo.ZoneRule{}, fmt.Errorf("SAVE: %w", err)
	}
	return zoneinfo.ZoneRule{
		FromYear:        compileYear(rl.From),
		ToYear:          compileYear(rl.To),
		InMonth:         uint8(rl.InMonth),
		OnDayOfWeek:     rl.OnDayOfWeek,
		OnDayOfMonth:    rl.OnDayOfMonth,
		AtTimeCode:      atCode,
		AtTimeModifier:  rl.AtModifier,
		DeltaCode:       deltaCode,
		IsDeltaNegative: deltaNeg,
		Letter:          rl.Letter,
	}, nil
}

func compileZone(name string, lines []tzdbtext.ZoneLine, policies map[string]*zoneinfo.ZonePolicy, ctx *zoneinfo.Context) (*zoneinfo.ZoneInfo, error) {
	eras := make([]zoneinfo.ZoneEra, 0, len(lines))
	for i, l := range lines {
		era, err := compileEra(l, policies)
		if err != nil {
			return nil, fmt.Errorf("era %d: %w", i, err)
		}
		eras = append(eras, era)
	}
	return &zoneinfo.ZoneInfo{Name: name, Eras: eras, Context: ctx}, nil
}

func compileEra(l tzdbtext.ZoneLine, policies map[string]*zoneinfo.ZonePolicy) (zoneinfo.ZoneEra, error) {
	offsetCode, err := compileOffsetCode(l.OffsetMinutes)
	if err != nil {
		return zoneinfo.ZoneEra{}, fmt.Errorf("STDOFF: %w", err)
	}

	era := zoneinfo.ZoneEra{OffsetCode: offsetCode, Format: l.Format}

	switch l.RulesForm {
	case tzdbtext.RulesStandard:
		// era.Policy and era.DeltaCode stay zero: standard time always applies.
	case tzdbtext.RulesFixedSave:
		deltaCode, err := compileSignedDeltaCode(l.FixedSaveMinutes)
		if err != nil {
			return zoneinfo.ZoneEra{}, fmt.Errorf("RULES: %w", err)
		}
		era.DeltaCode = deltaCode
	case tzdbtext.RulesName:
		policy, ok := policies[l.RulesName]
		if !ok {
			return zoneinfo.ZoneEra{}, fmt.Errorf("unknown rule policy %q", l.RulesName)
		}
		era.Policy = policy
	default:
		return zoneinfo.ZoneEra{}, fmt.Errorf("unsupported RULES form %v", l.RulesForm)
	}

	if !l.UntilDefined {
		era.UntilYear = zoneinfo.MaxUntilYear
		return era, nil
	}
	if l.UntilDayOfWeek != 0 {
		return zoneinfo.ZoneEra{}, fmt.Errorf("UNTIL day-of-week rules are not supported")
	}
	era.UntilYear = compileYear(l.UntilYear)
	era.UntilMonth = uint8(l.UntilMonth)
	era.UntilDay = l.UntilDayOfMonth
	untilCode, err := codeFromTimeMinutes(l.UntilMinutes)
	if err != nil {
		return zoneinfo.ZoneEra{}, fmt.Errorf("UNTIL time: %w", err)
	}
	era.UntilTimeCode = untilCode
	era.UntilTimeModifier = l.UntilModifier
	return era, nil
}

// compileYear maps the tzdata sentinel years onto this system's tiny-year
// sentinels. Ordinary years pass through unchanged: zonedb's hand-authored
// tables store real calendar years directly (e.g. FromYear: 1967), reserving
// zoneinfo.MaxUntilYear/MinTinyYear purely as the "forever" markers.
func compileYear(y int) int16 {
	if y >= tzdbtext.MaxYear {
		return zoneinfo.MaxUntilYear
	}
	if y <= tzdbtext.MinYear {
		return zoneinfo.MinTinyYear
	}
	return int16(y)
}

// compileOffsetCode converts a signed minute offset into a 15-minute code,
// rejecting offsets that do not divide evenly (this system has no
// representation for historical sub-15-minute LMT offsets finer than that,
// matching spec.md's calendar kernel Non-goals).
func compileOffsetCode(minutes int) (int8, error) {
	if minutes%15 != 0 {
		return 0, fmt.Errorf("%dm is not a multiple of 15 minutes", minutes)
	}
	code := minutes / 15
	if code < math.MinInt8 || code > math.MaxInt8 {
		return 0, fmt.Errorf("%dm does not fit in a signed 15-minute code", minutes)
	}
	return int8(code), nil
}

// codeFromTimeMinutes converts a non-negative time-of-day minute count
// (AT/UNTIL) into a uint8 15-minute code, accepting tzdata's "25h" end-of-
// day convention.
func codeFromTimeMinutes(minutes int) (uint8, error) {
	if minutes < 0 {
		return 0, fmt.Errorf("%dm is negative", minutes)
	}
	if minutes%15 != 0 {
		return 0, fmt.Errorf("%dm is not a multiple of 15 minutes", minutes)
	}
	code := minutes / 15
	if code > 100 {
		return 0, fmt.Errorf("%dm exceeds the 25-hour coded range", minutes)
	}
	return uint8(code), nil
}

// compileDeltaMagnitude splits a signed minute count (a rule's SAVE) into
// zoneinfo.ZoneRule's (magnitude-code, IsDeltaNegative) encoding.
func compileDeltaMagnitude(minutes int) (uint8, bool, error) {
	negative := minutes < 0
	if negative {
		minutes = -minutes
	}
	if minutes%15 != 0 {
		return 0, false, fmt.Errorf("%dm is not a multiple of 15 minutes", minutes)
	}
	code := minutes / 15
	if code > math.MaxUint8 {
		return 0, false, fmt.Errorf("%dm exceeds the coded range", minutes)
	}
	return uint8(code), negative, nil
}

// compileSignedDeltaCode converts a signed minute count (a zone line's
// fixed RULES offset) into zoneinfo.ZoneEra.DeltaCode's directly-signed
// int8 encoding, which (unlike ZoneRule) has no separate sign flag.
func compileSignedDeltaCode(minutes int) (int8, error) {
	magnitude, negative, err := compileDeltaMagnitude(minutes)
	if err != nil {
		return 0, err
	}
	if magnitude > math.MaxInt8 {
		return 0, fmt.Errorf("%dm does not fit in a signed 15-minute code", minutes)
	}
	if negative {
		return -int8(magnitude), nil
	}
	return int8(magnitude), nil
}
