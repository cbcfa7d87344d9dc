package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// GenerateSource renders zones as a Go source file declaring one *ZonePolicy
// var per distinct policy and one *ZoneInfo var per zone, in the same
// literal style as the hand-authored package zonedb, so a generated table
// can be dropped into the tree and used exactly like it.
func GenerateSource(pkg string, ctx *zoneinfo.Context, zones []*zoneinfo.ZoneInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by cmd/tzcompile from tzdata %s. DO NOT EDIT.\n", ctx.TZVersion)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "import (\n\t\"sort\"\n\n\t\"github.com/go-acetime/acetime/calendar\"\n\t\"github.com/go-acetime/acetime/zoneinfo\"\n)\n\n")
	fmt.Fprintf(&b, "var _ calendar.DayOfWeek\n\n")

	fmt.Fprintf(&b, "var Context = &zoneinfo.Context{StartYear: %d, UntilYear: %d, TZVersion: %q}\n\n",
		ctx.StartYear, ctx.UntilYear, ctx.TZVersion)

	policies, policyOrder := collectPolicies(zones)
	for _, name := range policyOrder {
		writePolicy(&b, name, policies[name])
	}

	linkTargets := make(map[*zoneinfo.ZoneInfo]string)
	for _, zone := range zones {
		if owner, ok := sharesEras(zone, zones); ok && owner != zone {
			linkTargets[zone] = goIdent(owner.Name)
			continue
		}
		writeZone(&b, zone)
	}
	for _, zone := range zones {
		if target, ok := linkTargets[zone]; ok {
			fmt.Fprintf(&b, "var %s = &zoneinfo.ZoneInfo{Name: %q, Eras: %s.Eras, Context: Context}\n\n",
				goIdent(zone.Name), zone.Name, target)
		}
	}

	fmt.Fprintf(&b, "var All = []*zoneinfo.ZoneInfo{\n")
	for _, zone := range zones {
		fmt.Fprintf(&b, "\t%s,\n", goIdent(zone.Name))
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "var Registry []*zoneinfo.ZoneInfo\n\n")
	fmt.Fprintf(&b, "func init() {\n")
	fmt.Fprintf(&b, "\tRegistry = make([]*zoneinfo.ZoneInfo, len(All))\n")
	fmt.Fprintf(&b, "\tcopy(Registry, All)\n")
	fmt.Fprintf(&b, "\tsort.Slice(Registry, func(i, j int) bool {\n")
	fmt.Fprintf(&b, "\t\treturn zoneinfo.ZoneID(Registry[i].Name) < zoneinfo.ZoneID(Registry[j].Name)\n")
	fmt.Fprintf(&b, "\t})\n")
	fmt.Fprintf(&b, "}\n")

	return b.String()
}

// sharesEras reports whether zone's Eras slice header is identical to an
// earlier zone's in the list (the marker this compiler and package zonedb
// both use for a Link), and returns that earlier zone.
func sharesEras(zone *zoneinfo.ZoneInfo, zones []*zoneinfo.ZoneInfo) (*zoneinfo.ZoneInfo, bool) {
	for _, other := range zones {
		if other == zone {
			return zone, false
		}
		if len(other.Eras) > 0 && len(zone.Eras) > 0 && &other.Eras[0] == &zone.Eras[0] {
			return other, true
		}
	}
	return zone, false
}

func collectPolicies(zones []*zoneinfo.ZoneInfo) (map[string]*zoneinfo.ZonePolicy, []string) {
	policies := make(map[string]*zoneinfo.ZonePolicy)
	var order []string
	for _, zone := range zones {
		for _, era := range zone.Eras {
			if era.Policy == nil {
				continue
			}
			if _, ok := policies[era.Policy.Name]; !ok {
				order = append(order, era.Policy.Name)
			}
			policies[era.Policy.Name] = era.Policy
		}
	}
	sort.Strings(order)
	return policies, order
}

func writePolicy(b *strings.Builder, name string, policy *zoneinfo.ZonePolicy) {
	fmt.Fprintf(b, "var policy%s = &zoneinfo.ZonePolicy{\n\tName: %q,\n\tRules: []zoneinfo.ZoneRule{\n", goIdent(name), name)
	for _, r := range policy.Rules {
		fmt.Fprintf(b, "\t\t{FromYear: %d, ToYear: %d, InMonth: %d, OnDayOfWeek: %s, OnDayOfMonth: %d, AtTimeCode: %d, AtTimeModifier: %s, DeltaCode: %d, IsDeltaNegative: %t, Letter: %q},\n",
			r.FromYear, r.ToYear, r.InMonth, dayOfWeekIdent(r.OnDayOfWeek), r.OnDayOfMonth,
			r.AtTimeCode, timeModifierIdent(r.AtTimeModifier), r.DeltaCode, r.IsDeltaNegative, r.Letter)
	}
	fmt.Fprintf(b, "\t},\n}\n\n")
}

func writeZone(b *strings.Builder, zone *zoneinfo.ZoneInfo) {
	fmt.Fprintf(b, "var %s = &zoneinfo.ZoneInfo{\n\tName: %q,\n\tContext: Context,\n\tEras: []zoneinfo.ZoneEra{\n", goIdent(zone.Name), zone.Name)
	for _, era := range zone.Eras {
		fmt.Fprintf(b, "\t\t{OffsetCode: %d, ", era.OffsetCode)
		if era.Policy != nil {
			fmt.Fprintf(b, "Policy: policy%s, ", goIdent(era.Policy.Name))
		} else {
			fmt.Fprintf(b, "DeltaCode: %d, ", era.DeltaCode)
		}
		fmt.Fprintf(b, "Format: %q, UntilYear: %d, UntilMonth: %d, UntilDay: %d, UntilTimeCode: %d, UntilTimeModifier: %s},\n",
			era.Format, era.UntilYear, era.UntilMonth, era.UntilDay, era.UntilTimeCode, timeModifierIdent(era.UntilTimeModifier))
	}
	fmt.Fprintf(b, "\t},\n}\n\n")
}

// dayOfWeekIdent renders a calendar.DayOfWeek as the qualified identifier
// the generated source needs ("calendar.Sunday"), or "0" for the "exact day
// of month" sentinel.
func dayOfWeekIdent(d calendar.DayOfWeek) string {
	names := [...]string{"", "calendar.Monday", "calendar.Tuesday", "calendar.Wednesday",
		"calendar.Thursday", "calendar.Friday", "calendar.Saturday", "calendar.Sunday"}
	if int(d) < len(names) {
		if d == 0 {
			return "0"
		}
		return names[d]
	}
	return "0"
}

func timeModifierIdent(m zoneinfo.TimeModifier) string {
	switch m {
	case zoneinfo.Standard:
		return "zoneinfo.Standard"
	case zoneinfo.UTC:
		return "zoneinfo.UTC"
	default:
		return "zoneinfo.Wall"
	}
}

// goIdent turns a zone or policy name into a legal, readable Go identifier
// fragment ("America/Los_Angeles" -> "AmericaLosAngeles").
func goIdent(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r == '/' || r == '_' || r == '-' || r == '+':
			upperNext = true
		case upperNext:
			b.WriteRune(toUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "Z" + out
	}
	return out
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
