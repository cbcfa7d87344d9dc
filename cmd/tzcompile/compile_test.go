package main

import (
	"strings"
	"testing"

	"github.com/go-acetime/acetime/internal/tzdbtext"
	"github.com/go-acetime/acetime/zoneinfo"
)

const sampleTZData = `
Rule	US	1967	2006	-	Apr	lastSun	2:00	1:00	D
Rule	US	1967	2006	-	Oct	lastSun	2:00	0	S
Rule	US	2007	max	-	Mar	Sun>=8	2:00	1:00	D
Rule	US	2007	max	-	Nov	Sun>=1	2:00	0	S

Zone America/Los_Angeles	-8:00	US	P%sT
Zone Etc/UTC	0	-	UTC
Link	America/Los_Angeles	US/Pacific
`

func parseSample(t *testing.T) tzdbtext.File {
	t.Helper()
	f, err := tzdbtext.Parse(strings.NewReader(sampleTZData))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return f
}

func TestCompile_BuildsPolicyAndEra(t *testing.T) {
	f := parseSample(t)
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}

	compiled, err := Compile(f, ctx)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var la *zoneinfo.ZoneInfo
	for _, z := range compiled.Zones {
		if z.Name == "America/Los_Angeles" {
			la = z
		}
	}
	if la == nil {
		t.Fatal("America/Los_Angeles not found in compiled zones")
	}
	if len(la.Eras) != 1 {
		t.Fatalf("len(Eras) = %d, want 1", len(la.Eras))
	}
	era := la.Eras[0]
	if era.OffsetCode != -8*4 {
		t.Errorf("OffsetCode = %d, want %d", era.OffsetCode, -8*4)
	}
	if era.Format != "P%T" {
		t.Errorf("Format = %q, want %q", era.Format, "P%T")
	}
	if era.Policy == nil || era.Policy.Name != "US" {
		t.Fatalf("Policy = %v, want US", era.Policy)
	}
	if len(era.Policy.Rules) != 4 {
		t.Fatalf("len(Rules) = %d, want 4", len(era.Policy.Rules))
	}
	first := era.Policy.Rules[0]
	if first.FromYear != 1967 || first.ToYear != 2006 || first.InMonth != 4 {
		t.Errorf("first rule = %+v", first)
	}
}

func TestCompile_ResolvesLinkSharingEras(t *testing.T) {
	f := parseSample(t)
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}

	compiled, err := Compile(f, ctx)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var la, pacific *zoneinfo.ZoneInfo
	for _, z := range compiled.Zones {
		switch z.Name {
		case "America/Los_Angeles":
			la = z
		case "US/Pacific":
			pacific = z
		}
	}
	if la == nil || pacific == nil {
		t.Fatalf("missing zone: la=%v pacific=%v", la, pacific)
	}
	if &la.Eras[0] != &pacific.Eras[0] {
		t.Error("US/Pacific does not share America/Los_Angeles's Eras slice")
	}
}

func TestCompile_UnknownLinkTargetFails(t *testing.T) {
	f, err := tzdbtext.Parse(strings.NewReader("Link\tNowhere/Real\tSomewhere/Fake\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}
	if _, err := Compile(f, ctx); err == nil {
		t.Fatal("Compile() error = nil, want error for unresolved link target")
	}
}

func TestCompile_ZoneWithFixedSaveAndUntilDay(t *testing.T) {
	data := "Zone Test/FixedSave\t2:00\t1:00\tTSTD\t2000 Jun 15 3:00\n\t\t\t2:00\t-\tTSTD\n"
	f, err := tzdbtext.Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}
	compiled, err := Compile(f, ctx)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(compiled.Zones) != 1 || len(compiled.Zones[0].Eras) != 2 {
		t.Fatalf("unexpected compiled zones: %+v", compiled.Zones)
	}
	first := compiled.Zones[0].Eras[0]
	if first.Policy != nil || first.DeltaCode != 4 {
		t.Errorf("first era DeltaCode/Policy = %d/%v, want fixed +4 with no policy", first.DeltaCode, first.Policy)
	}
	if first.UntilYear != 2000 || first.UntilMonth != 6 || first.UntilDay != 15 || first.UntilTimeCode != 12 {
		t.Errorf("first era UNTIL = %+v", first)
	}
	second := compiled.Zones[0].Eras[1]
	if second.UntilYear != zoneinfo.MaxUntilYear {
		t.Errorf("second era UntilYear = %d, want MaxUntilYear (final era)", second.UntilYear)
	}
}

func TestCompile_UntilDayOfWeekRejected(t *testing.T) {
	data := "Zone Test/Weekday\t2:00\t-\tTSTD\t2000 Jun lastSun 3:00\n\t\t\t2:00\t-\tTSTD\n"
	f, err := tzdbtext.Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}
	if _, err := Compile(f, ctx); err == nil {
		t.Fatal("Compile() error = nil, want error for UNTIL day-of-week rule")
	}
}

func TestGenerateSource_ProducesCompilableLookingOutput(t *testing.T) {
	f := parseSample(t)
	ctx := &zoneinfo.Context{StartYear: 1980, UntilYear: 2100, TZVersion: "test"}
	compiled, err := Compile(f, ctx)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	src := GenerateSource("zonedbgen", ctx, compiled.Zones)
	for _, want := range []string{"package zonedbgen", "var AmericaLosAngeles", "var policyUS", "var All = []*zoneinfo.ZoneInfo{"} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}
