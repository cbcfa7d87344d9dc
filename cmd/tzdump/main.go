// Command tzdump prints the zoneinfo.ZoneInfo/ZoneEra/ZonePolicy records for
// a named zone in the registry, and optionally the transitions computed for
// a range of years. It is adapted from the teacher repository's cmd/tzinfo,
// which dumped a TZif binary's header and data blocks; this system never
// produces TZif, so tzdump walks the coded era/rule tables directly.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-acetime/acetime/zonedb"
	"github.com/go-acetime/acetime/zoneinfo"
	"github.com/go-acetime/acetime/zonemanager"
	"github.com/go-acetime/acetime/zoneprocessor"
)

var (
	printTransitionsFlag = flag.Bool("t", false, "Print computed transitions for -from..-to")
	fromYearFlag         = flag.Int("from", 2020, "First year to print transitions for (with -t)")
	toYearFlag           = flag.Int("to", 2021, "Last year (inclusive) to print transitions for (with -t)")
	listFlag             = flag.Bool("list", false, "List every zone name in the registry and exit")
)

func main() {
	flag.Parse()

	registry, err := zonemanager.NewRegistry(zonedb.All)
	if err != nil {
		fmt.Println("building registry:", err)
		os.Exit(1)
	}

	if *listFlag {
		printList(registry)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzdump [-t] [-from year] [-to year] <zone name>")
		fmt.Println("       tzdump -list")
		os.Exit(1)
	}

	zone, err := registry.FindByName(args[0])
	if err != nil {
		fmt.Println("looking up zone:", err)
		os.Exit(1)
	}

	printZone(zone)

	if *printTransitionsFlag {
		p := zoneprocessor.NewProcessor(nil)
		if err := p.Bind(zone); err != nil {
			fmt.Println("binding processor:", err)
			os.Exit(1)
		}
		for year := int16(*fromYearFlag); year <= int16(*toYearFlag); year++ {
			printTransitions(zone, year)
		}
	}
}

func printList(registry *zonemanager.Registry) {
	for _, zone := range zonedb.Registry {
		fmt.Printf("%-20s id=0x%08x eras=%d\n", zone.Name, zoneinfo.ZoneID(zone.Name), len(zone.Eras))
	}
}

func printZone(zone *zoneinfo.ZoneInfo) {
	fmt.Println("Zone", zone.Name)
	fmt.Printf("  id       = 0x%08x\n", zoneinfo.ZoneID(zone.Name))
	if zone.Context != nil {
		fmt.Printf("  context  = tzdata %s, years %d..%d\n", zone.Context.TZVersion, zone.Context.StartYear, zone.Context.UntilYear)
	}
	fmt.Printf("  eras (%d)\n", len(zone.Eras))
	for i, era := range zone.Eras {
		printEra(i, era)
	}
	fmt.Println()
}

func printEra(i int, era zoneinfo.ZoneEra) {
	fmt.Printf("  [%d] offset=%s format=%q", i, minutesString(era.OffsetMinutes()), era.Format)
	if era.Policy != nil {
		fmt.Printf(" policy=%s", era.Policy.Name)
	} else if era.FixedDeltaMinutes() != 0 {
		fmt.Printf(" fixedDelta=%s", minutesString(era.FixedDeltaMinutes()))
	}
	if era.IsFinal() {
		fmt.Println(" until=<forever>")
	} else {
		fmt.Printf(" until=%04d-%02d-%02d %d%s\n", era.UntilYear, era.UntilMonth, era.UntilDay, era.UntilAtMinutes(), era.UntilTimeModifier)
	}
	if era.Policy != nil {
		printPolicy(era.Policy)
	}
}

func printPolicy(policy *zoneinfo.ZonePolicy) {
	fmt.Printf("      policy %s (%d rules)\n", policy.Name, len(policy.Rules))
	for _, r := range policy.Rules {
		fmt.Printf("        %d..%d in month %d on %v delta=%s letter=%q\n",
			r.FromYear, r.ToYear, r.InMonth, r.OnDayOfWeek, minutesString(r.DeltaMinutes()), r.Letter)
	}
}

func printTransitions(zone *zoneinfo.ZoneInfo, year int16) {
	transitions, err := zoneprocessor.FindTransitions(zone, year)
	if err != nil {
		fmt.Println("computing transitions for", year, ":", err)
		return
	}
	fmt.Printf("Transitions for %d (%d)\n", year, len(transitions))
	for _, tr := range transitions {
		fmt.Printf("  %d offset=%s delta=%s abbrev=%s\n", tr.StartEpochSeconds, minutesString(tr.OffsetMinutes), minutesString(tr.DeltaMinutes), tr.Abbrev)
	}
	fmt.Println()
}

func minutesString(m int) string {
	sign := "+"
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}
