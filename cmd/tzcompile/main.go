// Command tzcompile is the offline TZDB-to-table compiler spec.md §1 names
// as an external collaborator, out of the core library's scope. It reads
// IANA tzdata text files (fetched with internal/tzdbsource, parsed with
// internal/tzdbtext) and compiles them into this system's own
// zoneinfo.ZoneInfo/ZoneEra/ZonePolicy schema, emitting a Go source file in
// the shape of package zonedb rather than a TZif binary: the teacher's
// tzc/tzir packages target glibc's wire format, which no component in this
// system reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-acetime/acetime/internal/tzdbsource"
	"github.com/go-acetime/acetime/zoneinfo"
)

var (
	downloadFlag  = flag.Bool("download", false, "Download the latest IANA tzdata release instead of reading -in")
	inFlag        = flag.String("in", "", "Path to a single tzdata text file to compile (e.g. a copy of \"northamerica\")")
	outFlag       = flag.String("out", "", "Path to write the generated Go source to (default: stdout)")
	packageFlag   = flag.String("package", "zonedbgen", "Package name for the generated Go source")
	startYearFlag = flag.Int("start-year", 1980, "Context.StartYear recorded in the generated table")
	untilYearFlag = flag.Int("until-year", 2100, "Context.UntilYear recorded in the generated table")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tzcompile:", err)
		os.Exit(1)
	}
}

func run() error {
	release, err := loadRelease()
	if err != nil {
		return fmt.Errorf("loading tzdata: %w", err)
	}

	ctx := &zoneinfo.Context{
		StartYear: int16(*startYearFlag),
		UntilYear: int16(*untilYearFlag),
		TZVersion: release.Version,
	}

	merged, err := release.Parse()
	if err != nil {
		return fmt.Errorf("parsing tzdata: %w", err)
	}

	compiled, err := Compile(merged, ctx)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	src := GenerateSource(*packageFlag, ctx, compiled.Zones)

	if *outFlag == "" {
		_, err = os.Stdout.WriteString(src)
		return err
	}
	return os.WriteFile(*outFlag, []byte(src), 0o644)
}

func loadRelease() (*tzdbsource.Release, error) {
	if *downloadFlag {
		release, _, err := tzdbsource.Latest(context.Background(), "")
		return release, err
	}
	if *inFlag == "" {
		return nil, fmt.Errorf("either -download or -in must be given")
	}
	data, err := os.ReadFile(*inFlag)
	if err != nil {
		return nil, err
	}
	return &tzdbsource.Release{
		Version:   "unknown",
		DataFiles: tzdbsource.TZDataFiles{*inFlag: data},
	}, nil
}
