// Package tzdbtext parses the tzdata source files distributed by IANA at
// https://www.iana.org/time-zones into Rule, Zone and Link lines. It is the
// text front end for cmd/tzcompile: unlike a generic tzdata AST, the column
// parsers here resolve directly into the vocabulary the rest of this system
// already speaks (calendar.DayOfWeek, zoneinfo.TimeModifier, minute counts
// and tzdata's own "trailing fields default to the earliest value" rule
// applied inline), so the compiler only has to fit those values into coded
// fields, not re-derive their meaning from a second intermediate form.
//
// Leap-second (Leap/Expires) lines are skipped outright, and the SAVE
// column's "s"/"d" suffix is discarded (see parseSave): this system
// represents time with the proleptic Gregorian calendar and never models
// leap seconds (spec.md's calendar kernel Non-goals).
package tzdbtext

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
)

// MinYear and MaxYear are the tzdata sentinels for "minimum"/"maximum"
// (the indefinite past/future), returned verbatim by the year columns so
// the compiler can map them onto zoneinfo's tiny-year sentinels.
const (
	MinYear = -1 << 31
	MaxYear = 1<<31 - 1
)

// File is the result of parsing one or more tzdata files: the Rule, Zone
// and Link lines, each in the order they appear.
type File struct {
	ZoneLines []ZoneLine
	RuleLines []RuleLine
	LinkLines []LinkLine
}

// LinkLine is a parsed Link line: an alias LINK-NAME for the zone named
// TARGET.
type LinkLine struct {
	From string // TARGET
	To   string // LINK-NAME
}

// RuleLine is a parsed Rule line. FROM/TO are plain years, or MinYear/
// MaxYear for "minimum"/"maximum". OnDayOfWeek/OnDayOfMonth already carry
// the ON column resolved the way calendar.ResolveOnDay expects it: a zero
// OnDayOfWeek means OnDayOfMonth is an exact day, a zero OnDayOfMonth means
// "last OnDayOfWeek in the month", otherwise "first OnDayOfWeek on or after
// OnDayOfMonth". AtModifier is already collapsed onto zoneinfo's three-way
// Wall/Standard/UTC distinction; tzdata's own wall-vs-daylight-saving AT
// suffixes both mean Wall here, since nothing downstream distinguishes them.
type RuleLine struct {
	Name         string
	From         int
	To           int
	InMonth      time.Month
	OnDayOfWeek  calendar.DayOfWeek
	OnDayOfMonth uint8
	AtMinutes    int
	AtModifier   zoneinfo.TimeModifier
	SaveMinutes  int
	Letter       string
}

// RulesForm is the form of a zone line's RULES column.
type RulesForm int

const (
	// RulesStandard means standard time always applies (RULES is "-").
	RulesStandard RulesForm = iota
	// RulesName means RULES names a group of RuleLines sharing that name.
	RulesName
	// RulesFixedSave means RULES is a literal SAVE-style offset applied at
	// all times, with no rule table to look up.
	RulesFixedSave
)

// ZoneLine is a parsed Zone line or continuation line. The UNTIL column's
// trailing fields already carry tzdata's documented default ("the earliest
// possible value for the missing fields") when UntilDefined is true, so the
// compiler never has to ask which parts were actually written.
type ZoneLine struct {
	Continuation bool   // true for a continuation line (Name is empty)
	Name         string // empty on a continuation line
	OffsetMinutes int   // STDOFF, in minutes (may be negative)

	RulesForm        RulesForm
	RulesName        string // set when RulesForm == RulesName
	FixedSaveMinutes int    // set when RulesForm == RulesFixedSave

	Format string // FORMAT, with tzdata's "%s" already rewritten to "%"

	UntilDefined    bool
	UntilYear       int
	UntilMonth      time.Month
	UntilDayOfWeek  calendar.DayOfWeek
	UntilDayOfMonth uint8
	UntilMinutes    int
	UntilModifier   zoneinfo.TimeModifier
}

type parseError struct {
	lineNumber int
	line       string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.lineNumber, e.line, e.err)
}

// Parse reads a tzdata text file and returns its Rule, Zone and Link lines.
func Parse(r io.Reader) (File, error) {
	var result File
	scanner := bufio.NewScanner(r)

	var (
		lineNumber           int
		continuationExpected bool
	)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields, err := splitLine(line)
		if err != nil {
			return result, &parseError{lineNumber, line, err}
		}
		if fields == nil {
			continue // comment or blank line
		}

		switch {
		case strings.HasPrefix(line, "Zone") || continuationExpected:
			var zone ZoneLine
			if continuationExpected {
				zone, err = parseZoneContinuationLine(fields)
			} else {
				zone, err = parseZoneLine(fields)
			}
			if err != nil {
				return result, &parseError{lineNumber, line, fmt.Errorf("zone: %w", err)}
			}
			result.ZoneLines = append(result.ZoneLines, zone)
			continuationExpected = zone.UntilDefined
		case strings.HasPrefix(line, "Rule"):
			rule, err := parseRuleLine(fields)
			if err != nil {
				return result, &parseError{lineNumber, line, fmt.Errorf("rule: %w", err)}
			}
			result.RuleLines = append(result.RuleLines, rule)
		case strings.HasPrefix(line, "Link"):
			link, err := parseLinkLine(fields)
			if err != nil {
				return result, &parseError{lineNumber, line, fmt.Errorf("link: %w", err)}
			}
			result.LinkLines = append(result.LinkLines, link)
		case strings.HasPrefix(line, "Leap") || strings.HasPrefix(line, "Expires"):
			continue // leap-second data is out of scope; see package doc
		default:
			return result, &parseError{lineNumber, line, fmt.Errorf("unexpected line")}
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scanner: %w", err)
	}
	return result, nil
}

// splitLine strips an unquoted "#" comment and splits the remainder on
// whitespace. It returns nil for a comment-only or blank line.
func splitLine(line string) ([]string, error) {
	if i := strings.Index(line, "#"); i != -1 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	return strings.Fields(line), nil
}

func parseLinkLine(fields []string) (LinkLine, error) {
	if len(fields) != 3 {
		return LinkLine{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	return LinkLine{From: fields[1], To: fields[2]}, nil
}

// parseRuleLine parses:
//
//	Rule  NAME  FROM  TO  -  IN   ON       AT     SAVE   LETTER/S
//	Rule  US    1967  1973  -  Apr  lastSun  2:00w  1:00d  D
func parseRuleLine(fields []string) (RuleLine, error) {
	if len(fields) != 10 {
		return RuleLine{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	var (
		r    RuleLine
		errs error
		err  error
	)
	r.Name, err = parseName(fields[1])
	errs = errors.Join(errs, wrapField("NAME", fields[1], err))
	r.From, err = parseYear(fields[2])
	errs = errors.Join(errs, wrapField("FROM", fields[2], err))
	r.To, err = parseToYear(fields[3], r.From)
	errs = errors.Join(errs, wrapField("TO", fields[3], err))
	r.InMonth, err = parseMonth(fields[5])
	errs = errors.Join(errs, wrapField("IN", fields[5], err))
	r.OnDayOfWeek, r.OnDayOfMonth, err = parseOnDay(fields[6])
	errs = errors.Join(errs, wrapField("ON", fields[6], err))
	r.AtMinutes, r.AtModifier, err = parseAtTime(fields[7])
	errs = errors.Join(errs, wrapField("AT", fields[7], err))
	r.SaveMinutes, err = parseSave(fields[8])
	errs = errors.Join(errs, wrapField("SAVE", fields[8], err))
	r.Letter, err = parseLetter(fields[9])
	errs = errors.Join(errs, wrapField("LETTER/S", fields[9], err))
	return r, errs
}

func wrapField(name, value string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %q: %w", name, value, err)
}

// parseZoneLine parses:
//
//	Zone  NAME        STDOFF  RULES   FORMAT  [UNTIL]
//	Zone  Asia/Amman  2:00    Jordan  EE%sT   2017 Oct 27 01:00
func parseZoneLine(fields []string) (ZoneLine, error) {
	if len(fields) < 5 || len(fields) > 9 {
		return ZoneLine{}, fmt.Errorf("expected 5-9 fields, got %d", len(fields))
	}
	var (
		z    ZoneLine
		errs error
		err  error
	)
	z.Name, err = parseName(fields[1])
	errs = errors.Join(errs, wrapField("NAME", fields[1], err))
	errs = errors.Join(errs, parseZoneBody(&z, fields[2:]))
	return z, errs
}

// parseZoneContinuationLine parses a continuation line: a zone line with
// NAME and the literal "Zone" omitted, starting where the previous line's
// UNTIL left off.
func parseZoneContinuationLine(fields []string) (ZoneLine, error) {
	if len(fields) < 3 || len(fields) > 7 {
		return ZoneLine{}, fmt.Errorf("expected 3-7 fields, got %d", len(fields))
	}
	var z ZoneLine
	z.Continuation = true
	return z, parseZoneBody(&z, fields)
}

// parseZoneBody parses the STDOFF/RULES/FORMAT/[UNTIL] fields shared by a
// zone line and its continuation lines.
func parseZoneBody(z *ZoneLine, fields []string) error {
	var errs error
	offset, err := parseMinutes(fields[0])
	errs = errors.Join(errs, wrapField("STDOFF", fields[0], err))
	z.OffsetMinutes = offset

	form, name, save, err := parseZoneRules(fields[1])
	errs = errors.Join(errs, wrapField("RULES", fields[1], err))
	z.RulesForm, z.RulesName, z.FixedSaveMinutes = form, name, save

	format, err := parseFormat(fields[2])
	errs = errors.Join(errs, wrapField("FORMAT", fields[2], err))
	z.Format = format

	if len(fields) > 3 {
		until, err := parseUntil(strings.Join(fields[3:], " "))
		errs = errors.Join(errs, wrapField("UNTIL", fields[3], err))
		*z = mergeUntil(*z, until)
	}
	return errs
}

type untilFields struct {
	year       int
	month      time.Month
	dayOfWeek  calendar.DayOfWeek
	dayOfMonth uint8
	minutes    int
	modifier   zoneinfo.TimeModifier
}

func mergeUntil(z ZoneLine, u untilFields) ZoneLine {
	z.UntilDefined = true
	z.UntilYear, z.UntilMonth = u.year, u.month
	z.UntilDayOfWeek, z.UntilDayOfMonth = u.dayOfWeek, u.dayOfMonth
	z.UntilMinutes, z.UntilModifier = u.minutes, u.modifier
	return z
}

// parseUntil parses the UNTIL column: one to four fields YEAR [MONTH [DAY
// [TIME]]], applying tzdata's documented default ("the earliest possible
// value for the missing fields") to any field not written.
func parseUntil(s string) (untilFields, error) {
	u := untilFields{month: time.January, dayOfMonth: 1}
	parts := strings.Fields(s)
	if len(parts) == 0 || len(parts) > 4 {
		return u, fmt.Errorf("expected 1-4 fields, got %d", len(parts))
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return u, fmt.Errorf("year: %w", err)
	}
	u.year = year

	if len(parts) > 1 {
		if u.month, err = parseMonth(parts[1]); err != nil {
			return u, fmt.Errorf("month: %w", err)
		}
	}
	if len(parts) > 2 {
		if u.dayOfWeek, u.dayOfMonth, err = parseOnDay(parts[2]); err != nil {
			return u, fmt.Errorf("day: %w", err)
		}
	}
	if len(parts) > 3 {
		if u.minutes, u.modifier, err = parseAtTime(parts[3]); err != nil {
			return u, fmt.Errorf("time: %w", err)
		}
	}
	return u, nil
}

// parseName validates a NAME column. Only an empty name is rejected; the
// characters of a non-empty name are not checked.
func parseName(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty name")
	}
	return s, nil
}

// parseYear parses a FROM column: a signed year, or "minimum"/"maximum"
// (abbreviated) for the indefinite past/future.
func parseYear(s string) (int, error) {
	if isAbbrev(s, "minimum", "mi") {
		return MinYear, nil
	}
	if isAbbrev(s, "maximum", "ma") {
		return MaxYear, nil
	}
	return strconv.Atoi(s)
}

// parseToYear parses a TO column: like parseYear, plus "only" (abbreviated)
// to repeat the FROM value.
func parseToYear(s string, from int) (int, error) {
	if isAbbrev(s, "only", "o") {
		return from, nil
	}
	return parseYear(s)
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q: too short", s)
	}
	l := strings.ToLower(s)
	for i, name := range [...]string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"} {
		if isAbbrev(l, name, name[:3]) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("month %q: invalid", s)
}

// parseOnDay parses an ON column, resolving it directly into the
// (dayOfWeek, dayOfMonth) pair calendar.ResolveOnDay expects:
//
//	5        -> (0, 5)            the fifth of the month
//	lastSun  -> (Sunday, 0)       the last Sunday in the month
//	Sun>=8   -> (Sunday, 8)       first Sunday on or after the eighth
//
// tzdata's "weekday<=N" form ("last weekday on or before N") has no
// ResolveOnDay counterpart and is rejected; it appears only in a handful of
// pre-1900 historical rules this compiler does not claim to support.
func parseOnDay(s string) (calendar.DayOfWeek, uint8, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return 0, uint8(n), nil
	}
	if strings.HasPrefix(s, "last") {
		day, err := parseWeekday(s[4:])
		if err != nil {
			return 0, 0, err
		}
		return day, 0, nil
	}
	if strings.Contains(s, ">=") {
		parts := strings.SplitN(s, ">=", 2)
		day, err := parseWeekday(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("weekday %q: %w", parts[0], err)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("day of month %q: %w", parts[1], err)
		}
		return day, uint8(n), nil
	}
	if strings.Contains(s, "<=") {
		return 0, 0, fmt.Errorf("weekday<=day is not supported")
	}
	return 0, 0, fmt.Errorf("invalid day %q", s)
}

// parseWeekday returns the ISO weekday (Monday=1..Sunday=7) calendar.DayOfWeek
// for a tzdata weekday name.
func parseWeekday(s string) (calendar.DayOfWeek, error) {
	l := strings.ToLower(s)
	days := [...]struct {
		long string
		min  string
		day  calendar.DayOfWeek
	}{
		{"sunday", "su", calendar.Sunday},
		{"monday", "m", calendar.Monday},
		{"tuesday", "tu", calendar.Tuesday},
		{"wednesday", "w", calendar.Wednesday},
		{"thursday", "th", calendar.Thursday},
		{"friday", "f", calendar.Friday},
		{"saturday", "sa", calendar.Saturday},
	}
	for _, d := range days {
		if isAbbrev(l, d.long, d.min) {
			return d.day, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// parseAtTime parses an AT or UNTIL time column, collapsing tzdata's "w"
// (wall) and default suffix onto zoneinfo.Wall, "s" onto zoneinfo.Standard,
// and "u"/"g"/"z" onto zoneinfo.UTC.
func parseAtTime(s string) (int, zoneinfo.TimeModifier, error) {
	for suffix, mod := range map[string]zoneinfo.TimeModifier{
		"s": zoneinfo.Standard, "u": zoneinfo.UTC, "g": zoneinfo.UTC, "z": zoneinfo.UTC,
	} {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			minutes, err := parseMinutes(strings.TrimSuffix(s, suffix))
			return minutes, mod, err
		}
	}
	minutes, err := parseMinutes(strings.TrimSuffix(s, "w"))
	return minutes, zoneinfo.Wall, err
}

// parseSave parses a SAVE column into signed minutes. tzdata's "s"/"d"
// suffix only documents whether the offset is standard or daylight time,
// a distinction nothing downstream needs: the rule's Letter and the sign
// of the resulting delta already carry what matters.
func parseSave(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, "s"), "d")
	return parseMinutes(s)
}

// parseZoneRules parses a zone line's RULES column: "-" for standard time
// always, a SAVE-style literal offset, or (falling through) the name of a
// group of RuleLines resolved later by the compiler.
func parseZoneRules(s string) (RulesForm, string, int, error) {
	if s == "-" {
		return RulesStandard, "", 0, nil
	}
	if save, err := parseSave(s); err == nil {
		return RulesFixedSave, "", save, nil
	}
	return RulesName, s, 0, nil
}

// parseFormat parses a FORMAT column, rewriting tzdata's "%s" letter
// placeholder to this system's single-"%" convention
// (zoneinfo.RenderFormat); "%z" passes through unchanged.
func parseFormat(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty format")
	}
	if s == "%z" {
		return s, nil
	}
	if strings.Contains(s, "%s") {
		if strings.Count(s, "%") != 1 {
			return "", fmt.Errorf("more than one placeholder")
		}
		return strings.Replace(s, "%s", "%", 1), nil
	}
	return s, nil
}

func parseLetter(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty letter")
	}
	if s == "-" {
		return "", nil
	}
	return s, nil
}

// parseMinutes parses a tzdata time-of-day/offset field ("2", "2:00",
// "01:28:14", "-2:30", "-") into a signed minute count. Fractional seconds
// are accepted for compatibility with real historical LMT entries (e.g.
// Europe/Zurich's "0:29:45.50" BMT offset) but dropped, and the result is
// rounded to the nearest minute (30 seconds or more rounds up).
func parseMinutes(s string) (int, error) {
	if s == "-" {
		return 0, nil
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.Split(s, ":")
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("hours: %w", err)
	}
	var minutes, seconds int
	if len(parts) > 1 {
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("minutes: %w", err)
		}
	}
	if len(parts) > 2 {
		secPart := strings.SplitN(parts[2], ".", 2)[0]
		if seconds, err = strconv.Atoi(secPart); err != nil {
			return 0, fmt.Errorf("seconds: %w", err)
		}
	}

	total := hours*60 + minutes
	if seconds >= 30 {
		total++ // round to the nearest minute
	}
	if negative {
		total = -total
	}
	return total, nil
}

func isAbbrev(s string, long string, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
