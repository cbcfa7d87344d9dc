package zoneinfo

import (
	"fmt"
	"strings"
)

// RenderFormat expands a ZoneEra.Format string against a committed
// transition's letter and UTC offset (spec.md §4.3 "Format rendering").
//
// Three shapes are supported:
//   - a literal abbreviation with no placeholder, returned unchanged;
//   - a single '%' placeholder, replaced once with letter (which may be
//     empty, e.g. "E%T" + "" => "ET"... though in practice letter is "S" or
//     "D", e.g. "E%T" + "S" => "EST");
//   - the literal format "%z", replaced with the signed numeric offset.
//
// A format containing more than one '%' is rejected as a table error. A
// single '%' is always treated as the letter placeholder, whatever follows
// it.
func RenderFormat(format, letter string, offsetMinutes int) (string, error) {
	if format == "%z" {
		return formatNumericOffset(offsetMinutes), nil
	}
	idx := strings.IndexByte(format, '%')
	if idx == -1 {
		return format, nil
	}
	if strings.IndexByte(format[idx+1:], '%') != -1 {
		return "", fmt.Errorf("zoneinfo: format %q contains more than one '%%' placeholder", format)
	}
	return format[:idx] + letter + format[idx+1:], nil
}

// formatNumericOffset renders minutes as ±HHMM. Offsets in this system are
// whole minutes, so no ±HHMMSS form is ever produced.
func formatNumericOffset(totalMinutes int) string {
	sign := "+"
	m := totalMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	hours := m / 60
	minutes := m % 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}
