package validation

import (
	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneprocessor"
)

// ValidationItem is one sampled instant's expected or actual zone
// resolution, mirroring the source's DstValidationType.h tuple:
// (epochSeconds, year, month, day, hour, minute, second, offsetMinutes,
// deltaMinutes, abbreviation). It is deliberately a plain comparable value
// type so two independently produced slices of it can be diffed with
// go-cmp, the way this system's other golden-value tests compare results.
type ValidationItem struct {
	EpochSeconds calendar.EpochSeconds
	Year         int16
	Month        uint8
	Day          uint8
	Hour         uint8
	Minute       uint8
	Second       uint8
	OffsetMinutes int
	DeltaMinutes  int
	Abbrev        string
}

// NewValidationItem decomposes t into a ValidationItem using the calendar
// kernel for the civil fields and p (already bound to the target zone) for
// the offset/delta/abbreviation fields.
func NewValidationItem(p *zoneprocessor.Processor, t calendar.EpochSeconds) (ValidationItem, error) {
	date, tod := calendar.FromEpochSeconds(t)
	tr, err := p.OffsetForEpochSeconds(t)
	if err != nil {
		return ValidationItem{}, err
	}
	return ValidationItem{
		EpochSeconds:  t,
		Year:          date.Year,
		Month:         date.Month,
		Day:           date.Day,
		Hour:          tod.Hour,
		Minute:        tod.Minute,
		Second:        tod.Second,
		OffsetMinutes: tr.OffsetMinutes,
		DeltaMinutes:  tr.DeltaMinutes,
		Abbrev:        tr.Abbrev,
	}, nil
}

// GenerateItems samples p (already bound to the target zone) on the 1st,
// 8th, 15th and 22nd of every month at 12:00 UTC across [startYear,
// untilYear), producing one ValidationItem per sample. This mirrors the source's validation test
// generators, which sample densely enough to catch every transition
// without evaluating every second in multi-century ranges.
func GenerateItems(p *zoneprocessor.Processor, startYear, untilYear int16) ([]ValidationItem, error) {
	var items []ValidationItem
	for year := startYear; year < untilYear; year++ {
		for month := uint8(1); month <= 12; month++ {
			for _, day := range [...]uint8{1, 8, 15, 22} {
				if !calendar.IsValidDate(year, month, day) {
					continue
				}
				t := calendar.ToEpochSeconds(
					calendar.LocalDate{Year: year, Month: month, Day: day},
					calendar.LocalTime{Hour: 12},
				)
				item, err := NewValidationItem(p, t)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
		}
	}
	return items, nil
}

// CompareItems reports the indices at which want and got disagree. Both
// slices are expected to have been generated over the same instants (e.g.
// both via GenerateItems with identical arguments against two independent
// implementations or two versions of the same table); a length mismatch is
// reported as a single diff at index -1.
func CompareItems(want, got []ValidationItem) []ItemDiff {
	if len(want) != len(got) {
		return []ItemDiff{{Index: -1, Want: ValidationItem{}, Got: ValidationItem{}}}
	}
	var diffs []ItemDiff
	for i := range want {
		if want[i] != got[i] {
			diffs = append(diffs, ItemDiff{Index: i, Want: want[i], Got: got[i]})
		}
	}
	return diffs
}

// ItemDiff is one disagreement found by CompareItems.
type ItemDiff struct {
	Index int
	Want  ValidationItem
	Got   ValidationItem
}
