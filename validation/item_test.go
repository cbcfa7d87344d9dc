package validation

import (
	"testing"

	"github.com/go-acetime/acetime/calendar"
	"github.com/go-acetime/acetime/zoneinfo"
	"github.com/go-acetime/acetime/zoneprocessor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func kolkataZone() *zoneinfo.ZoneInfo {
	return &zoneinfo.ZoneInfo{
		Name: "Asia/Kolkata",
		Eras: []zoneinfo.ZoneEra{
			{OffsetCode: 22, Format: "IST", UntilYear: zoneinfo.MaxUntilYear},
		},
	}
}

func TestNewValidationItem_FixedOffsetZone(t *testing.T) {
	p := zoneprocessor.NewProcessor(nil)
	require.NoError(t, p.Bind(kolkataZone()))

	t0 := calendar.ToEpochSeconds(calendar.LocalDate{Year: 2024, Month: 6, Day: 15}, calendar.LocalTime{Hour: 12})
	item, err := NewValidationItem(p, t0)
	require.NoError(t, err)
	require.Equal(t, 330, item.OffsetMinutes)
	require.Equal(t, 0, item.DeltaMinutes)
	require.Equal(t, "IST", item.Abbrev)
	require.Equal(t, int16(2024), item.Year)
}

func TestGenerateItems_DeterministicAcrossRuns(t *testing.T) {
	p1 := zoneprocessor.NewProcessor(nil)
	require.NoError(t, p1.Bind(kolkataZone()))
	p2 := zoneprocessor.NewProcessor(nil)
	require.NoError(t, p2.Bind(kolkataZone()))

	items1, err := GenerateItems(p1, 2020, 2022)
	require.NoError(t, err)
	items2, err := GenerateItems(p2, 2020, 2022)
	require.NoError(t, err)

	if diff := cmp.Diff(items1, items2); diff != "" {
		t.Errorf("GenerateItems() not deterministic (-run1 +run2):\n%s", diff)
	}
}

func TestCompareItems_FindsSingleDisagreement(t *testing.T) {
	p := zoneprocessor.NewProcessor(nil)
	require.NoError(t, p.Bind(kolkataZone()))
	want, err := GenerateItems(p, 2020, 2021)
	require.NoError(t, err)

	got := make([]ValidationItem, len(want))
	copy(got, want)
	got[3].OffsetMinutes = 0 // simulate a table regression

	diffs := CompareItems(want, got)
	require.Len(t, diffs, 1)
	require.Equal(t, 3, diffs[0].Index)
}

func TestCompareItems_LengthMismatch(t *testing.T) {
	diffs := CompareItems(make([]ValidationItem, 2), make([]ValidationItem, 3))
	require.Len(t, diffs, 1)
	require.Equal(t, -1, diffs[0].Index)
}
