package calendar

import "testing"

func TestToEpochDays_KnownValues(t *testing.T) {
	tests := []struct {
		year  int16
		month uint8
		day   uint8
		want  EpochDays
	}{
		{2000, 1, 1, 0},
		{1970, 1, 1, -10957},
		{2100, 2, 28, 36584},
	}
	for _, tt := range tests {
		got := ToEpochDays(tt.year, tt.month, tt.day)
		if got != tt.want {
			t.Errorf("ToEpochDays(%d,%d,%d) = %d, want %d", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestEpochDaysRoundTrip(t *testing.T) {
	for year := int16(1872); year < 2087; year++ {
		for _, month := range []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} {
			for _, day := range []uint8{1, 15, DaysInMonth(year, month)} {
				days := ToEpochDays(year, month, day)
				gy, gm, gd := FromEpochDays(days)
				if gy != year || gm != month || gd != day {
					t.Fatalf("round trip failed for %04d-%02d-%02d: got %04d-%02d-%02d",
						year, month, day, gy, gm, gd)
				}
			}
		}
	}
}

func TestEpochSecondsRoundTrip(t *testing.T) {
	dates := []LocalDate{
		{2000, 1, 1}, {1931, 12, 14}, {2068, 1, 18}, {1999, 12, 31}, {2038, 1, 20},
	}
	times := []LocalTime{{0, 0, 0}, {23, 59, 59}, {12, 0, 0}, {1, 2, 3}}
	for _, d := range dates {
		for _, tm := range times {
			s := ToEpochSeconds(d, tm)
			gd, gt := FromEpochSeconds(s)
			if gd != d || gt != tm {
				t.Fatalf("round trip failed for %+v %+v: got %+v %+v", d, tm, gd, gt)
			}
		}
	}
}

func TestFromEpochSeconds_NegativeFloors(t *testing.T) {
	// -1 second is 1999-12-31T23:59:59, not an error or truncation toward zero.
	d, tm := FromEpochSeconds(-1)
	want := LocalDate{1999, 12, 31}
	if d != want || tm != (LocalTime{23, 59, 59}) {
		t.Fatalf("FromEpochSeconds(-1) = %+v %+v, want %+v {23 59 59}", d, tm, want)
	}
}

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		y       int16
		m, d    uint8
		isValid bool
	}{
		{2024, 2, 29, true},  // leap year
		{2023, 2, 29, false}, // not a leap year
		{2000, 2, 29, true},  // divisible by 400
		{1900, 2, 29, false}, // divisible by 100, not 400
		{2024, 4, 31, false}, // April has 30 days
		{2024, 13, 1, false},
		{2024, 0, 1, false},
		{2024, 1, 0, false},
	}
	for _, c := range cases {
		if got := IsValidDate(c.y, c.m, c.d); got != c.isValid {
			t.Errorf("IsValidDate(%d,%d,%d) = %v, want %v", c.y, c.m, c.d, got, c.isValid)
		}
	}
}

func TestResolveOnDay(t *testing.T) {
	// Last Sunday of March 2018 (EU spring-forward rule) is the 25th.
	if got := ResolveOnDay(2018, 3, Sunday, 0); got != 25 {
		t.Errorf("last Sunday of March 2018 = %d, want 25", got)
	}
	// First Sunday on or after March 8, 2020 (US spring-forward rule) is the 8th itself.
	if got := ResolveOnDay(2020, 3, Sunday, 8); got != 8 {
		t.Errorf("Sun>=8 of March 2020 = %d, want 8", got)
	}
	// First Sunday on or after November 1, 2020 (US fall-back rule) is the 1st.
	if got := ResolveOnDay(2020, 11, Sunday, 1); got != 1 {
		t.Errorf("Sun>=1 of November 2020 = %d, want 1", got)
	}
	// Exact day of month, dayOfWeek == 0.
	if got := ResolveOnDay(2020, 11, 0, 15); got != 15 {
		t.Errorf("exact day = %d, want 15", got)
	}
}

func TestDayOfWeekOf(t *testing.T) {
	// 2000-01-01 was a Saturday.
	if got := DayOfWeekOf(0); got != Saturday {
		t.Errorf("DayOfWeekOf(0) = %v, want Saturday", got)
	}
	// 2018-03-11 was a Sunday.
	days := ToEpochDays(2018, 3, 11)
	if got := DayOfWeekOf(days); got != Sunday {
		t.Errorf("DayOfWeekOf(2018-03-11) = %v, want Sunday", got)
	}
}
