package timecalc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/tick/internal/timecalc"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 0m"},
		{61, "1h 1m"},
		{520, "8h 40m"},
		{-90, "-1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatMinutes(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatHHMM(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0:00"},
		{61, "1:01"},
		{785, "13:05"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		got := timecalc.FormatHHMM(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatHHMM(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"09:00", 9 * time.Hour, false},
		{"09:00:01", 9*time.Hour + time.Second, false},
		{" 17:30 ", 17*time.Hour + 30*time.Minute, false},
		{"25:00", 0, true},
		{"", 0, true},
		{"nine", 0, true},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCombine(t *testing.T) {
	got, err := timecalc.Combine("2024-01-15", "08:50", time.UTC)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	want := time.Date(2024, 1, 15, 8, 50, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine = %v, want %v", got, want)
	}

	if _, err := timecalc.Combine("2024-13-15", "08:50", time.UTC); !errors.Is(err, timecalc.ErrInvalidDate) {
		t.Errorf("Combine: expected ErrInvalidDate for invalid month, got %v", err)
	}
	if _, err := timecalc.Combine("2024-01-15", "8h50", time.UTC); !errors.Is(err, timecalc.ErrInvalidTime) {
		t.Errorf("Combine: expected ErrInvalidTime for invalid time, got %v", err)
	}
}

func TestCombineKeepsWallClockOnDSTChange(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	for _, date := range []string{"2024-03-31", "2024-10-27"} {
		for _, clock := range []string{"08:50", "17:30:15"} {
			got, err := timecalc.Combine(date, clock, berlin)
			if err != nil {
				t.Fatalf("Combine(%s, %s): %v", date, clock, err)
			}
			if got.Format("2006-01-02") != date {
				t.Errorf("Combine(%s, %s) date = %s", date, clock, got.Format("2006-01-02"))
			}
			want, _ := timecalc.ParseClock(clock)
			if timecalc.ClockOf(got) != want {
				t.Errorf("Combine(%s, %s) = %s, want wall clock %s", date, clock, got.Format("15:04:05"), clock)
			}
		}
	}
}

func TestClockOfIgnoresDate(t *testing.T) {
	a := time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)
	if timecalc.ClockOf(a) != timecalc.ClockOf(b) {
		t.Errorf("ClockOf differs for same time of day: %v vs %v", timecalc.ClockOf(a), timecalc.ClockOf(b))
	}
}

func TestWholeMinutes(t *testing.T) {
	if got := timecalc.WholeMinutes(90*time.Second + 59*time.Second); got != 2 {
		t.Errorf("WholeMinutes(149s) = %d, want 2", got)
	}
	if got := timecalc.WholeMinutes(-time.Minute); got != 0 {
		t.Errorf("WholeMinutes(-1m) = %d, want 0", got)
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestMonthRange(t *testing.T) {
	first, last := timecalc.MonthRange(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	if !first.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthRange first = %v", first)
	}
	if !last.Equal(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("MonthRange last = %v", last)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestDays(t *testing.T) {
	from := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
	got := timecalc.Days(from, to)
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(got) != len(want) {
		t.Fatalf("Days = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Days[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
