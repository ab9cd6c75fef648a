package timecalc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors returned by Combine.
var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time of day")
)

// FormatMinutes formats whole minutes as a human-readable string like "1h 40m" or "45m".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

// FormatHHMM formats whole minutes as H:MM, the way payroll sheets show hours.
func FormatHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// ParseClock parses a time-of-day written as HH:MM or HH:MM:SS and returns
// the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q (want HH:MM or HH:MM:SS)", s)
}

// Combine joins a YYYY-MM-DD date and an HH:MM[:SS] time into the instant
// showing that wall-clock time in loc. Times inside a daylight-saving gap are
// normalised forward by time.Date.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (want YYYY-MM-DD)", ErrInvalidDate, date)
	}
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidTime, err)
	}
	h, m, sec := int(offset/time.Hour), int(offset%time.Hour/time.Minute), int(offset%time.Minute/time.Second)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, sec, 0, loc), nil
}

// ClockOf returns the time-of-day of t as an offset from midnight, ignoring
// the calendar date.
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// WholeMinutes truncates d to whole minutes; negative durations yield 0.
func WholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = StartOfDay(monday)
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := EndOfDay(first.AddDate(0, 1, -1))
	return first, last
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Days returns the YYYY-MM-DD labels of every day in [from, to].
func Days(from, to time.Time) []string {
	var days []string
	for d := StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// ParseDay parses a YYYY-MM-DD flag value in loc, returning the start of that day.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}
