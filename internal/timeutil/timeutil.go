// Package timeutil provides the calendar-date and clock-time arithmetic the
// board is built on. Calendar dates are time.Time values truncated to local
// midnight; clock times are "HH:MM" strings on a 15-minute grid.
package timeutil

import (
	"fmt"
	"time"
)

// DayFormat is the ISO-8601 calendar date layout used in event documents.
const DayFormat = "2006-01-02"

// SlotMinutes is the granularity of the board's time grid.
const SlotMinutes = 15

// ParseDate parses an ISO calendar date into midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DayFormat)
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseClock parses an "HH:MM" wall-clock string into its minute of day.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// ClockString renders a minute of day as "HH:MM".
func ClockString(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Slots returns all 96 fifteen-minute slot labels of a day, "00:00"
// through "23:45".
func Slots() []string {
	slots := make([]string, 0, 24*60/SlotMinutes)
	for m := 0; m < 24*60; m += SlotMinutes {
		slots = append(slots, ClockString(m))
	}
	return slots
}

// At combines a calendar date (any time on that day) with an "HH:MM" clock
// string into a concrete instant in the date's location.
func At(date time.Time, clock string) (time.Time, error) {
	minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	day := Midnight(date)
	return day.Add(time.Duration(minute) * time.Minute), nil
}

// Window is an inclusive range of calendar days, both bounds at midnight.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the window covering the calendar month containing t.
func MonthWindow(t time.Time) Window {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return Window{Start: first, End: last}
}

// Contains reports whether the calendar day of t lies within the window.
func (w Window) Contains(t time.Time) bool {
	d := Midnight(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// ContainsDate reports whether the ISO date string lies within the window.
// Malformed dates are treated as outside.
func (w Window) ContainsDate(date string, loc *time.Location) bool {
	d, err := ParseDate(date, loc)
	if err != nil {
		return false
	}
	return w.Contains(d)
}

// FormatDay renders a date for a day-view header, e.g. "Monday, July 1".
func FormatDay(t time.Time) string {
	return t.Format("Monday, January 2")
}
