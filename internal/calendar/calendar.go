// Package calendar works with local calendar dates stored as YYYY-MM-DD
// strings. Dates are always built from wall-clock components of a time in
// the caller's location and never converted through UTC.
package calendar

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Month is a calendar month without a day component
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t in t's own location
func MonthOf(t time.Time) Month {
	y, m, _ := t.Date()
	return Month{Year: y, Month: m}
}

// Today returns t's local calendar date as YYYY-MM-DD
func Today(t time.Time) string {
	y, m, d := t.Date()
	return Format(y, m, d)
}

// Format zero-pads a calendar date as YYYY-MM-DD
func Format(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// Parse splits a YYYY-MM-DD string into its components
func Parse(date string) (year int, month time.Month, day int, err error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid calendar date %q: %w", date, err)
	}
	year, month, day = t.Date()
	return year, month, day, nil
}

// Valid reports whether date is a well-formed YYYY-MM-DD calendar date
func Valid(date string) bool {
	_, _, _, err := Parse(date)
	return err == nil
}

// MonthOfDate returns the month a YYYY-MM-DD string falls in
func MonthOfDate(date string) (Month, error) {
	y, m, _, err := Parse(date)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: y, Month: m}, nil
}

// Key returns the month as YYYY-MM
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Contains reports whether the YYYY-MM-DD date lies in m
func (m Month) Contains(date string) bool {
	key := m.Key()
	return len(date) == len(layout) && date[:len(key)] == key && date[len(key)] == '-'
}

// Before reports whether m is strictly earlier than other
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Days returns the number of days in the month
func (m Month) Days() int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the given day of the month, clamped to the last valid day
func (m Month) Date(day int) string {
	if day < 1 {
		day = 1
	}
	if last := m.Days(); day > last {
		day = last
	}
	return Format(m.Year, m.Month, day)
}

// AddMonths moves n months forward (or backward for negative n)
func (m Month) AddMonths(n int) Month {
	total := m.Year*12 + int(m.Month) - 1 + n
	return Month{Year: total / 12, Month: time.Month(total%12 + 1)}
}

// AddMonthsClamped shifts a YYYY-MM-DD date by n months keeping its
// day-of-month where possible and clamping to month end otherwise.
func AddMonthsClamped(date string, n int) (string, error) {
	y, mo, d, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Month{Year: y, Month: mo}.AddMonths(n).Date(d), nil
}

// YearsBetween returns the number of whole years from the date `from` to `to`
func YearsBetween(from, to string) (int, error) {
	fy, fm, fd, err := Parse(from)
	if err != nil {
		return 0, err
	}
	ty, tm, td, err := Parse(to)
	if err != nil {
		return 0, err
	}
	years := ty - fy
	if tm < fm || (tm == fm && td < fd) {
		years--
	}
	return years, nil
}
