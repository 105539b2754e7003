// Package timeline computes the visible date windows for the calendar and
// gantt views and the navigation targets around them.
//
// All dates are calendar days represented as time.Time values at midnight
// UTC. Use Day to normalize arbitrary timestamps before comparing them.
package timeline

import (
	"time"
)

// DateLayout is the ISO-8601 date format used for storage, SQL parameters
// and query strings.
const DateLayout = "2006-01-02"

// Zoom limits for the gantt view, in months.
const (
	MinZoom     = 1
	MaxZoom     = 6
	DefaultZoom = 3
)

// Window is an inclusive range of calendar days.
type Window struct {
	First time.Time
	Last  time.Time
}

// Days returns the number of days in the window, both ends included.
func (w Window) Days() int {
	return DaysBetween(w.First, w.Last) + 1
}

// Contains reports whether d falls on a day inside the window.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(w.First) && !d.After(w.Last)
}

// Dates returns every day of the window in order.
func (w Window) Dates() []time.Time {
	n := w.Days()
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for d := w.First; !d.After(w.Last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Date builds a calendar day at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar day (in t's own location) at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// DaysBetween returns the signed number of days from -> to.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)) / (24 * time.Hour))
}

// ParseDate parses an ISO-8601 date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// FormatDate formats d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// AddMonths returns the first day of the month that lies months after
// (year, month). Month values outside 1..12 are normalized with carry, so
// AddMonths(2024, 13, 0) is 2025-01-01 and AddMonths(2024, 0, 0) is
// 2023-12-01.
func AddMonths(year int, month time.Month, months int) time.Time {
	index := year*12 + int(month) - 1 + months
	y := floorDiv(index, 12)
	m := index - y*12
	return Date(y, time.Month(m+1), 1)
}

// MonthStart returns the first day of the given month.
func MonthStart(year int, month time.Month) time.Time {
	return AddMonths(year, month, 0)
}

// MonthEnd returns the last day of the given month.
func MonthEnd(year int, month time.Month) time.Time {
	return AddMonths(year, month, 1).AddDate(0, 0, -1)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
