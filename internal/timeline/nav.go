package timeline

import "time"

// Nav holds the day a view is showing and its previous/next targets.
type Nav struct {
	Current time.Time
	Prev    time.Time
	Next    time.Time
}

// MonthNav navigates by whole months. Used by the monthly calendar and by
// the gantt chart regardless of its zoom.
func MonthNav(year int, month time.Month) Nav {
	return Nav{
		Current: MonthStart(year, month),
		Prev:    AddMonths(year, month, -1),
		Next:    AddMonths(year, month, 1),
	}
}

// WeekNav navigates the weekly calendar by seven days around ref.
func WeekNav(ref time.Time) Nav {
	ref = Day(ref)
	return Nav{
		Current: ref,
		Prev:    ref.AddDate(0, 0, -7),
		Next:    ref.AddDate(0, 0, 7),
	}
}
