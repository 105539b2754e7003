package timeline

import "time"

// Weekday normalizes a configured first-day value (0=Sunday .. 6=Saturday).
// Values outside that range wrap around.
func Weekday(n int) time.Weekday {
	n %= 7
	if n < 0 {
		n += 7
	}
	return time.Weekday(n)
}

// MondayIndex converts a weekday to a Monday-based index (Monday=0 .. Sunday=6),
// the numbering templates use for their column headers.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// CalendarWindow returns the month grid for (year, month): the first of
// the month moved back to firstDay and the last of the month moved forward
// to complete its week. The result always spans whole weeks.
func CalendarWindow(year int, month time.Month, firstDay time.Weekday) Window {
	start := MonthStart(year, month)
	end := MonthEnd(start.Year(), start.Month())

	lead := (int(start.Weekday()) - int(firstDay) + 7) % 7
	lastDay := (int(firstDay) + 6) % 7
	trail := (lastDay - int(end.Weekday()) + 7) % 7

	return Window{
		First: start.AddDate(0, 0, -lead),
		Last:  end.AddDate(0, 0, trail),
	}
}

// WeekWindow returns the seven days of the month grid that contain ref. The
// month-aligned grid start is advanced in whole weeks until the week holds
// ref; a ref before the grid yields the grid's first week.
func WeekWindow(year int, month time.Month, firstDay time.Weekday, ref time.Time) Window {
	start := CalendarWindow(year, month, firstDay).First
	ref = Day(ref)
	if ref.After(start) {
		weeks := DaysBetween(start, ref) / 7
		start = start.AddDate(0, 0, weeks*7)
	}
	return Window{First: start, Last: start.AddDate(0, 0, 6)}
}

// Weekdays returns the seven weekdays of a grid row starting at firstDay.
func Weekdays(firstDay time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(firstDay) + i) % 7)
	}
	return out
}
