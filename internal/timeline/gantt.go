package timeline

import "time"

// GanttWindow is the visible range of the gantt chart: Zoom consecutive
// months starting at the first of a month.
type GanttWindow struct {
	Window
	Zoom int
	// DaysTerm is the exact number of days from First to the month boundary
	// after Zoom months. Bar offsets are clipped to [0, DaysTerm].
	DaysTerm int
}

// NewGanttWindow computes the gantt window for (year, month) and a zoom
// that has already been clamped with ClampZoom.
func NewGanttWindow(year int, month time.Month, zoom int) GanttWindow {
	first := MonthStart(year, month)
	boundary := AddMonths(first.Year(), first.Month(), zoom)
	return GanttWindow{
		Window: Window{
			First: first,
			Last:  boundary.AddDate(0, 0, -1),
		},
		Zoom:     zoom,
		DaysTerm: DaysBetween(first, boundary),
	}
}

// Months returns the first day of every month covered by the window.
func (g GanttWindow) Months() []time.Time {
	out := make([]time.Time, 0, g.Zoom)
	for i := 0; i < g.Zoom; i++ {
		out = append(out, AddMonths(g.First.Year(), g.First.Month(), i))
	}
	return out
}

// ClampZoom returns zoom when it is a valid month count, otherwise def.
// An invalid def falls back to DefaultZoom.
func ClampZoom(zoom, def int) int {
	if zoom >= MinZoom && zoom <= MaxZoom {
		return zoom
	}
	if def >= MinZoom && def <= MaxZoom {
		return def
	}
	return DefaultZoom
}
