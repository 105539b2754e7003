// Package gantt positions the bars of the gantt chart.
//
// Every ticket is drawn with up to four segments measured in days from
// the first day of the visible window:
//
//	all   the whole scheduled span, assign day to close day inclusive
//	done  the leading part of all proportional to the completion percent
//	late  incomplete work scheduled before the base day
//	todo  incomplete work scheduled from the base day on
//
// Segments are clipped to the window independently. A segment that lies
// entirely outside the window is reported as nil.
package gantt

import (
	"time"

	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// Kind names a bar segment.
type Kind string

// Segment kinds.
const (
	KindDone Kind = "done"
	KindLate Kind = "late"
	KindTodo Kind = "todo"
	KindAll  Kind = "all"
)

// Kinds lists the segment kinds in drawing order.
var Kinds = []Kind{KindDone, KindLate, KindTodo, KindAll}

// Segment is a half-open [Start, End) range in day units relative to the
// window's first day.
type Segment struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Width returns the length of the segment in days.
func (s Segment) Width() float64 {
	return s.End - s.Start
}

// Bars holds the clipped segments of one ticket. Nil means absent.
type Bars struct {
	Done *Segment `json:"done,omitempty" yaml:"done,omitempty"`
	Late *Segment `json:"late,omitempty" yaml:"late,omitempty"`
	Todo *Segment `json:"todo,omitempty" yaml:"todo,omitempty"`
	All  *Segment `json:"all,omitempty" yaml:"all,omitempty"`
}

// Segments returns the bars keyed by kind, absent segments included as nil.
func (b Bars) Segments() map[Kind]*Segment {
	return map[Kind]*Segment{
		KindDone: b.Done,
		KindLate: b.Late,
		KindTodo: b.Todo,
		KindAll:  b.All,
	}
}

// Frame is the reference a ticket is laid out against: the window start,
// its length in days and the day that separates late from todo work.
type Frame struct {
	First    time.Time
	DaysTerm int
	BaseDay  time.Time
}

// NewFrame builds a frame for a gantt window.
func NewFrame(w timeline.GanttWindow, baseDay time.Time) Frame {
	return Frame{First: w.First, DaysTerm: w.DaysTerm, BaseDay: timeline.Day(baseDay)}
}

// base is the offset of the end of the base day.
func (f Frame) base() float64 {
	return float64(timeline.DaysBetween(f.First, f.BaseDay) + 1)
}

// Layout computes the bars of a ticket scheduled from assign to close
// (inclusive) with the given completion percent. Percentages outside
// 0..100 are clamped. Callers must pass assign <= close.
func (f Frame) Layout(assign, close time.Time, complete int) Bars {
	if complete < 0 {
		complete = 0
	}
	if complete > 100 {
		complete = 100
	}

	allStart := float64(timeline.DaysBetween(f.First, assign))
	allEnd := float64(timeline.DaysBetween(f.First, close) + 1)
	doneEnd := allStart + (allEnd-allStart)*float64(complete)/100.0
	base := f.base()

	var late, todo *Segment
	// Order matters: a span ending by the base day is late even when done
	// reaches past base.
	switch {
	case allEnd <= base:
		late = &Segment{Start: doneEnd, End: allEnd}
	case doneEnd <= base && base < allEnd:
		late = &Segment{Start: doneEnd, End: base}
		todo = &Segment{Start: base, End: allEnd}
	default:
		todo = &Segment{Start: doneEnd, End: allEnd}
	}

	term := float64(f.DaysTerm)
	return Bars{
		Done: Clip(&Segment{Start: allStart, End: doneEnd}, term),
		Late: Clip(late, term),
		Todo: Clip(todo, term),
		All:  Clip(&Segment{Start: allStart, End: allEnd}, term),
	}
}

// Clip restricts s to [0, term]. It returns nil when s is nil or lies
// entirely outside the range, and a new segment otherwise.
func Clip(s *Segment, term float64) *Segment {
	if s == nil || s.Start > term || s.End < 0 {
		return nil
	}
	out := *s
	if out.Start < 0 {
		out.Start = 0
	}
	if out.End > term {
		out.End = term
	}
	return &out
}
