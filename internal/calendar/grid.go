package calendar

import (
	"time"

	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// Arrow tags a ticket on a day cell.
type Arrow string

// Arrow kinds.
const (
	ArrowFrom Arrow = "from"
	ArrowTo   Arrow = "to"
	ArrowBoth Arrow = "both"
)

// Icon returns the image name used for the arrow.
func (a Arrow) Icon() string {
	switch a {
	case ArrowFrom:
		return "arrow_from.png"
	case ArrowTo:
		return "arrow_to.png"
	default:
		return "arrow_bw.png"
	}
}

// MilestoneIcon is drawn next to milestones on their due day.
const MilestoneIcon = "package.png"

// TicketMark is a ticket placed on a day.
type TicketMark struct {
	Ticket models.Ticket
	Arrow  Arrow
}

// Cell is one day of the grid.
type Cell struct {
	Date       time.Time
	Kind       Kind
	Tickets    []TicketMark
	Milestones []models.Milestone
}

// Week is seven consecutive cells starting on the configured first weekday.
type Week []Cell

// Build lays out the window as weeks of cells. Tickets without a valid
// schedule and milestones without a due date are ignored. Within a cell,
// tickets and milestones keep their input order.
func Build(w timeline.Window, today time.Time, c Classifier, tickets []models.Ticket, milestones []models.Milestone) []Week {
	marks := make(map[time.Time][]TicketMark)
	for _, t := range tickets {
		if !t.Scheduled() {
			continue
		}
		from, to := timeline.Day(t.DueAssign), timeline.Day(t.DueClose)
		if from.Equal(to) {
			marks[from] = append(marks[from], TicketMark{Ticket: t, Arrow: ArrowBoth})
			continue
		}
		marks[from] = append(marks[from], TicketMark{Ticket: t, Arrow: ArrowFrom})
		marks[to] = append(marks[to], TicketMark{Ticket: t, Arrow: ArrowTo})
	}

	due := make(map[time.Time][]models.Milestone)
	for _, m := range milestones {
		if m.Due == nil {
			continue
		}
		d := timeline.Day(*m.Due)
		due[d] = append(due[d], m)
	}

	dates := w.Dates()
	weeks := make([]Week, 0, (len(dates)+6)/7)
	var week Week
	for _, d := range dates {
		week = append(week, Cell{
			Date:       d,
			Kind:       c.Classify(d, today),
			Tickets:    marks[d],
			Milestones: due[d],
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}
