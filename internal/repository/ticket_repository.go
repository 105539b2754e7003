package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/database"
	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// StatusClosed is the ticket status excluded by TicketQuery.ExcludeClosed.
const StatusClosed = "closed"

// DefaultSortField orders gantt rows when no sort field is requested.
const DefaultSortField = "milestone"

var sortKeys = map[string]func(a, b models.Ticket) int{
	"milestone":  func(a, b models.Ticket) int { return strings.Compare(a.Milestone, b.Milestone) },
	"component":  func(a, b models.Ticket) int { return strings.Compare(a.Component, b.Component) },
	"owner":      func(a, b models.Ticket) int { return strings.Compare(a.Owner, b.Owner) },
	"priority":   func(a, b models.Ticket) int { return strings.Compare(a.Priority, b.Priority) },
	"status":     func(a, b models.Ticket) int { return strings.Compare(a.Status, b.Status) },
	"type":       func(a, b models.Ticket) int { return strings.Compare(a.Type, b.Type) },
	"id":         func(a, b models.Ticket) int { return cmp.Compare(a.ID, b.ID) },
	"summary":    func(a, b models.Ticket) int { return strings.Compare(a.Summary, b.Summary) },
	"due_assign": func(a, b models.Ticket) int { return a.DueAssign.Compare(b.DueAssign) },
	"due_close":  func(a, b models.Ticket) int { return a.DueClose.Compare(b.DueClose) },
}

// SortFields returns the accepted sort field names.
func SortFields() []string {
	return []string{"milestone", "component", "owner", "priority", "status", "type", "id", "summary", "due_assign", "due_close"}
}

// ResolveSortField returns field when it is allowed and DefaultSortField
// otherwise.
func ResolveSortField(field string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	if _, ok := sortKeys[field]; ok {
		return field
	}
	return DefaultSortField
}

// TicketQuery selects the tickets shown in a view.
type TicketQuery struct {
	ProjectID     int
	Window        timeline.Window
	Owner         string
	ExcludeClosed bool
	Milestone     string
	Component     string
	SortField     string
}

// Rejection describes a row that was left out because its stored data
// could not be used.
type Rejection struct {
	TicketID int
	Field    string
	Value    string
	Reason   string
}

// TicketResult is the outcome of a ticket listing.
type TicketResult struct {
	Tickets  []models.Ticket
	Rejected []Rejection
}

// TicketRepository loads tickets with their schedule custom fields.
type TicketRepository struct {
	q      database.Querier
	fields *fields.Table
}

// NewTicketRepository creates a repository reading through q and converting
// custom field values with tbl.
func NewTicketRepository(q database.Querier, tbl *fields.Table) *TicketRepository {
	return &TicketRepository{q: q, fields: tbl}
}

const ticketSelect = `
		SELECT t.id, t.type, t.summary, t.owner, t.description, t.status,
		       t.resolution, t.priority, t.milestone, t.component,
		       a.value AS due_assign, c.value AS due_close,
		       cmp.value AS complete, est.value AS estimatedhours, tot.value AS totalhours
		FROM ticket t
		JOIN ticket_custom a ON a.ticket = t.id AND a.name = 'due_assign'
		JOIN ticket_custom c ON c.ticket = t.id AND c.name = 'due_close'
		LEFT JOIN ticket_custom cmp ON cmp.ticket = t.id AND cmp.name = 'complete'
		LEFT JOIN ticket_custom est ON est.ticket = t.id AND est.name = 'estimatedhours'
		LEFT JOIN ticket_custom tot ON tot.ticket = t.id AND tot.name = 'totalhours'`

// ListForGantt returns the tickets whose schedule overlaps the window,
// ordered by the requested sort field and then by assign date.
//
// Stored dates are not necessarily ISO text, so the window is applied to
// the parsed dates rather than in SQL.
func (r *TicketRepository) ListForGantt(ctx context.Context, tq TicketQuery) (*TicketResult, error) {
	res, err := r.list(ctx, tq)
	if err != nil {
		return nil, err
	}
	w := tq.Window
	res.Tickets = slices.DeleteFunc(res.Tickets, func(t models.Ticket) bool {
		return t.DueAssign.After(w.Last) || t.DueClose.Before(w.First)
	})

	byField := sortKeys[ResolveSortField(tq.SortField)]
	slices.SortStableFunc(res.Tickets, func(a, b models.Ticket) int {
		if c := byField(a, b); c != 0 {
			return c
		}
		return byAssign(a, b)
	})
	return res, nil
}

// ListForCalendar returns the tickets assigned or due inside the window,
// ordered by assign date.
func (r *TicketRepository) ListForCalendar(ctx context.Context, tq TicketQuery) (*TicketResult, error) {
	res, err := r.list(ctx, tq)
	if err != nil {
		return nil, err
	}
	res.Tickets = slices.DeleteFunc(res.Tickets, func(t models.Ticket) bool {
		return !tq.Window.Contains(t.DueAssign) && !tq.Window.Contains(t.DueClose)
	})
	slices.SortStableFunc(res.Tickets, byAssign)
	return res, nil
}

func byAssign(a, b models.Ticket) int {
	if c := a.DueAssign.Compare(b.DueAssign); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r *TicketRepository) list(ctx context.Context, tq TicketQuery) (*TicketResult, error) {
	// Tickets with both schedule fields blank are unscheduled, not broken.
	conds := []string{"t.project_id = ?", "(a.value <> '' OR c.value <> '')"}
	args := []any{tq.ProjectID}

	if tq.Owner != "" {
		conds = append(conds, "t.owner = ?")
		args = append(args, tq.Owner)
	}
	if tq.ExcludeClosed {
		conds = append(conds, "t.status <> ?")
		args = append(args, StatusClosed)
	}
	if tq.Milestone != "" {
		conds = append(conds, "t.milestone = ?")
		args = append(args, tq.Milestone)
	}
	if tq.Component != "" {
		conds = append(conds, "t.component = ?")
		args = append(args, tq.Component)
	}

	query := ticketSelect + "\n\t\tWHERE " + strings.Join(conds, " AND ") + "\n\t\tORDER BY t.id"

	rows, err := r.q.DBQuery(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	res := &TicketResult{Tickets: make([]models.Ticket, 0, len(rows))}
	for _, row := range rows {
		t, rej := r.scanTicket(row)
		if rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Tickets = append(res.Tickets, t)
	}
	return res, nil
}

func (r *TicketRepository) scanTicket(row map[string]any) (models.Ticket, *Rejection) {
	t := models.Ticket{
		ID:          convert.ToInt(row["id"], 0),
		Type:        convert.ToString(row["type"], ""),
		Summary:     convert.ToString(row["summary"], ""),
		Owner:       convert.ToString(row["owner"], ""),
		Description: convert.ToString(row["description"], ""),
		Status:      convert.ToString(row["status"], ""),
		Resolution:  convert.ToString(row["resolution"], ""),
		Priority:    convert.ToString(row["priority"], ""),
		Milestone:   convert.ToString(row["milestone"], ""),
		Component:   convert.ToString(row["component"], ""),
	}

	var err error
	if t.DueAssign, err = r.fields.Date(fields.DueAssign, row["due_assign"]); err != nil {
		return t, &Rejection{TicketID: t.ID, Field: fields.DueAssign, Value: convert.ToString(row["due_assign"], ""), Reason: err.Error()}
	}
	if t.DueClose, err = r.fields.Date(fields.DueClose, row["due_close"]); err != nil {
		return t, &Rejection{TicketID: t.ID, Field: fields.DueClose, Value: convert.ToString(row["due_close"], ""), Reason: err.Error()}
	}
	if !t.Scheduled() {
		return t, &Rejection{
			TicketID: t.ID,
			Field:    fields.DueClose,
			Value:    convert.ToString(row["due_close"], ""),
			Reason:   "close date is missing or before assign date",
		}
	}

	t.Complete = r.fields.Int(fields.Complete, row["complete"], 0)
	if r.fields.TimeTracking() {
		est := r.fields.Float(fields.EstimatedHours, row["estimatedhours"], 0)
		tot := r.fields.Float(fields.TotalHours, row["totalhours"], 0)
		t.EstimatedHours, t.TotalHours = &est, &tot
	}
	return t, nil
}
