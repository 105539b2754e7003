package ganttcalendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/ganttcalendar/internal/gantt"
	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

func TestGanttView_Bars(t *testing.T) {
	host := newFakeHost()
	host.tickets = []map[string]any{
		ticketRow(1, "2024-03-01", "2024-03-10", "50"),
		ticketRow(2, "2024-01-01", "2024-01-31", "0"),
	}
	host.components = []map[string]any{{"name": "backend"}, {"name": "ui"}}
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{
		User:  "alice",
		Query: map[string]string{"year": "2024", "month": "3", "zoom": "1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", v.FirstDate.ISO)
	assert.Equal(t, "2024-03-31", v.LastDate.ISO)
	assert.Equal(t, 31, v.DaysTerm)
	assert.Equal(t, 1, v.Zoom)
	assert.Equal(t, 3, v.Normal)
	assert.Equal(t, "2024-03-05", v.BaseDay.ISO)
	assert.Equal(t, "2024-02-01", v.Prev.ISO)
	assert.Equal(t, "2024-04-01", v.Next.ISO)
	assert.Equal(t, []string{"backend", "ui"}, v.Components)
	assert.Empty(t, v.Warnings)
	assert.Nil(t, v.SumEstimatedHours)
	assert.Len(t, v.Days, 31)
	require.Len(t, v.Months, 1)
	assert.Equal(t, "March", v.Months[0].Name)
	assert.Len(t, v.MonthTable, 12)

	require.Len(t, v.Tickets, 1, "tickets wholly outside the window are not listed")
	tk := v.Tickets[0]
	assert.Equal(t, &gantt.Segment{Start: 0, End: 10}, tk.All)
	assert.Equal(t, &gantt.Segment{Start: 0, End: 5}, tk.Done)
	assert.Equal(t, &gantt.Segment{Start: 5, End: 5}, tk.Late)
	assert.Equal(t, &gantt.Segment{Start: 5, End: 10}, tk.Todo)
	assert.Equal(t, models.UngroupedName, tk.Milestone)
	assert.Equal(t, models.UngroupedName, tk.Component)
	assert.Equal(t, "2024-03-01", tk.DueAssign.ISO)
	assert.Equal(t, "/ticket/1", tk.URL)

	_, args := host.ticketQuery(t)
	assert.Equal(t, []any{0}, args)
}

func TestGanttView_Options(t *testing.T) {
	host := newFakeHost()
	host.config["ganttcalendar.first_day"] = "0"
	host.config["ganttcalendar.show_ticket_summary"] = "true"
	host.config["ganttcalendar.default_zoom_mode"] = "2"
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{
		User: "alice",
		Query: map[string]string{
			"zoom":               "42",
			"baseday":            "not-a-date",
			"sorted_field":       "id; DROP TABLE ticket",
			"hide_closed_ticket": "1",
			"hide_ticket_status": "on",
			"show_my_ticket":     "true",
			"selected_component": "ui",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, v.Zoom)
	assert.Equal(t, 2, v.Normal)
	assert.Equal(t, "2024-03-05", v.BaseDay.ISO)
	assert.Equal(t, "milestone", v.SortedField)
	assert.False(t, v.ShowClosedTicket)
	assert.False(t, v.ShowTicketStatus)
	assert.True(t, v.ShowTicketSummary)
	assert.Equal(t, 12, v.TicketMargin)
	assert.Equal(t, 6, v.FirstWeekday)
	assert.Equal(t, "2024-04-30", v.LastDate.ISO)
	assert.Len(t, v.Months, 2)
	assert.Equal(t, 31, v.Months[1].Offset)

	query, args := host.ticketQuery(t)
	assert.NotContains(t, query, "DROP")
	assert.Contains(t, query, "t.status <> ?")
	assert.Contains(t, args, "closed")
	assert.Contains(t, args, "alice")
	assert.Contains(t, args, "ui")
}

func TestGanttView_MilestoneMarkersInsideWindow(t *testing.T) {
	host := newFakeHost()
	host.milestones = []map[string]any{
		{"name": "start", "due": "2024-03-01", "completed": "0", "description": ""},
		{"name": "mid", "due": "2024-03-15", "completed": "1", "description": ""},
		{"name": "edge", "due": "2024-04-01", "completed": "0", "description": ""},
		{"name": "later", "due": "2024-04-02", "completed": "0", "description": ""},
		{"name": "earlier", "due": "2024-02-29", "completed": "0", "description": ""},
		{"name": "someday", "due": "", "completed": "", "description": ""},
	}
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{
		Query: map[string]string{"year": "2024", "month": "3", "zoom": "1"},
	})
	require.NoError(t, err)
	require.Len(t, v.Milestones, 6)

	offsets := map[string]int{}
	for _, m := range v.Milestones {
		if m.OnChart {
			offsets[m.Name] = m.Offset
		}
	}
	assert.Equal(t, map[string]int{"start": 0, "mid": 14, "edge": 31}, offsets)
}

func TestGanttView_FilterQueryKeepsFilters(t *testing.T) {
	host := newFakeHost()
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{
		User: "alice",
		Query: map[string]string{
			"show_my_ticket":     "on",
			"hide_closed_ticket": "on",
			"selected_milestone": "v1.0 beta",
			"selected_component": "ui&api",
			"sorted_field":       "owner",
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"hide_closed_ticket=on&selected_component=ui%26api&selected_milestone=v1.0+beta&show_my_ticket=on&sorted_field=owner",
		v.FilterQuery)

	v, err = p.GanttView(context.Background(), plugin.HTTPArgs{})
	require.NoError(t, err)
	assert.Equal(t, "sorted_field=milestone", v.FilterQuery)
}

func TestGanttView_SummaryCanBeTurnedOff(t *testing.T) {
	host := newFakeHost()
	host.config["ganttcalendar.show_ticket_summary"] = "true"
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{
		Query: map[string]string{"show_ticket_summary": "false"},
	})
	require.NoError(t, err)
	assert.False(t, v.ShowTicketSummary)
	assert.Zero(t, v.TicketMargin)
}

func TestGanttView_TimeTrackingAndMissingComplete(t *testing.T) {
	host := newFakeHost()
	host.config["ticket_custom"] = "estimatedhours=float,totalhours=float"
	row := ticketRow(3, "2024-03-01", "2024-03-02", "")
	row["estimatedhours"] = "4.5"
	row["totalhours"] = "2"
	row2 := ticketRow(4, "2024-03-03", "2024-03-04", "")
	row2["estimatedhours"] = "1.5"
	row2["totalhours"] = nil
	host.tickets = []map[string]any{row, row2}
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{})
	require.NoError(t, err)

	assert.Equal(t, []string{WarningCompleteUndefined}, v.Warnings)
	require.NotNil(t, v.SumEstimatedHours)
	assert.InDelta(t, 6.0, *v.SumEstimatedHours, 1e-9)
	assert.InDelta(t, 2.0, v.SumTotalHours, 1e-9)

	var warned bool
	for _, l := range host.logs {
		if l.level == "warn" && l.message == WarningCompleteUndefined {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestGanttView_SkipsUnusableTickets(t *testing.T) {
	host := newFakeHost()
	host.tickets = []map[string]any{
		ticketRow(5, "2024-03-10", "2024-03-01", "0"),
		ticketRow(6, "garbage", "2024-03-01", "0"),
		ticketRow(7, "2024-03-01", "2024-03-02", "0"),
	}
	p := newTestPlugin(t, host, clock(2024, 3, 5))

	v, err := p.GanttView(context.Background(), plugin.HTTPArgs{})
	require.NoError(t, err)

	require.Len(t, v.Tickets, 1)
	assert.Equal(t, 7, v.Tickets[0].ID)

	var skipped []any
	for _, l := range host.logs {
		if l.level == "warn" && l.fields != nil {
			if id, ok := l.fields["ticket"]; ok {
				skipped = append(skipped, id)
			}
		}
	}
	assert.ElementsMatch(t, []any{5, 6}, skipped)
}

func TestGantt_CallRendersTemplate(t *testing.T) {
	p := newTestPlugin(t, newFakeHost(), clock(2024, 3, 13))

	resp, err := call(t, p, FnGantt, plugin.HTTPArgs{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, GanttTemplate, resp.Template)
	assert.Equal(t, "Gantt chart", resp.Title)
}
