package ganttcalendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

func ticketRow(id int64, assign, closeDay, complete string) map[string]any {
	return map[string]any{
		"id":          id,
		"type":        "task",
		"summary":     "Ticket summary",
		"owner":       "alice",
		"description": "Some *markdown*",
		"status":      "assigned",
		"resolution":  nil,
		"priority":    "major",
		"milestone":   "",
		"component":   "",
		"due_assign":  assign,
		"due_close":   closeDay,
		"complete":    complete,
	}
}

func findCell(v *CalendarView, iso string) *CalendarCell {
	for i := range v.Weeks {
		for j := range v.Weeks[i] {
			if v.Weeks[i][j].MDay.ISO == iso {
				return &v.Weeks[i][j]
			}
		}
	}
	return nil
}

func TestCalendarView_Month(t *testing.T) {
	host := newFakeHost()
	host.config["ganttcalendar.first_day"] = "1"
	host.tickets = []map[string]any{
		ticketRow(7, "2024-02-05", "2024-02-07", "10"),
		ticketRow(8, "2024-02-20", "2024-02-20", ""),
	}
	host.milestones = []map[string]any{
		{"name": "1.0", "due": "2024-02-20", "completed": "", "description": "First release"},
		{"name": "someday", "due": "", "completed": "", "description": ""},
	}
	p := newTestPlugin(t, host, clock(2024, 2, 14))

	v, err := p.CalendarView(context.Background(), plugin.HTTPArgs{
		User:  "alice",
		Query: map[string]string{"year": "2024", "month": "2"},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeMonth, v.Mode)
	assert.Equal(t, "2024-01-29", v.First.ISO)
	assert.Equal(t, "2024-03-03", v.Last.ISO)
	assert.Equal(t, "2024-01-01", v.Prev.ISO)
	assert.Equal(t, "2024-03-01", v.Next.ISO)
	assert.Equal(t, "February", v.MonthName)
	require.Len(t, v.Weeks, 5)
	for _, w := range v.Weeks {
		assert.Len(t, w, 7)
	}
	require.Len(t, v.Weekdays, 7)
	assert.Equal(t, "Monday", v.Weekdays[0].Name)
	assert.True(t, v.Weekdays[6].Weekend)

	from := findCell(v, "2024-02-05")
	require.NotNil(t, from)
	require.Len(t, from.Tickets, 1)
	assert.Equal(t, "from", from.Tickets[0].Arrow)
	assert.Equal(t, ImagePath+"arrow_from.png", from.Tickets[0].ImgURL)
	assert.Equal(t, "/ticket/7", from.Tickets[0].URL)
	assert.Equal(t, 10, from.Tickets[0].Ticket.Complete)

	to := findCell(v, "2024-02-07")
	require.Len(t, to.Tickets, 1)
	assert.Equal(t, "to", to.Tickets[0].Arrow)

	both := findCell(v, "2024-02-20")
	require.Len(t, both.Tickets, 1)
	assert.Equal(t, "both", both.Tickets[0].Arrow)
	require.Len(t, both.Milestones, 1)
	assert.Equal(t, "1.0", both.Milestones[0].Milestone.Name)
	assert.Equal(t, ImagePath+"package.png", both.Milestones[0].ImgURL)
	assert.Equal(t, "/milestone/1.0", both.Milestones[0].URL)

	assert.Equal(t, "today", findCell(v, "2024-02-14").Class)
	assert.Equal(t, "holiday", findCell(v, "2024-02-17").Class)
	assert.Equal(t, "active", findCell(v, "2024-02-15").Class)
	assert.False(t, findCell(v, "2024-01-29").InMonth)
	assert.True(t, findCell(v, "2024-02-01").InMonth)

	require.Len(t, v.Milestones, 2)
	assert.NotNil(t, v.Milestones[0].Due)
	assert.NotEmpty(t, v.Milestones[0].DueLabel)
	assert.Nil(t, v.Milestones[1].Due)

	_, args := host.ticketQuery(t)
	assert.Equal(t, []any{0}, args)
}

func TestCalendarView_Filters(t *testing.T) {
	host := newFakeHost()
	p := newTestPlugin(t, host, clock(2024, 2, 14))

	_, err := p.CalendarView(context.Background(), plugin.HTTPArgs{
		User: "bob",
		Query: map[string]string{
			"show_my_ticket":     "on",
			"selected_milestone": "1.0",
			"project":            "3",
		},
	})
	require.NoError(t, err)

	query, args := host.ticketQuery(t)
	assert.Contains(t, query, "t.owner = ?")
	assert.Contains(t, query, "t.milestone = ?")
	assert.Equal(t, 3, args[0])
	assert.Contains(t, args, "bob")
	assert.Contains(t, args, "1.0")
}

func TestCalendarView_Week(t *testing.T) {
	host := newFakeHost()
	host.config["ganttcalendar.first_day"] = "1"
	p := newTestPlugin(t, host, clock(2024, 3, 1))

	v, err := p.CalendarView(context.Background(), plugin.HTTPArgs{
		Query: map[string]string{"mode": "week", "year": "2024", "month": "2", "day": "14"},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeWeek, v.Mode)
	assert.Equal(t, "2024-02-12", v.First.ISO)
	assert.Equal(t, "2024-02-18", v.Last.ISO)
	assert.Equal(t, "2024-02-14", v.Current.ISO)
	assert.Equal(t, "2024-02-07", v.Prev.ISO)
	assert.Equal(t, "2024-02-21", v.Next.ISO)
	require.Len(t, v.Weeks, 1)
	assert.Len(t, v.Weeks[0], 7)
}

func TestCalendarView_WeeklyDefaultUsesToday(t *testing.T) {
	host := newFakeHost()
	host.config["ganttcalendar.show_weekly_view"] = "true"
	p := newTestPlugin(t, host, clock(2024, 3, 13))

	v, err := p.CalendarView(context.Background(), plugin.HTTPArgs{})
	require.NoError(t, err)

	assert.Equal(t, ModeWeek, v.Mode)
	assert.Equal(t, "2024-03-10", v.First.ISO)
	assert.Equal(t, "2024-03-16", v.Last.ISO)
}

func TestCalendarView_NormalizesMonth(t *testing.T) {
	p := newTestPlugin(t, newFakeHost(), clock(2024, 3, 13))

	v, err := p.CalendarView(context.Background(), plugin.HTTPArgs{
		Query: map[string]string{"year": "2024", "month": "13"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", v.Current.ISO)
	assert.Equal(t, time.January, time.Month(v.Current.Month))
}

func TestCalendar_CallRendersTemplate(t *testing.T) {
	p := newTestPlugin(t, newFakeHost(), clock(2024, 3, 13))

	resp, err := call(t, p, FnCalendar, plugin.HTTPArgs{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, CalendarTemplate, resp.Template)
	assert.Equal(t, 200, resp.Status)
}
