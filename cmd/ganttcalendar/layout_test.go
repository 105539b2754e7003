package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goatkit/ganttcalendar/internal/gantt"
)

var layoutNow = time.Date(2024, 2, 6, 15, 0, 0, 0, time.UTC)

func TestWriteLayout_Calendar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLayout(&buf, layoutParams{view: "calendar", month: "2024-02", firstDay: 1}, layoutNow))

	var got calendarLayout
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-01-29", got.First)
	assert.Equal(t, "2024-03-03", got.Last)
	assert.Equal(t, "2024-01-01", got.Prev)
	assert.Equal(t, "2024-03-01", got.Next)
	require.Len(t, got.Weeks, 5)
	assert.Equal(t, "2024-02-05", got.Weeks[1][0])
}

func TestWriteLayout_CalendarDefaultsToCurrentMonth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLayout(&buf, layoutParams{view: "calendar"}, layoutNow))

	var got calendarLayout
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-01-28", got.First)
	assert.Equal(t, "2024-03-02", got.Last)
}

func TestWriteLayout_Gantt(t *testing.T) {
	var buf bytes.Buffer
	p := layoutParams{
		view:    "gantt",
		month:   "2024-02",
		zoom:    1,
		baseDay: "2024-02-06",
		tickets: []string{"2024-02-05,2024-02-07,50", "2024-01-20,2024-02-02"},
	}
	require.NoError(t, writeLayout(&buf, p, layoutNow))

	var got ganttLayout
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-02-01", got.First)
	assert.Equal(t, "2024-02-29", got.Last)
	assert.Equal(t, 29, got.DaysTerm)
	require.Len(t, got.Tickets, 2)

	first := got.Tickets[0]
	assert.Equal(t, 50, first.Complete)
	assert.Equal(t, &gantt.Segment{Start: 4, End: 7}, first.All)
	assert.Equal(t, &gantt.Segment{Start: 4, End: 5.5}, first.Done)
	assert.Equal(t, &gantt.Segment{Start: 5.5, End: 6}, first.Late)
	assert.Equal(t, &gantt.Segment{Start: 6, End: 7}, first.Todo)

	second := got.Tickets[1]
	assert.Equal(t, &gantt.Segment{Start: 0, End: 2}, second.All)
	assert.Equal(t, &gantt.Segment{Start: 0, End: 2}, second.Late)
	assert.Nil(t, second.Todo)
}

func TestWriteLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    layoutParams
		want string
	}{
		{"bad view", layoutParams{view: "list"}, "--view"},
		{"bad month", layoutParams{view: "calendar", month: "2024/02"}, "--month"},
		{"bad first day", layoutParams{view: "calendar", firstDay: 7}, "--first-day"},
		{"bad baseday", layoutParams{view: "gantt", baseDay: "06.02.2024"}, "--baseday"},
		{"ticket fields", layoutParams{view: "gantt", tickets: []string{"2024-02-05"}}, "assign,close"},
		{"ticket order", layoutParams{view: "gantt", tickets: []string{"2024-02-07,2024-02-05"}}, "before assign"},
		{"ticket complete", layoutParams{view: "gantt", tickets: []string{"2024-02-05,2024-02-07,120"}}, "0..100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeLayout(&buf, tt.p, layoutNow)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", logLevel("debug").String())
	assert.Equal(t, "WARN", logLevel("Warning").String())
	assert.Equal(t, "ERROR", logLevel("error").String())
	assert.Equal(t, "INFO", logLevel("").String())
}
