package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/gantt"
	"github.com/goatkit/ganttcalendar/internal/timeline"
)

type layoutParams struct {
	view     string
	month    string
	firstDay int
	zoom     int
	baseDay  string
	tickets  []string
}

var layoutFlags layoutParams

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the date window and bar geometry for a month as YAML",
	Example: `  ganttcalendar layout --view calendar --month 2024-02 --first-day 1
  ganttcalendar layout --view gantt --month 2024-02 --zoom 1 --baseday 2024-02-06 \
      --ticket 2024-02-05,2024-02-07,50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := layoutFlags
		if !cmd.Flags().Changed("first-day") {
			p.firstDay = cfg.GanttCalendar.FirstDay
		}
		if !cmd.Flags().Changed("zoom") {
			p.zoom = cfg.GanttCalendar.DefaultZoomMode
		}
		return writeLayout(cmd.OutOrStdout(), p, time.Now())
	},
}

func init() {
	f := layoutCmd.Flags()
	f.StringVar(&layoutFlags.view, "view", "calendar", "calendar or gantt")
	f.StringVar(&layoutFlags.month, "month", "", "month as YYYY-MM (default current month)")
	f.IntVar(&layoutFlags.firstDay, "first-day", 0, "first day of the week, 0=Sunday .. 6=Saturday")
	f.IntVar(&layoutFlags.zoom, "zoom", timeline.DefaultZoom, "gantt months to show")
	f.StringVar(&layoutFlags.baseDay, "baseday", "", "gantt base day as YYYY-MM-DD (default today)")
	f.StringArrayVar(&layoutFlags.tickets, "ticket", nil, "gantt ticket as assign,close[,complete]")
	rootCmd.AddCommand(layoutCmd)
}

type calendarLayout struct {
	First string     `yaml:"first"`
	Last  string     `yaml:"last"`
	Prev  string     `yaml:"prev"`
	Next  string     `yaml:"next"`
	Weeks [][]string `yaml:"weeks"`
}

type ganttLayout struct {
	First    string       `yaml:"first"`
	Last     string       `yaml:"last"`
	DaysTerm int          `yaml:"days_term"`
	Zoom     int          `yaml:"zoom"`
	BaseDay  string       `yaml:"baseday"`
	Tickets  []ticketBars `yaml:"tickets,omitempty"`
}

type ticketBars struct {
	Assign     string `yaml:"assign"`
	Close      string `yaml:"close"`
	Complete   int    `yaml:"complete"`
	gantt.Bars `yaml:",inline"`
}

func writeLayout(w io.Writer, p layoutParams, now time.Time) error {
	month := timeline.MonthStart(now.Year(), now.Month())
	if p.month != "" {
		m, err := time.Parse("2006-01", p.month)
		if err != nil {
			return fmt.Errorf("invalid --month %q: expected YYYY-MM", p.month)
		}
		month = m
	}
	if p.firstDay < 0 || p.firstDay > 6 {
		return fmt.Errorf("invalid --first-day %d: expected 0..6", p.firstDay)
	}

	var out any
	switch p.view {
	case "calendar":
		out = calendarOf(month, time.Weekday(p.firstDay))
	case "gantt":
		g, err := ganttOf(month, p, now)
		if err != nil {
			return err
		}
		out = g
	default:
		return fmt.Errorf("invalid --view %q: expected calendar or gantt", p.view)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return enc.Close()
}

func calendarOf(month time.Time, firstDay time.Weekday) calendarLayout {
	win := timeline.CalendarWindow(month.Year(), month.Month(), firstDay)
	nav := timeline.MonthNav(month.Year(), month.Month())
	out := calendarLayout{
		First: timeline.FormatDate(win.First),
		Last:  timeline.FormatDate(win.Last),
		Prev:  timeline.FormatDate(nav.Prev),
		Next:  timeline.FormatDate(nav.Next),
	}
	var week []string
	for _, d := range win.Dates() {
		week = append(week, timeline.FormatDate(d))
		if len(week) == 7 {
			out.Weeks = append(out.Weeks, week)
			week = nil
		}
	}
	return out
}

func ganttOf(month time.Time, p layoutParams, now time.Time) (ganttLayout, error) {
	zoom := timeline.ClampZoom(p.zoom, timeline.DefaultZoom)
	win := timeline.NewGanttWindow(month.Year(), month.Month(), zoom)

	base := timeline.Day(now)
	if p.baseDay != "" {
		d, err := timeline.ParseDate(p.baseDay)
		if err != nil {
			return ganttLayout{}, fmt.Errorf("invalid --baseday %q: %w", p.baseDay, err)
		}
		base = d
	}
	frame := gantt.NewFrame(win, base)

	out := ganttLayout{
		First:    timeline.FormatDate(win.First),
		Last:     timeline.FormatDate(win.Last),
		DaysTerm: win.DaysTerm,
		Zoom:     zoom,
		BaseDay:  timeline.FormatDate(base),
	}
	for _, spec := range p.tickets {
		tb, assign, closeDay, err := parseTicketSpec(spec)
		if err != nil {
			return ganttLayout{}, err
		}
		tb.Bars = frame.Layout(assign, closeDay, tb.Complete)
		out.Tickets = append(out.Tickets, tb)
	}
	return out, nil
}

func parseTicketSpec(spec string) (tb ticketBars, assign, closeDay time.Time, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return tb, assign, closeDay, fmt.Errorf("invalid --ticket %q: expected assign,close[,complete]", spec)
	}
	if assign, err = fields.ParseDate(parts[0]); err != nil {
		return tb, assign, closeDay, fmt.Errorf("invalid --ticket %q: %w", spec, err)
	}
	if closeDay, err = fields.ParseDate(parts[1]); err != nil {
		return tb, assign, closeDay, fmt.Errorf("invalid --ticket %q: %w", spec, err)
	}
	if closeDay.Before(assign) {
		return tb, assign, closeDay, fmt.Errorf("invalid --ticket %q: close is before assign", spec)
	}
	tb.Assign = timeline.FormatDate(assign)
	tb.Close = timeline.FormatDate(closeDay)
	if len(parts) == 3 {
		n, convErr := strconv.Atoi(strings.TrimSpace(parts[2]))
		if convErr != nil || n < 0 || n > 100 {
			return tb, assign, closeDay, fmt.Errorf("invalid --ticket %q: complete must be 0..100", spec)
		}
		tb.Complete = n
	}
	return tb, assign, closeDay, nil
}
