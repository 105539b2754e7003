package ganttcalendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/gantt"
	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/internal/repository"
	"github.com/goatkit/ganttcalendar/internal/timeline"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// GanttTemplate renders GanttView.
const GanttTemplate = "ganttcalendar/gantt.pongo2"

// WarningCompleteUndefined is shown when completion cannot be tracked.
const WarningCompleteUndefined = "'complete' field is not defined. Please, check your configuration."

// summaryMargin is the vertical room reserved for bar captions.
const summaryMargin = 12

// GanttView is the data behind the gantt chart.
type GanttView struct {
	Project           int             `json:"project"`
	BaseDay           DateInfo        `json:"baseday"`
	Current           DateInfo        `json:"current"`
	Prev              DateInfo        `json:"prev"`
	Next              DateInfo        `json:"next"`
	MonthTable        []string        `json:"month_tbl"`
	ShowMyTicket      bool            `json:"show_my_ticket"`
	ShowClosedTicket  bool            `json:"show_closed_ticket"`
	SortedField       string          `json:"sorted_field"`
	SortFields        []string        `json:"sort_fields"`
	ShowTicketSummary bool            `json:"show_ticket_summary"`
	ShowTicketStatus  bool            `json:"show_ticket_status"`
	TicketMargin      int             `json:"ti_mrgn"`
	SelectedMilestone string          `json:"selected_milestone"`
	SelectedComponent string          `json:"selected_component"`
	FilterQuery       string          `json:"filter_query"`
	Tickets           []GanttTicket   `json:"tickets"`
	Milestones        []MilestoneInfo `json:"milestones"`
	Components        []string        `json:"components"`
	TimeTracking      bool            `json:"time_tracking"`
	SumEstimatedHours *float64        `json:"sum_estimatedhours"`
	SumTotalHours     float64         `json:"sum_totalhours"`
	FirstDate         DateInfo        `json:"first_date"`
	LastDate          DateInfo        `json:"last_date"`
	DaysTerm          int             `json:"days_term"`
	FirstWeekday      int             `json:"first_wkday"`
	Normal            int             `json:"normal"`
	Zoom              int             `json:"zoom"`
	ZoomModes         []int           `json:"zoom_modes"`
	Months            []GanttMonth    `json:"months"`
	Days              []GanttDay      `json:"days"`
	Warnings          []string        `json:"warnings"`
}

// GanttMonth is a header spanning the days of one month.
type GanttMonth struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Days   int    `json:"days"`
}

// GanttDay is one column of the chart.
type GanttDay struct {
	Offset int    `json:"offset"`
	Day    int    `json:"day"`
	Class  string `json:"cls"`
}

// GanttTicket is a chart row. Segments that fall outside the window are
// absent.
type GanttTicket struct {
	models.Ticket
	DueAssign DateInfo `json:"due_assign"`
	DueClose  DateInfo `json:"due_close"`
	URL       string   `json:"url"`
	gantt.Bars
}

func (p *Plugin) handleGantt(ctx context.Context, raw json.RawMessage) (*plugin.HTTPResponse, error) {
	req, err := parseRequest(raw)
	if err != nil {
		return nil, err
	}
	if err := p.requireView(ctx, req.User); err != nil {
		return nil, err
	}
	view, err := p.GanttView(ctx, req.HTTPArgs)
	if err != nil {
		return nil, err
	}
	return &plugin.HTTPResponse{Status: http.StatusOK, Template: GanttTemplate, Title: "Gantt chart", Data: view}, nil
}

// GanttView builds the gantt chart for the query in args. The caller is
// responsible for the permission check.
func (p *Plugin) GanttView(ctx context.Context, args plugin.HTTPArgs) (*GanttView, error) {
	req := request{HTTPArgs: args}
	today := p.today()
	project := req.project(p.opts.DefaultProject)
	tbl := p.fieldTable()

	y, m := req.month(today)
	zoom := timeline.ClampZoom(req.int("zoom", p.opts.DefaultZoomMode), p.opts.DefaultZoomMode)
	window := timeline.NewGanttWindow(y, m, zoom)
	nav := timeline.MonthNav(y, m)
	baseDay := req.date("baseday", today)

	showSummary := p.opts.ShowTicketSummary
	if v := req.str("show_ticket_summary"); v != "" {
		showSummary = parseBool(v, showSummary)
	}

	view := &GanttView{
		Project:           project,
		BaseDay:           dateInfo(baseDay),
		Current:           dateInfo(nav.Current),
		Prev:              dateInfo(nav.Prev),
		Next:              dateInfo(nav.Next),
		MonthTable:        MonthNames,
		ShowMyTicket:      req.flag("show_my_ticket"),
		ShowClosedTicket:  !req.flag("hide_closed_ticket"),
		SortedField:       repository.ResolveSortField(req.str("sorted_field")),
		SortFields:        repository.SortFields(),
		ShowTicketSummary: showSummary,
		ShowTicketStatus:  !req.flag("hide_ticket_status"),
		SelectedMilestone: req.str("selected_milestone"),
		SelectedComponent: req.str("selected_component"),
		FirstDate:         dateInfo(window.First),
		LastDate:          dateInfo(window.Last),
		DaysTerm:          window.DaysTerm,
		FirstWeekday:      timeline.MondayIndex(p.opts.FirstDay),
		Normal:            p.opts.DefaultZoomMode,
		Zoom:              zoom,
		Warnings:          []string{},
	}
	if showSummary {
		view.TicketMargin = summaryMargin
	}
	view.FilterQuery = filterQuery(view, req.str("show_ticket_summary"))
	for z := timeline.MinZoom; z <= timeline.MaxZoom; z++ {
		view.ZoomModes = append(view.ZoomModes, z)
	}
	for _, first := range window.Months() {
		view.Months = append(view.Months, GanttMonth{
			Year:   first.Year(),
			Month:  int(first.Month()),
			Name:   MonthNames[first.Month()-1],
			Offset: timeline.DaysBetween(window.First, first),
			Days:   timeline.MonthEnd(first.Year(), first.Month()).Day(),
		})
	}
	for i, d := range window.Dates() {
		view.Days = append(view.Days, GanttDay{
			Offset: i,
			Day:    d.Day(),
			Class:  string(p.classifier.Classify(d, today)),
		})
	}

	if !tbl.IsCustom(fields.Complete) {
		view.Warnings = append(view.Warnings, WarningCompleteUndefined)
		p.host.Log(ctx, "warn", WarningCompleteUndefined, nil)
	}

	tq := repository.TicketQuery{
		ProjectID:     project,
		Window:        window.Window,
		ExcludeClosed: !view.ShowClosedTicket,
		Milestone:     view.SelectedMilestone,
		Component:     view.SelectedComponent,
		SortField:     view.SortedField,
	}
	if view.ShowMyTicket {
		tq.Owner = req.User
	}
	res, err := repository.NewTicketRepository(p.host, tbl).ListForGantt(ctx, tq)
	if err != nil {
		return nil, err
	}
	p.logRejections(ctx, res.Rejected)

	frame := gantt.NewFrame(window, baseDay)
	var sumEstimated float64
	view.Tickets = make([]GanttTicket, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		if t.Milestone == "" {
			t.Milestone = models.UngroupedName
		}
		if t.Component == "" {
			t.Component = models.UngroupedName
		}
		if t.EstimatedHours != nil {
			sumEstimated += *t.EstimatedHours
		}
		if t.TotalHours != nil {
			view.SumTotalHours += *t.TotalHours
		}

		view.Tickets = append(view.Tickets, GanttTicket{
			Ticket:    t,
			DueAssign: dateInfo(t.DueAssign),
			DueClose:  dateInfo(t.DueClose),
			URL:       ticketURL(t.ID),
			Bars:      frame.Layout(t.DueAssign, t.DueClose, t.Complete),
		})
	}
	if tbl.TimeTracking() {
		view.TimeTracking = true
		view.SumEstimatedHours = &sumEstimated
	}

	milestones, err := p.milestones.List(ctx, project)
	if err != nil {
		return nil, err
	}
	for _, ms := range milestones {
		info := milestoneInfo(ms, today)
		if ms.Due != nil {
			if off := timeline.DaysBetween(window.First, timeline.Day(*ms.Due)); off >= 0 && off <= window.DaysTerm {
				info.OnChart, info.Offset = true, off
			}
		}
		view.Milestones = append(view.Milestones, info)
	}

	components, err := p.components.List(ctx, project)
	if err != nil {
		return nil, err
	}
	view.Components = make([]string, 0, len(components))
	for _, c := range components {
		view.Components = append(view.Components, c.Name)
	}
	return view, nil
}

// filterQuery encodes the active filters so month navigation keeps them.
func filterQuery(v *GanttView, summary string) string {
	q := url.Values{}
	if v.ShowMyTicket {
		q.Set("show_my_ticket", "on")
	}
	if !v.ShowClosedTicket {
		q.Set("hide_closed_ticket", "on")
	}
	if !v.ShowTicketStatus {
		q.Set("hide_ticket_status", "on")
	}
	if summary != "" {
		q.Set("show_ticket_summary", summary)
	}
	if v.SelectedMilestone != "" {
		q.Set("selected_milestone", v.SelectedMilestone)
	}
	if v.SelectedComponent != "" {
		q.Set("selected_component", v.SelectedComponent)
	}
	q.Set("sorted_field", v.SortedField)
	return q.Encode()
}
