package ganttcalendar

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/goatkit/ganttcalendar/internal/calendar"
	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/internal/repository"
	"github.com/goatkit/ganttcalendar/internal/timeline"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// Calendar display modes.
const (
	ModeMonth = "month"
	ModeWeek  = "week"
)

// ImagePath is the URL prefix of the plugin's static images.
const ImagePath = "/static/ganttcalendar/img/"

// CalendarTemplate renders CalendarView.
const CalendarTemplate = "ganttcalendar/calendar.pongo2"

// CalendarView is the data behind the ticket calendar.
type CalendarView struct {
	Mode              string           `json:"mode"`
	Project           int              `json:"project"`
	Today             DateInfo         `json:"today"`
	Current           DateInfo         `json:"current"`
	Prev              DateInfo         `json:"prev"`
	Next              DateInfo         `json:"next"`
	First             DateInfo         `json:"first"`
	Last              DateInfo         `json:"last"`
	MonthName         string           `json:"month_name"`
	Weekdays          []WeekdayHeader  `json:"weekdays"`
	Weeks             [][]CalendarCell `json:"weeks"`
	Milestones        []MilestoneInfo  `json:"milestones"`
	ShowMyTicket      bool             `json:"show_my_ticket"`
	SelectedMilestone string           `json:"selected_milestone"`
}

// WeekdayHeader labels a grid column.
type WeekdayHeader struct {
	Index   int    `json:"index"` // Monday=0
	Name    string `json:"name"`
	Weekend bool   `json:"weekend"`
}

// CalendarCell is one day of the grid.
type CalendarCell struct {
	Class      string              `json:"cls"`
	MDay       DateInfo            `json:"mday"`
	InMonth    bool                `json:"in_month"`
	Tickets    []CalendarTicket    `json:"tickets"`
	Milestones []CalendarMilestone `json:"milestones"`
}

// CalendarTicket is a ticket drawn on the day it starts or ends.
type CalendarTicket struct {
	Ticket models.Ticket `json:"ticket"`
	URL    string        `json:"url"`
	Arrow  string        `json:"arrow"`
	ImgURL string        `json:"img_url"`
}

// CalendarMilestone is a milestone drawn on its due day.
type CalendarMilestone struct {
	Milestone MilestoneInfo `json:"milestone"`
	URL       string        `json:"url"`
	ImgURL    string        `json:"img_url"`
}

func (p *Plugin) handleCalendar(ctx context.Context, raw json.RawMessage) (*plugin.HTTPResponse, error) {
	req, err := parseRequest(raw)
	if err != nil {
		return nil, err
	}
	if err := p.requireView(ctx, req.User); err != nil {
		return nil, err
	}
	view, err := p.CalendarView(ctx, req.HTTPArgs)
	if err != nil {
		return nil, err
	}
	return &plugin.HTTPResponse{Status: http.StatusOK, Template: CalendarTemplate, Title: "Calendar", Data: view}, nil
}

// CalendarView builds the calendar for the query in args. The caller is
// responsible for the permission check.
func (p *Plugin) CalendarView(ctx context.Context, args plugin.HTTPArgs) (*CalendarView, error) {
	req := request{HTTPArgs: args}
	today := p.today()
	project := req.project(p.opts.DefaultProject)

	mode := req.str("mode")
	if mode != ModeMonth && mode != ModeWeek {
		mode = ModeMonth
		if p.opts.ShowWeeklyView {
			mode = ModeWeek
		}
	}

	y, m := req.month(today)
	var window timeline.Window
	var nav timeline.Nav
	if mode == ModeWeek {
		day := 1
		if y == today.Year() && m == today.Month() {
			day = today.Day()
		}
		ref := timeline.Date(y, m, req.int("day", day))
		window = timeline.WeekWindow(ref.Year(), ref.Month(), p.opts.FirstDay, ref)
		nav = timeline.WeekNav(ref)
		m = ref.Month()
	} else {
		window = timeline.CalendarWindow(y, m, p.opts.FirstDay)
		nav = timeline.MonthNav(y, m)
	}

	view := &CalendarView{
		Mode:              mode,
		Project:           project,
		Today:             dateInfo(today),
		Current:           dateInfo(nav.Current),
		Prev:              dateInfo(nav.Prev),
		Next:              dateInfo(nav.Next),
		First:             dateInfo(window.First),
		Last:              dateInfo(window.Last),
		MonthName:         MonthNames[nav.Current.Month()-1],
		ShowMyTicket:      req.flag("show_my_ticket"),
		SelectedMilestone: req.str("selected_milestone"),
	}
	for _, wd := range timeline.Weekdays(p.opts.FirstDay) {
		idx := timeline.MondayIndex(wd)
		view.Weekdays = append(view.Weekdays, WeekdayHeader{
			Index:   idx,
			Name:    WeekdayNames[idx],
			Weekend: wd == time.Saturday || wd == time.Sunday,
		})
	}

	tq := repository.TicketQuery{
		ProjectID: project,
		Window:    window,
		Milestone: view.SelectedMilestone,
	}
	if view.ShowMyTicket {
		tq.Owner = req.User
	}
	res, err := repository.NewTicketRepository(p.host, p.fieldTable()).ListForCalendar(ctx, tq)
	if err != nil {
		return nil, err
	}
	p.logRejections(ctx, res.Rejected)

	milestones, err := p.milestones.List(ctx, project)
	if err != nil {
		return nil, err
	}
	infos := make(map[string]MilestoneInfo, len(milestones))
	for _, ms := range milestones {
		info := milestoneInfo(ms, today)
		infos[ms.Name] = info
		view.Milestones = append(view.Milestones, info)
	}

	for _, week := range calendar.Build(window, today, p.classifier, res.Tickets, milestones) {
		row := make([]CalendarCell, 0, len(week))
		for _, c := range week {
			row = append(row, calendarCell(c, m, infos))
		}
		view.Weeks = append(view.Weeks, row)
	}
	return view, nil
}

func calendarCell(c calendar.Cell, month time.Month, infos map[string]MilestoneInfo) CalendarCell {
	cell := CalendarCell{
		Class:      string(c.Kind),
		MDay:       dateInfo(c.Date),
		InMonth:    c.Date.Month() == month,
		Tickets:    make([]CalendarTicket, 0, len(c.Tickets)),
		Milestones: make([]CalendarMilestone, 0, len(c.Milestones)),
	}
	for _, mark := range c.Tickets {
		cell.Tickets = append(cell.Tickets, CalendarTicket{
			Ticket: mark.Ticket,
			URL:    ticketURL(mark.Ticket.ID),
			Arrow:  string(mark.Arrow),
			ImgURL: ImagePath + mark.Arrow.Icon(),
		})
	}
	for _, ms := range c.Milestones {
		info := infos[ms.Name]
		cell.Milestones = append(cell.Milestones, CalendarMilestone{
			Milestone: info,
			URL:       info.URL,
			ImgURL:    ImagePath + calendar.MilestoneIcon,
		})
	}
	return cell
}
