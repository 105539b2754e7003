package ganttcalendar

import (
	"net/url"
	"strconv"
	"time"

	"github.com/xeonx/timeago"

	"github.com/goatkit/ganttcalendar/internal/models"
	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// MonthNames are indexed by month-1.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// WeekdayNames are indexed Monday=0 .. Sunday=6.
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DateInfo is a calendar day as exposed to templates and JSON clients.
type DateInfo struct {
	ISO     string `json:"iso"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Day     int    `json:"day"`
	Weekday int    `json:"weekday"` // Monday=0
}

func dateInfo(d time.Time) DateInfo {
	return DateInfo{
		ISO:     timeline.FormatDate(d),
		Year:    d.Year(),
		Month:   int(d.Month()),
		Day:     d.Day(),
		Weekday: timeline.MondayIndex(d.Weekday()),
	}
}

// MilestoneInfo describes a milestone for filter boxes and chart markers.
type MilestoneInfo struct {
	Name        string    `json:"name"`
	Due         *DateInfo `json:"due"`
	DueLabel    string    `json:"due_label,omitempty"`
	OnChart     bool      `json:"on_chart,omitempty"`
	Offset      int       `json:"offset,omitempty"`
	Completed   bool      `json:"completed"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
}

// dueLabels formats due dates relative to today. Dates beyond the default
// cut-off of the English config would be printed as plain dates.
var dueLabels = func() timeago.Config {
	cfg := timeago.English
	cfg.Max = 100 * 365 * 24 * time.Hour
	return cfg
}()

func milestoneInfo(m models.Milestone, today time.Time) MilestoneInfo {
	info := MilestoneInfo{
		Name:        m.Name,
		Completed:   m.Completed,
		Description: m.Description,
		URL:         milestoneURL(m.Name),
	}
	if m.Due != nil {
		d := dateInfo(*m.Due)
		info.Due = &d
		if timeline.Day(*m.Due).Equal(today) {
			info.DueLabel = "today"
		} else {
			info.DueLabel = dueLabels.FormatReference(*m.Due, today)
		}
	}
	return info
}

func ticketURL(id int) string {
	return "/ticket/" + strconv.Itoa(id)
}

func milestoneURL(name string) string {
	return "/milestone/" + url.PathEscape(name)
}
