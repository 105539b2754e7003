// Package calendar lays out the month and week calendar grids: it classifies
// each day and buckets tickets and milestones onto the days they fall due.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"

	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// Kind is the display class of a calendar day.
type Kind string

// Day kinds.
const (
	KindToday   Kind = "today"
	KindHoliday Kind = "holiday"
	KindActive  Kind = "active"
)

// Classifier decides the kind of each day. The zero value treats Saturday
// and Sunday as holidays and nothing else.
type Classifier struct {
	public *cal.BusinessCalendar
}

// NewClassifier returns a classifier that additionally marks the public
// holidays of the named region. An empty name disables public holidays.
// Supported regions are "us" and "gb".
func NewClassifier(region string) (Classifier, error) {
	var holidays []*cal.Holiday
	switch strings.ToLower(strings.TrimSpace(region)) {
	case "", "none":
		return Classifier{}, nil
	case "us":
		holidays = us.Holidays
	case "gb", "uk":
		holidays = gb.Holidays
	default:
		return Classifier{}, fmt.Errorf("unknown holiday calendar %q", region)
	}

	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(holidays...)
	return Classifier{public: bc}, nil
}

// Classify returns the kind of day d given the current date. Today takes
// precedence over holidays.
func (c Classifier) Classify(d, today time.Time) Kind {
	d = timeline.Day(d)
	if d.Equal(timeline.Day(today)) {
		return KindToday
	}
	if cal.IsWeekend(d) {
		return KindHoliday
	}
	if c.public != nil {
		actual, observed, _ := c.public.IsHoliday(d)
		if actual || observed {
			return KindHoliday
		}
	}
	return KindActive
}
