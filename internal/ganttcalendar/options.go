package ganttcalendar

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/goatkit/ganttcalendar/internal/calendar"
	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/timeline"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// Options are read from the host configuration once, at Init.
type Options struct {
	FirstDay           time.Weekday
	ShowWeeklyView     bool
	ShowTicketSummary  bool
	DefaultZoomMode    int
	CompleteConditions []string
	DefaultProject     int
	HolidayCalendar    string
	CustomFields       map[string]string
}

// DefaultCompleteConditions are the resolutions that complete a ticket.
const DefaultCompleteConditions = "done, fixed, invalid"

// DefaultOptions returns the options used for unset configuration keys.
func DefaultOptions() Options {
	return Options{
		FirstDay:           time.Sunday,
		DefaultZoomMode:    timeline.DefaultZoom,
		CompleteConditions: splitList(DefaultCompleteConditions),
		CustomFields:       copyMap(fields.DefaultCustom),
	}
}

func loadOptions(ctx context.Context, host plugin.HostAPI) (Options, error) {
	opts := DefaultOptions()
	get := func(key string) (string, bool) {
		v, err := host.ConfigGet(ctx, "ganttcalendar."+key)
		if err != nil || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("first_day"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 6 {
			return opts, ErrInvalidArguments.Wrap(errInvalidOption("first_day", v))
		}
		opts.FirstDay = time.Weekday(n)
	}
	if v, ok := get("show_weekly_view"); ok {
		opts.ShowWeeklyView = parseBool(v, false)
	}
	if v, ok := get("show_ticket_summary"); ok {
		opts.ShowTicketSummary = parseBool(v, false)
	}
	if v, ok := get("default_zoom_mode"); ok {
		n, _ := strconv.Atoi(v)
		opts.DefaultZoomMode = timeline.ClampZoom(n, timeline.DefaultZoom)
	}
	if v, ok := get("complete_conditions"); ok {
		opts.CompleteConditions = splitList(v)
	}
	if v, ok := get("default_project"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts.DefaultProject = n
		}
	}
	if v, ok := get("holiday_calendar"); ok {
		if _, err := calendar.NewClassifier(v); err != nil {
			return opts, ErrInvalidArguments.Wrap(err)
		}
		opts.HolidayCalendar = v
	}

	if v, err := host.ConfigGet(ctx, "ticket_custom"); err == nil && strings.TrimSpace(v) != "" {
		opts.CustomFields = parsePairs(v)
	}
	return opts, nil
}

type optionError struct {
	key, value string
}

func (e optionError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for ganttcalendar." + e.key
}

func errInvalidOption(key, value string) error {
	return optionError{key: key, value: value}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePairs reads "name=kind,name=kind".
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range splitList(s) {
		name, kind, _ := strings.Cut(part, "=")
		if name = strings.TrimSpace(name); name != "" {
			out[name] = strings.TrimSpace(kind)
		}
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
