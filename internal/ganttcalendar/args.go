package ganttcalendar

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/timeline"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// request wraps the route arguments of a view call.
type request struct {
	plugin.HTTPArgs
}

func parseRequest(raw json.RawMessage) (request, error) {
	var r request
	if len(raw) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(raw, &r.HTTPArgs); err != nil {
		return r, ErrInvalidArguments.Wrap(err)
	}
	return r, nil
}

func (r request) str(key string) string {
	return strings.TrimSpace(r.Query[key])
}

// flag reads a checkbox style parameter.
func (r request) flag(key string) bool {
	return parseBool(r.str(key), false)
}

// int returns the integer parameter or fallback when it is absent or not
// a number.
func (r request) int(key string, fallback int) int {
	v := r.str(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// month reads year and month, falling back to the month of today. Months
// outside 1..12 are normalized with carry.
func (r request) month(today time.Time) (int, time.Month) {
	y := r.int("year", today.Year())
	m := r.int("month", int(today.Month()))
	first := timeline.AddMonths(y, time.Month(m), 0)
	return first.Year(), first.Month()
}

// date parses an ISO date parameter, falling back when absent or invalid.
func (r request) date(key string, fallback time.Time) time.Time {
	v := r.str(key)
	if v == "" {
		return fallback
	}
	d, err := timeline.ParseDate(v)
	if err != nil {
		return fallback
	}
	return d
}

// project returns the requested project id or the configured default.
func (r request) project(def int) int {
	return r.int("project", def)
}

func parseBool(s string, fallback bool) bool {
	return convert.ToBool(s, fallback)
}
