package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/ganttcalendar/internal/auth"
	"github.com/goatkit/ganttcalendar/internal/ganttcalendar"
	"github.com/goatkit/ganttcalendar/internal/plugin"
)

const templatesDir = "../../templates"

// TestPongo2TemplatesParse walks the templates directory and ensures all .pongo2 files parse.
func TestPongo2TemplatesParse(t *testing.T) {
	r, err := NewRenderer(templatesDir, true, nil)
	require.NoError(t, err)

	var failures []string
	err = filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".pongo2") {
			return nil
		}
		rel, rerr := filepath.Rel(templatesDir, path)
		if rerr != nil {
			failures = append(failures, path+": "+rerr.Error())
			return nil
		}
		if _, perr := r.TemplateSet().FromFile(rel); perr != nil {
			failures = append(failures, rel+": "+perr.Error())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**bold** and <script>alert(1)</script>\n\n- item")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<li>item</li>")
	assert.NotContains(t, out, "<script>")
}

func TestMarkdownFilter(t *testing.T) {
	registerFilters()
	tpl, err := pongo2.FromString("{{ text|markdown }}")
	require.NoError(t, err)
	out, err := tpl.Execute(pongo2.Context{"text": "*hi*"})
	require.NoError(t, err)
	assert.Contains(t, out, "<em>hi</em>")
}

// tableHost serves canned rows by table and grants TICKET_VIEW to everyone.
type tableHost struct {
	permHost
	config     map[string]string
	tickets    []map[string]any
	milestones []map[string]any
}

func (h *tableHost) ConfigGet(_ context.Context, key string) (string, error) {
	if v, ok := h.config[key]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func (h *tableHost) DBQuery(_ context.Context, query string, _ ...any) ([]map[string]any, error) {
	switch {
	case strings.Contains(query, "FROM ticket t"):
		return h.tickets, nil
	case strings.Contains(query, "FROM milestone"):
		return h.milestones, nil
	}
	return nil, nil
}

func (h *tableHost) HasPermission(context.Context, string, string) (bool, error) {
	return true, nil
}

func newViewRouter(t *testing.T, config ...string) http.Handler {
	t.Helper()
	host := &tableHost{
		config: map[string]string{},
		tickets: []map[string]any{{
			"id": int64(7), "type": "task", "summary": "Write the release notes", "owner": "alice",
			"description": "Some *markdown*", "status": "assigned", "milestone": "1.0", "component": "docs",
			"due_assign": "2024-02-05", "due_close": "2024-02-07", "complete": "50",
		}},
		milestones: []map[string]any{{"name": "1.0", "due": "2024-02-20", "completed": "", "description": ""}},
	}
	for i := 0; i+1 < len(config); i += 2 {
		host.config[config[i]] = config[i+1]
	}
	mgr := plugin.NewManager(host)
	p := ganttcalendar.New(ganttcalendar.WithClock(func() time.Time {
		return time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, mgr.Register(context.Background(), p))

	renderer, err := NewRenderer(templatesDir, false, nil)
	require.NoError(t, err)
	tokens, err := auth.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)

	return NewRouter(RouterConfig{Manager: mgr, Host: host, Renderer: renderer, Tokens: tokens})
}

func TestCalendarPage(t *testing.T) {
	r := newViewRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketcalendar?year=2024&month=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "February 2024")
	assert.Contains(t, body, `href="/ticket/7"`)
	assert.Contains(t, body, "/static/ganttcalendar/img/arrow_from.png")
	assert.Contains(t, body, "/static/ganttcalendar/img/package.png")
	assert.Contains(t, body, "<em>markdown</em>")
	assert.Contains(t, body, `href="/ticketgantt"`)
}

func TestCalendarPage_MonthNavigationKeepsMode(t *testing.T) {
	r := newViewRouter(t, "ganttcalendar.show_weekly_view", "true")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketcalendar?mode=month&year=2024&month=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "February 2024")
	assert.Contains(t, body, `href="?mode=month&amp;year=2024&amp;month=1`)
	assert.Contains(t, body, `href="?mode=month&amp;year=2024&amp;month=3`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketcalendar?year=2024&month=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Next week")

	// Following the link stays on the month grid.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketcalendar?mode=month&year=2024&month=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "March 2024")
	assert.Contains(t, w.Body.String(), "Next month")
}

func TestGanttPage(t *testing.T) {
	r := newViewRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketgantt?year=2024&month=2&zoom=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `class="bar all" style="--start: 4; --end: 7;"`)
	assert.Contains(t, body, `class="bar done" style="--start: 4; --end: 5.5;"`)
	assert.Contains(t, body, "2024-02-01 &ndash; 2024-02-29")
}

func TestGanttPage_JSON(t *testing.T) {
	r := newViewRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketgantt?year=2024&month=2&zoom=1&format=json", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"days_term":29`)
	assert.Contains(t, w.Body.String(), `"ti_mrgn":0`)
}

func TestGanttPage_NavigationKeepsFilters(t *testing.T) {
	r := newViewRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/ticketgantt?year=2024&month=2&zoom=1&show_my_ticket=on&hide_closed_ticket=on&selected_milestone=1.0&selected_component=docs&sorted_field=owner", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	filters := "hide_closed_ticket=on&amp;selected_component=docs&amp;selected_milestone=1.0&amp;show_my_ticket=on&amp;sorted_field=owner"
	assert.Contains(t, body, `href="?year=2024&amp;month=3&amp;zoom=1&amp;baseday=2024-02-06&amp;`+filters+`"`)
	assert.Contains(t, body, `href="?year=2024&amp;month=1&amp;zoom=1&amp;baseday=2024-02-06&amp;`+filters+`"`)
}

func TestGanttPage_MilestoneMarker(t *testing.T) {
	r := newViewRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketgantt?year=2024&month=2&zoom=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="milestone-marker" style="--offset: 19;" data-due="2024-02-20"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticketgantt?year=2024&month=4&zoom=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "milestone-marker")
}
