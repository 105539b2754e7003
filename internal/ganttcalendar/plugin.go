// Package ganttcalendar implements the ticket calendar and gantt chart
// views and the ticket lifecycle hooks that keep schedule fields sane.
package ganttcalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
	"github.com/goatkit/ganttcalendar/internal/calendar"
	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/repository"
	"github.com/goatkit/ganttcalendar/internal/timeline"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// Name is the registered plugin name.
const Name = "ganttcalendar"

// Version of the plugin.
const Version = "0.9.0"

// PermissionTicketView is required for both views.
const PermissionTicketView = "TICKET_VIEW"

// Plugin functions.
const (
	FnCalendar      = "calendar"
	FnGantt         = "gantt"
	FnValidate      = "validate_ticket"
	FnTicketChanged = "ticket_changed"
	FnTicketCreated = "ticket_created"
)

// Errors returned by Call.
var (
	ErrPermissionDenied = plugin.NewError(apierrors.CodeForbidden, "TICKET_VIEW privileges are required to perform this operation")
	ErrUnknownFunction  = plugin.NewError(apierrors.CodeNotFound, "unknown function")
	ErrInvalidArguments = plugin.NewError(Name+":invalid_arguments", "invalid arguments")
	ErrNotInitialized   = plugin.NewError(apierrors.CodeServiceUnavailable, "plugin is not initialized")
)

// Option configures a Plugin.
type Option func(*Plugin)

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) { p.now = now }
}

// Plugin serves the calendar and gantt views.
type Plugin struct {
	host       plugin.HostAPI
	opts       Options
	classifier calendar.Classifier
	milestones *repository.MilestoneRepository
	components *repository.ComponentRepository
	schemas    *payloadSchemas
	now        func() time.Time
}

// New creates an uninitialized plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{now: time.Now, opts: DefaultOptions()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GKRegister implements plugin.Plugin.
func (p *Plugin) GKRegister() plugin.GKRegistration {
	return plugin.GKRegistration{
		Name:        Name,
		Version:     Version,
		Description: "Ticket calendar and gantt chart views",
		Author:      "GoatKit",
		License:     "BSD-3-Clause",
		Homepage:    "https://github.com/goatkit/ganttcalendar",

		Routes: []plugin.RouteSpec{
			{Method: http.MethodGet, Path: "/ticketcalendar", Handler: FnCalendar, Description: "Monthly or weekly ticket calendar"},
			{Method: http.MethodGet, Path: "/ticketgantt", Handler: FnGantt, Description: "Ticket gantt chart"},
			{Method: http.MethodPost, Path: "/ganttcalendar/tickets/validate", Handler: FnValidate, Description: "Validate schedule fields of a ticket"},
			{Method: http.MethodPost, Path: "/ganttcalendar/tickets/changed", Handler: FnTicketChanged, Description: "Ticket change hook"},
			{Method: http.MethodPost, Path: "/ganttcalendar/tickets/created", Handler: FnTicketCreated, Description: "Ticket creation hook"},
		},

		MenuItems: []plugin.MenuItemSpec{
			{ID: "ticketcalendar", Label: "Calendar", Icon: "calendar", Path: "/ticketcalendar", Location: "mainnav", Order: 10, Permission: PermissionTicketView},
			{ID: "ticketgantt", Label: "Gantt", Icon: "chart-gantt", Path: "/ticketgantt", Location: "mainnav", Order: 20, Permission: PermissionTicketView},
		},

		ErrorCodes: []plugin.ErrorCodeSpec{
			{Code: "invalid_arguments", Message: "Invalid arguments", HTTPStatus: http.StatusBadRequest},
		},

		Permissions: []string{PermissionTicketView},
	}
}

// Init implements plugin.Plugin.
func (p *Plugin) Init(ctx context.Context, host plugin.HostAPI) error {
	opts, err := loadOptions(ctx, host)
	if err != nil {
		return err
	}
	classifier, err := calendar.NewClassifier(opts.HolidayCalendar)
	if err != nil {
		return err
	}
	schemas, err := newPayloadSchemas()
	if err != nil {
		return fmt.Errorf("compile payload schemas: %w", err)
	}

	p.host = host
	p.opts = opts
	p.classifier = classifier
	p.schemas = schemas
	p.milestones = repository.NewMilestoneRepository(host)
	p.components = repository.NewComponentRepository(host)

	host.Log(ctx, "info", "ganttcalendar initialized", map[string]any{
		"first_day":        int(opts.FirstDay),
		"weekly_view":      opts.ShowWeeklyView,
		"default_zoom":     opts.DefaultZoomMode,
		"holiday_calendar": opts.HolidayCalendar,
	})
	return nil
}

// Options returns the options loaded by Init.
func (p *Plugin) Options() Options {
	return p.opts
}

// Call implements plugin.Plugin.
func (p *Plugin) Call(ctx context.Context, fn string, args json.RawMessage) (json.RawMessage, error) {
	if p.host == nil {
		return nil, ErrNotInitialized
	}

	var resp *plugin.HTTPResponse
	var err error
	switch fn {
	case FnCalendar:
		resp, err = p.handleCalendar(ctx, args)
	case FnGantt:
		resp, err = p.handleGantt(ctx, args)
	case FnValidate:
		resp, err = p.handleValidate(ctx, args)
	case FnTicketChanged:
		resp, err = p.handleTicketChanged(ctx, args)
	case FnTicketCreated:
		resp, err = p.handleTicketCreated(ctx, args)
	default:
		return nil, ErrUnknownFunction.WithDetails(map[string]string{"function": fn})
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// Shutdown implements plugin.Plugin.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.host != nil {
		p.host.Log(ctx, "info", "ganttcalendar shutting down", nil)
	}
	return nil
}

func (p *Plugin) today() time.Time {
	return timeline.Day(p.now())
}

// fieldTable builds the conversion table for one request.
func (p *Plugin) fieldTable() *fields.Table {
	return fields.NewTable(p.opts.CustomFields)
}

func (p *Plugin) requireView(ctx context.Context, user string) error {
	ok, err := p.host.HasPermission(ctx, user, PermissionTicketView)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (p *Plugin) logRejections(ctx context.Context, rejected []repository.Rejection) {
	for _, r := range rejected {
		p.host.Log(ctx, "warn", "ticket skipped: unusable schedule", map[string]any{
			"ticket": r.TicketID,
			"field":  r.Field,
			"value":  r.Value,
			"reason": r.Reason,
		})
	}
}
