// Package plugin defines the interface between the tracker host and its
// view plugins.
//
// Plugins describe themselves with GKRegister, receive a HostAPI in Init
// and are invoked by function name with JSON arguments. The host mounts
// the routes a plugin declares and forwards requests as HTTPArgs.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
)

// Plugin is implemented by every plugin served by the host.
type Plugin interface {
	// GKRegister returns plugin metadata. Called once at load time.
	GKRegister() GKRegistration

	// Init is called after loading, before the plugin serves requests.
	Init(ctx context.Context, host HostAPI) error

	// Call invokes a plugin function by name with JSON-encoded arguments.
	Call(ctx context.Context, fn string, args json.RawMessage) (json.RawMessage, error)

	// Shutdown is called before unloading the plugin.
	Shutdown(ctx context.Context) error
}

// GKRegistration describes what a plugin provides to the host.
type GKRegistration struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Author      string `json:"author"`
	License     string `json:"license"`
	Homepage    string `json:"homepage,omitempty"`

	Routes     []RouteSpec     `json:"routes,omitempty"`
	MenuItems  []MenuItemSpec  `json:"menu_items,omitempty"`
	ErrorCodes []ErrorCodeSpec `json:"error_codes,omitempty"`

	// Permissions the plugin checks; informational.
	Permissions []string `json:"permissions,omitempty"`
}

// RouteSpec defines an HTTP route the plugin wants to handle.
type RouteSpec struct {
	Method      string `json:"method"`  // GET, POST, ...
	Path        string `json:"path"`    // URL path, e.g. "/ticketgantt"
	Handler     string `json:"handler"` // plugin function to call
	Description string `json:"description,omitempty"`
}

// MenuItemSpec defines a navigation menu entry.
type MenuItemSpec struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Icon       string `json:"icon,omitempty"`
	Path       string `json:"path"`
	Location   string `json:"location"`             // e.g. "mainnav"
	Order      int    `json:"order,omitempty"`      // sort order within location
	Permission string `json:"permission,omitempty"` // action required to see the entry
}

// ErrorCodeSpec defines an API error code provided by the plugin.
// The host prefixes the plugin name (code "invalid_arguments" in plugin
// "ganttcalendar" becomes "ganttcalendar:invalid_arguments").
type ErrorCodeSpec struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status"`
}

// HostAPI is the interface plugins use to access host services.
type HostAPI interface {
	// DBQuery runs a read query using ? placeholders.
	DBQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error)

	// Log writes a structured log line at level debug, info, warn or error.
	Log(ctx context.Context, level, message string, fields map[string]any)

	// ConfigGet returns a configuration value by dotted key.
	ConfigGet(ctx context.Context, key string) (string, error)

	// HasPermission reports whether user holds the named action.
	HasPermission(ctx context.Context, user, action string) (bool, error)
}

// HTTPArgs is the argument the host passes to route handler functions.
type HTTPArgs struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	User   string            `json:"user"`
	Query  map[string]string `json:"query,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
}

// HTTPResponse is returned by route handler functions. When Template is
// set the host renders it with Data; otherwise Data is sent as JSON.
type HTTPResponse struct {
	Status   int    `json:"status,omitempty"`
	Template string `json:"template,omitempty"`
	Title    string `json:"title,omitempty"`
	Data     any    `json:"data"`
}

// Error is returned by plugins for failures that map onto a registered
// API error code.
type Error struct {
	Code    string
	Message string
	Details any
	Err     error
}

// NewError returns an Error with code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors with the same code, so sentinel errors can be compared
// with errors.Is after details have been attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}
