package ganttcalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/repository"
	"github.com/goatkit/ganttcalendar/pkg/plugin"
)

// Validation messages.
const (
	MsgCloseBeforeAssign = "Close date must not be less than assign date"
	MsgCompleteRange     = "'%s' is invalid value. It must be integer in the range from 0 to 100"
	MsgCompleteNew       = "Value must be 0 for new tickets"
	MsgInvalidDate       = "'%s' is invalid date. It must be in the format YYYY-MM-DD"
)

// CompleteDone is the completion of a finished ticket.
const CompleteDone = 100

// ErrValidationFailed carries the []FieldError of a rejected ticket.
var ErrValidationFailed = plugin.NewError(apierrors.CodeValidationFailed, "Ticket validation failed")

// TicketValues are the submitted or stored values of a ticket. Complete is
// kept raw because forms send text and hosts send numbers.
type TicketValues struct {
	ID         int    `json:"id,omitempty"`
	Exists     bool   `json:"exists"`
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
	DueAssign  string `json:"due_assign"`
	DueClose   string `json:"due_close"`
	Complete   any    `json:"complete"`
}

// FieldError reports one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the schedule fields of a ticket about to be saved. An
// empty result means the ticket is valid.
func Validate(t TicketValues, tbl *fields.Table) []FieldError {
	errs := []FieldError{}

	assign, aerr := tbl.Date(fields.DueAssign, t.DueAssign)
	if aerr != nil {
		errs = append(errs, FieldError{Field: fields.DueAssign, Message: fmt.Sprintf(MsgInvalidDate, strings.TrimSpace(t.DueAssign))})
	}
	closeDay, cerr := tbl.Date(fields.DueClose, t.DueClose)
	if cerr != nil {
		errs = append(errs, FieldError{Field: fields.DueClose, Message: fmt.Sprintf(MsgInvalidDate, strings.TrimSpace(t.DueClose))})
	}
	if aerr == nil && cerr == nil && !assign.IsZero() && !closeDay.IsZero() && assign.After(closeDay) {
		errs = append(errs, FieldError{Field: fields.DueClose, Message: MsgCloseBeforeAssign})
	}

	if !tbl.Has(fields.Complete) {
		return errs
	}
	raw := strings.TrimSpace(convert.ToString(t.Complete, fmt.Sprint(t.Complete)))
	if t.Complete == nil || raw == "" {
		return errs
	}
	v, err := tbl.Convert(fields.Complete, raw)
	n, isInt := v.(int)
	if err != nil || !isInt || n < 0 || n > CompleteDone {
		errs = append(errs, FieldError{Field: fields.Complete, Message: fmt.Sprintf(MsgCompleteRange, raw)})
	}
	if isInt && !t.Exists && n > 0 {
		errs = append(errs, FieldError{Field: fields.Complete, Message: MsgCompleteNew})
	}
	return errs
}

// AutoComplete returns the field changes to apply after a ticket was saved:
// a ticket that moved to closed with one of the given resolutions is set to
// 100% complete. oldValues holds the previous values of changed fields.
func AutoComplete(t TicketValues, oldValues map[string]string, conditions []string, tbl *fields.Table) map[string]any {
	changes := map[string]any{}
	if !tbl.Has(fields.Complete) {
		return changes
	}
	if v, err := tbl.Convert(fields.Complete, t.Complete); err == nil {
		if n, ok := v.(int); ok && n == CompleteDone {
			return changes
		}
	}
	if strings.TrimSpace(oldValues["status"]) == "" || t.Status != repository.StatusClosed {
		return changes
	}
	for _, c := range conditions {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(t.Resolution)) {
			changes[fields.Complete] = CompleteDone
			break
		}
	}
	return changes
}

type validatePayload struct {
	Ticket TicketValues `json:"ticket"`
}

type changePayload struct {
	Ticket    TicketValues      `json:"ticket"`
	OldValues map[string]string `json:"old_values"`
}

// hookBody returns the JSON document of a hook call: the body of an HTTP
// call, or the arguments themselves for direct calls.
func hookBody(raw json.RawMessage) json.RawMessage {
	var args plugin.HTTPArgs
	if err := json.Unmarshal(raw, &args); err == nil && len(args.Body) > 0 {
		return args.Body
	}
	return raw
}

func (p *Plugin) handleValidate(ctx context.Context, raw json.RawMessage) (*plugin.HTTPResponse, error) {
	body := hookBody(raw)
	if err := p.schemas.validate(schemaValidate, body); err != nil {
		return nil, err
	}
	var in validatePayload
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, ErrInvalidArguments.Wrap(err)
	}

	errs := Validate(in.Ticket, p.fieldTable())
	if len(errs) > 0 {
		p.host.Log(ctx, "debug", "ticket rejected", map[string]any{"ticket": in.Ticket.ID, "errors": len(errs)})
		return nil, ErrValidationFailed.WithDetails(errs)
	}
	return &plugin.HTTPResponse{
		Status: http.StatusOK,
		Data:   map[string]any{"valid": true, "errors": errs},
	}, nil
}

func (p *Plugin) handleTicketChanged(ctx context.Context, raw json.RawMessage) (*plugin.HTTPResponse, error) {
	return p.handleTicketHook(ctx, raw, false)
}

func (p *Plugin) handleTicketCreated(ctx context.Context, raw json.RawMessage) (*plugin.HTTPResponse, error) {
	return p.handleTicketHook(ctx, raw, true)
}

func (p *Plugin) handleTicketHook(ctx context.Context, raw json.RawMessage, created bool) (*plugin.HTTPResponse, error) {
	body := hookBody(raw)
	if err := p.schemas.validate(schemaChange, body); err != nil {
		return nil, err
	}
	var in changePayload
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, ErrInvalidArguments.Wrap(err)
	}
	if created {
		in.OldValues = nil
		in.Ticket.Exists = false
		if errs := Validate(in.Ticket, p.fieldTable()); len(errs) > 0 {
			p.host.Log(ctx, "debug", "new ticket rejected", map[string]any{"ticket": in.Ticket.ID, "errors": len(errs)})
			return nil, ErrValidationFailed.WithDetails(errs)
		}
	}

	changes := AutoComplete(in.Ticket, in.OldValues, p.opts.CompleteConditions, p.fieldTable())
	if len(changes) > 0 {
		p.host.Log(ctx, "info", "ticket completed on close", map[string]any{
			"ticket":     in.Ticket.ID,
			"resolution": in.Ticket.Resolution,
		})
	}
	return &plugin.HTTPResponse{Status: http.StatusOK, Data: map[string]any{"changes": changes}}, nil
}

// IsValidationError reports whether err is a rejected ticket and returns
// its field errors.
func IsValidationError(err error) ([]FieldError, bool) {
	var perr *plugin.Error
	if !errors.As(err, &perr) || perr.Code != apierrors.CodeValidationFailed {
		return nil, false
	}
	fe, _ := perr.Details.([]FieldError)
	return fe, true
}
