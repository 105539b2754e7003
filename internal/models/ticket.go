package models

import "time"

// Ticket is the projection of a ticket used by the calendar and gantt views.
// DueAssign and DueClose are calendar dates at UTC midnight.
type Ticket struct {
	ID          int       `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Summary     string    `json:"summary" yaml:"summary"`
	Owner       string    `json:"owner" yaml:"owner"`
	Description string    `json:"description" yaml:"description,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Resolution  string    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Priority    string    `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueAssign   time.Time `json:"-" yaml:"-"`
	DueClose    time.Time `json:"-" yaml:"-"`
	Complete    int       `json:"complete" yaml:"complete"`
	Milestone   string    `json:"milestone" yaml:"milestone"`
	Component   string    `json:"component" yaml:"component"`

	// Hours are only populated when time tracking fields are configured.
	EstimatedHours *float64 `json:"estimatedhours,omitempty" yaml:"estimatedhours,omitempty"`
	TotalHours     *float64 `json:"totalhours,omitempty" yaml:"totalhours,omitempty"`
}

// Scheduled reports whether the ticket has a usable date range.
func (t Ticket) Scheduled() bool {
	return !t.DueAssign.IsZero() && !t.DueClose.IsZero() && !t.DueAssign.After(t.DueClose)
}

// UngroupedName labels tickets without a milestone or component.
const UngroupedName = "*"
