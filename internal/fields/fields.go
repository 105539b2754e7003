// Package fields converts raw ticket field values into typed values using
// an explicit table of field name -> field type.
//
// A Table is built once per request from the configured custom fields. The
// built-in ticket columns are always present; due_assign and due_close are
// always dates regardless of configuration.
package fields

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/timeline"
)

// Kind is the storage type of a field.
type Kind string

// Field kinds.
const (
	KindText     Kind = "text"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindDate     Kind = "date"
	KindCheckbox Kind = "checkbox"
)

// Well known field names.
const (
	DueAssign      = "due_assign"
	DueClose       = "due_close"
	Complete       = "complete"
	EstimatedHours = "estimatedhours"
	TotalHours     = "totalhours"
)

// Field describes one ticket field.
type Field struct {
	Name   string
	Kind   Kind
	Custom bool
}

// ConversionError reports a stored value that does not match its field type.
type ConversionError struct {
	Field string
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("field %s: cannot convert %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ErrUnknownField is returned for names that are not in the table.
var ErrUnknownField = errors.New("unknown field")

var builtin = map[string]Kind{
	"id":          KindInt,
	"type":        KindText,
	"summary":     KindText,
	"owner":       KindText,
	"reporter":    KindText,
	"description": KindText,
	"status":      KindText,
	"resolution":  KindText,
	"priority":    KindText,
	"milestone":   KindText,
	"component":   KindText,
}

// DefaultCustom is the custom field set used when none is configured.
var DefaultCustom = map[string]string{
	DueAssign: string(KindDate),
	DueClose:  string(KindDate),
	Complete:  string(KindInt),
}

// Table maps field names to their definitions.
type Table struct {
	fields map[string]Field
}

// NewTable builds a table from custom field definitions (name -> kind).
// Unknown kinds are treated as text.
func NewTable(custom map[string]string) *Table {
	t := &Table{fields: make(map[string]Field, len(builtin)+len(custom)+2)}
	for name, kind := range builtin {
		t.fields[name] = Field{Name: name, Kind: kind}
	}
	for name, kind := range custom {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		t.fields[name] = Field{Name: name, Kind: parseKind(kind), Custom: true}
	}
	t.fields[DueAssign] = Field{Name: DueAssign, Kind: KindDate, Custom: true}
	t.fields[DueClose] = Field{Name: DueClose, Kind: KindDate, Custom: true}
	return t
}

func parseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInt, "integer":
		return KindInt
	case KindFloat, "number", "hours":
		return KindFloat
	case KindDate, "time":
		return KindDate
	case KindCheckbox, "bool":
		return KindCheckbox
	}
	return KindText
}

// Lookup returns the field definition for name.
func (t *Table) Lookup(name string) (Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Has reports whether name is defined.
func (t *Table) Has(name string) bool {
	_, ok := t.fields[name]
	return ok
}

// IsCustom reports whether name is a defined custom field.
func (t *Table) IsCustom(name string) bool {
	f, ok := t.fields[name]
	return ok && f.Custom
}

// TimeTracking reports whether estimated hours are tracked.
func (t *Table) TimeTracking() bool {
	return t.Has(EstimatedHours)
}

// Names returns the defined field names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.fields))
	for n := range t.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Convert turns a raw driver or request value into the field's Go type:
// int, float64, time.Time, bool or string. Nil and empty strings convert
// to nil.
func (t *Table) Convert(name string, raw any) (any, error) {
	f, ok := t.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if raw == nil {
		return nil, nil
	}
	if tm, ok := raw.(time.Time); ok && f.Kind == KindDate {
		return timeline.Day(tm), nil
	}
	s := strings.TrimSpace(convert.ToString(raw, fmt.Sprint(raw)))
	if s == "" {
		return nil, nil
	}
	return converters[f.Kind](f.Name, s)
}

var converters = map[Kind]func(name, s string) (any, error){
	KindText: func(_, s string) (any, error) { return s, nil },
	KindInt: func(name, s string) (any, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ConversionError{Field: name, Value: s, Err: err}
		}
		return n, nil
	},
	KindFloat: func(name, s string) (any, error) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ConversionError{Field: name, Value: s, Err: err}
		}
		return f, nil
	},
	KindDate: func(name, s string) (any, error) {
		d, err := ParseDate(s)
		if err != nil {
			return nil, &ConversionError{Field: name, Value: s, Err: err}
		}
		return d, nil
	},
	KindCheckbox: func(_, s string) (any, error) { return convert.ToBool(s, false), nil },
}

// Int converts name and returns fallback when the value is empty or invalid.
func (t *Table) Int(name string, raw any, fallback int) int {
	v, err := t.Convert(name, raw)
	if err != nil || v == nil {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return fallback
}

// Float converts name and returns fallback when the value is empty or invalid.
func (t *Table) Float(name string, raw any, fallback float64) float64 {
	v, err := t.Convert(name, raw)
	if err != nil || v == nil {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}

// Date converts name to a calendar day. Empty values yield the zero time
// and no error.
func (t *Table) Date(name string, raw any) (time.Time, error) {
	v, err := t.Convert(name, raw)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	d, ok := v.(time.Time)
	if !ok {
		return time.Time{}, &ConversionError{Field: name, Value: fmt.Sprint(raw), Err: errors.New("not a date field")}
	}
	return d, nil
}

var dateLayouts = []string{timeline.DateLayout, "2006/01/02", time.RFC3339, "2006-01-02 15:04:05"}

// ParseDate accepts ISO dates, the legacy YYYY/MM/DD form and full
// timestamps, returning the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return timeline.Day(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
