package fields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Defaults(t *testing.T) {
	tbl := NewTable(DefaultCustom)

	assert.True(t, tbl.Has("summary"))
	assert.False(t, tbl.IsCustom("summary"))
	assert.True(t, tbl.IsCustom(Complete))
	assert.False(t, tbl.TimeTracking())

	f, ok := tbl.Lookup(DueAssign)
	require.True(t, ok)
	assert.Equal(t, KindDate, f.Kind)
}

func TestNewTable_DatesAreForced(t *testing.T) {
	tbl := NewTable(map[string]string{DueAssign: "text", " EstimatedHours ": "float", "": "int"})

	f, _ := tbl.Lookup(DueAssign)
	assert.Equal(t, KindDate, f.Kind)
	f, _ = tbl.Lookup(DueClose)
	assert.Equal(t, KindDate, f.Kind)

	assert.True(t, tbl.TimeTracking())
	assert.False(t, tbl.Has(Complete))
	assert.NotContains(t, tbl.Names(), "")
}

func TestConvert(t *testing.T) {
	tbl := NewTable(map[string]string{
		Complete:       "int",
		EstimatedHours: "float",
		"billable":     "checkbox",
		"note":         "textarea",
	})

	tests := []struct {
		name  string
		field string
		raw   any
		want  any
	}{
		{"int string", Complete, "40", 40},
		{"int bytes", Complete, []byte("75"), 75},
		{"int native", Complete, int64(12), 12},
		{"empty int", Complete, "", nil},
		{"nil", Complete, nil, nil},
		{"float", EstimatedHours, "2.5", 2.5},
		{"float from int", EstimatedHours, 3, 3.0},
		{"checkbox on", "billable", "1", true},
		{"checkbox off", "billable", "0", false},
		{"textarea is text", "note", " hi ", "hi"},
		{"iso date", DueAssign, "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"legacy date", DueClose, "2024/03/10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"driver time", DueClose, time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Convert(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	tbl := NewTable(DefaultCustom)

	_, err := tbl.Convert("nope", "1")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = tbl.Convert(Complete, "half")
	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, Complete, convErr.Field)
	assert.Equal(t, "half", convErr.Value)

	_, err = tbl.Convert(DueAssign, "2024-02-30")
	require.True(t, errors.As(err, &convErr))
	assert.Contains(t, err.Error(), "due_assign")
}

func TestTypedAccessors(t *testing.T) {
	tbl := NewTable(map[string]string{Complete: "int", EstimatedHours: "float"})

	assert.Equal(t, 30, tbl.Int(Complete, "30", 0))
	assert.Equal(t, 0, tbl.Int(Complete, "x", 0))
	assert.Equal(t, 0, tbl.Int(Complete, nil, 0))
	assert.Equal(t, 1.5, tbl.Float(EstimatedHours, "1.5", 0))
	assert.Equal(t, 0.0, tbl.Float(EstimatedHours, "", 0))
	assert.Equal(t, 7.0, tbl.Float(TotalHours, "2", 7), "undefined field falls back")

	d, err := tbl.Date(DueAssign, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = tbl.Date(DueAssign, "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = tbl.Date(Complete, "5")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024/03/05", "2024-03-05T23:10:00Z", "2024-03-05 08:00:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d, s)
	}
	_, err := ParseDate("March 5")
	assert.Error(t, err)
}
