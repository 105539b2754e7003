package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/database"
	"github.com/goatkit/ganttcalendar/internal/fields"
	"github.com/goatkit/ganttcalendar/internal/models"
)

// MilestoneRepository reads roadmap milestones.
type MilestoneRepository struct {
	q database.Querier
}

// NewMilestoneRepository creates a milestone repository.
func NewMilestoneRepository(q database.Querier) *MilestoneRepository {
	return &MilestoneRepository{q: q}
}

// List returns the milestones of a project ordered by due date, undated
// milestones last, then by name. A due value that cannot be parsed is
// treated as no due date.
func (r *MilestoneRepository) List(ctx context.Context, projectID int) ([]models.Milestone, error) {
	rows, err := r.q.DBQuery(ctx, `
		SELECT name, due, completed, description
		FROM milestone
		WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	out := make([]models.Milestone, 0, len(rows))
	for _, row := range rows {
		m := models.Milestone{
			Name:        convert.ToString(row["name"], ""),
			Description: convert.ToString(row["description"], ""),
			Completed:   completed(row["completed"]),
		}
		if raw := strings.TrimSpace(convert.ToString(row["due"], "")); raw != "" {
			if d, err := fields.ParseDate(raw); err == nil {
				m.Due = &d
			}
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Due, out[j].Due
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// completed interprets the stored completion marker: a timestamp or date
// means completed, while blank, zero and false spellings mean open.
func completed(v any) bool {
	if v == nil {
		return false
	}
	s := strings.TrimSpace(convert.ToString(v, fmt.Sprint(v)))
	if s == "" {
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return convert.ToBool(s, true)
}

// ComponentRepository reads ticket components.
type ComponentRepository struct {
	q database.Querier
}

// NewComponentRepository creates a component repository.
func NewComponentRepository(q database.Querier) *ComponentRepository {
	return &ComponentRepository{q: q}
}

// List returns the components of a project ordered by name.
func (r *ComponentRepository) List(ctx context.Context, projectID int) ([]models.Component, error) {
	rows, err := r.q.DBQuery(ctx, `
		SELECT name, owner, description
		FROM component
		WHERE project_id = ?
		ORDER BY name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	out := make([]models.Component, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Component{
			Name:        convert.ToString(row["name"], ""),
			Owner:       convert.ToString(row["owner"], ""),
			Description: convert.ToString(row["description"], ""),
		})
	}
	return out, nil
}
