package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Querier runs a read query with ? placeholders and returns rows as column
// maps. Plugin host APIs satisfy it.
type Querier interface {
	DBQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// MapQuerier implements Querier on top of sqlx.
type MapQuerier struct {
	db     *sqlx.DB
	driver string
}

// NewQuerier wraps db. driver selects the placeholder style.
func NewQuerier(db *sqlx.DB, driver string) *MapQuerier {
	return &MapQuerier{db: db, driver: driver}
}

// DBQuery executes query and returns every row. []byte values are
// returned as strings.
func (q *MapQuerier) DBQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := q.db.QueryxContext(ctx, ConvertPlaceholders(q.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

// Exec runs a statement with ? placeholders.
func (q *MapQuerier) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := q.db.ExecContext(ctx, ConvertPlaceholders(q.driver, query), args...); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}
