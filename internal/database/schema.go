package database

import (
	"context"
	"fmt"
	"strings"
)

// Execer runs DDL and DML statements.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// Schema returns the CREATE statements for the ticket tables in the
// dialect of driver.
func Schema(driver string) []string {
	id, key := "INTEGER PRIMARY KEY AUTOINCREMENT", "TEXT"
	switch driver {
	case DriverPostgres:
		id, key = "SERIAL PRIMARY KEY", "VARCHAR(255)"
	case DriverMySQL:
		id, key = "INT AUTO_INCREMENT PRIMARY KEY", "VARCHAR(255)"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS ticket (
			id ` + id + `,
			project_id INTEGER NOT NULL DEFAULT 0,
			type ` + key + `,
			summary TEXT,
			owner ` + key + `,
			reporter ` + key + `,
			description TEXT,
			status ` + key + ` NOT NULL DEFAULT 'new',
			resolution ` + key + `,
			priority ` + key + `,
			milestone ` + key + `,
			component ` + key + `
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_custom (
			ticket INTEGER NOT NULL,
			name ` + key + ` NOT NULL,
			value TEXT,
			PRIMARY KEY (ticket, name)
		)`,
		`CREATE TABLE IF NOT EXISTS milestone (
			project_id INTEGER NOT NULL DEFAULT 0,
			name ` + key + ` NOT NULL,
			due ` + key + `,
			completed ` + key + `,
			description TEXT,
			PRIMARY KEY (project_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS component (
			project_id INTEGER NOT NULL DEFAULT 0,
			name ` + key + ` NOT NULL,
			owner ` + key + `,
			description TEXT,
			PRIMARY KEY (project_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS permission (
			username ` + key + ` NOT NULL,
			action ` + key + ` NOT NULL,
			PRIMARY KEY (username, action)
		)`,
	}
}

// DefaultPermissions grants read access to everyone, matching a fresh
// tracker installation.
var DefaultPermissions = [][2]string{
	{"anonymous", "TICKET_VIEW"},
	{"authenticated", "TICKET_VIEW"},
}

// InitSchema creates the tables and default permissions. It is safe to
// run against an existing database.
func InitSchema(ctx context.Context, db Execer, driver string) error {
	for _, stmt := range Schema(driver) {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	insert := "INSERT INTO permission (username, action) VALUES (?, ?)"
	switch driver {
	case DriverPostgres:
		insert += " ON CONFLICT DO NOTHING"
	case DriverMySQL:
		insert = strings.Replace(insert, "INSERT", "INSERT IGNORE", 1)
	default:
		insert = strings.Replace(insert, "INSERT", "INSERT OR IGNORE", 1)
	}
	for _, p := range DefaultPermissions {
		if err := db.Exec(ctx, insert, p[0], p[1]); err != nil {
			return fmt.Errorf("failed to grant %s to %s: %w", p[1], p[0], err)
		}
	}
	return nil
}
