package database

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// NormalizeDriver maps the accepted driver aliases onto the registered
// database/sql driver names.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgsql":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "sqlite", "sqlite3", "":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// ConvertPlaceholders converts SQL placeholders to the format required by driver.
// This is the ONLY function that should be used for placeholder conversion in the codebase.
//
// IMPORTANT: Only ? placeholders are allowed. Using $N placeholders will panic.
// - For PostgreSQL: ? -> $1, $2, ...
// - For MySQL and SQLite: ? passed through as-is
//
// Example:
//
//	query := database.ConvertPlaceholders(database.DriverPostgres, "SELECT * FROM ticket WHERE id = ? AND owner = ?")
//	rows, err := db.QueryContext(ctx, query, id, owner)
func ConvertPlaceholders(driver, query string) string {
	if dollarPlaceholder.MatchString(query) {
		panic(fmt.Sprintf("ConvertPlaceholders: $N placeholders are not allowed. Use ? placeholders instead.\nQuery: %s", query))
	}
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	inQuote := false
	for _, c := range query {
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteRune(c)
		case c == '?' && !inQuote:
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
