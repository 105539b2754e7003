package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/goatkit/ganttcalendar/internal/convert"
	"github.com/goatkit/ganttcalendar/internal/database"
)

type callerKeyType struct{}

// CallerKey is the context key holding the name of the plugin being called.
var CallerKey = callerKeyType{}

// Permission subjects that apply beyond the user's own grants.
const (
	SubjectAnonymous     = "anonymous"
	SubjectAuthenticated = "authenticated"
	ActionAdmin          = "TRAC_ADMIN"
)

// ErrConfigNotFound is returned by ConfigGet for unset keys.
var ErrConfigNotFound = errors.New("config key not found")

// SQLHostAPI is the production HostAPI. It wires plugins to the ticket
// database, the slog logger and the viper configuration.
type SQLHostAPI struct {
	db     database.Querier
	logger *slog.Logger
	cfg    *viper.Viper
}

// HostOption is a functional option for SQLHostAPI.
type HostOption func(*SQLHostAPI)

// WithDB sets the database plugins query.
func WithDB(q database.Querier) HostOption {
	return func(h *SQLHostAPI) {
		h.db = q
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *SQLHostAPI) {
		h.logger = logger
	}
}

// WithConfig sets the configuration exposed through ConfigGet.
func WithConfig(v *viper.Viper) HostOption {
	return func(h *SQLHostAPI) {
		h.cfg = v
	}
}

// NewSQLHostAPI creates a host API with the given options.
func NewSQLHostAPI(opts ...HostOption) *SQLHostAPI {
	h := &SQLHostAPI{logger: slog.Default(), cfg: viper.New()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// DBQuery executes a read query and returns rows as column maps.
func (h *SQLHostAPI) DBQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if h.db == nil {
		return nil, errors.New("no database configured")
	}
	return h.db.DBQuery(ctx, query, args...)
}

// Log forwards to slog, tagging the line with the calling plugin.
func (h *SQLHostAPI) Log(ctx context.Context, level, message string, fields map[string]any) {
	attrs := make([]any, 0, len(fields)*2+2)
	if name, ok := ctx.Value(CallerKey).(string); ok {
		attrs = append(attrs, "plugin", name)
	}
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	h.logger.Log(ctx, parseLevel(level), message, attrs...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ConfigGet retrieves a configuration value by dotted key. Lists are
// joined with commas and maps are rendered as comma separated key=value
// pairs in key order.
func (h *SQLHostAPI) ConfigGet(_ context.Context, key string) (string, error) {
	if !h.cfg.IsSet(key) {
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
	}
	switch v := h.cfg.Get(key).(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, convert.ToString(item, fmt.Sprint(item)))
		}
		return strings.Join(parts, ","), nil
	case []string:
		return strings.Join(v, ","), nil
	case map[string]any, map[string]string:
		m := h.cfg.GetStringMapString(key)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+m[k])
		}
		return strings.Join(parts, ","), nil
	}
	return h.cfg.GetString(key), nil
}

// HasPermission checks the permission table. Grants to "anonymous" apply
// to everyone and grants to "authenticated" to every named user;
// TRAC_ADMIN implies every action.
func (h *SQLHostAPI) HasPermission(ctx context.Context, user, action string) (bool, error) {
	subjects := []any{SubjectAnonymous}
	if user != "" && user != SubjectAnonymous {
		subjects = append(subjects, user, SubjectAuthenticated)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(subjects)), ", ")

	rows, err := h.DBQuery(ctx,
		"SELECT action FROM permission WHERE username IN ("+placeholders+") AND action IN (?, ?)",
		append(subjects, action, ActionAdmin)...)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", action, err)
	}
	return len(rows) > 0, nil
}
