// Package config loads the server configuration from a YAML file and
// GANTTCAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GANTTCAL_DATABASE_DSN.
const EnvPrefix = "GANTTCAL"

// Config is the complete server configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
	GanttCalendar GanttCalendarConfig `mapstructure:"ganttcalendar"`
	TicketCustom  map[string]string   `mapstructure:"ticket_custom"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	Mode         string `mapstructure:"mode"`
	TemplatesDir string `mapstructure:"templates_dir"`
	StaticDir    string `mapstructure:"static_dir"`
}

// DatabaseConfig selects the ticket database.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AuthConfig configures token authentication.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GanttCalendarConfig holds the view options.
type GanttCalendarConfig struct {
	FirstDay           int    `mapstructure:"first_day"`
	ShowWeeklyView     bool   `mapstructure:"show_weekly_view"`
	ShowTicketSummary  bool   `mapstructure:"show_ticket_summary"`
	DefaultZoomMode    int    `mapstructure:"default_zoom_mode"`
	CompleteConditions string `mapstructure:"complete_conditions"`
	DefaultProject     int    `mapstructure:"default_project"`
	HolidayCalendar    string `mapstructure:"holiday_calendar"`
}

// Production reports whether the server runs in release mode.
func (c *Config) Production() bool {
	return c.Server.Mode == "release"
}

// New returns a viper instance with defaults and environment overrides
// registered but no file read.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.templates_dir", "templates")
	v.SetDefault("server.static_dir", "static")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:ganttcalendar.db?cache=shared")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ganttcalendar.first_day", 0)
	v.SetDefault("ganttcalendar.show_weekly_view", false)
	v.SetDefault("ganttcalendar.show_ticket_summary", false)
	v.SetDefault("ganttcalendar.default_zoom_mode", 3)
	v.SetDefault("ganttcalendar.complete_conditions", "done, fixed, invalid")
	v.SetDefault("ganttcalendar.default_project", 0)
	v.SetDefault("ganttcalendar.holiday_calendar", "")

	v.SetDefault("ticket_custom", map[string]string{
		"due_assign": "date",
		"due_close":  "date",
		"complete":   "int",
	})
}

// Load reads the file at path (if non-empty) on top of the defaults and
// environment. A missing file is an error only when path was given.
func Load(path string) (*Config, *viper.Viper, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	if c.GanttCalendar.FirstDay < 0 || c.GanttCalendar.FirstDay > 6 {
		return fmt.Errorf("ganttcalendar.first_day must be between 0 (Sunday) and 6, got %d", c.GanttCalendar.FirstDay)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Production() && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in release mode")
	}
	return nil
}
