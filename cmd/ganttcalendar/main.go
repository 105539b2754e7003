// Command ganttcalendar serves the ticket calendar and gantt chart views
// and provides maintenance subcommands.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goatkit/ganttcalendar/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	vcfg    *viper.Viper
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ganttcalendar",
	Short: "Ticket calendar and gantt chart server",
	Long:  `Serves a monthly/weekly ticket calendar and a gantt chart built from the due_assign, due_close and complete ticket fields.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, v, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg, vcfg = c, v
		logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML config file")
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
