package main

import (
	"github.com/spf13/cobra"

	"github.com/goatkit/ganttcalendar/internal/database"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the ticket tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.InitSchema(ctx, database.NewQuerier(db, db.DriverName()), db.DriverName()); err != nil {
			return err
		}
		logger.Info("schema initialized", "driver", db.DriverName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
