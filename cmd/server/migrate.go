package main

import (
	"errors"

	"leadcaller/internal/config"
	"leadcaller/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.cfg.Database.Driver != config.DriverPostgres {
				return errors.New("migrate needs STORE_DRIVER=postgres")
			}
			db, err := database.InitDB(ctx.cfg, ctx.log)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
