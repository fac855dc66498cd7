package main

import (
	"github.com/spf13/cobra"

	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := bootstrap()

			db, err := dbpkg.Open(cfg)
			if err != nil {
				return err
			}

			if err := dbpkg.Migrate(db); err != nil {
				return err
			}

			log.Info("migrations applied")
			return nil
		},
	}
}
