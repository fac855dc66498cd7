package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "barber-booking",
		Short: "Barbershop booking API",
		Long: `Booking API for a single barbershop: public reservations,
client accounts, and the admin dashboard backend.`,
		SilenceUsage: true,
	}

	serve := newServeCommand()

	// sem subcomando = serve
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newMigrateCommand(), newAdminCommand())
	return root
}

// bootstrap loads config and installs the process-wide defaults.
func bootstrap() (*config.Config, *slog.Logger) {
	cfg := config.Load()

	log := logging.New(cfg)
	slog.SetDefault(log)

	if !timezone.SetDefault(cfg.Timezone) {
		log.Warn("unknown timezone, using default",
			slog.String("timezone", cfg.Timezone),
			slog.String("default", timezone.DefaultTimezone),
		)
	}

	httperr.ExposeDetails = !cfg.IsProduction()

	return cfg, log
}
