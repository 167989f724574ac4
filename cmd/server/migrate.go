package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/staff-portal/internal/config"
	pgInfra "github.com/fastygo/staff-portal/internal/infrastructure/postgres"
	"github.com/fastygo/staff-portal/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	var embedded bool
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back employee directory migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{pgInfra.MigrateUp, pgInfra.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := pgInfra.MigrateUp
			if len(args) == 1 {
				direction = args[0]
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if embedded {
				cfg.Migrations.Path = ""
			}
			zapLogger, err := logger.New(logger.Config{
				Level:    cfg.Logger.Level,
				Encoding: cfg.Logger.Encoding,
				App:      cfg.AppName,
			})
			if err != nil {
				return fmt.Errorf("logger error: %w", err)
			}
			defer zapLogger.Sync()

			return pgInfra.Migrate(cfg, direction, zapLogger)
		},
	}
	cmd.Flags().BoolVar(&embedded, "embedded", false, "use the migrations compiled into the binary")
	return cmd
}
