package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andiamooltre/oltreweb/internal/config"
	"github.com/andiamooltre/oltreweb/internal/database"
)

var errInvalidMigrateAction = errors.New("migrate action must be one of: up, down")

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(_ *cobra.Command, args []string) error {
			conf, errConfig := config.Read(configFile)
			if errConfig != nil {
				return errConfig
			}

			if conf.DB.DSN == "" {
				return config.ErrMissingDSN
			}

			var action database.MigrationAction

			switch args[0] {
			case "up":
				action = database.MigrateUp
			case "down":
				action = database.MigrateDn
			default:
				return errInvalidMigrateAction
			}

			db := database.New(conf.DB.DSN, false, conf.DB.LogQueries)
			if errMigrate := db.Migrate(action); errMigrate != nil {
				return errMigrate
			}

			slog.Info("Migration complete", slog.String("action", args[0]))

			return nil
		},
	}
}
